package handler

import (
	"net/http"

	"luxe-booking/internal/model"
	"luxe-booking/internal/service"

	"github.com/gin-gonic/gin"
)

type ReservationHandler struct {
	service service.ReservationService
}

func NewReservationHandler(service service.ReservationService) *ReservationHandler {
	return &ReservationHandler{service: service}
}

func (h *ReservationHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("reservations", h.SubmitReservation)
		router.GET("reservations/:code", h.GetReservation)
		router.PUT("reservations/:code/confirm", h.ConfirmReservation)
		router.PUT("reservations/:code/cancel", h.CancelReservation)
		router.GET("events/:id/reservations", h.ListReservations)
		router.POST("vip-reservations", h.SubmitVIPReservation)
	}
}

// SubmitReservationResponse 預約已受理，落庫由 worker 非同步完成
type SubmitReservationResponse struct {
	ReservationCode string `json:"reservation_code"`
	Status          string `json:"status"`
	TotalAmount     string `json:"total_amount"`
}

func (h *ReservationHandler) SubmitReservation(c *gin.Context) {
	var req model.ReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	reservation, err := h.service.SubmitReservation(c, req)
	if err != nil {
		handleError(c, err, "SubmitReservation")
		return
	}
	respond(c, http.StatusAccepted, SubmitReservationResponse{
		ReservationCode: reservation.Code,
		Status:          string(reservation.Status),
		TotalAmount:     reservation.TotalAmount.StringFixed(2),
	})
}

func (h *ReservationHandler) SubmitVIPReservation(c *gin.Context) {
	var req model.VIPReservationRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	reservation, err := h.service.SubmitVIPReservation(c, req)
	if err != nil {
		handleError(c, err, "SubmitVIPReservation")
		return
	}
	respond(c, http.StatusAccepted, SubmitReservationResponse{
		ReservationCode: reservation.Code,
		Status:          string(reservation.Status),
		TotalAmount:     reservation.TotalAmount.StringFixed(2),
	})
}

func (h *ReservationHandler) GetReservation(c *gin.Context) {
	reservation, err := h.service.GetReservation(c, c.Param("code"))
	if err != nil {
		handleError(c, err, "GetReservation")
		return
	}
	respond(c, http.StatusOK, reservation)
}

func (h *ReservationHandler) ListReservations(c *gin.Context) {
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	reservations, err := h.service.ListReservations(c, eventID)
	if err != nil {
		handleError(c, err, "ListReservations")
		return
	}
	respond(c, http.StatusOK, reservations)
}

func (h *ReservationHandler) ConfirmReservation(c *gin.Context) {
	reservation, err := h.service.ConfirmReservation(c, c.Param("code"))
	if err != nil {
		handleError(c, err, "ConfirmReservation")
		return
	}
	respond(c, http.StatusOK, reservation)
}

func (h *ReservationHandler) CancelReservation(c *gin.Context) {
	reservation, err := h.service.CancelReservation(c, c.Param("code"))
	if err != nil {
		handleError(c, err, "CancelReservation")
		return
	}
	respond(c, http.StatusOK, reservation)
}
