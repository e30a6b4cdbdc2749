package handler

import (
	"errors"
	"net/http"

	"luxe-booking/internal/service"
	apperrors "luxe-booking/pkg/app_errors"
	"luxe-booking/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Envelope 所有回應的外層格式
type Envelope struct {
	Success bool              `json:"success"`
	Data    interface{}       `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

func respond(c *gin.Context, statusCode int, data interface{}) {
	c.JSON(statusCode, Envelope{Success: true, Data: data})
}

func respondError(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, Envelope{Success: false, Error: message})
}

func BindJson(c *gin.Context, obj interface{}) error {
	if err := c.ShouldBindJSON(obj); err != nil {
		respondError(c, http.StatusBadRequest, "Invalid request format")
		return err
	}
	return nil
}

// ParamUUID 解析失敗時已寫入 400
func ParamUUID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		respondError(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}

func handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))

	var verr *service.ValidationError
	if errors.As(err, &verr) {
		log.Warn("Validation failed")
		c.JSON(http.StatusUnprocessableEntity, Envelope{
			Success: false,
			Error:   "Please correct the highlighted fields",
			Fields:  verr.Fields,
		})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		respondError(c, http.StatusNotFound, "Event not found")
	case errors.Is(err, apperrors.ErrOfferingNotFound):
		log.Warn("Offering not found")
		respondError(c, http.StatusNotFound, "Ticket type is not available")
	case errors.Is(err, apperrors.ErrTierNotFound):
		log.Warn("Tier not found")
		respondError(c, http.StatusNotFound, "VIP experience not found")
	case errors.Is(err, apperrors.ErrReservationNotFound):
		log.Warn("Reservation not found")
		respondError(c, http.StatusNotFound, "Reservation not found")
	case errors.Is(err, apperrors.ErrInsufficientStock):
		log.Warn("Insufficient stock")
		respondError(c, http.StatusConflict, "Not enough tickets available")
	case errors.Is(err, apperrors.ErrTierFull):
		log.Warn("Tier full")
		respondError(c, http.StatusConflict, "This VIP experience is fully booked")
	case errors.Is(err, apperrors.ErrSalesClosed):
		log.Warn("Sales closed")
		respondError(c, http.StatusConflict, "Ticket sales are not open")
	case errors.Is(err, apperrors.ErrInvalidReservationStatus):
		log.Warn("Invalid status transition")
		respondError(c, http.StatusConflict, "Reservation status cannot be changed")
	case errors.Is(err, apperrors.ErrExceedsMaxPerOrder):
		log.Warn("Exceeds max per order")
		respondError(c, http.StatusBadRequest, "Too many tickets in one order")
	case errors.Is(err, apperrors.ErrEmptySelection):
		log.Warn("Empty selection")
		respondError(c, http.StatusBadRequest, "Please select at least one ticket")
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		respondError(c, http.StatusBadRequest, "Invalid input")
	default:
		log.Error("Unexpected error")
		respondError(c, http.StatusInternalServerError, "Internal server error")
	}
}
