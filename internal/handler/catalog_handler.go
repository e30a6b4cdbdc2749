package handler

import (
	"net/http"
	"time"

	"luxe-booking/internal/model"
	"luxe-booking/internal/repository"
	"luxe-booking/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

type CatalogHandler struct {
	service service.CatalogService
}

func NewCatalogHandler(service service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.ListEvents)
		router.POST("events", h.CreateEvent)
		router.PATCH("events/:id", h.UpdateEvent)
		router.POST("events/:id/offerings", h.AddOffering)
		router.POST("events/:id/open", h.OpenForSale)
		router.GET("events/:id/ticket-configuration", h.GetTicketConfiguration)
		router.PATCH("offerings/:id", h.SetOfferingActive)
		router.GET("vip-tiers", h.ListVIPTiers)
		router.POST("vip-tiers", h.CreateVIPTier)
	}
}

// CreateEventRequest 建立活動請求
type CreateEventRequest struct {
	Name               string    `json:"name" binding:"required"`
	Description        *string   `json:"description"`
	SalesStartDate     time.Time `json:"sales_start_date" binding:"required"`
	SalesEndDate       time.Time `json:"sales_end_date" binding:"required"`
	MaxTicketsPerOrder *int      `json:"max_tickets_per_order"`
	RefundPolicyText   string    `json:"refund_policy_text"`
	TermsText          string    `json:"terms_text"`
}

// CreateOfferingRequest 新增票種請求
type CreateOfferingRequest struct {
	Name              string                    `json:"name" binding:"required"`
	Category          model.OfferingCategory    `json:"category" binding:"required"`
	BasePrice         decimal.Decimal           `json:"base_price"`
	EarlyBirdPrice    decimal.NullDecimal       `json:"early_bird_price"`
	EarlyBirdDeadline *time.Time                `json:"early_bird_deadline"`
	MaxQuantity       int                       `json:"max_quantity" binding:"required,min=1"`
	IsActive          *bool                     `json:"is_active"`
	Priority          int                       `json:"priority"`
	Benefits          []string                  `json:"benefits"`
	GroupDiscounts    []model.GroupDiscountRule `json:"group_discounts"`
}

// SetOfferingActiveRequest 上架或下架票種
type SetOfferingActiveRequest struct {
	IsActive *bool `json:"is_active" binding:"required"`
}

// CreateVIPTierRequest 新增尊榮方案請求
type CreateVIPTierRequest struct {
	Name            string          `json:"name" binding:"required"`
	Price           decimal.Decimal `json:"price"`
	MaxReservations int             `json:"max_reservations" binding:"required,min=1"`
	Perks           []string        `json:"perks"`
}

func (h *CatalogHandler) ListEvents(c *gin.Context) {
	events, err := h.service.ListEvents(c)
	if err != nil {
		handleError(c, err, "ListEvents")
		return
	}
	respond(c, http.StatusOK, events)
}

func (h *CatalogHandler) CreateEvent(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.CreateEvent(c, &model.Event{
		Name:               req.Name,
		Description:        req.Description,
		SalesStartDate:     req.SalesStartDate,
		SalesEndDate:       req.SalesEndDate,
		MaxTicketsPerOrder: req.MaxTicketsPerOrder,
		RefundPolicyText:   req.RefundPolicyText,
		TermsText:          req.TermsText,
	})
	if err != nil {
		handleError(c, err, "CreateEvent")
		return
	}
	respond(c, http.StatusCreated, created)
}

func (h *CatalogHandler) UpdateEvent(c *gin.Context) {
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var params repository.UpdateEventParams
	if err := BindJson(c, &params); err != nil {
		return
	}
	if params.Name == nil && params.Description == nil && params.SalesStartDate == nil &&
		params.SalesEndDate == nil && params.MaxTicketsPerOrder == nil {
		respondError(c, http.StatusBadRequest, "Nothing to update")
		return
	}
	updated, err := h.service.UpdateEvent(c, eventID, params)
	if err != nil {
		handleError(c, err, "UpdateEvent")
		return
	}
	respond(c, http.StatusOK, updated)
}

func (h *CatalogHandler) AddOffering(c *gin.Context) {
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req CreateOfferingRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}
	created, err := h.service.AddOffering(c, &model.Offering{
		EventID:           eventID,
		Name:              req.Name,
		Category:          req.Category,
		BasePrice:         req.BasePrice,
		EarlyBirdPrice:    req.EarlyBirdPrice,
		EarlyBirdDeadline: req.EarlyBirdDeadline,
		MaxQuantity:       req.MaxQuantity,
		IsActive:          active,
		Priority:          req.Priority,
		Benefits:          req.Benefits,
		GroupDiscounts:    req.GroupDiscounts,
	})
	if err != nil {
		handleError(c, err, "AddOffering")
		return
	}
	respond(c, http.StatusCreated, created)
}

func (h *CatalogHandler) SetOfferingActive(c *gin.Context) {
	offeringID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	var req SetOfferingActiveRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	if err := h.service.SetOfferingActive(c, offeringID, *req.IsActive); err != nil {
		handleError(c, err, "SetOfferingActive")
		return
	}
	respond(c, http.StatusOK, gin.H{"id": offeringID, "is_active": *req.IsActive})
}

func (h *CatalogHandler) OpenForSale(c *gin.Context) {
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	if err := h.service.OpenForSale(c, eventID); err != nil {
		handleError(c, err, "OpenForSale")
		return
	}
	respond(c, http.StatusOK, nil)
}

func (h *CatalogHandler) GetTicketConfiguration(c *gin.Context) {
	eventID, ok := ParamUUID(c, "id")
	if !ok {
		return
	}
	cfg, err := h.service.GetTicketConfiguration(c, eventID)
	if err != nil {
		handleError(c, err, "GetTicketConfiguration")
		return
	}
	respond(c, http.StatusOK, cfg)
}

func (h *CatalogHandler) ListVIPTiers(c *gin.Context) {
	tiers, err := h.service.ListVIPTiers(c)
	if err != nil {
		handleError(c, err, "ListVIPTiers")
		return
	}
	respond(c, http.StatusOK, tiers)
}

func (h *CatalogHandler) CreateVIPTier(c *gin.Context) {
	var req CreateVIPTierRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.CreateVIPTier(c, &model.VIPTier{
		Name:            req.Name,
		Price:           req.Price,
		MaxReservations: req.MaxReservations,
		Perks:           req.Perks,
	})
	if err != nil {
		handleError(c, err, "CreateVIPTier")
		return
	}
	respond(c, http.StatusCreated, created)
}
