package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ContactInfo 訂購人聯絡資料，三個欄位皆為必填
type ContactInfo struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// ReservationLine 預約請求中的單一票種
type ReservationLine struct {
	OfferingID uuid.UUID `json:"offering_id"`
	Quantity   int       `json:"quantity"`
	// 只有 VIP 票種會帶入
	GuestNames []string `json:"guest_names,omitempty"`
}

// ReservationRequest 送往預約服務的請求
type ReservationRequest struct {
	EventID        uuid.UUID         `json:"event_id" binding:"required"`
	Lines          []ReservationLine `json:"lines"`
	Contact        ContactInfo       `json:"contact"`
	SpecialRequest string            `json:"special_request,omitempty"`
}

// ReservationResult 預約服務的回覆
type ReservationResult struct {
	Success         bool   `json:"success"`
	ReservationCode string `json:"reservation_code,omitempty"`
	Error           string `json:"error,omitempty"`
	// 服務端欄位驗證失敗時的錯誤，key 與本地驗證相同
	Fields map[string]string `json:"fields,omitempty"`
}

// VIPReservationRequest 尊榮方案預約請求
type VIPReservationRequest struct {
	EventID        uuid.UUID   `json:"event_id"`
	TierID         uuid.UUID   `json:"tier_id" binding:"required"`
	GuestCount     int         `json:"guest_count" binding:"required,min=1"`
	Contact        ContactInfo `json:"contact"`
	SpecialRequest string      `json:"special_request,omitempty"`
}

// ReservationKind 預約類型
type ReservationKind string

const (
	ReservationKindTicket ReservationKind = "ticket"
	ReservationKindVIP    ReservationKind = "vip"
)

// ReservationStatus 預約狀態類型
type ReservationStatus string

const (
	ReservationStatusPending   ReservationStatus = "pending"
	ReservationStatusConfirmed ReservationStatus = "confirmed"
	ReservationStatusCancelled ReservationStatus = "cancelled"
)

// IsValid 驗證狀態是否有效
func (s ReservationStatus) IsValid() bool {
	switch s {
	case ReservationStatusPending, ReservationStatusConfirmed, ReservationStatusCancelled:
		return true
	}
	return false
}

// CanTransitionTo 檢查是否可以轉換到目標狀態
func (s ReservationStatus) CanTransitionTo(target ReservationStatus) bool {
	transitions := map[ReservationStatus][]ReservationStatus{
		ReservationStatusPending:   {ReservationStatusConfirmed, ReservationStatusCancelled},
		ReservationStatusConfirmed: {ReservationStatusCancelled},
		ReservationStatusCancelled: {}, // 不能轉換到任何狀態
	}

	allowed, ok := transitions[s]
	if !ok {
		return false
	}

	for _, status := range allowed {
		if status == target {
			return true
		}
	}
	return false
}

// ReservedLine 已計價的預約明細
type ReservedLine struct {
	OfferingID uuid.UUID        `json:"offering_id"`
	Name       string           `json:"name"`
	Category   OfferingCategory `json:"category"`
	Quantity   int              `json:"quantity"`
	Subtotal   decimal.Decimal  `json:"subtotal"`
	GuestNames []string         `json:"guest_names,omitempty"`
}

// Reservation 預約紀錄
type Reservation struct {
	ID             int               `json:"id" db:"id"`
	Code           string            `json:"code" db:"code"`
	Kind           ReservationKind   `json:"kind" db:"kind"`
	EventID        uuid.UUID         `json:"event_id" db:"event_id"`
	TierID         *uuid.UUID        `json:"tier_id,omitempty" db:"tier_id"`
	GuestCount     int               `json:"guest_count" db:"guest_count"`
	Lines          []ReservedLine    `json:"lines" db:"lines"`
	Contact        ContactInfo       `json:"contact" db:"-"`
	SpecialRequest string            `json:"special_request,omitempty" db:"special_request"`
	TotalAmount    decimal.Decimal   `json:"total_amount" db:"total_amount"`
	Status         ReservationStatus `json:"status" db:"status"`
	CreatedAt      time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time         `json:"updated_at" db:"updated_at"`
}

// TotalQuantity 所有明細的張數總和
func (r *Reservation) TotalQuantity() int {
	total := 0
	for _, l := range r.Lines {
		total += l.Quantity
	}
	return total
}
