package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OfferingCategory 票種分類
type OfferingCategory string

const (
	CategoryStandard OfferingCategory = "standard"
	CategoryVIP      OfferingCategory = "vip"
)

// IsValid 驗證分類是否有效
func (c OfferingCategory) IsValid() bool {
	switch c {
	case CategoryStandard, CategoryVIP:
		return true
	}
	return false
}

// GroupDiscountRule 團體折扣：達到最低數量即可享有的折扣百分比
type GroupDiscountRule struct {
	MinQuantity     int             `json:"min_quantity"`
	DiscountPercent decimal.Decimal `json:"discount_percent"`
}

// Offering 一般票或 VIP 套票
type Offering struct {
	ID                uuid.UUID           `json:"id" db:"id"`
	EventID           uuid.UUID           `json:"event_id" db:"event_id"`
	Name              string              `json:"name" db:"name"`
	Category          OfferingCategory    `json:"category" db:"category"`
	BasePrice         decimal.Decimal     `json:"base_price" db:"base_price"`
	EarlyBirdPrice    decimal.NullDecimal `json:"early_bird_price" db:"early_bird_price"`
	EarlyBirdDeadline *time.Time          `json:"early_bird_deadline,omitempty" db:"early_bird_deadline"`
	MaxQuantity       int                 `json:"max_quantity" db:"max_quantity"`
	CurrentSold       int                 `json:"current_sold" db:"current_sold"`
	IsActive          bool                `json:"is_active" db:"is_active"`
	Priority          int                 `json:"priority" db:"priority"`
	Benefits          []string            `json:"benefits" db:"benefits"`
	GroupDiscounts    []GroupDiscountRule `json:"group_discounts,omitempty" db:"group_discounts"`
	CreatedAt         time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time           `json:"updated_at" db:"updated_at"`
}

// Available 剩餘可售數量
func (o *Offering) Available() int {
	return o.MaxQuantity - o.CurrentSold
}

// IsPurchasable 檢查票種是否可購買
func (o *Offering) IsPurchasable() bool {
	return o.IsActive && o.CurrentSold < o.MaxQuantity
}

// HasEarlyBird 是否設定早鳥價與截止時間
func (o *Offering) HasEarlyBird() bool {
	return o.EarlyBirdPrice.Valid && o.EarlyBirdDeadline != nil
}
