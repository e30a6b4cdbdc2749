package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// VIPTier 獨立於活動票種設定的尊榮體驗方案，依人數計價
type VIPTier struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	Name                string          `json:"name" db:"name"`
	Price               decimal.Decimal `json:"price" db:"price"`
	MaxReservations     int             `json:"max_reservations" db:"max_reservations"`
	CurrentReservations int             `json:"current_reservations" db:"current_reservations"`
	Perks               []string        `json:"perks" db:"perks"`
	CreatedAt           time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}

// IsSelectable 只比較預約筆數，不比較人數
func (t *VIPTier) IsSelectable() bool {
	return t.CurrentReservations < t.MaxReservations
}
