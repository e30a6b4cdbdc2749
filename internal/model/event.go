package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultMaxTicketsPerOrder 活動未設定單筆上限時使用
const DefaultMaxTicketsPerOrder = 10

type Event struct {
	ID                 uuid.UUID `json:"id" db:"id"`
	Name               string    `json:"name" db:"name"`
	Description        *string   `json:"description,omitempty" db:"description"`
	SalesStartDate     time.Time `json:"sales_start_date" db:"sales_start_date"`
	SalesEndDate       time.Time `json:"sales_end_date" db:"sales_end_date"`
	MaxTicketsPerOrder *int      `json:"max_tickets_per_order,omitempty" db:"max_tickets_per_order"`
	RefundPolicyText   string    `json:"refund_policy_text" db:"refund_policy_text"`
	TermsText          string    `json:"terms_text" db:"terms_text"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// SalesWindow 活動的售票時段
type SalesWindow struct {
	Start              time.Time `json:"start"`
	End                time.Time `json:"end"`
	MaxTicketsPerOrder *int      `json:"max_tickets_per_order,omitempty"`
}

// PerOrderMax 未設定時回傳預設值 10
func (w SalesWindow) PerOrderMax() int {
	if w.MaxTicketsPerOrder == nil || *w.MaxTicketsPerOrder <= 0 {
		return DefaultMaxTicketsPerOrder
	}
	return *w.MaxTicketsPerOrder
}

func (e *Event) SalesWindow() SalesWindow {
	return SalesWindow{
		Start:              e.SalesStartDate,
		End:                e.SalesEndDate,
		MaxTicketsPerOrder: e.MaxTicketsPerOrder,
	}
}

// TicketConfiguration 一個活動的票種設定快照
type TicketConfiguration struct {
	EventID            uuid.UUID  `json:"event_id"`
	SalesStartDate     time.Time  `json:"sales_start_date"`
	SalesEndDate       time.Time  `json:"sales_end_date"`
	MaxTicketsPerOrder *int       `json:"max_tickets_per_order,omitempty"`
	RegularOfferings   []Offering `json:"regular_offerings"`
	VIPOfferings       []Offering `json:"vip_offerings"`
	RefundPolicyText   string     `json:"refund_policy_text"`
	TermsText          string     `json:"terms_text"`
}

func (c *TicketConfiguration) SalesWindow() SalesWindow {
	return SalesWindow{
		Start:              c.SalesStartDate,
		End:                c.SalesEndDate,
		MaxTicketsPerOrder: c.MaxTicketsPerOrder,
	}
}

// AllOfferings 一般票在前、VIP 套票在後
func (c *TicketConfiguration) AllOfferings() []Offering {
	all := make([]Offering, 0, len(c.RegularOfferings)+len(c.VIPOfferings))
	all = append(all, c.RegularOfferings...)
	all = append(all, c.VIPOfferings...)
	return all
}

// FindOffering 依 ID 尋找票種
func (c *TicketConfiguration) FindOffering(id uuid.UUID) (Offering, bool) {
	for _, o := range c.AllOfferings() {
		if o.ID == id {
			return o, true
		}
	}
	return Offering{}, false
}

// NewTicketConfiguration 依分類拆分票種
func NewTicketConfiguration(event *Event, offerings []*Offering) *TicketConfiguration {
	cfg := &TicketConfiguration{
		EventID:            event.ID,
		SalesStartDate:     event.SalesStartDate,
		SalesEndDate:       event.SalesEndDate,
		MaxTicketsPerOrder: event.MaxTicketsPerOrder,
		RegularOfferings:   make([]Offering, 0),
		VIPOfferings:       make([]Offering, 0),
		RefundPolicyText:   event.RefundPolicyText,
		TermsText:          event.TermsText,
	}
	for _, o := range offerings {
		if o.Category == CategoryVIP {
			cfg.VIPOfferings = append(cfg.VIPOfferings, *o)
		} else {
			cfg.RegularOfferings = append(cfg.RegularOfferings, *o)
		}
	}
	return cfg
}
