package booking

import (
	"context"
	"sync"

	"luxe-booking/internal/model"
	apperrors "luxe-booking/pkg/app_errors"
	"luxe-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// DefaultMaxVIPGuests 單筆尊榮方案預約的人數上限
const DefaultMaxVIPGuests = 10

// VIPTierView 方案快照與是否可選
type VIPTierView struct {
	Tier       model.VIPTier `json:"tier"`
	Selectable bool          `json:"selectable"`
}

// VIPBooking 尊榮方案預約流程：單一方案、依人數計價、無購物車
type VIPBooking struct {
	gateway   Gateway
	log       *zap.Logger
	maxGuests int

	mu             sync.Mutex
	eventID        uuid.UUID
	tiers          []model.VIPTier
	loading        bool
	selected       *model.VIPTier
	guestCount     int
	contact        model.ContactInfo
	specialRequest string
	errors         ValidationErrors
	state          SubmissionState
	closed         bool
}

type VIPOption func(*VIPBooking)

func WithMaxGuests(n int) VIPOption {
	return func(b *VIPBooking) {
		if n > 0 {
			b.maxGuests = n
		}
	}
}

func WithVIPLogger(log *zap.Logger) VIPOption {
	return func(b *VIPBooking) {
		if log != nil {
			b.log = log
		}
	}
}

func NewVIPBooking(gateway Gateway, eventID uuid.UUID, opts ...VIPOption) *VIPBooking {
	b := &VIPBooking{
		gateway:    gateway,
		log:        logger.WithComponent("vip_booking"),
		maxGuests:  DefaultMaxVIPGuests,
		eventID:    eventID,
		guestCount: 1,
		errors:     ValidationErrors{},
		state:      StateIdle,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

func (b *VIPBooking) LoadTiers(ctx context.Context) error {
	b.mu.Lock()
	b.loading = true
	b.mu.Unlock()

	tiers, err := b.gateway.FetchVIPTiers(ctx)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.loading = false
	if b.closed {
		return nil
	}
	if err != nil {
		b.log.Warn("load vip tiers failed", zap.Error(err))
		return &LoadError{Resource: "vip tiers", Err: err}
	}
	b.tiers = append([]model.VIPTier(nil), tiers...)
	return nil
}

func (b *VIPBooking) Loading() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.loading
}

func (b *VIPBooking) Tiers() []VIPTierView {
	b.mu.Lock()
	defer b.mu.Unlock()
	views := make([]VIPTierView, 0, len(b.tiers))
	for i := range b.tiers {
		views = append(views, VIPTierView{Tier: b.tiers[i], Selectable: b.tiers[i].IsSelectable()})
	}
	return views
}

// SelectTier 只比較預約筆數；已滿的方案不可選
func (b *VIPBooking) SelectTier(tierID uuid.UUID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	for i := range b.tiers {
		if b.tiers[i].ID != tierID {
			continue
		}
		if !b.tiers[i].IsSelectable() {
			return apperrors.ErrTierFull
		}
		tier := b.tiers[i]
		b.selected = &tier
		return nil
	}
	return apperrors.ErrTierNotFound
}

func (b *VIPBooking) Selected() (model.VIPTier, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == nil {
		return model.VIPTier{}, false
	}
	return *b.selected, true
}

func (b *VIPBooking) Deselect() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.selected = nil
}

// SetGuestCount 夾在 [1, maxGuests]，回傳實際套用的人數
func (b *VIPBooking) SetGuestCount(n int) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	if n < 1 {
		n = 1
	}
	if n > b.maxGuests {
		n = b.maxGuests
	}
	b.guestCount = n
	return n
}

func (b *VIPBooking) GuestCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.guestCount
}

// Total 未選方案時為 0
func (b *VIPBooking) Total() decimal.Decimal {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.selected == nil {
		return decimal.Zero
	}
	return TierTotal(*b.selected, b.guestCount)
}

func (b *VIPBooking) SetContact(contact model.ContactInfo) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.contact = contact
}

func (b *VIPBooking) Contact() model.ContactInfo {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.contact
}

func (b *VIPBooking) SetSpecialRequest(text string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.specialRequest = text
}

// Validate 重新計算並保存欄位錯誤
func (b *VIPBooking) Validate() ValidationErrors {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.errors = ValidateVIPBooking(b.guestCount, b.contact)
	return b.errors.clone()
}

func (b *VIPBooking) Errors() ValidationErrors {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.errors.clone()
}

func (b *VIPBooking) State() SubmissionState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *VIPBooking) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
}

// Submit 與一般票相同的 idle -> submitting -> idle 流程
func (b *VIPBooking) Submit(ctx context.Context) Outcome {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return Outcome{Status: OutcomeDiscarded}
	}
	if b.state == StateSubmitting {
		b.mu.Unlock()
		return Outcome{Status: OutcomeDropped}
	}
	if b.selected == nil {
		b.mu.Unlock()
		return Outcome{Status: OutcomeEmptySelection, Message: msgNoTierSelected, Err: apperrors.ErrEmptySelection}
	}

	b.errors = ValidateVIPBooking(b.guestCount, b.contact)
	if b.errors.HasErrors() {
		errs := b.errors.clone()
		b.mu.Unlock()
		return Outcome{Status: OutcomeInvalid, Message: msgFixErrors, Errors: errs, Err: apperrors.ErrValidation}
	}

	req := model.VIPReservationRequest{
		EventID:        b.eventID,
		TierID:         b.selected.ID,
		GuestCount:     b.guestCount,
		Contact:        b.contact,
		SpecialRequest: b.specialRequest,
	}
	b.state = StateSubmitting
	b.mu.Unlock()

	ok, err := b.gateway.SubmitVIPReservation(ctx, req)

	b.mu.Lock()
	defer b.mu.Unlock()
	b.state = StateIdle

	if b.closed {
		return Outcome{Status: OutcomeDiscarded}
	}
	if err != nil || !ok {
		subErr := &SubmissionError{Message: msgSubmitFailed, Err: err}
		b.log.Warn("vip reservation failed", zap.String("tier_id", req.TierID.String()), zap.Error(subErr))
		return Outcome{Status: OutcomeFailed, Message: subErr.Message, Err: subErr}
	}

	b.guestCount = 1
	b.contact = model.ContactInfo{}
	b.specialRequest = ""
	b.errors = ValidationErrors{}
	b.selected = nil
	b.log.Info("vip reservation submitted", zap.String("tier_id", req.TierID.String()), zap.Int("guest_count", req.GuestCount))
	return Outcome{Status: OutcomeSucceeded, Message: "Your VIP experience has been reserved"}
}
