package booking

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"luxe-booking/internal/model"
	apperrors "luxe-booking/pkg/app_errors"
	"luxe-booking/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Session 一個活動頁面上的購票流程：載入設定、編輯購物車、提交預約
type Session struct {
	gateway Gateway
	clock   Clock
	log     *zap.Logger

	mu             sync.Mutex
	eventID        uuid.UUID
	config         *model.TicketConfiguration
	offerings      []OfferingView
	loading        bool
	ledger         Ledger
	contact        model.ContactInfo
	specialRequest string
	errors         ValidationErrors
	state          SubmissionState
	closed         bool
}

type SessionOption func(*Session)

func WithClock(clock Clock) SessionOption {
	return func(s *Session) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithLogger(log *zap.Logger) SessionOption {
	return func(s *Session) {
		if log != nil {
			s.log = log
		}
	}
}

func NewSession(gateway Gateway, opts ...SessionOption) *Session {
	s := &Session{
		gateway: gateway,
		clock:   SystemClock{},
		log:     logger.WithComponent("booking"),
		ledger:  NewLedger(),
		errors:  ValidationErrors{},
		state:   StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load 取得活動設定並重算可購買票種
func (s *Session) Load(ctx context.Context, eventID uuid.UUID) error {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	cfg, err := s.gateway.FetchTicketConfiguration(ctx, eventID)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false
	if s.closed {
		return nil
	}
	if err == nil && cfg == nil {
		err = apperrors.ErrEventNotFound
	}
	if err != nil {
		s.log.Warn("load ticket configuration failed", zap.String("event_id", eventID.String()), zap.Error(err))
		return &LoadError{Resource: "ticket configuration", Err: err}
	}

	s.eventID = eventID
	s.config = cfg
	s.offerings = PurchasableOfferings(cfg.AllOfferings())
	s.reconcileLedgerLocked(cfg.SalesWindow().PerOrderMax())
	return nil
}

// reconcileLedgerLocked 以新載入的票種重算已選的票：下架或售完的移除，其餘重新夾住數量並用新價格計算小計
func (s *Session) reconcileLedgerLocked(perOrderMax int) {
	now := s.clock.Now()
	for _, line := range s.ledger.Lines() {
		view, ok := s.findOffering(line.Offering.ID)
		if !ok {
			s.ledger = Reduce(s.ledger, SetQuantity{Offering: line.Offering, Quantity: 0}, now)
			continue
		}
		applied := ClampQuantity(line.Quantity, view.Available, perOrderMax)
		s.ledger = Reduce(s.ledger, SetQuantity{Offering: view.Offering, Quantity: applied}, now)
	}
}

func (s *Session) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Session) Configuration() *model.TicketConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.config
}

// WindowState 未載入設定時回傳 false
func (s *Session) WindowState() (WindowState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return "", false
	}
	return EvaluateWindow(s.config.SalesWindow(), s.clock.Now()), true
}

func (s *Session) StatusMessage() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.config == nil {
		return ""
	}
	return WindowStatusMessage(s.config.SalesWindow(), s.clock.Now())
}

func (s *Session) Offerings() []OfferingView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]OfferingView(nil), s.offerings...)
}

// SetQuantity 在 UI 邊界把數量夾在 [0, min(available, perOrderMax)]，回傳實際套用的數量
func (s *Session) SetQuantity(offeringID uuid.UUID, quantity int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	if quantity <= 0 {
		if line, ok := s.ledger.Line(offeringID); ok {
			s.ledger = Reduce(s.ledger, SetQuantity{Offering: line.Offering, Quantity: 0}, now)
		}
		return 0, nil
	}

	if s.config == nil {
		return 0, apperrors.ErrEventNotFound
	}
	window := s.config.SalesWindow()
	if !EvaluateWindow(window, now).PurchasesAllowed() {
		return 0, apperrors.ErrSalesClosed
	}

	view, ok := s.findOffering(offeringID)
	if !ok {
		return 0, apperrors.ErrOfferingNotFound
	}

	applied := ClampQuantity(quantity, view.Available, window.PerOrderMax())
	s.ledger = Reduce(s.ledger, SetQuantity{Offering: view.Offering, Quantity: applied}, now)
	return applied, nil
}

func (s *Session) SetGuestName(offeringID uuid.UUID, index int, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ledger = Reduce(s.ledger, SetGuestName{OfferingID: offeringID, Index: index, Name: name}, s.clock.Now())
}

func (s *Session) SetContact(contact model.ContactInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.contact = contact
}

func (s *Session) SetSpecialRequest(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.specialRequest = text
}

func (s *Session) Ledger() Ledger {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger
}

func (s *Session) Contact() model.ContactInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.contact
}

func (s *Session) SpecialRequest() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.specialRequest
}

func (s *Session) Errors() ValidationErrors {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors.clone()
}

func (s *Session) State() SubmissionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Cancel 使用者主動取消：丟棄購物車與聯絡資料
func (s *Session) Cancel() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetLocked()
}

// Close 頁面離開後，進行中的請求回應一律忽略
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Submit idle -> submitting -> (success | failure) -> idle。
// 提交中再次呼叫直接丟棄；購物車在呼叫當下讀取。
func (s *Session) Submit(ctx context.Context) Outcome {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return Outcome{Status: OutcomeDiscarded}
	}
	if s.state == StateSubmitting {
		s.mu.Unlock()
		return Outcome{Status: OutcomeDropped}
	}
	if s.config == nil {
		s.mu.Unlock()
		return Outcome{Status: OutcomeSalesClosed, Message: "Ticket information is unavailable", Err: apperrors.ErrEventNotFound}
	}

	now := s.clock.Now()
	window := s.config.SalesWindow()
	if !EvaluateWindow(window, now).PurchasesAllowed() {
		s.mu.Unlock()
		return Outcome{Status: OutcomeSalesClosed, Message: WindowStatusMessage(window, now), Err: apperrors.ErrSalesClosed}
	}

	errs, err := ValidateSelection(s.ledger, s.contact)
	if errors.Is(err, apperrors.ErrEmptySelection) {
		s.mu.Unlock()
		return Outcome{Status: OutcomeEmptySelection, Message: msgEmptySelection, Err: err}
	}
	s.errors = errs
	if errs.HasErrors() {
		s.mu.Unlock()
		return Outcome{Status: OutcomeInvalid, Message: msgFixErrors, Errors: errs.clone(), Err: apperrors.ErrValidation}
	}

	req := buildReservationRequest(s.eventID, s.ledger, s.contact, s.specialRequest)
	s.state = StateSubmitting
	s.mu.Unlock()

	result, callErr := s.gateway.SubmitReservation(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateIdle

	if s.closed {
		s.log.Info("reservation response ignored after close", zap.String("event_id", req.EventID.String()))
		return Outcome{Status: OutcomeDiscarded}
	}

	if callErr != nil || result == nil || !result.Success {
		subErr := submissionFailure(result, callErr)
		s.log.Warn("reservation submission failed", zap.String("event_id", req.EventID.String()), zap.Error(subErr))
		outcome := Outcome{Status: OutcomeFailed, Message: subErr.Message, Err: subErr}
		// 服務端的欄位錯誤與本地驗證使用相同 key
		if callErr == nil && result != nil && len(result.Fields) > 0 {
			s.errors = ValidationErrors(result.Fields).clone()
			outcome.Errors = s.errors.clone()
		}
		return outcome
	}

	s.resetLocked()
	s.log.Info("reservation submitted", zap.String("event_id", req.EventID.String()), zap.String("reservation_code", result.ReservationCode))
	return Outcome{
		Status:          OutcomeSucceeded,
		Message:         fmt.Sprintf("Reservation confirmed! Your reservation code is %s", result.ReservationCode),
		ReservationCode: result.ReservationCode,
	}
}

func (s *Session) resetLocked() {
	s.ledger = Reduce(s.ledger, ClearSelection{}, s.clock.Now())
	s.contact = model.ContactInfo{}
	s.specialRequest = ""
	s.errors = ValidationErrors{}
}

func (s *Session) findOffering(id uuid.UUID) (OfferingView, bool) {
	for _, view := range s.offerings {
		if view.ID == id {
			return view, true
		}
	}
	return OfferingView{}, false
}

// buildReservationRequest VIP 明細帶賓客姓名，一般票不帶
func buildReservationRequest(eventID uuid.UUID, l Ledger, contact model.ContactInfo, specialRequest string) model.ReservationRequest {
	lines := make([]model.ReservationLine, 0, l.Len())
	for _, line := range l.lines {
		rl := model.ReservationLine{
			OfferingID: line.Offering.ID,
			Quantity:   line.Quantity,
		}
		if line.Offering.Category == model.CategoryVIP {
			rl.GuestNames = append([]string(nil), line.GuestNames...)
		}
		lines = append(lines, rl)
	}
	return model.ReservationRequest{
		EventID:        eventID,
		Lines:          lines,
		Contact:        contact,
		SpecialRequest: specialRequest,
	}
}

func submissionFailure(result *model.ReservationResult, err error) *SubmissionError {
	if err != nil {
		return &SubmissionError{Message: msgSubmitFailed, Err: err}
	}
	if result != nil && result.Error != "" {
		return &SubmissionError{Message: result.Error}
	}
	return &SubmissionError{Message: msgSubmitFailed}
}
