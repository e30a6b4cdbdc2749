package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"luxe-booking/internal/booking"
	"luxe-booking/internal/cache"
	"luxe-booking/internal/model"
	"luxe-booking/internal/monitoring"
	"luxe-booking/internal/queue"
	"luxe-booking/internal/repository"
	apperrors "luxe-booking/pkg/app_errors"
	"luxe-booking/pkg/logger"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// TxBeginner *pgxpool.Pool 符合此介面
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// ValidationError 欄位層級的錯誤，errors.Is(err, ErrValidation) 成立
type ValidationError struct {
	Fields booking.ValidationErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	return fmt.Sprintf("validation failed: %s", strings.Join(keys, ", "))
}

func (e *ValidationError) Unwrap() error {
	return apperrors.ErrValidation
}

type ReservationService interface {
	// 接受預約(Redis容量管理)，寫入隊列後立即回傳預約代碼
	SubmitReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error)
	SubmitVIPReservation(ctx context.Context, req model.VIPReservationRequest) (*model.Reservation, error)
	// 預約落庫(Queue持久化)
	PersistReservation(ctx context.Context, reservation *model.Reservation) error
	GetReservation(ctx context.Context, code string) (*model.Reservation, error)
	ListReservations(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error)
	ConfirmReservation(ctx context.Context, code string) (*model.Reservation, error)
	CancelReservation(ctx context.Context, code string) (*model.Reservation, error)
	// 放棄無法落庫的預約，歸還 Redis 容量
	DiscardReservation(ctx context.Context, reservation *model.Reservation) error
}

type ReservationServiceImpl struct {
	db           TxBeginner
	events       repository.EventRepository
	offerings    repository.OfferingRepository
	tiers        repository.VIPTierRepository
	reservations repository.ReservationRepository
	inventory    cache.InventoryManager
	queue        queue.ReservationQueue
	clock        booking.Clock
	maxVIPGuests int
	log          *zap.Logger
}

type ReservationServiceOption func(*ReservationServiceImpl)

func WithClock(clock booking.Clock) ReservationServiceOption {
	return func(s *ReservationServiceImpl) {
		if clock != nil {
			s.clock = clock
		}
	}
}

func WithMaxVIPGuests(n int) ReservationServiceOption {
	return func(s *ReservationServiceImpl) {
		if n > 0 {
			s.maxVIPGuests = n
		}
	}
}

func NewReservationService(
	db TxBeginner,
	events repository.EventRepository,
	offerings repository.OfferingRepository,
	tiers repository.VIPTierRepository,
	reservations repository.ReservationRepository,
	inventory cache.InventoryManager,
	reservationQueue queue.ReservationQueue,
	opts ...ReservationServiceOption,
) ReservationService {
	s := &ReservationServiceImpl{
		db:           db,
		events:       events,
		offerings:    offerings,
		tiers:        tiers,
		reservations: reservations,
		inventory:    inventory,
		queue:        reservationQueue,
		clock:        booking.SystemClock{},
		maxVIPGuests: booking.DefaultMaxVIPGuests,
		log:          logger.WithComponent("reservation_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// reservedUnit 已在 Redis 保留的容量，用於失敗時回滾
type reservedUnit struct {
	key      string
	quantity int
}

func (s *ReservationServiceImpl) SubmitReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
	start := time.Now()
	defer func() { monitoring.ObserveSubmission(string(model.ReservationKindTicket), time.Since(start)) }()

	reservation, err := s.submitReservation(ctx, req)
	monitoring.RecordReservation(string(model.ReservationKindTicket), resultLabel(err))
	return reservation, err
}

func (s *ReservationServiceImpl) submitReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
	// 1. 載入活動與票種
	event, err := s.events.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	offerings, err := s.offerings.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, err
	}
	cfg := model.NewTicketConfiguration(event, offerings)

	// 2. 售票時段
	now := s.clock.Now()
	window := cfg.SalesWindow()
	if !booking.EvaluateWindow(window, now).PurchasesAllowed() {
		return nil, apperrors.ErrSalesClosed
	}

	// 3. 伺服器端重新驗證
	lines, err := s.validateRequest(cfg, req)
	if err != nil {
		return nil, err
	}

	// 4. 計價
	reserved := make([]model.ReservedLine, 0, len(lines))
	total := decimal.Zero
	quantity := 0
	for _, line := range lines {
		subtotal := booking.Price(line.offering, line.quantity, now)
		reserved = append(reserved, model.ReservedLine{
			OfferingID: line.offering.ID,
			Name:       line.offering.Name,
			Category:   line.offering.Category,
			Quantity:   line.quantity,
			Subtotal:   subtotal,
			GuestNames: line.guestNames,
		})
		total = total.Add(subtotal)
		quantity += line.quantity
	}

	// 5. 保留容量，任何一項失敗即回滾先前的保留
	units := make([]reservedUnit, 0, len(lines))
	for _, line := range lines {
		o := line.offering
		key := cache.OfferingKey(o.ID)
		err := s.reserve(ctx, key, line.quantity, cache.InventorySnapshot{
			Capacity: o.MaxQuantity,
			Sold:     o.CurrentSold,
			Active:   o.IsActive,
		})
		if err != nil {
			s.release(units)
			return nil, err
		}
		units = append(units, reservedUnit{key: key, quantity: line.quantity})
	}

	reservation := &model.Reservation{
		Code:           NewReservationCode(),
		Kind:           model.ReservationKindTicket,
		EventID:        event.ID,
		GuestCount:     quantity,
		Lines:          reserved,
		Contact:        req.Contact,
		SpecialRequest: req.SpecialRequest,
		TotalAmount:    total,
		Status:         model.ReservationStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	// 6. 寫入隊列：ctx 跟隨請求的生命週期，失敗時回滾容量
	if err := s.queue.PublishReservation(ctx, reservation); err != nil {
		s.log.Error("publish reservation failed", zap.String("code", reservation.Code), zap.Error(err))
		s.release(units)
		return nil, apperrors.ErrInternalServerError
	}

	s.log.Info("reservation accepted",
		zap.String("code", reservation.Code),
		zap.String("event_id", event.ID.String()),
		zap.Int("quantity", quantity),
		zap.String("total", total.StringFixed(2)),
	)
	return reservation, nil
}

type validatedLine struct {
	offering   model.Offering
	quantity   int
	guestNames []string
}

func (s *ReservationServiceImpl) validateRequest(cfg *model.TicketConfiguration, req model.ReservationRequest) ([]validatedLine, error) {
	if len(req.Lines) == 0 {
		return nil, apperrors.ErrEmptySelection
	}

	fields := booking.ValidateContact(req.Contact)
	perOrderMax := cfg.SalesWindow().PerOrderMax()
	seen := make(map[uuid.UUID]struct{}, len(req.Lines))
	lines := make([]validatedLine, 0, len(req.Lines))

	for i, l := range req.Lines {
		if _, dup := seen[l.OfferingID]; dup {
			return nil, fmt.Errorf("offering %s listed twice: %w", l.OfferingID, apperrors.ErrInvalidInput)
		}
		seen[l.OfferingID] = struct{}{}

		if l.Quantity <= 0 {
			return nil, fmt.Errorf("quantity must be positive: %w", apperrors.ErrInvalidInput)
		}
		offering, ok := cfg.FindOffering(l.OfferingID)
		if !ok || !offering.IsActive {
			return nil, apperrors.ErrOfferingNotFound
		}
		if l.Quantity > offering.Available() {
			return nil, apperrors.ErrInsufficientStock
		}
		// 上限套用在單一票種，與購物車端的 ClampQuantity 一致
		if l.Quantity > perOrderMax {
			return nil, apperrors.ErrExceedsMaxPerOrder
		}

		var names []string
		if offering.Category == model.CategoryVIP {
			names = booking.ResizeGuestNames(l.GuestNames, l.Quantity)
			booking.ValidateGuestNames(fields, i, offering.Category, names)
		}

		lines = append(lines, validatedLine{offering: offering, quantity: l.Quantity, guestNames: names})
	}

	if fields.HasErrors() {
		return nil, &ValidationError{Fields: fields}
	}
	return lines, nil
}

func (s *ReservationServiceImpl) SubmitVIPReservation(ctx context.Context, req model.VIPReservationRequest) (*model.Reservation, error) {
	start := time.Now()
	defer func() { monitoring.ObserveSubmission(string(model.ReservationKindVIP), time.Since(start)) }()

	reservation, err := s.submitVIPReservation(ctx, req)
	monitoring.RecordReservation(string(model.ReservationKindVIP), resultLabel(err))
	return reservation, err
}

func (s *ReservationServiceImpl) submitVIPReservation(ctx context.Context, req model.VIPReservationRequest) (*model.Reservation, error) {
	if fields := booking.ValidateVIPBooking(req.GuestCount, req.Contact); fields.HasErrors() {
		return nil, &ValidationError{Fields: fields}
	}
	if req.GuestCount > s.maxVIPGuests {
		return nil, fmt.Errorf("at most %d guests: %w", s.maxVIPGuests, apperrors.ErrInvalidInput)
	}

	tier, err := s.tiers.FindByID(ctx, req.TierID)
	if err != nil {
		return nil, err
	}
	if !tier.IsSelectable() {
		return nil, apperrors.ErrTierFull
	}

	// 一筆預約佔一個名額，與人數無關
	key := cache.TierKey(tier.ID)
	err = s.reserve(ctx, key, 1, cache.InventorySnapshot{
		Capacity: tier.MaxReservations,
		Sold:     tier.CurrentReservations,
		Active:   true,
	})
	if err != nil {
		if errors.Is(err, apperrors.ErrInsufficientStock) {
			return nil, apperrors.ErrTierFull
		}
		return nil, err
	}

	now := s.clock.Now()
	tierID := tier.ID
	reservation := &model.Reservation{
		Code:           NewReservationCode(),
		Kind:           model.ReservationKindVIP,
		EventID:        req.EventID,
		TierID:         &tierID,
		GuestCount:     req.GuestCount,
		Lines:          []model.ReservedLine{},
		Contact:        req.Contact,
		SpecialRequest: req.SpecialRequest,
		TotalAmount:    booking.TierTotal(*tier, req.GuestCount),
		Status:         model.ReservationStatusPending,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	if err := s.queue.PublishReservation(ctx, reservation); err != nil {
		s.log.Error("publish vip reservation failed", zap.String("code", reservation.Code), zap.Error(err))
		s.release([]reservedUnit{{key: key, quantity: 1}})
		return nil, apperrors.ErrInternalServerError
	}

	s.log.Info("vip reservation accepted",
		zap.String("code", reservation.Code),
		zap.String("tier_id", tier.ID.String()),
		zap.Int("guest_count", req.GuestCount),
	)
	return reservation, nil
}

// reserve 尚未預熱時從資料庫快照預熱後重試一次
func (s *ReservationServiceImpl) reserve(ctx context.Context, key string, quantity int, snapshot cache.InventorySnapshot) error {
	err := s.inventory.Reserve(ctx, key, quantity)
	if errors.Is(err, apperrors.ErrInventoryNotLoaded) {
		if _, warmErr := s.inventory.WarmUp(ctx, key, snapshot); warmErr != nil {
			monitoring.RecordInventory("warm_up", "error")
			return warmErr
		}
		monitoring.RecordInventory("warm_up", "ok")
		err = s.inventory.Reserve(ctx, key, quantity)
	}
	monitoring.RecordInventory("reserve", resultLabel(err))
	return err
}

// release 使用 context.Background()，確保請求取消時回滾仍會執行
func (s *ReservationServiceImpl) release(units []reservedUnit) error {
	var errs []error
	for _, u := range units {
		if err := s.inventory.Release(context.Background(), u.key, u.quantity); err != nil {
			monitoring.RecordInventory("release", "error")
			s.log.Error("release capacity failed", zap.String("key", u.key), zap.Int("quantity", u.quantity), zap.Error(err))
			errs = append(errs, err)
			continue
		}
		monitoring.RecordInventory("release", "ok")
	}
	return errors.Join(errs...)
}

// reservedUnits 預約在 Redis 佔用的計數
func reservedUnits(reservation *model.Reservation) []reservedUnit {
	if reservation.Kind == model.ReservationKindVIP {
		if reservation.TierID == nil {
			return nil
		}
		return []reservedUnit{{key: cache.TierKey(*reservation.TierID), quantity: 1}}
	}
	units := make([]reservedUnit, 0, len(reservation.Lines))
	for _, line := range reservation.Lines {
		units = append(units, reservedUnit{key: cache.OfferingKey(line.OfferingID), quantity: line.Quantity})
	}
	return units
}

// DiscardReservation 隊列放棄的預約沒有落庫，Redis 保留的容量要還回去
func (s *ReservationServiceImpl) DiscardReservation(ctx context.Context, reservation *model.Reservation) error {
	monitoring.RecordPersist("discarded")
	s.log.Error("reservation discarded", zap.String("code", reservation.Code), zap.String("kind", string(reservation.Kind)))
	if err := s.release(reservedUnits(reservation)); err != nil {
		return fmt.Errorf("discard reservation %s: %w", reservation.Code, err)
	}
	return nil
}

func (s *ReservationServiceImpl) PersistReservation(ctx context.Context, reservation *model.Reservation) error {
	err := s.persist(ctx, reservation)
	switch {
	case err == nil:
		monitoring.RecordPersist("ok")
	case errors.Is(err, apperrors.ErrDuplicateReservation):
		// 重送的消息：已經落庫，視為成功
		monitoring.RecordPersist("duplicate")
		s.log.Info("reservation already persisted", zap.String("code", reservation.Code))
		return nil
	default:
		monitoring.RecordPersist("error")
	}
	return err
}

func (s *ReservationServiceImpl) persist(ctx context.Context, reservation *model.Reservation) error {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := s.reservations.Create(ctx, tx, reservation); err != nil {
		return err
	}

	switch reservation.Kind {
	case model.ReservationKindVIP:
		if reservation.TierID == nil {
			return fmt.Errorf("vip reservation %s without tier: %w", reservation.Code, apperrors.ErrInvalidInput)
		}
		if err := s.tiers.IncrementReservations(ctx, tx, *reservation.TierID); err != nil {
			return err
		}
	default:
		for _, line := range reservation.Lines {
			if err := s.offerings.IncrementSold(ctx, tx, line.OfferingID, line.Quantity); err != nil {
				return err
			}
		}
	}

	return tx.Commit(ctx)
}

func (s *ReservationServiceImpl) GetReservation(ctx context.Context, code string) (*model.Reservation, error) {
	return s.reservations.FindByCode(ctx, code)
}

func (s *ReservationServiceImpl) ListReservations(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	return s.reservations.ListByEventID(ctx, eventID)
}

func (s *ReservationServiceImpl) ConfirmReservation(ctx context.Context, code string) (*model.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := s.reservations.FindByCodeWithLock(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(model.ReservationStatusConfirmed) {
		return nil, apperrors.ErrInvalidReservationStatus
	}

	updated, err := s.reservations.UpdateStatus(ctx, tx, current.ID, model.ReservationStatusConfirmed)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// CancelReservation 歸還資料庫與 Redis 的容量
func (s *ReservationServiceImpl) CancelReservation(ctx context.Context, code string) (*model.Reservation, error) {
	tx, err := s.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	current, err := s.reservations.FindByCodeWithLock(ctx, tx, code)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(model.ReservationStatusCancelled) {
		return nil, apperrors.ErrInvalidReservationStatus
	}

	updated, err := s.reservations.UpdateStatus(ctx, tx, current.ID, model.ReservationStatusCancelled)
	if err != nil {
		return nil, err
	}

	if current.Kind == model.ReservationKindVIP {
		if current.TierID != nil {
			if err := s.tiers.DecrementReservations(ctx, tx, *current.TierID); err != nil {
				return nil, err
			}
		}
	} else {
		for _, line := range current.Lines {
			if err := s.offerings.DecrementSold(ctx, tx, line.OfferingID, line.Quantity); err != nil {
				return nil, err
			}
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	s.release(reservedUnits(current))
	s.log.Info("reservation cancelled", zap.String("code", code))
	return updated, nil
}

// NewReservationCode LX- 加上 8 碼大寫十六進位
func NewReservationCode() string {
	id := strings.ReplaceAll(uuid.New().String(), "-", "")
	return "LX-" + strings.ToUpper(id[:8])
}

func resultLabel(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, apperrors.ErrInsufficientStock), errors.Is(err, apperrors.ErrTierFull):
		return "sold_out"
	case errors.Is(err, apperrors.ErrSalesClosed):
		return "sales_closed"
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrEmptySelection),
		errors.Is(err, apperrors.ErrInvalidInput),
		errors.Is(err, apperrors.ErrExceedsMaxPerOrder):
		return "rejected"
	case errors.Is(err, apperrors.ErrEventNotFound),
		errors.Is(err, apperrors.ErrOfferingNotFound),
		errors.Is(err, apperrors.ErrTierNotFound):
		return "not_found"
	default:
		return "error"
	}
}
