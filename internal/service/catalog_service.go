package service

import (
	"context"
	"errors"
	"fmt"

	"luxe-booking/internal/cache"
	"luxe-booking/internal/model"
	"luxe-booking/internal/repository"
	apperrors "luxe-booking/pkg/app_errors"
	"luxe-booking/pkg/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CatalogService interface {
	ListEvents(ctx context.Context) ([]*model.Event, error)
	CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error)
	UpdateEvent(ctx context.Context, eventID uuid.UUID, params repository.UpdateEventParams) (*model.Event, error)
	AddOffering(ctx context.Context, offering *model.Offering) (*model.Offering, error)
	SetOfferingActive(ctx context.Context, offeringID uuid.UUID, active bool) error
	// GetTicketConfiguration 已預熱的票種以 Redis 的已售數量為準
	GetTicketConfiguration(ctx context.Context, eventID uuid.UUID) (*model.TicketConfiguration, error)
	// OpenForSale 活動開賣：預熱該活動底下所有票種的 Redis 庫存
	OpenForSale(ctx context.Context, eventID uuid.UUID) error
	ListVIPTiers(ctx context.Context) ([]*model.VIPTier, error)
	CreateVIPTier(ctx context.Context, tier *model.VIPTier) (*model.VIPTier, error)
}

type CatalogServiceImpl struct {
	events    repository.EventRepository
	offerings repository.OfferingRepository
	tiers     repository.VIPTierRepository
	inventory cache.InventoryManager
	// 建立活動時未指定單筆上限則套用
	defaultMaxPerOrder int
	log                *zap.Logger
}

type CatalogServiceOption func(*CatalogServiceImpl)

func WithDefaultMaxPerOrder(n int) CatalogServiceOption {
	return func(s *CatalogServiceImpl) {
		if n > 0 {
			s.defaultMaxPerOrder = n
		}
	}
}

func NewCatalogService(
	events repository.EventRepository,
	offerings repository.OfferingRepository,
	tiers repository.VIPTierRepository,
	inventory cache.InventoryManager,
	opts ...CatalogServiceOption,
) CatalogService {
	s := &CatalogServiceImpl{
		events:             events,
		offerings:          offerings,
		tiers:              tiers,
		inventory:          inventory,
		defaultMaxPerOrder: model.DefaultMaxTicketsPerOrder,
		log:                logger.WithComponent("catalog_service"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CatalogServiceImpl) ListEvents(ctx context.Context) ([]*model.Event, error) {
	return s.events.List(ctx)
}

func (s *CatalogServiceImpl) CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	if event.Name == "" {
		return nil, fmt.Errorf("event name is required: %w", apperrors.ErrInvalidInput)
	}
	if !event.SalesEndDate.After(event.SalesStartDate) {
		return nil, fmt.Errorf("sales end must be after sales start: %w", apperrors.ErrInvalidInput)
	}
	if event.MaxTicketsPerOrder == nil {
		n := s.defaultMaxPerOrder
		event.MaxTicketsPerOrder = &n
	}
	if event.ID == uuid.Nil {
		event.ID = uuid.New()
	}
	return s.events.Create(ctx, event)
}

func (s *CatalogServiceImpl) UpdateEvent(ctx context.Context, eventID uuid.UUID, params repository.UpdateEventParams) (*model.Event, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}

	start, end := event.SalesStartDate, event.SalesEndDate
	if params.SalesStartDate != nil {
		start = *params.SalesStartDate
	}
	if params.SalesEndDate != nil {
		end = *params.SalesEndDate
	}
	if !end.After(start) {
		return nil, fmt.Errorf("sales end must be after sales start: %w", apperrors.ErrInvalidInput)
	}
	return s.events.Update(ctx, event.ID, params)
}

func (s *CatalogServiceImpl) AddOffering(ctx context.Context, offering *model.Offering) (*model.Offering, error) {
	if _, err := s.events.FindByID(ctx, offering.EventID); err != nil {
		return nil, err
	}
	if offering.Name == "" || !offering.Category.IsValid() {
		return nil, apperrors.ErrInvalidInput
	}
	if offering.MaxQuantity <= 0 || offering.BasePrice.IsNegative() {
		return nil, apperrors.ErrInvalidInput
	}
	if offering.ID == uuid.Nil {
		offering.ID = uuid.New()
	}
	return s.offerings.Create(ctx, offering)
}

// SetOfferingActive 只切換 Redis 的 active 旗標；計數保留尚未落庫的已售數量
func (s *CatalogServiceImpl) SetOfferingActive(ctx context.Context, offeringID uuid.UUID, active bool) error {
	if err := s.offerings.SetActive(ctx, offeringID, active); err != nil {
		return err
	}
	if err := s.inventory.SetActive(ctx, cache.OfferingKey(offeringID), active); err != nil {
		s.log.Warn("update inventory active flag failed", zap.String("offering_id", offeringID.String()), zap.Error(err))
	}
	return nil
}

func (s *CatalogServiceImpl) GetTicketConfiguration(ctx context.Context, eventID uuid.UUID) (*model.TicketConfiguration, error) {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	offerings, err := s.offerings.ListByEventID(ctx, event.ID)
	if err != nil {
		return nil, err
	}

	// 資料庫由 worker 非同步更新，Redis 才是即時的已售數量
	for _, o := range offerings {
		snapshot, err := s.inventory.Get(ctx, cache.OfferingKey(o.ID))
		if err != nil {
			if !errors.Is(err, apperrors.ErrInventoryNotLoaded) {
				s.log.Warn("read inventory failed", zap.String("offering_id", o.ID.String()), zap.Error(err))
			}
			continue
		}
		o.CurrentSold = snapshot.Sold
	}

	return model.NewTicketConfiguration(event, offerings), nil
}

func (s *CatalogServiceImpl) OpenForSale(ctx context.Context, eventID uuid.UUID) error {
	event, err := s.events.FindByID(ctx, eventID)
	if err != nil {
		return err
	}
	offerings, err := s.offerings.ListByEventID(ctx, event.ID)
	if err != nil {
		return err
	}
	for _, o := range offerings {
		loaded, err := s.inventory.WarmUp(ctx, cache.OfferingKey(o.ID), cache.InventorySnapshot{
			Capacity: o.MaxQuantity,
			Sold:     o.CurrentSold,
			Active:   o.IsActive,
		})
		if err != nil {
			return err
		}
		if !loaded {
			s.log.Debug("inventory already loaded", zap.String("offering_id", o.ID.String()))
		}
	}

	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return err
	}
	for _, t := range tiers {
		if _, err := s.inventory.WarmUp(ctx, cache.TierKey(t.ID), cache.InventorySnapshot{
			Capacity: t.MaxReservations,
			Sold:     t.CurrentReservations,
			Active:   true,
		}); err != nil {
			return err
		}
	}

	s.log.Info("event opened for sale", zap.String("event_id", event.ID.String()), zap.Int("offerings", len(offerings)))
	return nil
}

// ListVIPTiers 已預熱的方案以 Redis 的預約筆數為準
func (s *CatalogServiceImpl) ListVIPTiers(ctx context.Context) ([]*model.VIPTier, error) {
	tiers, err := s.tiers.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tiers {
		snapshot, err := s.inventory.Get(ctx, cache.TierKey(t.ID))
		if err != nil {
			continue
		}
		t.CurrentReservations = snapshot.Sold
	}
	return tiers, nil
}

func (s *CatalogServiceImpl) CreateVIPTier(ctx context.Context, tier *model.VIPTier) (*model.VIPTier, error) {
	if tier.Name == "" || tier.MaxReservations <= 0 || tier.Price.IsNegative() {
		return nil, apperrors.ErrInvalidInput
	}
	return s.tiers.Create(ctx, tier)
}
