package mocks

import (
	"context"

	"luxe-booking/internal/model"
	"luxe-booking/internal/repository"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type ReservationServiceMock struct {
	mock.Mock
}

func (m *ReservationServiceMock) reservation(args mock.Arguments) (*model.Reservation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) SubmitReservation(ctx context.Context, req model.ReservationRequest) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, req))
}

func (m *ReservationServiceMock) SubmitVIPReservation(ctx context.Context, req model.VIPReservationRequest) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, req))
}

func (m *ReservationServiceMock) PersistReservation(ctx context.Context, reservation *model.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *ReservationServiceMock) DiscardReservation(ctx context.Context, reservation *model.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *ReservationServiceMock) GetReservation(ctx context.Context, code string) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, code))
}

func (m *ReservationServiceMock) ListReservations(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *ReservationServiceMock) ConfirmReservation(ctx context.Context, code string) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, code))
}

func (m *ReservationServiceMock) CancelReservation(ctx context.Context, code string) (*model.Reservation, error) {
	return m.reservation(m.Called(ctx, code))
}

type CatalogServiceMock struct {
	mock.Mock
}

func (m *CatalogServiceMock) ListEvents(ctx context.Context) ([]*model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *CatalogServiceMock) CreateEvent(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *CatalogServiceMock) UpdateEvent(ctx context.Context, eventID uuid.UUID, params repository.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, eventID, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *CatalogServiceMock) AddOffering(ctx context.Context, offering *model.Offering) (*model.Offering, error) {
	args := m.Called(ctx, offering)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Offering), args.Error(1)
}

func (m *CatalogServiceMock) SetOfferingActive(ctx context.Context, offeringID uuid.UUID, active bool) error {
	return m.Called(ctx, offeringID, active).Error(0)
}

func (m *CatalogServiceMock) GetTicketConfiguration(ctx context.Context, eventID uuid.UUID) (*model.TicketConfiguration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketConfiguration), args.Error(1)
}

func (m *CatalogServiceMock) OpenForSale(ctx context.Context, eventID uuid.UUID) error {
	return m.Called(ctx, eventID).Error(0)
}

func (m *CatalogServiceMock) ListVIPTiers(ctx context.Context) ([]*model.VIPTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.VIPTier), args.Error(1)
}

func (m *CatalogServiceMock) CreateVIPTier(ctx context.Context, tier *model.VIPTier) (*model.VIPTier, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VIPTier), args.Error(1)
}
