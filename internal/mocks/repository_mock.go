package mocks

import (
	"context"

	"luxe-booking/internal/model"
	"luxe-booking/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/mock"
)

type EventRepositoryMock struct {
	mock.Mock
}

func (m *EventRepositoryMock) Create(ctx context.Context, event *model.Event) (*model.Event, error) {
	args := m.Called(ctx, event)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) List(ctx context.Context) ([]*model.Event, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) FindByID(ctx context.Context, id uuid.UUID) (*model.Event, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

func (m *EventRepositoryMock) Update(ctx context.Context, id uuid.UUID, params repository.UpdateEventParams) (*model.Event, error) {
	args := m.Called(ctx, id, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Event), args.Error(1)
}

type OfferingRepositoryMock struct {
	mock.Mock
}

func (m *OfferingRepositoryMock) Create(ctx context.Context, offering *model.Offering) (*model.Offering, error) {
	args := m.Called(ctx, offering)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Offering), args.Error(1)
}

func (m *OfferingRepositoryMock) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Offering, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Offering), args.Error(1)
}

func (m *OfferingRepositoryMock) FindByID(ctx context.Context, id uuid.UUID) (*model.Offering, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Offering), args.Error(1)
}

func (m *OfferingRepositoryMock) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *OfferingRepositoryMock) IncrementSold(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	return m.Called(ctx, tx, id, quantity).Error(0)
}

func (m *OfferingRepositoryMock) DecrementSold(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	return m.Called(ctx, tx, id, quantity).Error(0)
}

type VIPTierRepositoryMock struct {
	mock.Mock
}

func (m *VIPTierRepositoryMock) Create(ctx context.Context, tier *model.VIPTier) (*model.VIPTier, error) {
	args := m.Called(ctx, tier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VIPTier), args.Error(1)
}

func (m *VIPTierRepositoryMock) List(ctx context.Context) ([]*model.VIPTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.VIPTier), args.Error(1)
}

func (m *VIPTierRepositoryMock) FindByID(ctx context.Context, id uuid.UUID) (*model.VIPTier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.VIPTier), args.Error(1)
}

func (m *VIPTierRepositoryMock) IncrementReservations(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

func (m *VIPTierRepositoryMock) DecrementReservations(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	return m.Called(ctx, tx, id).Error(0)
}

type ReservationRepositoryMock struct {
	mock.Mock
}

func (m *ReservationRepositoryMock) FindByCode(ctx context.Context, code string) (*model.Reservation, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationRepositoryMock) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Reservation), args.Error(1)
}

func (m *ReservationRepositoryMock) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error) {
	args := m.Called(ctx, tx, reservation)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationRepositoryMock) FindByCodeWithLock(ctx context.Context, tx pgx.Tx, code string) (*model.Reservation, error) {
	args := m.Called(ctx, tx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}

func (m *ReservationRepositoryMock) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) (*model.Reservation, error) {
	args := m.Called(ctx, tx, id, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Reservation), args.Error(1)
}
