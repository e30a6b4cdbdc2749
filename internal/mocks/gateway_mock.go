package mocks

import (
	"context"

	"luxe-booking/internal/model"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type GatewayMock struct {
	mock.Mock
}

func NewGatewayMock() *GatewayMock {
	return &GatewayMock{}
}

func (m *GatewayMock) FetchTicketConfiguration(ctx context.Context, eventID uuid.UUID) (*model.TicketConfiguration, error) {
	args := m.Called(ctx, eventID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.TicketConfiguration), args.Error(1)
}

func (m *GatewayMock) SubmitReservation(ctx context.Context, req model.ReservationRequest) (*model.ReservationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ReservationResult), args.Error(1)
}

func (m *GatewayMock) FetchVIPTiers(ctx context.Context) ([]model.VIPTier, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.VIPTier), args.Error(1)
}

func (m *GatewayMock) SubmitVIPReservation(ctx context.Context, req model.VIPReservationRequest) (bool, error) {
	args := m.Called(ctx, req)
	return args.Bool(0), args.Error(1)
}
