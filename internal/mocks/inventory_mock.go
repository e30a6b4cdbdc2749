package mocks

import (
	"context"

	"luxe-booking/internal/cache"
	"luxe-booking/internal/model"
	"luxe-booking/internal/queue"

	"github.com/stretchr/testify/mock"
)

type InventoryManagerMock struct {
	mock.Mock
}

func (m *InventoryManagerMock) WarmUp(ctx context.Context, key string, snapshot cache.InventorySnapshot) (bool, error) {
	args := m.Called(ctx, key, snapshot)
	return args.Bool(0), args.Error(1)
}

func (m *InventoryManagerMock) Get(ctx context.Context, key string) (cache.InventorySnapshot, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(cache.InventorySnapshot), args.Error(1)
}

func (m *InventoryManagerMock) Reserve(ctx context.Context, key string, quantity int) error {
	return m.Called(ctx, key, quantity).Error(0)
}

func (m *InventoryManagerMock) Release(ctx context.Context, key string, quantity int) error {
	return m.Called(ctx, key, quantity).Error(0)
}

func (m *InventoryManagerMock) SetActive(ctx context.Context, key string, active bool) error {
	return m.Called(ctx, key, active).Error(0)
}

type ReservationQueueMock struct {
	mock.Mock
}

func (m *ReservationQueueMock) PublishReservation(ctx context.Context, reservation *model.Reservation) error {
	return m.Called(ctx, reservation).Error(0)
}

func (m *ReservationQueueMock) SubscribeReservations(ctx context.Context) (<-chan queue.Delivery, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(<-chan queue.Delivery), args.Error(1)
}
