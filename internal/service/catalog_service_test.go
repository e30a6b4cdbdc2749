package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"luxe-booking/internal/cache"
	"luxe-booking/internal/mocks"
	"luxe-booking/internal/model"
	"luxe-booking/internal/repository"
	"luxe-booking/internal/service"
	apperrors "luxe-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newCatalog(f *fixture) service.CatalogService {
	return service.NewCatalogService(f.events, f.offerings, f.tiers, f.inventory)
}

func TestCatalog_GetTicketConfiguration_OverlaysCachedSold(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)

	f.inventory.On("Get", mock.Anything, cache.OfferingKey(f.standard.ID)).
		Return(cache.InventorySnapshot{Capacity: 10, Sold: 7, Active: true}, nil).Once()
	f.inventory.On("Get", mock.Anything, cache.OfferingKey(f.vip.ID)).
		Return(cache.InventorySnapshot{}, apperrors.ErrInventoryNotLoaded).Once()

	cfg, err := catalog.GetTicketConfiguration(context.Background(), f.event.ID)

	require.NoError(t, err)
	require.Len(t, cfg.RegularOfferings, 1)
	require.Len(t, cfg.VIPOfferings, 1)
	assert.Equal(t, 7, cfg.RegularOfferings[0].CurrentSold)
	assert.Equal(t, 0, cfg.VIPOfferings[0].CurrentSold)
	assert.Equal(t, f.event.SalesStartDate, cfg.SalesStartDate)
	f.assertExpectations(t)
}

func TestCatalog_GetTicketConfiguration_EventNotFound(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)
	missing := uuid.New()
	f.events.On("FindByID", mock.Anything, missing).Return(nil, apperrors.ErrEventNotFound).Once()

	_, err := catalog.GetTicketConfiguration(context.Background(), missing)

	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestCatalog_OpenForSale(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)

	f.inventory.On("WarmUp", mock.Anything, cache.OfferingKey(f.standard.ID), cache.InventorySnapshot{Capacity: 10, Sold: 2, Active: true}).
		Return(true, nil).Once()
	f.inventory.On("WarmUp", mock.Anything, cache.OfferingKey(f.vip.ID), cache.InventorySnapshot{Capacity: 5, Sold: 0, Active: true}).
		Return(false, nil).Once()
	f.tiers.On("List", mock.Anything).Return([]*model.VIPTier{f.tier}, nil).Once()
	f.inventory.On("WarmUp", mock.Anything, cache.TierKey(f.tier.ID), cache.InventorySnapshot{Capacity: 8, Sold: 3, Active: true}).
		Return(true, nil).Once()

	require.NoError(t, catalog.OpenForSale(context.Background(), f.event.ID))
	f.assertExpectations(t)
}

func TestCatalog_SetOfferingActive_KeepsCachedCount(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)

	f.offerings.On("SetActive", mock.Anything, f.standard.ID, false).Return(nil).Once()
	f.inventory.On("SetActive", mock.Anything, cache.OfferingKey(f.standard.ID), false).Return(nil).Once()

	require.NoError(t, catalog.SetOfferingActive(context.Background(), f.standard.ID, false))
	f.inventory.AssertNotCalled(t, "WarmUp", mock.Anything, mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestCatalog_SetOfferingActive_CacheErrorIsLogged(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)

	f.offerings.On("SetActive", mock.Anything, f.standard.ID, true).Return(nil).Once()
	f.inventory.On("SetActive", mock.Anything, cache.OfferingKey(f.standard.ID), true).Return(errors.New("redis down")).Once()

	require.NoError(t, catalog.SetOfferingActive(context.Background(), f.standard.ID, true))
	f.assertExpectations(t)
}

func TestCatalog_CreateEvent(t *testing.T) {
	t.Run("Assigns id", func(t *testing.T) {
		f := newFixture(t)
		catalog := newCatalog(f)
		event := &model.Event{Name: "Autumn Ball", SalesStartDate: now, SalesEndDate: now.Add(time.Hour)}
		f.events.On("Create", mock.Anything, event).Return(event, nil).Once()

		created, err := catalog.CreateEvent(context.Background(), event)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
		require.NotNil(t, created.MaxTicketsPerOrder)
		assert.Equal(t, model.DefaultMaxTicketsPerOrder, *created.MaxTicketsPerOrder)
	})

	t.Run("Configured default per-order max", func(t *testing.T) {
		f := newFixture(t)
		catalog := service.NewCatalogService(f.events, f.offerings, f.tiers, f.inventory, service.WithDefaultMaxPerOrder(4))
		event := &model.Event{Name: "Winter Ball", SalesStartDate: now, SalesEndDate: now.Add(time.Hour)}
		f.events.On("Create", mock.Anything, event).Return(event, nil).Once()

		created, err := catalog.CreateEvent(context.Background(), event)

		require.NoError(t, err)
		assert.Equal(t, 4, *created.MaxTicketsPerOrder)
	})

	t.Run("Window must be ordered", func(t *testing.T) {
		f := newFixture(t)
		catalog := newCatalog(f)
		event := &model.Event{Name: "Autumn Ball", SalesStartDate: now, SalesEndDate: now}

		_, err := catalog.CreateEvent(context.Background(), event)

		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
		f.events.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestCatalog_UpdateEvent_ValidatesMergedWindow(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)
	end := f.event.SalesStartDate.Add(-time.Hour)

	_, err := catalog.UpdateEvent(context.Background(), f.event.ID, repository.UpdateEventParams{SalesEndDate: &end})

	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	f.events.AssertNotCalled(t, "Update", mock.Anything, mock.Anything, mock.Anything)
}

func TestCatalog_AddOffering(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)

	t.Run("Invalid category", func(t *testing.T) {
		_, err := catalog.AddOffering(context.Background(), &model.Offering{
			EventID: f.event.ID, Name: "Mystery", Category: "gold", MaxQuantity: 1,
		})
		assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
	})

	t.Run("Created", func(t *testing.T) {
		o := &model.Offering{
			EventID:     f.event.ID,
			Name:        "Balcony",
			Category:    model.CategoryStandard,
			BasePrice:   decimal.NewFromInt(80),
			MaxQuantity: 40,
			IsActive:    true,
		}
		f.offerings.On("Create", mock.Anything, o).Return(o, nil).Once()

		created, err := catalog.AddOffering(context.Background(), o)

		require.NoError(t, err)
		assert.NotEqual(t, uuid.Nil, created.ID)
	})
}

func TestCatalog_ListVIPTiers_OverlaysCachedReservations(t *testing.T) {
	f := newFixture(t)
	catalog := newCatalog(f)
	f.tiers.On("List", mock.Anything).Return([]*model.VIPTier{f.tier}, nil).Once()
	f.inventory.On("Get", mock.Anything, cache.TierKey(f.tier.ID)).
		Return(cache.InventorySnapshot{Capacity: 8, Sold: 8, Active: true}, nil).Once()

	tiers, err := catalog.ListVIPTiers(context.Background())

	require.NoError(t, err)
	require.Len(t, tiers, 1)
	assert.False(t, tiers[0].IsSelectable())
}

var _ service.TxBeginner = (*mocks.TxBeginnerMock)(nil)
