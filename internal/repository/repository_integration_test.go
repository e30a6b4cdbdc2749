package repository_test

import (
	"context"
	"testing"
	"time"

	"luxe-booking/internal/model"
	"luxe-booking/internal/repository"
	"luxe-booking/internal/testutil"
	apperrors "luxe-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedEvent(t *testing.T, pool *pgxpool.Pool) *model.Event {
	t.Helper()
	start := time.Now().UTC().Truncate(time.Second)
	created, err := repository.NewEventRepository(pool).Create(context.Background(), &model.Event{
		ID:             uuid.New(),
		Name:           "Opera Night",
		SalesStartDate: start,
		SalesEndDate:   start.Add(72 * time.Hour),
	})
	require.NoError(t, err)
	return created
}

func seedOffering(t *testing.T, pool *pgxpool.Pool, eventID uuid.UUID, max int) *model.Offering {
	t.Helper()
	created, err := repository.NewOfferingRepository(pool).Create(context.Background(), &model.Offering{
		EventID:     eventID,
		Name:        "Stalls",
		Category:    model.CategoryStandard,
		BasePrice:   decimal.RequireFromString("89.50"),
		MaxQuantity: max,
		IsActive:    true,
		GroupDiscounts: []model.GroupDiscountRule{
			{MinQuantity: 4, DiscountPercent: decimal.NewFromInt(10)},
		},
	})
	require.NoError(t, err)
	return created
}

func TestEventRepository_CreateAndUpdate(t *testing.T) {
	pool := testutil.SetupDatabase(t)
	testutil.Truncate(t, pool)
	repo := repository.NewEventRepository(pool)
	ctx := context.Background()

	event := seedEvent(t, pool)

	found, err := repo.FindByID(ctx, event.ID)
	require.NoError(t, err)
	assert.Equal(t, "Opera Night", found.Name)
	assert.Nil(t, found.MaxTicketsPerOrder)

	name := "Opera Gala"
	limit := 4
	updated, err := repo.Update(ctx, event.ID, repository.UpdateEventParams{Name: &name, MaxTicketsPerOrder: &limit})
	require.NoError(t, err)
	assert.Equal(t, "Opera Gala", updated.Name)
	require.NotNil(t, updated.MaxTicketsPerOrder)
	assert.Equal(t, 4, *updated.MaxTicketsPerOrder)

	_, err = repo.FindByID(ctx, uuid.New())
	assert.ErrorIs(t, err, apperrors.ErrEventNotFound)
}

func TestOfferingRepository_RoundTripsPricing(t *testing.T) {
	pool := testutil.SetupDatabase(t)
	testutil.Truncate(t, pool)
	event := seedEvent(t, pool)
	seeded := seedOffering(t, pool, event.ID, 10)

	offerings, err := repository.NewOfferingRepository(pool).ListByEventID(context.Background(), event.ID)

	require.NoError(t, err)
	require.Len(t, offerings, 1)
	o := offerings[0]
	assert.Equal(t, seeded.ID, o.ID)
	assert.Equal(t, "89.50", o.BasePrice.StringFixed(2))
	assert.False(t, o.EarlyBirdPrice.Valid)
	require.Len(t, o.GroupDiscounts, 1)
	assert.Equal(t, 4, o.GroupDiscounts[0].MinQuantity)
	assert.Empty(t, o.Benefits)
}

func TestOfferingRepository_IncrementSoldIsGuarded(t *testing.T) {
	pool := testutil.SetupDatabase(t)
	testutil.Truncate(t, pool)
	repo := repository.NewOfferingRepository(pool)
	ctx := context.Background()
	event := seedEvent(t, pool)
	offering := seedOffering(t, pool, event.ID, 3)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.IncrementSold(ctx, tx, offering.ID, 2))
	assert.ErrorIs(t, repo.IncrementSold(ctx, tx, offering.ID, 2), apperrors.ErrInsufficientStock)
	require.NoError(t, repo.DecrementSold(ctx, tx, offering.ID, 5))
	require.NoError(t, tx.Commit(ctx))

	found, err := repo.FindByID(ctx, offering.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, found.CurrentSold)
}

func TestVIPTierRepository_OneSlotPerReservation(t *testing.T) {
	pool := testutil.SetupDatabase(t)
	testutil.Truncate(t, pool)
	repo := repository.NewVIPTierRepository(pool)
	ctx := context.Background()

	tier, err := repo.Create(ctx, &model.VIPTier{
		Name:            "Backstage Pass",
		Price:           decimal.NewFromInt(900),
		MaxReservations: 1,
		Perks:           []string{"Meet the cast"},
	})
	require.NoError(t, err)

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	require.NoError(t, repo.IncrementReservations(ctx, tx, tier.ID))
	assert.ErrorIs(t, repo.IncrementReservations(ctx, tx, tier.ID), apperrors.ErrTierFull)
	require.NoError(t, tx.Commit(ctx))

	found, err := repo.FindByID(ctx, tier.ID)
	require.NoError(t, err)
	assert.False(t, found.IsSelectable())
	assert.Equal(t, []string{"Meet the cast"}, found.Perks)
}

func TestReservationRepository_Lifecycle(t *testing.T) {
	pool := testutil.SetupDatabase(t)
	testutil.Truncate(t, pool)
	repo := repository.NewReservationRepository(pool)
	ctx := context.Background()
	event := seedEvent(t, pool)
	offering := seedOffering(t, pool, event.ID, 10)

	reservation := &model.Reservation{
		Code:       "LX-INTEG001",
		Kind:       model.ReservationKindTicket,
		EventID:    event.ID,
		GuestCount: 2,
		Lines: []model.ReservedLine{{
			OfferingID: offering.ID,
			Name:       offering.Name,
			Category:   offering.Category,
			Quantity:   2,
			Subtotal:   decimal.RequireFromString("179.00"),
		}},
		Contact:     model.ContactInfo{Name: "Ada", Email: "ada@example.com", Phone: "555-0100"},
		TotalAmount: decimal.RequireFromString("179.00"),
		Status:      model.ReservationStatusPending,
	}

	tx, err := pool.Begin(ctx)
	require.NoError(t, err)
	created, err := repo.Create(ctx, tx, reservation)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.NotZero(t, created.ID)

	// 相同代碼再次寫入
	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	_, err = repo.Create(ctx, tx, reservation)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateReservation)
	require.NoError(t, tx.Rollback(ctx))

	found, err := repo.FindByCode(ctx, "LX-INTEG001")
	require.NoError(t, err)
	require.Len(t, found.Lines, 1)
	assert.Equal(t, "179.00", found.TotalAmount.StringFixed(2))
	assert.Equal(t, "ada@example.com", found.Contact.Email)

	tx, err = pool.Begin(ctx)
	require.NoError(t, err)
	locked, err := repo.FindByCodeWithLock(ctx, tx, "LX-INTEG001")
	require.NoError(t, err)
	confirmed, err := repo.UpdateStatus(ctx, tx, locked.ID, model.ReservationStatusConfirmed)
	require.NoError(t, err)
	require.NoError(t, tx.Commit(ctx))
	assert.Equal(t, model.ReservationStatusConfirmed, confirmed.Status)

	list, err := repo.ListByEventID(ctx, event.ID)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = repo.FindByCode(ctx, "LX-MISSING0")
	assert.ErrorIs(t, err, apperrors.ErrReservationNotFound)
}
