package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"luxe-booking/internal/model"
	apperrors "luxe-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type VIPTierRepository interface {
	Create(ctx context.Context, tier *model.VIPTier) (*model.VIPTier, error)
	List(ctx context.Context) ([]*model.VIPTier, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.VIPTier, error)

	// Transaction methods
	IncrementReservations(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
	DecrementReservations(ctx context.Context, tx pgx.Tx, id uuid.UUID) error
}

type VIPTierRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewVIPTierRepository(pool *pgxpool.Pool) VIPTierRepository {
	return &VIPTierRepositoryImpl{
		pool: pool,
	}
}

const vipTierColumns = `id, name, price, max_reservations, current_reservations, perks, created_at, updated_at`

func scanVIPTier(row pgx.Row) (*model.VIPTier, error) {
	var tier model.VIPTier
	err := row.Scan(
		&tier.ID,
		&tier.Name,
		&tier.Price,
		&tier.MaxReservations,
		&tier.CurrentReservations,
		&tier.Perks,
		&tier.CreatedAt,
		&tier.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTierNotFound
		}
		return nil, err
	}
	return &tier, nil
}

func (r *VIPTierRepositoryImpl) Create(ctx context.Context, tier *model.VIPTier) (*model.VIPTier, error) {
	if tier.ID == uuid.Nil {
		tier.ID = uuid.New()
	}
	if tier.Perks == nil {
		tier.Perks = []string{}
	}
	query := `
		INSERT INTO vip_tiers (id, name, price, max_reservations, current_reservations, perks)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + vipTierColumns

	created, err := scanVIPTier(r.pool.QueryRow(ctx, query,
		tier.ID, tier.Name, tier.Price, tier.MaxReservations, tier.CurrentReservations, tier.Perks,
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create vip tier: %w", err)
	}
	return created, nil
}

func (r *VIPTierRepositoryImpl) List(ctx context.Context) ([]*model.VIPTier, error) {
	query := `
		SELECT ` + vipTierColumns + `
		FROM vip_tiers
		ORDER BY price ASC
	`
	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tiers := make([]*model.VIPTier, 0)
	for rows.Next() {
		tier, err := scanVIPTier(rows)
		if err != nil {
			return nil, err
		}
		tiers = append(tiers, tier)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return tiers, nil
}

func (r *VIPTierRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.VIPTier, error) {
	query := `
		SELECT ` + vipTierColumns + `
		FROM vip_tiers
		WHERE id = $1
	`
	return scanVIPTier(r.pool.QueryRow(ctx, query, id))
}

// IncrementReservations 一筆預約佔一個名額，與人數無關
func (r *VIPTierRepositoryImpl) IncrementReservations(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE vip_tiers
		SET current_reservations = current_reservations + 1, updated_at = $1
		WHERE id = $2 AND current_reservations < max_reservations
	`
	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTierFull
	}
	return nil
}

func (r *VIPTierRepositoryImpl) DecrementReservations(ctx context.Context, tx pgx.Tx, id uuid.UUID) error {
	query := `
		UPDATE vip_tiers
		SET current_reservations = GREATEST(current_reservations - 1, 0), updated_at = $1
		WHERE id = $2
	`
	result, err := tx.Exec(ctx, query, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrTierNotFound
	}
	return nil
}
