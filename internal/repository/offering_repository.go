package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"luxe-booking/internal/model"
	apperrors "luxe-booking/pkg/app_errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type OfferingRepository interface {
	Create(ctx context.Context, offering *model.Offering) (*model.Offering, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Offering, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Offering, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error

	// Transaction methods
	IncrementSold(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
	DecrementSold(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error
}

type OfferingRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewOfferingRepository(pool *pgxpool.Pool) OfferingRepository {
	return &OfferingRepositoryImpl{
		pool: pool,
	}
}

const offeringColumns = `id, event_id, name, category, base_price, early_bird_price, early_bird_deadline,
		max_quantity, current_sold, is_active, priority, benefits, group_discounts,
		created_at, updated_at`

func scanOffering(row pgx.Row) (*model.Offering, error) {
	var o model.Offering
	var discounts []byte
	err := row.Scan(
		&o.ID,
		&o.EventID,
		&o.Name,
		&o.Category,
		&o.BasePrice,
		&o.EarlyBirdPrice,
		&o.EarlyBirdDeadline,
		&o.MaxQuantity,
		&o.CurrentSold,
		&o.IsActive,
		&o.Priority,
		&o.Benefits,
		&discounts,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrOfferingNotFound
		}
		return nil, err
	}
	if len(discounts) > 0 {
		if err := json.Unmarshal(discounts, &o.GroupDiscounts); err != nil {
			return nil, fmt.Errorf("invalid group discounts for offering %s: %w", o.ID, err)
		}
	}
	return &o, nil
}

func (r *OfferingRepositoryImpl) Create(ctx context.Context, offering *model.Offering) (*model.Offering, error) {
	if offering.ID == uuid.Nil {
		offering.ID = uuid.New()
	}
	if offering.Benefits == nil {
		offering.Benefits = []string{}
	}
	discounts, err := json.Marshal(offering.GroupDiscounts)
	if err != nil {
		return nil, fmt.Errorf("marshal group discounts: %w", err)
	}
	if offering.GroupDiscounts == nil {
		discounts = []byte("[]")
	}

	query := `
		INSERT INTO offerings (id, event_id, name, category, base_price, early_bird_price,
			early_bird_deadline, max_quantity, current_sold, is_active, priority, benefits, group_discounts)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + offeringColumns

	created, err := scanOffering(r.pool.QueryRow(ctx, query,
		offering.ID, offering.EventID, offering.Name, offering.Category, offering.BasePrice,
		offering.EarlyBirdPrice, offering.EarlyBirdDeadline, offering.MaxQuantity, offering.CurrentSold,
		offering.IsActive, offering.Priority, offering.Benefits, string(discounts),
	))
	if err != nil {
		return nil, fmt.Errorf("failed to create offering: %w", err)
	}
	return created, nil
}

func (r *OfferingRepositoryImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Offering, error) {
	query := `
		SELECT ` + offeringColumns + `
		FROM offerings
		WHERE event_id = $1
		ORDER BY priority ASC, created_at ASC
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	offerings := make([]*model.Offering, 0)
	for rows.Next() {
		o, err := scanOffering(rows)
		if err != nil {
			return nil, err
		}
		offerings = append(offerings, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return offerings, nil
}

func (r *OfferingRepositoryImpl) FindByID(ctx context.Context, id uuid.UUID) (*model.Offering, error) {
	query := `
		SELECT ` + offeringColumns + `
		FROM offerings
		WHERE id = $1
	`
	return scanOffering(r.pool.QueryRow(ctx, query, id))
}

func (r *OfferingRepositoryImpl) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	query := `
		UPDATE offerings
		SET is_active = $1, updated_at = $2
		WHERE id = $3
	`
	result, err := r.pool.Exec(ctx, query, active, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}
	return nil
}

// IncrementSold 超過容量時不更新，回傳 ErrInsufficientStock
func (r *OfferingRepositoryImpl) IncrementSold(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	query := `
		UPDATE offerings
		SET current_sold = current_sold + $1, updated_at = $2
		WHERE id = $3 AND current_sold + $1 <= max_quantity
	`
	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrInsufficientStock
	}
	return nil
}

func (r *OfferingRepositoryImpl) DecrementSold(ctx context.Context, tx pgx.Tx, id uuid.UUID, quantity int) error {
	query := `
		UPDATE offerings
		SET current_sold = GREATEST(current_sold - $1, 0), updated_at = $2
		WHERE id = $3
	`
	result, err := tx.Exec(ctx, query, quantity, time.Now().UTC(), id)
	if err != nil {
		return err
	}
	if result.RowsAffected() == 0 {
		return apperrors.ErrOfferingNotFound
	}
	return nil
}
