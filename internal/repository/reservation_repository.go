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
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type ReservationRepository interface {
	FindByCode(ctx context.Context, code string) (*model.Reservation, error)
	ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error)

	// Transaction methods
	Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error)
	FindByCodeWithLock(ctx context.Context, tx pgx.Tx, code string) (*model.Reservation, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) (*model.Reservation, error)
}

type ReservationRepositoryImpl struct {
	pool *pgxpool.Pool
}

func NewReservationRepository(pool *pgxpool.Pool) ReservationRepository {
	return &ReservationRepositoryImpl{
		pool: pool,
	}
}

const reservationColumns = `id, code, kind, event_id, tier_id, guest_count, lines,
		contact_name, contact_email, contact_phone, special_request, total_amount,
		status, created_at, updated_at`

func scanReservation(row pgx.Row) (*model.Reservation, error) {
	var r model.Reservation
	var lines []byte
	err := row.Scan(
		&r.ID,
		&r.Code,
		&r.Kind,
		&r.EventID,
		&r.TierID,
		&r.GuestCount,
		&lines,
		&r.Contact.Name,
		&r.Contact.Email,
		&r.Contact.Phone,
		&r.SpecialRequest,
		&r.TotalAmount,
		&r.Status,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrReservationNotFound
		}
		return nil, err
	}
	r.Lines = make([]model.ReservedLine, 0)
	if len(lines) > 0 {
		if err := json.Unmarshal(lines, &r.Lines); err != nil {
			return nil, fmt.Errorf("invalid lines for reservation %s: %w", r.Code, err)
		}
	}
	return &r, nil
}

func (r *ReservationRepositoryImpl) Create(ctx context.Context, tx pgx.Tx, reservation *model.Reservation) (*model.Reservation, error) {
	lines := reservation.Lines
	if lines == nil {
		lines = []model.ReservedLine{}
	}
	linesJSON, err := json.Marshal(lines)
	if err != nil {
		return nil, fmt.Errorf("marshal reservation lines: %w", err)
	}

	query := `
		INSERT INTO reservations (
			code, kind, event_id, tier_id, guest_count, lines,
			contact_name, contact_email, contact_phone, special_request, total_amount, status
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING ` + reservationColumns

	created, err := scanReservation(tx.QueryRow(ctx, query,
		reservation.Code, reservation.Kind, reservation.EventID, reservation.TierID,
		reservation.GuestCount, string(linesJSON),
		reservation.Contact.Name, reservation.Contact.Email, reservation.Contact.Phone,
		reservation.SpecialRequest, reservation.TotalAmount, reservation.Status,
	))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, apperrors.ErrDuplicateReservation
		}
		return nil, fmt.Errorf("failed to create reservation: %w", err)
	}
	return created, nil
}

func (r *ReservationRepositoryImpl) FindByCode(ctx context.Context, code string) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE code = $1
	`
	return scanReservation(r.pool.QueryRow(ctx, query, code))
}

func (r *ReservationRepositoryImpl) ListByEventID(ctx context.Context, eventID uuid.UUID) ([]*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE event_id = $1
		ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, eventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reservations := make([]*model.Reservation, 0)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		reservations = append(reservations, reservation)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return reservations, nil
}

func (r *ReservationRepositoryImpl) FindByCodeWithLock(ctx context.Context, tx pgx.Tx, code string) (*model.Reservation, error) {
	query := `
		SELECT ` + reservationColumns + `
		FROM reservations
		WHERE code = $1
		FOR UPDATE
	`
	return scanReservation(tx.QueryRow(ctx, query, code))
}

func (r *ReservationRepositoryImpl) UpdateStatus(ctx context.Context, tx pgx.Tx, id int, status model.ReservationStatus) (*model.Reservation, error) {
	query := `
		UPDATE reservations
		SET status = $1, updated_at = $2
		WHERE id = $3
		RETURNING ` + reservationColumns

	updated, err := scanReservation(tx.QueryRow(ctx, query, status, time.Now().UTC(), id))
	if err != nil {
		if errors.Is(err, apperrors.ErrReservationNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update reservation status: %w", err)
	}
	return updated, nil
}
