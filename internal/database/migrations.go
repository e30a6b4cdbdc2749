package database

import (
	"context"
	"fmt"

	"luxe-booking/pkg/logger"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

// Execer *pgxpool.Pool 與 pgx.Tx 皆符合
type Execer interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

// Migrations 依序執行，每一步皆可重複執行
var Migrations = []string{
	createEventsTable,
	createOfferingsTable,
	createOfferingsEventIndex,
	createVIPTiersTable,
	createReservationsTable,
	createReservationsEventIndex,
}

func RunMigrations(ctx context.Context, db Execer) error {
	log := logger.WithComponent("database")
	for i, migration := range Migrations {
		if _, err := db.Exec(ctx, migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
		log.Debug("migration applied", zap.Int("step", i+1))
	}
	log.Info("database migrations completed", zap.Int("steps", len(Migrations)))
	return nil
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    description TEXT,
    sales_start_date TIMESTAMPTZ NOT NULL,
    sales_end_date TIMESTAMPTZ NOT NULL,
    max_tickets_per_order INTEGER,
    refund_policy_text TEXT NOT NULL DEFAULT '',
    terms_text TEXT NOT NULL DEFAULT '',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (sales_end_date >= sales_start_date),
    CHECK (max_tickets_per_order IS NULL OR max_tickets_per_order > 0)
);`

const createOfferingsTable = `
CREATE TABLE IF NOT EXISTS offerings (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    event_id UUID NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    category VARCHAR(20) NOT NULL DEFAULT 'standard',
    base_price NUMERIC(10,2) NOT NULL,
    early_bird_price NUMERIC(10,2),
    early_bird_deadline TIMESTAMPTZ,
    max_quantity INTEGER NOT NULL,
    current_sold INTEGER NOT NULL DEFAULT 0,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    priority INTEGER NOT NULL DEFAULT 0,
    benefits TEXT[] NOT NULL DEFAULT '{}',
    group_discounts JSONB NOT NULL DEFAULT '[]',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (category IN ('standard', 'vip')),
    CHECK (current_sold >= 0 AND current_sold <= max_quantity)
);`

const createOfferingsEventIndex = `
CREATE INDEX IF NOT EXISTS idx_offerings_event_priority ON offerings(event_id, priority);`

const createVIPTiersTable = `
CREATE TABLE IF NOT EXISTS vip_tiers (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    name VARCHAR(255) NOT NULL,
    price NUMERIC(10,2) NOT NULL,
    max_reservations INTEGER NOT NULL,
    current_reservations INTEGER NOT NULL DEFAULT 0,
    perks TEXT[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (current_reservations >= 0 AND current_reservations <= max_reservations)
);`

const createReservationsTable = `
CREATE TABLE IF NOT EXISTS reservations (
    id SERIAL PRIMARY KEY,
    code VARCHAR(32) NOT NULL UNIQUE,
    kind VARCHAR(10) NOT NULL,
    event_id UUID NOT NULL,
    tier_id UUID REFERENCES vip_tiers(id),
    guest_count INTEGER NOT NULL DEFAULT 0,
    lines JSONB NOT NULL DEFAULT '[]',
    contact_name VARCHAR(255) NOT NULL,
    contact_email VARCHAR(255) NOT NULL,
    contact_phone VARCHAR(64) NOT NULL,
    special_request TEXT NOT NULL DEFAULT '',
    total_amount NUMERIC(12,2) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),

    CHECK (kind IN ('ticket', 'vip')),
    CHECK (status IN ('pending', 'confirmed', 'cancelled'))
);`

const createReservationsEventIndex = `
CREATE INDEX IF NOT EXISTS idx_reservations_event ON reservations(event_id, created_at DESC);`
