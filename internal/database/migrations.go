package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createMatchesTable,
		createHoldsTable,
		createSeatUnitsTable,
		createHoldSeatsTable,
		createPaymentsTable,
		createBookingsTable,
		createSweepIndex,
		createPaymentRefIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createMatchesTable = `
CREATE TABLE IF NOT EXISTS matches (
    id SERIAL PRIMARY KEY,
    home_team VARCHAR(100) NOT NULL,
    away_team VARCHAR(100) NOT NULL,
    is_playoff BOOLEAN NOT NULL DEFAULT FALSE,
    venue_capacity INTEGER NOT NULL DEFAULT 0,
    demand_multiplier DOUBLE PRECISION NOT NULL DEFAULT 1.0,
    starts_at TIMESTAMP NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createHoldsTable = `
CREATE EXTENSION IF NOT EXISTS "uuid-ossp";
CREATE TABLE IF NOT EXISTS holds (
    id UUID PRIMARY KEY,
    user_id BIGINT NOT NULL,
    match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'ACTIVE',
    computed_price BIGINT NOT NULL,
    payment_ref VARCHAR(255),
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    expires_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('ACTIVE', 'EXPIRED', 'PAID', 'RELEASED')),
    CHECK (expires_at > created_at)
);`

const createSeatUnitsTable = `
CREATE TABLE IF NOT EXISTS seat_units (
    id UUID PRIMARY KEY DEFAULT uuid_generate_v4(),
    match_id INTEGER NOT NULL REFERENCES matches(id) ON DELETE CASCADE,
    section_id VARCHAR(50) NOT NULL,
    row_number INTEGER NOT NULL,
    seat_number INTEGER NOT NULL,
    base_price BIGINT NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'AVAILABLE',
    hold_id UUID REFERENCES holds(id),
    version BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(match_id, section_id, row_number, seat_number),
    CHECK (status IN ('AVAILABLE', 'LOCKED', 'RESERVED', 'BOOKED', 'BLOCKED')),
    CHECK ((status IN ('LOCKED', 'RESERVED') AND hold_id IS NOT NULL)
        OR (status IN ('AVAILABLE', 'BLOCKED') AND hold_id IS NULL)
        OR status = 'BOOKED')
);`

const createHoldSeatsTable = `
CREATE TABLE IF NOT EXISTS hold_seats (
    id SERIAL PRIMARY KEY,
    hold_id UUID NOT NULL REFERENCES holds(id) ON DELETE CASCADE,
    seat_unit_id UUID NOT NULL REFERENCES seat_units(id) ON DELETE CASCADE,
    locked_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(hold_id, seat_unit_id)
);`

const createPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    transaction_id VARCHAR(255) PRIMARY KEY,
    amount BIGINT NOT NULL,
    reference VARCHAR(255),
    received_at TIMESTAMP NOT NULL DEFAULT NOW(),
    outcome VARCHAR(30) NOT NULL DEFAULT 'UNMATCHED',
    matched_hold_id UUID REFERENCES holds(id),
    detail TEXT,

    CHECK (outcome IN ('MATCHED', 'DUPLICATE', 'AMOUNT_MISMATCH', 'LATE_AMOUNT_MATCHED', 'UNMATCHED'))
);`

const createBookingsTable = `
CREATE TABLE IF NOT EXISTS bookings (
    id SERIAL PRIMARY KEY,
    hold_id UUID NOT NULL UNIQUE REFERENCES holds(id),
    user_id BIGINT NOT NULL,
    match_id INTEGER NOT NULL REFERENCES matches(id),
    final_price BIGINT NOT NULL,
    confirmed_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createSweepIndex = `
CREATE INDEX IF NOT EXISTS holds_active_expiry_idx
ON holds (expires_at) WHERE status = 'ACTIVE';`

const createPaymentRefIndex = `
CREATE INDEX IF NOT EXISTS holds_payment_ref_idx
ON holds (payment_ref) WHERE payment_ref IS NOT NULL;`
