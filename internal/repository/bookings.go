package repository

import (
	"context"
	"database/sql"
	"time"

	"tribuna/internal/database"
	apperrors "tribuna/internal/errors"
	"tribuna/internal/models"
)

type BookingRepository struct {
	db *database.DB
}

func NewBookingRepository(db *database.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FinalizeFromHold converts a PAID hold into a booking: the hold is read
// under lock, the booking row is written, and the seats move to BOOKED,
// all in one transaction. Reading the hold and flipping the seats
// atomically is what keeps a concurrent expiry sweep from releasing
// seats mid-finalize (the sweep only touches ACTIVE holds, and a PAID
// hold can never go back). A hold already finalized returns its existing
// booking so retries are harmless.
func (r *BookingRepository) FinalizeFromHold(ctx context.Context, holdID string, now time.Time) (*models.Booking, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	var hold models.Hold
	err = tx.QueryRowContext(ctx, `
		SELECT id, user_id, match_id, status, computed_price
		FROM holds
		WHERE id = $1
		FOR UPDATE`, holdID,
	).Scan(&hold.ID, &hold.UserID, &hold.MatchID, &hold.Status, &hold.ComputedPrice)

	if err == sql.ErrNoRows {
		return nil, false, apperrors.ErrHoldNotFound
	}
	if err != nil {
		return nil, false, mapConflict(err)
	}

	if hold.Status != models.HoldPaid {
		return nil, false, apperrors.ErrHoldNotPaid
	}

	existing := &models.Booking{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, hold_id, user_id, match_id, final_price, confirmed_at
		FROM bookings
		WHERE hold_id = $1`, holdID,
	).Scan(&existing.ID, &existing.HoldID, &existing.UserID, &existing.MatchID, &existing.FinalPrice, &existing.ConfirmedAt)
	if err == nil {
		if existing.SeatUnitIDs, err = r.seatIDs(ctx, tx, holdID); err != nil {
			return nil, false, err
		}
		return existing, false, tx.Commit()
	}
	if err != sql.ErrNoRows {
		return nil, false, mapConflict(err)
	}

	booking := &models.Booking{
		HoldID:     holdID,
		UserID:     hold.UserID,
		MatchID:    hold.MatchID,
		FinalPrice: hold.ComputedPrice,
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO bookings (hold_id, user_id, match_id, final_price, confirmed_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, confirmed_at`,
		holdID, hold.UserID, hold.MatchID, hold.ComputedPrice, now,
	).Scan(&booking.ID, &booking.ConfirmedAt)
	if err != nil {
		return nil, false, mapConflict(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE seat_units
		SET status = 'BOOKED', version = version + 1, updated_at = NOW()
		WHERE hold_id = $1 AND status IN ('LOCKED', 'RESERVED')`, holdID)
	if err != nil {
		return nil, false, mapConflict(err)
	}

	if booking.SeatUnitIDs, err = r.seatIDs(ctx, tx, holdID); err != nil {
		return nil, false, err
	}

	if err := tx.Commit(); err != nil {
		return nil, false, mapConflict(err)
	}

	return booking, true, nil
}

func (r *BookingRepository) seatIDs(ctx context.Context, tx *sql.Tx, holdID string) ([]string, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT seat_unit_id FROM hold_seats WHERE hold_id = $1 ORDER BY seat_unit_id`, holdID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	booking := &models.Booking{}
	query := `
		SELECT id, hold_id, user_id, match_id, final_price, confirmed_at
		FROM bookings
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&booking.ID,
		&booking.HoldID,
		&booking.UserID,
		&booking.MatchID,
		&booking.FinalPrice,
		&booking.ConfirmedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return booking, err
}

func (r *BookingRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	var bookings []models.Booking
	query := `
		SELECT id, hold_id, user_id, match_id, final_price, confirmed_at
		FROM bookings
		WHERE user_id = $1
		ORDER BY confirmed_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var booking models.Booking
		err := rows.Scan(
			&booking.ID,
			&booking.HoldID,
			&booking.UserID,
			&booking.MatchID,
			&booking.FinalPrice,
			&booking.ConfirmedAt,
		)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, booking)
	}

	return bookings, rows.Err()
}
