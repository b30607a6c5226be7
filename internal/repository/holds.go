package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"tribuna/internal/database"
	apperrors "tribuna/internal/errors"
	"tribuna/internal/models"
)

type HoldRepository struct {
	db *database.DB
}

func NewHoldRepository(db *database.DB) *HoldRepository {
	return &HoldRepository{db: db}
}

const holdColumns = `id, user_id, match_id, status, computed_price, payment_ref, created_at, expires_at, updated_at`

func scanHold(row interface{ Scan(...interface{}) error }, hold *models.Hold) error {
	return row.Scan(
		&hold.ID,
		&hold.UserID,
		&hold.MatchID,
		&hold.Status,
		&hold.ComputedPrice,
		&hold.PaymentRef,
		&hold.CreatedAt,
		&hold.ExpiresAt,
		&hold.UpdatedAt,
	)
}

// CreateHold locks every requested seat and writes the hold in one
// transaction. Seats are locked in ID order so two racing requests over
// overlapping sets always collide instead of deadlocking. If any seat is
// not AVAILABLE nothing is mutated and the conflicting seats are named.
func (r *HoldRepository) CreateHold(ctx context.Context, hold *models.Hold) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		SELECT id, status FROM seat_units
		WHERE id = ANY($1::uuid[]) AND match_id = $2
		ORDER BY id
		FOR UPDATE`,
		pq.Array(hold.SeatUnitIDs), hold.MatchID)
	if err != nil {
		return mapConflict(err)
	}

	statuses := make(map[string]string, len(hold.SeatUnitIDs))
	for rows.Next() {
		var id, status string
		if err := rows.Scan(&id, &status); err != nil {
			rows.Close()
			return err
		}
		statuses[id] = status
	}
	if err := rows.Close(); err != nil {
		return err
	}

	var unavailable []string
	for _, id := range hold.SeatUnitIDs {
		status, ok := statuses[id]
		if !ok {
			return fmt.Errorf("seat %s: %w", id, apperrors.ErrSeatNotFound)
		}
		if status != models.SeatAvailable {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return &apperrors.SeatUnavailableError{SeatUnitIDs: unavailable}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO holds (id, user_id, match_id, status, computed_price, payment_ref, expires_at)
		VALUES ($1, $2, $3, 'ACTIVE', $4, $5, $6)
		RETURNING created_at, updated_at`,
		hold.ID, hold.UserID, hold.MatchID, hold.ComputedPrice, hold.PaymentRef, hold.ExpiresAt,
	).Scan(&hold.CreatedAt, &hold.UpdatedAt)
	if err != nil {
		return mapConflict(err)
	}
	hold.Status = models.HoldActive

	for _, seatID := range hold.SeatUnitIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO hold_seats (hold_id, seat_unit_id) VALUES ($1, $2)`,
			hold.ID, seatID); err != nil {
			return mapConflict(err)
		}
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE seat_units
		SET status = 'LOCKED', hold_id = $1, version = version + 1, updated_at = NOW()
		WHERE id = ANY($2::uuid[])`,
		hold.ID, pq.Array(hold.SeatUnitIDs))
	if err != nil {
		return mapConflict(err)
	}

	return mapConflict(tx.Commit())
}

func (r *HoldRepository) GetByID(ctx context.Context, id string) (*models.Hold, error) {
	hold := &models.Hold{}
	query := `SELECT ` + holdColumns + ` FROM holds WHERE id = $1`

	err := scanHold(r.db.QueryRowContext(ctx, query, id), hold)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if hold.SeatUnitIDs, err = r.seatIDs(ctx, id); err != nil {
		return nil, err
	}
	return hold, nil
}

func (r *HoldRepository) GetByUserID(ctx context.Context, userID int64) ([]models.Hold, error) {
	query := `SELECT ` + holdColumns + ` FROM holds WHERE user_id = $1 ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []models.Hold
	for rows.Next() {
		var hold models.Hold
		if err := scanHold(rows, &hold); err != nil {
			return nil, err
		}
		holds = append(holds, hold)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range holds {
		if holds[i].SeatUnitIDs, err = r.seatIDs(ctx, holds[i].ID); err != nil {
			return nil, err
		}
	}
	return holds, nil
}

func (r *HoldRepository) seatIDs(ctx context.Context, holdID string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx,
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

// Extend moves the deadline of an ACTIVE, unexpired hold. The guard is
// in the WHERE clause so a hold that expired between read and write
// cannot be revived.
func (r *HoldRepository) Extend(ctx context.Context, id string, until, now time.Time) (*models.Hold, error) {
	hold := &models.Hold{}
	err := scanHold(r.db.QueryRowContext(ctx, `
		UPDATE holds
		SET expires_at = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'ACTIVE' AND expires_at > $3
		RETURNING `+holdColumns, id, until, now), hold)

	if err == sql.ErrNoRows {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		if existing == nil {
			return nil, apperrors.ErrHoldNotFound
		}
		return nil, apperrors.ErrHoldNotActive
	}
	if err != nil {
		return nil, mapConflict(err)
	}

	if hold.SeatUnitIDs, err = r.seatIDs(ctx, id); err != nil {
		return nil, err
	}
	return hold, nil
}

// Release transitions an ACTIVE hold to the given terminal status and
// frees its seats, all in one transaction. Calling it on an already
// terminal hold is a no-op, which is what makes release and the expiry
// sweep safe to repeat.
func (r *HoldRepository) Release(ctx context.Context, id, terminalStatus string) (*models.Hold, bool, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, false, err
	}
	defer tx.Rollback()

	hold := &models.Hold{}
	err = scanHold(tx.QueryRowContext(ctx, `
		UPDATE holds
		SET status = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'ACTIVE'
		RETURNING `+holdColumns, id, terminalStatus), hold)

	if err == sql.ErrNoRows {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, false, getErr
		}
		if existing == nil {
			return nil, false, apperrors.ErrHoldNotFound
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, mapConflict(err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE seat_units
		SET status = 'AVAILABLE', hold_id = NULL, version = version + 1, updated_at = NOW()
		WHERE hold_id = $1 AND status IN ('LOCKED', 'RESERVED')`, id)
	if err != nil {
		return nil, false, mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, false, mapConflict(err)
	}

	if hold.SeatUnitIDs, err = r.seatIDs(ctx, id); err != nil {
		return nil, false, err
	}
	return hold, true, nil
}

// ExpireDue flips every ACTIVE hold past its deadline to EXPIRED and
// frees the seats. The conditional UPDATE means concurrent sweeps split
// the work instead of double-releasing: each hold is won exactly once.
func (r *HoldRepository) ExpireDue(ctx context.Context, now time.Time) ([]models.Hold, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := tx.QueryContext(ctx, `
		UPDATE holds
		SET status = 'EXPIRED', updated_at = NOW()
		WHERE status = 'ACTIVE' AND expires_at <= $1
		RETURNING `+holdColumns, now)
	if err != nil {
		return nil, mapConflict(err)
	}

	var expired []models.Hold
	for rows.Next() {
		var hold models.Hold
		if err := scanHold(rows, &hold); err != nil {
			rows.Close()
			return nil, err
		}
		expired = append(expired, hold)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}

	if len(expired) == 0 {
		return nil, tx.Commit()
	}

	ids := make([]string, len(expired))
	for i, hold := range expired {
		ids[i] = hold.ID
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE seat_units
		SET status = 'AVAILABLE', hold_id = NULL, version = version + 1, updated_at = NOW()
		WHERE hold_id = ANY($1::uuid[]) AND status IN ('LOCKED', 'RESERVED')`,
		pq.Array(ids))
	if err != nil {
		return nil, mapConflict(err)
	}

	if err := tx.Commit(); err != nil {
		return nil, mapConflict(err)
	}

	for i := range expired {
		if expired[i].SeatUnitIDs, err = r.seatIDs(ctx, expired[i].ID); err != nil {
			return nil, err
		}
	}
	return expired, nil
}

// MarkPaid transitions ACTIVE -> PAID only while the deadline has not
// passed. Anything else is reported as a typed precondition failure so
// the reconciler can route the payment to manual review.
func (r *HoldRepository) MarkPaid(ctx context.Context, id, paymentRef string, now time.Time) (*models.Hold, error) {
	hold := &models.Hold{}
	err := scanHold(r.db.QueryRowContext(ctx, `
		UPDATE holds
		SET status = 'PAID', payment_ref = $2, updated_at = NOW()
		WHERE id = $1 AND status = 'ACTIVE' AND expires_at > $3
		RETURNING `+holdColumns, id, paymentRef, now), hold)

	if err == sql.ErrNoRows {
		existing, getErr := r.GetByID(ctx, id)
		if getErr != nil {
			return nil, getErr
		}
		switch {
		case existing == nil:
			return nil, apperrors.ErrHoldNotFound
		case existing.Status == models.HoldExpired,
			existing.Status == models.HoldActive && !existing.ExpiresAt.After(now):
			return nil, apperrors.ErrHoldExpired
		default:
			return nil, apperrors.ErrHoldNotActive
		}
	}
	if err != nil {
		return nil, mapConflict(err)
	}

	if hold.SeatUnitIDs, err = r.seatIDs(ctx, id); err != nil {
		return nil, err
	}
	return hold, nil
}

// FindActiveByPaymentRef resolves the reference staged by the client at
// submission time to its open hold.
func (r *HoldRepository) FindActiveByPaymentRef(ctx context.Context, ref string) (*models.Hold, error) {
	hold := &models.Hold{}
	query := `SELECT ` + holdColumns + ` FROM holds WHERE payment_ref = $1 AND status = 'ACTIVE'`

	err := scanHold(r.db.QueryRowContext(ctx, query, ref), hold)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if hold.SeatUnitIDs, err = r.seatIDs(ctx, hold.ID); err != nil {
		return nil, err
	}
	return hold, nil
}

// FindPaidByPaymentRef finds the hold a transaction already settled.
// MarkPaid stamps the transaction ID as the payment ref, so this is the
// recovery lookup when a verdict was lost mid-flight.
func (r *HoldRepository) FindPaidByPaymentRef(ctx context.Context, ref string) (*models.Hold, error) {
	hold := &models.Hold{}
	query := `SELECT ` + holdColumns + ` FROM holds WHERE payment_ref = $1 AND status = 'PAID'`

	err := scanHold(r.db.QueryRowContext(ctx, query, ref), hold)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if hold.SeatUnitIDs, err = r.seatIDs(ctx, hold.ID); err != nil {
		return nil, err
	}
	return hold, nil
}

// FindActiveByAmount lists recent ACTIVE holds whose snapshotted price
// is within tolerance of the paid amount, for the last-resort heuristic.
func (r *HoldRepository) FindActiveByAmount(ctx context.Context, amount, tolerance int64, since time.Time) ([]models.Hold, error) {
	query := `
		SELECT ` + holdColumns + `
		FROM holds
		WHERE status = 'ACTIVE' AND created_at >= $3
		  AND computed_price BETWEEN $1 - $2 AND $1 + $2
		ORDER BY created_at DESC`

	rows, err := r.db.QueryContext(ctx, query, amount, tolerance, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var holds []models.Hold
	for rows.Next() {
		var hold models.Hold
		if err := scanHold(rows, &hold); err != nil {
			return nil, err
		}
		holds = append(holds, hold)
	}
	return holds, rows.Err()
}
