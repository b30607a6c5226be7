package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/lib/pq"

	"tribuna/internal/database"
	apperrors "tribuna/internal/errors"
	"tribuna/internal/models"
)

type SeatUnitRepository struct {
	db *database.DB
}

func NewSeatUnitRepository(db *database.DB) *SeatUnitRepository {
	return &SeatUnitRepository{db: db}
}

// CreateSeatsForMatch provisions the seat map for a match, one insert
// batch per stand. Base prices are immutable after this point.
func (r *SeatUnitRepository) CreateSeatsForMatch(ctx context.Context, matchID int64, stands []models.Stand) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stand := range stands {
		for row := 1; row <= stand.Rows; row++ {
			for seat := 1; seat <= stand.SeatsPerRow; seat++ {
				query := `
					INSERT INTO seat_units (match_id, section_id, row_number, seat_number, base_price, status)
					VALUES ($1, $2, $3, $4, $5, 'AVAILABLE')`

				if _, err := tx.ExecContext(ctx, query, matchID, stand.SectionID, row, seat, stand.BasePrice); err != nil {
					return err
				}
			}
		}
	}

	return tx.Commit()
}

func (r *SeatUnitRepository) GetByID(ctx context.Context, id string) (*models.SeatUnit, error) {
	seat := &models.SeatUnit{}
	query := `
		SELECT id, match_id, section_id, row_number, seat_number, base_price, status, hold_id, version, created_at, updated_at
		FROM seat_units
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&seat.ID,
		&seat.MatchID,
		&seat.SectionID,
		&seat.Row,
		&seat.Number,
		&seat.BasePrice,
		&seat.Status,
		&seat.HoldID,
		&seat.Version,
		&seat.CreatedAt,
		&seat.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return seat, err
}

// GetByIDs loads a seat set in one round trip. Missing IDs surface as
// ErrSeatNotFound naming the first absent seat.
func (r *SeatUnitRepository) GetByIDs(ctx context.Context, ids []string) ([]models.SeatUnit, error) {
	query := `
		SELECT id, match_id, section_id, row_number, seat_number, base_price, status, hold_id, version, created_at, updated_at
		FROM seat_units
		WHERE id = ANY($1::uuid[])
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	found := make(map[string]bool, len(ids))
	var seats []models.SeatUnit
	for rows.Next() {
		var seat models.SeatUnit
		err := rows.Scan(
			&seat.ID,
			&seat.MatchID,
			&seat.SectionID,
			&seat.Row,
			&seat.Number,
			&seat.BasePrice,
			&seat.Status,
			&seat.HoldID,
			&seat.Version,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		found[seat.ID] = true
		seats = append(seats, seat)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if !found[id] {
			return nil, fmt.Errorf("seat %s: %w", id, apperrors.ErrSeatNotFound)
		}
	}

	return seats, nil
}

func (r *SeatUnitRepository) GetByMatchID(ctx context.Context, matchID int64, page, pageSize int, sectionID, status *string) ([]models.SeatUnit, error) {
	var seats []models.SeatUnit
	var args []interface{}
	argIndex := 1

	query := `
		SELECT id, match_id, section_id, row_number, seat_number, base_price, status, hold_id, version, created_at, updated_at
		FROM seat_units
		WHERE match_id = $1`
	args = append(args, matchID)
	argIndex++

	if sectionID != nil {
		query += fmt.Sprintf(" AND section_id = $%d", argIndex)
		args = append(args, *sectionID)
		argIndex++
	}

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, *status)
		argIndex++
	}

	query += " ORDER BY section_id, row_number, seat_number"

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var seat models.SeatUnit
		err := rows.Scan(
			&seat.ID,
			&seat.MatchID,
			&seat.SectionID,
			&seat.Row,
			&seat.Number,
			&seat.BasePrice,
			&seat.Status,
			&seat.HoldID,
			&seat.Version,
			&seat.CreatedAt,
			&seat.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		seats = append(seats, seat)
	}

	return seats, rows.Err()
}

// SectionBasePrice returns the base price of a stand. Seat units within
// one section share a base price by provisioning.
func (r *SeatUnitRepository) SectionBasePrice(ctx context.Context, matchID int64, sectionID string) (int64, error) {
	var price int64
	query := `SELECT base_price FROM seat_units WHERE match_id = $1 AND section_id = $2 LIMIT 1`

	err := r.db.QueryRowContext(ctx, query, matchID, sectionID).Scan(&price)
	if err == sql.ErrNoRows {
		return 0, apperrors.ErrSeatNotFound
	}
	return price, err
}

// Block takes a seat out of circulation for maintenance. Only AVAILABLE
// seats can be blocked; seats under a hold or booked are untouchable.
func (r *SeatUnitRepository) Block(ctx context.Context, id string) error {
	query := `
		UPDATE seat_units
		SET status = 'BLOCKED', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'AVAILABLE'`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return mapConflict(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &apperrors.SeatUnavailableError{SeatUnitIDs: []string{id}}
	}
	return nil
}

// Unblock returns a blocked seat to circulation.
func (r *SeatUnitRepository) Unblock(ctx context.Context, id string) error {
	query := `
		UPDATE seat_units
		SET status = 'AVAILABLE', version = version + 1, updated_at = NOW()
		WHERE id = $1 AND status = 'BLOCKED'`

	_, err := r.db.ExecContext(ctx, query, id)
	return mapConflict(err)
}
