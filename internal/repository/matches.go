package repository

import (
	"context"
	"database/sql"

	"tribuna/internal/database"
	"tribuna/internal/models"
)

type MatchRepository struct {
	db *database.DB
}

func NewMatchRepository(db *database.DB) *MatchRepository {
	return &MatchRepository{db: db}
}

func (r *MatchRepository) Create(ctx context.Context, match *models.Match) error {
	query := `
		INSERT INTO matches (home_team, away_team, is_playoff, venue_capacity, demand_multiplier, starts_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query,
		match.HomeTeam,
		match.AwayTeam,
		match.IsPlayoff,
		match.VenueCapacity,
		match.DemandMultiplier,
		match.StartsAt,
	).Scan(&match.ID, &match.CreatedAt, &match.UpdatedAt)

	return mapConflict(err)
}

func (r *MatchRepository) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	match := &models.Match{}
	query := `
		SELECT id, home_team, away_team, is_playoff, venue_capacity, demand_multiplier, starts_at, created_at, updated_at
		FROM matches
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&match.ID,
		&match.HomeTeam,
		&match.AwayTeam,
		&match.IsPlayoff,
		&match.VenueCapacity,
		&match.DemandMultiplier,
		&match.StartsAt,
		&match.CreatedAt,
		&match.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return match, err
}

func (r *MatchRepository) List(ctx context.Context, page, pageSize int) ([]models.Match, error) {
	var matches []models.Match
	query := `
		SELECT id, home_team, away_team, is_playoff, venue_capacity, demand_multiplier, starts_at, created_at, updated_at
		FROM matches
		ORDER BY starts_at`

	var args []interface{}
	if page > 0 && pageSize > 0 {
		query += ` LIMIT $1 OFFSET $2`
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var match models.Match
		err := rows.Scan(
			&match.ID,
			&match.HomeTeam,
			&match.AwayTeam,
			&match.IsPlayoff,
			&match.VenueCapacity,
			&match.DemandMultiplier,
			&match.StartsAt,
			&match.CreatedAt,
			&match.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		matches = append(matches, match)
	}

	return matches, rows.Err()
}

// SetDemandMultiplier updates the stored demand multiplier for a match.
// Existing holds keep their snapshotted price; only new quotes see it.
func (r *MatchRepository) SetDemandMultiplier(ctx context.Context, id int64, multiplier float64) error {
	query := `UPDATE matches SET demand_multiplier = $1, updated_at = NOW() WHERE id = $2`
	_, err := r.db.ExecContext(ctx, query, multiplier, id)
	return mapConflict(err)
}
