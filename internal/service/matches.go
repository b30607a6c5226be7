package service

import (
	"context"
	"fmt"
	"time"

	"tribuna/internal/cache"
	apperrors "tribuna/internal/errors"
	"tribuna/internal/logger"
	"tribuna/internal/models"
)

// MatchGetter is the event-metadata provider consumed by pricing and
// reservations: read-only match lookup.
type MatchGetter interface {
	Get(ctx context.Context, id int64) (*models.Match, error)
}

// MatchService is the match-metadata provider. Reads go through the
// Valkey cache when one is configured; match metadata changes slowly and
// tolerates the short cache TTL.
type MatchService struct {
	matches MatchStore
	seats   SeatUnitStore
	valkey  *cache.ValkeyClient
}

func NewMatchService(matches MatchStore, seats SeatUnitStore, valkey *cache.ValkeyClient) *MatchService {
	return &MatchService{
		matches: matches,
		seats:   seats,
		valkey:  valkey,
	}
}

// Create registers a match and provisions its seat map.
func (s *MatchService) Create(ctx context.Context, req *models.CreateMatchRequest) (*models.CreateMatchResponse, error) {
	startsAt, err := time.Parse(time.RFC3339, req.StartsAt)
	if err != nil {
		return nil, fmt.Errorf("invalid starts_at: %w", err)
	}

	match := &models.Match{
		HomeTeam:         req.HomeTeam,
		AwayTeam:         req.AwayTeam,
		IsPlayoff:        req.IsPlayoff,
		VenueCapacity:    req.VenueCapacity,
		DemandMultiplier: 1.0,
		StartsAt:         startsAt,
	}

	if err := s.matches.Create(ctx, match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	if len(req.Sections) > 0 {
		if err := s.seats.CreateSeatsForMatch(ctx, match.ID, req.Sections); err != nil {
			return nil, fmt.Errorf("failed to provision seats: %w", err)
		}
	}

	return &models.CreateMatchResponse{ID: match.ID}, nil
}

// Get returns match metadata, cache-first.
func (s *MatchService) Get(ctx context.Context, id int64) (*models.Match, error) {
	if s.valkey != nil {
		if match, err := s.valkey.GetMatch(ctx, id); err == nil {
			return match, nil
		}
	}

	match, err := s.matches.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get match: %w", err)
	}
	if match == nil {
		return nil, apperrors.ErrMatchNotFound
	}

	if s.valkey != nil {
		s.valkey.SetMatch(ctx, match)
	}

	return match, nil
}

func (s *MatchService) List(ctx context.Context, page, pageSize int) ([]models.ListMatchesResponseItem, error) {
	matches, err := s.matches.List(ctx, page, pageSize)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	result := make([]models.ListMatchesResponseItem, len(matches))
	for i, match := range matches {
		result[i] = models.ListMatchesResponseItem{
			ID:        match.ID,
			HomeTeam:  match.HomeTeam,
			AwayTeam:  match.AwayTeam,
			IsPlayoff: match.IsPlayoff,
			StartsAt:  match.StartsAt,
		}
	}

	return result, nil
}

// BlockSeat takes an AVAILABLE seat off sale (damage, obstructed view,
// security hold). Blocking a seat under an active hold is refused by
// the store.
func (s *MatchService) BlockSeat(ctx context.Context, seatID string) error {
	return s.seats.Block(ctx, seatID)
}

func (s *MatchService) UnblockSeat(ctx context.Context, seatID string) error {
	return s.seats.Unblock(ctx, seatID)
}

// SetDemandMultiplier adjusts the stored demand factor for future
// quotes. Snapshotted hold prices are unaffected.
func (s *MatchService) SetDemandMultiplier(ctx context.Context, id int64, multiplier float64) error {
	if multiplier <= 0 {
		return fmt.Errorf("demand multiplier must be positive")
	}

	if err := s.matches.SetDemandMultiplier(ctx, id, multiplier); err != nil {
		return fmt.Errorf("failed to set demand multiplier: %w", err)
	}

	if s.valkey != nil {
		s.valkey.InvalidateMatch(ctx, id)
	}

	logger.WithContext(ctx).Info("Demand multiplier updated",
		"match_id", id,
		"multiplier", multiplier)

	return nil
}
