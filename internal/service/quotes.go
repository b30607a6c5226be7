package service

import (
	"context"
	"encoding/json"
	"time"

	"tribuna/internal/cache"
	"tribuna/internal/models"
	"tribuna/internal/pricing"
)

// QuoteService prices a section of a match for display. Quotes are
// advisory: the binding price is the one snapshotted on the hold.
type QuoteService struct {
	matches MatchGetter
	seats   SeatUnitStore
	engine  *pricing.Engine
	valkey  *cache.ValkeyClient
	now     func() time.Time
}

func NewQuoteService(matches MatchGetter, seats SeatUnitStore, engine *pricing.Engine, valkey *cache.ValkeyClient) *QuoteService {
	return &QuoteService{
		matches: matches,
		seats:   seats,
		engine:  engine,
		valkey:  valkey,
		now:     time.Now,
	}
}

// Quote prices one seat in the given section. Served from the Valkey
// cache when fresh; the short TTL bounds how stale a displayed price
// can be.
func (s *QuoteService) Quote(ctx context.Context, matchID int64, sectionID string) (*models.QuoteResponse, error) {
	if s.valkey != nil {
		if raw, err := s.valkey.GetQuoteRaw(ctx, matchID, sectionID); err == nil {
			var cached models.QuoteResponse
			if err := json.Unmarshal(raw, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	match, err := s.matches.Get(ctx, matchID)
	if err != nil {
		return nil, err
	}

	basePrice, err := s.seats.SectionBasePrice(ctx, matchID, sectionID)
	if err != nil {
		return nil, err
	}

	quote := s.engine.Quote(match, basePrice, s.now())

	resp := &models.QuoteResponse{
		MatchID:    matchID,
		SectionID:  sectionID,
		BasePrice:  quote.BasePrice,
		FinalPrice: quote.FinalPrice,
		Multiplier: quote.Multiplier,
		Breakdown: map[string]float64{
			"rivalry": quote.Breakdown.Rivalry,
			"playoff": quote.Breakdown.Playoff,
			"demand":  quote.Breakdown.Demand,
			"timing":  quote.Breakdown.Timing,
		},
	}

	if s.valkey != nil {
		s.valkey.SetQuote(ctx, matchID, sectionID, resp)
	}

	return resp, nil
}

// ListSeats returns a page of the seat map with live statuses.
func (s *QuoteService) ListSeats(ctx context.Context, matchID int64, page, pageSize int, sectionID, status *string) ([]models.ListSeatsResponseItem, error) {
	seats, err := s.seats.GetByMatchID(ctx, matchID, page, pageSize, sectionID, status)
	if err != nil {
		return nil, err
	}

	result := make([]models.ListSeatsResponseItem, len(seats))
	for i := range seats {
		result[i] = models.ListSeatsResponseItem{
			ID:        seats[i].ID,
			SectionID: seats[i].SectionID,
			Row:       seats[i].Row,
			Number:    seats[i].Number,
			Status:    seats[i].Status,
			BasePrice: seats[i].BasePrice,
		}
	}
	return result, nil
}
