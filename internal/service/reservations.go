package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"tribuna/internal/config"
	apperrors "tribuna/internal/errors"
	"tribuna/internal/logger"
	"tribuna/internal/models"
	"tribuna/internal/pricing"
)

// ReservationService owns the hold lifecycle: create, extend, release,
// expire, mark paid. All multi-row transitions happen inside the store;
// this layer validates, prices, retries serialization conflicts and
// publishes events.
type ReservationService struct {
	holds   HoldStore
	seats   SeatUnitStore
	matches MatchGetter
	engine  *pricing.Engine
	events  EventPublisher
	cfg     config.ReservationConfig
	now     func() time.Time
}

func NewReservationService(holds HoldStore, seats SeatUnitStore, matches MatchGetter, engine *pricing.Engine, events EventPublisher, cfg config.ReservationConfig) *ReservationService {
	return &ReservationService{
		holds:   holds,
		seats:   seats,
		matches: matches,
		engine:  engine,
		events:  events,
		cfg:     cfg,
		now:     time.Now,
	}
}

// CreateHold locks the requested seats and snapshots their price. The
// computed price is fixed for the life of the hold even if pricing
// inputs change afterwards.
func (s *ReservationService) CreateHold(ctx context.Context, userID int64, req *models.CreateHoldRequest) (*models.HoldResponse, error) {
	seatIDs := dedupe(req.SeatUnitIDs)
	if len(seatIDs) == 0 {
		return nil, fmt.Errorf("at least one seat unit is required")
	}

	match, err := s.matches.Get(ctx, req.MatchID)
	if err != nil {
		return nil, err
	}

	seats, err := s.seats.GetByIDs(ctx, seatIDs)
	if err != nil {
		return nil, err
	}

	now := s.now()
	var total int64
	for i := range seats {
		if seats[i].MatchID != req.MatchID {
			return nil, apperrors.ErrSeatNotFound
		}
		quote := s.engine.Quote(match, seats[i].BasePrice, now)
		total += quote.FinalPrice
	}

	ttl := s.clampTTL(time.Duration(req.TTLSeconds) * time.Second)

	hold := &models.Hold{
		ID:            uuid.New().String(),
		UserID:        userID,
		MatchID:       req.MatchID,
		SeatUnitIDs:   seatIDs,
		Status:        models.HoldActive,
		ComputedPrice: total,
		PaymentRef:    req.PaymentRef,
		CreatedAt:     now,
		ExpiresAt:     now.Add(ttl),
	}

	err = s.withRetry(ctx, func() error {
		return s.holds.CreateHold(ctx, hold)
	})
	if err != nil {
		return nil, err
	}

	logger.WithContext(ctx).Info("Hold created",
		"hold_id", hold.ID,
		"match_id", hold.MatchID,
		"seats", len(seatIDs),
		"computed_price", total)

	s.publish(models.EventHoldCreated, &models.HoldCreatedEvent{
		HoldID:        hold.ID,
		MatchID:       hold.MatchID,
		UserID:        hold.UserID,
		SeatUnitIDs:   hold.SeatUnitIDs,
		ComputedPrice: hold.ComputedPrice,
		ExpiresAt:     hold.ExpiresAt,
		Timestamp:     now,
	})

	return holdResponse(hold), nil
}

// Get returns one hold; callers see only their own holds.
func (s *ReservationService) Get(ctx context.Context, userID int64, holdID string) (*models.HoldResponse, error) {
	hold, err := s.ownedHold(ctx, userID, holdID)
	if err != nil {
		return nil, err
	}
	return holdResponse(hold), nil
}

func (s *ReservationService) ListByUser(ctx context.Context, userID int64) ([]models.HoldResponse, error) {
	holds, err := s.holds.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]models.HoldResponse, len(holds))
	for i := range holds {
		result[i] = *holdResponse(&holds[i])
	}
	return result, nil
}

// ExtendHold pushes the expiry forward. The total lifetime stays capped:
// the new deadline never exceeds now + max TTL.
func (s *ReservationService) ExtendHold(ctx context.Context, userID int64, req *models.ExtendHoldRequest) (*models.HoldResponse, error) {
	hold, err := s.ownedHold(ctx, userID, req.HoldID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	until := hold.ExpiresAt.Add(time.Duration(req.AdditionalSeconds) * time.Second)
	if limit := now.Add(s.cfg.MaxTTL); until.After(limit) {
		until = limit
	}

	var extended *models.Hold
	err = s.withRetry(ctx, func() error {
		var inner error
		extended, inner = s.holds.Extend(ctx, req.HoldID, until, now)
		return inner
	})
	if err != nil {
		return nil, err
	}

	s.publish(models.EventHoldExtended, &models.HoldExtendedEvent{
		HoldID:    extended.ID,
		ExpiresAt: extended.ExpiresAt,
		Timestamp: now,
	})

	return holdResponse(extended), nil
}

// ReleaseHold frees the seats early. Releasing a hold that already
// reached a terminal state is a no-op, not an error.
func (s *ReservationService) ReleaseHold(ctx context.Context, userID int64, req *models.ReleaseHoldRequest) (*models.HoldResponse, error) {
	if _, err := s.ownedHold(ctx, userID, req.HoldID); err != nil {
		return nil, err
	}

	var hold *models.Hold
	var released bool
	err := s.withRetry(ctx, func() error {
		var inner error
		hold, released, inner = s.holds.Release(ctx, req.HoldID, models.HoldReleased)
		return inner
	})
	if err != nil {
		return nil, err
	}

	if released {
		s.publish(models.EventHoldReleased, &models.HoldReleasedEvent{
			HoldID:    hold.ID,
			MatchID:   hold.MatchID,
			Reason:    "released",
			Timestamp: s.now(),
		})
	}

	return holdResponse(hold), nil
}

// ExpireSweep transitions every ACTIVE hold past its deadline to EXPIRED
// and frees the seats. Safe to run concurrently: the conditional update
// in the store means each due hold is claimed by exactly one sweep.
func (s *ReservationService) ExpireSweep(ctx context.Context, now time.Time) (int, error) {
	expired, err := s.holds.ExpireDue(ctx, now)
	if err != nil {
		return 0, err
	}

	for i := range expired {
		s.publish(models.EventHoldExpired, &models.HoldReleasedEvent{
			HoldID:    expired[i].ID,
			MatchID:   expired[i].MatchID,
			Reason:    "expired",
			Timestamp: now,
		})
	}

	if len(expired) > 0 {
		logger.WithContext(ctx).Info("Expired holds released", "count", len(expired))
	}

	return len(expired), nil
}

// MarkPaid flips an ACTIVE, unexpired hold to PAID. Called by the
// reconciler once per matched payment.
func (s *ReservationService) MarkPaid(ctx context.Context, holdID, paymentRef string) (*models.Hold, error) {
	var hold *models.Hold
	err := s.withRetry(ctx, func() error {
		var inner error
		hold, inner = s.holds.MarkPaid(ctx, holdID, paymentRef, s.now())
		return inner
	})
	return hold, err
}

func (s *ReservationService) ownedHold(ctx context.Context, userID int64, holdID string) (*models.Hold, error) {
	hold, err := s.holds.GetByID(ctx, holdID)
	if err != nil {
		return nil, err
	}
	if hold == nil || hold.UserID != userID {
		return nil, apperrors.ErrHoldNotFound
	}
	return hold, nil
}

func (s *ReservationService) clampTTL(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		ttl = s.cfg.DefaultTTL
	}
	if ttl > s.cfg.MaxTTL {
		ttl = s.cfg.MaxTTL
	}
	return ttl
}

// withRetry re-runs fn on serialization conflicts. Anything else
// propagates immediately.
func (s *ReservationService) withRetry(ctx context.Context, fn func() error) error {
	var err error
	for attempt := 0; attempt <= s.cfg.MaxRetries; attempt++ {
		err = fn()
		if err == nil || !errors.Is(err, apperrors.ErrConflict) {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * 10 * time.Millisecond):
		}
	}
	return apperrors.ErrOperationFailed
}

func (s *ReservationService) publish(subject string, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, event); err != nil {
		logger.Get().Warn("Failed to publish event", "subject", subject, "error", err)
	}
}

func holdResponse(h *models.Hold) *models.HoldResponse {
	return &models.HoldResponse{
		ID:            h.ID,
		MatchID:       h.MatchID,
		SeatUnitIDs:   h.SeatUnitIDs,
		Status:        h.Status,
		ComputedPrice: h.ComputedPrice,
		ExpiresAt:     h.ExpiresAt,
	}
}

func dedupe(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
