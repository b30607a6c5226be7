package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "tribuna/internal/errors"
	"tribuna/internal/models"
)

// memStore is an in-memory stand-in for the Postgres repositories. It
// reproduces the same conditional-transition semantics under one mutex,
// which is what makes the concurrency tests meaningful.
type memStore struct {
	mu            sync.Mutex
	matches       map[int64]*models.Match
	seats         map[string]*models.SeatUnit
	holds         map[string]*models.Hold
	payments      map[string]*models.PaymentRecord
	bookings      map[string]*models.Booking
	nextMatchID   int64
	nextBookingID int64
}

func newMemStore() *memStore {
	return &memStore{
		matches:  make(map[int64]*models.Match),
		seats:    make(map[string]*models.SeatUnit),
		holds:    make(map[string]*models.Hold),
		payments: make(map[string]*models.PaymentRecord),
		bookings: make(map[string]*models.Booking),
	}
}

func copyHold(h *models.Hold) *models.Hold {
	c := *h
	c.SeatUnitIDs = append([]string(nil), h.SeatUnitIDs...)
	return &c
}

// MatchStore

func (s *memStore) Create(ctx context.Context, match *models.Match) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextMatchID++
	match.ID = s.nextMatchID
	match.CreatedAt = time.Now()
	match.UpdatedAt = match.CreatedAt
	c := *match
	s.matches[match.ID] = &c
	return nil
}

func (s *memStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	c := *match
	return &c, nil
}

func (s *memStore) List(ctx context.Context, page, pageSize int) ([]models.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Match
	for _, m := range s.matches {
		out = append(out, *m)
	}
	return out, nil
}

func (s *memStore) SetDemandMultiplier(ctx context.Context, id int64, multiplier float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	match, ok := s.matches[id]
	if !ok {
		return apperrors.ErrMatchNotFound
	}
	match.DemandMultiplier = multiplier
	return nil
}

// SeatUnitStore

func (s *memStore) CreateSeatsForMatch(ctx context.Context, matchID int64, stands []models.Stand) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, stand := range stands {
		for row := 1; row <= stand.Rows; row++ {
			for seat := 1; seat <= stand.SeatsPerRow; seat++ {
				id := uuid.New().String()
				s.seats[id] = &models.SeatUnit{
					ID:        id,
					MatchID:   matchID,
					SectionID: stand.SectionID,
					Row:       row,
					Number:    seat,
					BasePrice: stand.BasePrice,
					Status:    models.SeatAvailable,
				}
			}
		}
	}
	return nil
}

func (s *memStore) GetSeatByID(ctx context.Context, id string) (*models.SeatUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[id]
	if !ok {
		return nil, apperrors.ErrSeatNotFound
	}
	c := *seat
	return &c, nil
}

func (s *memStore) GetByIDs(ctx context.Context, ids []string) ([]models.SeatUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.SeatUnit, 0, len(ids))
	for _, id := range ids {
		seat, ok := s.seats[id]
		if !ok {
			return nil, fmt.Errorf("seat %s: %w", id, apperrors.ErrSeatNotFound)
		}
		out = append(out, *seat)
	}
	return out, nil
}

func (s *memStore) GetByMatchID(ctx context.Context, matchID int64, page, pageSize int, sectionID, status *string) ([]models.SeatUnit, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.SeatUnit
	for _, seat := range s.seats {
		if seat.MatchID != matchID {
			continue
		}
		if sectionID != nil && seat.SectionID != *sectionID {
			continue
		}
		if status != nil && seat.Status != *status {
			continue
		}
		out = append(out, *seat)
	}
	return out, nil
}

func (s *memStore) SectionBasePrice(ctx context.Context, matchID int64, sectionID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, seat := range s.seats {
		if seat.MatchID == matchID && seat.SectionID == sectionID {
			return seat.BasePrice, nil
		}
	}
	return 0, apperrors.ErrSeatNotFound
}

func (s *memStore) Block(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[id]
	if !ok || seat.Status != models.SeatAvailable {
		return &apperrors.SeatUnavailableError{SeatUnitIDs: []string{id}}
	}
	seat.Status = models.SeatBlocked
	seat.Version++
	return nil
}

func (s *memStore) Unblock(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	seat, ok := s.seats[id]
	if ok && seat.Status == models.SeatBlocked {
		seat.Status = models.SeatAvailable
		seat.Version++
	}
	return nil
}

// HoldStore

func (s *memStore) CreateHold(ctx context.Context, hold *models.Hold) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var unavailable []string
	for _, id := range hold.SeatUnitIDs {
		seat, ok := s.seats[id]
		if !ok {
			return fmt.Errorf("seat %s: %w", id, apperrors.ErrSeatNotFound)
		}
		if seat.Status != models.SeatAvailable {
			unavailable = append(unavailable, id)
		}
	}
	if len(unavailable) > 0 {
		return &apperrors.SeatUnavailableError{SeatUnitIDs: unavailable}
	}

	for _, id := range hold.SeatUnitIDs {
		seat := s.seats[id]
		seat.Status = models.SeatLocked
		seat.HoldID = &hold.ID
		seat.Version++
	}
	hold.Status = models.HoldActive
	s.holds[hold.ID] = copyHold(hold)
	return nil
}

func (s *memStore) GetHoldByID(ctx context.Context, id string) (*models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[id]
	if !ok {
		return nil, nil
	}
	return copyHold(hold), nil
}

func (s *memStore) GetHoldsByUserID(ctx context.Context, userID int64) ([]models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Hold
	for _, hold := range s.holds {
		if hold.UserID == userID {
			out = append(out, *copyHold(hold))
		}
	}
	return out, nil
}

func (s *memStore) Extend(ctx context.Context, id string, until, now time.Time) (*models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[id]
	if !ok {
		return nil, apperrors.ErrHoldNotFound
	}
	if hold.Status != models.HoldActive || !hold.ExpiresAt.After(now) {
		return nil, apperrors.ErrHoldNotActive
	}
	hold.ExpiresAt = until
	return copyHold(hold), nil
}

func (s *memStore) Release(ctx context.Context, id, terminalStatus string) (*models.Hold, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[id]
	if !ok {
		return nil, false, apperrors.ErrHoldNotFound
	}
	if hold.Status != models.HoldActive {
		return copyHold(hold), false, nil
	}
	hold.Status = terminalStatus
	s.freeSeatsLocked(id)
	return copyHold(hold), true, nil
}

func (s *memStore) ExpireDue(ctx context.Context, now time.Time) ([]models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var expired []models.Hold
	for _, hold := range s.holds {
		if hold.Status == models.HoldActive && !hold.ExpiresAt.After(now) {
			hold.Status = models.HoldExpired
			s.freeSeatsLocked(hold.ID)
			expired = append(expired, *copyHold(hold))
		}
	}
	return expired, nil
}

func (s *memStore) MarkPaid(ctx context.Context, id, paymentRef string, now time.Time) (*models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[id]
	if !ok {
		return nil, apperrors.ErrHoldNotFound
	}
	switch {
	case hold.Status == models.HoldExpired,
		hold.Status == models.HoldActive && !hold.ExpiresAt.After(now):
		return nil, apperrors.ErrHoldExpired
	case hold.Status != models.HoldActive:
		return nil, apperrors.ErrHoldNotActive
	}
	hold.Status = models.HoldPaid
	hold.PaymentRef = &paymentRef
	return copyHold(hold), nil
}

func (s *memStore) FindActiveByPaymentRef(ctx context.Context, ref string) (*models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, hold := range s.holds {
		if hold.Status == models.HoldActive && hold.PaymentRef != nil && *hold.PaymentRef == ref {
			return copyHold(hold), nil
		}
	}
	return nil, nil
}

func (s *memStore) FindPaidByPaymentRef(ctx context.Context, ref string) (*models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, hold := range s.holds {
		if hold.Status == models.HoldPaid && hold.PaymentRef != nil && *hold.PaymentRef == ref {
			return copyHold(hold), nil
		}
	}
	return nil, nil
}

func (s *memStore) FindActiveByAmount(ctx context.Context, amount, tolerance int64, since time.Time) ([]models.Hold, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Hold
	for _, hold := range s.holds {
		if hold.Status != models.HoldActive || hold.CreatedAt.Before(since) {
			continue
		}
		diff := hold.ComputedPrice - amount
		if diff < 0 {
			diff = -diff
		}
		if diff <= tolerance {
			out = append(out, *copyHold(hold))
		}
	}
	return out, nil
}

func (s *memStore) freeSeatsLocked(holdID string) {
	for _, seat := range s.seats {
		if seat.HoldID != nil && *seat.HoldID == holdID &&
			(seat.Status == models.SeatLocked || seat.Status == models.SeatReserved) {
			seat.Status = models.SeatAvailable
			seat.HoldID = nil
			seat.Version++
		}
	}
}

// PaymentStore

func (s *memStore) Insert(ctx context.Context, rec *models.PaymentRecord) (bool, *models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if existing, ok := s.payments[rec.TransactionID]; ok {
		c := *existing
		return false, &c, nil
	}
	c := *rec
	c.Outcome = models.PaymentUnmatched
	s.payments[rec.TransactionID] = &c
	rec.Outcome = models.PaymentUnmatched
	return true, nil, nil
}

func (s *memStore) RecordOutcome(ctx context.Context, transactionID, outcome string, holdID, detail *string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.payments[transactionID]
	if !ok {
		return fmt.Errorf("payment %s not found", transactionID)
	}
	rec.Outcome = outcome
	rec.MatchedHoldID = holdID
	rec.Detail = detail
	return nil
}

func (s *memStore) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.payments[transactionID]
	if !ok {
		return nil, nil
	}
	c := *rec
	return &c, nil
}

func (s *memStore) ListByOutcome(ctx context.Context, outcome string, page, pageSize int) ([]models.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.PaymentRecord
	for _, rec := range s.payments {
		if rec.Outcome == outcome {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// BookingStore

func (s *memStore) FinalizeFromHold(ctx context.Context, holdID string, now time.Time) (*models.Booking, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	hold, ok := s.holds[holdID]
	if !ok {
		return nil, false, apperrors.ErrHoldNotFound
	}
	if hold.Status != models.HoldPaid {
		return nil, false, apperrors.ErrHoldNotPaid
	}
	if existing, ok := s.bookings[holdID]; ok {
		c := *existing
		return &c, false, nil
	}

	s.nextBookingID++
	booking := &models.Booking{
		ID:          s.nextBookingID,
		HoldID:      holdID,
		UserID:      hold.UserID,
		MatchID:     hold.MatchID,
		SeatUnitIDs: append([]string(nil), hold.SeatUnitIDs...),
		FinalPrice:  hold.ComputedPrice,
		ConfirmedAt: now,
	}
	s.bookings[holdID] = booking

	for _, seat := range s.seats {
		if seat.HoldID != nil && *seat.HoldID == holdID {
			seat.Status = models.SeatBooked
			seat.Version++
		}
	}

	c := *booking
	return &c, true, nil
}

func (s *memStore) GetBookingsByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []models.Booking
	for _, b := range s.bookings {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

// Per-interface adapters over memStore. Needed because the store
// interfaces reuse method names (GetByID, GetByUserID) for different
// entities.

type fakeMatchStore struct{ s *memStore }

func (f fakeMatchStore) Create(ctx context.Context, match *models.Match) error {
	return f.s.Create(ctx, match)
}
func (f fakeMatchStore) GetByID(ctx context.Context, id int64) (*models.Match, error) {
	return f.s.GetByID(ctx, id)
}
func (f fakeMatchStore) List(ctx context.Context, page, pageSize int) ([]models.Match, error) {
	return f.s.List(ctx, page, pageSize)
}
func (f fakeMatchStore) SetDemandMultiplier(ctx context.Context, id int64, multiplier float64) error {
	return f.s.SetDemandMultiplier(ctx, id, multiplier)
}

type fakeSeatStore struct{ s *memStore }

func (f fakeSeatStore) CreateSeatsForMatch(ctx context.Context, matchID int64, stands []models.Stand) error {
	return f.s.CreateSeatsForMatch(ctx, matchID, stands)
}
func (f fakeSeatStore) GetByID(ctx context.Context, id string) (*models.SeatUnit, error) {
	return f.s.GetSeatByID(ctx, id)
}
func (f fakeSeatStore) GetByIDs(ctx context.Context, ids []string) ([]models.SeatUnit, error) {
	return f.s.GetByIDs(ctx, ids)
}
func (f fakeSeatStore) GetByMatchID(ctx context.Context, matchID int64, page, pageSize int, sectionID, status *string) ([]models.SeatUnit, error) {
	return f.s.GetByMatchID(ctx, matchID, page, pageSize, sectionID, status)
}
func (f fakeSeatStore) SectionBasePrice(ctx context.Context, matchID int64, sectionID string) (int64, error) {
	return f.s.SectionBasePrice(ctx, matchID, sectionID)
}
func (f fakeSeatStore) Block(ctx context.Context, id string) error {
	return f.s.Block(ctx, id)
}
func (f fakeSeatStore) Unblock(ctx context.Context, id string) error {
	return f.s.Unblock(ctx, id)
}

type fakeHoldStore struct{ s *memStore }

func (f fakeHoldStore) CreateHold(ctx context.Context, hold *models.Hold) error {
	return f.s.CreateHold(ctx, hold)
}
func (f fakeHoldStore) GetByID(ctx context.Context, id string) (*models.Hold, error) {
	return f.s.GetHoldByID(ctx, id)
}
func (f fakeHoldStore) GetByUserID(ctx context.Context, userID int64) ([]models.Hold, error) {
	return f.s.GetHoldsByUserID(ctx, userID)
}
func (f fakeHoldStore) Extend(ctx context.Context, id string, until, now time.Time) (*models.Hold, error) {
	return f.s.Extend(ctx, id, until, now)
}
func (f fakeHoldStore) Release(ctx context.Context, id, terminalStatus string) (*models.Hold, bool, error) {
	return f.s.Release(ctx, id, terminalStatus)
}
func (f fakeHoldStore) ExpireDue(ctx context.Context, now time.Time) ([]models.Hold, error) {
	return f.s.ExpireDue(ctx, now)
}
func (f fakeHoldStore) MarkPaid(ctx context.Context, id, paymentRef string, now time.Time) (*models.Hold, error) {
	return f.s.MarkPaid(ctx, id, paymentRef, now)
}
func (f fakeHoldStore) FindActiveByPaymentRef(ctx context.Context, ref string) (*models.Hold, error) {
	return f.s.FindActiveByPaymentRef(ctx, ref)
}
func (f fakeHoldStore) FindPaidByPaymentRef(ctx context.Context, ref string) (*models.Hold, error) {
	return f.s.FindPaidByPaymentRef(ctx, ref)
}
func (f fakeHoldStore) FindActiveByAmount(ctx context.Context, amount, tolerance int64, since time.Time) ([]models.Hold, error) {
	return f.s.FindActiveByAmount(ctx, amount, tolerance, since)
}

type fakePaymentStore struct{ s *memStore }

func (f fakePaymentStore) Insert(ctx context.Context, rec *models.PaymentRecord) (bool, *models.PaymentRecord, error) {
	return f.s.Insert(ctx, rec)
}
func (f fakePaymentStore) RecordOutcome(ctx context.Context, transactionID, outcome string, holdID, detail *string) error {
	return f.s.RecordOutcome(ctx, transactionID, outcome, holdID, detail)
}
func (f fakePaymentStore) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	return f.s.GetByTransactionID(ctx, transactionID)
}
func (f fakePaymentStore) ListByOutcome(ctx context.Context, outcome string, page, pageSize int) ([]models.PaymentRecord, error) {
	return f.s.ListByOutcome(ctx, outcome, page, pageSize)
}

type fakeBookingStore struct{ s *memStore }

func (f fakeBookingStore) FinalizeFromHold(ctx context.Context, holdID string, now time.Time) (*models.Booking, bool, error) {
	return f.s.FinalizeFromHold(ctx, holdID, now)
}
func (f fakeBookingStore) GetByUserID(ctx context.Context, userID int64) ([]models.Booking, error) {
	return f.s.GetBookingsByUserID(ctx, userID)
}

// fakePublisher records published events.
type fakePublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

type publishedEvent struct {
	Subject string
	Data    []byte
}

func (p *fakePublisher) Publish(subject string, data interface{}) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, publishedEvent{Subject: subject, Data: raw})
	return nil
}

func (p *fakePublisher) countBySubject(subject string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, e := range p.events {
		if e.Subject == subject {
			n++
		}
	}
	return n
}

// fakeIndexer records payment records flagged for review.
type fakeIndexer struct {
	mu      sync.Mutex
	indexed []models.PaymentRecord
}

func (f *fakeIndexer) IndexPaymentReview(ctx context.Context, rec *models.PaymentRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexed = append(f.indexed, *rec)
	return nil
}
