package service

import (
	"context"
	"time"

	"tribuna/internal/logger"
	"tribuna/internal/models"
)

// FinalizerService turns PAID holds into bookings. Finalization is
// idempotent: retrying after the booking exists returns the same
// booking and emits nothing.
type FinalizerService struct {
	bookings BookingStore
	events   EventPublisher
	now      func() time.Time
}

func NewFinalizerService(bookings BookingStore, events EventPublisher) *FinalizerService {
	return &FinalizerService{
		bookings: bookings,
		events:   events,
		now:      time.Now,
	}
}

// Finalize creates the booking for a PAID hold, moving its seats to
// BOOKED. A hold that is not PAID fails with a typed error.
func (s *FinalizerService) Finalize(ctx context.Context, holdID string) (*models.Booking, error) {
	booking, created, err := s.bookings.FinalizeFromHold(ctx, holdID, s.now())
	if err != nil {
		return nil, err
	}

	if created {
		logger.WithContext(ctx).Info("Booking confirmed",
			"booking_id", booking.ID,
			"hold_id", booking.HoldID,
			"match_id", booking.MatchID)

		s.publish(models.EventBookingConfirmed, &models.BookingConfirmedEvent{
			BookingID:   booking.ID,
			HoldID:      booking.HoldID,
			MatchID:     booking.MatchID,
			UserID:      booking.UserID,
			SeatUnitIDs: booking.SeatUnitIDs,
			FinalPrice:  booking.FinalPrice,
			Timestamp:   s.now(),
		})
	}

	return booking, nil
}

func (s *FinalizerService) ListByUser(ctx context.Context, userID int64) ([]models.ListBookingsResponseItem, error) {
	bookings, err := s.bookings.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}

	result := make([]models.ListBookingsResponseItem, len(bookings))
	for i := range bookings {
		result[i] = models.ListBookingsResponseItem{
			ID:          bookings[i].ID,
			HoldID:      bookings[i].HoldID,
			MatchID:     bookings[i].MatchID,
			FinalPrice:  bookings[i].FinalPrice,
			ConfirmedAt: bookings[i].ConfirmedAt,
		}
	}
	return result, nil
}

func (s *FinalizerService) publish(subject string, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, event); err != nil {
		logger.Get().Warn("Failed to publish event", "subject", subject, "error", err)
	}
}
