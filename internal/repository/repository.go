package repository

import (
	"errors"

	"github.com/lib/pq"

	"tribuna/internal/database"
	apperrors "tribuna/internal/errors"
)

type Repositories struct {
	Matches   *MatchRepository
	SeatUnits *SeatUnitRepository
	Holds     *HoldRepository
	Payments  *PaymentRepository
	Bookings  *BookingRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Matches:   NewMatchRepository(db),
		SeatUnits: NewSeatUnitRepository(db),
		Holds:     NewHoldRepository(db),
		Payments:  NewPaymentRepository(db),
		Bookings:  NewBookingRepository(db),
	}
}

// mapConflict translates Postgres serialization and deadlock failures
// into ErrConflict so the service layer can retry the whole operation.
func mapConflict(err error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case "40001", "40P01": // serialization_failure, deadlock_detected
			return apperrors.ErrConflict
		}
	}
	return err
}
