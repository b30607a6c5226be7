package errors

import (
	"errors"
	"fmt"
	"strings"
)

var ErrHoldNotFound = errors.New("hold not found")
var ErrHoldNotActive = errors.New("hold is not active")
var ErrHoldExpired = errors.New("hold has expired")
var ErrHoldNotPaid = errors.New("hold is not paid")
var ErrMatchNotFound = errors.New("match not found")
var ErrSeatNotFound = errors.New("seat not found")

// ErrConflict signals an optimistic-concurrency or serialization failure.
// Operations that hit it are retried whole; it never escapes the service layer.
var ErrConflict = errors.New("concurrent update conflict")

// ErrOperationFailed is returned after bounded retries are exhausted.
// The caller is expected to resubmit.
var ErrOperationFailed = errors.New("operation failed, please retry")

// SeatUnavailableError names every seat that blocked a hold request.
type SeatUnavailableError struct {
	SeatUnitIDs []string
}

func (e *SeatUnavailableError) Error() string {
	return fmt.Sprintf("seats not available: %s", strings.Join(e.SeatUnitIDs, ", "))
}

// IsSeatUnavailable reports whether err is a SeatUnavailableError and
// returns the conflicting seat IDs.
func IsSeatUnavailable(err error) ([]string, bool) {
	var e *SeatUnavailableError
	if errors.As(err, &e) {
		return e.SeatUnitIDs, true
	}
	return nil, false
}
