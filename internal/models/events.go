package models

import "time"

// NATS subjects
const (
	EventHoldCreated        = "hold.created"
	EventHoldExtended       = "hold.extended"
	EventHoldReleased       = "hold.released"
	EventHoldExpired        = "hold.expired"
	EventPaymentReceived    = "payment.received"
	EventPaymentReconciled  = "payment.reconciled"
	EventBookingConfirmed   = "booking.confirmed"
)

// HoldCreatedEvent is published after a hold locks its seats
type HoldCreatedEvent struct {
	HoldID        string    `json:"hold_id"`
	MatchID       int64     `json:"match_id"`
	UserID        int64     `json:"user_id"`
	SeatUnitIDs   []string  `json:"seat_unit_ids"`
	ComputedPrice int64     `json:"computed_price"`
	ExpiresAt     time.Time `json:"expires_at"`
	Timestamp     time.Time `json:"timestamp"`
}

// HoldExtendedEvent is published after a hold deadline moves
type HoldExtendedEvent struct {
	HoldID    string    `json:"hold_id"`
	ExpiresAt time.Time `json:"expires_at"`
	Timestamp time.Time `json:"timestamp"`
}

// HoldReleasedEvent is published when a hold is released or expired
type HoldReleasedEvent struct {
	HoldID    string    `json:"hold_id"`
	MatchID   int64     `json:"match_id"`
	Reason    string    `json:"reason"`
	Timestamp time.Time `json:"timestamp"`
}

// PaymentReconciledEvent carries the outcome of a reconciliation attempt
type PaymentReconciledEvent struct {
	TransactionID string    `json:"transaction_id"`
	Outcome       string    `json:"outcome"`
	HoldID        *string   `json:"hold_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// BookingConfirmedEvent is emitted for downstream consumers
// (ticket issuance, email, analytics) after finalization
type BookingConfirmedEvent struct {
	BookingID   int64     `json:"booking_id"`
	HoldID      string    `json:"hold_id"`
	MatchID     int64     `json:"match_id"`
	UserID      int64     `json:"user_id"`
	SeatUnitIDs []string  `json:"seat_unit_ids"`
	FinalPrice  int64     `json:"final_price"`
	Timestamp   time.Time `json:"timestamp"`
}
