package models

import (
	"time"
)

// Seat unit statuses
const (
	SeatAvailable = "AVAILABLE"
	SeatLocked    = "LOCKED"
	SeatReserved  = "RESERVED"
	SeatBooked    = "BOOKED"
	SeatBlocked   = "BLOCKED"
)

// Hold statuses
const (
	HoldActive   = "ACTIVE"
	HoldExpired  = "EXPIRED"
	HoldPaid     = "PAID"
	HoldReleased = "RELEASED"
)

// Payment reconciliation outcomes
const (
	PaymentMatched           = "MATCHED"
	PaymentDuplicate         = "DUPLICATE"
	PaymentAmountMismatch    = "AMOUNT_MISMATCH"
	PaymentLateAmountMatched = "LATE_AMOUNT_MATCHED"
	PaymentUnmatched         = "UNMATCHED"
)

// Match represents a fixture between two teams at the venue
type Match struct {
	ID               int64     `json:"id" db:"id"`
	HomeTeam         string    `json:"home_team" db:"home_team"`
	AwayTeam         string    `json:"away_team" db:"away_team"`
	IsPlayoff        bool      `json:"is_playoff" db:"is_playoff"`
	VenueCapacity    int       `json:"venue_capacity" db:"venue_capacity"`
	DemandMultiplier float64   `json:"demand_multiplier" db:"demand_multiplier"`
	StartsAt         time.Time `json:"starts_at" db:"starts_at"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

// SeatUnit is one bookable unit in a stand. BasePrice is in paise and
// immutable after provisioning; Version is the optimistic concurrency token.
type SeatUnit struct {
	ID        string    `json:"id" db:"id"`
	MatchID   int64     `json:"match_id" db:"match_id"`
	SectionID string    `json:"section_id" db:"section_id"`
	Row       int       `json:"row" db:"row_number"`
	Number    int       `json:"number" db:"seat_number"`
	BasePrice int64     `json:"base_price" db:"base_price"`
	Status    string    `json:"status" db:"status"`
	HoldID    *string   `json:"hold_id" db:"hold_id"`
	Version   int64     `json:"version" db:"version"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Hold is an exclusive, time-boxed claim over a set of seat units.
// ComputedPrice is snapshotted at creation and never recomputed.
type Hold struct {
	ID            string    `json:"id" db:"id"`
	UserID        int64     `json:"user_id" db:"user_id"`
	MatchID       int64     `json:"match_id" db:"match_id"`
	SeatUnitIDs   []string  `json:"seat_unit_ids"`
	Status        string    `json:"status" db:"status"`
	ComputedPrice int64     `json:"computed_price" db:"computed_price"`
	PaymentRef    *string   `json:"payment_ref" db:"payment_ref"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	ExpiresAt     time.Time `json:"expires_at" db:"expires_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

// Terminal reports whether the hold can no longer change state.
func (h *Hold) Terminal() bool {
	return h.Status != HoldActive
}

// PaymentRecord is an inbound bank/UPI transaction notification.
// TransactionID is the idempotency key; Reference is the UTR/bank
// reference staged by the client, absent on some channels.
type PaymentRecord struct {
	TransactionID string    `json:"transaction_id" db:"transaction_id"`
	Amount        int64     `json:"amount" db:"amount"`
	Reference     *string   `json:"reference" db:"reference"`
	ReceivedAt    time.Time `json:"received_at" db:"received_at"`
	Outcome       string    `json:"outcome" db:"outcome"`
	MatchedHoldID *string   `json:"matched_hold_id" db:"matched_hold_id"`
	Detail        *string   `json:"detail" db:"detail"`
}

// Booking is the permanent post-payment record, created once from a PAID hold.
type Booking struct {
	ID          int64     `json:"id" db:"id"`
	HoldID      string    `json:"hold_id" db:"hold_id"`
	UserID      int64     `json:"user_id" db:"user_id"`
	MatchID     int64     `json:"match_id" db:"match_id"`
	SeatUnitIDs []string  `json:"seat_unit_ids"`
	FinalPrice  int64     `json:"final_price" db:"final_price"`
	ConfirmedAt time.Time `json:"confirmed_at" db:"confirmed_at"`
}
