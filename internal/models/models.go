package models

import "time"

// CreateHoldRequest - request body for POST /api/holds
type CreateHoldRequest struct {
	MatchID     int64    `json:"match_id" binding:"required"`
	SeatUnitIDs []string `json:"seat_unit_ids" binding:"required,min=1"`
	TTLSeconds  int      `json:"ttl_seconds"`
	PaymentRef  *string  `json:"payment_ref"`
}

// HoldResponse - hold representation returned by the API
type HoldResponse struct {
	ID            string    `json:"id"`
	MatchID       int64     `json:"match_id"`
	SeatUnitIDs   []string  `json:"seat_unit_ids"`
	Status        string    `json:"status"`
	ComputedPrice int64     `json:"computed_price"`
	ExpiresAt     time.Time `json:"expires_at"`
}

// ExtendHoldRequest - request body for PATCH /api/holds/extend
type ExtendHoldRequest struct {
	HoldID            string `json:"hold_id" binding:"required"`
	AdditionalSeconds int    `json:"additional_seconds" binding:"required,min=1"`
}

// ReleaseHoldRequest - request body for PATCH /api/holds/release
type ReleaseHoldRequest struct {
	HoldID string `json:"hold_id" binding:"required"`
}

// QuoteResponse - price quote for one seat unit in a section
type QuoteResponse struct {
	MatchID    int64              `json:"match_id"`
	SectionID  string             `json:"section_id"`
	BasePrice  int64              `json:"base_price"`
	FinalPrice int64              `json:"final_price"`
	Multiplier float64            `json:"multiplier"`
	Breakdown  map[string]float64 `json:"breakdown"`
}

// ListSeatsResponseItem - element of the seat map listing
type ListSeatsResponseItem struct {
	ID        string `json:"id"`
	SectionID string `json:"section_id"`
	Row       int    `json:"row"`
	Number    int    `json:"number"`
	Status    string `json:"status"`
	BasePrice int64  `json:"base_price"`
}

// FinalizeBookingRequest - request body for POST /api/bookings/finalize
type FinalizeBookingRequest struct {
	HoldID string `json:"hold_id" binding:"required"`
}

// ListBookingsResponseItem - element of the bookings listing
type ListBookingsResponseItem struct {
	ID          int64     `json:"id"`
	HoldID      string    `json:"hold_id"`
	MatchID     int64     `json:"match_id"`
	FinalPrice  int64     `json:"final_price"`
	ConfirmedAt time.Time `json:"confirmed_at"`
}

// PaymentNotificationPayload - inbound webhook body from the payment channel.
// Reference may be absent; Amount is in paise.
type PaymentNotificationPayload struct {
	TransactionID string  `json:"transaction_id" binding:"required"`
	Amount        int64   `json:"amount" binding:"required"`
	Reference     *string `json:"reference"`
	ReceivedAt    *string `json:"received_at"`
}

// ReconcileResult - outcome of processing one payment notification
type ReconcileResult struct {
	TransactionID string  `json:"transaction_id"`
	Outcome       string  `json:"outcome"`
	Matched       bool    `json:"matched"`
	HoldID        *string `json:"hold_id,omitempty"`
	Reason        string  `json:"reason,omitempty"`
}

// CreateMatchRequest - request body for POST /api/matches
type CreateMatchRequest struct {
	HomeTeam      string  `json:"home_team" binding:"required"`
	AwayTeam      string  `json:"away_team" binding:"required"`
	IsPlayoff     bool    `json:"is_playoff"`
	VenueCapacity int     `json:"venue_capacity"`
	StartsAt      string  `json:"starts_at" binding:"required"`
	Sections      []Stand `json:"sections"`
}

// Stand describes one section to provision at match creation
type Stand struct {
	SectionID   string `json:"section_id" binding:"required"`
	Rows        int    `json:"rows" binding:"required,min=1"`
	SeatsPerRow int    `json:"seats_per_row" binding:"required,min=1"`
	BasePrice   int64  `json:"base_price" binding:"required,min=1"`
}

// CreateMatchResponse - response for POST /api/matches
type CreateMatchResponse struct {
	ID int64 `json:"id"`
}

// ListMatchesResponseItem - element of the match listing
type ListMatchesResponseItem struct {
	ID        int64     `json:"id"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	IsPlayoff bool      `json:"is_playoff"`
	StartsAt  time.Time `json:"starts_at"`
}
