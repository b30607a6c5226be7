package consumers

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/nats-io/stan.go"

	"tribuna/internal/models"
	"tribuna/internal/service"
)

type Handlers struct {
	services *service.Services
}

func NewHandlers(services *service.Services) *Handlers {
	return &Handlers{services: services}
}

// HandlePaymentReceived feeds payment notifications from the broker
// into the reconciler. The message is only acknowledged after the
// verdict is durably recorded, so a crash mid-processing results in a
// redelivery, which the reconciler absorbs.
func (h *Handlers) HandlePaymentReceived(m *stan.Msg) {
	var payload models.PaymentNotificationPayload
	if err := json.Unmarshal(m.Data, &payload); err != nil {
		slog.Error("Failed to unmarshal payment notification", "error", err)
		m.Ack()
		return
	}

	result, err := h.services.Reconciler.Reconcile(context.Background(), &payload)
	if err != nil {
		slog.Error("Failed to reconcile payment",
			"transaction_id", payload.TransactionID, "error", err)
		return // no ack, redeliver
	}

	slog.Info("Payment reconciled from queue",
		"transaction_id", result.TransactionID,
		"outcome", result.Outcome)

	m.Ack()
}

func (h *Handlers) HandleBookingConfirmed(m *stan.Msg) {
	var event models.BookingConfirmedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal booking confirmed event", "error", err)
		m.Ack()
		return
	}

	// Downstream hook: ticket issuance, confirmation email, analytics.
	slog.Info("Booking confirmed",
		"booking_id", event.BookingID,
		"match_id", event.MatchID,
		"seats", len(event.SeatUnitIDs),
		"final_price", event.FinalPrice)

	m.Ack()
}

func (h *Handlers) HandleHoldExpired(m *stan.Msg) {
	var event models.HoldReleasedEvent
	if err := json.Unmarshal(m.Data, &event); err != nil {
		slog.Error("Failed to unmarshal hold expired event", "error", err)
		m.Ack()
		return
	}

	slog.Info("Hold expired",
		"hold_id", event.HoldID,
		"match_id", event.MatchID)

	m.Ack()
}
