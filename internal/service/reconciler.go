package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"tribuna/internal/config"
	apperrors "tribuna/internal/errors"
	"tribuna/internal/logger"
	"tribuna/internal/metrics"
	"tribuna/internal/models"
)

// HoldMarker flips a hold to PAID. Satisfied by ReservationService.
type HoldMarker interface {
	MarkPaid(ctx context.Context, holdID, paymentRef string) (*models.Hold, error)
}

// ReconcilerService matches inbound payment notifications to holds.
// Delivery is at-least-once, so every decision is anchored on the
// durable payment record: a redelivered transaction returns the stored
// verdict without touching any hold again.
type ReconcilerService struct {
	payments PaymentStore
	holds    HoldStore
	marker   HoldMarker
	review   ReviewIndexer
	events   EventPublisher
	cfg      config.ReconcileConfig
	now      func() time.Time
}

func NewReconcilerService(payments PaymentStore, holds HoldStore, marker HoldMarker, review ReviewIndexer, events EventPublisher, cfg config.ReconcileConfig) *ReconcilerService {
	return &ReconcilerService{
		payments: payments,
		holds:    holds,
		marker:   marker,
		review:   review,
		events:   events,
		cfg:      cfg,
		now:      time.Now,
	}
}

// Reconcile processes one payment notification. The transaction ID is
// claimed first with an insert-if-absent; a record that already carries
// a verdict short-circuits, and a record without one (a crash between
// insert and verdict) is processed again. Every completed path writes a
// non-nil detail, which is what marks the record as settled. Store
// failures return an error without recording anything, so the caller
// resubmits and the next delivery gets a fresh resolution.
func (s *ReconcilerService) Reconcile(ctx context.Context, payload *models.PaymentNotificationPayload) (*models.ReconcileResult, error) {
	rec := &models.PaymentRecord{
		TransactionID: payload.TransactionID,
		Amount:        payload.Amount,
		Reference:     payload.Reference,
		ReceivedAt:    s.receivedAt(payload),
	}

	inserted, existing, err := s.payments.Insert(ctx, rec)
	if err != nil {
		return nil, err
	}
	reprocess := false
	if !inserted {
		if existing.Detail != nil {
			logger.WithContext(ctx).Info("Duplicate payment delivery",
				"transaction_id", existing.TransactionID,
				"outcome", existing.Outcome)
			return resultFromRecord(existing), nil
		}
		// Verdict missing: a previous attempt crashed mid-flight.
		rec = existing
		reprocess = true
	}

	outcome, holdID, detail, err := s.resolve(ctx, rec, reprocess)
	if err != nil {
		return nil, err
	}

	rec.Outcome = outcome
	rec.MatchedHoldID = holdID
	rec.Detail = &detail

	if err := s.payments.RecordOutcome(ctx, rec.TransactionID, outcome, holdID, rec.Detail); err != nil {
		return nil, err
	}

	metrics.PaymentsReconciledTotal.WithLabelValues(outcome).Inc()

	s.flagForReview(ctx, rec)

	s.publish(models.EventPaymentReconciled, &models.PaymentReconciledEvent{
		TransactionID: rec.TransactionID,
		Outcome:       outcome,
		HoldID:        holdID,
		Timestamp:     s.now(),
	})

	logger.WithContext(ctx).Info("Payment reconciled",
		"transaction_id", rec.TransactionID,
		"outcome", outcome)

	return resultFromRecord(rec), nil
}

// resolve applies the matching precedence: staged reference first, then
// the transaction ID used as a reference, then the amount-and-recency
// heuristic, which only fires when it is unambiguous. Store errors are
// transient and propagate; only a completed lookup produces a verdict.
func (s *ReconcilerService) resolve(ctx context.Context, rec *models.PaymentRecord, reprocess bool) (string, *string, string, error) {
	if reprocess {
		// The earlier attempt may have crashed after marking the hold
		// paid but before recording the verdict.
		settled, err := s.holds.FindPaidByPaymentRef(ctx, rec.TransactionID)
		if err != nil {
			return "", nil, "", fmt.Errorf("settled lookup: %w", err)
		}
		if settled != nil {
			return models.PaymentMatched, &settled.ID, "settled by an earlier attempt", nil
		}
	}

	for _, ref := range s.candidateRefs(rec) {
		hold, err := s.holds.FindActiveByPaymentRef(ctx, ref)
		if err != nil {
			return "", nil, "", fmt.Errorf("reference lookup: %w", err)
		}
		if hold == nil {
			continue
		}

		if !s.withinTolerance(rec.Amount, hold.ComputedPrice) {
			return models.PaymentAmountMismatch, &hold.ID,
				fmt.Sprintf("paid %d, hold price %d", rec.Amount, hold.ComputedPrice), nil
		}

		return s.settle(ctx, rec, hold.ID, "matched by reference")
	}

	since := rec.ReceivedAt.Add(-s.cfg.FallbackWindow)
	candidates, err := s.holds.FindActiveByAmount(ctx, rec.Amount, s.cfg.AmountTolerance, since)
	if err != nil {
		return "", nil, "", fmt.Errorf("amount lookup: %w", err)
	}

	switch len(candidates) {
	case 1:
		return s.settle(ctx, rec, candidates[0].ID, "matched by amount")
	case 0:
		return models.PaymentUnmatched, nil, "no hold matches reference or amount", nil
	default:
		return models.PaymentUnmatched, nil,
			fmt.Sprintf("%d holds match the amount, cannot pick one", len(candidates)), nil
	}
}

// settle marks the hold paid and translates precondition failures into
// reconciliation verdicts. Any other MarkPaid error is a storage
// failure and propagates for resubmission.
func (s *ReconcilerService) settle(ctx context.Context, rec *models.PaymentRecord, holdID, how string) (string, *string, string, error) {
	_, err := s.marker.MarkPaid(ctx, holdID, rec.TransactionID)
	switch {
	case err == nil:
		return models.PaymentMatched, &holdID, how, nil
	case errors.Is(err, apperrors.ErrHoldExpired):
		return models.PaymentLateAmountMatched, &holdID, "payment arrived after hold expiry", nil
	case errors.Is(err, apperrors.ErrHoldNotActive):
		return models.PaymentDuplicate, &holdID, "hold already settled", nil
	default:
		return "", nil, "", fmt.Errorf("mark paid: %w", err)
	}
}

func (s *ReconcilerService) candidateRefs(rec *models.PaymentRecord) []string {
	var refs []string
	if rec.Reference != nil && *rec.Reference != "" {
		refs = append(refs, *rec.Reference)
	}
	refs = append(refs, rec.TransactionID)
	return refs
}

func (s *ReconcilerService) withinTolerance(paid, price int64) bool {
	diff := paid - price
	if diff < 0 {
		diff = -diff
	}
	return diff <= s.cfg.AmountTolerance
}

// flagForReview mirrors records needing a human decision into the
// search index. Indexing is best-effort: the payments table stays the
// source of truth.
func (s *ReconcilerService) flagForReview(ctx context.Context, rec *models.PaymentRecord) {
	if s.review == nil {
		return
	}
	switch rec.Outcome {
	case models.PaymentUnmatched, models.PaymentAmountMismatch, models.PaymentLateAmountMatched:
	default:
		return
	}
	if err := s.review.IndexPaymentReview(ctx, rec); err != nil {
		logger.WithContext(ctx).Warn("Failed to index payment for review",
			"transaction_id", rec.TransactionID, "error", err)
	}
}

// Get returns the stored record for one transaction, nil when unknown.
func (s *ReconcilerService) Get(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	return s.payments.GetByTransactionID(ctx, transactionID)
}

// ListReview pages payment records with the given verdict straight from
// the payments table. The search index serves the richer queries; this
// is the source-of-truth view.
func (s *ReconcilerService) ListReview(ctx context.Context, outcome string, page, pageSize int) ([]models.PaymentRecord, error) {
	return s.payments.ListByOutcome(ctx, outcome, page, pageSize)
}

func (s *ReconcilerService) receivedAt(payload *models.PaymentNotificationPayload) time.Time {
	if payload.ReceivedAt != nil {
		if t, err := time.Parse(time.RFC3339, *payload.ReceivedAt); err == nil {
			return t
		}
	}
	return s.now()
}

func (s *ReconcilerService) publish(subject string, event interface{}) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(subject, event); err != nil {
		logger.Get().Warn("Failed to publish event", "subject", subject, "error", err)
	}
}

func resultFromRecord(rec *models.PaymentRecord) *models.ReconcileResult {
	result := &models.ReconcileResult{
		TransactionID: rec.TransactionID,
		Outcome:       rec.Outcome,
		Matched:       rec.Outcome == models.PaymentMatched,
		HoldID:        rec.MatchedHoldID,
	}
	if rec.Detail != nil {
		result.Reason = *rec.Detail
	}
	return result
}
