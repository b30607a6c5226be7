package repository

import (
	"context"
	"database/sql"

	"tribuna/internal/database"
	"tribuna/internal/models"
)

type PaymentRepository struct {
	db *database.DB
}

func NewPaymentRepository(db *database.DB) *PaymentRepository {
	return &PaymentRepository{db: db}
}

// Insert writes the payment record if its transaction ID is new. The
// unique constraint on transaction_id is the durable idempotency record:
// when the row already exists the stored record comes back unchanged and
// the caller must not process the payment again.
func (r *PaymentRepository) Insert(ctx context.Context, rec *models.PaymentRecord) (bool, *models.PaymentRecord, error) {
	var inserted string
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO payments (transaction_id, amount, reference, received_at, outcome)
		VALUES ($1, $2, $3, $4, 'UNMATCHED')
		ON CONFLICT (transaction_id) DO NOTHING
		RETURNING transaction_id`,
		rec.TransactionID, rec.Amount, rec.Reference, rec.ReceivedAt,
	).Scan(&inserted)

	if err == sql.ErrNoRows {
		existing, getErr := r.GetByTransactionID(ctx, rec.TransactionID)
		if getErr != nil {
			return false, nil, getErr
		}
		return false, existing, nil
	}
	if err != nil {
		return false, nil, mapConflict(err)
	}

	rec.Outcome = models.PaymentUnmatched
	return true, nil, nil
}

// RecordOutcome stores the reconciliation verdict on the payment row.
func (r *PaymentRepository) RecordOutcome(ctx context.Context, transactionID, outcome string, holdID, detail *string) error {
	query := `
		UPDATE payments
		SET outcome = $2, matched_hold_id = $3, detail = $4
		WHERE transaction_id = $1`

	_, err := r.db.ExecContext(ctx, query, transactionID, outcome, holdID, detail)
	return mapConflict(err)
}

func (r *PaymentRepository) GetByTransactionID(ctx context.Context, transactionID string) (*models.PaymentRecord, error) {
	rec := &models.PaymentRecord{}
	query := `
		SELECT transaction_id, amount, reference, received_at, outcome, matched_hold_id, detail
		FROM payments
		WHERE transaction_id = $1`

	err := r.db.QueryRowContext(ctx, query, transactionID).Scan(
		&rec.TransactionID,
		&rec.Amount,
		&rec.Reference,
		&rec.ReceivedAt,
		&rec.Outcome,
		&rec.MatchedHoldID,
		&rec.Detail,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return rec, err
}

// ListByOutcome pages through payment records with a given verdict,
// newest first. The admin console reads the Elasticsearch index; this
// is the source-of-truth fallback.
func (r *PaymentRepository) ListByOutcome(ctx context.Context, outcome string, page, pageSize int) ([]models.PaymentRecord, error) {
	query := `
		SELECT transaction_id, amount, reference, received_at, outcome, matched_hold_id, detail
		FROM payments
		WHERE outcome = $1
		ORDER BY received_at DESC
		LIMIT $2 OFFSET $3`

	offset := 0
	if page > 1 {
		offset = (page - 1) * pageSize
	}

	rows, err := r.db.QueryContext(ctx, query, outcome, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []models.PaymentRecord
	for rows.Next() {
		var rec models.PaymentRecord
		err := rows.Scan(
			&rec.TransactionID,
			&rec.Amount,
			&rec.Reference,
			&rec.ReceivedAt,
			&rec.Outcome,
			&rec.MatchedHoldID,
			&rec.Detail,
		)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
