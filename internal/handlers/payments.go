package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tribuna/internal/models"
)

// Payments handlers

// OnPaymentNotification - POST /api/payments/notifications
// Inbound webhook from the payment channel. Delivery is at-least-once;
// the reconciler deduplicates on transaction ID, so this endpoint always
// answers 200 for a processed notification, whatever the verdict.
func (h *Handlers) OnPaymentNotification(c *gin.Context) {
	var payload models.PaymentNotificationPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.services.Reconciler.Reconcile(c.Request.Context(), &payload)
	if err != nil {
		slog.Error("Failed to reconcile payment", "error", err, "transaction_id", payload.TransactionID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// GetPayment - GET /api/payments/:transactionId
func (h *Handlers) GetPayment(c *gin.Context) {
	rec, err := h.services.Reconciler.Get(c.Request.Context(), c.Param("transactionId"))
	if err != nil {
		slog.Error("Failed to get payment", "error", err)
		respondError(c, err)
		return
	}
	if rec == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "payment not found"})
		return
	}

	c.JSON(http.StatusOK, rec)
}

// ListPaymentReview - GET /api/payments/review
// Admin reconciliation queue. Served from Elasticsearch when available,
// falling back to the payments table.
func (h *Handlers) ListPaymentReview(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}
	outcome := c.Query("outcome")

	if h.search != nil {
		records, err := h.search.SearchReview(c.Request.Context(), outcome, page, pageSize)
		if err == nil {
			c.JSON(http.StatusOK, records)
			return
		}
		slog.Warn("Review search failed, falling back to database", "error", err)
	}

	if outcome == "" {
		outcome = models.PaymentUnmatched
	}
	records, err := h.services.Reconciler.ListReview(c.Request.Context(), outcome, page, pageSize)
	if err != nil {
		slog.Error("Failed to list payment review queue", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, records)
}
