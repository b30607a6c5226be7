package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tribuna/internal/models"
)

// Bookings handlers

// FinalizeBooking - POST /api/bookings/finalize
// Converts a PAID hold into a booking. Retrying returns the same
// booking with 200 instead of 201.
func (h *Handlers) FinalizeBooking(c *gin.Context) {
	var req models.FinalizeBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	booking, err := h.services.Finalizer.Finalize(c.Request.Context(), req.HoldID)
	if err != nil {
		slog.Error("Failed to finalize booking", "error", err, "hold_id", req.HoldID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings - GET /api/bookings
func (h *Handlers) ListBookings(c *gin.Context) {
	response, err := h.services.Finalizer.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		slog.Error("Failed to list bookings", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
