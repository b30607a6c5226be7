package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// Seats and quotes handlers

// ListSeats - GET /api/seats
func (h *Handlers) ListSeats(c *gin.Context) {
	matchID, _ := strconv.ParseInt(c.Query("match_id"), 10, 64)
	if matchID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match_id is required"})
		return
	}

	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	var sectionID, status *string
	if v := c.Query("section_id"); v != "" {
		sectionID = &v
	}
	if v := c.Query("status"); v != "" {
		status = &v
	}

	response, err := h.services.Quotes.ListSeats(c.Request.Context(), matchID, page, pageSize, sectionID, status)
	if err != nil {
		slog.Error("Failed to list seats", "error", err, "match_id", matchID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// BlockSeat - PATCH /api/seats/block
// Takes a seat off sale. Refused when the seat is held or booked.
func (h *Handlers) BlockSeat(c *gin.Context) {
	var req struct {
		SeatUnitID string `json:"seat_unit_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Matches.BlockSeat(c.Request.Context(), req.SeatUnitID); err != nil {
		slog.Error("Failed to block seat", "error", err, "seat_unit_id", req.SeatUnitID)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// UnblockSeat - PATCH /api/seats/unblock
func (h *Handlers) UnblockSeat(c *gin.Context) {
	var req struct {
		SeatUnitID string `json:"seat_unit_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Matches.UnblockSeat(c.Request.Context(), req.SeatUnitID); err != nil {
		slog.Error("Failed to unblock seat", "error", err, "seat_unit_id", req.SeatUnitID)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}

// GetQuote - GET /api/quotes
func (h *Handlers) GetQuote(c *gin.Context) {
	matchID, _ := strconv.ParseInt(c.Query("match_id"), 10, 64)
	sectionID := c.Query("section_id")
	if matchID == 0 || sectionID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "match_id and section_id are required"})
		return
	}

	response, err := h.services.Quotes.Quote(c.Request.Context(), matchID, sectionID)
	if err != nil {
		slog.Error("Failed to compute quote", "error", err, "match_id", matchID, "section_id", sectionID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
