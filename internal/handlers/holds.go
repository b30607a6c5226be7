package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"tribuna/internal/models"
)

// Holds handlers

// CreateHold - POST /api/holds
func (h *Handlers) CreateHold(c *gin.Context) {
	var req models.CreateHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.CreateHold(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		slog.Error("Failed to create hold", "error", err, "match_id", req.MatchID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

// GetHold - GET /api/holds/:id
func (h *Handlers) GetHold(c *gin.Context) {
	response, err := h.services.Reservations.Get(c.Request.Context(), currentUserID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ListHolds - GET /api/holds
func (h *Handlers) ListHolds(c *gin.Context) {
	response, err := h.services.Reservations.ListByUser(c.Request.Context(), currentUserID(c))
	if err != nil {
		slog.Error("Failed to list holds", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ExtendHold - PATCH /api/holds/extend
func (h *Handlers) ExtendHold(c *gin.Context) {
	var req models.ExtendHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.ExtendHold(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		slog.Error("Failed to extend hold", "error", err, "hold_id", req.HoldID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// ReleaseHold - PATCH /api/holds/release
func (h *Handlers) ReleaseHold(c *gin.Context) {
	var req models.ReleaseHoldRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Reservations.ReleaseHold(c.Request.Context(), currentUserID(c), &req)
	if err != nil {
		slog.Error("Failed to release hold", "error", err, "hold_id", req.HoldID)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
