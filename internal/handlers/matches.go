package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"tribuna/internal/models"
)

// Matches handlers

// CreateMatch - POST /api/matches
func (h *Handlers) CreateMatch(c *gin.Context) {
	var req models.CreateMatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	response, err := h.services.Matches.Create(c.Request.Context(), &req)
	if err != nil {
		slog.Error("Failed to create match", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create match"})
		return
	}

	c.JSON(http.StatusCreated, response)
}

// ListMatches - GET /api/matches
func (h *Handlers) ListMatches(c *gin.Context) {
	page, pageSize, ok := pagination(c)
	if !ok {
		return
	}

	response, err := h.services.Matches.List(c.Request.Context(), page, pageSize)
	if err != nil {
		slog.Error("Failed to list matches", "error", err)
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// GetMatch - GET /api/matches/:id
func (h *Handlers) GetMatch(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	match, err := h.services.Matches.Get(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, match)
}

// SetDemandMultiplier - PATCH /api/matches/:id/demand
// Operator knob: raises or lowers the demand factor used by future
// quotes. Existing holds keep their snapshotted price.
func (h *Handlers) SetDemandMultiplier(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid match id"})
		return
	}

	var req struct {
		Multiplier float64 `json:"multiplier" binding:"required,gt=0"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.services.Matches.SetDemandMultiplier(c.Request.Context(), id, req.Multiplier); err != nil {
		slog.Error("Failed to set demand multiplier", "error", err, "match_id", id)
		respondError(c, err)
		return
	}

	c.Status(http.StatusOK)
}
