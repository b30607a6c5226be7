package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	apperrors "tribuna/internal/errors"
	"tribuna/internal/search"
	"tribuna/internal/service"
)

type Handlers struct {
	services *service.Services
	search   *search.ElasticsearchClient
}

func NewHandlers(services *service.Services, search *search.ElasticsearchClient) *Handlers {
	return &Handlers{
		services: services,
		search:   search,
	}
}

// currentUserID reads the identity set by the middleware.
func currentUserID(c *gin.Context) int64 {
	userID := int64(1) // Default dummy user ID
	if v, exists := c.Get("user_id"); exists {
		if id, ok := v.(int64); ok {
			userID = id
		}
	}
	return userID
}

func pagination(c *gin.Context) (page, pageSize int, ok bool) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "20"))

	if page < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "page must be >= 1"})
		return 0, 0, false
	}
	if pageSize < 1 || pageSize > 100 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "pageSize must be between 1 and 100"})
		return 0, 0, false
	}
	return page, pageSize, true
}

// respondError maps typed service errors to HTTP statuses. Seat
// conflicts name the blocking seats so the client can retry with a
// different selection.
func respondError(c *gin.Context, err error) {
	if seats, ok := apperrors.IsSeatUnavailable(err); ok {
		c.JSON(http.StatusConflict, gin.H{"error": "seats not available", "seat_unit_ids": seats})
		return
	}

	switch {
	case errors.Is(err, apperrors.ErrHoldNotFound),
		errors.Is(err, apperrors.ErrMatchNotFound),
		errors.Is(err, apperrors.ErrSeatNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrHoldExpired):
		c.JSON(http.StatusGone, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrHoldNotActive),
		errors.Is(err, apperrors.ErrHoldNotPaid):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrOperationFailed):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
