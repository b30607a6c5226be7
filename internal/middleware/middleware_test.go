package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestIdentityHeader(t *testing.T) {
	var got int64
	router := gin.New()
	router.Use(Identity())
	router.GET("/probe", func(c *gin.Context) {
		id, ok := UserIDFromContext(c.Request.Context())
		assert.True(t, ok)
		got = id
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("X-User-ID", "42")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(42), got)
}

func TestIdentityDefaultsToUserOne(t *testing.T) {
	var got int64
	router := gin.New()
	router.Use(Identity())
	router.GET("/probe", func(c *gin.Context) {
		got, _ = UserIDFromContext(c.Request.Context())
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), got)
}

func TestIdentityRejectsGarbage(t *testing.T) {
	router := gin.New()
	router.Use(Identity())
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	for _, header := range []string{"abc", "-1", "0"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/probe", nil)
		req.Header.Set("X-User-ID", header)
		router.ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code, "header %q", header)
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	router := gin.New()
	router.Use(CORS())
	router.GET("/probe", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodOptions, "/probe", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestUserIDContextRoundTrip(t *testing.T) {
	ctx := ContextWithUserID(httptest.NewRequest(http.MethodGet, "/", nil).Context(), 7)

	id, ok := UserIDFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, int64(7), id)
}
