package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/schoolhealth/consult-api/pkg/apperror"
)

func setupRouter(err error) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(ErrorHandler())
	r.GET("/boom", func(c *gin.Context) {
		_ = c.Error(err)
	})
	return r
}

func TestErrorHandlerMapsApplicationErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{"validation", apperror.Validation("bad input"), http.StatusBadRequest},
		{"not found", apperror.NotFound("center"), http.StatusNotFound},
		{"slot conflict", apperror.SlotConflict("taken"), http.StatusConflict},
		{"timeout", apperror.Timeout(nil), http.StatusGatewayTimeout},
		{"wrapped", fmt.Errorf("handling: %w", apperror.NotFound("notice")), http.StatusNotFound},
		{"foreign", fmt.Errorf("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRouter(tt.err)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/boom", nil)
			r.ServeHTTP(w, req)

			assert.Equal(t, tt.status, w.Code)
			assert.Contains(t, w.Body.String(), "trace_id")
		})
	}
}

func TestRequestIDIsEchoedAndGenerated(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, "req-123")
	r.ServeHTTP(w, req)
	assert.Equal(t, "req-123", w.Header().Get(HeaderXRequestID))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	assert.NotEmpty(t, w.Header().Get(HeaderXRequestID))

	// An oversized inbound ID is replaced rather than echoed.
	oversized := strings.Repeat("x", maxRequestIDLen+1)
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderXRequestID, oversized)
	r.ServeHTTP(w, req)
	got := w.Header().Get(HeaderXRequestID)
	assert.NotEmpty(t, got)
	assert.NotEqual(t, oversized, got)
}
