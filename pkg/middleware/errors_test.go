package middleware

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ResourceShare/internal/apperrors"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestStatusFor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "invalid id", err: apperrors.InvalidIdentifier("Invalid id"), want: http.StatusBadRequest},
		{name: "not found", err: apperrors.NotFound("Resource not found"), want: http.StatusNotFound},
		{name: "validation", err: apperrors.Validation("bad"), want: http.StatusUnprocessableEntity},
		{name: "store unconfigured", err: apperrors.StoreUnavailable(nil), want: http.StatusServiceUnavailable},
		{name: "store unreachable", err: apperrors.StoreUnavailable(errors.New("dial tcp")), want: http.StatusServiceUnavailable},
		{name: "wrapped", err: fmt.Errorf("store notification: %w", apperrors.StoreUnavailable(nil)), want: http.StatusServiceUnavailable},
		{name: "echo error", err: echo.ErrMethodNotAllowed, want: http.StatusMethodNotAllowed},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StatusFor(tt.err))
		})
	}
}

func render(t *testing.T, method string, err error) (*httptest.ResponseRecorder, ErrorResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(method, "/", nil), rec)
	NewHTTPErrorHandler(zap.NewNop())(err, c)

	var body ErrorResponse
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	}
	return rec, body
}

func TestHTTPErrorHandler_Body(t *testing.T) {
	t.Parallel()

	rec, body := render(t, http.MethodPost, apperrors.Validation("Request validation failed").WithFields(map[string]string{"email": "is required"}))
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "Request validation failed", body.Error)
	assert.Equal(t, map[string]string{"email": "is required"}, body.Fields)

	rec, body = render(t, http.MethodGet, apperrors.NotFound("Resource not found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Resource not found", body.Error)
	assert.Nil(t, body.Fields)

	rec, body = render(t, http.MethodGet, echo.NewHTTPError(http.StatusNotFound, "Not Found"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Not Found", body.Error)
}

func TestHTTPErrorHandler_HidesInternalErrors(t *testing.T) {
	t.Parallel()

	rec, body := render(t, http.MethodGet, errors.New("mongo: cursor exhausted at 10.0.0.3"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "Internal Server Error", body.Error)

	rec, body = render(t, http.MethodGet, apperrors.StoreUnavailable(errors.New("server selection timeout")))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Equal(t, "Database not available", body.Error)
}

func TestHTTPErrorHandler_Head(t *testing.T) {
	t.Parallel()

	rec, _ := render(t, http.MethodHead, apperrors.NotFound("gone"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Zero(t, rec.Body.Len())
}
