package middleware

import (
	"errors"
	"fmt"
	"net/http"

	"ResourceShare/internal/apperrors"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Error  string            `json:"error"`
	Fields map[string]string `json:"fields,omitempty"`
}

// StatusFor maps an error returned by a handler to an HTTP status code.
func StatusFor(err error) int {
	var he *echo.HTTPError
	switch {
	case errors.As(err, &he):
		return he.Code
	case errors.Is(err, apperrors.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, apperrors.ErrStoreUnavailable):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}

// NewHTTPErrorHandler renders handler errors as {"error": ...} JSON. Internal errors are
// logged and hidden from the caller.
func NewHTTPErrorHandler(logger *zap.Logger) echo.HTTPErrorHandler {
	logger = logger.Named("http")
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		status := StatusFor(err)
		body := ErrorResponse{Error: err.Error(), Fields: apperrors.FieldsOf(err)}
		var he *echo.HTTPError
		if errors.As(err, &he) {
			body.Error = fmt.Sprint(he.Message)
		}
		switch {
		case status == http.StatusServiceUnavailable:
			logger.Warn("store unavailable", zap.Error(err))
		case status >= 500:
			logger.Error("unhandled error", zap.Error(err), zap.String("uri", c.Request().RequestURI))
			body = ErrorResponse{Error: http.StatusText(http.StatusInternalServerError)}
		}

		if c.Request().Method == http.MethodHead {
			err = c.NoContent(status)
		} else {
			err = c.JSON(status, body)
		}
		if err != nil {
			logger.Error("failed to write error response", zap.Error(err))
		}
	}
}
