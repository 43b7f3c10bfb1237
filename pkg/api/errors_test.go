package api

import (
	"net/http"
	"testing"

	echo "github.com/labstack/echo/v5"
	"github.com/stretchr/testify/assert"
)

func TestNewAPIError(t *testing.T) {
	tests := []struct {
		name       string
		kind       string
		wantStatus int
	}{
		{"unauthorised maps to 401", errUnauthorised, http.StatusUnauthorized},
		{"invalid_request maps to 400", errInvalidRequest, http.StatusBadRequest},
		{"session_not_found maps to 404", errSessionNotFound, http.StatusNotFound},
		{"session_not_pending maps to 409", errSessionNotPending, http.StatusConflict},
		{"internal_error maps to 500", errInternal, http.StatusInternalServerError},
		{"unmapped kind defaults to 500", "something_unmodelled", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			he := newAPIError(tt.kind, "a safe sentence")
			assert.IsType(t, &echo.HTTPError{}, he)
			assert.Equal(t, tt.wantStatus, he.Code)

			body, ok := he.Message.(map[string]string)
			assert.True(t, ok)
			assert.Equal(t, tt.kind, body["error"])
			assert.Equal(t, "a safe sentence", body["message"])
		})
	}
}
