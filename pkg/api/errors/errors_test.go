package errors

import (
	"bytes"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voltflow/crm/pkg/domain"
	"github.com/voltflow/crm/pkg/models"
)

// newContext creates an echo.Context backed by a recorder
func newContext(method, path string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func parseBody(t *testing.T, rec *httptest.ResponseRecorder) models.ErrorResponse {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

// captureLog redirects the standard logger for the duration of fn
func captureLog(fn func()) string {
	var buf bytes.Buffer
	orig := log.Writer()
	log.SetOutput(&buf)
	defer log.SetOutput(orig)
	fn()
	return buf.String()
}

func TestValidationError_NoInternalDetails(t *testing.T) {
	internalMsg := "pq: duplicate key value violates unique constraint"
	var rec *httptest.ResponseRecorder
	logged := captureLog(func() {
		var c echo.Context
		c, rec = newContext(http.MethodPost, "/api/v1/leads")
		require.NoError(t, ValidationError(c, errors.New(internalMsg)))
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", parseBody(t, rec).Error)
	assert.NotContains(t, rec.Body.String(), "pq:")
	assert.Contains(t, logged, "[VALIDATION ERROR]")
	assert.Contains(t, logged, internalMsg)
	assert.Contains(t, logged, "/api/v1/leads")
}

func TestDatabaseError_NoInternalDetails(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/api/v1/leads")
	captureLog(func() { _ = DatabaseError(c, errors.New("connection refused to 10.0.0.5:5432")) })

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "10.0.0.5")
	assert.Contains(t, rec.Header().Get(echo.HeaderContentType), "application/json")
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		wantStatus  int
		wantError   string
		wantMessage string
	}{
		{"not found", domain.NewNotFoundError("Invoice"), http.StatusNotFound, "not_found", "Invoice not found"},
		{"validation", domain.NewValidationError("Invalid status"), http.StatusBadRequest, "validation_error", "Invalid status"},
		{"missing contact", domain.NewMissingContactChannelError("Client e-mail missing"), http.StatusBadRequest, "missing_contact_channel", "Client e-mail missing"},
		{"bad request", domain.NewBadRequestError("unknown entity"), http.StatusBadRequest, "bad_request", "unknown entity"},
		{"conflict", domain.NewConflictError("already exists"), http.StatusConflict, "conflict", "already exists"},
		{"external", domain.NewExternalServiceError("twilio", 21211, "Invalid phone number format", errors.New("raw")), http.StatusBadGateway, "external_service_error", "Invalid phone number format"},
		{"unauthorized", domain.NewUnauthorizedError(), http.StatusUnauthorized, "unauthorized", "Authentication required"},
		{"forbidden", domain.NewForbiddenError("nope"), http.StatusForbidden, "forbidden", "You do not have permission to access this resource."},
		{"internal", errors.New("pq: syntax error"), http.StatusInternalServerError, "internal_error", "An internal error occurred. Please try again later."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, rec := newContext(http.MethodGet, "/api/v1/invoices/1")
			captureLog(func() { require.NoError(t, FromDomain(c, tt.err)) })

			assert.Equal(t, tt.wantStatus, rec.Code)
			resp := parseBody(t, rec)
			assert.Equal(t, tt.wantError, resp.Error)
			assert.Equal(t, tt.wantMessage, resp.Message)
		})
	}
}

func TestRedirects(t *testing.T) {
	c, rec := newContext(http.MethodGet, "/")
	_ = UnauthorizedError(c)
	assert.Equal(t, "/login", parseBody(t, rec).Redirect)

	c, rec = newContext(http.MethodGet, "/")
	_ = ForbiddenError(c)
	assert.Equal(t, "/unauthorized", parseBody(t, rec).Redirect)
}
