package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medirent/backend/internal/domain/finance"
	"github.com/medirent/backend/internal/domain/shared"
	"github.com/medirent/backend/internal/interfaces/http/dto"
	"github.com/medirent/backend/internal/interfaces/http/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTestContext(t *testing.T) (*gin.Context, *httptest.ResponseRecorder) {
	t.Helper()
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest("GET", "/", nil)
	return c, w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestBaseHandlerSuccess(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.Success(c, map[string]string{"key": "value"})

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestBaseHandlerSuccessWithMeta(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.SuccessWithMeta(c, []string{"a", "b"}, 100, 1, 10)

	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
	require.NotNil(t, resp.Meta)
	assert.Equal(t, int64(100), resp.Meta.Total)
	assert.Equal(t, 10, resp.Meta.TotalPages)
}

func TestBaseHandlerCreated(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)

	h.Created(c, map[string]string{"id": "123"})

	assert.Equal(t, http.StatusCreated, w.Code)
	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestBaseHandlerNoContent(t *testing.T) {
	h := &BaseHandler{}

	router := gin.New()
	router.DELETE("/test", func(c *gin.Context) {
		h.NoContent(c)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest("DELETE", "/test", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Body.Bytes())
}

func TestBaseHandlerBadRequest(t *testing.T) {
	h := &BaseHandler{}
	c, w := newTestContext(t)
	c.Set(middleware.RequestIDKey, "req-123")

	h.BadRequest(c, "Identifiant invalide")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, dto.ErrCodeBadRequest, resp.Error.Code)
	assert.Equal(t, "req-123", resp.Error.RequestID)
}

func TestBaseHandlerHandleError(t *testing.T) {
	h := &BaseHandler{}

	t.Run("nil error writes nothing", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Empty(t, w.Body.Bytes())
	})

	t.Run("maps domain error codes to statuses", func(t *testing.T) {
		tests := []struct {
			name         string
			err          *shared.DomainError
			expectedCode int
		}{
			{"not found", shared.NewDomainError("NOT_FOUND", "Lot de paiement introuvable"), http.StatusNotFound},
			{"duplicate", shared.NewDomainError("DUPLICATE_SUBMISSION", "Paiement déjà soumis"), http.StatusConflict},
			{"invalid target", shared.NewDomainError("INVALID_TARGET", "Cible de paiement invalide"), http.StatusBadRequest},
			{"incomplete payment", shared.NewDomainError("INCOMPLETE_PAYMENT", "Le montant réglé est insuffisant"), http.StatusUnprocessableEntity},
			{"unknown code falls back to 422", shared.NewDomainError("SOMETHING_ELSE", "Opération refusée"), http.StatusUnprocessableEntity},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				c, w := newTestContext(t)

				h.HandleError(c, tt.err)

				assert.Equal(t, tt.expectedCode, w.Code)
				resp := decodeResponse(t, w)
				assert.False(t, resp.Success)
				assert.Equal(t, tt.err.Code, resp.Error.Code)
			})
		}
	})

	t.Run("keeps the field of a field error", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, shared.NewDomainFieldError("INVALID_AMOUNT", "amount", "Le montant doit être positif"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "amount", resp.Error.Field)
	})

	t.Run("wrapped domain error still maps", func(t *testing.T) {
		c, w := newTestContext(t)

		wrapped := fmt.Errorf("chargement du lot: %w", shared.NewDomainError("BATCH_NOT_FOUND", "Lot introuvable"))
		h.HandleError(c, wrapped)

		assert.Equal(t, http.StatusNotFound, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, "BATCH_NOT_FOUND", resp.Error.Code)
	})

	t.Run("payment validation error carries every violation", func(t *testing.T) {
		c, w := newTestContext(t)
		c.Set(middleware.RequestIDKey, "req-456")

		h.HandleError(c, &finance.ValidationError{Violations: []finance.PaymentViolation{
			{Index: 0, Field: "amount", Message: "Le montant doit être positif"},
			{Index: 2, Field: "bond_id", Message: "Un bon CNAM est requis"},
		}})

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := decodeResponse(t, w)
		assert.False(t, resp.Success)
		assert.Equal(t, dto.ErrCodeValidation, resp.Error.Code)
		assert.Equal(t, "req-456", resp.Error.RequestID)
		require.Len(t, resp.Error.Details, 2)
		assert.Equal(t, 2, resp.Error.Details[1].Index)
		assert.Equal(t, "bond_id", resp.Error.Details[1].Field)
	})

	t.Run("unexpected error is internal", func(t *testing.T) {
		c, w := newTestContext(t)

		h.HandleError(c, assert.AnError)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		resp := decodeResponse(t, w)
		assert.Equal(t, dto.ErrCodeInternal, resp.Error.Code)
	})
}

func TestParseUUIDParam(t *testing.T) {
	h := &BaseHandler{}

	t.Run("valid uuid", func(t *testing.T) {
		c, _ := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "3f2c8e8a-5b1d-4e0f-9a37-6d2f1c0b4a55"}}

		id, ok := h.parseUUIDParam(c, "id")
		assert.True(t, ok)
		assert.Equal(t, "3f2c8e8a-5b1d-4e0f-9a37-6d2f1c0b4a55", id.String())
	})

	t.Run("malformed uuid answers 400", func(t *testing.T) {
		c, w := newTestContext(t)
		c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

		_, ok := h.parseUUIDParam(c, "id")
		assert.False(t, ok)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}
