package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	downtimedomain "github.com/plantpulse/plantpulse/internal/downtime/domain"
	kpidomain "github.com/plantpulse/plantpulse/internal/kpi/domain"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	qualitydomain "github.com/plantpulse/plantpulse/internal/quality/domain"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
		typ    string
	}{
		{"nil error", nil, http.StatusInternalServerError, "internal_error"},
		{"invalid status", workorderdomain.ErrInvalidStatus, http.StatusBadRequest, "validation_error"},
		{"invalid date range", kpidomain.ErrInvalidDateRange, http.StatusBadRequest, "validation_error"},
		{"invalid interval", kpidomain.ErrInvalidInterval, http.StatusBadRequest, "validation_error"},
		{"missing client", workorderdomain.ErrInvalidClient, http.StatusUnauthorized, "unauthorized"},
		{"duplicate number", workorderdomain.ErrNumberTaken, http.StatusConflict, "conflict"},
		{"not found", workorderdomain.ErrNotFound, http.StatusNotFound, "not_found"},
		{"kpi order gone", kpidomain.ErrWorkOrderGone, http.StatusNotFound, "not_found"},
		{"gorm not found", gorm.ErrRecordNotFound, http.StatusNotFound, "not_found"},
		{"production mismatch", productiondomain.ErrClientMismatch, http.StatusInternalServerError, "internal_error"},
		{"quality mismatch", qualitydomain.ErrClientMismatch, http.StatusInternalServerError, "internal_error"},
		{"downtime mismatch", downtimedomain.ErrClientMismatch, http.StatusInternalServerError, "internal_error"},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError, "internal_error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, payload := mapError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.typ, payload.Type)
		})
	}
}

func TestValidationErrorCarriesFieldAndCode(t *testing.T) {
	status, payload := mapError(workorderdomain.ErrInvalidQuantity)
	assert.Equal(t, http.StatusBadRequest, status)
	if assert.Len(t, payload.Errors, 1) {
		assert.Equal(t, "quantity", payload.Errors[0].Field)
		assert.Equal(t, "invalid_quantity", payload.Errors[0].Code)
	}
}

func TestErrorHandlingMiddlewareWritesMappedStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	engine := gin.New()
	engine.Use(ErrorHandlingMiddleware())
	engine.GET("/boom", func(c *gin.Context) {
		AbortWithError(c, workorderdomain.ErrNotFound)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	engine.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"not_found"`)
}

func TestClassifyErrorForLog(t *testing.T) {
	assert.Equal(t, "client_error", classifyErrorForLog(workorderdomain.ErrInvalidStatus))
	assert.Equal(t, "server_error", classifyErrorForLog(gorm.ErrInvalidTransaction))
}
