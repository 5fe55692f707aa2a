package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	attendancedomain "github.com/plantpulse/plantpulse/internal/attendance/domain"
	auditdomain "github.com/plantpulse/plantpulse/internal/audit/domain"
	clientdomain "github.com/plantpulse/plantpulse/internal/client/domain"
	downtimedomain "github.com/plantpulse/plantpulse/internal/downtime/domain"
	kpidomain "github.com/plantpulse/plantpulse/internal/kpi/domain"
	productdomain "github.com/plantpulse/plantpulse/internal/product/domain"
	productiondomain "github.com/plantpulse/plantpulse/internal/production/domain"
	qualitydomain "github.com/plantpulse/plantpulse/internal/quality/domain"
	workorderdomain "github.com/plantpulse/plantpulse/internal/workorder/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrConflict       = errors.New("conflict")
	ErrInternal       = errors.New("internal_error")
	ErrNotFound       = errors.New("not_found")
	ErrInvalidRequest = errors.New("invalid_request")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func classifyErrorForLog(err error) string {
	status, _ := mapError(err)
	switch {
	case status >= 500:
		return "server_error"
	case status >= 400:
		return "client_error"
	default:
		return "ok"
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := err.Error()
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: "invalid value",
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, workorderdomain.ErrInvalidClient),
		errors.Is(err, productiondomain.ErrInvalidClient),
		errors.Is(err, qualitydomain.ErrInvalidClient),
		errors.Is(err, attendancedomain.ErrInvalidClient),
		errors.Is(err, downtimedomain.ErrInvalidClient),
		errors.Is(err, productdomain.ErrInvalidClient),
		errors.Is(err, auditdomain.ErrInvalidClient),
		errors.Is(err, kpidomain.ErrInvalidClient):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case errors.Is(err, ErrConflict),
		errors.Is(err, clientdomain.ErrCodeTaken),
		errors.Is(err, workorderdomain.ErrNumberTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, productiondomain.ErrClientMismatch),
		errors.Is(err, qualitydomain.ErrClientMismatch),
		errors.Is(err, downtimedomain.ErrClientMismatch):
		// A cross-client integrity fault is fatal, never a user error.
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, clientdomain.ErrInvalidName),
		errors.Is(err, clientdomain.ErrInvalidID),
		errors.Is(err, productdomain.ErrInvalidName),
		errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, workorderdomain.ErrInvalidNumber),
		errors.Is(err, workorderdomain.ErrInvalidQuantity),
		errors.Is(err, workorderdomain.ErrInvalidStatus),
		errors.Is(err, workorderdomain.ErrInvalidID),
		errors.Is(err, workorderdomain.ErrInvalidDateRange),
		errors.Is(err, productiondomain.ErrInvalidID),
		errors.Is(err, productiondomain.ErrInvalidQuantity),
		errors.Is(err, qualitydomain.ErrInvalidID),
		errors.Is(err, qualitydomain.ErrInvalidQuantity),
		errors.Is(err, attendancedomain.ErrInvalidID),
		errors.Is(err, attendancedomain.ErrInvalidEmployee),
		errors.Is(err, attendancedomain.ErrInvalidHours),
		errors.Is(err, downtimedomain.ErrInvalidID),
		errors.Is(err, downtimedomain.ErrInvalidMinutes),
		errors.Is(err, auditdomain.ErrInvalidAction),
		errors.Is(err, auditdomain.ErrInvalidTimeRange),
		errors.Is(err, auditdomain.ErrInvalidPageToken),
		errors.Is(err, kpidomain.ErrInvalidID),
		errors.Is(err, kpidomain.ErrInvalidDateRange),
		errors.Is(err, kpidomain.ErrInvalidInterval):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, clientdomain.ErrNotFound),
		errors.Is(err, productdomain.ErrNotFound),
		errors.Is(err, workorderdomain.ErrNotFound),
		errors.Is(err, productiondomain.ErrNotFound),
		errors.Is(err, productiondomain.ErrWorkOrderGone),
		errors.Is(err, qualitydomain.ErrNotFound),
		errors.Is(err, attendancedomain.ErrNotFound),
		errors.Is(err, downtimedomain.ErrNotFound),
		errors.Is(err, kpidomain.ErrWorkOrderGone),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorField(code string) string {
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}
