package server

import (
	"errors"
	"net/http"
	"strings"

	footprintdomain "github.com/ecotrail/ecotrail/internal/footprint/domain"
	invoicedomain "github.com/ecotrail/ecotrail/internal/invoice/domain"
	"github.com/ecotrail/ecotrail/internal/invoice/ocr"
	movementdomain "github.com/ecotrail/ecotrail/internal/movement/domain"
	reportingdomain "github.com/ecotrail/ecotrail/internal/reporting/domain"
	userdomain "github.com/ecotrail/ecotrail/internal/user/domain"
	"github.com/gin-gonic/gin"
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
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrServiceUnavailable = errors.New("service_unavailable")
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
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case isUnauthorizedError(err):
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
		errors.Is(err, userdomain.ErrEmailTaken):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, ocr.ErrUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func classifyErrorForLog(err error) (string, string) {
	status, payload := mapError(err)
	if status >= http.StatusInternalServerError {
		return "internal", payload.Type
	}
	return "client", payload.Type
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
	case errors.Is(err, ErrInvalidRequest):
		return true
	case isMovementValidationError(err),
		isInvoiceValidationError(err),
		isFootprintValidationError(err),
		isReportingValidationError(err),
		isUserValidationError(err):
		return true
	default:
		return false
	}
}

func isUnauthorizedError(err error) bool {
	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, userdomain.ErrUnauthenticated),
		errors.Is(err, userdomain.ErrInvalidToken),
		errors.Is(err, movementdomain.ErrInvalidUser),
		errors.Is(err, invoicedomain.ErrInvalidUser),
		errors.Is(err, footprintdomain.ErrInvalidUser),
		errors.Is(err, reportingdomain.ErrInvalidUser),
		errors.Is(err, userdomain.ErrInvalidUser):
		return true
	default:
		return false
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, movementdomain.ErrNotFound),
		errors.Is(err, invoicedomain.ErrNotFound),
		errors.Is(err, footprintdomain.ErrNotFound),
		errors.Is(err, userdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func isMovementValidationError(err error) bool {
	switch err {
	case movementdomain.ErrInvalidType,
		movementdomain.ErrInvalidLatitude,
		movementdomain.ErrInvalidLongitude,
		movementdomain.ErrInvalidAccuracy,
		movementdomain.ErrInvalidTimestamps,
		movementdomain.ErrInvalidDistance,
		movementdomain.ErrInvalidDuration,
		movementdomain.ErrInvalidPassengers,
		movementdomain.ErrInvalidVerification,
		movementdomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isInvoiceValidationError(err error) bool {
	switch err {
	case invoicedomain.ErrInvalidType,
		invoicedomain.ErrInvalidStoreName,
		invoicedomain.ErrInvalidTotalAmount,
		invoicedomain.ErrInvalidItemName,
		invoicedomain.ErrInvalidItemQuantity,
		invoicedomain.ErrInvalidItemPrice,
		invoicedomain.ErrInvalidItemCategory,
		invoicedomain.ErrInvalidItemFootprint,
		invoicedomain.ErrInvalidVerification,
		invoicedomain.ErrInvalidOccurredAt,
		invoicedomain.ErrInvalidID:
		return true
	default:
		return false
	}
}

func isFootprintValidationError(err error) bool {
	switch err {
	case footprintdomain.ErrInvalidDate,
		footprintdomain.ErrInvalidRange,
		footprintdomain.ErrInvalidGoal:
		return true
	default:
		return false
	}
}

func isReportingValidationError(err error) bool {
	switch err {
	case reportingdomain.ErrInvalidRange,
		reportingdomain.ErrInvalidPeriod,
		reportingdomain.ErrInvalidLimit:
		return true
	default:
		return false
	}
}

func isUserValidationError(err error) bool {
	switch err {
	case userdomain.ErrInvalidName,
		userdomain.ErrInvalidEmail:
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}
