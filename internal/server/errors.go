package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	catalogdomain "github.com/smallbiznis/salesledger/internal/catalog/domain"
	orderdomain "github.com/smallbiznis/salesledger/internal/order/domain"
	salesreportdomain "github.com/smallbiznis/salesledger/internal/salesreport/domain"
	"github.com/smallbiznis/salesledger/internal/salesreport/period"
	"github.com/smallbiznis/salesledger/pkg/db/pagination"
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
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

var validationErrors = []error{
	ErrInvalidRequest,
	catalogdomain.ErrInvalidID,
	catalogdomain.ErrInvalidName,
	catalogdomain.ErrInvalidType,
	catalogdomain.ErrInvalidBranch,
	catalogdomain.ErrInvalidUnitPrice,
	catalogdomain.ErrInvalidSalePrice,
	catalogdomain.ErrInvalidAttributes,
	orderdomain.ErrInvalidID,
	orderdomain.ErrEmptyItems,
	orderdomain.ErrInvalidProductID,
	orderdomain.ErrInvalidDiscount,
	orderdomain.ErrInvalidRange,
	salesreportdomain.ErrInvalidLimit,
	period.ErrInvalidPeriod,
	period.ErrMissingRange,
	period.ErrInvalidDate,
	period.ErrStartAfterEnd,
	period.ErrRangeTooLong,
	pagination.ErrInvalidPageToken,
}

var notFoundErrors = []error{
	ErrNotFound,
	catalogdomain.ErrNotFound,
	orderdomain.ErrNotFound,
	orderdomain.ErrProductNotFound,
	gorm.ErrRecordNotFound,
}

var conflictErrors = []error{
	ErrConflict,
	catalogdomain.ErrCodeExists,
	catalogdomain.ErrProductInUse,
}

// field names for codes that do not follow the invalid_<field> pattern
var validationFields = map[string]string{
	"empty_items":        "items",
	"invalid_product_id": "product_id",
	"invalid_range":      "from",
	"missing_range":      "start",
	"start_after_end":    "start",
	"range_too_long":     "end",
	"invalid_date":       "start",
	"invalid_page_token": "page_token",
}

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

	if sentinel := matchAny(err, validationErrors); sentinel != nil {
		code := sentinel.Error()
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
	case matchAny(err, conflictErrors) != nil:
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case matchAny(err, notFoundErrors) != nil:
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: notFoundMessage(err),
		}
	case errors.Is(err, ErrRateLimited):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
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

// classifyErrorForLog feeds the request logger the same type/code the
// client receives.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
}

func matchAny(err error, targets []error) error {
	for _, target := range targets {
		if errors.Is(err, target) {
			return target
		}
	}
	return nil
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func validationErrorField(code string) string {
	if field, ok := validationFields[code]; ok {
		return field
	}
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
	case "empty_items":
		return "at least one item is required"
	case "missing_range":
		return "start and end are required"
	case "start_after_end":
		return "start must not be after end"
	case "range_too_long":
		return "date range is too long"
	default:
		return "invalid value"
	}
}

func notFoundMessage(err error) string {
	if errors.Is(err, orderdomain.ErrProductNotFound) {
		return "product not found"
	}
	return "not found"
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, catalogdomain.ErrProductInUse):
		return "product has sales history"
	case errors.Is(err, catalogdomain.ErrCodeExists):
		return "product code already exists"
	default:
		return "conflict"
	}
}
