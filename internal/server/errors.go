package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	pricingdomain "github.com/ryu-qqq/setof-commerce-sub024/internal/pricing/domain"
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
	ErrNotFound           = errors.New("not_found")
	ErrRateLimited        = errors.New("rate_limited")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

// contractViolations are caller mistakes reported by the pricing service.
// The sentinel text doubles as the error code.
var contractViolations = []struct {
	err     error
	field   string
	message string
}{
	{pricingdomain.ErrInvalidLineAmount, "line.line_amount", "line_amount must not be negative"},
	{pricingdomain.ErrInvalidQuantity, "line.quantity", "quantity must not be negative"},
	{pricingdomain.ErrMissingMember, "member_id", "member_id is required for policies limited per customer"},
	{pricingdomain.ErrInvalidPolicy, "policy_id", "policy_id is required"},
}

var transportFailures = []struct {
	err    error
	status int
	text   string
}{
	{ErrNotFound, http.StatusNotFound, "not found"},
	{ErrRateLimited, http.StatusTooManyRequests, "too many requests"},
	{ErrServiceUnavailable, http.StatusServiceUnavailable, "service unavailable"},
}

var internalError = errorPayload{Type: "internal_error", Message: "internal server error"}

// ErrorHandlingMiddleware renders the last handler error unless a response
// was already written.
func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		lastErr := c.Errors.Last()
		if lastErr == nil || c.Writer.Written() {
			return
		}

		status, payload := mapError(lastErr.Err)
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
		Errors: []ValidationError{{Field: field, Code: code, Message: message}},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, internalError
	}

	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return http.StatusBadRequest, validationPayload(vErr.Errors)
	}

	for _, v := range contractViolations {
		if errors.Is(err, v.err) {
			return http.StatusBadRequest, validationPayload([]ValidationError{
				{Field: v.field, Code: v.err.Error(), Message: v.message},
			})
		}
	}

	for _, f := range transportFailures {
		if errors.Is(err, f.err) {
			return f.status, errorPayload{Type: f.err.Error(), Message: f.text}
		}
	}

	return http.StatusInternalServerError, internalError
}

func validationPayload(details []ValidationError) errorPayload {
	return errorPayload{
		Type:    "validation_error",
		Message: "validation error",
		Errors:  details,
	}
}

// classifyErrorForLog returns the error type and code written to access logs.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	if len(payload.Errors) > 0 {
		return payload.Type, payload.Errors[0].Code
	}
	return payload.Type, payload.Type
}
