package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	accountdomain "github.com/trash2cash/platform/internal/account/domain"
	bindomain "github.com/trash2cash/platform/internal/bin/domain"
	"github.com/trash2cash/platform/internal/camera"
	"github.com/trash2cash/platform/internal/classifier"
	disposaldomain "github.com/trash2cash/platform/internal/disposal/domain"
	"github.com/trash2cash/platform/internal/hardware"
	"github.com/trash2cash/platform/internal/identity"
	issuedomain "github.com/trash2cash/platform/internal/issue/domain"
	notificationdomain "github.com/trash2cash/platform/internal/notification/domain"
	profiledomain "github.com/trash2cash/platform/internal/profile/domain"
	redemptiondomain "github.com/trash2cash/platform/internal/redemption/domain"
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
	ErrRateLimited        = errors.New("rate_limited")
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
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, accountdomain.ErrInvalidCredentials),
		errors.Is(err, identity.ErrIdentityMismatch):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: "conflict",
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrRateLimited),
		errors.Is(err, camera.ErrTooManySessions):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "rate_limited",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable),
		errors.Is(err, classifier.ErrUnavailable),
		errors.Is(err, hardware.ErrDeviceUnreachable),
		errors.Is(err, hardware.ErrCaptureFailed):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	case errors.Is(err, ErrInternal):
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

// classifyErrorForLog feeds the request logger the same taxonomy the error
// responses use.
func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	code := payload.Type
	if len(payload.Errors) > 0 {
		code = payload.Errors[0].Code
	}
	return payload.Type, code
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
		errors.Is(err, identity.ErrMalformedToken),
		errors.Is(err, classifier.ErrEmptyImage):
		return true
	case isAccountValidationError(err),
		isDisposalValidationError(err),
		isRedemptionValidationError(err),
		isBinValidationError(err),
		isIssueValidationError(err),
		isNotificationValidationError(err):
		return true
	default:
		return false
	}
}

func isAccountValidationError(err error) bool {
	return errors.Is(err, accountdomain.ErrInvalidUsername) ||
		errors.Is(err, accountdomain.ErrInvalidCNIC) ||
		errors.Is(err, accountdomain.ErrInvalidPassword) ||
		errors.Is(err, accountdomain.ErrInvalidID) ||
		errors.Is(err, profiledomain.ErrInvalidID)
}

func isDisposalValidationError(err error) bool {
	return errors.Is(err, disposaldomain.ErrInvalidUser) ||
		errors.Is(err, disposaldomain.ErrInvalidCategory) ||
		errors.Is(err, disposaldomain.ErrInvalidID)
}

func isRedemptionValidationError(err error) bool {
	return errors.Is(err, redemptiondomain.ErrInvalidID) ||
		errors.Is(err, redemptiondomain.ErrInvalidCategory) ||
		errors.Is(err, redemptiondomain.ErrInvalidPoints) ||
		errors.Is(err, redemptiondomain.ErrBelowMinimum) ||
		errors.Is(err, redemptiondomain.ErrInsufficientPoints) ||
		errors.Is(err, redemptiondomain.ErrMissingBillDetails) ||
		errors.Is(err, redemptiondomain.ErrMissingCharityName) ||
		errors.Is(err, redemptiondomain.ErrInvalidStatus)
}

func isBinValidationError(err error) bool {
	return errors.Is(err, bindomain.ErrInvalidSerial) ||
		errors.Is(err, bindomain.ErrInvalidStatus) ||
		errors.Is(err, bindomain.ErrInvalidID)
}

func isIssueValidationError(err error) bool {
	return errors.Is(err, issuedomain.ErrInvalidID) ||
		errors.Is(err, issuedomain.ErrInvalidCategory) ||
		errors.Is(err, issuedomain.ErrInvalidDescription) ||
		errors.Is(err, issuedomain.ErrInvalidStatus)
}

func isNotificationValidationError(err error) bool {
	return errors.Is(err, notificationdomain.ErrInvalidID) ||
		errors.Is(err, notificationdomain.ErrInvalidTitle)
}

func isConflictError(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, accountdomain.ErrUserExists) ||
		errors.Is(err, bindomain.ErrBinExists) ||
		errors.Is(err, disposaldomain.ErrAlreadyProcessed) ||
		errors.Is(err, redemptiondomain.ErrInvalidTransition) ||
		errors.Is(err, hardware.ErrBinBusy) ||
		errors.Is(err, hardware.ErrBinUnavailable)
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, accountdomain.ErrNotFound),
		errors.Is(err, profiledomain.ErrNotFound),
		errors.Is(err, bindomain.ErrNotFound),
		errors.Is(err, disposaldomain.ErrDetectionNotFound),
		errors.Is(err, redemptiondomain.ErrNotFound),
		errors.Is(err, issuedomain.ErrNotFound),
		errors.Is(err, notificationdomain.ErrNotFound),
		errors.Is(err, camera.ErrSessionNotFound),
		errors.Is(err, camera.ErrSessionExpired),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidRequest):
		return "invalid_request"
	default:
		return err.Error()
	}
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	if strings.HasPrefix(code, "missing_") {
		return strings.TrimPrefix(code, "missing_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	case "below_minimum_points":
		return "points below the redemption minimum"
	case "insufficient_points":
		return "not enough points"
	default:
		return "invalid value"
	}
}
