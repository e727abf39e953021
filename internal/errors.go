package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

type ErrorType string

const (
	ErrorTypeValidation   ErrorType = "VALIDATION_ERROR"
	ErrorTypeNotFound     ErrorType = "NOT_FOUND"
	ErrorTypeUnauthorized ErrorType = "UNAUTHORIZED"
	ErrorTypeForbidden    ErrorType = "FORBIDDEN"
	ErrorTypeConflict     ErrorType = "CONFLICT"
	ErrorTypeRateLimited  ErrorType = "RATE_LIMITED"
	ErrorTypeInternal     ErrorType = "INTERNAL_ERROR"
	ErrorTypeExternal     ErrorType = "EXTERNAL_ERROR"
)

type ErrorCode string

const (
	ErrCodeValidationFailed ErrorCode = "VALIDATION_FAILED"
	ErrCodeInvalidRequest   ErrorCode = "INVALID_REQUEST"
	ErrCodeInvalidDate      ErrorCode = "INVALID_DATE"
	ErrCodeInvalidAmount    ErrorCode = "INVALID_AMOUNT"
	ErrCodeInvalidCode      ErrorCode = "INVALID_CODE"
	ErrCodeInvalidRoute     ErrorCode = "INVALID_ROUTE"

	ErrCodeEmployeeNotFound      ErrorCode = "EMPLOYEE_NOT_FOUND"
	ErrCodeEmployeeExists        ErrorCode = "EMPLOYEE_EXISTS"
	ErrCodeWorkPermitNotFound    ErrorCode = "WORK_PERMIT_NOT_FOUND"
	ErrCodeLeaveTypeNotFound     ErrorCode = "LEAVE_TYPE_NOT_FOUND"
	ErrCodeLeaveTypeExists       ErrorCode = "LEAVE_TYPE_EXISTS"
	ErrCodeInsufficientBalance   ErrorCode = "INSUFFICIENT_BALANCE"
	ErrCodeFeatureNotFound       ErrorCode = "FEATURE_NOT_FOUND"
	ErrCodeFeatureExists         ErrorCode = "FEATURE_EXISTS"
	ErrCodeRouteNotResolved      ErrorCode = "ROUTE_NOT_RESOLVED"
	ErrCodeRoleNotFound          ErrorCode = "ROLE_NOT_FOUND"
	ErrCodeRoleExists            ErrorCode = "ROLE_EXISTS"
	ErrCodeSystemRole            ErrorCode = "SYSTEM_ROLE"
	ErrCodeInvalidScope          ErrorCode = "INVALID_SCOPE"
	ErrCodeSectionNotFound       ErrorCode = "MANUAL_SECTION_NOT_FOUND"
	ErrCodeTaskNotFound          ErrorCode = "HANDBOOK_TASK_NOT_FOUND"
	ErrCodeConsentTypeNotFound   ErrorCode = "CONSENT_TYPE_NOT_FOUND"
	ErrCodeConsentTypeExists     ErrorCode = "CONSENT_TYPE_EXISTS"
	ErrCodePolicyNotFound        ErrorCode = "POLICY_NOT_FOUND"
	ErrCodeNotificationNotFound  ErrorCode = "NOTIFICATION_NOT_FOUND"
	ErrCodeAccessRequestNotFound ErrorCode = "ACCESS_REQUEST_NOT_FOUND"
	ErrCodeAccessRequestDecided  ErrorCode = "ACCESS_REQUEST_ALREADY_DECIDED"
	ErrCodeUnauthorizedAccess    ErrorCode = "UNAUTHORIZED_ACCESS"

	ErrCodeInvalidCredentials ErrorCode = "INVALID_CREDENTIALS"
	ErrCodeUserInactive       ErrorCode = "USER_INACTIVE"
	ErrCodeInvalidToken       ErrorCode = "INVALID_TOKEN"
	ErrCodeTokenExpired       ErrorCode = "TOKEN_EXPIRED"
	ErrCodeTooManyAttempts    ErrorCode = "TOO_MANY_ATTEMPTS"

	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
)

type AppError struct {
	Type       ErrorType   `json:"type"`
	Code       ErrorCode   `json:"code"`
	Message    string      `json:"message"`
	Details    interface{} `json:"details,omitempty"`
	StatusCode int         `json:"-"`
	Cause      error       `json:"-"`
}

func (e *AppError) Error() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok && len(validationErrors.Errors) > 0 {
			return validationErrors.Errors[0].Message
		}
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) GetDetailedMessage() string {
	if e.Details != nil {
		if validationErrors, ok := e.Details.(ValidationErrors); ok {
			if len(validationErrors.Errors) == 1 {
				return validationErrors.Errors[0].Message
			} else if len(validationErrors.Errors) > 1 {
				messages := make([]string, len(validationErrors.Errors))
				for i, err := range validationErrors.Errors {
					messages[i] = err.Message
				}
				return strings.Join(messages, "; ")
			}
		}
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches on type and code so sentinel errors survive wrapping and copying.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithCause returns a copy carrying cause; the receiver is left untouched.
func (e *AppError) WithCause(cause error) *AppError {
	clone := *e
	clone.Cause = cause
	return &clone
}

// WithDetails returns a copy carrying details.
func (e *AppError) WithDetails(details interface{}) *AppError {
	clone := *e
	clone.Details = details
	return &clone
}

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func NewValidationError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusBadRequest,
	}
}

func NewValidationFieldError(field, message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Code:       ErrCodeValidationFailed,
		Message:    "Validation failed",
		StatusCode: http.StatusBadRequest,
		Details: ValidationErrors{
			Errors: []ValidationError{
				{Field: field, Message: message, Code: string(code)},
			},
		},
	}
}

func NewNotFoundError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

func NewUnauthorizedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeUnauthorized,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

func NewForbiddenError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeForbidden,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

func NewRateLimitedError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeRateLimited,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusTooManyRequests,
	}
}

func NewInternalError(message string, cause error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Code:       ErrCodeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Cause:      cause,
	}
}

func NewConflictError(message string, code ErrorCode) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Code:       code,
		Message:    message,
		StatusCode: http.StatusConflict,
	}
}

var (
	ErrEmployeeNotFound      = NewNotFoundError("Employee not found", ErrCodeEmployeeNotFound)
	ErrWorkPermitNotFound    = NewNotFoundError("Work permit not found", ErrCodeWorkPermitNotFound)
	ErrLeaveTypeNotFound     = NewNotFoundError("Leave type not found", ErrCodeLeaveTypeNotFound)
	ErrFeatureNotFound       = NewNotFoundError("Feature not found", ErrCodeFeatureNotFound)
	ErrRouteNotResolved      = NewNotFoundError("No route is registered for this feature", ErrCodeRouteNotResolved)
	ErrRoleNotFound          = NewNotFoundError("Role not found", ErrCodeRoleNotFound)
	ErrSectionNotFound       = NewNotFoundError("Manual section not found", ErrCodeSectionNotFound)
	ErrTaskNotFound          = NewNotFoundError("Handbook task not found", ErrCodeTaskNotFound)
	ErrConsentTypeNotFound   = NewNotFoundError("Consent type not found", ErrCodeConsentTypeNotFound)
	ErrPolicyNotFound        = NewNotFoundError("Feedback policy not found", ErrCodePolicyNotFound)
	ErrNotificationNotFound  = NewNotFoundError("Notification not found", ErrCodeNotificationNotFound)
	ErrAccessRequestNotFound = NewNotFoundError("Access request not found", ErrCodeAccessRequestNotFound)
	ErrUnauthorizedAccess    = NewForbiddenError("You do not have access to this resource", ErrCodeUnauthorizedAccess)

	ErrInvalidCredentials = NewUnauthorizedError("Invalid email or password", ErrCodeInvalidCredentials)
	ErrUserInactive       = NewForbiddenError("User account is inactive", ErrCodeUserInactive)
	ErrInvalidToken       = NewUnauthorizedError("Invalid token", ErrCodeInvalidToken)
	ErrTokenExpired       = NewUnauthorizedError("Token has expired", ErrCodeTokenExpired)
	ErrTooManyAttempts    = NewRateLimitedError("Too many login attempts, try again later", ErrCodeTooManyAttempts)
)

func IsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

type Response struct {
	Error *AppError `json:"error"`
}

func (e *AppError) ToHTTPResponse() (int, interface{}) {
	return e.StatusCode, Response{Error: e}
}

func (e *AppError) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Type    ErrorType   `json:"type"`
		Code    ErrorCode   `json:"code"`
		Message string      `json:"message"`
		Details interface{} `json:"details,omitempty"`
	}{
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	})
}
