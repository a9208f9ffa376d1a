// AngelaMos | 2026
// errors.go

package core

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrNotFound         = errors.New("resource not found")
	ErrDuplicateKey     = errors.New("duplicate key")
	ErrInvalidInput     = errors.New("invalid input")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrTokenExpired     = errors.New("token expired")
	ErrTokenInvalid     = errors.New("token invalid")
	ErrTokenMalformed   = errors.New("token malformed")
	ErrTokenSignature   = errors.New("token signature invalid")
	ErrStoreUnavailable = errors.New("store unavailable")
)

const (
	ReasonBlocked                     = "blocked"
	ReasonCannotBlockSuperAdmin       = "cannot_block_super_admin"
	ReasonLastSuperAdmin              = "last_super_admin"
	ReasonCannotImpersonateSuperAdmin = "cannot_impersonate_super_admin"
	ReasonNotImpersonating            = "not_impersonating"
	ReasonInsufficientRole            = "insufficient_role"
)

var reasonMessages = map[string]string{
	ReasonBlocked:                     "user is blocked",
	ReasonCannotBlockSuperAdmin:       "a super admin cannot be blocked",
	ReasonLastSuperAdmin:              "the last super admin cannot be removed",
	ReasonCannotImpersonateSuperAdmin: "a super admin cannot be impersonated",
	ReasonNotImpersonating:            "not in an impersonation session",
	ReasonInsufficientRole:            "insufficient permissions",
}

// PolicyError is a Forbidden outcome carrying the business rule that denied it.
type PolicyError struct {
	Reason string
}

func Deny(reason string) *PolicyError {
	return &PolicyError{Reason: reason}
}

func (e *PolicyError) Error() string {
	if msg, ok := reasonMessages[e.Reason]; ok {
		return "forbidden: " + msg
	}
	return "forbidden: " + e.Reason
}

func (e *PolicyError) Is(target error) bool {
	return target == ErrForbidden
}

func (e *PolicyError) Message() string {
	if msg, ok := reasonMessages[e.Reason]; ok {
		return msg
	}
	return "forbidden"
}

// DenialReason returns the policy reason wrapped in err, or "".
func DenialReason(err error) string {
	var pe *PolicyError
	if errors.As(err, &pe) {
		return pe.Reason
	}
	return ""
}

// InputError is a validation failure with a client-facing message.
type InputError struct {
	Msg string
}

func (e *InputError) Error() string {
	return e.Msg
}

func (e *InputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func Invalid(format string, args ...any) error {
	return &InputError{Msg: fmt.Sprintf(format, args...)}
}

// Unavailable marks an infrastructure failure so it is reported as 503.
func Unavailable(op string, err error) error {
	return fmt.Errorf("%s: %w: %w", op, ErrStoreUnavailable, err)
}

type AppError struct {
	Err        error  `json:"-"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Code       string `json:"code"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NewAppError(err error, message string, statusCode int, code string) *AppError {
	return &AppError{
		Err:        err,
		Message:    message,
		StatusCode: statusCode,
		Code:       code,
	}
}

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

func UnauthorizedError(message string) *AppError {
	if message == "" {
		message = "authentication required"
	}
	return NewAppError(ErrUnauthorized, message, http.StatusUnauthorized, "UNAUTHORIZED")
}

func ForbiddenError(message string) *AppError {
	if message == "" {
		message = "forbidden"
	}
	return NewAppError(ErrForbidden, message, http.StatusForbidden, "FORBIDDEN")
}

func PolicyDeniedError(pe *PolicyError) *AppError {
	return NewAppError(pe, pe.Message(), http.StatusForbidden, pe.Reason)
}

func NotFoundError(resource string) *AppError {
	return NewAppError(
		ErrNotFound,
		fmt.Sprintf("%s not found", resource),
		http.StatusNotFound,
		"NOT_FOUND",
	)
}

func ValidationError(message string) *AppError {
	return NewAppError(ErrInvalidInput, message, http.StatusBadRequest, "VALIDATION_ERROR")
}

func DuplicateError(field string) *AppError {
	return NewAppError(
		ErrDuplicateKey,
		fmt.Sprintf("%s already registered", field),
		http.StatusBadRequest,
		"DUPLICATE",
	)
}

func TokenExpiredError() *AppError {
	return NewAppError(ErrTokenExpired, "token has expired", http.StatusUnauthorized, "TOKEN_EXPIRED")
}

func TokenInvalidError() *AppError {
	return NewAppError(ErrTokenInvalid, "invalid token", http.StatusUnauthorized, "TOKEN_INVALID")
}

func StoreUnavailableError() *AppError {
	return NewAppError(
		ErrStoreUnavailable,
		"service temporarily unavailable",
		http.StatusServiceUnavailable,
		"STORE_UNAVAILABLE",
	)
}

// ClassifyError maps a service error onto the HTTP error taxonomy.
// Unknown errors yield nil so the caller falls back to a 500.
func ClassifyError(err error, resource string) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var pe *PolicyError
	var ie *InputError
	switch {
	case errors.As(err, &pe):
		return PolicyDeniedError(pe)
	case errors.Is(err, ErrTokenExpired):
		return TokenExpiredError()
	case errors.Is(err, ErrTokenInvalid),
		errors.Is(err, ErrTokenMalformed),
		errors.Is(err, ErrTokenSignature):
		return TokenInvalidError()
	case errors.Is(err, ErrUnauthorized):
		return UnauthorizedError("")
	case errors.Is(err, ErrForbidden):
		return ForbiddenError("")
	case errors.Is(err, ErrNotFound):
		return NotFoundError(resource)
	case errors.Is(err, ErrDuplicateKey):
		return DuplicateError("email")
	case errors.As(err, &ie):
		return ValidationError(ie.Msg)
	case errors.Is(err, ErrInvalidInput):
		return ValidationError("invalid input")
	case errors.Is(err, ErrStoreUnavailable):
		return StoreUnavailableError()
	}
	return nil
}
