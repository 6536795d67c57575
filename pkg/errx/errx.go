package errx

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
)

// Type classifies an error for transport mapping and logging
type Type string

const (
	TypeInternal      Type = "INTERNAL"      // Unexpected failure, never shown to clients
	TypeValidation    Type = "VALIDATION"    // Malformed or missing input
	TypeNotFound      Type = "NOT_FOUND"     // Referenced resource does not exist
	TypeConflict      Type = "CONFLICT"      // Operation disallowed by current state
	TypeBusiness      Type = "BUSINESS"      // Domain rule violation
	TypeAuthorization Type = "AUTHORIZATION" // Missing or insufficient credentials
	TypeExternal      Type = "EXTERNAL"      // Failure in a collaborator service
)

const internalMessage = "An unexpected error occurred"

// Error is the application error carried across layers
type Error struct {
	Type       Type           `json:"type"`
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	cause      error
}

// HTTPResponse is the JSON body rendered for an Error
type HTTPResponse struct {
	Error   string         `json:"error"`
	Type    Type           `json:"type"`
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// New creates an unregistered error of the given type
func New(message string, errType Type) *Error {
	return &Error{
		Type:       errType,
		Code:       string(errType),
		Message:    message,
		HTTPStatus: StatusForType(errType),
	}
}

// Wrap attaches a message and type to err. Errors that already are *Error
// pass through untouched so domain codes survive service layers.
func Wrap(err error, message string, errType Type) *Error {
	if err == nil {
		return nil
	}
	var xe *Error
	if errors.As(err, &xe) {
		return xe
	}
	e := New(message, errType)
	e.cause = err
	return e
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *Error) Unwrap() error {
	return e.cause
}

// Is matches errors by code
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// WithDetail adds a single detail entry
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithDetails merges detail entries
func (e *Error) WithDetails(details map[string]any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any, len(details))
	}
	maps.Copy(e.Details, details)
	return e
}

// WithCause records the underlying error
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// ToHTTPResponse renders the client-facing body. Internal errors never leak
// their message, details or cause.
func (e *Error) ToHTTPResponse() HTTPResponse {
	if e.Type == TypeInternal {
		return HTTPResponse{
			Error:   "Internal Server Error",
			Type:    TypeInternal,
			Code:    e.Code,
			Message: internalMessage,
		}
	}
	return HTTPResponse{
		Error:   e.Message,
		Type:    e.Type,
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
	}
}

// StatusForType returns the default HTTP status for an error type
func StatusForType(t Type) int {
	switch t {
	case TypeValidation, TypeBusiness:
		return http.StatusBadRequest
	case TypeNotFound:
		return http.StatusNotFound
	case TypeConflict:
		return http.StatusConflict
	case TypeAuthorization:
		return http.StatusUnauthorized
	case TypeExternal:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// IsType reports whether err is an *Error of the given type
func IsType(err error, t Type) bool {
	var xe *Error
	return errors.As(err, &xe) && xe.Type == t
}

// IsCode reports whether err is an *Error carrying code
func IsCode(err error, code Code) bool {
	var xe *Error
	return errors.As(err, &xe) && xe.Code == string(code)
}
