package errx

import (
	"fmt"
	"net/http"
)

// Type classifies errors for propagation and HTTP mapping.
type Type string

const (
	TypeValidation    Type = "VALIDATION"
	TypeNotFound      Type = "NOT_FOUND"
	TypeConflict      Type = "CONFLICT"
	TypeBusiness      Type = "BUSINESS"
	TypeAuthorization Type = "AUTHORIZATION"
	TypeInternal      Type = "INTERNAL"
	TypeExternal      Type = "EXTERNAL"
)

// Code identifies a registered error, namespaced by registry prefix.
type Code string

type definition struct {
	errType    Type
	httpStatus int
	message    string
}

// Registry holds error definitions for one domain.
type Registry struct {
	prefix      string
	definitions map[Code]definition
}

// NewRegistry creates a registry whose codes are prefixed with the given
// domain name, e.g. "APPLICATION".
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix:      prefix,
		definitions: make(map[Code]definition),
	}
}

// Register declares an error code with its type, HTTP status and default
// message, and returns the namespaced code.
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "." + code)
	r.definitions[full] = definition{
		errType:    errType,
		httpStatus: httpStatus,
		message:    message,
	}
	return full
}

// New instantiates a registered error.
func (r *Registry) New(code Code) *Error {
	def, ok := r.definitions[code]
	if !ok {
		return &Error{
			Type:       TypeInternal,
			Code:       code,
			Message:    "unregistered error code",
			HTTPStatus: http.StatusInternalServerError,
		}
	}
	return &Error{
		Type:       def.errType,
		Code:       code,
		Message:    def.message,
		HTTPStatus: def.httpStatus,
	}
}

// Error is the structured error carried across layers.
type Error struct {
	Type       Type           `json:"type"`
	Code       Code           `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	cause      error
}

func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap exposes the cause for errors.Is/As chains.
func (e *Error) Unwrap() error { return e.cause }

// WithDetail attaches a key/value pair for the caller; returns the error
// for chaining.
func (e *Error) WithDetail(key string, value any) *Error {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// WithCause records the underlying error.
func (e *Error) WithCause(err error) *Error {
	e.cause = err
	return e
}

// ToHTTPResponse renders the JSON body for the global error handler.
func (e *Error) ToHTTPResponse() map[string]any {
	resp := map[string]any{
		"type":    e.Type,
		"code":    e.Code,
		"message": e.Message,
	}
	if len(e.Details) > 0 {
		resp["details"] = e.Details
	}
	return resp
}

// Wrap converts an arbitrary error into a typed Error. Used at layer
// boundaries where no registered code applies.
func Wrap(err error, message string, errType Type) *Error {
	status := http.StatusInternalServerError
	switch errType {
	case TypeValidation:
		status = http.StatusBadRequest
	case TypeNotFound:
		status = http.StatusNotFound
	case TypeConflict:
		status = http.StatusConflict
	case TypeAuthorization:
		status = http.StatusForbidden
	case TypeExternal:
		status = http.StatusBadGateway
	}
	return &Error{
		Type:       errType,
		Code:       Code(string(errType)),
		Message:    message,
		HTTPStatus: status,
		cause:      err,
	}
}

// HasCode reports whether err is an *Error with the given code.
func HasCode(err error, code Code) bool {
	e, ok := err.(*Error)
	return ok && e.Code == code
}

// IsType reports whether err is an *Error of the given type.
func IsType(err error, t Type) bool {
	e, ok := err.(*Error)
	return ok && e.Type == t
}
