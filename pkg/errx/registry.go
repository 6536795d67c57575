package errx

import (
	"fmt"
	"sync"
)

// Code identifies a registered error, prefixed by its registry name
type Code string

type definition struct {
	errType    Type
	httpStatus int
	message    string
}

// Registry holds the error catalogue of one aggregate
type Registry struct {
	prefix string
	mu     sync.RWMutex
	defs   map[Code]definition
}

// NewRegistry creates a registry whose codes are prefixed with prefix
func NewRegistry(prefix string) *Registry {
	return &Registry{
		prefix: prefix,
		defs:   make(map[Code]definition),
	}
}

// Register adds an error definition. Registering the same code twice panics.
func (r *Registry) Register(code string, errType Type, httpStatus int, message string) Code {
	full := Code(r.prefix + "_" + code)

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.defs[full]; exists {
		panic(fmt.Sprintf("errx: code %s already registered", full))
	}
	r.defs[full] = definition{errType: errType, httpStatus: httpStatus, message: message}
	return full
}

// New builds a fresh error for a registered code
func (r *Registry) New(code Code) *Error {
	r.mu.RLock()
	def, ok := r.defs[code]
	r.mu.RUnlock()
	if !ok {
		return New(fmt.Sprintf("unregistered error code %s", code), TypeInternal)
	}
	return &Error{
		Type:       def.errType,
		Code:       string(code),
		Message:    def.message,
		HTTPStatus: def.httpStatus,
	}
}

// NewWithCause builds a registered error wrapping cause
func (r *Registry) NewWithCause(code Code, cause error) *Error {
	return r.New(code).WithCause(cause)
}

// Codes lists the registered codes
func (r *Registry) Codes() []Code {
	r.mu.RLock()
	defer r.mu.RUnlock()
	codes := make([]Code, 0, len(r.defs))
	for c := range r.defs {
		codes = append(codes, c)
	}
	return codes
}
