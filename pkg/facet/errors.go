package facet

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"
)

// Error is implemented by every error facet returns
type Error interface {
	error
	ErrorCode() ErrorCode
	Context() map[string]interface{}
	Suggestions() []string
	Unwrap() error
}

// ErrorCode represents the kind of failure that occurred
type ErrorCode int

const (
	UnknownErrorCode ErrorCode = iota

	// Synthesis-time failures
	ConfigurationErrorCode
	LifecycleErrorCode

	// Dispatch-time failures
	ResolutionErrorCode
	CastErrorCode
	HandlerExecutionErrorCode
	ArgumentErrorCode
)

// String returns the string representation of the error code
func (e ErrorCode) String() string {
	switch e {
	case ConfigurationErrorCode:
		return "ConfigurationError"
	case LifecycleErrorCode:
		return "LifecycleError"
	case ResolutionErrorCode:
		return "ResolutionFailure"
	case CastErrorCode:
		return "CastFailure"
	case HandlerExecutionErrorCode:
		return "HandlerExecutionFailure"
	case ArgumentErrorCode:
		return "ArgumentError"
	default:
		return "UnknownError"
	}
}

// BaseError provides a common implementation of the Error interface
type BaseError struct {
	Code        ErrorCode              // kind of failure
	Message     string                 // error message
	Cause       error                  // underlying error cause
	ContextData map[string]interface{} // additional context information
	Hints       []string               // suggestions for fixing the error

	kind *BaseError // sentinel this error is an instance of
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Cause == nil {
		return e.Message
	}
	return fmt.Sprintf("%s: %v", e.Message, e.Cause)
}

// ErrorCode returns the error code
func (e *BaseError) ErrorCode() ErrorCode {
	return e.Code
}

// Context returns the error context data
func (e *BaseError) Context() map[string]interface{} {
	if e.ContextData == nil {
		return make(map[string]interface{})
	}
	return e.ContextData
}

// Suggestions returns suggestions for fixing the error
func (e *BaseError) Suggestions() []string {
	return e.Hints
}

// Is reports whether target is the sentinel e was created from
func (e *BaseError) Is(target error) bool {
	t, ok := target.(*BaseError)
	return ok && e.kind != nil && e.kind == t
}

// Unwrap returns the underlying error cause for error chain inspection
func (e *BaseError) Unwrap() error {
	return e.Cause
}

// WithCause adds an underlying error cause
func (e *BaseError) WithCause(cause error) *BaseError {
	e.Cause = cause
	return e
}

// WithContext adds context data to the error
func (e *BaseError) WithContext(key string, value interface{}) *BaseError {
	if e.ContextData == nil {
		e.ContextData = make(map[string]interface{})
	}
	e.ContextData[key] = value
	return e
}

// WithSuggestion adds a suggestion for fixing the error
func (e *BaseError) WithSuggestion(suggestion string) *BaseError {
	e.Hints = append(e.Hints, suggestion)
	return e
}

// NewError creates a new BaseError with the specified code and message
func NewError(code ErrorCode, message string) *BaseError {
	return &BaseError{
		Code:    code,
		Message: message,
		Hints:   make([]string, 0),
	}
}

// Errorf creates a new BaseError with formatted message
func Errorf(code ErrorCode, format string, args ...interface{}) *BaseError {
	return NewError(code, fmt.Sprintf(format, args...))
}

// Sentinels are comparison targets for errors.Is. They are never returned
// themselves: every failure is a fresh instance, so decorating one with
// context or suggestions leaves the sentinel untouched.
var (
	// ErrAlreadyFinalized matches errors from finalizing a builder or descriptor twice.
	ErrAlreadyFinalized = NewError(LifecycleErrorCode, "facet: descriptor already finalized")
	// ErrNotFinalized matches errors from using a draft descriptor where a finalized one is required.
	ErrNotFinalized = NewError(LifecycleErrorCode, "facet: descriptor is not finalized")
)

// instance returns a fresh error matching the sentinel e
func (e *BaseError) instance() *BaseError {
	return &BaseError{
		Code:    e.Code,
		Message: e.Message,
		Hints:   make([]string, 0),
		kind:    e,
	}
}

// Violation describes one offending piece of configuration
type Violation struct {
	Entry    *HandlerEntry // offending entry, nil for contract violations
	Index    int           // position of the entry in the descriptor
	Contract reflect.Type  // offending contract, nil for entry violations
	Shadowed []Signature   // reserved signatures the entry would shadow
	Reason   string
}

func (v Violation) String() string {
	switch {
	case v.Entry != nil && len(v.Shadowed) > 0:
		sigs := make([]string, len(v.Shadowed))
		for i, s := range v.Shadowed {
			sigs[i] = s.String()
		}
		return fmt.Sprintf("entry #%d (%s) would shadow reserved %s", v.Index, v.Entry.Matcher, strings.Join(sigs, ", "))
	case v.Contract != nil:
		return fmt.Sprintf("contract %s: %s", v.Contract, v.Reason)
	default:
		return v.Reason
	}
}

// ConfigurationError is raised by validation, never at dispatch
type ConfigurationError struct {
	*BaseError
	Violations []Violation
}

// NewConfigurationError creates a configuration error listing every violation
func NewConfigurationError(message string, violations ...Violation) *ConfigurationError {
	if len(violations) > 0 {
		lines := make([]string, len(violations))
		for i, v := range violations {
			lines[i] = "  - " + v.String()
		}
		message = message + ":\n" + strings.Join(lines, "\n")
	}
	return &ConfigurationError{
		BaseError:  NewError(ConfigurationErrorCode, message),
		Violations: violations,
	}
}

// ResolutionFailure reports that no handler source could serve a method
type ResolutionFailure struct {
	*BaseError
	Method Method
}

func newResolutionFailure(m Method) *ResolutionFailure {
	err := &ResolutionFailure{
		BaseError: Errorf(ResolutionErrorCode, "facet: no handler found for %s", m),
		Method:    m,
	}
	err.WithContext("signature", m.Signature().String())
	err.WithSuggestion("register a handler for the method, add a default body to the contract or use a fallback that implements it")
	return err
}

// CastFailure reports a cast to a contract the object does not implement
type CastFailure struct {
	*BaseError
	Requested reflect.Type
	Available []reflect.Type
}

func newCastFailure(requested reflect.Type, available []reflect.Type) *CastFailure {
	names := make([]string, len(available))
	for i, t := range available {
		names[i] = t.String()
	}
	return &CastFailure{
		BaseError: Errorf(CastErrorCode, "facet: cannot cast to %v, available contracts: [%s]", requested, strings.Join(names, ", ")),
		Requested: requested,
		Available: available,
	}
}

// HandlerExecutionFailure wraps an error returned by a handler
type HandlerExecutionFailure struct {
	*BaseError
	Method       Method
	InvocationID uuid.UUID
}

func newHandlerExecutionFailure(inv *Invocation, cause error) *HandlerExecutionFailure {
	err := &HandlerExecutionFailure{
		BaseError:    Errorf(HandlerExecutionErrorCode, "facet: handler for %s failed", inv.Method),
		Method:       inv.Method,
		InvocationID: inv.ID,
	}
	err.WithCause(cause)
	return err
}

// ArgumentError reports arguments that do not fit the invoked method
type ArgumentError struct {
	*BaseError
	Method Method
	Index  int // -1 for arity mismatches
}

func newArgumentError(m Method, index int, format string, args ...interface{}) *ArgumentError {
	return &ArgumentError{
		BaseError: Errorf(ArgumentErrorCode, "facet: %s: %s", m, fmt.Sprintf(format, args...)),
		Method:    m,
		Index:     index,
	}
}

// MultipleErrors represents multiple errors collected together
type MultipleErrors struct {
	Errors []error
}

// Error implements the error interface
func (e *MultipleErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var messages []string
	for i, err := range e.Errors {
		messages = append(messages, fmt.Sprintf("  %d. %s", i+1, err.Error()))
	}
	return fmt.Sprintf("multiple errors (%d total):\n%s", len(e.Errors), strings.Join(messages, "\n"))
}

// Unwrap exposes every collected error to errors.Is and errors.As
func (e *MultipleErrors) Unwrap() []error {
	return e.Errors
}

// Add adds an error to the collection
func (e *MultipleErrors) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

// ErrorOrNil returns nil for an empty collection and the sole error for a single one
func (e *MultipleErrors) ErrorOrNil() error {
	switch len(e.Errors) {
	case 0:
		return nil
	case 1:
		return e.Errors[0]
	default:
		return e
	}
}

// CodeOf returns the ErrorCode carried by err or any error it wraps
func CodeOf(err error) ErrorCode {
	var fe Error
	if errors.As(err, &fe) {
		return fe.ErrorCode()
	}
	return UnknownErrorCode
}
