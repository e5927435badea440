package facet

import (
	"github.com/google/uuid"
)

// Handler implements one or more contract methods. The returned error is a
// non-fatal failure and reaches the caller wrapped in a
// *HandlerExecutionFailure; a panic is fatal and propagates untouched.
type Handler func(inv *Invocation) (any, error)

// Tuple carries the results of a method with more than one non-error result
type Tuple []any

// Invocation is the explicit context of one call through the dispatch surface.
// It is created per call and handed down the decorator chain to the handler.
type Invocation struct {
	ID     uuid.UUID
	Self   *Object
	Method Method
	Args   []any
	Parent *Invocation
}

// Call invokes another method on the same synthesized object, recording this
// invocation as its parent
func (inv *Invocation) Call(name string, args ...any) (any, error) {
	m, ok := inv.Self.Method(name)
	if !ok {
		return nil, newResolutionFailure(Method{name: name})
	}
	return inv.Self.dispatch(inv, m, args)
}

// Default invokes the declaring contract's default body for the current
// method directly, bypassing ordinary dispatch
func (inv *Invocation) Default() (any, error) {
	c, ok := inv.Self.desc.contract(inv.Method.contract)
	if !ok {
		return nil, newResolutionFailure(inv.Method)
	}
	body, ok := c.DefaultBody(inv.Method.name)
	if !ok {
		return nil, newResolutionFailure(inv.Method)
	}
	return body(inv)
}

// Depth returns the number of enclosing invocations
func (inv *Invocation) Depth() int {
	depth := 0
	for p := inv.Parent; p != nil; p = p.Parent {
		depth++
	}
	return depth
}

// Arg returns the i-th argument or nil when out of range
func (inv *Invocation) Arg(i int) any {
	if i < 0 || i >= len(inv.Args) {
		return nil
	}
	return inv.Args[i]
}

// HandlerEntry pairs a matcher with the handler it selects. Entries are
// compared by identity; their position in a descriptor is their priority.
type HandlerEntry struct {
	Matcher Matcher
	Handler Handler
	BuiltIn bool
}

// NewEntry creates a user handler entry
func NewEntry(m Matcher, h Handler) *HandlerEntry {
	return &HandlerEntry{Matcher: m, Handler: h}
}

func (e *HandlerEntry) String() string {
	if e.BuiltIn {
		return "builtin " + e.Matcher.String()
	}
	return e.Matcher.String()
}

// Returning adapts a constant into a Handler
func Returning(v any) Handler {
	return func(*Invocation) (any, error) { return v, nil }
}

// Failing adapts an error into a Handler
func Failing(err error) Handler {
	return func(*Invocation) (any, error) { return nil, err }
}
