package facet

import (
	"fmt"
	"reflect"
	"slices"
	"sync"
)

// Contract is an abstract method set a synthesized object agrees to implement.
// It wraps a Go interface type together with the optional behavior the
// contract itself supplies: default bodies, declarative markers and a typed
// adapter used by As.
//
// Contracts are immutable once created and are compared by identity.
type Contract struct {
	typ      reflect.Type
	name     string
	methods  []Method
	defaults map[string]Handler
	markers  map[string][]string
	adapter  func(*View) any
}

// ContractOption configures a Contract under construction
type ContractOption func(*Contract) error

// canonical holds the option-less contract for each interface type so that
// ContractOf[T]() returns the same *Contract on every call.
var canonical sync.Map // map[reflect.Type]*Contract

// ContractOf returns the contract for interface T. Without options the result
// is canonical per type. It panics if T is not an interface type or an
// option is invalid; use NewContract to receive the error instead.
func ContractOf[T any](opts ...ContractOption) *Contract {
	t := reflect.TypeFor[T]()
	if len(opts) == 0 {
		if c, ok := canonical.Load(t); ok {
			return c.(*Contract)
		}
	}
	c, err := NewContract(t, opts...)
	if err != nil {
		panic(err)
	}
	if len(opts) == 0 {
		actual, _ := canonical.LoadOrStore(t, c)
		return actual.(*Contract)
	}
	return c
}

// NewContract creates a contract for the interface type t
func NewContract(t reflect.Type, opts ...ContractOption) (*Contract, error) {
	if t == nil || t.Kind() != reflect.Interface {
		return nil, NewConfigurationError(fmt.Sprintf("facet: contract type %v is not an interface", t))
	}

	c := &Contract{
		typ:      t,
		name:     t.Name(),
		defaults: make(map[string]Handler),
		markers:  make(map[string][]string),
	}
	if c.name == "" {
		c.name = t.String()
	}

	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	c.methods = make([]Method, t.NumMethod())
	for i := range t.NumMethod() {
		rm := t.Method(i)
		c.methods[i] = Method{
			contract: t,
			name:     rm.Name,
			typ:      rm.Type,
			markers:  slices.Clone(c.markers[rm.Name]),
		}
	}
	return c, nil
}

func (c *Contract) requireMethod(name string) error {
	if _, ok := c.typ.MethodByName(name); !ok {
		return NewConfigurationError(fmt.Sprintf("facet: contract %s declares no method %q", c.typ, name))
	}
	return nil
}

// WithDefault registers a default body for the named method. The body is
// bound to the synthesized object at call time: calls it makes through
// inv.Self or inv.Call are dispatched like any other call.
func WithDefault(name string, body Handler) ContractOption {
	return func(c *Contract) error {
		if err := c.requireMethod(name); err != nil {
			return err
		}
		if body == nil {
			return NewConfigurationError(fmt.Sprintf("facet: default body for %s.%s is nil", c.typ, name))
		}
		c.defaults[name] = body
		return nil
	}
}

// WithMarkers attaches declarative markers to the named method
func WithMarkers(name string, markers ...string) ContractOption {
	return func(c *Contract) error {
		if err := c.requireMethod(name); err != nil {
			return err
		}
		for _, m := range markers {
			if !slices.Contains(c.markers[name], m) {
				c.markers[name] = append(c.markers[name], m)
			}
		}
		return nil
	}
}

// WithMarkerTable attaches markers for several methods at once, keyed by method name
func WithMarkerTable(table map[string][]string) ContractOption {
	return func(c *Contract) error {
		for name, markers := range table {
			if err := WithMarkers(name, markers...)(c); err != nil {
				return err
			}
		}
		return nil
	}
}

// WithName overrides the contract's display name
func WithName(name string) ContractOption {
	return func(c *Contract) error {
		c.name = name
		return nil
	}
}

// Adapter registers the constructor As uses to turn a View into a T. The
// constructor typically returns a small struct whose methods forward to
// View.Invoke.
func Adapter[T any](fn func(v *View) T) ContractOption {
	return func(c *Contract) error {
		if reflect.TypeFor[T]() != c.typ {
			return NewConfigurationError(fmt.Sprintf("facet: adapter for %v registered on contract %s", reflect.TypeFor[T](), c.typ))
		}
		c.adapter = func(v *View) any { return fn(v) }
		return nil
	}
}

// Type returns the contract's interface type
func (c *Contract) Type() reflect.Type {
	return c.typ
}

// Name returns the display name of the contract
func (c *Contract) Name() string {
	return c.name
}

// Methods returns the declared methods in declaration-sorted order
func (c *Contract) Methods() []Method {
	return slices.Clone(c.methods)
}

// Method returns the declared method with the given name
func (c *Contract) Method(name string) (Method, bool) {
	for _, m := range c.methods {
		if m.name == name {
			return m, true
		}
	}
	return Method{}, false
}

// Declares reports whether m is one of this contract's methods
func (c *Contract) Declares(m Method) bool {
	return m.contract == c.typ && c.typ != nil && slices.ContainsFunc(c.methods, m.Same)
}

// DefaultBody returns the default body the contract supplies for the named method
func (c *Contract) DefaultBody(name string) (Handler, bool) {
	h, ok := c.defaults[name]
	return h, ok
}

// HasDefault reports whether the contract supplies a default body for name
func (c *Contract) HasDefault(name string) bool {
	_, ok := c.defaults[name]
	return ok
}

// String returns the contract's type name
func (c *Contract) String() string {
	return c.typ.String()
}

// ContractProvider is implemented by fallback objects that report the
// contracts they fulfil, for MergeFallbackContracts.
type ContractProvider interface {
	FacetContracts() []*Contract
}
