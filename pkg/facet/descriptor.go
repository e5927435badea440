package facet

import (
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Descriptor is the configuration driving one synthesized object's dispatch.
// It is assembled by a Builder, run through the preprocessing and validation
// pipeline and finalized exactly once; after that it is read-only and may be
// shared by any number of objects and goroutines.
type Descriptor struct {
	contracts        []*Contract
	entries          []*HandlerEntry
	fallback         any
	decorator        Decorator
	decorateBuiltIns bool
	finalized        bool
}

// Placeholder is the type of DefaultFallback
type Placeholder struct {
	_ byte
}

// String returns a fixed label
func (*Placeholder) String() string { return "facet.DefaultFallback" }

// DefaultFallback is the fallback used when none is specified. It implements
// no contract methods.
var DefaultFallback = &Placeholder{}

// Contracts returns the implemented contracts in order
func (d *Descriptor) Contracts() []*Contract {
	return slices.Clone(d.contracts)
}

// ContractTypes returns the interface types of the implemented contracts
func (d *Descriptor) ContractTypes() []reflect.Type {
	types := make([]reflect.Type, len(d.contracts))
	for i, c := range d.contracts {
		types[i] = c.typ
	}
	return types
}

// Entries returns every handler entry in priority order, built-ins last
func (d *Descriptor) Entries() []*HandlerEntry {
	return slices.Clone(d.entries)
}

// UserEntries returns the entries that are not built-in, in priority order
func (d *Descriptor) UserEntries() []*HandlerEntry {
	var user []*HandlerEntry
	for _, e := range d.entries {
		if !e.BuiltIn {
			user = append(user, e)
		}
	}
	return user
}

// Fallback returns the fallback object
func (d *Descriptor) Fallback() any {
	return d.fallback
}

// Decorator returns the configured decorator
func (d *Descriptor) Decorator() Decorator {
	return orIdentity(d.decorator)
}

// DecoratesBuiltIns reports whether reserved methods are decorated too
func (d *Descriptor) DecoratesBuiltIns() bool {
	return d.decorateBuiltIns
}

// Finalized reports whether the descriptor has been finalized
func (d *Descriptor) Finalized() bool {
	return d.finalized
}

// Implements reports whether the contract type t is registered
func (d *Descriptor) Implements(t reflect.Type) bool {
	_, ok := d.contract(t)
	return ok
}

// Contract returns the registered contract for t
func (d *Descriptor) Contract(t reflect.Type) (*Contract, bool) {
	return d.contract(t)
}

func (d *Descriptor) contract(t reflect.Type) (*Contract, bool) {
	for _, c := range d.contracts {
		if c.typ == t {
			return c, true
		}
	}
	return nil, false
}

// Equal compares descriptors structurally: same contracts in the same order,
// same user entries in the same order (built-ins are ignored), same fallback
// reference and an equal decorator.
func (d *Descriptor) Equal(o *Descriptor) bool {
	if d == o {
		return true
	}
	if d == nil || o == nil {
		return false
	}
	if !slices.Equal(d.contracts, o.contracts) {
		return false
	}
	if !slices.Equal(d.UserEntries(), o.UserEntries()) {
		return false
	}
	if !sameReference(d.fallback, o.fallback) {
		return false
	}
	if d.decorateBuiltIns != o.decorateBuiltIns {
		return false
	}
	return decoratorsEqual(d.decorator, o.decorator)
}

// String renders the descriptor for diagnostics
func (d *Descriptor) String() string {
	contracts := make([]string, len(d.contracts))
	for i, c := range d.contracts {
		contracts[i] = c.String()
	}
	entries := make([]string, len(d.entries))
	for i, e := range d.entries {
		entries[i] = e.String()
	}
	return fmt.Sprintf("{contracts=[%s] entries=[%s] fallback=%s decorator=%s}",
		strings.Join(contracts, ", "),
		strings.Join(entries, ", "),
		fallbackName(d.fallback),
		decoratorName(d.Decorator()),
	)
}

func fallbackName(v any) string {
	if v == DefaultFallback {
		return DefaultFallback.String()
	}
	return fmt.Sprintf("%T", v)
}

func (d *Descriptor) declares(m Method) bool {
	c, ok := d.contract(m.contract)
	return ok && c.Declares(m)
}

// methods returns every declared method in contract order
func (d *Descriptor) methods() []Method {
	var all []Method
	for _, c := range d.contracts {
		all = append(all, c.methods...)
	}
	return all
}

// snapshot captures the parts validators are not allowed to change. Entry
// handlers compare by code pointer, so swapping in another closure of the
// same function literal goes unnoticed.
type snapshot struct {
	contracts []*Contract
	entries   []*HandlerEntry
	states    []HandlerEntry
	fallback  any
}

func (d *Descriptor) snapshot() snapshot {
	states := make([]HandlerEntry, len(d.entries))
	for i, e := range d.entries {
		states[i] = *e
	}
	return snapshot{
		contracts: slices.Clone(d.contracts),
		entries:   slices.Clone(d.entries),
		states:    states,
		fallback:  d.fallback,
	}
}

func (s snapshot) matches(d *Descriptor) bool {
	if !slices.Equal(s.contracts, d.contracts) ||
		!slices.Equal(s.entries, d.entries) ||
		!sameReference(s.fallback, d.fallback) {
		return false
	}
	for i, e := range d.entries {
		was := s.states[i]
		if e.BuiltIn != was.BuiltIn ||
			!sameMatcher(was.Matcher, e.Matcher) ||
			!sameReference(was.Handler, e.Handler) {
			return false
		}
	}
	return true
}
