package expr

import (
	"fmt"
	"reflect"

	"github.com/toyz/facet/pkg/facet"
)

// Env resolves the type names used by sig(...) and contract(...)
type Env struct {
	types map[string]reflect.Type
}

// NewEnv returns an environment knowing the predeclared Go types
func NewEnv() *Env {
	e := &Env{types: make(map[string]reflect.Type)}
	for _, t := range []reflect.Type{
		reflect.TypeFor[bool](),
		reflect.TypeFor[string](),
		reflect.TypeFor[int](), reflect.TypeFor[int8](), reflect.TypeFor[int16](), reflect.TypeFor[int32](), reflect.TypeFor[int64](),
		reflect.TypeFor[uint](), reflect.TypeFor[uint8](), reflect.TypeFor[uint16](), reflect.TypeFor[uint32](), reflect.TypeFor[uint64](), reflect.TypeFor[uintptr](),
		reflect.TypeFor[float32](), reflect.TypeFor[float64](),
		reflect.TypeFor[complex64](), reflect.TypeFor[complex128](),
		reflect.TypeFor[error](),
	} {
		e.types[t.String()] = t
	}
	e.types["byte"] = reflect.TypeFor[byte]()
	e.types["rune"] = reflect.TypeFor[rune]()
	e.types["any"] = reflect.TypeFor[any]()
	return e
}

// Define registers t under name
func (e *Env) Define(name string, t reflect.Type) *Env {
	e.types[name] = t
	return e
}

// DefineType registers T under its qualified name (pkg.Name) and its bare name
func DefineType[T any](e *Env) *Env {
	t := reflect.TypeFor[T]()
	e.types[t.String()] = t
	if t.Name() != "" {
		e.types[t.Name()] = t
	}
	return e
}

// WithContracts registers the contracts' interface types under their
// qualified type names and display names
func (e *Env) WithContracts(cs ...*facet.Contract) *Env {
	for _, c := range cs {
		if c == nil {
			continue
		}
		e.types[c.Type().String()] = c.Type()
		e.types[c.Name()] = c.Type()
	}
	return e
}

// Lookup returns the type registered under name
func (e *Env) Lookup(name string) (reflect.Type, bool) {
	t, ok := e.types[name]
	return t, ok
}

func (e *Env) resolve(t *typeRef) (reflect.Type, error) {
	switch {
	case t.Slice != nil:
		elem, err := e.resolve(t.Slice)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case t.Variadic != nil:
		elem, err := e.resolve(t.Variadic)
		if err != nil {
			return nil, err
		}
		return reflect.SliceOf(elem), nil
	case t.Pointer != nil:
		elem, err := e.resolve(t.Pointer)
		if err != nil {
			return nil, err
		}
		return reflect.PointerTo(elem), nil
	case t.Map != nil:
		key, err := e.resolve(t.Map.Key)
		if err != nil {
			return nil, err
		}
		if !key.Comparable() {
			return nil, fmt.Errorf("invalid map key type %s", key)
		}
		value, err := e.resolve(t.Map.Value)
		if err != nil {
			return nil, err
		}
		return reflect.MapOf(key, value), nil
	case t.Interface:
		return reflect.TypeFor[any](), nil
	}
	if rt, ok := e.types[t.Named]; ok {
		return rt, nil
	}
	return nil, fmt.Errorf("unknown type %q", t.Named)
}
