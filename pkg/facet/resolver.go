package facet

import (
	"fmt"
	"reflect"
)

// Source names where a resolved handler came from
type Source int

const (
	SourceNone Source = iota
	SourceEntry
	SourceBuiltIn
	SourceDefault
	SourceFallback
)

func (s Source) String() string {
	switch s {
	case SourceEntry:
		return "entry"
	case SourceBuiltIn:
		return "builtin"
	case SourceDefault:
		return "default"
	case SourceFallback:
		return "fallback"
	default:
		return "none"
	}
}

// Resolution is the outcome of resolving one method
type Resolution struct {
	Method  Method
	Handler Handler
	Source  Source
	Entry   *HandlerEntry // set for SourceEntry and SourceBuiltIn
}

// Resolver picks exactly one handler per method. It is pure given its
// descriptor and safe for concurrent use.
type Resolver struct {
	d *Descriptor
}

// NewResolver creates a resolver over a finalized descriptor
func NewResolver(d *Descriptor) (*Resolver, error) {
	if d == nil || !d.finalized {
		return nil, ErrNotFinalized.instance()
	}
	return &Resolver{d: d}, nil
}

// Resolve applies, in order: the first matching entry, the declaring
// contract's default body, a compatible method on the fallback object. When
// none applies it returns a *ResolutionFailure.
func (r *Resolver) Resolve(m Method) (Resolution, error) {
	for _, e := range r.d.entries {
		if e.Matcher.Matches(m) {
			src := SourceEntry
			if e.BuiltIn {
				src = SourceBuiltIn
			}
			return Resolution{Method: m, Handler: e.Handler, Source: src, Entry: e}, nil
		}
	}

	if c, ok := r.d.contract(m.contract); ok {
		if body, ok := c.DefaultBody(m.name); ok {
			return Resolution{Method: m, Handler: body, Source: SourceDefault}, nil
		}
	}

	if h, ok := fallbackHandler(r.d.fallback, m); ok {
		return Resolution{Method: m, Handler: h, Source: SourceFallback}, nil
	}

	return Resolution{Method: m}, newResolutionFailure(m)
}

var errorType = reflect.TypeFor[error]()

// fallbackHandler returns a handler calling the fallback's method compatible
// with m, if any
func fallbackHandler(fallback any, m Method) (Handler, bool) {
	if fallback == nil || m.typ == nil {
		return nil, false
	}
	fv := reflect.ValueOf(fallback)
	rm, ok := fv.Type().MethodByName(m.name)
	if !ok {
		return nil, false
	}
	bound := fv.Method(rm.Index)
	if !compatible(m.typ, bound.Type()) {
		return nil, false
	}

	return func(inv *Invocation) (any, error) {
		in, err := argumentValues(inv.Method, bound.Type(), inv.Args)
		if err != nil {
			return nil, err
		}
		var out []reflect.Value
		if bound.Type().IsVariadic() {
			out = bound.CallSlice(in)
		} else {
			out = bound.Call(in)
		}
		return unpackResults(out, bound.Type())
	}, true
}

// compatible reports whether a method of type impl can serve calls declared
// with type decl: same arity and variadic-ness, every declared parameter
// assignable to the implementation's, every implementation result assignable
// to the declared one
func compatible(decl, impl reflect.Type) bool {
	if decl.NumIn() != impl.NumIn() || decl.NumOut() != impl.NumOut() {
		return false
	}
	if decl.IsVariadic() != impl.IsVariadic() {
		return false
	}
	for i := range decl.NumIn() {
		if !decl.In(i).AssignableTo(impl.In(i)) {
			return false
		}
	}
	for i := range decl.NumOut() {
		if !impl.Out(i).AssignableTo(decl.Out(i)) {
			return false
		}
	}
	return true
}

// argumentValues converts call arguments for a reflective call on ft
func argumentValues(m Method, ft reflect.Type, args []any) ([]reflect.Value, error) {
	if len(args) != ft.NumIn() {
		return nil, newArgumentError(m, -1, "expected %d arguments, got %d", ft.NumIn(), len(args))
	}
	in := make([]reflect.Value, len(args))
	for i, a := range args {
		pt := ft.In(i)
		if a == nil {
			in[i] = reflect.Zero(pt)
			continue
		}
		v := reflect.ValueOf(a)
		if !v.Type().AssignableTo(pt) {
			return nil, newArgumentError(m, i, "argument %d: %s is not assignable to %s", i, v.Type(), pt)
		}
		in[i] = v
	}
	return in, nil
}

// unpackResults maps reflective results onto the handler return convention:
// a trailing error becomes the error, no value yields nil, one value is
// returned as-is and several are packed into a Tuple
func unpackResults(out []reflect.Value, ft reflect.Type) (any, error) {
	var err error
	if n := len(out); n > 0 && ft.Out(n-1) == errorType {
		if e := out[n-1]; !e.IsNil() {
			err = e.Interface().(error)
		}
		out = out[:n-1]
	}
	switch len(out) {
	case 0:
		return nil, err
	case 1:
		return out[0].Interface(), err
	default:
		t := make(Tuple, len(out))
		for i, v := range out {
			t[i] = v.Interface()
		}
		return t, err
	}
}

func (r Resolution) String() string {
	if r.Entry != nil {
		return fmt.Sprintf("%s -> %s %s", r.Method, r.Source, r.Entry.Matcher)
	}
	return fmt.Sprintf("%s -> %s", r.Method, r.Source)
}
