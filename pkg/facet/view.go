package facet

import (
	"fmt"
	"reflect"
)

// View is a synthesized object seen through one of its contracts
type View struct {
	obj      *Object
	contract *Contract
}

// Object returns the underlying synthesized object
func (v *View) Object() *Object {
	return v.obj
}

// Contract returns the contract the view is restricted to
func (v *View) Contract() *Contract {
	return v.contract
}

// Invoke calls a method declared by the view's contract
func (v *View) Invoke(name string, args ...any) (any, error) {
	m, ok := v.contract.Method(name)
	if !ok {
		return nil, newResolutionFailure(Method{contract: v.contract.typ, name: name})
	}
	return v.obj.dispatch(nil, m, args)
}

// Func returns a typed function bound to the named method of the view's
// contract. F must be the method's func type. If the method declares a
// trailing error result, dispatch failures are returned through it;
// otherwise they panic.
func Func[F any](v *View, name string) (F, error) {
	var zero F
	ft := reflect.TypeFor[F]()
	m, ok := v.contract.Method(name)
	if !ok {
		return zero, newResolutionFailure(Method{contract: v.contract.typ, name: name})
	}
	if ft != m.typ {
		return zero, Errorf(CastErrorCode, "facet: %s has type %s, not %s", m, m.typ, ft)
	}

	fn := reflect.MakeFunc(ft, func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, a := range in {
			args[i] = a.Interface()
		}
		res, err := v.obj.dispatch(nil, m, args)
		return packResults(ft, m, res, err)
	})
	return fn.Interface().(F), nil
}

// MustFunc is like Func but panics on error
func MustFunc[F any](v *View, name string) F {
	fn, err := Func[F](v, name)
	if err != nil {
		panic(err)
	}
	return fn
}

// As returns the object as a T using the adapter registered on T's contract.
// Asking for Synthesized returns the object itself.
func As[T any](o *Object) (T, error) {
	var zero T
	t := reflect.TypeFor[T]()
	if t == SynthesizedContract.typ {
		return any(o).(T), nil
	}
	view, err := o.CastTo(t)
	if err != nil {
		return zero, err
	}
	if view.contract.adapter == nil {
		err := newCastFailure(t, o.desc.ContractTypes())
		err.Message = fmt.Sprintf("facet: contract %s has no adapter; register one with facet.Adapter", t)
		return zero, err
	}
	out, ok := view.contract.adapter(view).(T)
	if !ok {
		return zero, newCastFailure(t, o.desc.ContractTypes())
	}
	return out, nil
}

// packResults converts a handler result back into reflective results for ft
func packResults(ft reflect.Type, m Method, res any, err error) []reflect.Value {
	n := ft.NumOut()
	hasErr := n > 0 && ft.Out(n-1) == errorType
	if err != nil && !hasErr {
		panic(err)
	}

	values := 0
	if hasErr {
		values = n - 1
	}
	out := make([]reflect.Value, n)
	for i := range values {
		out[i] = reflect.Zero(ft.Out(i))
	}

	if err == nil {
		switch {
		case values == 1:
			out[0] = resultValue(m, ft.Out(0), res)
		case values > 1:
			tuple, ok := res.(Tuple)
			if !ok || len(tuple) != values {
				panic(Errorf(HandlerExecutionErrorCode, "facet: %s must return a Tuple of %d values, got %T", m, values, res))
			}
			for i, r := range tuple {
				out[i] = resultValue(m, ft.Out(i), r)
			}
		}
	}

	if hasErr {
		ev := reflect.Zero(errorType)
		if err != nil {
			ev = reflect.ValueOf(&err).Elem()
		}
		out[n-1] = ev
	}
	return out
}

func resultValue(m Method, t reflect.Type, v any) reflect.Value {
	if v == nil {
		return reflect.Zero(t)
	}
	rv := reflect.ValueOf(v)
	if rv.Type().AssignableTo(t) {
		if rv.Type() != t {
			converted := reflect.New(t).Elem()
			converted.Set(rv)
			return converted
		}
		return rv
	}
	if numeric(rv.Kind()) && numeric(t.Kind()) {
		if cv, ok := convertNumeric(rv, t); ok {
			return cv
		}
		panic(Errorf(HandlerExecutionErrorCode, "facet: %s returned %v, which does not fit in %s", m, v, t))
	}
	panic(Errorf(HandlerExecutionErrorCode, "facet: %s returned %s, not assignable to %s", m, rv.Type(), t))
}
