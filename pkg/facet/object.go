package facet

import (
	"log/slog"
	"math"
	"math/big"
	"reflect"

	"github.com/google/uuid"
)

// Object is a synthesized object: a dispatch record pairing a finalized
// descriptor with a resolver and a private handler cache. Every call is routed
// through Invoke (or a View, typed Func or adapter built on it).
//
// An Object is safe for concurrent use as long as its handlers are.
type Object struct {
	id       uuid.UUID
	desc     *Descriptor
	resolver *Resolver
	cache    *handlerCache
	byName   map[string]Method
	logger   *slog.Logger
}

var _ Synthesized = (*Object)(nil)

// ObjectOption configures an Object
type ObjectOption func(*Object)

// WithLogger sets the logger used for dispatch diagnostics
func WithLogger(l *slog.Logger) ObjectOption {
	return func(o *Object) {
		if l != nil {
			o.logger = l
		}
	}
}

// New synthesizes an object over a finalized descriptor. Objects built from
// the same descriptor share it but keep separate caches.
func New(d *Descriptor, opts ...ObjectOption) (*Object, error) {
	r, err := NewResolver(d)
	if err != nil {
		return nil, err
	}

	o := &Object{
		id:       uuid.New(),
		desc:     d,
		resolver: r,
		cache:    newHandlerCache(),
		byName:   make(map[string]Method),
		logger:   discardLogger,
	}
	for _, opt := range opts {
		opt(o)
	}
	for _, m := range d.methods() {
		if _, taken := o.byName[m.name]; !taken {
			o.byName[m.name] = m
		}
	}
	return o, nil
}

// ID returns the object's unique identifier
func (o *Object) ID() uuid.UUID {
	return o.id
}

// Method returns the method named name from the first contract declaring it
func (o *Object) Method(name string) (Method, bool) {
	m, ok := o.byName[name]
	return m, ok
}

// Methods returns every declared method in contract order
func (o *Object) Methods() []Method {
	return o.desc.methods()
}

// Invoke calls the named method. Arguments map one-to-one onto parameters; a
// variadic parameter takes a slice.
func (o *Object) Invoke(name string, args ...any) (any, error) {
	m, ok := o.byName[name]
	if !ok {
		return nil, newResolutionFailure(Method{name: name})
	}
	return o.dispatch(nil, m, args)
}

// InvokeMethod calls a specific method identity
func (o *Object) InvokeMethod(m Method, args ...any) (any, error) {
	if !o.desc.declares(m) {
		return nil, newResolutionFailure(m)
	}
	return o.dispatch(nil, m, args)
}

// Resolve reports how a method would be resolved, bypassing the cache and
// the decorator
func (o *Object) Resolve(name string) (Resolution, error) {
	m, ok := o.byName[name]
	if !ok {
		return Resolution{}, newResolutionFailure(Method{name: name})
	}
	return o.resolver.Resolve(m)
}

// CachedMethods returns the number of methods whose handler is cached
func (o *Object) CachedMethods() int {
	return o.cache.Size()
}

// CastTo returns a view of the object restricted to contract t
func (o *Object) CastTo(t reflect.Type) (*View, error) {
	c, ok := o.desc.contract(t)
	if !ok {
		return nil, newCastFailure(t, o.desc.ContractTypes())
	}
	return &View{obj: o, contract: c}, nil
}

func (o *Object) dispatch(parent *Invocation, m Method, args []any) (any, error) {
	args, err := normalizeArgs(m, args)
	if err != nil {
		return nil, err
	}

	inv := &Invocation{
		ID:     uuid.New(),
		Self:   o,
		Method: m,
		Args:   args,
		Parent: parent,
	}

	h, err := o.cache.GetOrCompute(m.key(), func() (Handler, error) {
		res, err := o.resolver.Resolve(m)
		if err != nil {
			return nil, err
		}
		o.logger.Debug("facet: resolved", "object", o.id, "method", m.String(), "source", res.Source.String())
		return o.decorator().Decorate(m, res.Handler), nil
	})
	if err != nil {
		return nil, err
	}

	out, err := h(inv)
	if err != nil {
		return out, newHandlerExecutionFailure(inv, err)
	}
	return out, nil
}

func (o *Object) decorator() Decorator {
	d := o.desc.Decorator()
	if o.desc.decorateBuiltIns {
		return d
	}
	return Filter(NonReserved(), d)
}

// normalizeArgs checks arity and assignability, converting numeric
// arguments to the declared parameter type when the value survives
func normalizeArgs(m Method, args []any) ([]any, error) {
	ft := m.typ
	if ft == nil {
		return args, nil
	}
	if len(args) != ft.NumIn() {
		return nil, newArgumentError(m, -1, "expected %d arguments, got %d", ft.NumIn(), len(args))
	}

	var out []any
	for i, a := range args {
		pt := ft.In(i)
		if a == nil {
			if !nillable(pt.Kind()) {
				return nil, newArgumentError(m, i, "argument %d: nil is not a valid %s", i, pt)
			}
			continue
		}
		at := reflect.TypeOf(a)
		if at.AssignableTo(pt) {
			continue
		}
		if !numeric(at.Kind()) || !numeric(pt.Kind()) {
			return nil, newArgumentError(m, i, "argument %d: %s is not assignable to %s", i, at, pt)
		}
		if out == nil {
			out = append([]any(nil), args...)
		}
		cv, ok := convertNumeric(reflect.ValueOf(a), pt)
		if !ok {
			return nil, newArgumentError(m, i, "argument %d: %v does not fit in %s", i, a, pt)
		}
		out[i] = cv.Interface()
	}
	if out != nil {
		return out, nil
	}
	return args, nil
}

func nillable(k reflect.Kind) bool {
	switch k {
	case reflect.Interface, reflect.Pointer, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.UnsafePointer:
		return true
	}
	return false
}

func numeric(k reflect.Kind) bool {
	return k >= reflect.Int && k <= reflect.Float64
}

// convertNumeric converts v to the numeric type t, reporting false when the
// value would be truncated, wrap around or overflow. Float to float
// conversions only have to stay in range.
func convertNumeric(v reflect.Value, t reflect.Type) (reflect.Value, bool) {
	target := reflect.Zero(t)
	var ok bool
	switch {
	case v.CanInt():
		x := v.Int()
		switch {
		case target.CanInt():
			ok = !target.OverflowInt(x)
		case target.CanUint():
			ok = x >= 0 && !target.OverflowUint(uint64(x))
		default:
			ok = exactFloat(new(big.Float).SetInt64(x), t)
		}
	case v.CanUint():
		x := v.Uint()
		switch {
		case target.CanInt():
			ok = x <= math.MaxInt64 && !target.OverflowInt(int64(x))
		case target.CanUint():
			ok = !target.OverflowUint(x)
		default:
			ok = exactFloat(new(big.Float).SetUint64(x), t)
		}
	case v.CanFloat():
		f := v.Float()
		switch {
		case target.CanFloat():
			ok = math.IsNaN(f) || math.IsInf(f, 0) || !target.OverflowFloat(f)
		case math.IsNaN(f) || math.IsInf(f, 0):
			ok = false
		case target.CanInt():
			i, acc := big.NewFloat(f).Int64()
			ok = acc == big.Exact && !target.OverflowInt(i)
		default:
			u, acc := big.NewFloat(f).Uint64()
			ok = acc == big.Exact && !target.OverflowUint(u)
		}
	}
	if !ok {
		return reflect.Value{}, false
	}
	return v.Convert(t), true
}

// exactFloat reports whether x is representable in the float type t
func exactFloat(x *big.Float, t reflect.Type) bool {
	if t.Kind() == reflect.Float32 {
		_, acc := x.Float32()
		return acc == big.Exact
	}
	_, acc := x.Float64()
	return acc == big.Exact
}

func (o *Object) invokeReserved(name string, args ...any) any {
	out, err := o.dispatch(nil, reservedMethod(name), args)
	if err != nil {
		panic(err)
	}
	return out
}

// Equals reports whether other is this object or a synthesized object with
// an equal descriptor
func (o *Object) Equals(other any) bool {
	eq, _ := o.invokeReserved("Equals", other).(bool)
	return eq
}

// HashCode returns a hash derived from the fallback object
func (o *Object) HashCode() uint64 {
	h, _ := o.invokeReserved("HashCode").(uint64)
	return h
}

// String names the implemented contracts and renders the descriptor
func (o *Object) String() string {
	s, _ := o.invokeReserved("String").(string)
	return s
}

// Descriptor returns the live finalized descriptor
func (o *Object) Descriptor() *Descriptor {
	d, _ := o.invokeReserved("Descriptor").(*Descriptor)
	return d
}
