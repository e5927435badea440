package facet

import (
	"fmt"
	"reflect"
)

// Decorator wraps a resolved handler for cross-cutting behavior. Decorate is
// called on cache miss and the returned handler is what gets cached. When
// first calls to a method race, Decorate may run more than once for it; only
// one result is kept. A decorator observing a failure must return it
// unchanged, and a decorator recovering a panic must re-panic with the same
// value.
type Decorator interface {
	Decorate(m Method, next Handler) Handler
}

// DecoratorFunc adapts a function into a Decorator
type DecoratorFunc func(m Method, next Handler) Handler

// Decorate calls f(m, next)
func (f DecoratorFunc) Decorate(m Method, next Handler) Handler {
	return f(m, next)
}

// funcDecorator gives a DecoratorFunc an identity. Closures built by the
// same literal share a code pointer, so the function value alone cannot be
// compared.
type funcDecorator struct {
	f DecoratorFunc
}

func (d *funcDecorator) Decorate(m Method, next Handler) Handler { return d.f(m, next) }
func (d *funcDecorator) String() string                          { return "facet.DecoratorFunc" }

func boxed(d Decorator) Decorator {
	if f, ok := d.(DecoratorFunc); ok && f != nil {
		return &funcDecorator{f: f}
	}
	return d
}

type identityDecorator struct{}

func (identityDecorator) Decorate(_ Method, next Handler) Handler { return next }
func (identityDecorator) String() string                          { return "identity" }

// Identity returns the decorator that leaves handlers untouched
func Identity() Decorator { return identityDecorator{} }

type composite struct {
	outer Decorator
	inner Decorator
}

func (c composite) Decorate(m Method, next Handler) Handler {
	return c.outer.Decorate(m, c.inner.Decorate(m, next))
}

func (c composite) String() string {
	return fmt.Sprintf("%s∘%s", decoratorName(c.outer), decoratorName(c.inner))
}

// Compose returns a decorator that applies inner first and wraps the result
// with outer, so outer runs around inner at call time
func Compose(outer, inner Decorator) Decorator {
	switch {
	case outer == nil || isIdentity(outer):
		return boxed(orIdentity(inner))
	case inner == nil || isIdentity(inner):
		return boxed(outer)
	}
	return composite{outer: boxed(outer), inner: boxed(inner)}
}

// AndThen returns a decorator that applies first and then wraps the result
// with then
func AndThen(first, then Decorator) Decorator {
	return Compose(then, first)
}

type filtered struct {
	allow Matcher
	d     Decorator
}

func (f filtered) Decorate(m Method, next Handler) Handler {
	if !f.allow.Matches(m) {
		return next
	}
	return f.d.Decorate(m, next)
}

func (f filtered) String() string {
	return fmt.Sprintf("filter(%s, %s)", f.allow, decoratorName(f.d))
}

// Filter applies d only to methods accepted by allow
func Filter(allow Matcher, d Decorator) Decorator {
	if d == nil || isIdentity(d) {
		return Identity()
	}
	return filtered{allow: allow, d: boxed(d)}
}

func isIdentity(d Decorator) bool {
	_, ok := d.(identityDecorator)
	return ok
}

func orIdentity(d Decorator) Decorator {
	if d == nil {
		return Identity()
	}
	return d
}

func decoratorName(d Decorator) string {
	if s, ok := d.(fmt.Stringer); ok {
		return s.String()
	}
	return reflect.TypeOf(d).String()
}

// decoratorsEqual compares decorators structurally. Composites and filters
// compare by parts, pointers by address and other values with == when the
// dynamic type is comparable. Bare function values never compare equal.
func decoratorsEqual(a, b Decorator) bool {
	a, b = orIdentity(a), orIdentity(b)
	switch x := a.(type) {
	case composite:
		y, ok := b.(composite)
		return ok && decoratorsEqual(x.outer, y.outer) && decoratorsEqual(x.inner, y.inner)
	case filtered:
		y, ok := b.(filtered)
		return ok && matchersEqual(x.allow, y.allow) && decoratorsEqual(x.d, y.d)
	}
	if reflect.ValueOf(a).Kind() == reflect.Func {
		return false
	}
	return sameReference(a, b)
}
