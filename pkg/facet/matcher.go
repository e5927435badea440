package facet

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"
)

// Matcher is a deterministic, side-effect-free predicate over methods.
// String returns a description used in diagnostics.
type Matcher interface {
	Matches(m Method) bool
	String() string
}

type exactMatcher struct {
	sig Signature
}

// Exact matches methods whose signature equals name(params...)
func Exact(name string, params ...reflect.Type) Matcher {
	return exactMatcher{sig: NewSignature(name, params...)}
}

// ExactSignature matches methods whose signature equals sig
func ExactSignature(sig Signature) Matcher {
	return exactMatcher{sig: sig}
}

func (e exactMatcher) Matches(m Method) bool { return m.Signature().Equal(e.sig) }
func (e exactMatcher) String() string        { return fmt.Sprintf("sig(%q)", e.sig.String()) }

type nameMatcher struct {
	name string
}

// Named matches methods by name only, regardless of parameter types
func Named(name string) Matcher {
	return nameMatcher{name: name}
}

func (n nameMatcher) Matches(m Method) bool { return m.name == n.name }
func (n nameMatcher) String() string        { return fmt.Sprintf("name(%q)", n.name) }

type patternMatcher struct {
	re *regexp.Regexp
}

// NamePattern matches methods whose name matches the regular expression
func NamePattern(expr string) (Matcher, error) {
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("facet: invalid name pattern %q: %w", expr, err)
	}
	return patternMatcher{re: re}, nil
}

// MustNamePattern is like NamePattern but panics on an invalid expression
func MustNamePattern(expr string) Matcher {
	m, err := NamePattern(expr)
	if err != nil {
		panic(err)
	}
	return m
}

func (p patternMatcher) Matches(m Method) bool { return p.re.MatchString(m.name) }
func (p patternMatcher) String() string        { return fmt.Sprintf("pattern(%q)", p.re.String()) }

type markerMatcher struct {
	marker string
}

// Marked matches methods carrying the declarative marker
func Marked(marker string) Matcher {
	return markerMatcher{marker: marker}
}

func (k markerMatcher) Matches(m Method) bool { return m.HasMarker(k.marker) }
func (k markerMatcher) String() string        { return fmt.Sprintf("marker(%q)", k.marker) }

type contractMatcher struct {
	typ reflect.Type
}

// DeclaredBy matches every method declared by the contract type
func DeclaredBy(t reflect.Type) Matcher {
	return contractMatcher{typ: t}
}

func (c contractMatcher) Matches(m Method) bool { return m.contract == c.typ }
func (c contractMatcher) String() string        { return fmt.Sprintf("contract(%v)", c.typ) }

type anyMatcher struct{}

// Any matches every method, reserved ones included
func Any() Matcher { return anyMatcher{} }

func (anyMatcher) Matches(Method) bool { return true }
func (anyMatcher) String() string      { return "any()" }

type reservedMatcher struct{}

// Reserved matches the reserved methods Equals, HashCode, String and Descriptor
func Reserved() Matcher { return reservedMatcher{} }

func (reservedMatcher) Matches(m Method) bool { return IsReserved(m) }
func (reservedMatcher) String() string        { return "reserved()" }

// NonReserved matches every method except the reserved ones. It is the
// catch-all to use for user entries.
func NonReserved() Matcher { return Not(Reserved()) }

type andMatcher struct {
	ms []Matcher
}

// And matches methods accepted by every matcher
func And(ms ...Matcher) Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return andMatcher{ms: ms}
}

func (a andMatcher) Matches(m Method) bool {
	for _, x := range a.ms {
		if !x.Matches(m) {
			return false
		}
	}
	return true
}

func (a andMatcher) String() string { return joinMatchers(a.ms, " && ") }

type orMatcher struct {
	ms []Matcher
}

// Or matches methods accepted by at least one matcher
func Or(ms ...Matcher) Matcher {
	if len(ms) == 1 {
		return ms[0]
	}
	return orMatcher{ms: ms}
}

func (o orMatcher) Matches(m Method) bool {
	for _, x := range o.ms {
		if x.Matches(m) {
			return true
		}
	}
	return false
}

func (o orMatcher) String() string { return joinMatchers(o.ms, " || ") }

type notMatcher struct {
	m Matcher
}

// Not negates a matcher
func Not(m Matcher) Matcher {
	if n, ok := m.(notMatcher); ok {
		return n.m
	}
	return notMatcher{m: m}
}

func (n notMatcher) Matches(m Method) bool { return !n.m.Matches(m) }

func (n notMatcher) String() string {
	switch n.m.(type) {
	case andMatcher, orMatcher:
		return "!(" + n.m.String() + ")"
	default:
		return "!" + n.m.String()
	}
}

type funcMatcher struct {
	desc string
	fn   func(Method) bool
}

// MatchFunc adapts a predicate into a Matcher. fn must be deterministic and
// free of side effects.
func MatchFunc(desc string, fn func(Method) bool) Matcher {
	return funcMatcher{desc: desc, fn: fn}
}

func (f funcMatcher) Matches(m Method) bool { return f.fn(m) }
func (f funcMatcher) String() string        { return f.desc }

func joinMatchers(ms []Matcher, sep string) string {
	if len(ms) == 0 {
		return "()"
	}
	parts := make([]string, len(ms))
	for i, m := range ms {
		switch m.(type) {
		case andMatcher, orMatcher:
			parts[i] = "(" + m.String() + ")"
		default:
			parts[i] = m.String()
		}
	}
	return strings.Join(parts, sep)
}

// matchersEqual compares matchers structurally. Predicates built with
// MatchFunc never compare equal; their descriptions say nothing about fn.
func matchersEqual(a, b Matcher) bool {
	switch x := a.(type) {
	case exactMatcher:
		y, ok := b.(exactMatcher)
		return ok && x.sig.Equal(y.sig)
	case patternMatcher:
		y, ok := b.(patternMatcher)
		return ok && x.re.String() == y.re.String()
	case notMatcher:
		y, ok := b.(notMatcher)
		return ok && matchersEqual(x.m, y.m)
	case andMatcher:
		y, ok := b.(andMatcher)
		return ok && matcherListsEqual(x.ms, y.ms)
	case orMatcher:
		y, ok := b.(orMatcher)
		return ok && matcherListsEqual(x.ms, y.ms)
	case funcMatcher:
		return false
	}
	return sameReference(a, b)
}

func matcherListsEqual(a, b []Matcher) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !matchersEqual(a[i], b[i]) {
			return false
		}
	}
	return true
}

// sameMatcher reports whether b still is the matcher a was. Unlike
// matchersEqual it accepts a predicate compared with itself; custom
// matcher types that are not comparable are only checked by type.
func sameMatcher(a, b Matcher) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if reflect.TypeOf(a) != reflect.TypeOf(b) {
		return false
	}
	switch x := a.(type) {
	case funcMatcher:
		y := b.(funcMatcher)
		return x.desc == y.desc && sameReference(x.fn, y.fn)
	case notMatcher:
		return sameMatcher(x.m, b.(notMatcher).m)
	case andMatcher:
		return sameMatcherLists(x.ms, b.(andMatcher).ms)
	case orMatcher:
		return sameMatcherLists(x.ms, b.(orMatcher).ms)
	case exactMatcher:
		return x.sig.Equal(b.(exactMatcher).sig)
	}
	if !reflect.TypeOf(a).Comparable() {
		return true
	}
	return matchersEqual(a, b)
}

func sameMatcherLists(a, b []Matcher) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !sameMatcher(a[i], b[i]) {
			return false
		}
	}
	return true
}
