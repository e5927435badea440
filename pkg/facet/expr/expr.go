// Package expr implements a small expression language for method matchers:
//
//	name("Greet") && !marker("slow")
//	contract(store.Reader) || pattern("^Get")
//	sig("Put(string, []byte)")
//
// Expressions compile into facet.Matcher values for use in handler entries,
// and evaluate directly against source-level method facts for tooling that
// has no reflect types at hand.
package expr

import (
	"fmt"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/toyz/facet/pkg/facet"
)

// Expr is a parsed, validated matcher expression
type Expr struct {
	src  string
	root *orExpr
}

type funcSpec struct {
	arity  int
	idents bool // accepts a bare identifier argument
}

var funcs = map[string]funcSpec{
	"name":     {arity: 1},
	"pattern":  {arity: 1},
	"marker":   {arity: 1},
	"sig":      {arity: 1},
	"contract": {arity: 1, idents: true},
	"any":      {arity: 0},
	"reserved": {arity: 0},
}

// Parse parses and validates src
func Parse(src string) (*Expr, error) {
	root, err := exprParser.ParseString("", src)
	if err != nil {
		return nil, invalid(src, err)
	}
	e := &Expr{src: src, root: root}
	if err := e.walk(func(c *callExpr) error { return check(c) }); err != nil {
		return nil, invalid(src, err)
	}
	return e, nil
}

// MustParse is like Parse but panics on error
func MustParse(src string) *Expr {
	e, err := Parse(src)
	if err != nil {
		panic(err)
	}
	return e
}

// Compile parses src and compiles it against env
func Compile(src string, env *Env) (facet.Matcher, error) {
	e, err := Parse(src)
	if err != nil {
		return nil, err
	}
	return e.Compile(env)
}

// String returns the source of the expression
func (e *Expr) String() string {
	return e.src
}

func invalid(src string, err error) error {
	return facet.Errorf(facet.ConfigurationErrorCode, "expr: invalid matcher expression %q", src).
		WithCause(err).
		WithSuggestion("available functions: any, contract, marker, name, pattern, reserved, sig")
}

func check(c *callExpr) error {
	spec, ok := funcs[c.Func]
	if !ok {
		return fmt.Errorf("%s: unknown function %q", c.Pos, c.Func)
	}
	if len(c.Args) != spec.arity {
		return fmt.Errorf("%s: %s takes %d argument(s), got %d", c.Pos, c.Func, spec.arity, len(c.Args))
	}
	for _, a := range c.Args {
		if a.Ident != nil && !spec.idents {
			return fmt.Errorf("%s: %s expects a quoted string, got %s", c.Pos, c.Func, *a.Ident)
		}
	}

	switch c.Func {
	case "pattern":
		if _, err := regexp.Compile(c.Args[0].value()); err != nil {
			return fmt.Errorf("%s: %w", c.Pos, err)
		}
	case "sig":
		if _, err := sigParser.ParseString("", c.Args[0].value()); err != nil {
			return fmt.Errorf("%s: invalid signature %q: %w", c.Pos, c.Args[0].value(), err)
		}
	}
	return nil
}

func (e *Expr) walk(fn func(*callExpr) error) error {
	var visitOr func(*orExpr) error
	var visitUnary func(*unaryExpr) error
	visitOr = func(o *orExpr) error {
		for _, t := range o.Terms {
			for _, f := range t.Factors {
				if err := visitUnary(f); err != nil {
					return err
				}
			}
		}
		return nil
	}
	visitUnary = func(u *unaryExpr) error {
		switch {
		case u.Negated != nil:
			return visitUnary(u.Negated)
		case u.Group != nil:
			return visitOr(u.Group)
		default:
			return fn(u.Call)
		}
	}
	return visitOr(e.root)
}

// Compile turns the expression into a facet.Matcher. Type names used by
// sig and contract are resolved through env; a nil env knows only the
// predeclared types.
func (e *Expr) Compile(env *Env) (facet.Matcher, error) {
	if env == nil {
		env = NewEnv()
	}
	c := compiler{env: env}
	m, err := c.or(e.root)
	if err != nil {
		return nil, facet.Errorf(facet.ConfigurationErrorCode, "expr: cannot compile %q", e.src).WithCause(err)
	}
	return m, nil
}

type compiler struct {
	env *Env
}

func (c compiler) or(o *orExpr) (facet.Matcher, error) {
	terms := make([]facet.Matcher, 0, len(o.Terms))
	for _, t := range o.Terms {
		factors := make([]facet.Matcher, 0, len(t.Factors))
		for _, f := range t.Factors {
			m, err := c.unary(f)
			if err != nil {
				return nil, err
			}
			factors = append(factors, m)
		}
		terms = append(terms, facet.And(factors...))
	}
	return facet.Or(terms...), nil
}

func (c compiler) unary(u *unaryExpr) (facet.Matcher, error) {
	switch {
	case u.Negated != nil:
		m, err := c.unary(u.Negated)
		if err != nil {
			return nil, err
		}
		return facet.Not(m), nil
	case u.Group != nil:
		return c.or(u.Group)
	default:
		return c.call(u.Call)
	}
}

func (c compiler) call(call *callExpr) (facet.Matcher, error) {
	var arg string
	if len(call.Args) > 0 {
		arg = call.Args[0].value()
	}

	switch call.Func {
	case "name":
		return facet.Named(arg), nil
	case "pattern":
		return facet.NamePattern(arg)
	case "marker":
		return facet.Marked(arg), nil
	case "any":
		return facet.Any(), nil
	case "reserved":
		return facet.Reserved(), nil
	case "contract":
		t, ok := c.env.Lookup(arg)
		if !ok {
			return nil, fmt.Errorf("%s: unknown contract %q", call.Pos, arg)
		}
		return facet.DeclaredBy(t), nil
	case "sig":
		sig, err := sigParser.ParseString("", arg)
		if err != nil {
			return nil, err
		}
		params := make([]reflect.Type, len(sig.Params))
		for i, p := range sig.Params {
			if params[i], err = c.env.resolve(p); err != nil {
				return nil, fmt.Errorf("%s: %w", call.Pos, err)
			}
		}
		return facet.Exact(sig.Name, params...), nil
	}
	return nil, fmt.Errorf("%s: unknown function %q", call.Pos, call.Func)
}

// MethodFacts describes a method as seen in source code
type MethodFacts struct {
	Contract string   // qualified contract name, e.g. store.Reader
	Name     string   // method name
	Params   []string // parameter type expressions
	Markers  []string
}

// Signature renders the facts as Name(T1, T2) with canonical type names
func (f MethodFacts) Signature() string {
	params := make([]string, len(f.Params))
	for i, p := range f.Params {
		if canon, ok := CanonicalType(p); ok {
			params[i] = canon
		} else {
			params[i] = p
		}
	}
	return f.Name + "(" + strings.Join(params, ", ") + ")"
}

var reservedSignatures = func() []string {
	var sigs []string
	for _, m := range facet.ReservedMethods() {
		sigs = append(sigs, m.Signature().String())
	}
	return sigs
}()

// Eval evaluates the expression against source-level facts. Types are
// compared by their canonical spelling.
func (e *Expr) Eval(f MethodFacts) bool {
	return evalOr(e.root, f)
}

func evalOr(o *orExpr, f MethodFacts) bool {
	for _, t := range o.Terms {
		all := true
		for _, u := range t.Factors {
			if !evalUnary(u, f) {
				all = false
				break
			}
		}
		if all {
			return true
		}
	}
	return false
}

func evalUnary(u *unaryExpr, f MethodFacts) bool {
	switch {
	case u.Negated != nil:
		return !evalUnary(u.Negated, f)
	case u.Group != nil:
		return evalOr(u.Group, f)
	}

	call := u.Call
	var arg string
	if len(call.Args) > 0 {
		arg = call.Args[0].value()
	}
	switch call.Func {
	case "name":
		return f.Name == arg
	case "pattern":
		return regexp.MustCompile(arg).MatchString(f.Name)
	case "marker":
		return slices.Contains(f.Markers, arg)
	case "any":
		return true
	case "reserved":
		return slices.Contains(reservedSignatures, f.Signature())
	case "contract":
		return sameContract(f.Contract, arg)
	case "sig":
		sig, err := sigParser.ParseString("", arg)
		return err == nil && sig.String() == f.Signature()
	}
	return false
}

// sameContract compares qualified names, falling back to the bare name when
// either side is unqualified
func sameContract(have, want string) bool {
	if have == want {
		return true
	}
	if strings.Contains(have, ".") && strings.Contains(want, ".") {
		return false
	}
	return bare(have) == bare(want)
}

func bare(name string) string {
	if i := strings.LastIndex(name, "."); i >= 0 {
		return name[i+1:]
	}
	return name
}
