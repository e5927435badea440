package facet

import (
	"fmt"
	"slices"
	"strings"
)

// Synthesized is the base contract of every synthesized object. Its methods
// are reserved: user entries may never override them.
type Synthesized interface {
	Equals(other any) bool
	HashCode() uint64
	String() string
	Descriptor() *Descriptor
}

// SynthesizedContract is the canonical contract of Synthesized
var SynthesizedContract = ContractOf[Synthesized]()

var reservedSignatures = func() []Signature {
	methods := SynthesizedContract.Methods()
	sigs := make([]Signature, len(methods))
	for i, m := range methods {
		sigs[i] = m.Signature()
	}
	return sigs
}()

// ReservedMethods returns the reserved methods of the base contract
func ReservedMethods() []Method {
	return SynthesizedContract.Methods()
}

// IsReserved reports whether m has the signature of a reserved method. A user
// contract re-declaring String() string is reserved as well.
func IsReserved(m Method) bool {
	sig := m.Signature()
	for _, r := range reservedSignatures {
		if r.Equal(sig) {
			return true
		}
	}
	return false
}

// shadowedReserved returns the reserved signatures the matcher accepts,
// checking the base contract and every method of the given contracts that
// re-declares a reserved signature
func shadowedReserved(matcher Matcher, contracts []*Contract) []Signature {
	candidates := ReservedMethods()
	for _, c := range contracts {
		if c == SynthesizedContract {
			continue
		}
		for _, m := range c.methods {
			if IsReserved(m) {
				candidates = append(candidates, m)
			}
		}
	}

	var shadowed []Signature
	for _, m := range candidates {
		if !matcher.Matches(m) {
			continue
		}
		sig := m.Signature()
		if !slices.ContainsFunc(shadowed, sig.Equal) {
			shadowed = append(shadowed, sig)
		}
	}
	return shadowed
}

// builtInEntries returns the entries serving the reserved methods. Handlers
// read the descriptor from the invoked object at call time, so they always
// see the finalized descriptor rather than the draft they were created for.
func builtInEntries() []*HandlerEntry {
	builtin := func(name string, h Handler) *HandlerEntry {
		m, _ := SynthesizedContract.Method(name)
		return &HandlerEntry{Matcher: ExactSignature(m.Signature()), Handler: h, BuiltIn: true}
	}
	return []*HandlerEntry{
		builtin("Equals", func(inv *Invocation) (any, error) {
			return inv.Self.equalTo(inv.Arg(0)), nil
		}),
		builtin("HashCode", func(inv *Invocation) (any, error) {
			return referenceHash(inv.Self.desc.fallback), nil
		}),
		builtin("String", func(inv *Invocation) (any, error) {
			return inv.Self.label(), nil
		}),
		builtin("Descriptor", func(inv *Invocation) (any, error) {
			return inv.Self.desc, nil
		}),
	}
}

func (o *Object) equalTo(other any) bool {
	var target *Object
	switch x := other.(type) {
	case *Object:
		target = x
	case *View:
		if x != nil {
			target = x.obj
		}
	}
	if target == nil {
		return false
	}
	if target == o {
		return true
	}
	return o.desc.Equal(target.desc)
}

func (o *Object) label() string {
	names := make([]string, 0, len(o.desc.contracts))
	for _, c := range o.desc.contracts {
		names = append(names, c.Name())
	}
	return fmt.Sprintf("Synthesized[%s]%s", strings.Join(names, ", "), o.desc)
}

// reservedMethod returns the base contract method for a reserved name
func reservedMethod(name string) Method {
	m, _ := SynthesizedContract.Method(name)
	return m
}
