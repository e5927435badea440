package facet

import (
	"fmt"
	"reflect"
	"slices"
)

// Method identifies one method declared by one contract. Two contracts that
// declare identically-signed methods yield two distinct Methods.
type Method struct {
	contract reflect.Type
	name     string
	typ      reflect.Type
	markers  []string
}

// methodKey is the comparable identity of a Method
type methodKey struct {
	contract reflect.Type
	name     string
}

// Contract returns the interface type declaring the method
func (m Method) Contract() reflect.Type {
	return m.contract
}

// Name returns the method name
func (m Method) Name() string {
	return m.name
}

// Type returns the method's func type, without receiver
func (m Method) Type() reflect.Type {
	return m.typ
}

// Signature returns the structural signature of the method
func (m Method) Signature() Signature {
	if m.typ == nil {
		return Signature{name: m.name}
	}
	return signatureOfFunc(m.name, m.typ)
}

// Markers returns the declarative markers attached to the method
func (m Method) Markers() []string {
	return slices.Clone(m.markers)
}

// HasMarker reports whether the method carries the given marker
func (m Method) HasMarker(marker string) bool {
	return slices.Contains(m.markers, marker)
}

// IsZero reports whether m is the zero Method
func (m Method) IsZero() bool {
	return m.contract == nil && m.name == ""
}

// Same reports whether both values denote the same method identity
func (m Method) Same(o Method) bool {
	return m.key() == o.key()
}

func (m Method) key() methodKey {
	return methodKey{contract: m.contract, name: m.name}
}

// String renders the method as Contract.Name(T1, T2)
func (m Method) String() string {
	if m.contract == nil {
		return m.Signature().String()
	}
	return fmt.Sprintf("%s.%s", m.contract, m.Signature())
}

// MethodOf returns the Method named name declared by interface T
func MethodOf[T any](name string) (Method, error) {
	c, err := NewContract(reflect.TypeFor[T]())
	if err != nil {
		return Method{}, err
	}
	m, ok := c.Method(name)
	if !ok {
		return Method{}, Errorf(ResolutionErrorCode, "facet: %s declares no method %q", c.Type(), name)
	}
	return m, nil
}
