package facet

import (
	"reflect"
	"strings"
)

// Signature is the structural identity of a method: its name and the ordered
// types of its parameters. The zero value is a nameless, parameterless signature.
type Signature struct {
	name   string
	params []reflect.Type
}

// NewSignature creates a signature from a name and parameter types
func NewSignature(name string, params ...reflect.Type) Signature {
	return Signature{
		name:   name,
		params: append([]reflect.Type(nil), params...),
	}
}

// SignatureOf creates a signature from a reflected method. Methods obtained
// from a concrete type carry the receiver as their first input, which is
// dropped; interface methods are taken as-is.
func SignatureOf(m reflect.Method) Signature {
	ft := m.Type
	skip := 0
	if m.Func.IsValid() {
		skip = 1
	}
	params := make([]reflect.Type, 0, ft.NumIn()-skip)
	for i := skip; i < ft.NumIn(); i++ {
		params = append(params, ft.In(i))
	}
	return Signature{name: m.Name, params: params}
}

// SignatureFor returns the signature of the named method declared by T
func SignatureFor[T any](name string) (Signature, bool) {
	m, ok := reflect.TypeFor[T]().MethodByName(name)
	if !ok {
		return Signature{}, false
	}
	return SignatureOf(m), true
}

func signatureOfFunc(name string, ft reflect.Type) Signature {
	params := make([]reflect.Type, ft.NumIn())
	for i := range params {
		params[i] = ft.In(i)
	}
	return Signature{name: name, params: params}
}

// Name returns the method name
func (s Signature) Name() string {
	return s.name
}

// Params returns a copy of the parameter types
func (s Signature) Params() []reflect.Type {
	return append([]reflect.Type(nil), s.params...)
}

// Arity returns the number of parameters
func (s Signature) Arity() int {
	return len(s.params)
}

// Equal reports whether both signatures have the same name and pairwise
// identical parameter types
func (s Signature) Equal(o Signature) bool {
	if s.name != o.name || len(s.params) != len(o.params) {
		return false
	}
	for i := range s.params {
		if s.params[i] != o.params[i] {
			return false
		}
	}
	return true
}

// String renders the signature as Name(T1, T2)
func (s Signature) String() string {
	var b strings.Builder
	b.WriteString(s.name)
	b.WriteByte('(')
	for i, p := range s.params {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(p.String())
	}
	b.WriteByte(')')
	return b.String()
}
