package facet

import (
	"errors"
	"fmt"
	"reflect"
)

type Greeter interface {
	Greet(name string) string
}

type Salute interface {
	Greet(name string) string
}

type Host interface {
	Greet(name string) string
	Welcome(name string) string
}

type Farewell interface {
	Bye(name string) (string, error)
}

type Calculator interface {
	Add(a, b int) int
	Sum(values ...int) int
	DivMod(a, b int) (int, int, error)
}

type Mixer interface {
	Level(v uint8) uint8
	Gain(f float32) float32
}

type english struct {
	greeting string
}

func (e *english) Greet(name string) string { return e.greeting + ", " + name }

type leaving struct {
	fail bool
}

var errNoGoodbyes = errors.New("no goodbyes today")

func (l *leaving) Bye(name string) (string, error) {
	if l.fail {
		return "", errNoGoodbyes
	}
	return "Bye, " + name, nil
}

type abacus struct {
	offset int
}

func (a *abacus) Add(x, y int) int { return x + y + a.offset }

func (a *abacus) Sum(values ...int) int {
	total := a.offset
	for _, v := range values {
		total += v
	}
	return total
}

func (a *abacus) DivMod(x, y int) (int, int, error) {
	if y == 0 {
		return 0, 0, fmt.Errorf("division by zero")
	}
	return x / y, x % y, nil
}

// incompatible has a Greet method with the wrong parameter type
type incompatible struct {
	n int
}

func (incompatible) Greet(n int) string { return fmt.Sprint(n) }

func typeOf[T any]() reflect.Type {
	return reflect.TypeFor[T]()
}

func constant(v any) Handler {
	return Returning(v)
}
