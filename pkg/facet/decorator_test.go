package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tagging(tag string, trace *[]string) Decorator {
	return DecoratorFunc(func(_ Method, next Handler) Handler {
		return func(inv *Invocation) (any, error) {
			*trace = append(*trace, tag+">")
			out, err := next(inv)
			*trace = append(*trace, "<"+tag)
			return out, err
		}
	})
}

func TestDecorator_CompositionOrder(t *testing.T) {
	tests := []struct {
		name  string
		build func(a, b Decorator) Decorator
		want  []string
	}{
		{"compose runs outer around inner", Compose, []string{"a>", "b>", "<b", "<a"}},
		{"and then runs second around first", AndThen, []string{"b>", "a>", "<a", "<b"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var trace []string
			obj := NewBuilder().
				AddContract(ContractOf[Greeter]()).
				HandleMethod("Greet", constant("hi")).
				SetDecorator(tt.build(tagging("a", &trace), tagging("b", &trace))).
				MustBuild()

			_, err := obj.Invoke("Greet", "Ada")
			require.NoError(t, err)
			assert.Equal(t, tt.want, trace)
		})
	}
}

func TestDecorator_IdentityIsNeutral(t *testing.T) {
	d := boxed(DecoratorFunc(func(_ Method, next Handler) Handler { return next }))

	assert.True(t, isIdentity(Compose(Identity(), nil)))
	assert.True(t, decoratorsEqual(d, Compose(Identity(), d)))
	assert.True(t, decoratorsEqual(d, Compose(d, Identity())))
	assert.True(t, isIdentity(Filter(Any(), Identity())))
	assert.True(t, decoratorsEqual(nil, Identity()))
}

func TestDecorator_FilterSkipsRejectedMethods(t *testing.T) {
	var trace []string
	obj := NewBuilder().
		AddContract(ContractOf[Greeter](), ContractOf[Farewell]()).
		SetFallback(&multilingual{english: english{greeting: "Hi"}}).
		SetDecorator(Filter(Named("Bye"), tagging("bye", &trace))).
		MustBuild()

	_, err := obj.Invoke("Greet", "Ada")
	require.NoError(t, err)
	assert.Empty(t, trace)

	_, err = obj.Invoke("Bye", "Ada")
	require.NoError(t, err)
	assert.Equal(t, []string{"bye>", "<bye"}, trace)
}

func TestDecorator_StructuralEquality(t *testing.T) {
	var trace []string
	a := boxed(tagging("a", &trace))
	b := boxed(DecoratorFunc(func(_ Method, next Handler) Handler { return next }))

	assert.True(t, decoratorsEqual(Compose(a, b), Compose(a, b)))
	assert.False(t, decoratorsEqual(Compose(a, b), Compose(b, a)))
	assert.True(t, decoratorsEqual(Filter(Named("X"), a), Filter(Named("X"), a)))
	assert.False(t, decoratorsEqual(Filter(Named("X"), a), Filter(Named("Y"), a)))
	assert.False(t, decoratorsEqual(a, Identity()))
	assert.True(t, decoratorsEqual(
		Filter(And(MustNamePattern("^G"), Not(Exact("Greet", typeOf[string]()))), a),
		Filter(And(MustNamePattern("^G"), Not(Exact("Greet", typeOf[string]()))), a)))
}

func TestDecorator_ClosuresFromOneLiteralAreDistinct(t *testing.T) {
	var first, second []string
	a := tagging("a", &first)
	b := tagging("a", &second)

	assert.False(t, decoratorsEqual(a, b), "same code pointer, different captured state")
	assert.False(t, decoratorsEqual(boxed(a), boxed(b)))

	d1, err := NewBuilder().SetDecorator(a).Descriptor()
	require.NoError(t, err)
	d2, err := NewBuilder().SetDecorator(b).Descriptor()
	require.NoError(t, err)
	assert.False(t, d1.Equal(d2))

	inherited, err := NewBuilderFrom(d1).Descriptor()
	require.NoError(t, err)
	assert.True(t, d1.Equal(inherited), "an inherited decorator keeps its identity")
}

func TestDecorator_FilterPredicatesCompareByIdentity(t *testing.T) {
	var trace []string
	a := boxed(tagging("a", &trace))
	short := MatchFunc("custom", func(m Method) bool { return len(m.Name()) < 4 })
	long := MatchFunc("custom", func(m Method) bool { return len(m.Name()) > 4 })

	assert.False(t, decoratorsEqual(Filter(short, a), Filter(long, a)))
	assert.False(t, decoratorsEqual(Filter(short, a), Filter(short, a)))
}

func TestDecorator_Names(t *testing.T) {
	assert.Equal(t, "identity", decoratorName(Identity()))
	assert.Equal(t, `filter(name("X"), identity∘facet.DecoratorFunc)`,
		decoratorName(filtered{allow: Named("X"), d: composite{outer: Identity(), inner: DecoratorFunc(nil)}}))
}
