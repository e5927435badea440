package facet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchers(t *testing.T) {
	marked := ContractOf[Calculator](WithMarkers("Add", "pure"), WithMarkers("Sum", "pure", "variadic"))
	add, _ := marked.Method("Add")
	sum, _ := marked.Method("Sum")
	greet, err := MethodOf[Greeter]("Greet")
	require.NoError(t, err)
	equals := reservedMethod("Equals")

	tests := []struct {
		name    string
		matcher Matcher
		method  Method
		want    bool
	}{
		{"exact signature", Exact("Greet", typeOf[string]()), greet, true},
		{"exact signature wrong params", Exact("Greet", typeOf[int]()), greet, false},
		{"named lenient", Named("Greet"), greet, true},
		{"named other", Named("Add"), greet, false},
		{"pattern", MustNamePattern("^(Add|Sum)$"), sum, true},
		{"pattern miss", MustNamePattern("^Div"), add, false},
		{"marker", Marked("variadic"), sum, true},
		{"marker miss", Marked("variadic"), add, false},
		{"declared by", DeclaredBy(typeOf[Greeter]()), greet, true},
		{"declared by other", DeclaredBy(typeOf[Salute]()), greet, false},
		{"any", Any(), equals, true},
		{"reserved", Reserved(), equals, true},
		{"non reserved", NonReserved(), equals, false},
		{"and", And(Marked("pure"), Named("Sum")), sum, true},
		{"and miss", And(Marked("pure"), Named("Sum")), add, false},
		{"or", Or(Named("Add"), Named("Sum")), add, true},
		{"not", Not(Named("Add")), add, false},
		{"func", MatchFunc("arity 2", func(m Method) bool { return m.Signature().Arity() == 2 }), add, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.matcher.Matches(tt.method), tt.matcher.String())
			// deterministic
			assert.Equal(t, tt.want, tt.matcher.Matches(tt.method))
		})
	}
}

func TestMatcher_Descriptions(t *testing.T) {
	m := And(Named("Greet"), Or(Marked("slow"), Not(DeclaredBy(typeOf[Greeter]()))))
	assert.Equal(t, `name("Greet") && (marker("slow") || !contract(facet.Greeter))`, m.String())
	assert.Equal(t, `!(name("A") && name("B"))`, Not(And(Named("A"), Named("B"))).String())
	assert.Equal(t, `sig("Greet(string)")`, Exact("Greet", typeOf[string]()).String())
}

func TestNot_DoubleNegationCollapses(t *testing.T) {
	m := Named("Greet")
	assert.Equal(t, m, Not(Not(m)))
}

func TestNamePattern_Invalid(t *testing.T) {
	_, err := NamePattern("(")
	assert.Error(t, err)
	assert.Panics(t, func() { MustNamePattern("(") })
}

func TestIsReserved_CoversUserStringMethods(t *testing.T) {
	str, err := MethodOf[Labeled]("String")
	require.NoError(t, err)
	label, err := MethodOf[Labeled]("Label")
	require.NoError(t, err)

	assert.True(t, IsReserved(str))
	assert.False(t, IsReserved(label))
	assert.Len(t, ReservedMethods(), 4)
}
