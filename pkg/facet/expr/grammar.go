package expr

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// orExpr is the root of a matcher expression
type orExpr struct {
	Terms []*andExpr `parser:"@@ ( '||' @@ )*"`
}

type andExpr struct {
	Factors []*unaryExpr `parser:"@@ ( '&&' @@ )*"`
}

type unaryExpr struct {
	Negated *unaryExpr `parser:"  '!' @@"`
	Group   *orExpr    `parser:"| '(' @@ ')'"`
	Call    *callExpr  `parser:"| @@"`
}

type callExpr struct {
	Pos  lexer.Position
	Func string     `parser:"@Ident '('"`
	Args []*argExpr `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type argExpr struct {
	String *string `parser:"  @String"`
	Ident  *string `parser:"| @Ident"`
}

func (a *argExpr) value() string {
	if a.String != nil {
		return *a.String
	}
	return *a.Ident
}

var exprLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"(\\"|[^"])*"`},
	{Name: "Or", Pattern: `\|\|`},
	{Name: "And", Pattern: `&&`},
	{Name: "Not", Pattern: `!`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Punct", Pattern: `[(),]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var exprParser = participle.MustBuild[orExpr](
	participle.Lexer(exprLexer),
	participle.Unquote("String"),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

// sigExpr is a method signature such as Greet(string, []int)
type sigExpr struct {
	Name   string     `parser:"@Ident '('"`
	Params []*typeRef `parser:"( @@ ( ',' @@ )* )? ')'"`
}

type typeRef struct {
	Slice     *typeRef `parser:"  '[' ']' @@"`
	Pointer   *typeRef `parser:"| '*' @@"`
	Variadic  *typeRef `parser:"| '...' @@"`
	Map       *mapRef  `parser:"| 'map' @@"`
	Interface bool     `parser:"| @('interface' '{' '}')"`
	Named     string   `parser:"| @Ident"`
}

type mapRef struct {
	Key   *typeRef `parser:"'[' @@ ']'"`
	Value *typeRef `parser:"@@"`
}

var sigLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Ellipsis", Pattern: `\.\.\.`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.]*`},
	{Name: "Punct", Pattern: `[\[\]*(),{}]`},
	{Name: "Whitespace", Pattern: `\s+`},
})

var sigParser = participle.MustBuild[sigExpr](
	participle.Lexer(sigLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

var typeParser = participle.MustBuild[typeRef](
	participle.Lexer(sigLexer),
	participle.Elide("Whitespace"),
	participle.UseLookahead(2),
)

var aliases = map[string]string{
	"any":  "interface {}",
	"byte": "uint8",
	"rune": "int32",
}

// String renders the type the way reflect does: "any" and "interface{}"
// both become "interface {}", byte becomes uint8
func (t *typeRef) String() string {
	switch {
	case t.Slice != nil:
		return "[]" + t.Slice.String()
	case t.Variadic != nil:
		return "[]" + t.Variadic.String()
	case t.Pointer != nil:
		return "*" + t.Pointer.String()
	case t.Map != nil:
		return "map[" + t.Map.Key.String() + "]" + t.Map.Value.String()
	case t.Interface:
		return "interface {}"
	}
	if alias, ok := aliases[t.Named]; ok {
		return alias
	}
	return t.Named
}

func (s *sigExpr) String() string {
	params := make([]string, len(s.Params))
	for i, p := range s.Params {
		params[i] = p.String()
	}
	return s.Name + "(" + strings.Join(params, ", ") + ")"
}

// CanonicalType normalizes a Go type expression, reporting false when it
// cannot be parsed
func CanonicalType(src string) (string, bool) {
	t, err := typeParser.ParseString("", src)
	if err != nil {
		return "", false
	}
	return t.String(), true
}
