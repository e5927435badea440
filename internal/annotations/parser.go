package annotations

import (
	"fmt"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// annotation represents the root of a facet annotation
type annotation struct {
	Comment   string      `parser:"@Comment"`
	Facet     string      `parser:"@'facet'"`
	Separator string      `parser:"@Separator"`
	Type      string      `parser:"@Ident"`
	Items     []*argument `parser:"@@*"`
}

// argument is either a -key[=value] parameter or a positional value
type argument struct {
	Param *param  `parser:"  @@"`
	Value *string `parser:"| (@String | @Ident)"`
}

type param struct {
	Key   string  `parser:"'-' @Ident"`
	Value *string `parser:"( '=' (@String | @Ident) )?"`
}

// Parser parses facet annotation comments using participle
type Parser struct {
	parser *participle.Parser[annotation]
}

// NewParser creates a new annotation parser
func NewParser() *Parser {
	lex := lexer.MustSimple([]lexer.SimpleRule{
		{Name: "Comment", Pattern: `//`},
		{Name: "Separator", Pattern: `::`},
		{Name: "String", Pattern: `"(\\"|[^"])*"`},
		{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_.\-]*`},
		{Name: "Punct", Pattern: `[-=]`},
		{Name: "Whitespace", Pattern: `\s+`},
	})

	return &Parser{
		parser: participle.MustBuild[annotation](
			participle.Lexer(lex),
			participle.Unquote("String"),
			participle.Elide("Whitespace"),
			participle.UseLookahead(2),
		),
	}
}

// Parse parses a single annotation comment and validates it against the
// schema of its type
func (p *Parser) Parse(comment string, location SourceLocation) (*ParsedAnnotation, error) {
	ast, err := p.parser.ParseString(location.File, comment)
	if err != nil {
		return nil, &SyntaxError{
			Msg:   err.Error(),
			Loc:   location,
			Hint:  "annotations look like //facet::marker name or //facet::contract -name=Display",
			Cause: err,
		}
	}

	typ, err := ParseAnnotationType(ast.Type)
	if err != nil {
		return nil, &SyntaxError{
			Msg:   err.Error(),
			Loc:   location,
			Hint:  "valid annotation types are contract, marker and default",
			Cause: err,
		}
	}

	parsed := &ParsedAnnotation{
		Type:       typ,
		Parameters: make(map[string]string),
		Location:   location,
		Raw:        comment,
	}
	for _, item := range ast.Items {
		switch {
		case item.Param != nil && item.Param.Value != nil:
			parsed.Parameters[item.Param.Key] = *item.Param.Value
		case item.Param != nil:
			parsed.Flags = append(parsed.Flags, item.Param.Key)
		default:
			parsed.Args = append(parsed.Args, *item.Value)
		}
	}

	if err := validate(parsed); err != nil {
		return nil, err
	}
	return parsed, nil
}

// ParseComments parses every annotation among the comment lines, skipping
// ordinary comments
func (p *Parser) ParseComments(lines []string, location SourceLocation) ([]*ParsedAnnotation, error) {
	var out []*ParsedAnnotation
	for i, line := range lines {
		if !IsAnnotation(line) {
			continue
		}
		loc := location
		loc.Line += i
		parsed, err := p.Parse(line, loc)
		if err != nil {
			return nil, err
		}
		out = append(out, parsed)
	}
	return out, nil
}

type schema struct {
	minArgs, maxArgs int // maxArgs < 0 means unbounded
	params           []string
	flags            []string
}

var schemas = map[AnnotationType]schema{
	ContractAnnotation: {maxArgs: 0, params: []string{"name"}},
	MarkerAnnotation:   {minArgs: 1, maxArgs: -1},
	DefaultAnnotation:  {maxArgs: 0},
}

func validate(a *ParsedAnnotation) error {
	s := schemas[a.Type]
	if len(a.Args) < s.minArgs || (s.maxArgs >= 0 && len(a.Args) > s.maxArgs) {
		return &SchemaError{
			Msg:  fmt.Sprintf("%s takes %s, got %d", a.Type, describeArity(s), len(a.Args)),
			Loc:  a.Location,
			Hint: "check the annotation arguments",
		}
	}
	for key := range a.Parameters {
		if !contains(s.params, key) {
			return &SchemaError{
				Msg:  fmt.Sprintf("%s has no parameter -%s", a.Type, key),
				Loc:  a.Location,
				Hint: fmt.Sprintf("known parameters: %v", s.params),
			}
		}
	}
	for _, flag := range a.Flags {
		if !contains(s.flags, flag) {
			return &SchemaError{
				Msg:  fmt.Sprintf("%s has no flag -%s", a.Type, flag),
				Loc:  a.Location,
				Hint: "parameters take a value: -key=value",
			}
		}
	}
	return nil
}

func describeArity(s schema) string {
	switch {
	case s.maxArgs == 0:
		return "no positional arguments"
	case s.maxArgs < 0:
		return fmt.Sprintf("at least %d positional argument(s)", s.minArgs)
	default:
		return fmt.Sprintf("%d to %d positional arguments", s.minArgs, s.maxArgs)
	}
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
