package annotations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParser_Parse(t *testing.T) {
	loc := SourceLocation{File: "store.go", Line: 12, Column: 2}
	tests := []struct {
		name    string
		comment string
		typ     AnnotationType
		args    []string
		params  map[string]string
	}{
		{"contract", "//facet::contract", ContractAnnotation, nil, map[string]string{}},
		{"contract with name", `//facet::contract -name="Key Value Store"`, ContractAnnotation, nil, map[string]string{"name": "Key Value Store"}},
		{"contract with bare name", "//facet::contract -name=Store", ContractAnnotation, nil, map[string]string{"name": "Store"}},
		{"single marker", "//facet::marker idempotent", MarkerAnnotation, []string{"idempotent"}, map[string]string{}},
		{"several markers", "// facet::marker read-only cache.hit \"slow path\"", MarkerAnnotation, []string{"read-only", "cache.hit", "slow path"}, map[string]string{}},
		{"default", "//facet::default", DefaultAnnotation, nil, map[string]string{}},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := p.Parse(tt.comment, loc)
			require.NoError(t, err)
			assert.Equal(t, tt.typ, parsed.Type)
			assert.Equal(t, tt.args, parsed.Args)
			assert.Equal(t, tt.params, parsed.Parameters)
			assert.Equal(t, loc, parsed.Location)
			assert.Equal(t, tt.comment, parsed.Raw)
		})
	}
}

func TestParser_Errors(t *testing.T) {
	loc := SourceLocation{File: "store.go", Line: 3, Column: 1}
	tests := []struct {
		name    string
		comment string
		code    ErrorCode
	}{
		{"not an annotation", "// plain comment", SyntaxErrorCode},
		{"unknown type", "//facet::route GET /x", SyntaxErrorCode},
		{"marker without name", "//facet::marker", SchemaErrorCode},
		{"contract with args", "//facet::contract Store", SchemaErrorCode},
		{"unknown parameter", "//facet::contract -label=x", SchemaErrorCode},
		{"unknown flag", "//facet::contract -name", SchemaErrorCode},
	}

	p := NewParser()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.comment, loc)
			require.Error(t, err)
			var aerr AnnotationError
			require.True(t, errors.As(err, &aerr))
			assert.Equal(t, tt.code, aerr.Code())
			assert.Equal(t, loc, aerr.Location())
			assert.NotEmpty(t, aerr.Suggestion())
			assert.Contains(t, err.Error(), "store.go:3:1")
		})
	}
}

func TestParser_ParseComments(t *testing.T) {
	p := NewParser()
	lines := []string{
		"// Get returns the value stored under key.",
		"//facet::marker read",
		"//facet::marker idempotent cached",
	}
	parsed, err := p.ParseComments(lines, SourceLocation{File: "store.go", Line: 10})
	require.NoError(t, err)
	require.Len(t, parsed, 2)
	assert.Equal(t, 11, parsed[0].Location.Line)
	assert.Equal(t, []string{"idempotent", "cached"}, parsed[1].Args)

	_, err = p.ParseComments([]string{"//facet::marker"}, SourceLocation{})
	assert.Error(t, err)
}

func TestAnnotationHelpers(t *testing.T) {
	assert.True(t, IsAnnotation("  //facet::contract"))
	assert.False(t, IsAnnotation("// facet::contract"))

	a := &ParsedAnnotation{Parameters: map[string]string{"name": "x"}, Flags: []string{"v"}}
	assert.Equal(t, "x", a.GetString("name"))
	assert.Equal(t, "d", a.GetString("missing", "d"))
	assert.True(t, a.HasFlag("v"))

	typ, err := ParseAnnotationType("marker")
	require.NoError(t, err)
	assert.Equal(t, "marker", typ.String())
	_, err = ParseAnnotationType("nope")
	assert.Error(t, err)
}
