package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/toyz/facet/internal/annotations"
	"github.com/toyz/facet/pkg/facet"
)

func TestDiagnosticReporter_ReportWarning(t *testing.T) {
	var out bytes.Buffer
	NewDiagnosticReporter(&out, false).ReportWarning("This is a test warning")
	assert.Contains(t, out.String(), "! This is a test warning")
}

func TestDiagnosticReporter_ReportFacetError(t *testing.T) {
	err := facet.Errorf(facet.ConfigurationErrorCode, "bad expression").
		WithCause(errors.New("unexpected token")).
		WithContext("expr", "name(").
		WithSuggestion("close the parenthesis")

	var quiet bytes.Buffer
	NewDiagnosticReporter(&quiet, false).ReportError(err)
	assert.Contains(t, quiet.String(), "Type: ConfigurationError")
	assert.Contains(t, quiet.String(), "  - close the parenthesis")
	assert.NotContains(t, quiet.String(), "Underlying cause")

	var verbose bytes.Buffer
	NewDiagnosticReporter(&verbose, true).ReportError(err)
	assert.Contains(t, verbose.String(), "Underlying cause: unexpected token")
	assert.Contains(t, verbose.String(), "  expr: name(")
}

func TestDiagnosticReporter_ReportAggregatedErrors(t *testing.T) {
	multi := &facet.MultipleErrors{}
	multi.Add(&annotations.SchemaError{Msg: "marker needs a name", Hint: "add a marker name"})
	multi.Add(errors.New("plain failure"))

	var out bytes.Buffer
	NewDiagnosticReporter(&out, false).ReportError(multi)

	assert.Contains(t, out.String(), "2 problems found")
	assert.Contains(t, out.String(), "Type: SchemaError")
	assert.Contains(t, out.String(), "  - add a marker name")
	assert.Contains(t, out.String(), "Message: plain failure")
}
