package cli

import (
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/fatih/color"

	"github.com/toyz/facet/internal/annotations"
	"github.com/toyz/facet/pkg/facet"
)

// DiagnosticReporter provides user-friendly error reporting
type DiagnosticReporter struct {
	verbose bool
	out     io.Writer
}

// NewDiagnosticReporter creates a new diagnostic reporter writing to out
func NewDiagnosticReporter(out io.Writer, verbose bool) *DiagnosticReporter {
	return &DiagnosticReporter{verbose: verbose, out: out}
}

// ReportWarning prints a single warning line
func (r *DiagnosticReporter) ReportWarning(message string) {
	warn := color.New(color.FgYellow, color.Bold)
	warn.Fprint(r.out, "! ")
	fmt.Fprintf(r.out, "%s\n", message)
}

// ReportError prints err with whatever context and suggestions it carries.
// Aggregated errors are reported one by one.
func (r *DiagnosticReporter) ReportError(err error) {
	if err == nil {
		return
	}

	var multi *facet.MultipleErrors
	if errors.As(err, &multi) && len(multi.Errors) > 1 {
		fmt.Fprintf(r.out, "\nERROR: %d problems found\n", len(multi.Errors))
		for i, e := range multi.Errors {
			fmt.Fprintf(r.out, "\n[%d]\n", i+1)
			r.report(e)
		}
		fmt.Fprintln(r.out)
		return
	}

	fmt.Fprintf(r.out, "\nERROR\n")
	r.report(err)
	fmt.Fprintln(r.out)
}

func (r *DiagnosticReporter) report(err error) {
	var annErr annotations.AnnotationError
	if errors.As(err, &annErr) {
		fmt.Fprintf(r.out, "Type: %s\n", annErr.Code())
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
		if hint := annErr.Suggestion(); hint != "" {
			r.printSuggestions([]string{hint})
		}
		return
	}

	var fe facet.Error
	if !errors.As(err, &fe) {
		fmt.Fprintf(r.out, "Message: %s\n", err.Error())
		return
	}

	fmt.Fprintf(r.out, "Type: %s\n", fe.ErrorCode())
	fmt.Fprintf(r.out, "Message: %s\n", err.Error())

	// In verbose mode, show the underlying cause if available
	if r.verbose && fe.Unwrap() != nil {
		fmt.Fprintf(r.out, "Underlying cause: %s\n", fe.Unwrap().Error())
	}
	if ctx := fe.Context(); r.verbose && len(ctx) > 0 {
		r.printContext(ctx)
	}
	if s := fe.Suggestions(); len(s) > 0 {
		r.printSuggestions(s)
	}
}

func (r *DiagnosticReporter) printContext(ctx map[string]interface{}) {
	keys := make([]string, 0, len(ctx))
	for k := range ctx {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Fprintf(r.out, "Context:\n")
	for _, k := range keys {
		fmt.Fprintf(r.out, "  %s: %v\n", k, ctx[k])
	}
}

func (r *DiagnosticReporter) printSuggestions(suggestions []string) {
	fmt.Fprintf(r.out, "Suggestions:\n")
	for _, s := range suggestions {
		fmt.Fprintf(r.out, "  - %s\n", s)
	}
}
