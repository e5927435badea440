package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/toyz/facet/internal/utils"
	"github.com/toyz/facet/pkg/facet/expr"
	"github.com/toyz/facet/pkg/facet/source"
)

// Runner executes the facet developer commands
type Runner struct {
	config      Config
	diagnostics *utils.DiagnosticSystem
	logger      *slog.Logger
	resolver    *ModuleResolver
}

// NewRunner creates a runner. A nil logger discards log output.
func NewRunner(config Config, diagnostics *utils.DiagnosticSystem, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		config:      config,
		diagnostics: diagnostics,
		logger:      logger,
		resolver:    NewModuleResolver(),
	}
}

// Report is the result of an inspect run
type Report struct {
	Module    string                `json:"module,omitempty"`
	Contracts []source.ContractInfo `json:"contracts"`
}

// Methods returns the number of methods across all contracts
func (r *Report) Methods() int {
	n := 0
	for _, c := range r.Contracts {
		n += len(c.Methods)
	}
	return n
}

// Selection is a method selected by a matcher expression
type Selection struct {
	Contract  string `json:"contract"`
	Method    string `json:"method"`
	Signature string `json:"signature"`
	Location  string `json:"location"`
}

func (r *Runner) load(ctx context.Context) (*Report, error) {
	module, err := r.resolver.ResolveModuleName(r.config.ModuleName, r.config.Dir)
	if err != nil {
		// module name is informational only
		r.logger.Warn("module name unavailable", "error", err)
	}

	r.diagnostics.Verbose("Loading %s", strings.Join(r.config.patterns(), ", "))
	loader := source.NewLoader(source.Options{
		Dir:    r.config.Dir,
		All:    r.config.All,
		Tests:  r.config.Tests,
		Logger: r.logger,
	})
	contracts, err := loader.Load(ctx, r.config.patterns()...)
	if err != nil {
		return nil, err
	}
	return &Report{Module: module, Contracts: contracts}, nil
}

// Inspect loads contracts and writes them to out, as JSON when configured
func (r *Runner) Inspect(ctx context.Context, out io.Writer) (*Report, error) {
	report, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	if r.config.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return nil, fmt.Errorf("failed to encode report: %w", err)
		}
		return report, nil
	}

	for _, c := range report.Contracts {
		title := c.Qualified()
		if c.Display != "" && c.Display != c.Name {
			title = fmt.Sprintf("%s (%s)", title, c.Display)
		}
		fmt.Fprintf(out, "%s\n", title)
		r.diagnostics.Verbose("%s declared at %s", c.Qualified(), c.Location)
		for _, m := range c.Methods {
			fmt.Fprintf(out, "  %s", m.Signature())
			if len(m.Results) > 0 {
				fmt.Fprintf(out, " (%s)", strings.Join(m.Results, ", "))
			}
			if len(m.Markers) > 0 {
				fmt.Fprintf(out, " [%s]", strings.Join(m.Markers, " "))
			}
			if m.HasDefault {
				fmt.Fprint(out, " default")
			}
			fmt.Fprintln(out)
		}
	}
	return report, nil
}

// Match reports every method the configured expression selects
func (r *Runner) Match(ctx context.Context, out io.Writer) ([]Selection, error) {
	if strings.TrimSpace(r.config.Expr) == "" {
		return nil, fmt.Errorf("a matcher expression is required (use --expr)")
	}
	e, err := expr.Parse(r.config.Expr)
	if err != nil {
		return nil, err
	}
	r.diagnostics.Debug("Parsed expression: %s", e)

	report, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	var selected []Selection
	for _, c := range report.Contracts {
		for _, m := range c.Methods {
			if !e.Eval(c.Facts(m)) {
				continue
			}
			selected = append(selected, Selection{
				Contract:  c.Qualified(),
				Method:    m.Name,
				Signature: m.Signature(),
				Location:  m.Location.String(),
			})
		}
	}

	if r.config.JSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(selected); err != nil {
			return nil, fmt.Errorf("failed to encode selection: %w", err)
		}
		return selected, nil
	}

	for _, s := range selected {
		fmt.Fprintf(out, "%s.%s\t%s\n", s.Contract, s.Signature, s.Location)
	}
	return selected, nil
}
