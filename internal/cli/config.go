package cli

// Config holds the configuration for a CLI run
type Config struct {
	// Patterns are go/packages patterns such as ./... to load contracts from
	Patterns []string

	// Dir is the directory patterns are resolved against; defaults to the
	// working directory
	Dir string

	// ModuleName is reported alongside results
	// If empty, will be determined from go.mod file
	ModuleName string

	// All includes interfaces that carry no //facet::contract annotation
	All bool

	// Tests includes _test.go files
	Tests bool

	// JSON switches inspect output to JSON
	JSON bool

	// Expr is the matcher expression for the match command
	Expr string

	// Verbose enables detailed logging and error reporting
	Verbose bool

	// Quiet only shows errors and final results
	Quiet bool
}

func (c Config) patterns() []string {
	if len(c.Patterns) == 0 {
		return []string{"./..."}
	}
	return c.Patterns
}
