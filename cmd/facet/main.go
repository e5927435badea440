package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/lmittmann/tint"

	"github.com/toyz/facet/internal/cli"
	"github.com/toyz/facet/internal/utils"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx, os.Args[1:], os.Stdout, os.Stderr))
}

func usage(w io.Writer, fs *flag.FlagSet) func() {
	return func() {
		fmt.Fprintf(w, "Usage: facet <command> [options] <package-patterns...>\n\n")
		fmt.Fprintf(w, "Facet Contract Inspector\n")
		fmt.Fprintf(w, "Lists //facet::contract interfaces and evaluates matcher expressions against them.\n\n")
		fmt.Fprintf(w, "Commands:\n")
		fmt.Fprintf(w, "  inspect            List contracts, their methods and markers\n")
		fmt.Fprintf(w, "  match              List the methods a matcher expression selects\n")
		fmt.Fprintf(w, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(w, "\nExamples:\n")
		fmt.Fprintf(w, "  facet inspect ./...                              # Annotated contracts in the module\n")
		fmt.Fprintf(w, "  facet inspect --all --json ./internal/...        # Every interface, as JSON\n")
		fmt.Fprintf(w, "  facet match --expr 'marker(\"write\")' ./...       # Methods marked write\n")
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("facet", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		moduleFlag  = fs.String("module", "", "Module name to report (defaults to go.mod module)")
		dirFlag     = fs.String("dir", "", "Directory package patterns are resolved against")
		verboseFlag = fs.Bool("verbose", false, "Enable verbose output and detailed error reporting")
		quietFlag   = fs.Bool("quiet", false, "Only show errors and final results")
		jsonFlag    = fs.Bool("json", false, "Write results as JSON")
		allFlag     = fs.Bool("all", false, "Include interfaces without //facet::contract")
		testsFlag   = fs.Bool("tests", false, "Include _test.go files")
		exprFlag    = fs.String("expr", "", "Matcher expression for the match command")
	)
	fs.Usage = usage(stderr, fs)

	if len(args) == 0 {
		fmt.Fprintf(stderr, "Error: a command is required\n\n")
		fs.Usage()
		return 1
	}
	command := args[0]
	if command == "-h" || command == "--help" || command == "help" {
		fs.Usage()
		return 0
	}
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 1
	}

	config := cli.Config{
		Patterns:   fs.Args(),
		Dir:        *dirFlag,
		ModuleName: *moduleFlag,
		All:        *allFlag,
		Tests:      *testsFlag,
		JSON:       *jsonFlag,
		Expr:       *exprFlag,
		Verbose:    *verboseFlag,
		Quiet:      *quietFlag,
	}

	// Create diagnostic system based on flags
	var diagnostics *utils.DiagnosticSystem
	switch {
	case config.Quiet || config.JSON:
		diagnostics = utils.NewQuietDiagnostics()
	case config.Verbose:
		diagnostics = utils.NewVerboseDiagnostics()
	default:
		diagnostics = utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	}
	diagnostics.SetOutput(stderr, stderr)

	level := slog.LevelWarn
	if config.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(tint.NewHandler(stderr, &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05",
	}))

	reporter := cli.NewDiagnosticReporter(stderr, config.Verbose)
	runner := cli.NewRunner(config, diagnostics, logger)

	if config.Verbose {
		diagnostics.Subsection("Configuration")
		diagnostics.List("Patterns: %s", strings.Join(fs.Args(), ", "))
		if config.ModuleName != "" {
			diagnostics.List("Custom module: %s", config.ModuleName)
		}
	}

	switch command {
	case "inspect":
		diagnostics.Header("inspect")
		report, err := runner.Inspect(ctx, stdout)
		if err != nil {
			reporter.ReportError(err)
			return 1
		}
		diagnostics.Summary("Inspection Complete!", map[string]interface{}{
			"Module":    report.Module,
			"Contracts": len(report.Contracts),
			"Methods":   report.Methods(),
		})
	case "match":
		diagnostics.Header("match " + config.Expr)
		selected, err := runner.Match(ctx, stdout)
		if err != nil {
			reporter.ReportError(err)
			return 1
		}
		diagnostics.Summary("Match Complete!", map[string]interface{}{
			"Selected methods": len(selected),
		})
	default:
		fmt.Fprintf(stderr, "Error: unknown command %q\n\n", command)
		fs.Usage()
		return 1
	}
	return 0
}
