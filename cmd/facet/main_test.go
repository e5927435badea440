package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const greeterSource = `package greet

//facet::contract
type Greeter interface {
	//facet::marker polite
	Greet(name string) string
}
`

func writeModule(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/greet\n\ngo 1.21\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "greet.go"), []byte(greeterSource), 0o644))
	return dir
}

func runCLI(args ...string) (int, string, string) {
	var stdout, stderr bytes.Buffer
	code := run(context.Background(), args, &stdout, &stderr)
	return code, stdout.String(), stderr.String()
}

func TestCLIArgumentParsing(t *testing.T) {
	t.Run("help flag", func(t *testing.T) {
		code, _, stderr := runCLI("--help")
		assert.Equal(t, 0, code)
		assert.Contains(t, stderr, "Usage:")
		assert.Contains(t, stderr, "Facet Contract Inspector")
		assert.Contains(t, stderr, "-module")
	})

	t.Run("no arguments", func(t *testing.T) {
		code, _, stderr := runCLI()
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, "a command is required")
	})

	t.Run("unknown command", func(t *testing.T) {
		code, _, stderr := runCLI("generate", "./...")
		assert.Equal(t, 1, code)
		assert.Contains(t, stderr, `unknown command "generate"`)
	})

	t.Run("unknown flag", func(t *testing.T) {
		code, _, _ := runCLI("inspect", "--clean")
		assert.Equal(t, 1, code)
	})
}

func TestInspectCommand(t *testing.T) {
	dir := writeModule(t)

	code, stdout, stderr := runCLI("inspect", "--dir", dir, "./...")
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "greet.Greeter\n  Greet(string) (string) [polite]\n")
	assert.Contains(t, stderr, "Facet: inspect")
	assert.Contains(t, stderr, "Contracts: 1")
	assert.Contains(t, stderr, "Module: example.com/greet")
}

func TestInspectCommand_JSONIsQuiet(t *testing.T) {
	dir := writeModule(t)

	code, stdout, stderr := runCLI("inspect", "--json", "--dir", dir)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, `"name": "Greeter"`)
	assert.NotContains(t, stderr, "Inspection Complete")
}

func TestMatchCommand(t *testing.T) {
	dir := writeModule(t)

	code, stdout, stderr := runCLI("match", "--dir", dir, "--expr", `marker("polite")`)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stdout, "greet.Greeter.Greet(string)")
	assert.Contains(t, stderr, "Selected methods: 1")

	code, _, stderr = runCLI("match", "--dir", dir, "--expr", `name(`)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "Type: ConfigurationError")
}
