package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/toyz/facet/internal/utils"
	"github.com/toyz/facet/pkg/facet"
)

const kvSource = `package kv

//facet::contract -name="Key Value"
type Store interface {
	//facet::marker read
	Get(key string) ([]byte, error)
	//facet::marker write
	Put(key string, value []byte) error
	//facet::default
	Keys() []string
}

type Closer interface {
	Close() error
}
`

func writeModule(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "go.mod"), []byte("module example.com/store\n\ngo 1.21\n"), 0o644))
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func newTestRunner(t *testing.T, cfg Config) *Runner {
	t.Helper()
	diagnostics := utils.NewDiagnosticSystem(utils.DiagnosticInfo)
	var sink bytes.Buffer
	diagnostics.SetOutput(&sink, &sink)
	return NewRunner(cfg, diagnostics, nil)
}

func TestRunner_Inspect(t *testing.T) {
	dir := writeModule(t, map[string]string{"kv.go": kvSource})

	var out bytes.Buffer
	report, err := newTestRunner(t, Config{Dir: dir}).Inspect(context.Background(), &out)
	require.NoError(t, err)

	assert.Equal(t, "example.com/store", report.Module)
	require.Len(t, report.Contracts, 1)
	assert.Equal(t, 3, report.Methods())
	assert.Contains(t, out.String(), "kv.Store (Key Value)\n")
	assert.Contains(t, out.String(), "  Get(string) ([]byte, error) [read]\n")
	assert.Contains(t, out.String(), "  Keys() ([]string) default\n")
}

func TestRunner_InspectAllAsJSON(t *testing.T) {
	dir := writeModule(t, map[string]string{"kv.go": kvSource})

	var out bytes.Buffer
	_, err := newTestRunner(t, Config{Dir: dir, All: true, JSON: true, ModuleName: "custom/mod"}).
		Inspect(context.Background(), &out)
	require.NoError(t, err)

	var decoded struct {
		Module    string `json:"module"`
		Contracts []struct {
			Name      string `json:"name"`
			Annotated bool   `json:"annotated"`
		} `json:"contracts"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &decoded))
	assert.Equal(t, "custom/mod", decoded.Module)
	require.Len(t, decoded.Contracts, 2)

	annotated := map[string]bool{}
	for _, c := range decoded.Contracts {
		annotated[c.Name] = c.Annotated
	}
	assert.Equal(t, map[string]bool{"Store": true, "Closer": false}, annotated)
}

func TestRunner_Match(t *testing.T) {
	dir := writeModule(t, map[string]string{"kv.go": kvSource})

	tests := []struct {
		name string
		expr string
		want []string
	}{
		{"by marker", `marker("write")`, []string{"Put"}},
		{"by signature", `sig("Get(string)")`, []string{"Get"}},
		{"negated", `contract(kv.Store) && !marker("read")`, []string{"Put", "Keys"}},
		{"no match", `name("Delete")`, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			selected, err := newTestRunner(t, Config{Dir: dir, Expr: tt.expr}).Match(context.Background(), &out)
			require.NoError(t, err)

			var names []string
			for _, s := range selected {
				assert.Equal(t, "kv.Store", s.Contract)
				names = append(names, s.Method)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}
}

func TestRunner_MatchRejectsBadExpressions(t *testing.T) {
	var out bytes.Buffer
	_, err := newTestRunner(t, Config{}).Match(context.Background(), &out)
	assert.ErrorContains(t, err, "--expr")

	_, err = newTestRunner(t, Config{Expr: `name(`}).Match(context.Background(), &out)
	assert.Equal(t, facet.ConfigurationErrorCode, facet.CodeOf(err))
}

func TestRunner_LoadErrors(t *testing.T) {
	dir := writeModule(t, map[string]string{"kv.go": "package kv\n\nfunc Broken() int { return \"x\" }\n"})

	var out bytes.Buffer
	_, err := newTestRunner(t, Config{Dir: dir}).Inspect(context.Background(), &out)
	assert.Error(t, err)
}
