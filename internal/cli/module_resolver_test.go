package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestModuleResolver_ResolveModuleName(t *testing.T) {
	resolver := NewModuleResolver()

	t.Run("custom module name provided", func(t *testing.T) {
		result, err := resolver.ResolveModuleName("github.com/custom/module", "")
		require.NoError(t, err)
		assert.Equal(t, "github.com/custom/module", result)
	})

	t.Run("read from go.mod file", func(t *testing.T) {
		dir := writeModule(t, nil)
		nested := filepath.Join(dir, "pkg", "store")
		require.NoError(t, os.MkdirAll(nested, 0o755))

		result, err := resolver.ResolveModuleName("", nested)
		require.NoError(t, err)
		assert.Equal(t, "example.com/store", result)
	})

	t.Run("no go.mod file found", func(t *testing.T) {
		_, err := resolver.ResolveModuleName("", t.TempDir())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "go.mod file not found")
		assert.Contains(t, err.Error(), "--module")
	})
}

func TestModuleResolver_BuildPackagePath(t *testing.T) {
	dir := writeModule(t, nil)
	nested := filepath.Join(dir, "internal", "kv")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, err := NewModuleResolver().BuildPackagePath(nested)
	require.NoError(t, err)
	assert.Equal(t, "example.com/store/internal/kv", path)
}
