package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigRegistryOverride(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "custom.yaml"), []byte("registryPath: ./from-file\n"), 0o644))

	cfg := loadConfig(GlobalOptions{ConfigPath: "custom.yaml"})
	assert.Equal(t, "./from-file", cfg.RegistryPath)

	cfg = loadConfig(GlobalOptions{ConfigPath: "custom.yaml", RegistryPath: "/tmp/registry"})
	assert.Equal(t, "/tmp/registry", cfg.RegistryPath)
}
