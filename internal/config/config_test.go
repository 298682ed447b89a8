package config

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, localPath string) string {
	t.Helper()
	dir := t.TempDir()
	content := fmt.Sprintf(`server:
  port: "8080"
  mode: debug
jwt:
  secret: test-secret
  expire_hours: 1
storage:
  type: local
  local_path: %s
`, localPath)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0644))
	return dir
}

func TestLoadConfigCreatesStorageDir(t *testing.T) {
	viper.Reset()
	uploads := filepath.Join(t.TempDir(), "uploads")
	dir := writeConfigFile(t, uploads)

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)
	assert.Equal(t, uploads, cfg.Storage.LocalPath)

	info, err := os.Stat(uploads)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestLoadConfigFailsOnUncreatableStorageDir(t *testing.T) {
	viper.Reset()
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))
	dir := writeConfigFile(t, filepath.Join(blocker, "uploads"))

	_, err := LoadConfig(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage directory")
}
