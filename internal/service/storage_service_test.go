package service

import (
	"ai_sensei_backend/internal/config"
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLocalProvider(t *testing.T) (*LocalStorageProvider, string) {
	t.Helper()
	dir := t.TempDir()
	root := filepath.Join(dir, "uploads")
	require.NoError(t, os.MkdirAll(root, 0755))
	return &LocalStorageProvider{Config: &config.StorageConfig{Type: "local", LocalPath: root}}, dir
}

func TestLocalProviderRoundTrip(t *testing.T) {
	p, _ := newLocalProvider(t)
	ctx := context.Background()

	_, err := p.Upload(ctx, "sources/lesson-1/kapitola.txt", bytes.NewReader([]byte("obsah")), 5, "text/plain")
	require.NoError(t, err)

	data, err := p.Download(ctx, "sources/lesson-1/kapitola.txt")
	require.NoError(t, err)
	assert.Equal(t, "obsah", string(data))

	objects, err := p.List(ctx, "sources/lesson-1")
	require.NoError(t, err)
	require.Len(t, objects, 1)
	assert.Equal(t, "kapitola.txt", objects[0].Name)

	require.NoError(t, p.Delete(ctx, "sources/lesson-1/kapitola.txt"))
	_, err = p.Download(ctx, "sources/lesson-1/kapitola.txt")
	assert.Error(t, err)
}

func TestLocalProviderStaysInsideRoot(t *testing.T) {
	p, dir := newLocalProvider(t)
	ctx := context.Background()

	secret := filepath.Join(dir, "secret.txt")
	require.NoError(t, os.WriteFile(secret, []byte("db password: hunter2"), 0644))

	_, err := p.Download(ctx, "../secret.txt")
	assert.Error(t, err)

	_, err = p.Download(ctx, "sources/../../secret.txt")
	assert.Error(t, err)

	assert.Error(t, p.Delete(ctx, "../secret.txt"))
	_, err = os.Stat(secret)
	assert.NoError(t, err)

	_, err = p.Upload(ctx, "../evil.txt", bytes.NewReader([]byte("x")), 1, "text/plain")
	assert.Error(t, err)
	_, err = os.Stat(filepath.Join(dir, "evil.txt"))
	assert.True(t, os.IsNotExist(err))
}
