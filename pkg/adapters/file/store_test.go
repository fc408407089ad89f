package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/trestle/pkg/adapters/file"
	"github.com/aretw0/trestle/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Ensure Store implements ConfigStore
var _ ports.ConfigStore = (*file.Store)(nil)

func TestFileStore_Contract(t *testing.T) {
	ports.RunConfigStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_WritesYAML(t *testing.T) {
	dir := t.TempDir()
	store := file.New(dir)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, "ci", map[string]any{"region": "eu-west-1"}))

	data, err := os.ReadFile(filepath.Join(dir, "ci.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "region: eu-west-1\n", string(data))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files are left behind")
}

func TestFileStore_InvalidProfile(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	assert.Error(t, store.Save(ctx, "", nil))
	assert.Error(t, store.Save(ctx, "../escape", nil))
	_, err := store.Load(ctx, "a/b")
	assert.Error(t, err)
}

func TestFileStore_ListMissingDir(t *testing.T) {
	store := file.New(filepath.Join(t.TempDir(), "missing"))
	profiles, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, profiles)
}
