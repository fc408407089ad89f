package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/trestle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunConfigStoreContract runs a suite of tests to verify that a ConfigStore implementation
// adheres to the defined interface contract.
func RunConfigStoreContract(t *testing.T, store ConfigStore) {
	ctx := context.Background()
	profile := "contract-test-profile-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		values := map[string]any{
			"region":  "eu-west-1",
			"retries": 3,
			"tags":    []any{"a", "b"},
			"verbose": true,
		}

		err := store.Save(ctx, profile, values)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, "eu-west-1", loaded["region"])
		assert.Equal(t, true, loaded["verbose"])
		// Serializing stores may widen numbers; the parameter registry coerces them back on load.
		assert.NotNil(t, loaded["retries"])
		assert.Len(t, loaded["tags"], 2)
	})

	t.Run("Save replaces", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, profile, map[string]any{"region": "us-east-1"}))

		loaded, err := store.Load(ctx, profile)
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"region": "us-east-1"}, loaded)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+profile)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, profile, map[string]any{"region": "eu"}))

		err := store.Delete(ctx, profile)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, profile)
		assert.ErrorIs(t, err, domain.ErrProfileNotFound, "Load after Delete should return ErrProfileNotFound")

		assert.NoError(t, store.Delete(ctx, profile), "deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := profile + "-1"
		id2 := profile + "-2"
		_ = store.Save(ctx, id1, map[string]any{"n": 1})
		_ = store.Save(ctx, id2, map[string]any{"n": 2})

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		profiles, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, profiles, id1)
		assert.Contains(t, profiles, id2)
	})
}
