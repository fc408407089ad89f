package process

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/aretw0/trestle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnv(t *testing.T) {
	env := Env(map[string]any{
		"dry-run": true,
		"count":   2,
		"tags":    []string{"a", "b"},
		"note":    nil,
	})
	assert.Equal(t, []string{
		"TRESTLE_ARG_COUNT=2",
		"TRESTLE_ARG_DRY_RUN=true",
		"TRESTLE_ARG_NOTE=",
		`TRESTLE_ARG_TAGS=["a","b"]`,
	}, env)
}

func TestRunner(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("uses sh")
	}

	var out bytes.Buffer
	r := NewRunner(WithOutput(&out))
	r.Register("greet", "sh", "-c", "echo hello $TRESTLE_ARG_NAME")
	r.Register("broken", "sh", "-c", "echo oops >&2; exit 3")

	t.Run("Executes Registered Program", func(t *testing.T) {
		out.Reset()
		action, err := r.Action("greet")
		require.NoError(t, err)
		require.NoError(t, action(context.Background(), map[string]any{"name": "trestle"}))
		assert.Equal(t, "hello trestle\n", out.String())
	})

	t.Run("Reports Stderr On Failure", func(t *testing.T) {
		action, err := r.Action("broken")
		require.NoError(t, err)
		err = action(context.Background(), nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "program broken failed")
		assert.Contains(t, err.Error(), "oops")
	})

	t.Run("Rejects Unregistered Program", func(t *testing.T) {
		_, err := r.Action("hacker_script")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})

	t.Run("Inline Requires Opt-In", func(t *testing.T) {
		_, err := r.Inline("sh", "-c", "true")
		assert.Error(t, err)

		inline := NewRunner(WithInlineExecution(true), WithOutput(&out))
		action, err := inline.Inline("sh", "-c", "exit 0")
		require.NoError(t, err)
		assert.NoError(t, action(context.Background(), nil))
	})
}

func TestLoadPrograms(t *testing.T) {
	dir := t.TempDir()

	programs, err := LoadPrograms(filepath.Join(dir, "missing.yaml"))
	require.NoError(t, err)
	assert.Empty(t, programs)

	path := filepath.Join(dir, "programs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
programs:
  - name: lint
    command: golangci-lint
    args: [run]
  - name: nameless
    command: "true"
  - command: skipped
`), 0o644))

	programs, err = LoadPrograms(path)
	require.NoError(t, err)
	require.Len(t, programs, 2)
	assert.Equal(t, []string{"run"}, programs["lint"].Args)

	jsonPath := filepath.Join(dir, "programs.json")
	require.NoError(t, os.WriteFile(jsonPath, []byte(`{"programs":[{"name":"fmt","command":"gofmt"}]}`), 0o644))
	programs, err = LoadPrograms(jsonPath)
	require.NoError(t, err)
	assert.Equal(t, "gofmt", programs["fmt"].Command)

	require.NoError(t, os.WriteFile(path, []byte("programs: [unclosed"), 0o644))
	_, err = LoadPrograms(path)
	assert.Error(t, err)
}
