package manifest_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/trestle"
	"github.com/aretw0/trestle/pkg/adapters/process"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/aretw0/trestle/pkg/manifest"
	"github.com/aretw0/trestle/pkg/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const pipeline = `
parameters:
  - name: target
    type: text
    aliases: [--target]
commands:
  - name: deploy
    action: record
    required_params: [target]
    require_before:
      - name: build
        action: record
  - name: cleanup
    action: record
    phase: teardown
`

func recorder(calls *[]string) *registry.Registry {
	actions := registry.NewRegistry()
	actions.Register("record", func(ctx context.Context, args map[string]any) error {
		*calls = append(*calls, args["target"].(string))
		return nil
	})
	return actions
}

func TestLoader_RegisterAndRun(t *testing.T) {
	var calls []string
	actions := registry.NewRegistry()
	actions.Register("record", func(ctx context.Context, args map[string]any) error {
		calls = append(calls, "called")
		return nil
	})

	defs, err := manifest.NewLoader(manifest.WithActions(actions)).Load([]byte(pipeline), manifest.FormatYAML)
	require.NoError(t, err)
	require.Len(t, defs.Commands, 2)
	assert.True(t, defs.Commands[0].RequireBefore[0].IsInline())

	eng, err := trestle.New()
	require.NoError(t, err)
	require.NoError(t, eng.Register(defs))
	require.NoError(t, eng.SetFlag("--target", "prod"))

	report, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Len(t, calls, 3)

	build, ok := eng.Command("build")
	require.True(t, ok)
	assert.Equal(t, "main", build.Phase)
}

func TestLoader_MissingActions(t *testing.T) {
	_, err := manifest.NewLoader().Load([]byte(pipeline), manifest.FormatYAML)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	defs, err := manifest.NewLoader(manifest.WithMissingActions(true)).Load([]byte(pipeline), manifest.FormatYAML)
	require.NoError(t, err)
	require.NotNil(t, defs.Commands[0].Action)
	assert.ErrorIs(t, defs.Commands[0].Action(context.Background(), nil), domain.ErrNotFound)
}

func TestLoader_ActionAndExecExclusive(t *testing.T) {
	_, err := manifest.NewLoader(manifest.WithRunner(process.NewRunner())).Load([]byte(`
commands:
  - name: a
    action: x
    exec: {command: "true"}
`), manifest.FormatYAML)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mutually exclusive")
}

func TestLoader_Exec(t *testing.T) {
	runner := process.NewRunner()
	runner.Register("lint", "true")

	defs, err := manifest.NewLoader(manifest.WithRunner(runner)).Load([]byte(`
commands:
  - name: lint
    exec: {program: lint}
`), manifest.FormatYAML)
	require.NoError(t, err)
	assert.NotNil(t, defs.Commands[0].Action)

	_, err = manifest.NewLoader(manifest.WithRunner(runner)).Load([]byte(`
commands:
  - name: adhoc
    exec: {command: make}
`), manifest.FormatYAML)
	assert.Error(t, err, "inline execution is disabled by default")

	_, err = manifest.NewLoader().Load([]byte(`
commands:
  - name: lint
    exec: {program: lint}
`), manifest.FormatYAML)
	assert.Error(t, err, "no runner configured")
}

func TestLoader_Includes(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	write("params.toml", `
[[parameters]]
name = "target"
type = "text"
`)
	write("shared.yaml", "include: [params.toml]\ncommands:\n  - name: build\n    action: record\n")
	main := write("main.yaml", "include: [shared.yaml, params.toml]\ncommands:\n  - name: deploy\n    action: record\n    require_before: [build]\n")

	var calls []string
	defs, err := manifest.NewLoader(manifest.WithActions(recorder(&calls))).LoadFile(main)
	require.NoError(t, err)
	require.Len(t, defs.Parameters, 1, "a file included twice is loaded once")
	require.Len(t, defs.Commands, 2)
	assert.Equal(t, "build", defs.Commands[0].Name)
	assert.Equal(t, "deploy", defs.Commands[1].Name)

	loop := write("loop.yaml", "include: [loop.yaml]\n")
	_, err = manifest.NewLoader().LoadFile(loop)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "include cycle detected")

	_, err = manifest.NewLoader().LoadFile(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
