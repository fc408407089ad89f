package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/trestle"
	"github.com/aretw0/trestle/pkg/adapters/file"
	"github.com/aretw0/trestle/pkg/adapters/memory"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadSettings(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", `
file: pipeline.yaml
phases: [prepare, run]
default_phase: run
store:
  backend: memory
  ttl: 1m
`)
	t.Setenv("TRESTLE_QUIET", "true")
	t.Setenv("TRESTLE_STORE_PREFIX", "ci:")

	s, err := LoadSettings(NewViper(), cfg)
	require.NoError(t, err)

	assert.Equal(t, "pipeline.yaml", s.File)
	assert.Equal(t, []string{"prepare", "run"}, s.Phases)
	assert.Equal(t, "run", s.DefaultPhase)
	assert.True(t, s.Quiet)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, StoreSettings{Backend: "memory", Path: ".trestle/profiles", RedisAddr: "localhost:6379", Prefix: "ci:", TTL: time.Minute}, s.Store)

	_, err = LoadSettings(NewViper(), filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err, "an explicit config file must exist")
}

func TestOpenStore(t *testing.T) {
	store, closeFn, err := OpenStore(StoreSettings{Backend: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &memory.Store{}, store)
	assert.NoError(t, closeFn())

	store, _, err = OpenStore(StoreSettings{Backend: "file", Path: t.TempDir()})
	require.NoError(t, err)
	assert.IsType(t, &file.Store{}, store)

	_, _, err = OpenStore(StoreSettings{Backend: "etcd"})
	assert.Error(t, err)
}

func TestBind(t *testing.T) {
	eng, err := trestle.New()
	require.NoError(t, err)
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "target", Type: domain.ParamText, Aliases: []string{"--target", "-t"}}))
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "verbose", Type: domain.ParamBoolean, Aliases: []string{"--verbose"}}))
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "retries", Type: domain.ParamInteger, Aliases: []string{"--retries"}}))

	require.NoError(t, Bind(eng, []string{"target=prod"}, []string{"--retries=3", "--verbose"}))
	assert.Equal(t, map[string]any{"target": "prod", "retries": 3, "verbose": true}, eng.Values())

	require.NoError(t, Bind(eng, nil, []string{"-t", "staging"}))
	v, _ := eng.Value("target")
	assert.Equal(t, "staging", v)

	err = Bind(eng, []string{"novalue"}, []string{"--retries", "many", "--unknown", "x", "stray"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid --set")
	assert.ErrorIs(t, err, domain.ErrType)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), `unexpected argument "stray"`)
}

func TestBind_NegativeNumber(t *testing.T) {
	eng, err := trestle.New()
	require.NoError(t, err)
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "offset", Type: domain.ParamNumber, Aliases: []string{"--offset"}}))
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "verbose", Type: domain.ParamBoolean, Aliases: []string{"--verbose"}}))

	require.NoError(t, Bind(eng, nil, []string{"--offset", "-5", "--verbose", "--offset", "-2.5"}))
	assert.Equal(t, map[string]any{"offset": -2.5, "verbose": true}, eng.Values())
}

func TestBind_ImmediateDefaults(t *testing.T) {
	eng, err := trestle.New()
	require.NoError(t, err)
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "region", Type: domain.ParamText, Default: "eu", Registration: domain.RegisterImmediate}))
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "zone", Type: domain.ParamText, Default: "a", Registration: domain.RegisterImmediate, Aliases: []string{"--zone"}}))
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "retries", Type: domain.ParamInteger, Default: 3}))

	require.NoError(t, Bind(eng, nil, []string{"--zone", "b"}))
	assert.Equal(t, map[string]any{"region": "eu", "zone": "b"}, eng.Values())
}

func TestCreateEngine(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "trestle.yaml", `
parameters:
  - name: target
    type: text
    aliases: [--target]
    persistent: true
commands:
  - name: show
    action: echo
    required_params: [target]
  - name: deploy
    action: deploy
    goes_after: [show]
`)
	s := Settings{File: path, Programs: filepath.Join(dir, "programs.yaml")}

	_, err := CreateEngine(s, EngineOptions{})
	assert.ErrorIs(t, err, domain.ErrNotFound, "unknown action outside lenient mode")

	var out bytes.Buffer
	store := memory.NewStore()
	eng, err := CreateEngine(s, EngineOptions{Lenient: true, Out: &out, Store: store})
	require.NoError(t, err)
	require.NoError(t, Bind(eng, nil, []string{"--target", "prod"}))

	report, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusSucceeded, report.Status("show"))
	assert.Equal(t, domain.StatusFailed, report.Status("deploy"))
	assert.Equal(t, "target=prod\n", out.String())

	require.NoError(t, eng.SaveConfig(context.Background(), "ci"))
	saved, err := store.Load(context.Background(), "ci")
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"target": "prod"}, saved)

	_, err = CreateEngine(Settings{File: path, Phases: []string{"only"}}, EngineOptions{Lenient: true})
	assert.ErrorIs(t, err, domain.ErrValidation, "default phase main is not configured")
}

func TestSignalContext(t *testing.T) {
	sc := NewSignalContext(context.Background())
	assert.Nil(t, sc.Signal())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
