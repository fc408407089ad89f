package trestle_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/trestle"
	"github.com/aretw0/trestle/pkg/adapters/memory"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, map[string]any) error { return nil }

func newEngine(t *testing.T, opts ...trestle.Option) *trestle.Engine {
	t.Helper()
	eng, err := trestle.New(opts...)
	require.NoError(t, err)
	return eng
}

func TestNew_PhaseValidation(t *testing.T) {
	_, err := trestle.New(trestle.WithPhases())
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = trestle.New(trestle.WithPhases("a", "a"))
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = trestle.New(trestle.WithPhases("pre", "post"))
	assert.ErrorIs(t, err, domain.ErrValidation, "default phase main is not configured")

	eng, err := trestle.New(trestle.WithPhases("pre", "post"), trestle.WithDefaultPhase("pre"))
	require.NoError(t, err)
	assert.Equal(t, []string{"pre", "post"}, eng.Phases())
}

func TestEngine_TypeErrorNamesParameter(t *testing.T) {
	eng := newEngine(t)
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "timeout", Type: domain.ParamNumber}))

	err := eng.SetValue("timeout", "fast")
	require.Error(t, err)

	var typeErr *domain.TypeError
	require.True(t, errors.As(err, &typeErr))
	assert.Equal(t, "timeout", typeErr.Param)
	assert.Contains(t, err.Error(), "invalid type for timeout")
}

func TestEngine_DefaultsAtResolution(t *testing.T) {
	eng := newEngine(t)
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "retries", Type: domain.ParamNumber, Default: 3}))

	_, bound := eng.Value("retries")
	assert.False(t, bound, "registration never binds a default")

	eng.ApplyDefaults(domain.BindFinal)
	eng.ApplyDefaults(domain.BindFinal)
	v, bound := eng.Value("retries")
	require.True(t, bound)
	assert.Equal(t, 3.0, v)
}

func TestEngine_ResolveAlias(t *testing.T) {
	eng := newEngine(t)
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "config-infile", Type: domain.ParamText, Aliases: []string{"--save-config"}}))

	name, err := eng.ResolveAlias("--save-config")
	require.NoError(t, err)
	assert.Equal(t, "config-infile", name)

	require.NoError(t, eng.SetFlag("--save-config", "ci.yaml"))
	v, _ := eng.Value("config-infile")
	assert.Equal(t, "ci.yaml", v)

	assert.ErrorIs(t, eng.SetFlag("--nope", "x"), domain.ErrNotFound)
}

func TestEngine_RequiredPredecessorFailed(t *testing.T) {
	eng := newEngine(t)
	invoked := false
	require.NoError(t, eng.AddCommand(domain.Command{
		Name:   "A",
		Action: func(context.Context, map[string]any) error { return errors.New("boom") },
	}))
	require.NoError(t, eng.AddCommand(domain.Command{
		Name:          "B",
		RequireBefore: domain.CommandNames("A"),
		Action: func(context.Context, map[string]any) error {
			invoked = true
			return nil
		},
	}))

	report, err := eng.Run(context.Background())
	require.NoError(t, err)
	assert.False(t, invoked)
	assert.Equal(t, domain.StatusSkipped, report.Status("B"))
	assert.ErrorIs(t, report.Skipped()[0].Err, domain.ErrRequiredPredecessorFailed)
}

func TestEngine_CycleEquivalence(t *testing.T) {
	eng := newEngine(t)
	require.NoError(t, eng.AddCycles(domain.Cycle{
		Name:    "first",
		Members: []domain.CycleMember{{Command: domain.InlineCommand(domain.Command{Name: "x", Action: noop})}},
	}))
	require.NoError(t, eng.AddCycles(domain.Cycle{
		Name:    "second",
		Members: []domain.CycleMember{{Command: domain.CommandName("x")}},
	}))

	require.Len(t, eng.Cycles(), 1)
	assert.Equal(t, "first", eng.Cycles()[0].Name)
}

func TestEngine_Persistence(t *testing.T) {
	ctx := context.Background()
	store := memory.NewStore()

	eng := newEngine(t, trestle.WithStore(store))
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "region", Type: domain.ParamText, Persistent: true}))
	require.NoError(t, eng.AddParameter(domain.Parameter{Name: "token", Type: domain.ParamText}))
	require.NoError(t, eng.SetValue("region", "eu-west-1"))
	require.NoError(t, eng.SetValue("token", "secret"))

	assert.Equal(t, map[string]any{"region": "eu-west-1"}, eng.SerializeForPersistence())
	require.NoError(t, eng.SaveConfig(ctx, "ci"))

	restored := newEngine(t, trestle.WithStore(store))
	require.NoError(t, restored.AddParameter(domain.Parameter{Name: "region", Type: domain.ParamText, Persistent: true}))
	require.NoError(t, restored.LoadConfig(ctx, "ci"))
	v, _ := restored.Value("region")
	assert.Equal(t, "eu-west-1", v)

	assert.ErrorIs(t, restored.LoadConfig(ctx, "missing"), domain.ErrProfileNotFound)
	assert.ErrorIs(t, newEngine(t).SaveConfig(ctx, "ci"), trestle.ErrNoStore)
}

func TestEngine_PlanAndIntrospection(t *testing.T) {
	eng := newEngine(t)
	require.NoError(t, eng.AddCommand(domain.Command{Name: "deploy", Action: noop, GoesAfter: domain.CommandNames("build")}))
	require.NoError(t, eng.AddCommand(domain.Command{Name: "build", Action: noop}))
	require.NoError(t, eng.AddCommand(domain.Command{Name: "debug-dump", Action: noop, Hidden: true, Phase: "teardown"}))

	plans, err := eng.Plan()
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"build", "deploy"}, plans[1].Order)
	assert.Equal(t, []string{"debug-dump"}, plans[2].Order)

	assert.Len(t, eng.Commands(), 3)
	assert.Len(t, eng.Visible(), 2)
	cmd, ok := eng.Command("deploy")
	require.True(t, ok)
	assert.Equal(t, "main", cmd.Phase)
}
