package runtime_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/trestle/internal/commands"
	"github.com/aretw0/trestle/internal/cycles"
	"github.com/aretw0/trestle/internal/params"
	"github.com/aretw0/trestle/internal/resolver"
	"github.com/aretw0/trestle/internal/runtime"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type harness struct {
	params   *params.Registry
	commands *commands.Registry
	cycles   *cycles.Manager
	calls    []string
}

func newHarness() *harness {
	p := params.New()
	c := commands.New(p)
	m := cycles.New(c)
	c.SetCycleAttacher(m)
	return &harness{params: p, commands: c, cycles: m}
}

func (h *harness) orchestrator(opts ...runtime.Option) *runtime.Orchestrator {
	return runtime.New(h.params, h.commands, resolver.New(h.commands, h.cycles), opts...)
}

// record returns an action that logs its invocation and then runs fn, if any.
func (h *harness) record(name string, fn func(ctx context.Context, args map[string]any) error) domain.Action {
	return func(ctx context.Context, args map[string]any) error {
		h.calls = append(h.calls, name)
		if fn != nil {
			return fn(ctx, args)
		}
		return nil
	}
}

func (h *harness) add(t *testing.T, def domain.Command, fn func(context.Context, map[string]any) error) {
	t.Helper()
	def.Action = h.record(def.Name, fn)
	require.NoError(t, h.commands.Add(def))
}

func fails(context.Context, map[string]any) error { return errors.New("boom") }

func TestRun_RequiredPredecessorFailed(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "A"}, fails)
	h.add(t, domain.Command{Name: "B", RequireBefore: domain.CommandNames("A")}, nil)
	h.add(t, domain.Command{Name: "C", RequireBefore: domain.CommandNames("B")}, nil)
	h.add(t, domain.Command{Name: "D"}, nil)

	report, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []string{"A", "D"}, h.calls, "B and C are never invoked")
	assert.Equal(t, domain.StatusFailed, report.Status("A"))
	assert.Equal(t, domain.StatusSkipped, report.Status("B"))
	assert.Equal(t, domain.StatusSkipped, report.Status("C"))
	assert.Equal(t, domain.StatusSucceeded, report.Status("D"))

	skipped := report.Skipped()
	require.Len(t, skipped, 2)
	var skip *domain.SkipError
	require.True(t, errors.As(skipped[0].Err, &skip))
	assert.Equal(t, "A", skip.Predecessor)
	assert.Equal(t, "failed", skip.Reason)
	assert.ErrorIs(t, skipped[1].Err, domain.ErrRequiredPredecessorFailed)
	assert.Contains(t, skipped[1].Err.Error(), "skipped")
	assert.False(t, report.OK())
}

func TestRun_PredecessorDidNotRun(t *testing.T) {
	h := newHarness()
	gate := domain.ParamName("enabled")
	require.NoError(t, h.params.Add(domain.Parameter{Name: "enabled", Type: domain.ParamBoolean, Default: false}))
	h.add(t, domain.Command{Name: "A", TriggerParam: &gate}, nil)
	h.add(t, domain.Command{Name: "B", RequireBefore: domain.CommandNames("A")}, nil)

	report, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.calls)

	var skip *domain.SkipError
	require.True(t, errors.As(report.Skipped()[0].Err, &skip))
	assert.Equal(t, "did not run", skip.Reason)
}

func TestRun_PhasesInOrder(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "clean", Phase: "teardown"}, nil)
	h.add(t, domain.Command{Name: "work"}, nil)
	h.add(t, domain.Command{Name: "init", Phase: "setup"}, nil)

	_, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"init", "work", "clean"}, h.calls)
}

func TestRun_MissingRequiredParameters(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.params.Add(domain.Parameter{Name: "target", Type: domain.ParamText, Required: true}))
	h.add(t, domain.Command{Name: "deploy"}, nil)

	_, err := h.orchestrator().Run(context.Background())
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "target")
	assert.Empty(t, h.calls)
}

func TestRun_ArgumentsAndDefaults(t *testing.T) {
	h := newHarness()
	var got map[string]any
	h.add(t, domain.Command{
		Name: "deploy",
		RequiredParams: []domain.ParamRef{
			domain.InlineParam(domain.Parameter{Name: "retries", Type: domain.ParamNumber, Default: 3}),
			domain.InlineParam(domain.Parameter{Name: "target", Type: domain.ParamText}),
		},
	}, func(_ context.Context, args map[string]any) error {
		got = args
		return nil
	})
	require.NoError(t, h.params.Set("target", "prod"))

	report, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, map[string]any{"retries": 3.0, "target": "prod"}, got)
}

func TestRun_UnboundCommandParameterFails(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "deploy", RequiredParams: []domain.ParamRef{domain.ParamName("target")}}, nil)

	report, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Empty(t, h.calls)
	assert.Equal(t, domain.StatusFailed, report.Status("deploy"))
	assert.ErrorIs(t, report.Failed()[0].Err, domain.ErrValidation)
}

func TestRun_TriggerSetByEarlierPhase(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.params.Add(domain.Parameter{Name: "publish", Type: domain.ParamBoolean}))
	publish := domain.ParamName("publish")

	h.add(t, domain.Command{Name: "decide", Phase: "setup"}, func(ctx context.Context, _ map[string]any) error {
		b, ok := domain.BinderFromContext(ctx)
		require.True(t, ok)
		return b.Set("publish", "yes")
	})
	h.add(t, domain.Command{Name: "release", TriggerParam: &publish}, func(_ context.Context, args map[string]any) error {
		assert.Equal(t, true, args["publish"])
		return nil
	})

	_, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"decide", "release"}, h.calls)
}

func TestRun_PanicIsAFailure(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "explode"}, func(context.Context, map[string]any) error { panic("kaboom") })
	h.add(t, domain.Command{Name: "after"}, nil)

	report, err := h.orchestrator().Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFailed, report.Status("explode"))
	assert.Contains(t, report.Failed()[0].Err.Error(), "kaboom")
	assert.Equal(t, domain.StatusSucceeded, report.Status("after"))
}

func TestRun_ResolutionErrorAbortsOnlyItsPhase(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "a", GoesBefore: domain.CommandNames("b")}, nil)
	h.add(t, domain.Command{Name: "b", GoesBefore: domain.CommandNames("c")}, nil)
	h.add(t, domain.Command{Name: "c", GoesBefore: domain.CommandNames("a")}, nil)
	h.add(t, domain.Command{Name: "clean", Phase: "teardown"}, nil)

	report, err := h.orchestrator().Run(context.Background())
	require.ErrorIs(t, err, domain.ErrDependencyCycle)
	assert.Equal(t, []string{"clean"}, h.calls)
	assert.Equal(t, domain.StatusSucceeded, report.Status("clean"))
}

func TestRun_CycleWhileParam(t *testing.T) {
	h := newHarness()
	require.NoError(t, h.params.Add(domain.Parameter{Name: "pending", Type: domain.ParamInteger, Default: 3}))

	h.add(t, domain.Command{Name: "prepare"}, nil)
	h.add(t, domain.Command{Name: "poll"}, func(ctx context.Context, _ map[string]any) error {
		b, _ := domain.BinderFromContext(ctx)
		v, _ := b.Value("pending")
		return b.Set("pending", v.(int)-1)
	})
	h.add(t, domain.Command{Name: "report"}, nil)
	h.add(t, domain.Command{Name: "finish"}, nil)

	require.NoError(t, h.cycles.AddCycles(domain.Cycle{
		Name: "drain",
		Members: []domain.CycleMember{
			{Command: domain.CommandName("prepare")},
			{Command: domain.CommandName("poll")},
			{Command: domain.CommandName("report")},
			{Command: domain.CommandName("finish")},
		},
		LoopStart:  "poll",
		LoopEnd:    "report",
		WhileParam: "pending",
	}))

	var states []domain.CycleState
	hooks := domain.LifecycleHooks{
		OnCycleIteration: func(_ context.Context, e *domain.CycleEvent) { states = append(states, e.State) },
	}

	report, err := h.orchestrator(runtime.WithLifecycleHooks(hooks)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"prepare", "poll", "report", "poll", "report", "poll", "report", "finish"}, h.calls)
	assert.Equal(t, []domain.CycleState{
		domain.CycleRunning, domain.CycleRunning, domain.CycleRunning, domain.CycleCompleted,
	}, states)
	assert.Len(t, report.Outcomes, 8)
}

func TestRun_CycleMaxIterationsAndFailure(t *testing.T) {
	t.Run("fixed count", func(t *testing.T) {
		h := newHarness()
		h.add(t, domain.Command{Name: "tick"}, nil)
		require.NoError(t, h.cycles.AddCycles(domain.Cycle{Name: "clock", Members: []domain.CycleMember{{Command: domain.CommandName("tick")}}, MaxIterations: 3}))

		_, err := h.orchestrator().Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, []string{"tick", "tick", "tick"}, h.calls)
	})

	t.Run("failure completes the loop", func(t *testing.T) {
		h := newHarness()
		n := 0
		h.add(t, domain.Command{Name: "tick"}, func(context.Context, map[string]any) error {
			n++
			if n == 2 {
				return errors.New("stop")
			}
			return nil
		})
		require.NoError(t, h.cycles.AddCycles(domain.Cycle{Name: "clock", Members: []domain.CycleMember{{Command: domain.CommandName("tick")}}, MaxIterations: 5}))

		report, err := h.orchestrator().Run(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 2, n)
		assert.Equal(t, domain.StatusFailed, report.Status("tick"))
	})

	t.Run("custom condition", func(t *testing.T) {
		h := newHarness()
		h.add(t, domain.Command{Name: "tick", Cycle: "clock"}, nil)
		cond := func(_ context.Context, c domain.Cycle, n int) (bool, error) { return n < 4, nil }

		_, err := h.orchestrator(runtime.WithLoopCondition(cond)).Run(context.Background())
		require.NoError(t, err)
		assert.Len(t, h.calls, 4)
	})
}

func TestRun_Hooks(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "A"}, fails)
	h.add(t, domain.Command{Name: "B", RequireBefore: domain.CommandNames("A")}, nil)

	var phases, started, finished, skipped []string
	hooks := domain.LifecycleHooks{
		OnPhaseStart:   func(_ context.Context, e *domain.PhaseEvent) { phases = append(phases, e.Phase) },
		OnCommandStart: func(_ context.Context, e *domain.CommandEvent) { started = append(started, e.Command) },
		OnCommandFinish: func(_ context.Context, e *domain.CommandEvent) {
			finished = append(finished, e.Command+":"+string(e.Status))
		},
		OnCommandSkip: func(_ context.Context, e *domain.CommandEvent) { skipped = append(skipped, e.Command) },
	}

	_, err := h.orchestrator(runtime.WithLifecycleHooks(hooks)).Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"setup", "main", "teardown"}, phases)
	assert.Equal(t, []string{"A"}, started)
	assert.Equal(t, []string{"A:failed"}, finished)
	assert.Equal(t, []string{"B"}, skipped)
}

func TestRun_CancelledContext(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "A"}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := h.orchestrator().Run(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, h.calls)
}

func TestPlan(t *testing.T) {
	h := newHarness()
	h.add(t, domain.Command{Name: "b"}, nil)
	h.add(t, domain.Command{Name: "a", GoesBefore: domain.CommandNames("b")}, nil)

	plans, err := h.orchestrator().Plan()
	require.NoError(t, err)
	require.Len(t, plans, 3)
	assert.Equal(t, []string{"a", "b"}, plans[1].Order)
	assert.Empty(t, h.calls)
}
