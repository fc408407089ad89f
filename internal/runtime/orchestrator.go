package runtime

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/trestle/internal/commands"
	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/internal/params"
	"github.com/aretw0/trestle/internal/resolver"
	"github.com/aretw0/trestle/pkg/domain"
)

// Orchestrator executes registered commands phase by phase.
type Orchestrator struct {
	logger   *slog.Logger
	params   *params.Registry
	commands *commands.Registry
	resolver *resolver.Resolver
	hooks    domain.LifecycleHooks
	loopCond domain.LoopCondition
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the orchestrator logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(o *Orchestrator) {
		o.hooks = hooks
	}
}

// WithLoopCondition replaces the default loop condition.
// MaxIterations still caps iteration when it is set.
func WithLoopCondition(cond domain.LoopCondition) Option {
	return func(o *Orchestrator) {
		o.loopCond = cond
	}
}

// New creates an orchestrator over the given registries.
func New(p *params.Registry, c *commands.Registry, r *resolver.Resolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:   logging.NewNop(),
		params:   p,
		commands: c,
		resolver: r,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Plan resolves every phase against the current parameter values without running anything.
func (o *Orchestrator) Plan() ([]resolver.PhasePlan, error) {
	return o.resolver.Plan(o.params.Truthy)
}

// Run applies final defaults, checks required parameters and executes every phase in order.
// Each phase is resolved right before it runs, so values bound by earlier actions are seen
// by later triggers. A phase that fails to resolve is skipped and its error returned with the
// report; action failures are recorded in the report only.
func (o *Orchestrator) Run(ctx context.Context) (*domain.Report, error) {
	report := &domain.Report{}

	o.params.ApplyDefaults(domain.BindFinal)
	if missing := o.params.MissingRequired(); len(missing) > 0 {
		return report, domain.NewValidationError("parameter", "", "required parameters not bound: %s", strings.Join(missing, ", "))
	}

	ctx = domain.ContextWithBinder(ctx, o.params)

	var errs []error
	for _, phase := range o.commands.Phases() {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		plan, err := o.resolver.Resolve(phase, o.params.Truthy)
		if err != nil {
			o.logger.ErrorContext(ctx, "phase resolution failed", "phase", phase, "err", err)
			errs = append(errs, err)
			continue
		}
		if err := o.runPhase(ctx, plan, report); err != nil {
			errs = append(errs, err)
			break
		}
	}
	return report, errors.Join(errs...)
}

func (o *Orchestrator) runPhase(ctx context.Context, plan resolver.PhasePlan, report *domain.Report) error {
	o.emitPhaseStart(ctx, plan)
	if len(plan.Gated) > 0 {
		o.logger.DebugContext(ctx, "commands gated by trigger", "phase", plan.Phase, "commands", plan.Gated)
	}

	handled := make(map[string]bool, len(plan.Order))
	for _, name := range plan.Order {
		if handled[name] {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if loop, ok := plan.LoopStartingAt(name); ok {
			o.runLoop(ctx, plan.Phase, loop, report)
			for _, m := range loop.Region {
				handled[m] = true
			}
			continue
		}

		o.attempt(ctx, plan.Phase, name, 0, report)
		handled[name] = true
	}
	return nil
}

// attempt runs one command unless a required predecessor did not succeed.
func (o *Orchestrator) attempt(ctx context.Context, phase, name string, iteration int, report *domain.Report) domain.Status {
	cmd, ok := o.commands.Get(name)
	if !ok {
		return o.fail(ctx, phase, name, iteration, 0, &domain.NotFoundError{Kind: "command", Name: name}, report)
	}

	for _, pred := range domain.Keys(cmd.RequireBefore) {
		st := report.Status(pred)
		if st == domain.StatusSucceeded {
			continue
		}
		skip := &domain.SkipError{Command: name, Predecessor: pred, Reason: skipReason(st)}
		report.Add(domain.Outcome{Command: name, Phase: phase, Status: domain.StatusSkipped, Err: skip, Iteration: iteration})
		o.logger.WarnContext(ctx, "command skipped", "command", name, "predecessor", pred, "reason", skip.Reason)
		o.emitCommand(ctx, o.hooks.OnCommandSkip, domain.EventCommandSkip, &domain.CommandEvent{
			Command: name, Phase: phase, Iteration: iteration, Status: domain.StatusSkipped, Err: skip,
		})
		return domain.StatusSkipped
	}

	args := make(map[string]any, len(cmd.RequiredParams)+1)
	for _, ref := range cmd.RequiredParams {
		v, bound := o.params.Value(ref.Key())
		if !bound {
			err := domain.NewValidationError("command", name, "required parameter %q is not bound", ref.Key())
			return o.fail(ctx, phase, name, iteration, 0, err, report)
		}
		args[ref.Key()] = v
	}
	if cmd.TriggerParam != nil {
		if v, bound := o.params.Value(cmd.TriggerParam.Key()); bound {
			args[cmd.TriggerParam.Key()] = v
		}
	}

	o.emitCommand(ctx, o.hooks.OnCommandStart, domain.EventCommandStart, &domain.CommandEvent{
		Command: name, Phase: phase, Iteration: iteration,
	})
	o.logger.DebugContext(ctx, "running command", "command", name, "phase", phase, "iteration", iteration)

	start := time.Now()
	err := invoke(ctx, cmd, args)
	elapsed := time.Since(start)
	if err != nil {
		return o.fail(ctx, phase, name, iteration, elapsed, err, report)
	}

	report.Add(domain.Outcome{Command: name, Phase: phase, Status: domain.StatusSucceeded, Iteration: iteration, Duration: elapsed})
	o.emitCommand(ctx, o.hooks.OnCommandFinish, domain.EventCommandFinish, &domain.CommandEvent{
		Command: name, Phase: phase, Iteration: iteration, Status: domain.StatusSucceeded, Duration: elapsed,
	})
	return domain.StatusSucceeded
}

func (o *Orchestrator) fail(ctx context.Context, phase, name string, iteration int, elapsed time.Duration, err error, report *domain.Report) domain.Status {
	report.Add(domain.Outcome{Command: name, Phase: phase, Status: domain.StatusFailed, Err: err, Iteration: iteration, Duration: elapsed})
	o.logger.ErrorContext(ctx, "command failed", "command", name, "phase", phase, "err", err)
	o.emitCommand(ctx, o.hooks.OnCommandFinish, domain.EventCommandFinish, &domain.CommandEvent{
		Command: name, Phase: phase, Iteration: iteration, Status: domain.StatusFailed, Duration: elapsed, Err: err,
	})
	return domain.StatusFailed
}

func invoke(ctx context.Context, cmd domain.Command, args map[string]any) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("command %q panicked: %v", cmd.Name, r)
		}
	}()
	if cmd.Action == nil {
		return fmt.Errorf("command %q has no action", cmd.Name)
	}
	if err := cmd.Action(ctx, args); err != nil {
		return fmt.Errorf("command %q: %w", cmd.Name, err)
	}
	return nil
}

func skipReason(st domain.Status) string {
	switch st {
	case domain.StatusFailed:
		return "failed"
	case domain.StatusSkipped:
		return "skipped"
	default:
		return "did not run"
	}
}
