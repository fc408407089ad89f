package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/trestle/pkg/domain"
)

// Chain combines hooks so that every non-nil callback runs, in argument order.
func Chain(hooks ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range hooks {
		out.OnPhaseStart = chain(out.OnPhaseStart, h.OnPhaseStart)
		out.OnCommandStart = chain(out.OnCommandStart, h.OnCommandStart)
		out.OnCommandFinish = chain(out.OnCommandFinish, h.OnCommandFinish)
		out.OnCommandSkip = chain(out.OnCommandSkip, h.OnCommandSkip)
		out.OnCycleIteration = chain(out.OnCycleIteration, h.OnCycleIteration)
	}
	return out
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}

// LogHooks returns hooks that log every lifecycle event.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPhaseStart: func(ctx context.Context, e *domain.PhaseEvent) {
			logger.InfoContext(ctx, "phase_start", "phase", e.Phase, "commands", e.Commands)
		},
		OnCommandStart: func(ctx context.Context, e *domain.CommandEvent) {
			logger.DebugContext(ctx, "command_start", "command", e.Command, "phase", e.Phase, "iteration", e.Iteration)
		},
		OnCommandFinish: func(ctx context.Context, e *domain.CommandEvent) {
			if e.Err != nil {
				logger.ErrorContext(ctx, "command_finish", "command", e.Command, "status", e.Status, "duration", e.Duration, "err", e.Err)
				return
			}
			logger.InfoContext(ctx, "command_finish", "command", e.Command, "status", e.Status, "duration", e.Duration)
		},
		OnCommandSkip: func(ctx context.Context, e *domain.CommandEvent) {
			logger.WarnContext(ctx, "command_skip", "command", e.Command, "reason", e.Err)
		},
		OnCycleIteration: func(ctx context.Context, e *domain.CycleEvent) {
			logger.DebugContext(ctx, "cycle_iteration", "cycle", e.Cycle, "iteration", e.Iteration, "state", e.State)
		},
	}
}
