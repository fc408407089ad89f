package runtime

import (
	"context"
	"time"

	"github.com/aretw0/trestle/internal/resolver"
	"github.com/aretw0/trestle/pkg/domain"
)

func (o *Orchestrator) emitPhaseStart(ctx context.Context, plan resolver.PhasePlan) {
	if o.hooks.OnPhaseStart == nil {
		return
	}
	o.hooks.OnPhaseStart(ctx, &domain.PhaseEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventPhaseStart},
		Phase:     plan.Phase,
		Commands:  plan.Order,
	})
}

func (o *Orchestrator) emitCommand(ctx context.Context, hook func(context.Context, *domain.CommandEvent), typ domain.EventType, e *domain.CommandEvent) {
	if hook == nil {
		return
	}
	e.EventBase = domain.EventBase{Timestamp: time.Now(), Type: typ}
	hook(ctx, e)
}

func (o *Orchestrator) emitCycle(ctx context.Context, cycle string, n int, state domain.CycleState) {
	if o.hooks.OnCycleIteration == nil {
		return
	}
	o.hooks.OnCycleIteration(ctx, &domain.CycleEvent{
		EventBase: domain.EventBase{Timestamp: time.Now(), Type: domain.EventCycleIteration},
		Cycle:     cycle,
		Iteration: n,
		State:     state,
	})
}
