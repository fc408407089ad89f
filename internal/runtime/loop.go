package runtime

import (
	"context"

	"github.com/aretw0/trestle/internal/resolver"
	"github.com/aretw0/trestle/pkg/domain"
)

// runLoop drives a cycle region: NotStarted -> Running (one pass per iteration) -> Completed.
// An iteration always attempts the whole region. The loop completes after an iteration in which
// a member did not succeed, when the condition says so, or when the context is done.
func (o *Orchestrator) runLoop(ctx context.Context, phase string, loop resolver.Loop, report *domain.Report) {
	c := loop.Cycle
	n := 0
	for {
		n++
		o.emitCycle(ctx, c.Name, n, domain.CycleRunning)

		ok := true
		for _, m := range loop.Region {
			if o.attempt(ctx, phase, m, n, report) != domain.StatusSucceeded {
				ok = false
			}
		}
		if !ok || ctx.Err() != nil {
			break
		}
		if c.MaxIterations > 0 && n >= c.MaxIterations {
			break
		}

		again, err := o.condition(ctx, c, n)
		if err != nil {
			o.logger.ErrorContext(ctx, "loop condition failed", "cycle", c.Name, "iteration", n, "err", err)
			break
		}
		if !again {
			break
		}
	}
	o.emitCycle(ctx, c.Name, n, domain.CycleCompleted)
	o.logger.DebugContext(ctx, "cycle completed", "cycle", c.Name, "iterations", n)
}

func (o *Orchestrator) condition(ctx context.Context, c domain.Cycle, n int) (bool, error) {
	if o.loopCond != nil {
		return o.loopCond(ctx, c, n)
	}
	if c.WhileParam == "" {
		limit := c.MaxIterations
		if limit == 0 {
			limit = 1
		}
		return n < limit, nil
	}
	return o.params.Truthy(c.WhileParam), nil
}
