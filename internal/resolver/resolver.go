package resolver

import (
	"errors"
	"fmt"
	"slices"

	"github.com/aretw0/trestle/pkg/domain"
)

const kindCommand = "command"

// Commands is the read side of the command registry.
type Commands interface {
	Phases() []string
	PhaseIndex(phase string) int
	InPhase(phase string) []domain.Command
	Get(name string) (domain.Command, bool)
}

// Cycles lists registered cycles.
type Cycles interface {
	All() []domain.Cycle
}

// Gate reports whether a trigger parameter is truthy.
type Gate func(param string) bool

// Loop is a cycle as it appears in a phase plan.
type Loop struct {
	Cycle domain.Cycle
	// Region lists the members from loop start to loop end that are part of the order.
	Region []string
}

// PhasePlan is the resolved execution order of one phase.
type PhasePlan struct {
	Phase string
	Order []string
	// Gated lists the commands left out because their trigger parameter is not truthy.
	Gated []string
	Loops []Loop
}

// LoopStartingAt returns the loop whose region begins with command.
func (p PhasePlan) LoopStartingAt(command string) (Loop, bool) {
	for _, l := range p.Loops {
		if len(l.Region) > 0 && l.Region[0] == command {
			return l, true
		}
	}
	return Loop{}, false
}

// Resolver turns registered commands into phase plans.
type Resolver struct {
	commands Commands
	cycles   Cycles
}

// New creates a resolver. cycles may be nil.
func New(commands Commands, cycles Cycles) *Resolver {
	return &Resolver{commands: commands, cycles: cycles}
}

// Plan resolves every phase in phase order. A phase that fails to resolve is left out and its
// error is joined to the returned error; the other phases are still resolved.
func (r *Resolver) Plan(gate Gate) ([]PhasePlan, error) {
	var plans []PhasePlan
	var errs []error
	for _, phase := range r.commands.Phases() {
		p, err := r.Resolve(phase, gate)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		plans = append(plans, p)
	}
	return plans, errors.Join(errs...)
}

// Resolve computes the order of one phase. A nil gate treats every trigger as truthy.
func (r *Resolver) Resolve(phase string, gate Gate) (PhasePlan, error) {
	plan := PhasePlan{Phase: phase}
	phaseIdx := r.commands.PhaseIndex(phase)
	if phaseIdx < 0 {
		return plan, &domain.NotFoundError{Kind: "phase", Name: phase}
	}

	cmds := r.commands.InPhase(phase)
	names := make([]string, 0, len(cmds))
	for _, c := range cmds {
		names = append(names, c.Name)
	}
	g := newGraph(names)

	for u, c := range cmds {
		if err := r.addEdges(g, u, c, phaseIdx); err != nil {
			return plan, fmt.Errorf("phase %q: %w", phase, err)
		}
	}
	loops := r.chainCycles(g, phase)

	if path := g.findCycle(); path != nil {
		return plan, &domain.DependencyCycleError{Phase: phase, Path: path}
	}

	for _, i := range g.sort() {
		c := cmds[i]
		if c.TriggerParam != nil && gate != nil && !gate(c.TriggerParam.Key()) {
			plan.Gated = append(plan.Gated, c.Name)
			continue
		}
		plan.Order = append(plan.Order, c.Name)
	}

	for _, cycle := range loops {
		l, err := region(cycle, plan.Order)
		if err != nil {
			return plan, err
		}
		if len(l.Region) > 0 {
			plan.Loops = append(plan.Loops, l)
		}
	}
	return plan, nil
}

func (r *Resolver) addEdges(g *graph, u int, c domain.Command, phaseIdx int) error {
	for _, k := range domain.Constraints {
		for _, ref := range c.Refs(k) {
			target := ref.Key()
			if v, ok := g.index[target]; ok {
				switch k {
				case domain.ConstraintGoesBefore:
					g.addEdge(u, v)
				case domain.ConstraintNextCommands:
					g.addNext(u, v)
				default:
					g.addEdge(v, u)
				}
				continue
			}

			other, ok := r.commands.Get(target)
			if !ok {
				if k == domain.ConstraintGoesBefore || k == domain.ConstraintGoesAfter {
					continue
				}
				return &domain.NotFoundError{Kind: kindCommand, Name: target}
			}

			otherIdx := r.commands.PhaseIndex(other.Phase)
			switch {
			case k == domain.ConstraintNextCommands:
				return domain.NewValidationError(kindCommand, c.Name, "next command %q is in phase %q, not %q", target, other.Phase, c.Phase)
			case k == domain.ConstraintGoesBefore && otherIdx < phaseIdx:
				return domain.NewValidationError(kindCommand, c.Name, "conflicting constraints: goes before %q in earlier phase %q", target, other.Phase)
			case k != domain.ConstraintGoesBefore && otherIdx > phaseIdx:
				return domain.NewValidationError(kindCommand, c.Name, "conflicting constraints: %s %q in later phase %q", k, target, other.Phase)
			}
		}
	}
	return nil
}

// chainCycles links consecutive members of every cycle of the phase with priority edges.
func (r *Resolver) chainCycles(g *graph, phase string) []domain.Cycle {
	if r.cycles == nil {
		return nil
	}
	var out []domain.Cycle
	for _, c := range r.cycles.All() {
		members := c.MemberNames()
		if len(members) == 0 {
			continue
		}
		if first, ok := r.commands.Get(members[0]); !ok || first.Phase != phase {
			continue
		}
		for i := 0; i+1 < len(members); i++ {
			u, okU := g.index[members[i]]
			v, okV := g.index[members[i+1]]
			if okU && okV {
				g.addNext(u, v)
			}
		}
		out = append(out, c)
	}
	return out
}

// region finds the loop region of a cycle in order. The region must be contiguous.
func region(c domain.Cycle, order []string) (Loop, error) {
	l := Loop{Cycle: c}
	members := c.MemberNames()
	start, end := c.Markers()
	si, ei := slices.Index(members, start), slices.Index(members, end)
	if si < 0 || ei < si {
		return l, domain.NewValidationError("cycle", c.Name, "invalid loop markers %q..%q", start, end)
	}

	for _, m := range members[si : ei+1] {
		if slices.Contains(order, m) {
			l.Region = append(l.Region, m)
		}
	}
	if len(l.Region) == 0 {
		return l, nil
	}

	first := slices.Index(order, l.Region[0])
	for i, m := range l.Region {
		if order[first+i] != m {
			return l, domain.NewValidationError("cycle", c.Name, "loop region is interrupted by %q", order[first+i])
		}
	}
	return l, nil
}
