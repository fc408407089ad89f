package commands

import (
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/trestle/pkg/domain"
)

const (
	kindCommand = "command"
	kindCycle   = "cycle"
)

// Lookup finds a command by name.
type Lookup func(name string) (domain.Command, bool)

// ValidateName is stage 1: the command must have a name.
func ValidateName(def *domain.Command) error {
	def.Name = strings.TrimSpace(def.Name)
	if def.Name == "" {
		return domain.NewValidationError(kindCommand, "", "command name cannot be empty")
	}
	return nil
}

// ValidateAction is stage 2: the command must carry an action.
func ValidateAction(def *domain.Command) error {
	if def.Action == nil {
		return domain.NewValidationError(kindCommand, def.Name, "command action is required")
	}
	return nil
}

// IsDuplicate is stage 3: a name already registered turns the registration into a no-op.
func (r *Registry) IsDuplicate(def *domain.Command) bool {
	_, ok := r.entries[def.Name]
	return ok
}

// ValidateReferences is stage 4. It rejects empty and self references, and constraints that
// place the same command both before and after def. goesBefore and nextCommands count as
// "before"; goesAfter and requireBefore count as "after". Registered commands found through
// lookup are checked too: def may not run before a command that already runs before def.
func ValidateReferences(def *domain.Command, lookup Lookup) error {
	for _, k := range domain.Constraints {
		for _, ref := range def.Refs(k) {
			key := strings.TrimSpace(ref.Key())
			if key == "" {
				return domain.NewValidationError(kindCommand, def.Name, "%s reference cannot be empty", k)
			}
			if key == def.Name {
				return domain.NewValidationError(kindCommand, def.Name, "%s cannot reference itself (in %s)", def.Name, k)
			}
		}
	}
	for _, ref := range def.RequiredParams {
		if strings.TrimSpace(ref.Key()) == "" {
			return domain.NewValidationError(kindCommand, def.Name, "required parameter reference cannot be empty")
		}
	}
	if def.TriggerParam != nil && strings.TrimSpace(def.TriggerParam.Key()) == "" {
		return domain.NewValidationError(kindCommand, def.Name, "trigger parameter reference cannot be empty")
	}

	before, after := relations(def)
	for _, name := range before {
		if slices.Contains(after, name) {
			return domain.NewValidationError(kindCommand, def.Name, "conflicting constraints: %q is required both before and after", name)
		}
	}

	if lookup == nil {
		return nil
	}
	for _, name := range before {
		other, ok := lookup(name)
		if !ok {
			continue
		}
		if otherBefore, _ := relations(&other); slices.Contains(otherBefore, def.Name) {
			return domain.NewValidationError(kindCommand, def.Name, "conflicting constraints: %q is already declared to run before it", name)
		}
	}
	for _, name := range after {
		other, ok := lookup(name)
		if !ok {
			continue
		}
		if _, otherAfter := relations(&other); slices.Contains(otherAfter, def.Name) {
			return domain.NewValidationError(kindCommand, def.Name, "conflicting constraints: %q is already declared to run after it", name)
		}
	}
	return nil
}

func relations(def *domain.Command) (before, after []string) {
	before = append(domain.Keys(def.GoesBefore), domain.Keys(def.NextCommands)...)
	after = append(domain.Keys(def.GoesAfter), domain.Keys(def.RequireBefore)...)
	return before, after
}

// NormalizeParams is stage 5: inline parameter definitions are registered with the parameter
// registry and replaced by their names. Name references are left untouched.
func (r *Registry) NormalizeParams(def *domain.Command) error {
	refs := make([]domain.ParamRef, 0, len(def.RequiredParams))
	for _, ref := range def.RequiredParams {
		name, err := r.normalizeParam(def.Name, ref)
		if err != nil {
			return err
		}
		refs = append(refs, domain.ParamName(name))
	}
	def.RequiredParams = refs

	if def.TriggerParam != nil {
		name, err := r.normalizeParam(def.Name, *def.TriggerParam)
		if err != nil {
			return err
		}
		trigger := domain.ParamName(name)
		def.TriggerParam = &trigger
	}
	return nil
}

func (r *Registry) normalizeParam(command string, ref domain.ParamRef) (string, error) {
	if !ref.IsInline() {
		return strings.TrimSpace(ref.Name), nil
	}
	if err := r.params.Add(*ref.Inline); err != nil {
		return "", fmt.Errorf("command %q: inline parameter: %w", command, err)
	}
	return strings.TrimSpace(ref.Inline.Name), nil
}

// NormalizeCommands is stage 6: inline command definitions in the four relation families go
// through this same pipeline and are replaced by their names.
func (r *Registry) NormalizeCommands(def *domain.Command) error {
	for _, k := range domain.Constraints {
		src := def.Refs(k)
		if len(src) == 0 {
			continue
		}
		refs := make([]domain.CommandRef, 0, len(src))
		for _, ref := range src {
			if ref.IsInline() {
				if err := r.register(*ref.Inline); err != nil {
					return fmt.Errorf("command %q: inline %s command: %w", def.Name, k, err)
				}
			}
			refs = append(refs, domain.CommandName(strings.TrimSpace(ref.Key())))
		}
		def.SetRefs(k, refs)
	}
	return nil
}

// AssignPhase is stage 7: an empty phase becomes the default phase. The phase must be configured.
func (r *Registry) AssignPhase(def *domain.Command) error {
	def.Phase = strings.TrimSpace(def.Phase)
	if def.Phase == "" {
		def.Phase = r.defaultPhase
	}
	if !slices.Contains(r.phases, def.Phase) {
		return domain.NewValidationError(kindCommand, def.Name, "unknown phase %q (configured: %s)", def.Phase, strings.Join(r.phases, ", "))
	}
	return nil
}

// Store is stage 8: the normalized command is inserted and, when it names a cycle, attached to it.
func (r *Registry) Store(def domain.Command) error {
	for _, k := range domain.Constraints {
		for _, ref := range def.Refs(k) {
			if ref.IsInline() {
				return domain.NewValidationError(kindCommand, def.Name, "inline %s reference was not normalized", k)
			}
		}
	}
	for _, ref := range def.RequiredParams {
		if ref.IsInline() {
			return domain.NewValidationError(kindCommand, def.Name, "inline parameter reference was not normalized")
		}
	}

	stored := clone(def)
	if stored.Cycle != "" && r.cycles != nil {
		if err := r.cycles.Attach(stored.Cycle, stored); err != nil {
			return err
		}
	}

	r.entries[stored.Name] = &stored
	r.order = append(r.order, stored.Name)
	r.logger.Debug("command registered", "command", stored.Name, "phase", stored.Phase)
	return nil
}

func clone(def domain.Command) domain.Command {
	out := def
	out.RequiredParams = slices.Clone(def.RequiredParams)
	if def.TriggerParam != nil {
		t := *def.TriggerParam
		out.TriggerParam = &t
	}
	for _, k := range domain.Constraints {
		out.SetRefs(k, slices.Clone(def.Refs(k)))
	}
	return out
}
