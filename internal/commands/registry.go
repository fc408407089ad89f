package commands

import (
	"log/slog"
	"slices"

	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/internal/params"
	"github.com/aretw0/trestle/pkg/domain"
)

// Default phase configuration.
var (
	DefaultPhases    = []string{"setup", "main", "teardown"}
	DefaultPhaseName = "main"
)

// CycleAttacher receives commands that declare a cycle at storage time.
type CycleAttacher interface {
	// CheckAttach reports whether Attach would accept the command, without mutating anything.
	CheckAttach(cycle string, cmd domain.Command) error
	// Attach adds the command to the cycle, creating the cycle when needed.
	Attach(cycle string, cmd domain.Command) error
}

// Registry owns command definitions.
// It is not safe for concurrent use; registration is expected to finish before execution.
type Registry struct {
	logger       *slog.Logger
	params       *params.Registry
	cycles       CycleAttacher
	phases       []string
	defaultPhase string

	entries map[string]*domain.Command
	order   []string
}

// Option configures a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithPhases sets the ordered phase names and the phase assigned to commands without one.
func WithPhases(phases []string, defaultPhase string) Option {
	return func(r *Registry) {
		if len(phases) > 0 {
			r.phases = slices.Clone(phases)
		}
		if defaultPhase != "" {
			r.defaultPhase = defaultPhase
		}
	}
}

// WithCycleAttacher sets the collaborator receiving commands that declare a cycle.
func WithCycleAttacher(a CycleAttacher) Option {
	return func(r *Registry) {
		r.cycles = a
	}
}

// New creates an empty command registry backed by the given parameter registry.
func New(p *params.Registry, opts ...Option) *Registry {
	r := &Registry{
		logger:       logging.NewNop(),
		params:       p,
		phases:       slices.Clone(DefaultPhases),
		defaultPhase: DefaultPhaseName,
		entries:      make(map[string]*domain.Command),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// SetCycleAttacher sets the cycle collaborator after construction.
// The cycle manager itself needs the command registry, so one of the two is wired late.
func (r *Registry) SetCycleAttacher(a CycleAttacher) {
	r.cycles = a
}

// Add runs the registration pipeline. A name that is already registered makes Add a no-op.
// On error nothing is registered, including inline parameters and commands.
func (r *Registry) Add(def domain.Command) error {
	if err := r.Check(def); err != nil {
		return err
	}
	return r.register(def)
}

func (r *Registry) register(def domain.Command) error {
	if err := ValidateName(&def); err != nil {
		return err
	}
	if err := ValidateAction(&def); err != nil {
		return err
	}
	if r.IsDuplicate(&def) {
		r.logger.Debug("command already registered", "command", def.Name)
		return nil
	}
	if err := ValidateReferences(&def, r.Get); err != nil {
		return err
	}
	if err := r.NormalizeParams(&def); err != nil {
		return err
	}
	if err := r.NormalizeCommands(&def); err != nil {
		return err
	}
	if err := r.AssignPhase(&def); err != nil {
		return err
	}
	return r.Store(def)
}

// Check runs every validation stage over defs and their inline definitions without registering
// anything. Definitions are checked as one batch, against each other as well as against the
// registries.
func (r *Registry) Check(defs ...domain.Command) error {
	c := &checker{
		r:       r,
		pending: make(map[string]domain.Command),
		cycles:  make(map[string]string),
	}
	for _, def := range defs {
		if err := c.command(def); err != nil {
			return err
		}
	}
	return r.params.Check(c.params...)
}

type checker struct {
	r       *Registry
	pending map[string]domain.Command
	params  []domain.Parameter
	cycles  map[string]string // cycle -> phase of its first pending member
}

// attach checks a cycle declaration against the registered cycle and against earlier
// declarations of the same batch.
func (c *checker) attach(def domain.Command) error {
	if phase, ok := c.cycles[def.Cycle]; ok {
		if def.Phase != phase {
			return domain.NewValidationError(kindCycle, def.Cycle, "command %q is in phase %q, cycle members are in %q", def.Name, def.Phase, phase)
		}
		return nil
	}
	if err := c.r.cycles.CheckAttach(def.Cycle, def); err != nil {
		return err
	}
	c.cycles[def.Cycle] = def.Phase
	return nil
}

func (c *checker) lookup(name string) (domain.Command, bool) {
	if cmd, ok := c.pending[name]; ok {
		return cmd, true
	}
	return c.r.Get(name)
}

func (c *checker) command(def domain.Command) error {
	if err := ValidateName(&def); err != nil {
		return err
	}
	if err := ValidateAction(&def); err != nil {
		return err
	}
	if _, ok := c.lookup(def.Name); ok {
		return nil
	}
	if err := ValidateReferences(&def, c.lookup); err != nil {
		return err
	}

	for _, ref := range def.RequiredParams {
		if ref.IsInline() {
			c.params = append(c.params, *ref.Inline)
		}
	}
	if def.TriggerParam != nil && def.TriggerParam.IsInline() {
		c.params = append(c.params, *def.TriggerParam.Inline)
	}

	if err := c.r.AssignPhase(&def); err != nil {
		return err
	}
	if def.Cycle != "" && c.r.cycles != nil {
		if err := c.attach(def); err != nil {
			return err
		}
	}

	var inline []domain.Command
	normalized := def
	for _, k := range domain.Constraints {
		refs := make([]domain.CommandRef, 0, len(def.Refs(k)))
		for _, ref := range def.Refs(k) {
			if ref.IsInline() {
				inline = append(inline, *ref.Inline)
			}
			refs = append(refs, domain.CommandName(ref.Key()))
		}
		normalized.SetRefs(k, refs)
	}
	c.pending[def.Name] = normalized

	for _, child := range inline {
		if err := c.command(child); err != nil {
			return err
		}
	}
	return nil
}

// Get returns a copy of a registered command.
func (r *Registry) Get(name string) (domain.Command, bool) {
	e, ok := r.entries[name]
	if !ok {
		return domain.Command{}, false
	}
	return clone(*e), true
}

// Has reports whether a command is registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.entries[name]
	return ok
}

// Names returns the registered command names in registration order.
func (r *Registry) Names() []string {
	return slices.Clone(r.order)
}

// All returns every command in registration order.
func (r *Registry) All() []domain.Command {
	out := make([]domain.Command, 0, len(r.order))
	for _, name := range r.order {
		out = append(out, clone(*r.entries[name]))
	}
	return out
}

// Visible returns the commands not hidden from discovery, in registration order.
func (r *Registry) Visible() []domain.Command {
	var out []domain.Command
	for _, name := range r.order {
		if e := r.entries[name]; !e.Hidden {
			out = append(out, clone(*e))
		}
	}
	return out
}

// InPhase returns the commands of one phase in registration order.
func (r *Registry) InPhase(phase string) []domain.Command {
	var out []domain.Command
	for _, name := range r.order {
		if e := r.entries[name]; e.Phase == phase {
			out = append(out, clone(*e))
		}
	}
	return out
}

// Phases returns the configured phases in execution order.
func (r *Registry) Phases() []string {
	return slices.Clone(r.phases)
}

// DefaultPhase returns the phase assigned to commands that do not declare one.
func (r *Registry) DefaultPhase() string {
	return r.defaultPhase
}

// PhaseIndex returns the position of a phase in execution order, or -1.
func (r *Registry) PhaseIndex(phase string) int {
	return slices.Index(r.phases, phase)
}

// TagCycle records that a registered command belongs to a cycle.
// A command belongs to at most one cycle.
func (r *Registry) TagCycle(command, cycle string) error {
	e, ok := r.entries[command]
	if !ok {
		return &domain.NotFoundError{Kind: kindCommand, Name: command}
	}
	if e.Cycle != "" && e.Cycle != cycle {
		return domain.NewValidationError(kindCommand, command, "already belongs to cycle %q", e.Cycle)
	}
	e.Cycle = cycle
	return nil
}
