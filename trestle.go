package trestle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/aretw0/trestle/internal/commands"
	"github.com/aretw0/trestle/internal/cycles"
	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/internal/params"
	"github.com/aretw0/trestle/internal/resolver"
	"github.com/aretw0/trestle/internal/runtime"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/aretw0/trestle/pkg/ports"
)

// ErrNoStore is returned by SaveConfig and LoadConfig when no ConfigStore is configured.
var ErrNoStore = errors.New("no config store configured")

// PhasePlan is the resolved execution order of one phase.
type PhasePlan = resolver.PhasePlan

// Loop is a cycle region inside a PhasePlan.
type Loop = resolver.Loop

// Engine is the high-level entry point for the Trestle library.
// It owns the parameter, command and cycle registries and drives execution.
//
// An Engine is not safe for concurrent use: register everything, bind values, then Run.
type Engine struct {
	logger       *slog.Logger
	phases       []string
	defaultPhase string
	hooks        domain.LifecycleHooks
	loopCond     domain.LoopCondition
	store        ports.ConfigStore

	params       *params.Registry
	commands     *commands.Registry
	cycles       *cycles.Manager
	resolver     *resolver.Resolver
	orchestrator *runtime.Orchestrator
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithPhases sets the phases in execution order (default: setup, main, teardown).
func WithPhases(phases ...string) Option {
	return func(e *Engine) {
		e.phases = phases
	}
}

// WithDefaultPhase sets the phase of commands that do not declare one (default: main).
func WithDefaultPhase(phase string) Option {
	return func(e *Engine) {
		e.defaultPhase = phase
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithLoopCondition replaces the default cycle condition (loop while the cycle's
// governing parameter is truthy).
func WithLoopCondition(cond domain.LoopCondition) Option {
	return func(e *Engine) {
		e.loopCond = cond
	}
}

// WithStore sets where SaveConfig and LoadConfig keep profiles.
func WithStore(store ports.ConfigStore) Option {
	return func(e *Engine) {
		e.store = store
	}
}

// New initializes a new Trestle Engine.
func New(opts ...Option) (*Engine, error) {
	eng := &Engine{
		logger:       logging.NewNop(),
		phases:       slices.Clone(commands.DefaultPhases),
		defaultPhase: commands.DefaultPhaseName,
	}
	for _, opt := range opts {
		opt(eng)
	}
	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}

	if err := validatePhases(eng.phases, eng.defaultPhase); err != nil {
		return nil, err
	}

	eng.params = params.New(params.WithLogger(eng.logger))
	eng.commands = commands.New(eng.params,
		commands.WithLogger(eng.logger),
		commands.WithPhases(eng.phases, eng.defaultPhase),
	)
	eng.cycles = cycles.New(eng.commands, cycles.WithLogger(eng.logger))
	eng.commands.SetCycleAttacher(eng.cycles)
	eng.resolver = resolver.New(eng.commands, eng.cycles)

	runtimeOpts := []runtime.Option{
		runtime.WithLogger(eng.logger),
		runtime.WithLifecycleHooks(eng.hooks),
	}
	if eng.loopCond != nil {
		runtimeOpts = append(runtimeOpts, runtime.WithLoopCondition(eng.loopCond))
	}
	eng.orchestrator = runtime.New(eng.params, eng.commands, eng.resolver, runtimeOpts...)

	return eng, nil
}

func validatePhases(phases []string, defaultPhase string) error {
	if len(phases) == 0 {
		return domain.NewValidationError("phase", "", "at least one phase is required")
	}
	for i, p := range phases {
		if p == "" {
			return domain.NewValidationError("phase", "", "phase names cannot be empty")
		}
		if slices.Index(phases, p) != i {
			return domain.NewValidationError("phase", p, "listed twice")
		}
	}
	if !slices.Contains(phases, defaultPhase) {
		return domain.NewValidationError("phase", defaultPhase, "default phase is not one of the configured phases")
	}
	return nil
}

// --- Registration API ---

// AddParameter registers a parameter definition.
func (e *Engine) AddParameter(def domain.Parameter) error {
	return e.params.Add(def)
}

// AddCommand registers a command through the full validation and normalization pipeline.
// Registering a name that already exists is a no-op.
func (e *Engine) AddCommand(def domain.Command) error {
	return e.commands.Add(def)
}

// AddCycles registers cycles. Cycles equivalent to a registered one are skipped.
func (e *Engine) AddCycles(defs ...domain.Cycle) error {
	return e.cycles.AddCycles(defs...)
}

// Register adds a batch of definitions: parameters, then commands, then cycles.
// It stops at the first failing definition; definitions registered before it stay registered.
func (e *Engine) Register(defs domain.Definitions) error {
	for _, p := range defs.Parameters {
		if err := e.params.Add(p); err != nil {
			return err
		}
	}
	for _, c := range defs.Commands {
		if err := e.commands.Add(c); err != nil {
			return err
		}
	}
	if len(defs.Cycles) > 0 {
		return e.cycles.AddCycles(defs.Cycles...)
	}
	return nil
}

// --- Binding API ---

// ResolveAlias returns the parameter owning an external flag string.
func (e *Engine) ResolveAlias(flag string) (string, error) {
	return e.params.ResolveAlias(flag)
}

// SetValue coerces and binds a parameter value.
func (e *Engine) SetValue(name string, raw any) error {
	return e.params.Set(name, raw)
}

// SetFlag binds a value through one of the parameter's aliases.
func (e *Engine) SetFlag(flag string, raw any) error {
	name, err := e.params.ResolveAlias(flag)
	if err != nil {
		return err
	}
	return e.params.Set(name, raw)
}

// ApplyDefaults binds defaults for the given stage. Run applies BindFinal itself; calling it
// earlier is only needed to inspect values before running.
func (e *Engine) ApplyDefaults(stage domain.BindStage) []string {
	return e.params.ApplyDefaults(stage)
}

// Value returns the bound value of a parameter.
func (e *Engine) Value(name string) (any, bool) {
	return e.params.Value(name)
}

// Values returns every bound value.
func (e *Engine) Values() map[string]any {
	return e.params.Values()
}

// MissingRequired lists required parameters without a value.
func (e *Engine) MissingRequired() []string {
	return e.params.MissingRequired()
}

// --- Persistence boundary ---

// SerializeForPersistence returns the bound values of persistent parameters only.
func (e *Engine) SerializeForPersistence() map[string]any {
	return e.params.Persistable()
}

// SaveConfig writes SerializeForPersistence to the configured store under profile.
func (e *Engine) SaveConfig(ctx context.Context, profile string) error {
	if e.store == nil {
		return ErrNoStore
	}
	values := e.SerializeForPersistence()
	if err := e.store.Save(ctx, profile, values); err != nil {
		return fmt.Errorf("failed to save profile %s: %w", profile, err)
	}
	e.logger.DebugContext(ctx, "profile saved", "profile", profile, "parameters", len(values))
	return nil
}

// LoadConfig binds the values saved under profile to parameters that are still unbound.
func (e *Engine) LoadConfig(ctx context.Context, profile string) error {
	if e.store == nil {
		return ErrNoStore
	}
	values, err := e.store.Load(ctx, profile)
	if err != nil {
		return fmt.Errorf("failed to load profile %s: %w", profile, err)
	}
	return e.params.Load(values)
}

// --- Execution ---

// Plan resolves every phase against the current values without running anything.
func (e *Engine) Plan() ([]PhasePlan, error) {
	return e.orchestrator.Plan()
}

// Run executes every phase in order and returns the outcome of each attempted command.
func (e *Engine) Run(ctx context.Context) (*domain.Report, error) {
	return e.orchestrator.Run(ctx)
}

// --- Introspection ---

// Command returns a registered command in its normalized form.
func (e *Engine) Command(name string) (domain.Command, bool) {
	return e.commands.Get(name)
}

// Commands returns every command in registration order.
func (e *Engine) Commands() []domain.Command {
	return e.commands.All()
}

// Visible returns the commands shown in discovery.
func (e *Engine) Visible() []domain.Command {
	return e.commands.Visible()
}

// Parameters returns every parameter definition in registration order.
func (e *Engine) Parameters() []domain.Parameter {
	return e.params.Definitions()
}

// Cycles returns every cycle in registration order.
func (e *Engine) Cycles() []domain.Cycle {
	return e.cycles.All()
}

// Phases returns the configured phases in execution order.
func (e *Engine) Phases() []string {
	return slices.Clone(e.phases)
}
