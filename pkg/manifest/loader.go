package manifest

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/pkg/adapters/process"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/aretw0/trestle/pkg/registry"
)

// Loader reads manifests and resolves their actions.
type Loader struct {
	actions      *registry.Registry
	runner       *process.Runner
	allowMissing bool
	logger       *slog.Logger
}

// Option configures a Loader.
type Option func(*Loader)

// WithActions sets the registry that named actions are looked up in.
func WithActions(actions *registry.Registry) Option {
	return func(l *Loader) {
		l.actions = actions
	}
}

// WithRunner sets the process runner used by exec entries.
func WithRunner(r *process.Runner) Option {
	return func(l *Loader) {
		l.runner = r
	}
}

// WithMissingActions replaces unresolvable actions by one that fails when invoked, so that a
// manifest can be validated and planned without its actions being available.
func WithMissingActions(allow bool) Option {
	return func(l *Loader) {
		l.allowMissing = allow
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(l *Loader) {
		l.logger = logger
	}
}

// NewLoader creates a Loader with an empty action registry and no process runner.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		actions: registry.NewRegistry(),
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load parses and resolves a single manifest. Includes are not followed.
func (l *Loader) Load(data []byte, format Format) (domain.Definitions, error) {
	m, err := Parse(data, format)
	if err != nil {
		return domain.Definitions{}, err
	}
	return l.Resolve(m)
}

// LoadFile loads a manifest and, first, the files it includes. Include paths are relative
// to the including file. A file is loaded once even when included several times.
func (l *Loader) LoadFile(path string) (domain.Definitions, error) {
	var defs domain.Definitions
	loaded := make(map[string]bool)
	if err := l.loadFile(path, nil, loaded, &defs); err != nil {
		return domain.Definitions{}, err
	}
	return defs, nil
}

func (l *Loader) loadFile(path string, stack []string, loaded map[string]bool, defs *domain.Definitions) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if slices.Contains(stack, abs) {
		return fmt.Errorf("include cycle detected: %s -> %s", strings.Join(stack, " -> "), abs)
	}
	if loaded[abs] {
		return nil
	}

	data, err := os.ReadFile(abs)
	if err != nil {
		return fmt.Errorf("failed to read manifest: %w", err)
	}
	m, err := Parse(data, FormatFromPath(abs))
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}

	stack = append(stack, abs)
	for _, inc := range m.Include {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(abs), inc)
		}
		if err := l.loadFile(inc, stack, loaded, defs); err != nil {
			return err
		}
	}

	resolved, err := l.Resolve(m)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	loaded[abs] = true
	defs.Merge(resolved)
	l.logger.Debug("manifest loaded", "path", abs, "parameters", len(resolved.Parameters), "commands", len(resolved.Commands), "cycles", len(resolved.Cycles))
	return nil
}

// Resolve converts a parsed manifest into definitions, binding every action.
func (l *Loader) Resolve(m *Manifest) (domain.Definitions, error) {
	defs := domain.Definitions{Parameters: slices.Clone(m.Parameters)}

	for _, spec := range m.Commands {
		cmd, err := l.command(spec)
		if err != nil {
			return domain.Definitions{}, err
		}
		defs.Commands = append(defs.Commands, cmd)
	}

	for _, spec := range m.Cycles {
		cycle := domain.Cycle{
			Name:          spec.Name,
			LoopStart:     spec.LoopStart,
			LoopEnd:       spec.LoopEnd,
			WhileParam:    spec.WhileParam,
			MaxIterations: spec.MaxIterations,
		}
		refs, err := l.refs(spec.Members)
		if err != nil {
			return domain.Definitions{}, fmt.Errorf("cycle %q: %w", spec.Name, err)
		}
		for _, ref := range refs {
			cycle.Members = append(cycle.Members, domain.CycleMember{Command: ref})
		}
		defs.Cycles = append(defs.Cycles, cycle)
	}
	return defs, nil
}

func (l *Loader) command(spec CommandSpec) (domain.Command, error) {
	action, err := l.action(spec)
	if err != nil {
		return domain.Command{}, fmt.Errorf("command %q: %w", spec.Name, err)
	}

	cmd := domain.Command{
		Name:           spec.Name,
		Description:    spec.Description,
		Action:         action,
		RequiredParams: slices.Clone(spec.RequiredParams),
		Phase:          spec.Phase,
		Cycle:          spec.Cycle,
		Hidden:         spec.Hidden,
	}
	if spec.TriggerParam != nil {
		t := *spec.TriggerParam
		cmd.TriggerParam = &t
	}

	families := map[domain.Constraint][]CommandRef{
		domain.ConstraintGoesBefore:    spec.GoesBefore,
		domain.ConstraintGoesAfter:     spec.GoesAfter,
		domain.ConstraintNextCommands:  spec.NextCommands,
		domain.ConstraintRequireBefore: spec.RequireBefore,
	}
	for _, k := range domain.Constraints {
		refs, err := l.refs(families[k])
		if err != nil {
			return domain.Command{}, fmt.Errorf("command %q: %s: %w", spec.Name, k, err)
		}
		cmd.SetRefs(k, refs)
	}
	return cmd, nil
}

func (l *Loader) refs(in []CommandRef) ([]domain.CommandRef, error) {
	if len(in) == 0 {
		return nil, nil
	}
	out := make([]domain.CommandRef, 0, len(in))
	for _, ref := range in {
		if ref.Inline == nil {
			out = append(out, domain.CommandName(ref.Name))
			continue
		}
		cmd, err := l.command(*ref.Inline)
		if err != nil {
			return nil, err
		}
		out = append(out, domain.InlineCommand(cmd))
	}
	return out, nil
}

// action returns nil when the command declares no action; registration reports that.
func (l *Loader) action(spec CommandSpec) (domain.Action, error) {
	switch {
	case spec.Action != "" && spec.Exec != nil:
		return nil, fmt.Errorf("action and exec are mutually exclusive")
	case spec.Action != "":
		fn, err := l.actions.Get(spec.Action)
		if err != nil {
			return l.missing(err)
		}
		return fn, nil
	case spec.Exec != nil:
		return l.exec(*spec.Exec)
	}
	return nil, nil
}

func (l *Loader) exec(spec ExecSpec) (domain.Action, error) {
	if l.runner == nil {
		return l.missing(fmt.Errorf("exec is not enabled"))
	}
	var (
		fn  domain.Action
		err error
	)
	if spec.Program != "" {
		fn, err = l.runner.Action(spec.Program)
	} else {
		fn, err = l.runner.Inline(spec.Command, spec.Args...)
	}
	if err != nil {
		return l.missing(err)
	}
	return fn, nil
}

func (l *Loader) missing(err error) (domain.Action, error) {
	if !l.allowMissing {
		return nil, err
	}
	return func(context.Context, map[string]any) error {
		return fmt.Errorf("action unavailable: %w", err)
	}, nil
}
