package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"

	"github.com/aretw0/trestle"
	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/pkg/adapters/process"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/aretw0/trestle/pkg/manifest"
	"github.com/aretw0/trestle/pkg/ports"
	"github.com/aretw0/trestle/pkg/registry"
)

// EngineOptions tunes how the CLI builds an engine.
type EngineOptions struct {
	// Lenient loads manifests whose actions are unavailable, for validate, plan and list.
	Lenient bool
	Logger  *slog.Logger
	Hooks   domain.LifecycleHooks
	Store   ports.ConfigStore
	Out     io.Writer
}

// BuiltinActions returns the actions every manifest can name.
func BuiltinActions(out io.Writer) *registry.Registry {
	actions := registry.NewRegistry()
	actions.Register("noop", func(context.Context, map[string]any) error { return nil })
	actions.Register("echo", func(_ context.Context, args map[string]any) error {
		keys := make([]string, 0, len(args))
		for k := range args {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(out, "%s=%v\n", k, args[k])
		}
		return nil
	})
	actions.Register("fail", func(_ context.Context, args map[string]any) error {
		return fmt.Errorf("failed on purpose")
	})
	return actions
}

// CreateEngine builds an engine from settings and registers the manifest at s.File.
func CreateEngine(s Settings, opts EngineOptions) (*trestle.Engine, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	out := opts.Out
	if out == nil {
		out = io.Discard
	}

	programs, err := process.LoadPrograms(s.Programs)
	if err != nil {
		return nil, err
	}
	runner := process.NewRunner(
		process.WithPrograms(programs),
		process.WithInlineExecution(s.AllowExec),
		process.WithOutput(out),
		process.WithLogger(logger),
	)

	loader := manifest.NewLoader(
		manifest.WithActions(BuiltinActions(out)),
		manifest.WithRunner(runner),
		manifest.WithMissingActions(opts.Lenient),
		manifest.WithLogger(logger),
	)
	defs, err := loader.LoadFile(s.File)
	if err != nil {
		return nil, err
	}

	engineOpts := []trestle.Option{
		trestle.WithLogger(logger),
		trestle.WithLifecycleHooks(opts.Hooks),
	}
	if len(s.Phases) > 0 {
		engineOpts = append(engineOpts, trestle.WithPhases(s.Phases...))
	}
	if s.DefaultPhase != "" {
		engineOpts = append(engineOpts, trestle.WithDefaultPhase(s.DefaultPhase))
	}
	if opts.Store != nil {
		engineOpts = append(engineOpts, trestle.WithStore(opts.Store))
	}

	eng, err := trestle.New(engineOpts...)
	if err != nil {
		return nil, fmt.Errorf("error initializing engine: %w", err)
	}
	if err := eng.Register(defs); err != nil {
		return nil, fmt.Errorf("%s: %w", s.File, err)
	}
	return eng, nil
}
