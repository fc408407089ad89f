package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"sort"
	"strings"

	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/pkg/domain"
)

// EnvPrefix prefixes the environment variables that carry a command's arguments.
const EnvPrefix = "TRESTLE_ARG_"

// Runner turns local programs into command actions.
// Only registered programs can run unless inline execution is enabled.
type Runner struct {
	programs    map[string]Program
	allowInline bool
	baseDir     string
	stdout      io.Writer
	logger      *slog.Logger
}

// RunnerOption configures the runner.
type RunnerOption func(*Runner)

// WithPrograms populates the allow-list from a loaded config.
func WithPrograms(programs map[string]Program) RunnerOption {
	return func(r *Runner) {
		for name, p := range programs {
			p.Name = name
			r.programs[name] = p
		}
	}
}

// WithInlineExecution enables ad-hoc programs declared directly in definitions.
func WithInlineExecution(allow bool) RunnerOption {
	return func(r *Runner) {
		r.allowInline = allow
	}
}

// WithBaseDir sets the working directory for executed processes.
func WithBaseDir(dir string) RunnerOption {
	return func(r *Runner) {
		r.baseDir = dir
	}
}

// WithOutput sets where program stdout is copied (default: os.Stdout).
func WithOutput(w io.Writer) RunnerOption {
	return func(r *Runner) {
		r.stdout = w
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) RunnerOption {
	return func(r *Runner) {
		r.logger = logger
	}
}

// NewRunner creates a new process runner.
func NewRunner(opts ...RunnerOption) *Runner {
	r := &Runner{
		programs: make(map[string]Program),
		stdout:   os.Stdout,
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds a trusted program to the allow-list.
func (r *Runner) Register(name string, command string, args ...string) {
	r.programs[name] = Program{
		Name:    name,
		Command: command,
		Args:    args,
	}
}

// Action returns an action running the registered program.
func (r *Runner) Action(name string) (domain.Action, error) {
	p, ok := r.programs[name]
	if !ok {
		return nil, &domain.NotFoundError{Kind: "program", Name: name}
	}
	return r.action(p), nil
}

// Inline returns an action running an ad-hoc program. It fails unless inline execution is enabled.
func (r *Runner) Inline(command string, args ...string) (domain.Action, error) {
	if !r.allowInline {
		return nil, fmt.Errorf("inline execution of %q is not enabled", command)
	}
	if command == "" {
		return nil, fmt.Errorf("inline execution requires a command")
	}
	return r.action(Program{Name: command, Command: command, Args: args}), nil
}

func (r *Runner) action(p Program) domain.Action {
	return func(ctx context.Context, args map[string]any) error {
		return r.run(ctx, p, args)
	}
}

// Arguments are passed as environment variables, never as flags, so values cannot inject options.
func (r *Runner) run(ctx context.Context, p Program, args map[string]any) error {
	cmd := exec.CommandContext(ctx, p.Command, p.Args...)
	cmd.Dir = r.baseDir
	cmd.Env = append(cmd.Environ(), Env(args)...)
	for k, v := range p.Environment {
		cmd.Env = append(cmd.Env, k+"="+v)
	}

	var stderr bytes.Buffer
	cmd.Stdout = r.stdout
	cmd.Stderr = &stderr

	r.logger.DebugContext(ctx, "executing program", "program", p.Name, "command", p.Command)
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			return fmt.Errorf("program %s failed: %w", p.Name, err)
		}
		return fmt.Errorf("program %s failed: %w: %s", p.Name, err, msg)
	}
	return nil
}

// Env renders args as sorted TRESTLE_ARG_<NAME>=value entries.
// Names are upper-cased with dashes turned into underscores. Scalars are formatted
// directly; lists and maps are JSON encoded.
func Env(args map[string]any) []string {
	env := make([]string, 0, len(args))
	for k, v := range args {
		env = append(env, EnvPrefix+envName(k)+"="+envValue(v))
	}
	sort.Strings(env)
	return env
}

func envName(name string) string {
	return strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(name))
}

func envValue(v any) string {
	switch v.(type) {
	case nil:
		return ""
	case string, int, int64, float64, bool:
		return fmt.Sprintf("%v", v)
	default:
		if data, err := json.Marshal(v); err == nil {
			return string(data)
		}
		return fmt.Sprintf("%v", v)
	}
}
