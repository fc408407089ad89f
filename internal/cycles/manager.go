package cycles

import (
	"log/slog"
	"slices"

	"github.com/aretw0/trestle/internal/logging"
	"github.com/aretw0/trestle/pkg/domain"
)

const kindCycle = "cycle"

// CommandRegistrar is the part of the command registry the manager needs.
type CommandRegistrar interface {
	Get(name string) (domain.Command, bool)
	Check(defs ...domain.Command) error
	Add(def domain.Command) error
	TagCycle(command, cycle string) error
	DefaultPhase() string
}

// Manager stores cycles.
// It is not safe for concurrent use; registration is expected to finish before execution.
type Manager struct {
	logger   *slog.Logger
	commands CommandRegistrar
	cycles   map[string]*domain.Cycle
	order    []string
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the manager logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a manager registering inline members through cmds.
func New(cmds CommandRegistrar, opts ...Option) *Manager {
	m := &Manager{
		logger:   logging.NewNop(),
		commands: cmds,
		cycles:   make(map[string]*domain.Cycle),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// batch tracks what earlier definitions of one AddCycles call will register and tag.
type batch struct {
	commands map[string]domain.Command
	tags     map[string]string
}

// plan is a validated cycle waiting to be applied.
type plan struct {
	cycle  domain.Cycle     // normalized
	inline []domain.Command // members to register, cycle tag cleared
}

// AddCycles registers cycle definitions. Every definition is validated before any of them is
// applied, and the inline members of all definitions are checked together. A definition
// equivalent to a registered cycle, or to an earlier one of the same call, is skipped.
func (m *Manager) AddCycles(defs ...domain.Cycle) error {
	var plans []plan
	pending := &batch{
		commands: make(map[string]domain.Command),
		tags:     make(map[string]string),
	}

	for _, def := range defs {
		normalized := Normalize(def)

		if existing, dup := m.findEquivalent(normalized, plans); dup {
			if existing != normalized.Name {
				m.logger.Debug("cycle equivalent to a registered one", "cycle", normalized.Name, "existing", existing)
			}
			continue
		}
		if err := m.checkName(normalized, plans); err != nil {
			return err
		}

		p, err := m.validate(def, normalized, pending)
		if err != nil {
			return err
		}
		for _, cmd := range p.inline {
			pending.commands[cmd.Name] = cmd
		}
		for _, name := range normalized.MemberNames() {
			pending.tags[name] = normalized.Name
		}
		plans = append(plans, p)
	}

	var inline []domain.Command
	for _, p := range plans {
		inline = append(inline, p.inline...)
	}
	if err := m.commands.Check(inline...); err != nil {
		return err
	}

	for _, p := range plans {
		if err := m.apply(p); err != nil {
			return err
		}
	}
	return nil
}

func (m *Manager) findEquivalent(c domain.Cycle, pending []plan) (string, bool) {
	for _, name := range m.order {
		if Equivalent(*m.cycles[name], c) {
			return name, true
		}
	}
	for _, p := range pending {
		if Equivalent(p.cycle, c) {
			return p.cycle.Name, true
		}
	}
	return "", false
}

func (m *Manager) checkName(c domain.Cycle, pending []plan) error {
	if c.Name == "" {
		return domain.NewValidationError(kindCycle, "", "cycle name cannot be empty")
	}
	_, exists := m.cycles[c.Name]
	for _, p := range pending {
		exists = exists || p.cycle.Name == c.Name
	}
	if exists {
		return domain.NewValidationError(kindCycle, c.Name, "already registered with different members or markers")
	}
	return nil
}

func (m *Manager) validate(def, c domain.Cycle, pending *batch) (plan, error) {
	p := plan{cycle: c}

	if len(c.Members) == 0 {
		return p, domain.NewValidationError(kindCycle, c.Name, "cycle needs at least one member")
	}
	if c.MaxIterations < 0 {
		return p, domain.NewValidationError(kindCycle, c.Name, "max iterations cannot be negative")
	}

	names := c.MemberNames()
	for i, name := range names {
		if name == "" {
			return p, domain.NewValidationError(kindCycle, c.Name, "member %d has no command name", i)
		}
		if slices.Index(names, name) != i {
			return p, domain.NewValidationError(kindCycle, c.Name, "command %q listed twice", name)
		}
	}

	start, end := c.Markers()
	si, ei := slices.Index(names, start), slices.Index(names, end)
	if si < 0 {
		return p, domain.NewValidationError(kindCycle, c.Name, "loop start %q is not a member", start)
	}
	if ei < 0 {
		return p, domain.NewValidationError(kindCycle, c.Name, "loop end %q is not a member", end)
	}
	if si > ei {
		return p, domain.NewValidationError(kindCycle, c.Name, "loop start %q comes after loop end %q", start, end)
	}

	phase := ""
	for i, member := range def.Members {
		name := names[i]
		cmd, registered := m.commands.Get(name)
		if !registered {
			cmd, registered = pending.commands[name]
		}
		if tag, ok := pending.tags[name]; ok {
			cmd.Cycle = tag
		}

		switch {
		case registered:
			if cmd.Cycle != "" && cmd.Cycle != c.Name {
				return p, domain.NewValidationError(kindCycle, c.Name, "command %q already belongs to cycle %q", name, cmd.Cycle)
			}
		case member.Command.IsInline():
			cmd = *member.Command.Inline
			if cmd.Cycle != "" && cmd.Cycle != c.Name {
				return p, domain.NewValidationError(kindCycle, c.Name, "inline command %q declares cycle %q", name, cmd.Cycle)
			}
			cmd.Cycle = ""
			p.inline = append(p.inline, cmd)
		default:
			return p, &domain.NotFoundError{Kind: "command", Name: name}
		}

		cmdPhase := cmd.Phase
		if cmdPhase == "" {
			cmdPhase = m.commands.DefaultPhase()
		}
		if phase == "" {
			phase = cmdPhase
		} else if cmdPhase != phase {
			return p, domain.NewValidationError(kindCycle, c.Name, "members span phases %q and %q", phase, cmdPhase)
		}
	}
	return p, nil
}

func (m *Manager) apply(p plan) error {
	for _, cmd := range p.inline {
		if err := m.commands.Add(cmd); err != nil {
			return err
		}
	}
	for _, name := range p.cycle.MemberNames() {
		if err := m.commands.TagCycle(name, p.cycle.Name); err != nil {
			return err
		}
	}

	c := p.cycle
	m.cycles[c.Name] = &c
	m.order = append(m.order, c.Name)
	m.logger.Debug("cycle registered", "cycle", c.Name, "members", c.MemberNames())
	return nil
}

// CheckAttach reports whether Attach would accept cmd.
func (m *Manager) CheckAttach(cycle string, cmd domain.Command) error {
	c, ok := m.cycles[cycle]
	if !ok || slices.Contains(c.MemberNames(), cmd.Name) {
		return nil
	}
	if phase := m.phase(c); phase != "" && cmd.Phase != phase {
		return domain.NewValidationError(kindCycle, cycle, "command %q is in phase %q, cycle members are in %q", cmd.Name, cmd.Phase, phase)
	}
	return nil
}

// Attach appends a command declaring cycle to that cycle, creating the cycle when it does not exist.
func (m *Manager) Attach(cycle string, cmd domain.Command) error {
	if err := m.CheckAttach(cycle, cmd); err != nil {
		return err
	}
	c, ok := m.cycles[cycle]
	if !ok {
		c = &domain.Cycle{Name: cycle}
		m.cycles[cycle] = c
		m.order = append(m.order, cycle)
	}
	if !slices.Contains(c.MemberNames(), cmd.Name) {
		c.Members = append(c.Members, domain.CycleMember{Command: domain.CommandName(cmd.Name)})
	}
	m.logger.Debug("command attached to cycle", "cycle", cycle, "command", cmd.Name)
	return nil
}

func (m *Manager) phase(c *domain.Cycle) string {
	for _, name := range c.MemberNames() {
		if cmd, ok := m.commands.Get(name); ok {
			return cmd.Phase
		}
	}
	return ""
}

// Get returns a registered cycle.
func (m *Manager) Get(name string) (domain.Cycle, bool) {
	c, ok := m.cycles[name]
	if !ok {
		return domain.Cycle{}, false
	}
	out := *c
	out.Members = slices.Clone(c.Members)
	return out, true
}

// All returns the registered cycles in registration order.
func (m *Manager) All() []domain.Cycle {
	out := make([]domain.Cycle, 0, len(m.order))
	for _, name := range m.order {
		c, _ := m.Get(name)
		out = append(out, c)
	}
	return out
}
