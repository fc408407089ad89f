package dsl

import "github.com/aretw0/trestle/pkg/domain"

// CommandBuilder provides a fluent API for configuring a command.
//
// Relation methods accept command names; their *Command variants embed a definition inline,
// which registration turns into a separate command.
type CommandBuilder struct {
	cmd domain.Command
}

// Command starts a standalone command definition, e.g. for inline use.
func Command(name string) *CommandBuilder {
	return &CommandBuilder{cmd: domain.Command{Name: name}}
}

// Do sets the action.
func (c *CommandBuilder) Do(action domain.Action) *CommandBuilder {
	c.cmd.Action = action
	return c
}

// Describe sets the help text.
func (c *CommandBuilder) Describe(text string) *CommandBuilder {
	c.cmd.Description = text
	return c
}

// Needs adds required parameters by name.
func (c *CommandBuilder) Needs(names ...string) *CommandBuilder {
	for _, n := range names {
		c.cmd.RequiredParams = append(c.cmd.RequiredParams, domain.ParamName(n))
	}
	return c
}

// NeedsParam adds required parameters defined inline.
func (c *CommandBuilder) NeedsParam(params ...*ParamBuilder) *CommandBuilder {
	for _, p := range params {
		c.cmd.RequiredParams = append(c.cmd.RequiredParams, domain.InlineParam(p.Build()))
	}
	return c
}

// When gates the command on a parameter being truthy.
func (c *CommandBuilder) When(name string) *CommandBuilder {
	ref := domain.ParamName(name)
	c.cmd.TriggerParam = &ref
	return c
}

// WhenParam gates the command on a parameter defined inline.
func (c *CommandBuilder) WhenParam(p *ParamBuilder) *CommandBuilder {
	ref := domain.InlineParam(p.Build())
	c.cmd.TriggerParam = &ref
	return c
}

// Before orders the command ahead of others.
func (c *CommandBuilder) Before(names ...string) *CommandBuilder {
	c.cmd.GoesBefore = append(c.cmd.GoesBefore, domain.CommandNames(names...)...)
	return c
}

// BeforeCommand is Before with inline definitions.
func (c *CommandBuilder) BeforeCommand(cmds ...*CommandBuilder) *CommandBuilder {
	c.cmd.GoesBefore = append(c.cmd.GoesBefore, inline(cmds)...)
	return c
}

// After orders the command behind others.
func (c *CommandBuilder) After(names ...string) *CommandBuilder {
	c.cmd.GoesAfter = append(c.cmd.GoesAfter, domain.CommandNames(names...)...)
	return c
}

// AfterCommand is After with inline definitions.
func (c *CommandBuilder) AfterCommand(cmds ...*CommandBuilder) *CommandBuilder {
	c.cmd.GoesAfter = append(c.cmd.GoesAfter, inline(cmds)...)
	return c
}

// Then makes the given commands run immediately after this one.
func (c *CommandBuilder) Then(names ...string) *CommandBuilder {
	c.cmd.NextCommands = append(c.cmd.NextCommands, domain.CommandNames(names...)...)
	return c
}

// ThenCommand is Then with inline definitions.
func (c *CommandBuilder) ThenCommand(cmds ...*CommandBuilder) *CommandBuilder {
	c.cmd.NextCommands = append(c.cmd.NextCommands, inline(cmds)...)
	return c
}

// Requires makes the command depend on others having succeeded.
func (c *CommandBuilder) Requires(names ...string) *CommandBuilder {
	c.cmd.RequireBefore = append(c.cmd.RequireBefore, domain.CommandNames(names...)...)
	return c
}

// RequiresCommand is Requires with inline definitions.
func (c *CommandBuilder) RequiresCommand(cmds ...*CommandBuilder) *CommandBuilder {
	c.cmd.RequireBefore = append(c.cmd.RequireBefore, inline(cmds)...)
	return c
}

// Phase places the command in a phase other than the default one.
func (c *CommandBuilder) Phase(phase string) *CommandBuilder {
	c.cmd.Phase = phase
	return c
}

// InCycle attaches the command to a cycle, creating the cycle when it does not exist.
func (c *CommandBuilder) InCycle(cycle string) *CommandBuilder {
	c.cmd.Cycle = cycle
	return c
}

// Hidden hides the command from discovery.
func (c *CommandBuilder) Hidden() *CommandBuilder {
	c.cmd.Hidden = true
	return c
}

// Build returns the underlying domain.Command.
func (c *CommandBuilder) Build() domain.Command {
	return c.cmd
}

func inline(cmds []*CommandBuilder) []domain.CommandRef {
	refs := make([]domain.CommandRef, 0, len(cmds))
	for _, cb := range cmds {
		refs = append(refs, domain.InlineCommand(cb.Build()))
	}
	return refs
}
