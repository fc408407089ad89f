package dsl

import "github.com/aretw0/trestle/pkg/domain"

// Builder collects parameter, command and cycle definitions in declaration order.
type Builder struct {
	params   []*ParamBuilder
	commands []*CommandBuilder
	cycles   []*CycleBuilder

	paramIdx   map[string]*ParamBuilder
	commandIdx map[string]*CommandBuilder
	cycleIdx   map[string]*CycleBuilder
}

// New creates a new definition builder.
func New() *Builder {
	return &Builder{
		paramIdx:   make(map[string]*ParamBuilder),
		commandIdx: make(map[string]*CommandBuilder),
		cycleIdx:   make(map[string]*CycleBuilder),
	}
}

// Param declares a top-level parameter (text unless another type is chosen).
// If the parameter already exists, it returns the existing builder.
func (b *Builder) Param(name string) *ParamBuilder {
	if pb, ok := b.paramIdx[name]; ok {
		return pb
	}
	pb := Param(name)
	b.paramIdx[name] = pb
	b.params = append(b.params, pb)
	return pb
}

// Command declares a top-level command.
// If the command already exists, it returns the existing builder.
func (b *Builder) Command(name string) *CommandBuilder {
	if cb, ok := b.commandIdx[name]; ok {
		return cb
	}
	cb := Command(name)
	b.commandIdx[name] = cb
	b.commands = append(b.commands, cb)
	return cb
}

// Cycle declares a cycle.
// If the cycle already exists, it returns the existing builder.
func (b *Builder) Cycle(name string) *CycleBuilder {
	if cy, ok := b.cycleIdx[name]; ok {
		return cy
	}
	cy := &CycleBuilder{cycle: domain.Cycle{Name: name}}
	b.cycleIdx[name] = cy
	b.cycles = append(b.cycles, cy)
	return cy
}

// Build returns the collected definitions, ready for Engine.Register.
func (b *Builder) Build() domain.Definitions {
	var defs domain.Definitions
	for _, pb := range b.params {
		defs.Parameters = append(defs.Parameters, pb.Build())
	}
	for _, cb := range b.commands {
		defs.Commands = append(defs.Commands, cb.Build())
	}
	for _, cy := range b.cycles {
		defs.Cycles = append(defs.Cycles, cy.Build())
	}
	return defs
}
