package dsl

import "github.com/aretw0/trestle/pkg/domain"

// CycleBuilder provides a fluent API for configuring a cycle.
type CycleBuilder struct {
	cycle domain.Cycle
}

// Members appends members by command name.
func (c *CycleBuilder) Members(names ...string) *CycleBuilder {
	for _, n := range names {
		c.cycle.Members = append(c.cycle.Members, domain.CycleMember{Command: domain.CommandName(n)})
	}
	return c
}

// Member appends members defined inline.
func (c *CycleBuilder) Member(cmds ...*CommandBuilder) *CycleBuilder {
	for _, cb := range cmds {
		c.cycle.Members = append(c.cycle.Members, domain.CycleMember{Command: domain.InlineCommand(cb.Build())})
	}
	return c
}

// Loop sets the first and last member of the repeated region.
func (c *CycleBuilder) Loop(start, end string) *CycleBuilder {
	c.cycle.LoopStart = start
	c.cycle.LoopEnd = end
	return c
}

// While repeats the region while the parameter is truthy.
func (c *CycleBuilder) While(param string) *CycleBuilder {
	c.cycle.WhileParam = param
	return c
}

// Max caps the number of iterations.
func (c *CycleBuilder) Max(n int) *CycleBuilder {
	c.cycle.MaxIterations = n
	return c
}

// Build returns the underlying domain.Cycle.
func (c *CycleBuilder) Build() domain.Cycle {
	return c.cycle
}
