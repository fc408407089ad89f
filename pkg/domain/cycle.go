package domain

import "context"

// CycleMember is one command of a cycle.
type CycleMember struct {
	Command CommandRef `mapstructure:"command"`
}

// Cycle is a named, bounded, repeatable sequence of commands.
// Commands from LoopStart to LoopEnd are re-invoked per iteration; members outside that
// region run once. Empty markers default to the first and last member.
type Cycle struct {
	Name      string        `json:"name" yaml:"name" mapstructure:"name"`
	Members   []CycleMember `json:"-" yaml:"-" mapstructure:"members"`
	LoopStart string        `json:"loop_start,omitempty" yaml:"loop_start,omitempty" mapstructure:"loop_start"`
	LoopEnd   string        `json:"loop_end,omitempty" yaml:"loop_end,omitempty" mapstructure:"loop_end"`

	// WhileParam names the parameter governing iteration; the loop repeats while it is truthy.
	WhileParam string `json:"while,omitempty" yaml:"while,omitempty" mapstructure:"while"`
	// MaxIterations caps iteration. Zero means one iteration without WhileParam, no cap with it.
	MaxIterations int `json:"max_iterations,omitempty" yaml:"max_iterations,omitempty" mapstructure:"max_iterations"`
}

// MemberNames returns the resolved member names in order.
func (c Cycle) MemberNames() []string {
	names := make([]string, 0, len(c.Members))
	for _, m := range c.Members {
		names = append(names, m.Command.Key())
	}
	return names
}

// Markers returns the effective loop-start and loop-end member names.
func (c Cycle) Markers() (start, end string) {
	start, end = c.LoopStart, c.LoopEnd
	if len(c.Members) == 0 {
		return start, end
	}
	if start == "" {
		start = c.Members[0].Command.Key()
	}
	if end == "" {
		end = c.Members[len(c.Members)-1].Command.Key()
	}
	return start, end
}

// CycleState tracks loop execution.
type CycleState string

const (
	CycleNotStarted CycleState = "not_started"
	CycleRunning    CycleState = "running"
	CycleCompleted  CycleState = "completed"
)

// LoopCondition decides whether a cycle runs another iteration after iteration n.
type LoopCondition func(ctx context.Context, cycle Cycle, n int) (bool, error)
