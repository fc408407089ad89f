package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventPhaseStart     EventType = "phase_start"
	EventCommandStart   EventType = "command_start"
	EventCommandFinish  EventType = "command_finish"
	EventCommandSkip    EventType = "command_skip"
	EventCycleIteration EventType = "cycle_iteration"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// PhaseEvent is emitted before a phase's resolved commands are attempted.
type PhaseEvent struct {
	EventBase
	Phase    string   `json:"phase"`
	Commands []string `json:"commands"`
}

// CommandEvent represents the start, finish or skip of a command.
type CommandEvent struct {
	EventBase
	Command   string        `json:"command"`
	Phase     string        `json:"phase"`
	Iteration int           `json:"iteration,omitempty"`
	Status    Status        `json:"status,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Err       error         `json:"-"`
}

// CycleEvent is emitted when a loop changes state or starts an iteration.
type CycleEvent struct {
	EventBase
	Cycle     string     `json:"cycle"`
	Iteration int        `json:"iteration"`
	State     CycleState `json:"state"`
}

// LifecycleHooks defines callbacks for orchestrator observability.
type LifecycleHooks struct {
	OnPhaseStart     func(context.Context, *PhaseEvent)
	OnCommandStart   func(context.Context, *CommandEvent)
	OnCommandFinish  func(context.Context, *CommandEvent)
	OnCommandSkip    func(context.Context, *CommandEvent)
	OnCycleIteration func(context.Context, *CycleEvent)
}
