package domain

import "time"

// Status is the result of attempting one command.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded"
	StatusFailed    Status = "failed"
	StatusSkipped   Status = "skipped"
)

// Outcome records one attempt of a command. Loop members produce one outcome per iteration.
type Outcome struct {
	Command   string
	Phase     string
	Status    Status
	Err       error
	Iteration int
	Duration  time.Duration
}

// Report collects the outcomes of a run in execution order.
type Report struct {
	Outcomes []Outcome
}

// Add appends an outcome.
func (r *Report) Add(o Outcome) {
	r.Outcomes = append(r.Outcomes, o)
}

// Status returns the latest status of a command, or StatusPending if it was never attempted.
func (r *Report) Status(command string) Status {
	for i := len(r.Outcomes) - 1; i >= 0; i-- {
		if r.Outcomes[i].Command == command {
			return r.Outcomes[i].Status
		}
	}
	return StatusPending
}

// Failed returns the failed outcomes.
func (r *Report) Failed() []Outcome { return r.filter(StatusFailed) }

// Skipped returns the skipped outcomes.
func (r *Report) Skipped() []Outcome { return r.filter(StatusSkipped) }

// OK reports whether no command failed or was skipped.
func (r *Report) OK() bool {
	return len(r.Failed()) == 0 && len(r.Skipped()) == 0
}

func (r *Report) filter(s Status) []Outcome {
	var out []Outcome
	for _, o := range r.Outcomes {
		if o.Status == s {
			out = append(out, o)
		}
	}
	return out
}
