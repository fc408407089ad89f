package tui

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/aretw0/trestle/internal/resolver"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/muesli/termenv"
)

// Printer writes plans and reports, coloured according to the terminal profile.
type Printer struct {
	out     io.Writer
	profile termenv.Profile
}

// NewPrinter creates a Printer. Use termenv.Ascii for uncoloured output.
func NewPrinter(out io.Writer, profile termenv.Profile) *Printer {
	return &Printer{out: out, profile: profile}
}

func (p *Printer) paint(s, hex string) termenv.Style {
	return p.profile.String(s).Foreground(p.profile.Color(hex))
}

// Plan writes the resolved order of every phase. Loop regions are marked with ↻.
func (p *Printer) Plan(plans []resolver.PhasePlan) {
	for _, plan := range plans {
		fmt.Fprintf(p.out, "%s\n", p.paint(plan.Phase, "#818cf8").Bold())
		if len(plan.Order) == 0 && len(plan.Gated) == 0 {
			fmt.Fprintln(p.out, "  (empty)")
		}

		inLoop := ""
		end := -1
		for i, name := range plan.Order {
			if loop, ok := plan.LoopStartingAt(name); ok {
				inLoop = loop.Cycle.Name
				end = i + len(loop.Region) - 1
				fmt.Fprintf(p.out, "  %s\n", p.paint("↻ "+loop.Cycle.Name+loopLimit(loop.Cycle), "#c084fc"))
			}
			indent := "  "
			if inLoop != "" {
				indent = "    "
			}
			fmt.Fprintf(p.out, "%s%d. %s\n", indent, i+1, name)
			if i == end {
				inLoop, end = "", -1
			}
		}
		if len(plan.Gated) > 0 {
			fmt.Fprintf(p.out, "  %s %s\n", p.paint("gated:", "#94a3b8"), strings.Join(plan.Gated, ", "))
		}
	}
}

func loopLimit(c domain.Cycle) string {
	var parts []string
	if c.WhileParam != "" {
		parts = append(parts, "while "+c.WhileParam)
	}
	if c.MaxIterations > 0 {
		parts = append(parts, fmt.Sprintf("max %d", c.MaxIterations))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// Report writes one line per outcome followed by a summary.
func (p *Printer) Report(r *domain.Report) {
	for _, o := range r.Outcomes {
		line := fmt.Sprintf("%-9s %s", o.Status, o.Command)
		if o.Iteration > 0 {
			line += fmt.Sprintf(" #%d", o.Iteration)
		}
		if o.Duration > 0 {
			line += fmt.Sprintf(" (%s)", o.Duration.Round(time.Microsecond))
		}
		if o.Err != nil {
			line += ": " + o.Err.Error()
		}
		fmt.Fprintln(p.out, p.paint(line, statusColor(o.Status)))
	}

	summary := fmt.Sprintf("%d succeeded, %d failed, %d skipped",
		len(r.Outcomes)-len(r.Failed())-len(r.Skipped()), len(r.Failed()), len(r.Skipped()))
	if r.OK() {
		fmt.Fprintln(p.out, p.paint(summary, statusColor(domain.StatusSucceeded)).Bold())
		return
	}
	fmt.Fprintln(p.out, p.paint(summary, statusColor(domain.StatusFailed)).Bold())
}

func statusColor(s domain.Status) string {
	switch s {
	case domain.StatusSucceeded:
		return "#22c55e"
	case domain.StatusFailed:
		return "#ef4444"
	case domain.StatusSkipped:
		return "#eab308"
	default:
		return "#94a3b8"
	}
}
