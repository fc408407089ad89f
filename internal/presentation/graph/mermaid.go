package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/trestle/pkg/domain"
)

// Overlay contains run results to visualize on the graph.
type Overlay struct {
	Statuses map[string]domain.Status
}

// GenerateMermaid produces a Mermaid flowchart of registered commands, one subgraph per phase.
// It applies semantic styling:
// - Triggered (gated) command: {{Hexagon}}
// - Cycle member: ([Stadium])
// - Hidden command: [/Parallelogram/]
// - Default: [Rectangle]
// Edges: goesBefore/goesAfter as -->, nextCommands as ==>, requireBefore as a labelled dotted line.
func GenerateMermaid(phases []string, commands []domain.Command, overlay *Overlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	byPhase := make(map[string][]domain.Command)
	for _, c := range commands {
		byPhase[c.Phase] = append(byPhase[c.Phase], c)
	}

	for _, phase := range phases {
		cmds := byPhase[phase]
		if len(cmds) == 0 {
			continue
		}
		sb.WriteString(fmt.Sprintf("    subgraph %s[\"%s\"]\n", "phase_"+sanitizeMermaidID(phase), phase))
		for _, c := range cmds {
			opener, closer := "[", "]"
			switch {
			case c.TriggerParam != nil:
				opener, closer = "{{", "}}"
			case c.Cycle != "":
				opener, closer = "([", "])"
			case c.Hidden:
				opener, closer = "[/", "/]"
			}

			label := c.Name
			if c.Cycle != "" {
				label = fmt.Sprintf("%s <br/> ↻ %s", c.Name, c.Cycle)
			}
			if c.TriggerParam != nil {
				label = fmt.Sprintf("%s <br/> if %s", label, c.TriggerParam.Key())
			}
			sb.WriteString(fmt.Sprintf("        %s%s\"%s\"%s\n", sanitizeMermaidID(c.Name), opener, escape(label), closer))
		}
		sb.WriteString("    end\n")
	}

	for _, c := range commands {
		id := sanitizeMermaidID(c.Name)
		for _, target := range domain.Keys(c.GoesBefore) {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", id, sanitizeMermaidID(target)))
		}
		for _, target := range domain.Keys(c.GoesAfter) {
			sb.WriteString(fmt.Sprintf("    %s --> %s\n", sanitizeMermaidID(target), id))
		}
		for _, target := range domain.Keys(c.NextCommands) {
			sb.WriteString(fmt.Sprintf("    %s ==> %s\n", id, sanitizeMermaidID(target)))
		}
		for _, target := range domain.Keys(c.RequireBefore) {
			sb.WriteString(fmt.Sprintf("    %s -. \"requires\" .-> %s\n", sanitizeMermaidID(target), id))
		}
	}

	if overlay != nil && len(overlay.Statuses) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for contrast regardless of theme
		sb.WriteString("    classDef succeeded fill:#dcfce7,stroke:#15803d,stroke-width:2px,color:#000;\n")
		sb.WriteString("    classDef failed fill:#fee2e2,stroke:#b91c1c,stroke-width:3px,color:#000;\n")
		sb.WriteString("    classDef skipped fill:#fef9c3,stroke:#a16207,stroke-dasharray:4,color:#000;\n")

		for _, c := range commands {
			st, ok := overlay.Statuses[c.Name]
			if !ok || st == domain.StatusPending {
				continue
			}
			sb.WriteString(fmt.Sprintf("    class %s %s;\n", sanitizeMermaidID(c.Name), st))
		}
	}

	return sb.String()
}

// StatusesFromReport returns the final status of every attempted command.
func StatusesFromReport(r *domain.Report) map[string]domain.Status {
	out := make(map[string]domain.Status)
	if r == nil {
		return out
	}
	for _, o := range r.Outcomes {
		out[o.Command] = o.Status
	}
	return out
}

func escape(label string) string {
	return strings.ReplaceAll(label, "\"", "'")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
