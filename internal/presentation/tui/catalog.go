package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/trestle/pkg/domain"
)

// Catalog renders the discoverable commands and the parameters as markdown.
func Catalog(commands []domain.Command, params []domain.Parameter) string {
	var sb strings.Builder

	sb.WriteString("# Commands\n\n")
	if len(commands) == 0 {
		sb.WriteString("_No commands registered._\n\n")
	}
	for _, c := range commands {
		sb.WriteString(fmt.Sprintf("## %s\n\n", c.Name))
		if c.Description != "" {
			sb.WriteString(c.Description + "\n\n")
		}
		sb.WriteString(fmt.Sprintf("- **phase**: %s\n", c.Phase))
		if c.Cycle != "" {
			sb.WriteString(fmt.Sprintf("- **cycle**: %s\n", c.Cycle))
		}
		if names := paramNames(c.RequiredParams); names != "" {
			sb.WriteString(fmt.Sprintf("- **parameters**: %s\n", names))
		}
		if c.TriggerParam != nil {
			sb.WriteString(fmt.Sprintf("- **runs when**: `%s`\n", c.TriggerParam.Key()))
		}
		for _, k := range domain.Constraints {
			if names := domain.Keys(c.Refs(k)); len(names) > 0 {
				sb.WriteString(fmt.Sprintf("- **%s**: %s\n", k, code(names)))
			}
		}
		sb.WriteString("\n")
	}

	if len(params) == 0 {
		return sb.String()
	}

	sb.WriteString("# Parameters\n\n")
	sb.WriteString("| Name | Type | Aliases | Default | Flags |\n")
	sb.WriteString("|---|---|---|---|---|\n")
	for _, p := range params {
		def := ""
		if p.Default != nil {
			def = fmt.Sprintf("`%v`", p.Default)
		}
		var flags []string
		if p.Required {
			flags = append(flags, "required")
		}
		if p.Persistent {
			flags = append(flags, "persistent")
		}
		if p.Registration == domain.RegisterImmediate {
			flags = append(flags, "immediate")
		}
		sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n", p.Name, p.Type, code(p.Aliases), def, strings.Join(flags, ", ")))
	}
	return sb.String()
}

func paramNames(refs []domain.ParamRef) string {
	names := make([]string, 0, len(refs))
	for _, r := range refs {
		names = append(names, r.Key())
	}
	return code(names)
}

func code(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, s := range items {
		quoted = append(quoted, "`"+s+"`")
	}
	return strings.Join(quoted, ", ")
}
