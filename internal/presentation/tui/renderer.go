package tui

import (
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a function that renders markdown using glamour.
// Rich output adapts to the terminal background; otherwise the plain "notty" style is used.
func NewRenderer(rich bool, width int) (func(string) (string, error), error) {
	opts := []glamour.TermRendererOption{glamour.WithStandardStyle("notty")}
	if rich {
		opts = []glamour.TermRendererOption{glamour.WithAutoStyle()}
	}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}

	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return nil, err
	}
	return r.Render, nil
}
