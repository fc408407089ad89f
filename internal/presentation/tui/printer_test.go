package tui

import (
	"bytes"
	"errors"
	"testing"

	"github.com/aretw0/trestle/internal/resolver"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
)

func TestPrinter_Plan(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, termenv.Ascii)

	p.Plan([]resolver.PhasePlan{
		{Phase: "setup"},
		{
			Phase: "main",
			Order: []string{"fetch", "tick", "tock", "report"},
			Gated: []string{"smoke"},
			Loops: []resolver.Loop{{
				Cycle:  domain.Cycle{Name: "clock", WhileParam: "again", MaxIterations: 3},
				Region: []string{"tick", "tock"},
			}},
		},
	})

	assert.Equal(t, `setup
  (empty)
main
  1. fetch
  ↻ clock (while again, max 3)
    2. tick
    3. tock
  4. report
  gated: smoke
`, buf.String())
}

func TestPrinter_Report(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, termenv.Ascii)

	r := &domain.Report{}
	r.Add(domain.Outcome{Command: "build", Status: domain.StatusSucceeded})
	r.Add(domain.Outcome{Command: "test", Status: domain.StatusFailed, Err: errors.New("exit 1")})
	r.Add(domain.Outcome{Command: "deploy", Status: domain.StatusSkipped, Err: &domain.SkipError{Command: "deploy", Predecessor: "test", Reason: "failed"}})
	p.Report(r)

	out := buf.String()
	assert.Contains(t, out, "succeeded build\n")
	assert.Contains(t, out, "failed    test: exit 1\n")
	assert.Contains(t, out, `skipped   deploy: command "deploy" skipped: required predecessor "test" failed`)
	assert.Contains(t, out, "1 succeeded, 1 failed, 1 skipped\n")
}

func TestCatalog(t *testing.T) {
	trigger := domain.ParamName("verify")
	md := Catalog(
		[]domain.Command{{
			Name:           "deploy",
			Description:    "Ship it.",
			Phase:          "main",
			RequiredParams: []domain.ParamRef{domain.ParamName("target")},
			TriggerParam:   &trigger,
			RequireBefore:  domain.CommandNames("build"),
		}},
		[]domain.Parameter{{Name: "target", Type: domain.ParamText, Aliases: []string{"--target"}, Required: true, Persistent: true}},
	)

	assert.Contains(t, md, "## deploy\n\nShip it.\n")
	assert.Contains(t, md, "- **parameters**: `target`\n")
	assert.Contains(t, md, "- **runs when**: `verify`\n")
	assert.Contains(t, md, "- **requireBefore**: `build`\n")
	assert.Contains(t, md, "| target | text | `--target` |  | required, persistent |\n")

	assert.Contains(t, Catalog(nil, nil), "_No commands registered._")
}

func TestRenderer(t *testing.T) {
	render, err := NewRenderer(false, 80)
	assert.NoError(t, err)
	out, err := render("# Commands\n\n## deploy\n")
	assert.NoError(t, err)
	assert.Contains(t, out, "deploy")
}

func TestPrintBanner(t *testing.T) {
	var buf bytes.Buffer
	PrintBanner(&buf, termenv.Ascii)
	assert.Contains(t, buf.String(), "|_   _|")
}
