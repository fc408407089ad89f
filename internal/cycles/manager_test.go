package cycles_test

import (
	"context"
	"testing"

	"github.com/aretw0/trestle/internal/commands"
	"github.com/aretw0/trestle/internal/cycles"
	"github.com/aretw0/trestle/internal/params"
	"github.com/aretw0/trestle/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(context.Context, map[string]any) error { return nil }

func setup(t *testing.T) (*cycles.Manager, *commands.Registry) {
	t.Helper()
	cmds := commands.New(params.New())
	m := cycles.New(cmds)
	cmds.SetCycleAttacher(m)
	return m, cmds
}

func member(name string) domain.CycleMember {
	return domain.CycleMember{Command: domain.CommandName(name)}
}

func inlineMember(c domain.Command) domain.CycleMember {
	return domain.CycleMember{Command: domain.InlineCommand(c)}
}

func TestEquivalent(t *testing.T) {
	inline := domain.Cycle{Name: "a", Members: []domain.CycleMember{inlineMember(domain.Command{Name: "x", Action: noop})}}
	named := domain.Cycle{Name: "b", Members: []domain.CycleMember{member("x")}}

	assert.True(t, cycles.Equivalent(inline, named))
	assert.True(t, cycles.Equivalent(named, inline), "equivalence is symmetric")

	explicit := named
	explicit.LoopStart, explicit.LoopEnd = "x", "x"
	assert.True(t, cycles.Equivalent(named, explicit), "default markers are the first and last member")

	two := domain.Cycle{Members: []domain.CycleMember{member("x"), member("y")}}
	reordered := domain.Cycle{Members: []domain.CycleMember{member("y"), member("x")}}
	assert.False(t, cycles.Equivalent(two, reordered))

	marked := two
	marked.LoopStart = "y"
	assert.False(t, cycles.Equivalent(two, marked))
}

func TestNormalize_IsPure(t *testing.T) {
	def := domain.Cycle{Name: " loop ", Members: []domain.CycleMember{inlineMember(domain.Command{Name: "x", Action: noop})}}
	n := cycles.Normalize(def)

	assert.Equal(t, "loop", n.Name)
	assert.False(t, n.Members[0].Command.IsInline())
	assert.True(t, def.Members[0].Command.IsInline(), "input is not modified")
}

func TestAddCycles_InlineThenName(t *testing.T) {
	m, cmds := setup(t)

	require.NoError(t, m.AddCycles(domain.Cycle{
		Name:    "first",
		Members: []domain.CycleMember{inlineMember(domain.Command{Name: "x", Action: noop})},
	}))
	require.NoError(t, m.AddCycles(domain.Cycle{
		Name:    "second",
		Members: []domain.CycleMember{member("x")},
	}))

	all := m.All()
	require.Len(t, all, 1)
	assert.Equal(t, "first", all[0].Name)

	x, ok := cmds.Get("x")
	require.True(t, ok)
	assert.Equal(t, "first", x.Cycle)
}

func TestAddCycles_DuplicateInOneCall(t *testing.T) {
	m, _ := setup(t)
	err := m.AddCycles(
		domain.Cycle{Name: "first", Members: []domain.CycleMember{inlineMember(domain.Command{Name: "x", Action: noop})}},
		domain.Cycle{Name: "second", Members: []domain.CycleMember{member("x")}},
	)
	require.NoError(t, err)
	assert.Len(t, m.All(), 1)
}

func TestAddCycles_Validation(t *testing.T) {
	tests := []struct {
		name  string
		cycle domain.Cycle
		want  error
	}{
		{"empty name", domain.Cycle{Members: []domain.CycleMember{member("a")}}, domain.ErrValidation},
		{"no members", domain.Cycle{Name: "c"}, domain.ErrValidation},
		{"unknown member", domain.Cycle{Name: "c", Members: []domain.CycleMember{member("ghost")}}, domain.ErrNotFound},
		{"repeated member", domain.Cycle{Name: "c", Members: []domain.CycleMember{member("a"), member("a")}}, domain.ErrValidation},
		{"start not a member", domain.Cycle{Name: "c", Members: []domain.CycleMember{member("a")}, LoopStart: "b"}, domain.ErrValidation},
		{"start after end", domain.Cycle{Name: "c", Members: []domain.CycleMember{member("a"), member("b")}, LoopStart: "b", LoopEnd: "a"}, domain.ErrValidation},
		{"mixed phases", domain.Cycle{Name: "c", Members: []domain.CycleMember{member("a"), member("late")}}, domain.ErrValidation},
		{"negative cap", domain.Cycle{Name: "c", Members: []domain.CycleMember{member("a")}, MaxIterations: -1}, domain.ErrValidation},
		{"invalid inline", domain.Cycle{Name: "c", Members: []domain.CycleMember{inlineMember(domain.Command{Name: "z"})}}, domain.ErrValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, cmds := setup(t)
			require.NoError(t, cmds.Add(domain.Command{Name: "a", Action: noop}))
			require.NoError(t, cmds.Add(domain.Command{Name: "b", Action: noop}))
			require.NoError(t, cmds.Add(domain.Command{Name: "late", Action: noop, Phase: "teardown"}))

			assert.ErrorIs(t, m.AddCycles(tt.cycle), tt.want)
			assert.Empty(t, m.All())
		})
	}
}

func TestAddCycles_AllOrNothing(t *testing.T) {
	m, cmds := setup(t)
	err := m.AddCycles(
		domain.Cycle{Name: "ok", Members: []domain.CycleMember{inlineMember(domain.Command{Name: "x", Action: noop})}},
		domain.Cycle{Name: "bad", Members: []domain.CycleMember{member("ghost")}},
	)
	require.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, m.All())
	assert.False(t, cmds.Has("x"))

	withParam := func(name string, typ domain.ParamType) domain.Command {
		return domain.Command{
			Name:           name,
			Action:         noop,
			RequiredParams: []domain.ParamRef{domain.InlineParam(domain.Parameter{Name: "p", Type: typ})},
		}
	}
	err = m.AddCycles(
		domain.Cycle{Name: "c1", Members: []domain.CycleMember{inlineMember(withParam("x", domain.ParamText))}},
		domain.Cycle{Name: "c2", Members: []domain.CycleMember{inlineMember(withParam("y", domain.ParamNumber))}},
	)
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), "already registered with a different definition")
	assert.Empty(t, m.All())
	assert.False(t, cmds.Has("x"))
	assert.False(t, cmds.Has("y"))
}

func TestAddCycles_NameConflict(t *testing.T) {
	m, cmds := setup(t)
	require.NoError(t, cmds.Add(domain.Command{Name: "a", Action: noop}))
	require.NoError(t, cmds.Add(domain.Command{Name: "b", Action: noop}))

	require.NoError(t, m.AddCycles(domain.Cycle{Name: "loop", Members: []domain.CycleMember{member("a")}}))
	require.NoError(t, m.AddCycles(domain.Cycle{Name: "loop", Members: []domain.CycleMember{member("a")}}))
	assert.ErrorIs(t, m.AddCycles(domain.Cycle{Name: "loop", Members: []domain.CycleMember{member("b")}}), domain.ErrValidation)
}

func TestAddCycles_MemberOfAnotherCycle(t *testing.T) {
	m, cmds := setup(t)
	require.NoError(t, cmds.Add(domain.Command{Name: "a", Action: noop}))
	require.NoError(t, cmds.Add(domain.Command{Name: "b", Action: noop}))
	require.NoError(t, m.AddCycles(domain.Cycle{Name: "one", Members: []domain.CycleMember{member("a")}}))

	err := m.AddCycles(domain.Cycle{Name: "two", Members: []domain.CycleMember{member("b"), member("a")}})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.Contains(t, err.Error(), `already belongs to cycle "one"`)

	b, _ := cmds.Get("b")
	assert.Empty(t, b.Cycle)
}

func TestAttach_FromCommandRegistration(t *testing.T) {
	m, cmds := setup(t)

	require.NoError(t, cmds.Add(domain.Command{Name: "poll", Action: noop, Cycle: "wait"}))
	require.NoError(t, cmds.Add(domain.Command{Name: "check", Action: noop, Cycle: "wait"}))

	c, ok := m.Get("wait")
	require.True(t, ok)
	assert.Equal(t, []string{"poll", "check"}, c.MemberNames())

	err := cmds.Add(domain.Command{Name: "cleanup", Action: noop, Cycle: "wait", Phase: "teardown"})
	require.ErrorIs(t, err, domain.ErrValidation)
	assert.False(t, cmds.Has("cleanup"))
}
