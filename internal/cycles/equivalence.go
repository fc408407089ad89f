package cycles

import (
	"slices"
	"strings"

	"github.com/aretw0/trestle/pkg/domain"
)

// Normalize returns a copy of c whose members are plain name references.
// It has no side effects; inline definitions are not registered here.
func Normalize(c domain.Cycle) domain.Cycle {
	out := c
	out.Name = strings.TrimSpace(c.Name)
	out.LoopStart = strings.TrimSpace(c.LoopStart)
	out.LoopEnd = strings.TrimSpace(c.LoopEnd)
	out.Members = make([]domain.CycleMember, 0, len(c.Members))
	for _, m := range c.Members {
		out.Members = append(out.Members, domain.CycleMember{
			Command: domain.CommandName(strings.TrimSpace(m.Command.Key())),
		})
	}
	return out
}

// Equivalent reports whether two cycles have the same ordered member names and the same
// effective loop markers. Members are normalized first, so an inline member and a name
// reference to the same command compare equal. Names and iteration settings are ignored.
func Equivalent(a, b domain.Cycle) bool {
	a, b = Normalize(a), Normalize(b)
	if !slices.Equal(a.MemberNames(), b.MemberNames()) {
		return false
	}
	aStart, aEnd := a.Markers()
	bStart, bEnd := b.Markers()
	return aStart == bStart && aEnd == bEnd
}
