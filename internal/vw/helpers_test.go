package vw

import (
	"fmt"
	"testing"
	"time"
)

type fixedRoller int

func (r fixedRoller) Roll() int { return int(r) }

type seqIDs struct{ n int }

func (s *seqIDs) New() string {
	s.n++
	return fmt.Sprintf("e-%d", s.n)
}

// 2024-01-15 08:00 America/New_York.
var dayStart = time.Date(2024, 1, 15, 13, 0, 0, 0, time.UTC)

func newTestBoundary(t *testing.T) *BoundaryResolver {
	t.Helper()
	b, err := NewBoundaryResolver(DefaultZone, DefaultBoundaryHour)
	if err != nil {
		t.Fatalf("NewBoundaryResolver() error = %v", err)
	}
	return b
}

func newTestCombatant(id string, points int) *Combatant {
	v := NewVault(id, DefaultRules(), dayStart)
	v.CurrentPoints = points
	return &Combatant{Vault: v, Loadout: NewLoadout(id, dayStart)}
}

func newTestResolver(roll int) *Resolver {
	return NewResolver(fixedRoller(roll), &seqIDs{}, StackIndependent)
}

func withMove(c *Combatant, tmpl MoveTemplate) *Combatant {
	c.Loadout.Moves[tmpl.Name] = NewMoveState(tmpl.Name)
	return c
}

func withCard(c *Combatant, tmpl CardTemplate) *Combatant {
	c.Loadout.Cards[tmpl.Name] = NewCardState(tmpl)
	return c
}
