package vw

import (
	"fmt"
	"time"
)

// EffectKind separates beneficial from harmful modifiers.
type EffectKind string

const (
	EffectBuff   EffectKind = "buff"
	EffectDebuff EffectKind = "debuff"
)

// Modifier types understood by the combat resolver.
const (
	EffectBurn    = "burn"    // debuff: vault health damage each turn
	EffectWeaken  = "weaken"  // debuff: outgoing damage -strength%
	EffectExpose  = "expose"  // debuff: incoming damage +strength%
	EffectRegen   = "regen"   // buff: vault health restored each turn
	EffectEmpower = "empower" // buff: outgoing damage +strength%
	EffectFortify = "fortify" // buff: incoming damage -strength%
)

var effectKinds = map[string]EffectKind{
	EffectBurn:    EffectDebuff,
	EffectWeaken:  EffectDebuff,
	EffectExpose:  EffectDebuff,
	EffectRegen:   EffectBuff,
	EffectEmpower: EffectBuff,
	EffectFortify: EffectBuff,
}

// EffectKindOf returns the kind of a registered modifier type.
func EffectKindOf(typ string) (EffectKind, bool) {
	k, ok := effectKinds[typ]
	return k, ok
}

func validateEffectSpec(s EffectSpec, want EffectKind) error {
	kind, ok := EffectKindOf(s.Type)
	if !ok {
		return fmt.Errorf("unknown effect type %q", s.Type)
	}
	if kind != want {
		return fmt.Errorf("effect %q is a %s, not a %s", s.Type, kind, want)
	}
	if s.Duration < 1 || s.Strength < 0 {
		return fmt.Errorf("effect %q needs a positive duration and non-negative strength", s.Type)
	}
	return nil
}

// StackingPolicy decides what a repeated application of the same modifier does.
type StackingPolicy string

const (
	// StackIndependent keeps every application as its own entry.
	StackIndependent StackingPolicy = "stack"
	// StackReplace replaces an existing entry with the same type and source.
	StackReplace StackingPolicy = "replace"
)

// Valid reports whether p is a known policy.
func (p StackingPolicy) Valid() bool {
	return p == StackIndependent || p == StackReplace
}

// Effect is a time-boxed modifier attached to a combat participant.
type Effect struct {
	ID             string     `json:"id"`
	Kind           EffectKind `json:"kind"`
	Type           string     `json:"type"`
	Strength       int        `json:"strength"`
	DurationTurns  int        `json:"duration_turns"`
	RemainingTurns int        `json:"remaining_turns"`
	SourceID       string     `json:"source_id"`
	AppliedAt      time.Time  `json:"applied_at"`
}

// EffectLedger is the ordered modifier collection of one participant.
// Order is insertion order and only matters for display.
type EffectLedger struct {
	Entries []Effect `json:"entries"`
}

// Apply adds e according to policy.
func (l *EffectLedger) Apply(e Effect, policy StackingPolicy) {
	if policy == StackReplace {
		for i := range l.Entries {
			if l.Entries[i].Type == e.Type && l.Entries[i].SourceID == e.SourceID {
				l.Entries[i] = e
				return
			}
		}
	}
	l.Entries = append(l.Entries, e)
}

// Tick decrements every entry by one turn and removes the expired ones,
// which are returned.
func (l *EffectLedger) Tick() []Effect {
	var expired []Effect
	kept := l.Entries[:0]
	for _, e := range l.Entries {
		e.RemainingTurns--
		if e.RemainingTurns <= 0 {
			expired = append(expired, e)
			continue
		}
		kept = append(kept, e)
	}
	l.Entries = kept
	return expired
}

// OfType returns the active entries of a modifier type.
func (l *EffectLedger) OfType(typ string) []Effect {
	var out []Effect
	for _, e := range l.Entries {
		if e.Type == typ {
			out = append(out, e)
		}
	}
	return out
}

// TotalStrength sums the strength of every active entry of typ.
func (l *EffectLedger) TotalStrength(typ string) int {
	total := 0
	for _, e := range l.Entries {
		if e.Type == typ {
			total += e.Strength
		}
	}
	return total
}

// Cleanse removes every debuff and returns them.
func (l *EffectLedger) Cleanse() []Effect {
	var removed []Effect
	kept := l.Entries[:0]
	for _, e := range l.Entries {
		if e.Kind == EffectDebuff {
			removed = append(removed, e)
			continue
		}
		kept = append(kept, e)
	}
	l.Entries = kept
	return removed
}

// Clone returns a copy that shares no storage with l.
func (l EffectLedger) Clone() EffectLedger {
	if l.Entries == nil {
		return EffectLedger{}
	}
	return EffectLedger{Entries: append([]Effect(nil), l.Entries...)}
}
