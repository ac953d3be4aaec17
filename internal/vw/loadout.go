package vw

import "time"

// Loadout is a player's combat state: move and card overlays, active
// modifiers and the turn counter. It is stored separately from the vault
// and versioned the same way.
type Loadout struct {
	OwnerID string `json:"owner_id"`
	Version int64  `json:"-"`

	Moves   map[string]*MoveState `json:"moves"`
	Cards   map[string]*CardState `json:"cards"`
	Effects EffectLedger          `json:"effects"`
	Turn    int                   `json:"turn"`

	UpdatedAt time.Time `json:"updated_at"`
}

// NewLoadout creates an empty loadout.
func NewLoadout(ownerID string, now time.Time) *Loadout {
	return &Loadout{
		OwnerID:   ownerID,
		Moves:     make(map[string]*MoveState),
		Cards:     make(map[string]*CardState),
		UpdatedAt: now,
	}
}

// Clone returns a deep copy of the loadout.
func (l *Loadout) Clone() *Loadout {
	c := *l
	c.Moves = make(map[string]*MoveState, len(l.Moves))
	for k, m := range l.Moves {
		mc := *m
		c.Moves[k] = &mc
	}
	c.Cards = make(map[string]*CardState, len(l.Cards))
	for k, card := range l.Cards {
		cc := *card
		c.Cards[k] = &cc
	}
	c.Effects = l.Effects.Clone()
	return &c
}

// TickCooldowns decrements every move cooldown by one turn.
func (l *Loadout) TickCooldowns() {
	for _, m := range l.Moves {
		m.Tick()
	}
}
