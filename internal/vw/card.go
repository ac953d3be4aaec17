package vw

import "fmt"

// Card effect types. Any other type must be a registered buff or debuff.
const (
	CardDamage      = "damage"
	CardShieldBreak = "shield_break"
	CardSteal       = "steal"
	CardHeal        = "heal"
	CardShield      = "shield"
	CardOvershield  = "overshield"
	CardFirewall    = "firewall"
	CardCleanse     = "cleanse"
)

// CardEffect is the payload of an action card.
type CardEffect struct {
	Type     string `json:"type" yaml:"type"`
	Strength int    `json:"strength" yaml:"strength"`
	Duration int    `json:"duration,omitempty" yaml:"duration"`
}

// Offensive reports whether the effect must target another player's vault.
func (e CardEffect) Offensive() bool {
	switch e.Type {
	case CardDamage, CardShieldBreak, CardSteal:
		return true
	}
	kind, ok := EffectKindOf(e.Type)
	return ok && kind == EffectDebuff
}

// CardTemplate is the static catalog definition of an action card.
type CardTemplate struct {
	Name           string     `json:"name" yaml:"name"`
	Description    string     `json:"description,omitempty" yaml:"description"`
	Effect         CardEffect `json:"effect" yaml:"effect"`
	MaxUses        int        `json:"max_uses" yaml:"max_uses"`
	TruthMetalCost int        `json:"truth_metal_cost" yaml:"truth_metal_cost"`
	// MasteryStrength maps mastery level-1 to effect strength. Levels past the
	// table scale the base strength by MasteryMultiplier.
	MasteryStrength []int `json:"mastery_strength,omitempty" yaml:"mastery_strength"`
}

// Validate checks the card definition.
func (c CardTemplate) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("card has no name")
	}
	if c.MaxUses < 1 {
		return fmt.Errorf("card %s: max_uses must be at least 1", c.Name)
	}
	if c.TruthMetalCost < 0 || c.Effect.Strength < 0 || c.Effect.Duration < 0 {
		return fmt.Errorf("card %s: negative value", c.Name)
	}
	switch c.Effect.Type {
	case CardDamage, CardShieldBreak, CardSteal, CardHeal, CardShield, CardOvershield, CardFirewall, CardCleanse:
	default:
		if _, ok := EffectKindOf(c.Effect.Type); !ok {
			return fmt.Errorf("card %s: unknown effect type %q", c.Name, c.Effect.Type)
		}
		if c.Effect.Duration < 1 {
			return fmt.Errorf("card %s: %s effect needs a duration", c.Name, c.Effect.Type)
		}
	}
	for i := 1; i < len(c.MasteryStrength); i++ {
		if c.MasteryStrength[i] < c.MasteryStrength[i-1] {
			return fmt.Errorf("card %s: mastery strength decreases at level %d", c.Name, i+1)
		}
	}
	return nil
}

// Strength returns the effect strength at mastery level.
func (c CardTemplate) Strength(level int) int {
	level = clamp(level, 1, MaxMastery)
	if level <= len(c.MasteryStrength) {
		return c.MasteryStrength[level-1]
	}
	return ScaleByMastery(c.Effect.Strength, level)
}

// CardState is a player's overlay on a catalog card.
type CardState struct {
	Name          string `json:"name"`
	UsesRemaining int    `json:"uses_remaining"`
	MasteryLevel  int    `json:"mastery_level"`
	Unlocked      bool   `json:"unlocked"`
}

// NewCardState creates the overlay for a newly unlocked card with full uses.
func NewCardState(tmpl CardTemplate) *CardState {
	return &CardState{Name: tmpl.Name, UsesRemaining: tmpl.MaxUses, MasteryLevel: 1, Unlocked: true}
}

// Reset refills the card to its maximum uses.
func (s *CardState) Reset(tmpl CardTemplate) {
	s.UsesRemaining = tmpl.MaxUses
}
