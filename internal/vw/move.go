package vw

import (
	"fmt"
	"math"
)

// MoveCategory groups moves by origin.
type MoveCategory string

const (
	CategoryManifest  MoveCategory = "manifest"
	CategoryElemental MoveCategory = "elemental"
	CategorySystem    MoveCategory = "system"
)

// MoveType determines how a move targets.
type MoveType string

const (
	MoveAttack   MoveType = "attack"
	MoveDefense  MoveType = "defense"
	MoveUtility  MoveType = "utility"
	MoveSupport  MoveType = "support"
	MoveControl  MoveType = "control"
	MoveMobility MoveType = "mobility"
	MoveStealth  MoveType = "stealth"
	MoveReveal   MoveType = "reveal"
	MoveCleanse  MoveType = "cleanse"
)

// MaxMastery is the highest mastery level of a move or card.
const MaxMastery = 5

var masteryMultipliers = [MaxMastery]float64{1.0, 1.25, 1.5, 1.75, 2.0}

// Valid reports whether c is a known category.
func (c MoveCategory) Valid() bool {
	switch c {
	case CategoryManifest, CategoryElemental, CategorySystem:
		return true
	}
	return false
}

// Valid reports whether t is a known move type.
func (t MoveType) Valid() bool {
	switch t {
	case MoveAttack, MoveDefense, MoveUtility, MoveSupport, MoveControl,
		MoveMobility, MoveStealth, MoveReveal, MoveCleanse:
		return true
	}
	return false
}

// Offensive reports whether the move must target another player's vault.
func (t MoveType) Offensive() bool {
	switch t {
	case MoveAttack, MoveControl, MoveReveal:
		return true
	}
	return false
}

// MasteryMultiplier scales payloads by mastery level; level 1 is 1.0.
// Levels outside [1, MaxMastery] are clamped.
func MasteryMultiplier(level int) float64 {
	return masteryMultipliers[clamp(level, 1, MaxMastery)-1]
}

// ScaleByMastery returns floor(base × MasteryMultiplier(level)).
func ScaleByMastery(base, level int) int {
	return int(math.Floor(float64(base) * MasteryMultiplier(level)))
}

// EffectSpec is a buff or debuff payload carried by a move or card.
type EffectSpec struct {
	Type     string `json:"type" yaml:"type"`
	Strength int    `json:"strength" yaml:"strength"`
	Duration int    `json:"duration" yaml:"duration"`
}

// MoveTemplate is the static catalog definition of a move.
type MoveTemplate struct {
	Name          string       `json:"name" yaml:"name"`
	Description   string       `json:"description,omitempty" yaml:"description"`
	Category      MoveCategory `json:"category" yaml:"category"`
	Type          MoveType     `json:"type" yaml:"type"`
	Cost          int          `json:"cost" yaml:"cost"`
	Damage        int          `json:"damage,omitempty" yaml:"damage"`
	ShieldDamage  int          `json:"shield_damage,omitempty" yaml:"shield_damage"`
	PointsStolen  int          `json:"points_stolen,omitempty" yaml:"points_stolen"`
	Healing       int          `json:"healing,omitempty" yaml:"healing"`
	ShieldBoost   int          `json:"shield_boost,omitempty" yaml:"shield_boost"`
	Buff          *EffectSpec  `json:"buff,omitempty" yaml:"buff"`
	Debuff        *EffectSpec  `json:"debuff,omitempty" yaml:"debuff"`
	CooldownTurns int          `json:"cooldown_turns" yaml:"cooldown_turns"`
}

// Validate checks the template against the move type rules.
func (m MoveTemplate) Validate() error {
	if m.Name == "" {
		return fmt.Errorf("move has no name")
	}
	if !m.Category.Valid() {
		return fmt.Errorf("move %s: unknown category %q", m.Name, m.Category)
	}
	if !m.Type.Valid() {
		return fmt.Errorf("move %s: unknown type %q", m.Name, m.Type)
	}
	if m.Cost < 0 || m.Damage < 0 || m.ShieldDamage < 0 || m.PointsStolen < 0 ||
		m.Healing < 0 || m.ShieldBoost < 0 || m.CooldownTurns < 0 {
		return fmt.Errorf("move %s: negative value", m.Name)
	}
	if !m.Type.Offensive() && (m.Damage > 0 || m.ShieldDamage > 0 || m.PointsStolen > 0 || m.Debuff != nil) {
		return fmt.Errorf("move %s: %s moves cannot carry offensive payloads", m.Name, m.Type)
	}
	if m.Buff != nil {
		if err := validateEffectSpec(*m.Buff, EffectBuff); err != nil {
			return fmt.Errorf("move %s: %w", m.Name, err)
		}
	}
	if m.Debuff != nil {
		if err := validateEffectSpec(*m.Debuff, EffectDebuff); err != nil {
			return fmt.Errorf("move %s: %w", m.Name, err)
		}
	}
	return nil
}

// MoveState is a player's overlay on a catalog move.
type MoveState struct {
	Name            string `json:"name"`
	MasteryLevel    int    `json:"mastery_level"`
	CurrentCooldown int    `json:"current_cooldown"`
	Unlocked        bool   `json:"unlocked"`
}

// NewMoveState creates the overlay for a newly unlocked move.
func NewMoveState(name string) *MoveState {
	return &MoveState{Name: name, MasteryLevel: 1, Unlocked: true}
}

// Eligible reports whether the move can be used now.
func (s *MoveState) Eligible() bool {
	return s.Unlocked && s.CurrentCooldown == 0
}

// Use starts the cooldown of the move.
func (s *MoveState) Use(tmpl MoveTemplate) {
	s.CurrentCooldown = tmpl.CooldownTurns
}

// Tick advances the cooldown by one owner turn.
func (s *MoveState) Tick() {
	if s.CurrentCooldown > 0 {
		s.CurrentCooldown--
	}
}
