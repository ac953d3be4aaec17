package vw

import "time"

// SiegeAttack is the immutable audit record of one resolved attack on a vault.
type SiegeAttack struct {
	ID            string        `json:"id"`
	AttackerID    string        `json:"attacker_id"`
	TargetID      string        `json:"target_id"`
	Action        string        `json:"action"`
	Damage        int           `json:"damage"`
	ShieldDamage  int           `json:"shield_damage"`
	HealthDamage  int           `json:"health_damage"`
	PointsDrained int           `json:"points_drained"`
	PointsStolen  int           `json:"points_stolen"`
	Nullified     bool          `json:"nullified"`
	Absorbed      bool          `json:"absorbed"`
	Before        VaultSnapshot `json:"before"`
	After         VaultSnapshot `json:"after"`
	CreatedAt     time.Time     `json:"created_at"`
}

// NewSiegeAttack builds the audit record for an offensive result.
func NewSiegeAttack(id string, r MoveResult, now time.Time) *SiegeAttack {
	return &SiegeAttack{
		ID:            id,
		AttackerID:    r.CasterID,
		TargetID:      r.TargetID,
		Action:        r.Action,
		Damage:        r.Damage,
		ShieldDamage:  r.ShieldDamage,
		HealthDamage:  r.HealthDamage,
		PointsDrained: r.PointsDrained,
		PointsStolen:  r.PointsStolen,
		Nullified:     r.Nullified,
		Absorbed:      r.Absorbed,
		Before:        r.TargetBefore,
		After:         r.TargetAfter,
		CreatedAt:     now,
	}
}
