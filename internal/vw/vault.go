package vw

import (
	"fmt"
	"time"
)

const (
	// VaultHealthCooldown is how long a vault stays immune after its health reaches zero.
	VaultHealthCooldown = 4 * time.Hour

	// DebtVulnerabilityMultiplier scales incoming damage while debt is active.
	DebtVulnerabilityMultiplier = 1.5

	maxFirewall = 100
)

// Vault is a player's persistent resource ledger.
// Version is owned by the store and is used as the compare-and-swap precondition
// on every write; zero means the vault has never been persisted.
type Vault struct {
	OwnerID string `json:"owner_id"`
	Version int64  `json:"-"`

	Capacity      int `json:"capacity"`
	CurrentPoints int `json:"current_points"`
	TruthMetal    int `json:"truth_metal"`

	ShieldStrength    int `json:"shield_strength"`
	MaxShieldStrength int `json:"max_shield_strength"`
	OvershieldCount   int `json:"overshield_count"`

	VaultHealth              int        `json:"vault_health"`
	MaxVaultHealth           int        `json:"max_vault_health"`
	VaultHealthCooldownStart *time.Time `json:"vault_health_cooldown_start,omitempty"`

	Firewall int `json:"firewall"`

	DebtActive bool `json:"debt_active"`
	DebtAmount int  `json:"debt_amount"`

	MovesRemainingToday  int       `json:"moves_remaining_today"`
	MaxMovesPerDay       int       `json:"max_moves_per_day"`
	LastMoveResetInstant time.Time `json:"last_move_reset_instant"`

	GeneratorLevel          int       `json:"generator_level"`
	GeneratorPendingPoints  int       `json:"generator_pending_points"`
	GeneratorPendingShields int       `json:"generator_pending_shields"`
	GeneratorAccruedPoints  int       `json:"generator_accrued_points"`
	GeneratorAccruedShields int       `json:"generator_accrued_shields"`
	LastGeneratorTick       time.Time `json:"last_generator_tick"`

	// The current accrual segment: the level it runs at, the day fraction
	// it started at and what had accrued before it.
	GeneratorSegmentLevel   int     `json:"generator_segment_level"`
	GeneratorSegmentStart   float64 `json:"generator_segment_start"`
	GeneratorSegmentPoints  int     `json:"generator_segment_points"`
	GeneratorSegmentShields int     `json:"generator_segment_shields"`

	Boost *Boost `json:"boost,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VaultSnapshot is the part of a vault captured by siege audit records.
type VaultSnapshot struct {
	CurrentPoints  int `json:"current_points"`
	ShieldStrength int `json:"shield_strength"`
}

// NewVault creates a vault with default values for a first-time player.
func NewVault(ownerID string, rules Rules, now time.Time) *Vault {
	v := &Vault{
		OwnerID:               ownerID,
		Capacity:              rules.Capacity,
		MaxShieldStrength:     rules.MaxShieldStrength,
		MaxMovesPerDay:        rules.MaxMovesPerDay,
		MovesRemainingToday:   rules.MaxMovesPerDay,
		LastMoveResetInstant:  now,
		GeneratorLevel:        1,
		GeneratorSegmentLevel: 1,
		LastGeneratorTick:     now,
		CreatedAt:             now,
		UpdatedAt:             now,
	}
	v.VaultHealth = v.MaxHealth()
	return v
}

// MaxHealth returns MaxVaultHealth, or floor(capacity × 0.1) when it is unset.
func (v *Vault) MaxHealth() int {
	if v.MaxVaultHealth > 0 {
		return v.MaxVaultHealth
	}
	return v.Capacity / 10
}

// Snapshot captures points and shield for audit records.
func (v *Vault) Snapshot() VaultSnapshot {
	return VaultSnapshot{CurrentPoints: v.CurrentPoints, ShieldStrength: v.ShieldStrength}
}

// Clone returns a deep copy of the vault.
func (v *Vault) Clone() *Vault {
	c := *v
	if v.VaultHealthCooldownStart != nil {
		t := *v.VaultHealthCooldownStart
		c.VaultHealthCooldownStart = &t
	}
	if v.Boost != nil {
		b := *v.Boost
		c.Boost = &b
	}
	return &c
}

// Credit adds points scaled by the boost active at now. Capacity is not enforced.
// It returns the number of points actually added.
func (v *Vault) Credit(points int, now time.Time) (int, error) {
	if points < 0 {
		return 0, fmt.Errorf("credit amount must be non-negative: %d", points)
	}
	added := v.Boost.Apply(points, now)
	v.CurrentPoints += added
	return added, nil
}

// Debit subtracts points, failing with ErrInsufficientFunds if the balance is too low.
func (v *Vault) Debit(points int) error {
	if points < 0 {
		return fmt.Errorf("debit amount must be non-negative: %d", points)
	}
	if v.CurrentPoints < points {
		return fmt.Errorf("%w: have %d, need %d", ErrInsufficientFunds, v.CurrentPoints, points)
	}
	v.CurrentPoints -= points
	return nil
}

// DebitTruthMetal subtracts the secondary currency used to cast action cards.
func (v *Vault) DebitTruthMetal(amount int) error {
	if v.TruthMetal < amount {
		return fmt.Errorf("%w: have %d truth metal, need %d", ErrInsufficientFunds, v.TruthMetal, amount)
	}
	v.TruthMetal -= amount
	return nil
}

// ApplyShieldDelta adds amount to the shield, clamped to [0, MaxShieldStrength].
// It returns the change actually applied.
func (v *Vault) ApplyShieldDelta(amount int) int {
	before := v.ShieldStrength
	v.ShieldStrength = clamp(before+amount, 0, v.MaxShieldStrength)
	return v.ShieldStrength - before
}

// ApplyVaultHealthDelta adds amount to vault health, clamped to [0, MaxHealth()].
// Dropping to zero from a positive value starts the health cooldown.
// It returns the change actually applied.
func (v *Vault) ApplyVaultHealthDelta(amount int, now time.Time) int {
	before := v.VaultHealth
	v.VaultHealth = clamp(before+amount, 0, v.MaxHealth())
	if before > 0 && v.VaultHealth == 0 {
		start := now
		v.VaultHealthCooldownStart = &start
	}
	return v.VaultHealth - before
}

// RestoreVaultHealth is the early-restore path. Clearing the cooldown also
// removes the attack immunity it grants; that choice belongs to the caller.
func (v *Vault) RestoreVaultHealth(amount int, clearCooldown bool, now time.Time) int {
	restored := v.ApplyVaultHealthDelta(amount, now)
	if clearCooldown && v.VaultHealth > 0 {
		v.VaultHealthCooldownStart = nil
	}
	return restored
}

// CooldownRemaining returns the time left until the health cooldown ends,
// or zero when no cooldown is active.
func (v *Vault) CooldownRemaining(now time.Time) time.Duration {
	if v.VaultHealthCooldownStart == nil {
		return 0
	}
	left := v.VaultHealthCooldownStart.Add(VaultHealthCooldown).Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

// Immune reports whether the vault is inside its health cooldown window.
func (v *Vault) Immune(now time.Time) bool {
	return v.CooldownRemaining(now) > 0
}

// ExpireCooldown ends a finished health cooldown and refills vault health.
// It reports whether anything changed.
func (v *Vault) ExpireCooldown(now time.Time) bool {
	if v.VaultHealthCooldownStart == nil || v.CooldownRemaining(now) > 0 {
		return false
	}
	v.VaultHealthCooldownStart = nil
	v.VaultHealth = v.MaxHealth()
	return true
}

// ApplyFirewallDelta adjusts the firewall percentage within [0, 100].
func (v *Vault) ApplyFirewallDelta(amount int) int {
	before := v.Firewall
	v.Firewall = clamp(before+amount, 0, maxFirewall)
	return v.Firewall - before
}

// TakeLoan credits points and records them as debt. While debt is active the
// vault takes DebtVulnerabilityMultiplier times the incoming damage.
func (v *Vault) TakeLoan(amount int) error {
	if amount <= 0 {
		return fmt.Errorf("loan amount must be positive: %d", amount)
	}
	v.CurrentPoints += amount
	v.DebtAmount += amount
	v.DebtActive = true
	return nil
}

// RepayDebt debits up to amount against outstanding debt and returns what was repaid.
func (v *Vault) RepayDebt(amount int) (int, error) {
	if !v.DebtActive {
		return 0, fmt.Errorf("%w: no active debt", ErrNothingToRestore)
	}
	if amount <= 0 {
		return 0, fmt.Errorf("repay amount must be positive: %d", amount)
	}
	if amount > v.DebtAmount {
		amount = v.DebtAmount
	}
	if err := v.Debit(amount); err != nil {
		return 0, err
	}
	v.DebtAmount -= amount
	if v.DebtAmount == 0 {
		v.DebtActive = false
	}
	return amount, nil
}

// CheckInvariants verifies the clamped ranges hold.
func (v *Vault) CheckInvariants() error {
	switch {
	case v.CurrentPoints < 0:
		return fmt.Errorf("vault %s: negative points %d", v.OwnerID, v.CurrentPoints)
	case v.ShieldStrength < 0 || v.ShieldStrength > v.MaxShieldStrength:
		return fmt.Errorf("vault %s: shield %d outside [0, %d]", v.OwnerID, v.ShieldStrength, v.MaxShieldStrength)
	case v.VaultHealth < 0 || v.VaultHealth > v.MaxHealth():
		return fmt.Errorf("vault %s: health %d outside [0, %d]", v.OwnerID, v.VaultHealth, v.MaxHealth())
	case v.Firewall < 0 || v.Firewall > maxFirewall:
		return fmt.Errorf("vault %s: firewall %d outside [0, %d]", v.OwnerID, v.Firewall, maxFirewall)
	case v.OvershieldCount < 0 || v.DebtAmount < 0:
		return fmt.Errorf("vault %s: negative counter", v.OwnerID)
	}
	return nil
}

func clamp(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
