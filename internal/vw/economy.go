package vw

import (
	"context"
	"fmt"
	"time"
)

// Vault returns a snapshot of a player's vault, creating it with default
// values on first access. The returned copy is safe to read; changing it has
// no effect on stored state.
func (s *VWService) Vault(ctx context.Context, ownerID string) (*Vault, error) {
	unlock := s.locks.lock(ownerID)
	defer unlock()

	now := s.clock.Now()
	v, err := s.loadVault(ctx, ownerID, now, true)
	if err != nil {
		return nil, err
	}
	log, err := s.offlineLog(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	s.scheduler.Sync(v, log, now)

	if v.Version == 0 {
		if err := s.commit(ctx, &Changeset{Vaults: []*Vault{v}}, now); err != nil {
			return nil, err
		}
	}
	return v.Clone(), nil
}

// Loadout returns a snapshot of a player's moves, cards and active modifiers.
func (s *VWService) Loadout(ctx context.Context, ownerID string) (*Loadout, error) {
	l, err := s.loadLoadout(ctx, ownerID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return l.Clone(), nil
}

// Credit adds points to the actor's vault, multiplied by any active boost.
// It returns the amount actually credited.
func (s *VWService) Credit(ctx context.Context, actorID string, points int) (int, error) {
	var credited int
	_, err := s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		var err error
		credited, err = v.Credit(points, now)
		return err
	})
	if err != nil {
		s.logger.Warn("credit rejected", "actor", actorID, "points", points, "error", err)
		return 0, err
	}
	s.logger.Info("points credited", "actor", actorID, "requested", points, "credited", credited)
	return credited, nil
}

// Debit removes points from the actor's vault or fails with ErrInsufficientFunds.
func (s *VWService) Debit(ctx context.Context, actorID string, points int) error {
	_, err := s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		return v.Debit(points)
	})
	if err != nil {
		s.logger.Warn("debit rejected", "actor", actorID, "points", points, "error", err)
		return err
	}
	s.logger.Info("points debited", "actor", actorID, "points", points)
	return nil
}

// GrantTruthMetal adds truth metal to the actor's vault.
func (s *VWService) GrantTruthMetal(ctx context.Context, actorID string, amount int) error {
	if amount <= 0 {
		return fmt.Errorf("truth metal amount must be positive: %d", amount)
	}
	_, err := s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		v.TruthMetal += amount
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("truth metal granted", "actor", actorID, "amount", amount)
	return nil
}

// CollectGenerator moves the generator's pending output into the vault.
func (s *VWService) CollectGenerator(ctx context.Context, actorID string) (points int, shields int, err error) {
	_, err = s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		var err error
		points, shields, err = s.generator.Collect(v, now)
		return err
	})
	if err != nil {
		return 0, 0, err
	}
	s.logger.Info("generator collected", "actor", actorID, "points", points, "shields", shields)
	return points, shields, nil
}

// GeneratorStatus reports the generator of a player without changing it.
func (s *VWService) GeneratorStatus(ctx context.Context, ownerID string) (GeneratorStatus, error) {
	now := s.clock.Now()
	v, err := s.loadVault(ctx, ownerID, now, true)
	if err != nil {
		return GeneratorStatus{}, err
	}
	return s.generator.Status(v, now), nil
}

// UpgradeGenerator raises the generator one level for GeneratorUpgradeCost×level
// points. Output already accrued today is kept; the new rate applies from now on.
func (s *VWService) UpgradeGenerator(ctx context.Context, actorID string) (level int, cost int, err error) {
	_, err = s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		if v.GeneratorLevel >= s.generator.MaxLevel() {
			return fmt.Errorf("%w: generator is at level %d", ErrMaxLevel, v.GeneratorLevel)
		}
		cost = s.rules.GeneratorUpgradeCost * v.GeneratorLevel
		if err := v.Debit(cost); err != nil {
			return fmt.Errorf("paying generator upgrade: %w", err)
		}
		v.GeneratorLevel++
		s.generator.Accrue(v, now)
		level = v.GeneratorLevel
		return nil
	})
	if err != nil {
		s.logger.Warn("generator upgrade rejected", "actor", actorID, "error", err)
		return 0, 0, err
	}
	s.logger.Info("generator upgraded", "actor", actorID, "level", level, "cost", cost)
	return level, cost, nil
}

// RestoreVaultHealth refills vault health early at HealthRestoreCost points per
// missing point. With clearCooldown the health cooldown ends as well, which
// also ends the vault's immunity to attacks.
func (s *VWService) RestoreVaultHealth(ctx context.Context, actorID string, clearCooldown bool) (restored int, cost int, err error) {
	_, err = s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		missing := v.MaxHealth() - v.VaultHealth
		if missing == 0 && (!clearCooldown || v.VaultHealthCooldownStart == nil) {
			return fmt.Errorf("%w: vault health is full", ErrNothingToRestore)
		}
		cost = missing * s.rules.HealthRestoreCost
		if err := v.Debit(cost); err != nil {
			return fmt.Errorf("paying health restore: %w", err)
		}
		restored = v.RestoreVaultHealth(missing, clearCooldown, now)
		return nil
	})
	if err != nil {
		s.logger.Warn("vault health restore rejected", "actor", actorID, "error", err)
		return 0, 0, err
	}
	s.logger.Info("vault health restored", "actor", actorID, "restored", restored, "cost", cost, "cleared_cooldown", clearCooldown)
	return restored, cost, nil
}

// ActivateBoost replaces any boost on the actor's vault with a new one.
func (s *VWService) ActivateBoost(ctx context.Context, actorID string, multiplier float64, d time.Duration, source string) (*Boost, error) {
	var boost *Boost
	_, err := s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		var err error
		boost, err = NewBoost(multiplier, d, source, now)
		if err != nil {
			return err
		}
		v.Boost = boost
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("boost activated", "actor", actorID, "multiplier", multiplier, "expires", boost.ExpiresAt)
	return boost, nil
}

// TakeLoan credits points as debt. While debt is outstanding the vault takes
// extra damage from attacks.
func (s *VWService) TakeLoan(ctx context.Context, actorID string, amount int) error {
	_, err := s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		return v.TakeLoan(amount)
	})
	if err != nil {
		return err
	}
	s.logger.Info("loan taken", "actor", actorID, "amount", amount)
	return nil
}

// RepayDebt pays back up to amount of outstanding debt and returns what was repaid.
func (s *VWService) RepayDebt(ctx context.Context, actorID string, amount int) (int, error) {
	var repaid int
	_, err := s.mutateVault(ctx, actorID, func(v *Vault, now time.Time) error {
		var err error
		repaid, err = v.RepayDebt(amount)
		return err
	})
	if err != nil {
		s.logger.Warn("debt repayment rejected", "actor", actorID, "error", err)
		return 0, err
	}
	s.logger.Info("debt repaid", "actor", actorID, "amount", repaid)
	return repaid, nil
}
