package vw

import (
	"context"
	"fmt"
	"time"
)

// UnlockMove adds a catalog move to the actor's loadout at mastery level 1.
// Unlocking a move that is already unlocked is a no-op.
func (s *VWService) UnlockMove(ctx context.Context, actorID, name string) error {
	if _, ok := s.catalog.Move(name); !ok {
		return fmt.Errorf("%w: move %s", ErrNotFound, name)
	}
	_, err := s.mutateLoadout(ctx, actorID, func(c *Combatant, now time.Time) error {
		if m, ok := c.Loadout.Moves[name]; ok && m.Unlocked {
			return nil
		}
		c.Loadout.Moves[name] = NewMoveState(name)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("move unlocked", "actor", actorID, "move", name)
	return nil
}

// UnlockCard adds a catalog card to the actor's loadout with full uses.
func (s *VWService) UnlockCard(ctx context.Context, actorID, name string) error {
	tmpl, ok := s.catalog.Card(name)
	if !ok {
		return fmt.Errorf("%w: card %s", ErrNotFound, name)
	}
	_, err := s.mutateLoadout(ctx, actorID, func(c *Combatant, now time.Time) error {
		if card, ok := c.Loadout.Cards[name]; ok && card.Unlocked {
			return nil
		}
		c.Loadout.Cards[name] = NewCardState(tmpl)
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("card unlocked", "actor", actorID, "card", name)
	return nil
}

// UpgradeMoveMastery raises a move's mastery level for MasteryUpgradeCost×level points.
func (s *VWService) UpgradeMoveMastery(ctx context.Context, actorID, name string) (int, error) {
	var level int
	_, err := s.mutateLoadout(ctx, actorID, func(c *Combatant, now time.Time) error {
		m, ok := c.Loadout.Moves[name]
		if !ok || !m.Unlocked {
			return fmt.Errorf("%w: move %s", ErrLocked, name)
		}
		if err := s.payMastery(c.Vault, m.MasteryLevel); err != nil {
			return err
		}
		m.MasteryLevel++
		level = m.MasteryLevel
		return nil
	})
	if err != nil {
		s.logger.Warn("mastery upgrade rejected", "actor", actorID, "move", name, "error", err)
		return 0, err
	}
	s.logger.Info("move mastery upgraded", "actor", actorID, "move", name, "level", level)
	return level, nil
}

// UpgradeCardMastery raises a card's mastery level for MasteryUpgradeCost×level points.
func (s *VWService) UpgradeCardMastery(ctx context.Context, actorID, name string) (int, error) {
	var level int
	_, err := s.mutateLoadout(ctx, actorID, func(c *Combatant, now time.Time) error {
		card, ok := c.Loadout.Cards[name]
		if !ok || !card.Unlocked {
			return fmt.Errorf("%w: card %s", ErrLocked, name)
		}
		if err := s.payMastery(c.Vault, card.MasteryLevel); err != nil {
			return err
		}
		card.MasteryLevel++
		level = card.MasteryLevel
		return nil
	})
	if err != nil {
		s.logger.Warn("mastery upgrade rejected", "actor", actorID, "card", name, "error", err)
		return 0, err
	}
	s.logger.Info("card mastery upgraded", "actor", actorID, "card", name, "level", level)
	return level, nil
}

func (s *VWService) payMastery(v *Vault, level int) error {
	if level >= MaxMastery {
		return fmt.Errorf("%w: mastery level %d", ErrMaxLevel, level)
	}
	if err := v.Debit(s.rules.MasteryUpgradeCost * level); err != nil {
		return fmt.Errorf("paying mastery upgrade: %w", err)
	}
	return nil
}

// ResetCards refills every unlocked card of the actor to its maximum uses.
func (s *VWService) ResetCards(ctx context.Context, actorID string) error {
	_, err := s.mutateLoadout(ctx, actorID, func(c *Combatant, now time.Time) error {
		for name, card := range c.Loadout.Cards {
			if tmpl, ok := s.catalog.Card(name); ok {
				card.Reset(tmpl)
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.logger.Info("cards reset", "actor", actorID)
	return nil
}

// StartTurn begins the actor's next turn: move cooldowns drop by one and
// active modifiers fire and tick.
func (s *VWService) StartTurn(ctx context.Context, actorID string) (*TurnReport, error) {
	var report TurnReport
	_, err := s.mutateLoadout(ctx, actorID, func(c *Combatant, now time.Time) error {
		next, r := s.resolver.StartTurn(c, now)
		*c = *next
		report = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("turn started", "actor", actorID, "turn", report.Turn, "burned", report.Burned, "healed", report.Healed, "expired", len(report.Expired))
	return &report, nil
}

// UseMove resolves one of the actor's moves against targetID. Self-targeted
// move types take an empty target or the actor's own id.
//
// On a failed precondition the returned result has Success false and zero
// numbers, the error names the reason, and no state changes.
func (s *VWService) UseMove(ctx context.Context, actorID, moveName, targetID string) (*MoveResult, error) {
	tmpl, ok := s.catalog.Move(moveName)
	if !ok {
		return s.reject(actorID, moveName, targetID, fmt.Errorf("%w: move %s", ErrNotFound, moveName))
	}

	unlock := s.locks.lock(actorID, targetID)
	defer unlock()

	now := s.clock.Now()
	res, err := s.resolve(ctx, actorID, targetID, now, func(caster, target *Combatant) (*Resolution, error) {
		return s.resolver.ResolveMove(tmpl, caster, target, now)
	})
	if err != nil {
		return s.reject(actorID, moveName, targetID, err)
	}
	if err := s.commit(ctx, s.settle(res, now), now); err != nil {
		return s.reject(actorID, moveName, targetID, err)
	}
	s.logResult("move resolved", &res.Result)
	return &res.Result, nil
}

// CastCard casts one of the actor's action cards against targetID.
func (s *VWService) CastCard(ctx context.Context, actorID, cardName, targetID string) (*MoveResult, error) {
	tmpl, ok := s.catalog.Card(cardName)
	if !ok {
		return s.reject(actorID, cardName, targetID, fmt.Errorf("%w: card %s", ErrNotFound, cardName))
	}

	unlock := s.locks.lock(actorID, targetID)
	defer unlock()

	now := s.clock.Now()
	res, err := s.resolve(ctx, actorID, targetID, now, func(caster, target *Combatant) (*Resolution, error) {
		return s.resolver.ResolveCard(tmpl, caster, target, now)
	})
	if err != nil {
		return s.reject(actorID, cardName, targetID, err)
	}
	if err := s.commit(ctx, s.settle(res, now), now); err != nil {
		return s.reject(actorID, cardName, targetID, err)
	}
	s.logResult("card resolved", &res.Result)
	return &res.Result, nil
}

// resolve loads both participants and runs fn. The caller holds the locks.
func (s *VWService) resolve(ctx context.Context, actorID, targetID string, now time.Time, fn func(caster, target *Combatant) (*Resolution, error)) (*Resolution, error) {
	caster, err := s.loadCombatant(ctx, actorID, now, true)
	if err != nil {
		return nil, err
	}
	target, err := s.loadTarget(ctx, caster, targetID, now)
	if err != nil {
		return nil, err
	}
	return fn(caster, target)
}

// settle turns a resolution into the changeset that persists it, including
// the siege audit record of an attack.
func (s *VWService) settle(res *Resolution, now time.Time) *Changeset {
	cs := &Changeset{
		Vaults:   []*Vault{res.Caster.Vault},
		Loadouts: []*Loadout{res.Caster.Loadout},
	}
	if res.Target != nil {
		cs.Vaults = append(cs.Vaults, res.Target.Vault)
		cs.Loadouts = append(cs.Loadouts, res.Target.Loadout)
	}
	if res.Result.Offensive() {
		cs.SiegeAttacks = append(cs.SiegeAttacks, NewSiegeAttack(s.idgen.New(), res.Result, now))
	}
	return cs
}

func (s *VWService) reject(actorID, action, targetID string, err error) (*MoveResult, error) {
	s.logger.Warn("action rejected", "actor", actorID, "action", action, "target", targetID, "error", err)
	return &MoveResult{Action: action, CasterID: actorID, TargetID: targetID}, err
}

func (s *VWService) logResult(msg string, r *MoveResult) {
	s.logger.Info(msg,
		"actor", r.CasterID,
		"action", r.Action,
		"target", r.TargetID,
		"cost", r.Cost,
		"damage", r.Damage,
		"shield_damage", r.ShieldDamage,
		"health_damage", r.HealthDamage,
		"stolen", r.PointsStolen,
		"nullified", r.Nullified,
		"absorbed", r.Absorbed,
	)
}
