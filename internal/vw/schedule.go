package vw

import (
	"context"
	"fmt"
)

// OfflineRequest describes an offline move to submit.
type OfflineRequest struct {
	Type OfflineMoveType
	// TargetID is the vault attacked by a vault_attack, or the counterparty
	// of a pp_trade.
	TargetID string
	// Move is the move a vault_attack resolves with.
	Move   string
	Detail string
}

// OfflineStatus reports the actor's offline allowance for the current game day.
func (s *VWService) OfflineStatus(ctx context.Context, ownerID string) (OfflineStatus, error) {
	now := s.clock.Now()
	v, err := s.loadVault(ctx, ownerID, now, true)
	if err != nil {
		return OfflineStatus{}, err
	}
	log, err := s.offlineLog(ctx, ownerID, now)
	if err != nil {
		return OfflineStatus{}, err
	}
	return s.scheduler.Status(v, log, now), nil
}

// OfflineMoves lists the actor's offline moves of the current game day.
func (s *VWService) OfflineMoves(ctx context.Context, ownerID string) ([]*OfflineMove, error) {
	return s.offlineLog(ctx, ownerID, s.clock.Now())
}

// SubmitOfflineMove spends one offline action.
//
// A vault_attack resolves immediately against the target and is recorded as
// completed together with its siege record. A shield_buff adds ShieldBuffAmount
// to the actor's shield. Trades and mastery challenges stay pending until
// CompleteOfflineMove or FailOfflineMove settles them.
func (s *VWService) SubmitOfflineMove(ctx context.Context, actorID string, req OfflineRequest) (*OfflineMove, *MoveResult, error) {
	var tmpl MoveTemplate
	if req.Type == OfflineVaultAttack {
		var ok bool
		if tmpl, ok = s.catalog.Move(req.Move); !ok {
			return nil, nil, fmt.Errorf("%w: move %q", ErrNotFound, req.Move)
		}
		if req.TargetID == "" || req.TargetID == actorID {
			return nil, nil, fmt.Errorf("%w: vault_attack needs another player's vault", ErrInvalidTarget)
		}
	}

	lockTarget := ""
	if req.Type == OfflineVaultAttack {
		lockTarget = req.TargetID
	}
	unlock := s.locks.lock(actorID, lockTarget)
	defer unlock()

	now := s.clock.Now()
	caster, err := s.loadCombatant(ctx, actorID, now, true)
	if err != nil {
		return nil, nil, err
	}
	log, err := s.offlineLog(ctx, actorID, now)
	if err != nil {
		return nil, nil, err
	}

	entry, err := s.scheduler.Submit(caster.Vault, log, req.Type, s.idgen.New(), now)
	if err != nil {
		s.logger.Warn("offline move rejected", "actor", actorID, "type", req.Type, "error", err)
		return nil, nil, err
	}
	entry.TargetID = req.TargetID
	entry.Detail = req.Detail

	var (
		cs     = &Changeset{}
		result *MoveResult
		vault  = caster.Vault
	)
	switch req.Type {
	case OfflineVaultAttack:
		target, err := s.loadTarget(ctx, caster, req.TargetID, now)
		if err != nil {
			return nil, nil, err
		}
		res, err := s.resolver.ResolveMove(tmpl, caster, target, now)
		if err != nil {
			s.logger.Warn("offline attack rejected", "actor", actorID, "target", req.TargetID, "error", err)
			return nil, nil, err
		}
		cs = s.settle(res, now)
		vault = res.Caster.Vault
		result = &res.Result
		entry.Detail = req.Move
		if err := entry.Transition(StatusCompleted, now); err != nil {
			return nil, nil, err
		}
	case OfflineShieldBuff:
		vault.ApplyShieldDelta(s.rules.ShieldBuffAmount)
		cs.Vaults = []*Vault{vault}
		if err := entry.Transition(StatusCompleted, now); err != nil {
			return nil, nil, err
		}
	default:
		cs.Vaults = []*Vault{vault}
	}

	s.scheduler.Sync(vault, append(log, entry), now)
	cs.OfflineMoves = append(cs.OfflineMoves, entry)
	if err := s.commit(ctx, cs, now); err != nil {
		return nil, nil, err
	}

	s.logger.Info("offline move submitted", "actor", actorID, "type", entry.Type, "id", entry.ID, "status", entry.Status, "remaining", vault.MovesRemainingToday)
	return entry, result, nil
}

// CompleteOfflineMove marks a pending offline move as completed.
func (s *VWService) CompleteOfflineMove(ctx context.Context, actorID, id string) (*OfflineMove, error) {
	return s.settleOfflineMove(ctx, actorID, id, StatusCompleted)
}

// FailOfflineMove marks a pending offline move as failed. Failed moves no
// longer count against the daily allowance.
func (s *VWService) FailOfflineMove(ctx context.Context, actorID, id string) (*OfflineMove, error) {
	return s.settleOfflineMove(ctx, actorID, id, StatusFailed)
}

func (s *VWService) settleOfflineMove(ctx context.Context, actorID, id string, to OfflineMoveStatus) (*OfflineMove, error) {
	unlock := s.locks.lock(actorID)
	defer unlock()

	now := s.clock.Now()
	entry, err := s.database.FindOfflineMove(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding offline move: %w", err)
	}
	if entry == nil || entry.UserID != actorID {
		return nil, fmt.Errorf("%w: offline move %s", ErrNotFound, id)
	}
	if err := entry.Transition(to, now); err != nil {
		return nil, err
	}

	v, err := s.loadVault(ctx, actorID, now, true)
	if err != nil {
		return nil, err
	}
	log, err := s.offlineLog(ctx, actorID, now)
	if err != nil {
		return nil, err
	}
	for i, m := range log {
		if m.ID == entry.ID {
			log[i] = entry
		}
	}
	s.scheduler.Sync(v, log, now)

	cs := &Changeset{Vaults: []*Vault{v}, OfflineMoves: []*OfflineMove{entry}}
	if err := s.commit(ctx, cs, now); err != nil {
		return nil, err
	}
	s.logger.Info("offline move settled", "actor", actorID, "id", id, "status", to)
	return entry, nil
}

// RestoreOfflineMove buys back one offline action for the escalating restore
// cost of the day. It returns the points paid.
func (s *VWService) RestoreOfflineMove(ctx context.Context, actorID string) (int, error) {
	unlock := s.locks.lock(actorID)
	defer unlock()

	now := s.clock.Now()
	v, err := s.loadVault(ctx, actorID, now, true)
	if err != nil {
		return 0, err
	}
	log, err := s.offlineLog(ctx, actorID, now)
	if err != nil {
		return 0, err
	}

	entry, cost, err := s.scheduler.Restore(v, log, s.idgen.New(), now)
	if err != nil {
		s.logger.Warn("offline move restore rejected", "actor", actorID, "error", err)
		return 0, err
	}
	s.scheduler.Sync(v, append(log, entry), now)

	cs := &Changeset{Vaults: []*Vault{v}, OfflineMoves: []*OfflineMove{entry}}
	if err := s.commit(ctx, cs, now); err != nil {
		return 0, err
	}
	s.logger.Info("offline move restored", "actor", actorID, "cost", cost, "remaining", v.MovesRemainingToday)
	return cost, nil
}
