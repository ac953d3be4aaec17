package vw

import (
	"fmt"
	"time"
)

// OfflineMoveType is the kind of asynchronous action.
type OfflineMoveType string

const (
	OfflineVaultAttack      OfflineMoveType = "vault_attack"
	OfflineShieldBuff       OfflineMoveType = "shield_buff"
	OfflinePPTrade          OfflineMoveType = "pp_trade"
	OfflineMasteryChallenge OfflineMoveType = "mastery_challenge"
	OfflineMoveRestore      OfflineMoveType = "move_restore"
)

// Valid reports whether t is a known offline move type.
func (t OfflineMoveType) Valid() bool {
	switch t {
	case OfflineVaultAttack, OfflineShieldBuff, OfflinePPTrade, OfflineMasteryChallenge, OfflineMoveRestore:
		return true
	}
	return false
}

// OfflineMoveStatus is the lifecycle state of an offline move.
type OfflineMoveStatus string

const (
	StatusPending   OfflineMoveStatus = "pending"
	StatusCompleted OfflineMoveStatus = "completed"
	StatusFailed    OfflineMoveStatus = "failed"
)

// OfflineMove is an append-only log entry. Only Status ever changes, and only
// away from pending.
type OfflineMove struct {
	ID        string            `json:"id"`
	UserID    string            `json:"user_id"`
	Type      OfflineMoveType   `json:"type"`
	Status    OfflineMoveStatus `json:"status"`
	TargetID  string            `json:"target_id,omitempty"`
	Detail    string            `json:"detail,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Transition moves a pending entry to completed or failed.
func (m *OfflineMove) Transition(to OfflineMoveStatus, now time.Time) error {
	if m.Status != StatusPending {
		return fmt.Errorf("offline move %s is already %s", m.ID, m.Status)
	}
	if to != StatusCompleted && to != StatusFailed {
		return fmt.Errorf("invalid offline move status: %s", to)
	}
	m.Status = to
	m.UpdatedAt = now
	return nil
}

// OfflineScheduler bounds offline moves per game day and prices restores.
//
// Allowance accounting is log based: actions consumed today are non-failed
// entries of any type other than move_restore; each non-failed move_restore
// entry today gives one action back. The remaining count is clamped to
// [0, MaxMovesPerDay].
type OfflineScheduler struct {
	boundary *BoundaryResolver
	baseCost int
	stepCost int
}

// NewOfflineScheduler creates a scheduler with the given restore pricing.
func NewOfflineScheduler(boundary *BoundaryResolver, baseCost, stepCost int) *OfflineScheduler {
	return &OfflineScheduler{boundary: boundary, baseCost: baseCost, stepCost: stepCost}
}

// DayWindow returns [start, end) of the game day containing now.
func (s *OfflineScheduler) DayWindow(now time.Time) (time.Time, time.Time) {
	return s.boundary.DayBoundary(now), s.boundary.NextBoundary(now)
}

func (s *OfflineScheduler) counts(log []*OfflineMove, now time.Time) (consumed, restores int) {
	for _, m := range log {
		if m.Status == StatusFailed || !s.boundary.InDay(m.CreatedAt, now) {
			continue
		}
		if m.Type == OfflineMoveRestore {
			restores++
		} else {
			consumed++
		}
	}
	return consumed, restores
}

// RemainingToday returns the number of offline moves v may still submit today.
func (s *OfflineScheduler) RemainingToday(v *Vault, log []*OfflineMove, now time.Time) int {
	consumed, restores := s.counts(log, now)
	return clamp(v.MaxMovesPerDay-consumed+restores, 0, v.MaxMovesPerDay)
}

// RestoreCost is the price of the next restore today: base + step×(N−1) for
// the Nth restore of the game day.
func (s *OfflineScheduler) RestoreCost(log []*OfflineMove, now time.Time) int {
	_, restores := s.counts(log, now)
	return s.baseCost + s.stepCost*restores
}

// Sync stores the derived allowance on the vault for display.
func (s *OfflineScheduler) Sync(v *Vault, log []*OfflineMove, now time.Time) {
	v.MovesRemainingToday = s.RemainingToday(v, log, now)
	v.LastMoveResetInstant = s.boundary.DayBoundary(now)
}

// Submit creates a pending entry for a new offline move.
func (s *OfflineScheduler) Submit(v *Vault, log []*OfflineMove, typ OfflineMoveType, id string, now time.Time) (*OfflineMove, error) {
	if !typ.Valid() || typ == OfflineMoveRestore {
		return nil, fmt.Errorf("cannot submit offline move of type %q", typ)
	}
	if s.RemainingToday(v, log, now) <= 0 {
		return nil, fmt.Errorf("%w: %d of %d offline moves used today", ErrAllowanceExhausted, v.MaxMovesPerDay, v.MaxMovesPerDay)
	}
	return &OfflineMove{
		ID:        id,
		UserID:    v.OwnerID,
		Type:      typ,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// Restore buys back one offline move: it debits the escalating cost from v
// and returns the completed move_restore entry to append.
func (s *OfflineScheduler) Restore(v *Vault, log []*OfflineMove, id string, now time.Time) (*OfflineMove, int, error) {
	if s.RemainingToday(v, log, now) >= v.MaxMovesPerDay {
		return nil, 0, fmt.Errorf("%w: all %d offline moves available", ErrNothingToRestore, v.MaxMovesPerDay)
	}
	cost := s.RestoreCost(log, now)
	if err := v.Debit(cost); err != nil {
		return nil, 0, fmt.Errorf("paying restore cost: %w", err)
	}
	return &OfflineMove{
		ID:        id,
		UserID:    v.OwnerID,
		Type:      OfflineMoveRestore,
		Status:    StatusCompleted,
		Detail:    fmt.Sprintf("cost=%d", cost),
		CreatedAt: now,
		UpdatedAt: now,
	}, cost, nil
}

// OfflineStatus is a read-only view of the offline allowance.
type OfflineStatus struct {
	Remaining       int
	Max             int
	NextRestoreCost int
	ResetsAt        time.Time
}

// Status reports the allowance of v at now.
func (s *OfflineScheduler) Status(v *Vault, log []*OfflineMove, now time.Time) OfflineStatus {
	return OfflineStatus{
		Remaining:       s.RemainingToday(v, log, now),
		Max:             v.MaxMovesPerDay,
		NextRestoreCost: s.RestoreCost(log, now),
		ResetsAt:        s.boundary.NextBoundary(now),
	}
}
