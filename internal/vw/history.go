package vw

import (
	"context"
	"fmt"
)

// SiegeHistory returns the most recent attacks on a player's vault, newest first.
func (s *VWService) SiegeHistory(ctx context.Context, ownerID string, limit int) ([]*SiegeAttack, error) {
	attacks, err := s.database.FindSiegeAttacks(ctx, ownerID, limit)
	if err != nil {
		return nil, fmt.Errorf("finding siege attacks: %w", err)
	}
	return attacks, nil
}

// GetHistory returns the most recent operations recorded against the store.
func (s *VWService) GetHistory(limit int) ([]*Operation, error) {
	ops, err := s.database.ListOperations(limit)
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return ops, nil
}
