package vw

import (
	"context"
	"fmt"
	"time"
)

// VWService is the orchestration layer that exposes the economy and combat
// rules to callers. Every entry point names the acting player explicitly and
// runs under that player's vault lock; writes are compare-and-swap commits.
type VWService struct {
	database  Database
	catalog   *Catalog
	boundary  *BoundaryResolver
	rules     Rules
	generator *Generator
	scheduler *OfflineScheduler
	resolver  *Resolver
	logger    Logger
	clock     Clock
	idgen     IDGenerator
	locks     *vaultLocks
}

// NewVWService creates a new VWService with the provided dependencies.
func NewVWService(database Database, catalog *Catalog, boundary *BoundaryResolver, rules Rules, logger Logger, clock Clock, idgen IDGenerator, roller Roller) (*VWService, error) {
	generator, err := NewGenerator(boundary, rules.GeneratorRates)
	if err != nil {
		return nil, fmt.Errorf("creating generator: %w", err)
	}
	if !rules.Stacking.Valid() {
		return nil, fmt.Errorf("unknown effect stacking policy: %q", rules.Stacking)
	}
	return &VWService{
		database:  database,
		catalog:   catalog,
		boundary:  boundary,
		rules:     rules,
		generator: generator,
		scheduler: NewOfflineScheduler(boundary, rules.RestoreBaseCost, rules.RestoreStepCost),
		resolver:  NewResolver(roller, idgen, rules.Stacking),
		logger:    logger,
		clock:     clock,
		idgen:     idgen,
		locks:     newVaultLocks(),
	}, nil
}

// Catalog returns the move and card catalog.
func (s *VWService) Catalog() *Catalog { return s.catalog }

// Boundary returns the day boundary resolver.
func (s *VWService) Boundary() *BoundaryResolver { return s.boundary }

// loadVault reads a vault and brings its time-based state up to now.
// When create is set a missing vault is initialised with defaults (Version 0);
// otherwise a missing vault is ErrNotFound.
func (s *VWService) loadVault(ctx context.Context, ownerID string, now time.Time, create bool) (*Vault, error) {
	if ownerID == "" {
		return nil, fmt.Errorf("%w: empty player id", ErrInvalidTarget)
	}
	v, err := s.database.FindVault(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("finding vault: %w", err)
	}
	if v == nil {
		if !create {
			return nil, fmt.Errorf("%w: vault for %s", ErrNotFound, ownerID)
		}
		v = NewVault(ownerID, s.rules, now)
		s.logger.Info("vault created", "owner", ownerID)
	}
	s.generator.Accrue(v, now)
	if v.ExpireCooldown(now) {
		s.logger.Debug("vault health cooldown ended", "owner", ownerID)
	}
	return v, nil
}

func (s *VWService) loadLoadout(ctx context.Context, ownerID string, now time.Time) (*Loadout, error) {
	l, err := s.database.FindLoadout(ctx, ownerID)
	if err != nil {
		return nil, fmt.Errorf("finding loadout: %w", err)
	}
	if l == nil {
		l = NewLoadout(ownerID, now)
	}
	return l, nil
}

func (s *VWService) loadCombatant(ctx context.Context, ownerID string, now time.Time, create bool) (*Combatant, error) {
	v, err := s.loadVault(ctx, ownerID, now, create)
	if err != nil {
		return nil, err
	}
	l, err := s.loadLoadout(ctx, ownerID, now)
	if err != nil {
		return nil, err
	}
	return &Combatant{Vault: v, Loadout: l}, nil
}

// loadTarget resolves the target of an action. An empty id means no target;
// the actor's own id returns the caster itself.
func (s *VWService) loadTarget(ctx context.Context, caster *Combatant, targetID string, now time.Time) (*Combatant, error) {
	switch targetID {
	case "":
		return nil, nil
	case caster.ID():
		return caster, nil
	}
	t, err := s.loadCombatant(ctx, targetID, now, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	return t, nil
}

func (s *VWService) offlineLog(ctx context.Context, ownerID string, now time.Time) ([]*OfflineMove, error) {
	from, to := s.scheduler.DayWindow(now)
	log, err := s.database.FindOfflineMoves(ctx, ownerID, from, to)
	if err != nil {
		return nil, fmt.Errorf("finding offline moves: %w", err)
	}
	return log, nil
}

// commit stamps and validates the changeset, then writes it.
func (s *VWService) commit(ctx context.Context, cs *Changeset, now time.Time) error {
	for _, v := range cs.Vaults {
		if err := v.CheckInvariants(); err != nil {
			return fmt.Errorf("refusing to write vault: %w", err)
		}
		v.UpdatedAt = now
	}
	for _, l := range cs.Loadouts {
		l.UpdatedAt = now
	}
	if err := s.database.Commit(ctx, cs); err != nil {
		return fmt.Errorf("committing changes: %w", err)
	}
	return nil
}

// mutateVault runs fn against the actor's vault under its lock and commits the result.
func (s *VWService) mutateVault(ctx context.Context, actorID string, fn func(v *Vault, now time.Time) error) (*Vault, error) {
	unlock := s.locks.lock(actorID)
	defer unlock()

	now := s.clock.Now()
	v, err := s.loadVault(ctx, actorID, now, true)
	if err != nil {
		return nil, err
	}
	if err := fn(v, now); err != nil {
		return nil, err
	}
	if err := s.commit(ctx, &Changeset{Vaults: []*Vault{v}}, now); err != nil {
		return nil, err
	}
	return v.Clone(), nil
}

// mutateLoadout runs fn against the actor's vault and loadout under the vault lock.
func (s *VWService) mutateLoadout(ctx context.Context, actorID string, fn func(c *Combatant, now time.Time) error) (*Combatant, error) {
	unlock := s.locks.lock(actorID)
	defer unlock()

	now := s.clock.Now()
	c, err := s.loadCombatant(ctx, actorID, now, true)
	if err != nil {
		return nil, err
	}
	if err := fn(c, now); err != nil {
		return nil, err
	}
	cs := &Changeset{Vaults: []*Vault{c.Vault}, Loadouts: []*Loadout{c.Loadout}}
	if err := s.commit(ctx, cs, now); err != nil {
		return nil, err
	}
	return c.clone(), nil
}

// Subscribe streams change notifications for a collection until ctx is done.
func (s *VWService) Subscribe(ctx context.Context, collection string) (<-chan ChangeEvent, error) {
	return s.database.Subscribe(ctx, collection)
}
