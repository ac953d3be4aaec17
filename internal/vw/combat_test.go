package vw

import (
	"errors"
	"testing"
	"time"
)

var (
	strikeMove = MoveTemplate{
		Name:          "strike",
		Category:      CategoryManifest,
		Type:          MoveAttack,
		Cost:          10,
		Damage:        50,
		CooldownTurns: 2,
	}
	mendMove = MoveTemplate{
		Name:     "mend",
		Category: CategorySystem,
		Type:     MoveSupport,
		Healing:  20,
	}
)

func TestResolver_ShieldThenHealthCascade(t *testing.T) {
	tests := []struct {
		name        string
		damage      int
		wantShield  int
		wantHealth  int
		wantPoints  int
		wantDrained int
		wantImmune  bool
	}{
		{"shield absorbs first", 15, 5, 100, 500, 0, false},
		{"overflow hits health", 50, 0, 70, 500, 0, false},
		{"overflow past health drains points", 200, 0, 0, 420, 80, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(99)
			move := strikeMove
			move.Damage = tt.damage
			caster := withMove(newTestCombatant("alice", 100), move)
			target := newTestCombatant("bob", 500)
			target.Vault.ShieldStrength = 20

			now := dayStart.Add(time.Hour)
			res, err := r.ResolveMove(move, caster, target, now)
			if err != nil {
				t.Fatalf("ResolveMove() error = %v", err)
			}

			tv := res.Target.Vault
			if tv.ShieldStrength != tt.wantShield || tv.VaultHealth != tt.wantHealth || tv.CurrentPoints != tt.wantPoints {
				t.Errorf("target = shield %d health %d points %d, want %d/%d/%d",
					tv.ShieldStrength, tv.VaultHealth, tv.CurrentPoints, tt.wantShield, tt.wantHealth, tt.wantPoints)
			}
			if res.Result.PointsDrained != tt.wantDrained {
				t.Errorf("PointsDrained = %d, want %d", res.Result.PointsDrained, tt.wantDrained)
			}
			if got := tv.Immune(now); got != tt.wantImmune {
				t.Errorf("Immune() = %v, want %v", got, tt.wantImmune)
			}
			if res.Result.Damage != tt.damage {
				t.Errorf("Damage = %d, want %d", res.Result.Damage, tt.damage)
			}
			if res.Result.TargetBefore != (VaultSnapshot{CurrentPoints: 500, ShieldStrength: 20}) {
				t.Errorf("TargetBefore = %+v", res.Result.TargetBefore)
			}
			if res.Result.TargetAfter != tv.Snapshot() {
				t.Errorf("TargetAfter = %+v, want %+v", res.Result.TargetAfter, tv.Snapshot())
			}
			if err := tv.CheckInvariants(); err != nil {
				t.Errorf("CheckInvariants() error = %v", err)
			}
		})
	}
}

func TestResolver_MoveChargesCasterAndStartsCooldown(t *testing.T) {
	r := newTestResolver(99)
	caster := withMove(newTestCombatant("alice", 100), strikeMove)
	target := newTestCombatant("bob", 500)

	res, err := r.ResolveMove(strikeMove, caster, target, dayStart)
	if err != nil {
		t.Fatalf("ResolveMove() error = %v", err)
	}
	if res.Result.Cost != 10 || res.Caster.Vault.CurrentPoints != 90 {
		t.Errorf("caster points = %d (cost %d), want 90 (10)", res.Caster.Vault.CurrentPoints, res.Result.Cost)
	}
	if got := res.Caster.Loadout.Moves["strike"].CurrentCooldown; got != 2 {
		t.Errorf("CurrentCooldown = %d, want 2", got)
	}
	if !res.Result.Offensive() {
		t.Error("Offensive() = false, want true")
	}

	// Inputs are untouched.
	if caster.Vault.CurrentPoints != 100 || caster.Loadout.Moves["strike"].CurrentCooldown != 0 {
		t.Error("ResolveMove() mutated the caster")
	}
	if target.Vault.VaultHealth != 100 {
		t.Error("ResolveMove() mutated the target")
	}
}

func TestResolver_FirewallNullifies(t *testing.T) {
	tests := []struct {
		name          string
		roll          int
		wantNullified bool
		wantHealth    int
	}{
		{"roll under firewall", 10, true, 100},
		{"roll over firewall", 60, false, 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(tt.roll)
			caster := withMove(newTestCombatant("alice", 100), strikeMove)
			target := newTestCombatant("bob", 500)
			target.Vault.Firewall = 50

			res, err := r.ResolveMove(strikeMove, caster, target, dayStart)
			if err != nil {
				t.Fatalf("ResolveMove() error = %v", err)
			}
			if res.Result.Nullified != tt.wantNullified {
				t.Errorf("Nullified = %v, want %v", res.Result.Nullified, tt.wantNullified)
			}
			if res.Target.Vault.VaultHealth != tt.wantHealth {
				t.Errorf("VaultHealth = %d, want %d", res.Target.Vault.VaultHealth, tt.wantHealth)
			}
			// The cost is paid either way.
			if res.Caster.Vault.CurrentPoints != 90 {
				t.Errorf("caster points = %d, want 90", res.Caster.Vault.CurrentPoints)
			}
		})
	}
}

func TestResolver_OvershieldAbsorbs(t *testing.T) {
	r := newTestResolver(99)
	caster := withMove(newTestCombatant("alice", 100), strikeMove)
	target := newTestCombatant("bob", 500)
	target.Vault.OvershieldCount = 1

	res, err := r.ResolveMove(strikeMove, caster, target, dayStart)
	if err != nil {
		t.Fatalf("ResolveMove() error = %v", err)
	}
	if !res.Result.Absorbed || res.Target.Vault.OvershieldCount != 0 {
		t.Errorf("Absorbed = %v, OvershieldCount = %d, want true/0", res.Result.Absorbed, res.Target.Vault.OvershieldCount)
	}
	if res.Target.Vault.VaultHealth != 100 {
		t.Errorf("VaultHealth = %d, want 100", res.Target.Vault.VaultHealth)
	}
}

func TestResolver_DamageModifiers(t *testing.T) {
	tests := []struct {
		name  string
		setup func(caster, target *Combatant)
		level int
		want  int
	}{
		{"base", func(c, t *Combatant) {}, 1, 50},
		{"debt vulnerability", func(c, t *Combatant) { t.Vault.DebtActive = true }, 1, 75},
		{"empower", func(c, t *Combatant) {
			c.Loadout.Effects.Apply(Effect{Kind: EffectBuff, Type: EffectEmpower, Strength: 20, RemainingTurns: 2}, StackIndependent)
		}, 1, 60},
		{"fortify and expose", func(c, t *Combatant) {
			t.Loadout.Effects.Apply(Effect{Kind: EffectBuff, Type: EffectFortify, Strength: 30, RemainingTurns: 2}, StackIndependent)
			t.Loadout.Effects.Apply(Effect{Kind: EffectDebuff, Type: EffectExpose, Strength: 10, RemainingTurns: 2}, StackIndependent)
		}, 1, 40},
		{"weaken below zero", func(c, t *Combatant) {
			c.Loadout.Effects.Apply(Effect{Kind: EffectDebuff, Type: EffectWeaken, Strength: 150, RemainingTurns: 2}, StackIndependent)
		}, 1, 0},
		{"mastery", func(c, t *Combatant) {}, 3, 75},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(99)
			caster := withMove(newTestCombatant("alice", 100), strikeMove)
			caster.Loadout.Moves["strike"].MasteryLevel = tt.level
			target := newTestCombatant("bob", 500)
			tt.setup(caster, target)

			res, err := r.ResolveMove(strikeMove, caster, target, dayStart)
			if err != nil {
				t.Fatalf("ResolveMove() error = %v", err)
			}
			if res.Result.Damage != tt.want {
				t.Errorf("Damage = %d, want %d", res.Result.Damage, tt.want)
			}
		})
	}
}

func TestResolver_MovePreconditions(t *testing.T) {
	now := dayStart.Add(time.Hour)

	tests := []struct {
		name    string
		caster  func() *Combatant
		target  func() *Combatant
		wantErr error
	}{
		{
			name:    "locked",
			caster:  func() *Combatant { return newTestCombatant("alice", 100) },
			target:  func() *Combatant { return newTestCombatant("bob", 500) },
			wantErr: ErrLocked,
		},
		{
			name: "on cooldown",
			caster: func() *Combatant {
				c := withMove(newTestCombatant("alice", 100), strikeMove)
				c.Loadout.Moves["strike"].CurrentCooldown = 1
				return c
			},
			target:  func() *Combatant { return newTestCombatant("bob", 500) },
			wantErr: ErrOnCooldown,
		},
		{
			name:    "self target",
			caster:  func() *Combatant { return withMove(newTestCombatant("alice", 100), strikeMove) },
			target:  func() *Combatant { return newTestCombatant("alice", 100) },
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "no target",
			caster:  func() *Combatant { return withMove(newTestCombatant("alice", 100), strikeMove) },
			target:  func() *Combatant { return nil },
			wantErr: ErrInvalidTarget,
		},
		{
			name:   "target in health cooldown",
			caster: func() *Combatant { return withMove(newTestCombatant("alice", 100), strikeMove) },
			target: func() *Combatant {
				c := newTestCombatant("bob", 500)
				start := dayStart
				c.Vault.VaultHealth = 0
				c.Vault.VaultHealthCooldownStart = &start
				return c
			},
			wantErr: ErrInvalidTarget,
		},
		{
			name:    "insufficient points",
			caster:  func() *Combatant { return withMove(newTestCombatant("alice", 5), strikeMove) },
			target:  func() *Combatant { return newTestCombatant("bob", 500) },
			wantErr: ErrInsufficientFunds,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newTestResolver(99)
			_, err := r.ResolveMove(strikeMove, tt.caster(), tt.target(), now)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ResolveMove() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestResolver_SupportMoveHealsCaster(t *testing.T) {
	r := newTestResolver(99)
	caster := withMove(newTestCombatant("alice", 100), mendMove)
	caster.Vault.VaultHealth = 50

	res, err := r.ResolveMove(mendMove, caster, nil, dayStart)
	if err != nil {
		t.Fatalf("ResolveMove() error = %v", err)
	}
	if res.Target != nil {
		t.Error("Target should be nil for a self-targeted move")
	}
	if res.Result.Healing != 20 || res.Caster.Vault.VaultHealth != 70 {
		t.Errorf("Healing = %d, VaultHealth = %d, want 20/70", res.Result.Healing, res.Caster.Vault.VaultHealth)
	}
	if res.Result.Offensive() {
		t.Error("Offensive() = true, want false")
	}

	if _, err := r.ResolveMove(mendMove, caster, newTestCombatant("bob", 0), dayStart); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("ResolveMove() at other vault error = %v, want ErrInvalidTarget", err)
	}
}

func TestResolver_StealCard(t *testing.T) {
	siphon := CardTemplate{
		Name:           "siphon",
		Effect:         CardEffect{Type: CardSteal, Strength: 30},
		MaxUses:        2,
		TruthMetalCost: 1,
	}
	r := newTestResolver(99)
	caster := withCard(newTestCombatant("alice", 0), siphon)
	target := newTestCombatant("bob", 500)

	if _, err := r.ResolveCard(siphon, caster, target, dayStart); !errors.Is(err, ErrInsufficientFunds) {
		t.Fatalf("ResolveCard() without truth metal error = %v, want ErrInsufficientFunds", err)
	}

	caster.Vault.TruthMetal = 2
	res, err := r.ResolveCard(siphon, caster, target, dayStart)
	if err != nil {
		t.Fatalf("ResolveCard() error = %v", err)
	}
	if res.Result.PointsStolen != 30 || res.Caster.Vault.CurrentPoints != 30 || res.Target.Vault.CurrentPoints != 470 {
		t.Errorf("stolen %d, caster %d, target %d, want 30/30/470",
			res.Result.PointsStolen, res.Caster.Vault.CurrentPoints, res.Target.Vault.CurrentPoints)
	}
	if res.Caster.Vault.TruthMetal != 1 || res.Caster.Loadout.Cards["siphon"].UsesRemaining != 1 {
		t.Errorf("truth metal %d, uses %d, want 1/1", res.Caster.Vault.TruthMetal, res.Caster.Loadout.Cards["siphon"].UsesRemaining)
	}

	// Stealing never takes more than the target holds.
	poor := newTestCombatant("carol", 20)
	res, err = r.ResolveCard(siphon, res.Caster, poor, dayStart)
	if err != nil {
		t.Fatalf("ResolveCard() error = %v", err)
	}
	if res.Result.PointsStolen != 20 || res.Target.Vault.CurrentPoints != 0 {
		t.Errorf("stolen %d, target %d, want 20/0", res.Result.PointsStolen, res.Target.Vault.CurrentPoints)
	}

	res.Caster.Vault.TruthMetal = 5
	if _, err := r.ResolveCard(siphon, res.Caster, target, dayStart); !errors.Is(err, ErrAllowanceExhausted) {
		t.Errorf("ResolveCard() with no uses error = %v, want ErrAllowanceExhausted", err)
	}
}

func TestResolver_DefensiveCards(t *testing.T) {
	firewall := CardTemplate{Name: "firewall", Effect: CardEffect{Type: CardFirewall, Strength: 25}, MaxUses: 1}
	overshield := CardTemplate{Name: "aegis", Effect: CardEffect{Type: CardOvershield, Strength: 2}, MaxUses: 1}
	cleanse := CardTemplate{Name: "purge", Effect: CardEffect{Type: CardCleanse}, MaxUses: 1}

	r := newTestResolver(99)
	c := newTestCombatant("alice", 0)
	withCard(c, firewall)
	withCard(c, overshield)
	withCard(c, cleanse)
	c.Loadout.Effects.Apply(Effect{ID: "b", Kind: EffectDebuff, Type: EffectBurn, Strength: 5, RemainingTurns: 2}, StackIndependent)
	c.Loadout.Effects.Apply(Effect{ID: "e", Kind: EffectBuff, Type: EffectEmpower, Strength: 5, RemainingTurns: 2}, StackIndependent)

	if _, err := r.ResolveCard(firewall, c, newTestCombatant("bob", 0), dayStart); !errors.Is(err, ErrInvalidTarget) {
		t.Errorf("ResolveCard() firewall at other vault error = %v, want ErrInvalidTarget", err)
	}

	res, err := r.ResolveCard(firewall, c, nil, dayStart)
	if err != nil {
		t.Fatalf("ResolveCard(firewall) error = %v", err)
	}
	if res.Caster.Vault.Firewall != 25 {
		t.Errorf("Firewall = %d, want 25", res.Caster.Vault.Firewall)
	}

	res, err = r.ResolveCard(overshield, res.Caster, nil, dayStart)
	if err != nil {
		t.Fatalf("ResolveCard(overshield) error = %v", err)
	}
	if res.Caster.Vault.OvershieldCount != 2 {
		t.Errorf("OvershieldCount = %d, want 2", res.Caster.Vault.OvershieldCount)
	}

	res, err = r.ResolveCard(cleanse, res.Caster, nil, dayStart)
	if err != nil {
		t.Fatalf("ResolveCard(cleanse) error = %v", err)
	}
	if len(res.Result.Cleansed) != 1 || res.Result.Cleansed[0].ID != "b" {
		t.Errorf("Cleansed = %+v, want the burn", res.Result.Cleansed)
	}
	if entries := res.Caster.Loadout.Effects.Entries; len(entries) != 1 || entries[0].Type != EffectEmpower {
		t.Errorf("remaining effects = %+v, want only empower", entries)
	}
	if len(c.Loadout.Effects.Entries) != 2 {
		t.Error("ResolveCard() mutated the input ledger")
	}
}

func TestResolver_DebuffCardAttachesToTarget(t *testing.T) {
	ignite := CardTemplate{
		Name:            "ignite",
		Effect:          CardEffect{Type: EffectBurn, Strength: 10, Duration: 2},
		MaxUses:         1,
		MasteryStrength: []int{10, 14},
	}
	r := newTestResolver(99)
	caster := withCard(newTestCombatant("alice", 0), ignite)
	caster.Loadout.Cards["ignite"].MasteryLevel = 2
	target := newTestCombatant("bob", 0)

	res, err := r.ResolveCard(ignite, caster, target, dayStart)
	if err != nil {
		t.Fatalf("ResolveCard() error = %v", err)
	}
	burns := res.Target.Loadout.Effects.OfType(EffectBurn)
	if len(burns) != 1 {
		t.Fatalf("target burns = %+v, want one", burns)
	}
	if burns[0].ID != "e-1" || burns[0].Strength != 14 || burns[0].RemainingTurns != 2 || burns[0].SourceID != "ignite" {
		t.Errorf("burn = %+v", burns[0])
	}
	if len(res.Result.Applied) != 1 {
		t.Errorf("Applied = %+v, want one entry", res.Result.Applied)
	}
}

func TestResolver_StartTurn(t *testing.T) {
	r := newTestResolver(99)
	c := withMove(newTestCombatant("alice", 0), strikeMove)
	c.Loadout.Moves["strike"].CurrentCooldown = 2
	c.Vault.VaultHealth = 50
	c.Loadout.Effects.Apply(Effect{ID: "b", Kind: EffectDebuff, Type: EffectBurn, Strength: 10, RemainingTurns: 1}, StackIndependent)
	c.Loadout.Effects.Apply(Effect{ID: "r", Kind: EffectBuff, Type: EffectRegen, Strength: 5, RemainingTurns: 3}, StackIndependent)

	next, report := r.StartTurn(c, dayStart)

	if report.Turn != 1 || next.Loadout.Turn != 1 {
		t.Errorf("Turn = %d/%d, want 1", report.Turn, next.Loadout.Turn)
	}
	if report.Burned != 10 || report.Healed != 5 || next.Vault.VaultHealth != 45 {
		t.Errorf("burned %d, healed %d, health %d, want 10/5/45", report.Burned, report.Healed, next.Vault.VaultHealth)
	}
	if len(report.Expired) != 1 || report.Expired[0].ID != "b" {
		t.Errorf("Expired = %+v, want the burn", report.Expired)
	}
	if got := next.Loadout.Moves["strike"].CurrentCooldown; got != 1 {
		t.Errorf("CurrentCooldown = %d, want 1", got)
	}
	if c.Loadout.Turn != 0 || c.Vault.VaultHealth != 50 {
		t.Error("StartTurn() mutated its input")
	}

	for i := 0; i < 2; i++ {
		next, _ = r.StartTurn(next, dayStart)
	}
	if !next.Loadout.Moves["strike"].Eligible() {
		t.Error("move should be eligible once the cooldown has run down")
	}
	if len(next.Loadout.Effects.Entries) != 0 {
		t.Errorf("effects after three turns = %+v, want none", next.Loadout.Effects.Entries)
	}
}
