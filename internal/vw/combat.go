package vw

import (
	"fmt"
	"time"
)

// Combatant pairs a player's vault with their loadout.
type Combatant struct {
	Vault   *Vault
	Loadout *Loadout
}

// ID returns the owning player id.
func (c *Combatant) ID() string { return c.Vault.OwnerID }

func (c *Combatant) clone() *Combatant {
	return &Combatant{Vault: c.Vault.Clone(), Loadout: c.Loadout.Clone()}
}

// MoveResult describes the outcome of one resolved move or card.
// Success is false only when a precondition failed; then every number is zero.
type MoveResult struct {
	Success  bool   `json:"success"`
	Action   string `json:"action"`
	CasterID string `json:"caster_id"`
	TargetID string `json:"target_id"`

	Cost          int `json:"cost"`
	Damage        int `json:"damage"`
	ShieldDamage  int `json:"shield_damage"`
	HealthDamage  int `json:"health_damage"`
	PointsDrained int `json:"points_drained"`
	PointsStolen  int `json:"points_stolen"`
	Healing       int `json:"healing"`
	ShieldBoost   int `json:"shield_boost"`

	// Nullified is set when the target's firewall stopped the attack,
	// Absorbed when an overshield charge did.
	Nullified bool `json:"nullified"`
	Absorbed  bool `json:"absorbed"`

	Applied  []Effect `json:"applied,omitempty"`
	Cleansed []Effect `json:"cleansed,omitempty"`

	TargetBefore VaultSnapshot `json:"target_before"`
	TargetAfter  VaultSnapshot `json:"target_after"`
}

// Offensive reports whether the result came from an attack on another vault.
func (r *MoveResult) Offensive() bool {
	return r.TargetID != "" && r.TargetID != r.CasterID
}

// Resolution carries the mutated copies of the participants. The inputs
// to the resolver are never modified, so a failed resolution has no effect.
type Resolution struct {
	Result MoveResult
	Caster *Combatant
	// Target is nil for self-targeted actions.
	Target *Combatant
}

// payload is the common shape of move and card effects after mastery scaling.
type payload struct {
	source    string
	offensive bool

	damage       int
	shieldDamage int
	steal        int
	debuff       *EffectSpec

	healing     int
	shieldBoost int
	overshield  int
	firewall    int
	cleanse     bool
	buff        *EffectSpec
}

func (p payload) hostile() bool {
	return p.damage > 0 || p.shieldDamage > 0 || p.steal > 0 || p.debuff != nil
}

// Resolver applies moves and cards to combatants.
type Resolver struct {
	roller   Roller
	idgen    IDGenerator
	stacking StackingPolicy
}

// NewResolver creates a Resolver.
func NewResolver(roller Roller, idgen IDGenerator, stacking StackingPolicy) *Resolver {
	if !stacking.Valid() {
		stacking = StackIndependent
	}
	return &Resolver{roller: roller, idgen: idgen, stacking: stacking}
}

// ResolveMove applies a move from caster to target. target may be nil or the
// caster itself for self-targeted move types.
func (r *Resolver) ResolveMove(tmpl MoveTemplate, caster *Combatant, target *Combatant, now time.Time) (*Resolution, error) {
	state, ok := caster.Loadout.Moves[tmpl.Name]
	if !ok || !state.Unlocked {
		return nil, fmt.Errorf("%w: move %s", ErrLocked, tmpl.Name)
	}
	if state.CurrentCooldown > 0 {
		return nil, fmt.Errorf("%w: move %s has %d turn(s) left", ErrOnCooldown, tmpl.Name, state.CurrentCooldown)
	}
	offensive := tmpl.Type.Offensive()
	if err := checkTarget(string(tmpl.Type), offensive, caster, target, now); err != nil {
		return nil, err
	}
	if caster.Vault.CurrentPoints < tmpl.Cost {
		return nil, fmt.Errorf("%w: move %s costs %d, have %d", ErrInsufficientFunds, tmpl.Name, tmpl.Cost, caster.Vault.CurrentPoints)
	}

	lvl := state.MasteryLevel
	p := payload{
		source:       tmpl.Name,
		offensive:    offensive,
		damage:       ScaleByMastery(tmpl.Damage, lvl),
		shieldDamage: ScaleByMastery(tmpl.ShieldDamage, lvl),
		steal:        ScaleByMastery(tmpl.PointsStolen, lvl),
		healing:      ScaleByMastery(tmpl.Healing, lvl),
		shieldBoost:  ScaleByMastery(tmpl.ShieldBoost, lvl),
		cleanse:      tmpl.Type == MoveCleanse,
		buff:         scaleSpec(tmpl.Buff, lvl),
		debuff:       scaleSpec(tmpl.Debuff, lvl),
	}

	res := r.begin(tmpl.Name, caster, target, offensive)
	if err := res.Caster.Vault.Debit(tmpl.Cost); err != nil {
		return nil, err
	}
	res.Result.Cost = tmpl.Cost
	res.Caster.Loadout.Moves[tmpl.Name].Use(tmpl)

	if err := r.apply(p, res, now); err != nil {
		return nil, err
	}
	return res, nil
}

// ResolveCard casts an action card from caster to target.
func (r *Resolver) ResolveCard(tmpl CardTemplate, caster *Combatant, target *Combatant, now time.Time) (*Resolution, error) {
	state, ok := caster.Loadout.Cards[tmpl.Name]
	if !ok || !state.Unlocked {
		return nil, fmt.Errorf("%w: card %s", ErrLocked, tmpl.Name)
	}
	if state.UsesRemaining <= 0 {
		return nil, fmt.Errorf("%w: card %s has no uses left", ErrAllowanceExhausted, tmpl.Name)
	}
	offensive := tmpl.Effect.Offensive()
	if err := checkTarget(tmpl.Effect.Type, offensive, caster, target, now); err != nil {
		return nil, err
	}
	if caster.Vault.TruthMetal < tmpl.TruthMetalCost {
		return nil, fmt.Errorf("%w: card %s costs %d truth metal, have %d", ErrInsufficientFunds, tmpl.Name, tmpl.TruthMetalCost, caster.Vault.TruthMetal)
	}

	p := cardPayload(tmpl, state.MasteryLevel)
	p.offensive = offensive

	res := r.begin(tmpl.Name, caster, target, offensive)
	if err := res.Caster.Vault.DebitTruthMetal(tmpl.TruthMetalCost); err != nil {
		return nil, err
	}
	res.Result.Cost = tmpl.TruthMetalCost
	res.Caster.Loadout.Cards[tmpl.Name].UsesRemaining--

	if err := r.apply(p, res, now); err != nil {
		return nil, err
	}
	return res, nil
}

func cardPayload(tmpl CardTemplate, level int) payload {
	s := tmpl.Strength(level)
	p := payload{source: tmpl.Name}
	switch tmpl.Effect.Type {
	case CardDamage:
		p.damage = s
	case CardShieldBreak:
		p.shieldDamage = s
	case CardSteal:
		p.steal = s
	case CardHeal:
		p.healing = s
	case CardShield:
		p.shieldBoost = s
	case CardOvershield:
		p.overshield = s
	case CardFirewall:
		p.firewall = s
	case CardCleanse:
		p.cleanse = true
	default:
		spec := &EffectSpec{Type: tmpl.Effect.Type, Strength: s, Duration: tmpl.Effect.Duration}
		if kind, _ := EffectKindOf(tmpl.Effect.Type); kind == EffectDebuff {
			p.debuff = spec
		} else {
			p.buff = spec
		}
	}
	return p
}

func scaleSpec(s *EffectSpec, level int) *EffectSpec {
	if s == nil {
		return nil
	}
	return &EffectSpec{Type: s.Type, Strength: ScaleByMastery(s.Strength, level), Duration: s.Duration}
}

func checkTarget(kind string, offensive bool, caster, target *Combatant, now time.Time) error {
	if offensive {
		if target == nil {
			return fmt.Errorf("%w: %s requires a target vault", ErrInvalidTarget, kind)
		}
		if target.ID() == caster.ID() {
			return fmt.Errorf("%w: %s cannot target the caster", ErrInvalidTarget, kind)
		}
		if left := target.Vault.CooldownRemaining(now); left > 0 {
			return fmt.Errorf("%w: vault %s is in health cooldown for %s", ErrInvalidTarget, target.ID(), left.Truncate(time.Second))
		}
		return nil
	}
	if target != nil && target.ID() != caster.ID() {
		return fmt.Errorf("%w: %s targets the caster only", ErrInvalidTarget, kind)
	}
	return nil
}

// begin clones the participants so that all mutation happens on copies.
func (r *Resolver) begin(action string, caster, target *Combatant, offensive bool) *Resolution {
	res := &Resolution{
		Caster: caster.clone(),
		Result: MoveResult{Success: true, Action: action, CasterID: caster.ID(), TargetID: caster.ID()},
	}
	if offensive {
		res.Target = target.clone()
		res.Result.TargetID = target.ID()
	}
	return res
}

func (r *Resolver) apply(p payload, res *Resolution, now time.Time) error {
	c := res.Caster
	out := &res.Result

	if p.offensive {
		t := res.Target
		out.TargetBefore = t.Vault.Snapshot()
		if p.hostile() {
			switch {
			case t.Vault.Firewall > 0 && r.roller.Roll() < t.Vault.Firewall:
				out.Nullified = true
			case t.Vault.OvershieldCount > 0:
				t.Vault.OvershieldCount--
				out.Absorbed = true
			default:
				if err := r.strike(p, c, t, out, now); err != nil {
					return err
				}
			}
		}
		out.TargetAfter = t.Vault.Snapshot()
	}

	if p.healing > 0 {
		out.Healing = c.Vault.ApplyVaultHealthDelta(p.healing, now)
	}
	if p.shieldBoost > 0 {
		out.ShieldBoost = c.Vault.ApplyShieldDelta(p.shieldBoost)
	}
	if p.overshield > 0 {
		c.Vault.OvershieldCount += p.overshield
	}
	if p.firewall > 0 {
		c.Vault.ApplyFirewallDelta(p.firewall)
	}
	if p.cleanse {
		out.Cleansed = c.Loadout.Effects.Cleanse()
	}
	if p.buff != nil {
		out.Applied = append(out.Applied, r.attach(c.Loadout, EffectBuff, *p.buff, p.source, now))
	}
	return nil
}

// strike runs the shield-then-health cascade, theft and debuff on the target.
// Damage is absorbed by the shield first; what overflows reduces vault health,
// and what overflows health drains points.
func (r *Resolver) strike(p payload, c, t *Combatant, out *MoveResult, now time.Time) error {
	shieldLost := -t.Vault.ApplyShieldDelta(-p.shieldDamage)

	dmg := incomingDamage(p.damage, c, t)
	out.Damage = dmg
	if dmg > 0 {
		absorbed := min(dmg, t.Vault.ShieldStrength)
		shieldLost += -t.Vault.ApplyShieldDelta(-absorbed)
		overflow := dmg - absorbed

		healthLost := -t.Vault.ApplyVaultHealthDelta(-overflow, now)
		out.HealthDamage = healthLost
		overflow -= healthLost

		drained := min(overflow, t.Vault.CurrentPoints)
		if err := t.Vault.Debit(drained); err != nil {
			return err
		}
		out.PointsDrained = drained
	}
	out.ShieldDamage = shieldLost

	if p.steal > 0 {
		stolen := min(p.steal, t.Vault.CurrentPoints)
		if err := t.Vault.Debit(stolen); err != nil {
			return err
		}
		if _, err := c.Vault.Credit(stolen, now); err != nil {
			return err
		}
		out.PointsStolen = stolen
	}

	if p.debuff != nil {
		out.Applied = append(out.Applied, r.attach(t.Loadout, EffectDebuff, *p.debuff, p.source, now))
	}
	return nil
}

// incomingDamage applies percentage modifiers from both sides, then the debt
// vulnerability multiplier.
func incomingDamage(base int, c, t *Combatant) int {
	if base <= 0 {
		return 0
	}
	pct := 100 +
		c.Loadout.Effects.TotalStrength(EffectEmpower) -
		c.Loadout.Effects.TotalStrength(EffectWeaken) +
		t.Loadout.Effects.TotalStrength(EffectExpose) -
		t.Loadout.Effects.TotalStrength(EffectFortify)
	if pct <= 0 {
		return 0
	}
	dmg := base * pct / 100
	if t.Vault.DebtActive {
		dmg = int(float64(dmg) * DebtVulnerabilityMultiplier)
	}
	return dmg
}

func (r *Resolver) attach(l *Loadout, kind EffectKind, spec EffectSpec, source string, now time.Time) Effect {
	e := Effect{
		ID:             r.idgen.New(),
		Kind:           kind,
		Type:           spec.Type,
		Strength:       spec.Strength,
		DurationTurns:  spec.Duration,
		RemainingTurns: spec.Duration,
		SourceID:       source,
		AppliedAt:      now,
	}
	l.Effects.Apply(e, r.stacking)
	return e
}

// TurnReport summarises what happened at the start of a turn.
type TurnReport struct {
	Turn    int      `json:"turn"`
	Burned  int      `json:"burned"`
	Healed  int      `json:"healed"`
	Expired []Effect `json:"expired,omitempty"`
}

// StartTurn begins the next turn of c: cooldowns drop by one, periodic
// modifiers fire, then every modifier ticks. It returns the updated copy.
func (r *Resolver) StartTurn(c *Combatant, now time.Time) (*Combatant, TurnReport) {
	n := c.clone()
	n.Loadout.Turn++
	n.Loadout.TickCooldowns()

	report := TurnReport{Turn: n.Loadout.Turn}
	if burn := n.Loadout.Effects.TotalStrength(EffectBurn); burn > 0 {
		report.Burned = -n.Vault.ApplyVaultHealthDelta(-burn, now)
	}
	if regen := n.Loadout.Effects.TotalStrength(EffectRegen); regen > 0 {
		report.Healed = n.Vault.ApplyVaultHealthDelta(regen, now)
	}
	report.Expired = n.Loadout.Effects.Tick()
	return n, report
}
