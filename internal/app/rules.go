package app

import (
	"vaultwars/internal/config"
	"vaultwars/internal/vw"
)

// rulesFromConfig overlays the non-zero config values on the default rules.
func rulesFromConfig(cfg config.RulesConfig) vw.Rules {
	rules := vw.DefaultRules()

	override := func(dst *int, v int) {
		if v > 0 {
			*dst = v
		}
	}
	override(&rules.Capacity, cfg.Capacity)
	override(&rules.MaxShieldStrength, cfg.MaxShield)
	override(&rules.MaxMovesPerDay, cfg.MaxMovesPerDay)
	override(&rules.RestoreBaseCost, cfg.RestoreBaseCost)
	override(&rules.RestoreStepCost, cfg.RestoreStepCost)
	override(&rules.HealthRestoreCost, cfg.HealthRestoreCost)
	override(&rules.ShieldBuffAmount, cfg.ShieldBuffAmount)

	if cfg.EffectStacking != "" {
		rules.Stacking = vw.StackingPolicy(cfg.EffectStacking)
	}
	if len(cfg.Generator) > 0 {
		rates := make([]vw.GeneratorRate, len(cfg.Generator))
		for i, r := range cfg.Generator {
			rates[i] = vw.GeneratorRate{PointsPerDay: r.PointsPerDay, ShieldsPerDay: r.ShieldsPerDay}
		}
		rules.GeneratorRates = rates
	}
	return rules
}
