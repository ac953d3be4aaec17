package vw

// Rules holds the tunable product parameters of the economy.
type Rules struct {
	Capacity          int
	MaxShieldStrength int
	MaxMovesPerDay    int

	// Restore cost of the Nth restore on a day is RestoreBaseCost + RestoreStepCost×(N−1).
	RestoreBaseCost int
	RestoreStepCost int

	// HealthRestoreCost is the PP price of one point of vault health on early restore.
	HealthRestoreCost int

	// ShieldBuffAmount is the shield granted by a shield_buff offline move.
	ShieldBuffAmount int

	GeneratorUpgradeCost int
	MasteryUpgradeCost   int

	Stacking       StackingPolicy
	GeneratorRates []GeneratorRate
}

// DefaultRules returns the standard economy parameters.
func DefaultRules() Rules {
	return Rules{
		Capacity:             1000,
		MaxShieldStrength:    100,
		MaxMovesPerDay:       3,
		RestoreBaseCost:      100,
		RestoreStepCost:      100,
		HealthRestoreCost:    2,
		ShieldBuffAmount:     25,
		GeneratorUpgradeCost: 500,
		MasteryUpgradeCost:   200,
		Stacking:             StackIndependent,
		GeneratorRates:       DefaultGeneratorRates(),
	}
}
