package vw

import (
	"fmt"
	"time"
)

// GeneratorRate is the daily output of a generator at one level.
type GeneratorRate struct {
	PointsPerDay  int `json:"points_per_day"`
	ShieldsPerDay int `json:"shields_per_day"`
}

// DefaultGeneratorRates returns the rate table indexed by level-1.
func DefaultGeneratorRates() []GeneratorRate {
	return []GeneratorRate{
		{PointsPerDay: 100, ShieldsPerDay: 10},
		{PointsPerDay: 150, ShieldsPerDay: 15},
		{PointsPerDay: 200, ShieldsPerDay: 20},
		{PointsPerDay: 300, ShieldsPerDay: 25},
		{PointsPerDay: 400, ShieldsPerDay: 30},
		{PointsPerDay: 500, ShieldsPerDay: 40},
	}
}

// Generator accrues points and shields over the course of one game day.
type Generator struct {
	boundary *BoundaryResolver
	rates    []GeneratorRate
}

// NewGenerator validates that the rate table is non-empty and non-decreasing.
func NewGenerator(boundary *BoundaryResolver, rates []GeneratorRate) (*Generator, error) {
	if len(rates) == 0 {
		return nil, fmt.Errorf("generator rate table is empty")
	}
	for i := 1; i < len(rates); i++ {
		if rates[i].PointsPerDay < rates[i-1].PointsPerDay || rates[i].ShieldsPerDay < rates[i-1].ShieldsPerDay {
			return nil, fmt.Errorf("generator rate table decreases at level %d", i+1)
		}
	}
	return &Generator{boundary: boundary, rates: rates}, nil
}

// MaxLevel is the highest level with its own rate.
func (g *Generator) MaxLevel() int { return len(g.rates) }

// Rate returns the rate for level. Levels past the table use the last entry.
func (g *Generator) Rate(level int) GeneratorRate {
	switch {
	case level < 1:
		return g.rates[0]
	case level > len(g.rates):
		return g.rates[len(g.rates)-1]
	}
	return g.rates[level-1]
}

// Accrue brings the pending buffers up to date at now. A new game day discards
// the previous day's uncollected output first. Output grows with the elapsed
// fraction of the day and never exceeds the level's daily rate, no matter how
// often Accrue runs. When the level changed since the last call, output up to
// now is settled at the old rate and the new rate only covers the rest of the day.
func (g *Generator) Accrue(v *Vault, now time.Time) {
	if v.LastGeneratorTick.IsZero() || !g.boundary.SameDay(now, v.LastGeneratorTick) {
		v.GeneratorPendingPoints = 0
		v.GeneratorPendingShields = 0
		v.GeneratorAccruedPoints = 0
		v.GeneratorAccruedShields = 0
		v.GeneratorSegmentLevel = v.GeneratorLevel
		v.GeneratorSegmentStart = 0
		v.GeneratorSegmentPoints = 0
		v.GeneratorSegmentShields = 0
	}
	if v.GeneratorSegmentLevel == 0 {
		v.GeneratorSegmentLevel = v.GeneratorLevel
	}

	frac := g.boundary.DayFraction(now)
	if v.GeneratorSegmentLevel != v.GeneratorLevel {
		g.accrueSegment(v, frac)
		v.GeneratorSegmentLevel = v.GeneratorLevel
		v.GeneratorSegmentStart = frac
		v.GeneratorSegmentPoints = v.GeneratorAccruedPoints
		v.GeneratorSegmentShields = v.GeneratorAccruedShields
	}
	g.accrueSegment(v, frac)

	if now.After(v.LastGeneratorTick) {
		v.LastGeneratorTick = now
	}
}

// accrueSegment credits the current segment's output up to day fraction frac.
func (g *Generator) accrueSegment(v *Vault, frac float64) {
	rate := g.Rate(v.GeneratorSegmentLevel)
	elapsed := max(frac-v.GeneratorSegmentStart, 0)

	points := min(v.GeneratorSegmentPoints+int(float64(rate.PointsPerDay)*elapsed), rate.PointsPerDay)
	if points > v.GeneratorAccruedPoints {
		v.GeneratorPendingPoints += points - v.GeneratorAccruedPoints
		v.GeneratorAccruedPoints = points
	}
	shields := min(v.GeneratorSegmentShields+int(float64(rate.ShieldsPerDay)*elapsed), rate.ShieldsPerDay)
	if shields > v.GeneratorAccruedShields {
		v.GeneratorPendingShields += shields - v.GeneratorAccruedShields
		v.GeneratorAccruedShields = shields
	}
	v.GeneratorPendingPoints = min(v.GeneratorPendingPoints, rate.PointsPerDay)
	v.GeneratorPendingShields = min(v.GeneratorPendingShields, rate.ShieldsPerDay)
}

// Collect moves pending output into the vault and empties the buffers.
// Points go through Credit, so an active boost applies.
func (g *Generator) Collect(v *Vault, now time.Time) (points int, shields int, err error) {
	points, err = v.Credit(v.GeneratorPendingPoints, now)
	if err != nil {
		return 0, 0, err
	}
	shields = v.ApplyShieldDelta(v.GeneratorPendingShields)
	v.GeneratorPendingPoints = 0
	v.GeneratorPendingShields = 0
	return points, shields, nil
}

// Progress is the display percentage of the current day's accrual.
func (g *Generator) Progress(now time.Time) float64 {
	return g.boundary.DayProgress(now)
}

// GeneratorStatus is a read-only view for display.
type GeneratorStatus struct {
	Level          int
	Rate           GeneratorRate
	PendingPoints  int
	PendingShields int
	Progress       float64
	NextBoundary   time.Time
}

// Status reports the generator state of v at now without mutating v.
func (g *Generator) Status(v *Vault, now time.Time) GeneratorStatus {
	c := v.Clone()
	g.Accrue(c, now)
	return GeneratorStatus{
		Level:          c.GeneratorLevel,
		Rate:           g.Rate(c.GeneratorLevel),
		PendingPoints:  c.GeneratorPendingPoints,
		PendingShields: c.GeneratorPendingShields,
		Progress:       g.Progress(now),
		NextBoundary:   g.boundary.NextBoundary(now),
	}
}
