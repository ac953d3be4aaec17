package vw

import (
	"fmt"
	"math"
	"time"
)

// Boost is a time-limited multiplier applied to every point credit.
type Boost struct {
	Multiplier float64   `json:"multiplier"`
	Source     string    `json:"source"`
	StartsAt   time.Time `json:"starts_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// NewBoost validates and creates a boost active from now for d.
func NewBoost(multiplier float64, d time.Duration, source string, now time.Time) (*Boost, error) {
	if multiplier < 1 {
		return nil, fmt.Errorf("boost multiplier must be at least 1: %v", multiplier)
	}
	if d <= 0 {
		return nil, fmt.Errorf("boost duration must be positive: %v", d)
	}
	return &Boost{Multiplier: multiplier, Source: source, StartsAt: now, ExpiresAt: now.Add(d)}, nil
}

// Active reports whether the boost applies at now. A nil boost is never active.
func (b *Boost) Active(now time.Time) bool {
	return b != nil && !now.Before(b.StartsAt) && now.Before(b.ExpiresAt)
}

// MultiplierAt returns the credit multiplier at now.
func (b *Boost) MultiplierAt(now time.Time) float64 {
	if !b.Active(now) {
		return 1
	}
	return b.Multiplier
}

// Apply scales points by the multiplier at now, rounding down.
func (b *Boost) Apply(points int, now time.Time) int {
	m := b.MultiplierAt(now)
	if m == 1 {
		return points
	}
	return int(math.Floor(float64(points) * m))
}
