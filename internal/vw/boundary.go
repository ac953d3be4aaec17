package vw

import (
	"fmt"
	"time"
)

const (
	// DefaultZone is the civil time zone used for day boundaries.
	DefaultZone = "America/New_York"
	// DefaultBoundaryHour is the civil hour at which a new game day starts.
	DefaultBoundaryHour = 8

	dayLength = 24 * time.Hour
)

// BoundaryResolver computes the civil "day boundary" that gates all daily resets.
// The boundary is a fixed wall-clock hour in a named zone; its UTC offset follows
// the zone's standard/daylight transitions.
type BoundaryResolver struct {
	loc  *time.Location
	hour int
}

// NewBoundaryResolver loads the named zone. A missing zone database is an error;
// there is no fallback to UTC.
func NewBoundaryResolver(zone string, hour int) (*BoundaryResolver, error) {
	if zone == "" {
		return nil, fmt.Errorf("%w: empty zone name", ErrTimeZoneResolution)
	}
	if hour < 0 || hour > 23 {
		return nil, fmt.Errorf("boundary hour out of range: %d", hour)
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return nil, fmt.Errorf("%w: loading %q: %v", ErrTimeZoneResolution, zone, err)
	}
	return &BoundaryResolver{loc: loc, hour: hour}, nil
}

// Location returns the civil zone of the resolver.
func (r *BoundaryResolver) Location() *time.Location { return r.loc }

// boundaryOn returns the boundary instant on the given civil date. time.Date
// resolves the civil wall time through the zone rules, so the offset is
// whatever the zone uses on that date.
func (r *BoundaryResolver) boundaryOn(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, r.hour, 0, 0, 0, r.loc)
}

// DayBoundary returns the most recent boundary at or before t.
func (r *BoundaryResolver) DayBoundary(t time.Time) time.Time {
	civil := t.In(r.loc)
	y, m, d := civil.Date()
	b := r.boundaryOn(y, m, d)
	if b.After(t) {
		b = r.boundaryOn(y, m, d-1)
	}
	return b
}

// NextBoundary returns the first boundary strictly after t.
func (r *BoundaryResolver) NextBoundary(t time.Time) time.Time {
	b := r.DayBoundary(t)
	y, m, d := b.In(r.loc).Date()
	return r.boundaryOn(y, m, d+1)
}

// SameDay reports whether a and b fall within the same game day.
func (r *BoundaryResolver) SameDay(a, b time.Time) bool {
	return r.DayBoundary(a).Equal(r.DayBoundary(b))
}

// InDay reports whether t lies in [DayBoundary(now), NextBoundary(now)).
func (r *BoundaryResolver) InDay(t, now time.Time) bool {
	start := r.DayBoundary(now)
	return !t.Before(start) && t.Before(r.NextBoundary(now))
}

// DayFraction returns the elapsed fraction of the game day containing t, in [0, 1).
// Days are 23 or 25 hours long across offset transitions.
func (r *BoundaryResolver) DayFraction(t time.Time) float64 {
	start := r.DayBoundary(t)
	length := r.NextBoundary(t).Sub(start)
	return float64(t.Sub(start)) / float64(length)
}

// DayProgress is the display percentage 100 × (1 − untilNext / 24h), clamped to [0, 100].
func (r *BoundaryResolver) DayProgress(t time.Time) float64 {
	until := r.NextBoundary(t).Sub(t)
	p := 100 * (1 - float64(until)/float64(dayLength))
	switch {
	case p < 0:
		return 0
	case p > 100:
		return 100
	}
	return p
}
