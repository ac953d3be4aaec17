package testutil

import (
	"fmt"
	"sync"
	"time"
)

// StubClock returns a fixed time. Safe for concurrent use.
type StubClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewStubClock creates a StubClock set to the given time.
func NewStubClock(t time.Time) *StubClock {
	return &StubClock{now: t}
}

// FixedClock returns a StubClock set to 2024-01-15 10:30:00 America/New_York,
// two and a half hours into that game day.
func FixedClock() *StubClock {
	return NewStubClock(time.Date(2024, 1, 15, 15, 30, 0, 0, time.UTC))
}

func (c *StubClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *StubClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// Set moves the clock to t.
func (c *StubClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// StubIDGenerator returns sequential IDs: "id-1", "id-2", etc.
type StubIDGenerator struct {
	mu      sync.Mutex
	counter int
}

func NewStubIDGenerator() *StubIDGenerator {
	return &StubIDGenerator{}
}

func (g *StubIDGenerator) New() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.counter++
	return fmt.Sprintf("id-%d", g.counter)
}

// StubRoller replays a fixed sequence of rolls, repeating the last one.
// With no rolls it always returns 99, so any firewall below 100 lets attacks through.
type StubRoller struct {
	mu    sync.Mutex
	rolls []int
}

func NewStubRoller(rolls ...int) *StubRoller {
	return &StubRoller{rolls: rolls}
}

func (r *StubRoller) Roll() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	switch len(r.rolls) {
	case 0:
		return 99
	case 1:
		return r.rolls[0]
	}
	next := r.rolls[0]
	r.rolls = r.rolls[1:]
	return next
}
