package clock

import "time"

// FakeClock reports a pinned instant so late-order and trend windows
// can be tested against a known "today".
type FakeClock struct {
	now time.Time
}

func NewFakeClock(now time.Time) *FakeClock {
	return &FakeClock{now: now.UTC()}
}

func (c *FakeClock) Now() time.Time { return c.now }

// Advance moves the pinned instant forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}

// Set repins the instant.
func (c *FakeClock) Set(t time.Time) {
	c.now = t.UTC()
}
