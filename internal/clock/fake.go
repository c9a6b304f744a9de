package clock

import "time"

// FakeClock is a manually advanced Clock for tests. It is not safe for
// concurrent use; advance it from the test goroutine only.
type FakeClock struct {
	current time.Time
}

// NewFakeClock pins the clock to t, normalized to UTC.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{current: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.current
}

// Advance moves the clock forward by d.
func (c *FakeClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}
