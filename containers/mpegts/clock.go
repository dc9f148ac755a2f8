package mpegts

import "time"

const (
	ClockFrequency = 90000

	pcrWrap = int64(1) << 33
)

// TicksToDuration converts 90kHz ticks to a duration without going through
// floating point, so 540900 ticks is exactly 6.01s.
func TicksToDuration(ticks int64) time.Duration {
	return time.Duration(ticks * 100000 / 9)
}

// Clock turns program clock references into elapsed time since the first
// reference observed. A 33-bit wrap is unwrapped so elapsed time keeps
// increasing across it.
type Clock struct {
	elapsed time.Duration
	initial int64
	last    int64
	offset  int64
	seeded  bool
}

func (c *Clock) Elapsed() time.Duration {
	return c.elapsed
}

func (c *Clock) Observe(pcr ClockReference) time.Duration {
	base := pcr.Base + c.offset

	if !c.seeded {
		c.initial = base
		c.last = base
		c.seeded = true
	}

	if c.last-base > pcrWrap/2 {
		c.offset += pcrWrap
		base += pcrWrap
	}

	c.last = base
	c.elapsed = TicksToDuration(base - c.initial)

	return c.elapsed
}

func (c *Clock) Seeded() bool {
	return c.seeded
}
