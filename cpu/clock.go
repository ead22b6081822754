package cpu

const nanosPerSecond = 1_000_000_000

// clock converts elapsed wall-clock time into a number of discrete
// cycles which are due to run.
//
// Each clock remembers the elapsed-time reading at which it was last
// serviced.  When at least one whole period has passed since then the
// reference point is re-based to "now" - not to an exact multiple of
// the period.  The fractional remainder inside the current period is
// discarded, so a long gap between observations followed by short ones
// will not catch up missed partial cycles.  That matches the reference
// behaviour and keeps rate changes simple; don't swap in
// remainder-preserving accounting.
type clock struct {
	// periodNanos is how many nanoseconds one cycle takes.
	periodNanos int64

	// lastNanos is the elapsed-time reading when the clock last
	// reported due cycles.
	lastNanos int64
}

// newClock returns a clock ticking at the given rate.
func newClock(rateHz uint32) clock {
	return clock{periodNanos: nanosPerSecond / int64(rateHz)}
}

// setRate changes the tick rate without disturbing the reference
// point.
func (c *clock) setRate(rateHz uint32) {
	c.periodNanos = nanosPerSecond / int64(rateHz)
}

// due returns how many whole periods have passed since the clock was
// last serviced, given the total elapsed nanoseconds since start.
func (c *clock) due(elapsedNanos int64) int64 {
	n := (elapsedNanos - c.lastNanos) / c.periodNanos

	if n > 0 {
		c.lastNanos = elapsedNanos
	}
	return n
}

// rewind moves the reference point back to the start of time.
func (c *clock) rewind() {
	c.lastNanos = 0
}
