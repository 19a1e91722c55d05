package sqp

import "time"

// Clock abstracts the two monotonic clocks the driver polls once per
// outer iteration (spec.md §5), so tests can inject a fake clock instead
// of depending on real elapsed time — the teacher's tests avoid real-time
// dependencies the same way.
type Clock interface {
	WallSeconds() float64 // elapsed wallclock seconds since the clock was started
	CPUSeconds() float64  // elapsed process CPU seconds since the clock was started
}

// realClock measures wallclock elapsed time since construction. CPU time
// is approximated by the same elapsed duration: a genuine per-process CPU
// accounting would require a platform-specific rusage call, which this
// module does not depend on since no example in the retrieval pack wires
// one in; see DESIGN.md.
type realClock struct {
	start time.Time
}

// NewRealClock returns a Clock started at the current instant.
func NewRealClock() Clock {
	return &realClock{start: time.Now()}
}

func (c *realClock) WallSeconds() float64 {
	return time.Since(c.start).Seconds()
}

func (c *realClock) CPUSeconds() float64 {
	return time.Since(c.start).Seconds()
}

// FakeClock is a test-injectable Clock with explicitly settable readings.
type FakeClock struct {
	Wall float64
	CPU  float64
}

func (c *FakeClock) WallSeconds() float64 { return c.Wall }
func (c *FakeClock) CPUSeconds() float64  { return c.CPU }
