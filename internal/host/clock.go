package host

import "time"

// Clock maps wall time to simulation time running Rate times faster.
type Clock struct {
	rate   float64
	baseJD float64
	base   time.Time
	start  time.Time
}

// NewClock starts a clock at jd at wall time now.
func NewClock(jd float64, rate float64, now time.Time) *Clock {
	return &Clock{rate: rate, baseJD: jd, base: now, start: now}
}

// JD returns the simulation time at now.
func (c *Clock) JD(now time.Time) float64 {
	return c.baseJD + c.rate*now.Sub(c.base).Seconds()/86400
}

// WallMS returns milliseconds since the clock started.
func (c *Clock) WallMS(now time.Time) int64 {
	return now.Sub(c.start).Milliseconds()
}

func (c *Clock) Rate() float64 { return c.rate }

// SetRate changes the speed without a jump in simulation time.
func (c *Clock) SetRate(rate float64, now time.Time) {
	c.baseJD = c.JD(now)
	c.base = now
	c.rate = rate
}

// Jump moves the simulation time by d of simulated time.
func (c *Clock) Jump(d time.Duration, now time.Time) {
	c.baseJD = c.JD(now) + d.Seconds()/86400
	c.base = now
}
