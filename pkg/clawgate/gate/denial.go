package gate

import "time"

// now is overridden in tests so backoff math doesn't depend on wall-clock
// timing.
var now = time.Now

// checkRateLimit reports whether tool is currently in backoff, and if
// so, how much longer.
func (c *Config) checkRateLimit(tool string) (limited bool, retryAfter time.Duration) {
	tr, ok := c.Denials[tool]
	if !ok {
		return false, 0
	}
	n := now()
	if tr.BackoffUntil.After(n) {
		return true, tr.BackoffUntil.Sub(n)
	}
	return false, 0
}

// recordDenial increments the denial tracker for tool and recomputes
// BackoffUntil from the schedule. The invariant BackoffUntil >=
// LastDenial holds because the schedule never returns a negative
// duration.
func (c *Config) recordDenial(tool string) {
	tr, ok := c.Denials[tool]
	if !ok {
		tr = &DenialTracker{}
		c.Denials[tool] = tr
	}
	tr.Count++
	tr.LastDenial = now()
	tr.BackoffUntil = tr.LastDenial.Add(scheduleFor(tr.Count))
}

// clearDenial zeroes the tracker for tool, called after an Allowed or
// AllowedAlways outcome.
func (c *Config) clearDenial(tool string) {
	delete(c.Denials, tool)
}
