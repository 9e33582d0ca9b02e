package agent

import (
	"fmt"

	"github.com/warden/warden/internal/eventlog"
	"github.com/warden/warden/internal/world"
)

// restConditionsLocked reports whether the agent should seek rest:
// night, at least one other participant present, and not already
// resting.
func (c *Controller) restConditionsLocked() bool {
	sess := c.session
	if sess == nil {
		return false
	}
	return sess.TimeOfDay() == world.TimeNight &&
		len(sess.Participants()) > 0 &&
		!sess.Resting()
}

// checkRestLocked is the full rest/wake condition check, run on every
// participant and time event and again on the periodic tick. Wake takes
// strict priority: an empty world wakes the agent regardless of time of
// day, and daytime wakes it regardless of participants.
func (c *Controller) checkRestLocked(gen uint64) {
	sess := c.session
	if sess == nil || c.home == nil {
		return
	}

	if sess.Resting() {
		if len(sess.Participants()) == 0 {
			c.emergencyWakeLocked(gen)
			return
		}
		if sess.TimeOfDay() == world.TimeDay {
			c.attemptWakeLocked("standard")
		}
		return
	}

	if c.restConditionsLocked() {
		c.seekRestLocked(gen)
	}
}

// restTick is the periodic failsafe against missed events.
func (c *Controller) restTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || gen != c.gen {
		return
	}

	c.checkRestLocked(gen)
}

// seekRestLocked searches for the nearest rest site and starts the
// approach. Finding none is not an error; the periodic check retries
// the whole search. A repeated search overwrites the previous pending
// approach so stale completions are ignored.
func (c *Controller) seekRestLocked(gen uint64) {
	sess := c.session

	site, ok := sess.NearestRestSite(sess.Position(), c.cfg.RestSearchRadius)
	if !ok {
		c.record(eventlog.SeverityInfo,
			fmt.Sprintf("No rest site within %d blocks", c.cfg.RestSearchRadius))
		if c.metrics != nil {
			c.metrics.RestSearches.WithLabelValues("none").Inc()
		}
		return
	}

	if c.metrics != nil {
		c.metrics.RestSearches.WithLabelValues("found").Inc()
	}

	c.pendingRestSite = &site
	if err := sess.SetGoal(&site); err != nil {
		c.record(eventlog.SeverityWarning, fmt.Sprintf("Failed to head to rest site: %v", err))
		c.pendingRestSite = nil
		return
	}

	c.record(eventlog.SeverityInfo,
		fmt.Sprintf("Heading to rest site at (%d, %d, %d)", site.X, site.Y, site.Z))
}

// onGoalReachedLocked attempts rest entry once the approach goal
// completes. Completions that don't match the pending site belong to an
// abandoned approach and are dropped.
func (c *Controller) onGoalReachedLocked(gen uint64, ev world.GoalReachedEvent) {
	if c.pendingRestSite == nil || ev.Goal != *c.pendingRestSite {
		return
	}
	site := *c.pendingRestSite
	c.pendingRestSite = nil

	// Conditions may have lapsed during the walk (sunrise, everyone
	// left). The next periodic check restarts the search if needed.
	if !c.restConditionsLocked() {
		return
	}

	if err := c.session.EnterRest(site); err != nil {
		c.record(eventlog.SeverityWarning, fmt.Sprintf("Failed to enter rest: %v", err))
	}
}

// emergencyWakeLocked fires the layered wake cascade: an immediate
// attempt plus delayed repeats to defeat races where presence-counting
// lags reality. Each attempt is a no-op when the agent is already
// awake, so over-triggering is harmless.
func (c *Controller) emergencyWakeLocked(gen uint64) {
	for i, offset := range c.cfg.WakeCascadeOffsets {
		if offset == 0 {
			c.attemptWakeLocked("emergency")
			continue
		}
		name := fmt.Sprintf("%s-%d", taskWake, i)
		c.tasks.After(name, offset, func() { c.attemptWake(gen, "emergency") })
	}
}

// attemptWake is the deferred-cascade entry point; it re-validates
// controller state before attempting.
func (c *Controller) attemptWake(gen uint64, kind string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || gen != c.gen {
		return
	}

	c.attemptWakeLocked(kind)
}

// attemptWakeLocked issues a single wake command if the agent is
// resting. Failures are logged; the cascade and periodic check provide
// the retries.
func (c *Controller) attemptWakeLocked(kind string) {
	sess := c.session
	if sess == nil || !sess.Resting() {
		return
	}

	if c.metrics != nil {
		c.metrics.WakeAttempts.WithLabelValues(kind).Inc()
	}

	if err := sess.LeaveRest(); err != nil {
		c.record(eventlog.SeverityWarning, fmt.Sprintf("Wake attempt failed: %v", err))
	}
}
