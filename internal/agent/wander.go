package agent

import (
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/warden/warden/internal/eventlog"
)

// scheduleWanderLocked arms the next wander step after a uniform random
// delay in [WanderMinDelay, WanderMaxDelay).
func (c *Controller) scheduleWanderLocked(gen uint64) {
	delay := c.cfg.WanderMinDelay
	if spread := c.cfg.WanderMaxDelay - c.cfg.WanderMinDelay; spread > 0 {
		delay += time.Duration(rand.Int64N(int64(spread)))
	}
	c.tasks.After(taskWanderStep, delay, func() { c.wanderStep(gen) })
}

// wanderStep performs one step of the bounded random walk. The step
// defers to the rest scheduler: when rest conditions hold, rest-seeking
// takes over and no step is taken. Steps only ever target cells inside
// the 3x3 patrol area; the boundary tick handles externally caused
// violations.
func (c *Controller) wanderStep(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || gen != c.gen || c.session == nil || c.home == nil {
		return
	}

	if c.restConditionsLocked() {
		c.seekRestLocked(gen)
		return
	}

	// No movement while resting; the chain stays armed so wandering
	// resumes after wake-up without a watchdog kick.
	if c.session.Resting() {
		c.lastWander = time.Now()
		c.scheduleWanderLocked(gen)
		return
	}

	target := c.home.Offset(rand.IntN(3)-1, 0, rand.IntN(3)-1)
	c.lastWander = time.Now()

	if err := c.session.MoveTo(target); err != nil {
		c.record(eventlog.SeverityWarning, fmt.Sprintf("Movement failed: %v; retrying", err))
		if c.metrics != nil {
			c.metrics.WanderFailures.Inc()
		}
		c.tasks.After(taskWanderStep, c.cfg.WanderRetryDelay, func() { c.wanderStep(gen) })
		return
	}

	if c.metrics != nil {
		c.metrics.WanderSteps.Inc()
	}
	c.scheduleWanderLocked(gen)
}

// boundaryTick runs on a fixed cadence while active and corrects any
// violation of the patrol bound.
func (c *Controller) boundaryTick(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || gen != c.gen || c.session == nil || c.home == nil {
		return
	}

	c.boundaryCheckLocked()
}

// boundaryCheckLocked issues a corrective move toward home when the
// agent's Chebyshev distance from home exceeds the patrol bound. This is
// a correction, not prevention: wander steps never leave the area, but
// external forces can push the agent out.
func (c *Controller) boundaryCheckLocked() {
	sess := c.session
	home := *c.home

	if sess.Position().ChebyshevXZ(home) <= 1 {
		return
	}

	// Cancel whatever the agent was doing and head straight back.
	_ = sess.SetGoal(nil)
	if err := sess.MoveTo(home); err != nil {
		c.record(eventlog.SeverityWarning, fmt.Sprintf("Failed to return home: %v", err))
		return
	}

	c.record(eventlog.SeverityInfo, "Outside patrol area; returning home")
	if c.metrics != nil {
		c.metrics.BoundaryCorrections.Inc()
	}
}

// watchdogTick detects wander-step starvation and forces a fresh step.
// It is deliberately redundant with the normal re-scheduling chain so no
// single scheduling path can silently stall the patrol.
func (c *Controller) watchdogTick(gen uint64) {
	c.mu.Lock()

	if !c.running || gen != c.gen || c.session == nil || c.home == nil {
		c.mu.Unlock()
		return
	}

	stalled := time.Since(c.lastWander) > c.cfg.WanderStallAfter
	if stalled && c.metrics != nil {
		c.metrics.WatchdogKicks.Inc()
	}
	c.mu.Unlock()

	if stalled {
		c.wanderStep(gen)
	}
}
