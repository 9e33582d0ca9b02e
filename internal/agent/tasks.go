package agent

import (
	"sync"
	"time"
)

// taskScheduler owns the controller's named delayed and recurring tasks.
// Scheduling a name that is already pending replaces the earlier task;
// CancelAll tears everything down as a unit when the controller leaves
// the active state.
//
// Cancellation is soft: a timer that has already fired may still run its
// callback once, so every callback re-validates controller state at
// entry.
type taskScheduler struct {
	mu     sync.Mutex
	timers map[string]*time.Timer
	stops  map[string]chan struct{}
}

func newTaskScheduler() *taskScheduler {
	return &taskScheduler{
		timers: make(map[string]*time.Timer),
		stops:  make(map[string]chan struct{}),
	}
}

// After schedules fn to run once after d, replacing any pending task
// with the same name.
func (t *taskScheduler) After(name string, d time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked(name)

	var timer *time.Timer
	timer = time.AfterFunc(d, func() {
		t.mu.Lock()
		if t.timers[name] == timer {
			delete(t.timers, name)
		}
		t.mu.Unlock()
		fn()
	})
	t.timers[name] = timer
}

// Every schedules fn to run at the given interval until cancelled,
// replacing any pending task with the same name.
func (t *taskScheduler) Every(name string, interval time.Duration, fn func()) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cancelLocked(name)

	stop := make(chan struct{})
	t.stops[name] = stop

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				return
			case <-ticker.C:
				fn()
			}
		}
	}()
}

// Cancel stops the named task if it is pending.
func (t *taskScheduler) Cancel(name string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cancelLocked(name)
}

// CancelAll stops every pending task.
func (t *taskScheduler) CancelAll() {
	t.mu.Lock()
	defer t.mu.Unlock()

	for name, timer := range t.timers {
		timer.Stop()
		delete(t.timers, name)
	}
	for name, stop := range t.stops {
		close(stop)
		delete(t.stops, name)
	}
}

func (t *taskScheduler) cancelLocked(name string) {
	if timer, ok := t.timers[name]; ok {
		timer.Stop()
		delete(t.timers, name)
	}
	if stop, ok := t.stops[name]; ok {
		close(stop)
		delete(t.stops, name)
	}
}
