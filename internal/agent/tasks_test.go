package agent

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskSchedulerAfterFires(t *testing.T) {
	tasks := newTaskScheduler()
	defer tasks.CancelAll()

	var fired atomic.Int32
	tasks.After("once", time.Millisecond, func() { fired.Add(1) })

	require.Eventually(t, func() bool {
		return fired.Load() == 1
	}, time.Second, 5*time.Millisecond)
}

func TestTaskSchedulerAfterReplacesSameName(t *testing.T) {
	tasks := newTaskScheduler()
	defer tasks.CancelAll()

	var first, second atomic.Int32
	tasks.After("step", 50*time.Millisecond, func() { first.Add(1) })
	tasks.After("step", time.Millisecond, func() { second.Add(1) })

	require.Eventually(t, func() bool {
		return second.Load() == 1
	}, time.Second, 5*time.Millisecond)

	// The replaced task never fires
	time.Sleep(100 * time.Millisecond)
	assert.Zero(t, first.Load())
}

func TestTaskSchedulerEveryRepeats(t *testing.T) {
	tasks := newTaskScheduler()
	defer tasks.CancelAll()

	var ticks atomic.Int32
	tasks.Every("tick", 2*time.Millisecond, func() { ticks.Add(1) })

	require.Eventually(t, func() bool {
		return ticks.Load() >= 3
	}, time.Second, 5*time.Millisecond)
}

func TestTaskSchedulerCancel(t *testing.T) {
	tasks := newTaskScheduler()
	defer tasks.CancelAll()

	var fired atomic.Int32
	tasks.After("doomed", 20*time.Millisecond, func() { fired.Add(1) })
	tasks.Cancel("doomed")

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fired.Load())
}

func TestTaskSchedulerCancelAll(t *testing.T) {
	tasks := newTaskScheduler()

	var fired atomic.Int32
	tasks.After("a", 20*time.Millisecond, func() { fired.Add(1) })
	tasks.After("b", 20*time.Millisecond, func() { fired.Add(1) })
	tasks.Every("c", 5*time.Millisecond, func() { fired.Add(1) })

	tasks.CancelAll()

	time.Sleep(60 * time.Millisecond)
	assert.Zero(t, fired.Load())
}
