package websocket

import (
	"fmt"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden/warden/internal/agent"
	"github.com/warden/warden/internal/eventlog"
)

func testEntry(msg string) eventlog.Entry {
	return eventlog.Entry{Timestamp: "09:26:53", Message: msg, Severity: eventlog.SeverityInfo}
}

func TestPublisherReplayEmpty(t *testing.T) {
	p := NewPublisher(NewHub(zerolog.Nop()), 10, zerolog.Nop())

	assert.Empty(t, p.replay())
}

func TestPublisherReplayOrdering(t *testing.T) {
	p := NewPublisher(NewHub(zerolog.Nop()), 10, zerolog.Nop())

	p.PublishLog(testEntry("first"))
	p.PublishStatus(agent.Snapshot{Connected: true, Activity: agent.ActivityWandering})
	p.PublishLog(testEntry("second"))

	frames := p.replay()
	require.Len(t, frames, 3)

	// Status comes first regardless of publish order, then logs in order
	first, err := ParseMessage(frames[0])
	require.NoError(t, err)
	assert.Equal(t, MessageTypeStatusUpdate, first.Type)

	second, err := ParseMessage(frames[1])
	require.NoError(t, err)
	assert.Equal(t, MessageTypeLogEntry, second.Type)
	assert.Contains(t, string(second.Payload), "first")

	third, err := ParseMessage(frames[2])
	require.NoError(t, err)
	assert.Contains(t, string(third.Payload), "second")
}

func TestPublisherReplayReflectsLatestStatus(t *testing.T) {
	p := NewPublisher(NewHub(zerolog.Nop()), 10, zerolog.Nop())

	p.PublishStatus(agent.Snapshot{Connected: true})
	p.PublishStatus(agent.Snapshot{Connected: false, Activity: agent.ActivityIdle})

	frames := p.replay()
	require.Len(t, frames, 1)
	assert.Contains(t, string(frames[0]), `"connected":false`)
}

func TestPublisherBacklogTrimsToCapacity(t *testing.T) {
	p := NewPublisher(NewHub(zerolog.Nop()), 3, zerolog.Nop())

	for i := 0; i < 5; i++ {
		p.PublishLog(testEntry(fmt.Sprintf("entry %d", i)))
	}

	frames := p.replay()
	require.Len(t, frames, 3)
	assert.Contains(t, string(frames[0]), "entry 2")
	assert.Contains(t, string(frames[2]), "entry 4")
}

func TestPublisherClearBacklog(t *testing.T) {
	p := NewPublisher(NewHub(zerolog.Nop()), 10, zerolog.Nop())

	p.PublishStatus(agent.Snapshot{Connected: true})
	p.PublishLog(testEntry("stale"))
	p.ClearBacklog()

	frames := p.replay()
	require.Len(t, frames, 1, "status survives a log clear")
	assert.NotContains(t, string(frames[0]), "stale")
}

func TestPublisherDefaultBacklogCapacity(t *testing.T) {
	p := NewPublisher(NewHub(zerolog.Nop()), 0, zerolog.Nop())

	assert.Equal(t, eventlog.DefaultCapacity, p.backlogCap)
}
