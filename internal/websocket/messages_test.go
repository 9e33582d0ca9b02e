package websocket

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warden/warden/internal/agent"
)

func TestMessageRoundTrip(t *testing.T) {
	snap := agent.Snapshot{
		Connected: true,
		Activity:  agent.ActivityWandering,
	}

	msg, err := NewMessage(MessageTypeStatusUpdate, StatusUpdatePayload{Status: snap})
	require.NoError(t, err)
	assert.NotEmpty(t, msg.ID)
	assert.False(t, msg.Timestamp.IsZero())

	data, err := msg.Bytes()
	require.NoError(t, err)

	parsed, err := ParseMessage(data)
	require.NoError(t, err)
	assert.Equal(t, MessageTypeStatusUpdate, parsed.Type)
	assert.Equal(t, msg.ID, parsed.ID)
	assert.JSONEq(t, string(msg.Payload), string(parsed.Payload))
}

func TestNewMessageNilPayload(t *testing.T) {
	msg, err := NewMessage(MessageTypePong, nil)
	require.NoError(t, err)

	data, err := msg.Bytes()
	require.NoError(t, err)
	assert.NotContains(t, string(data), `"payload"`)
}

func TestParseMessageInvalid(t *testing.T) {
	_, err := ParseMessage([]byte("not json"))
	assert.Error(t, err)
}
