package health

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubPinger struct {
	err error
}

func (s stubPinger) Ping(ctx context.Context) error {
	return s.err
}

type stubHub struct {
	connections int
}

func (s stubHub) ConnectionCount() int {
	return s.connections
}

func TestStoreCheck(t *testing.T) {
	check := NewStoreCheck(stubPinger{})
	assert.Equal(t, "database", check.Name())
	assert.NoError(t, check.Check(context.Background()))

	check = NewStoreCheck(stubPinger{err: errors.New("database is locked")})
	err := check.Check(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database ping failed")
}

func TestFeedCheckHealthy(t *testing.T) {
	check := NewFeedCheck(stubHub{connections: 3})

	result := check.CheckDetailed(context.Background())

	assert.Equal(t, StatusHealthy, result.Status)
	assert.Equal(t, "3", result.Details["connections"])
}

func TestFeedCheckDegradedAboveThreshold(t *testing.T) {
	check := NewFeedCheck(stubHub{connections: 11}, WithMaxConnectionsThreshold(10))

	result := check.CheckDetailed(context.Background())

	assert.Equal(t, StatusDegraded, result.Status)
	assert.Contains(t, result.Message, "high connection count")
}

func TestRunAllMixesDetailedAndPlainChecks(t *testing.T) {
	results := RunAll(context.Background(),
		NewStoreCheck(stubPinger{}),
		NewFeedCheck(stubHub{}),
	)

	require.Len(t, results, 2)
	assert.Equal(t, "database", results[0].Name)
	assert.Equal(t, "dashboard_feed", results[1].Name)
	assert.True(t, Healthy(results))
}

func TestHealthyFailsOnUnhealthyResult(t *testing.T) {
	results := RunAll(context.Background(),
		NewStoreCheck(stubPinger{err: errors.New("gone")}),
	)

	assert.Equal(t, StatusUnhealthy, results[0].Status)
	assert.False(t, Healthy(results))
}

func TestHealthyTreatsDegradedAsReady(t *testing.T) {
	results := []Result{{Name: "dashboard_feed", Status: StatusDegraded}}

	assert.True(t, Healthy(results))
}
