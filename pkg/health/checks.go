package health

import (
	"context"
	"fmt"
)

// Pinger is the slice of the settings store the database check needs.
type Pinger interface {
	Ping(ctx context.Context) error
}

// StoreCheck checks that the settings database answers.
type StoreCheck struct {
	store Pinger
}

// NewStoreCheck creates a database health check.
func NewStoreCheck(store Pinger) *StoreCheck {
	return &StoreCheck{store: store}
}

// Name returns the name of the health check.
func (c *StoreCheck) Name() string {
	return "database"
}

// Check performs the database health check.
func (c *StoreCheck) Check(ctx context.Context) error {
	if err := c.store.Ping(ctx); err != nil {
		return fmt.Errorf("database ping failed: %w", err)
	}
	return nil
}

// FeedHub is the slice of the WebSocket hub the feed check needs.
type FeedHub interface {
	// ConnectionCount returns the number of active connections.
	ConnectionCount() int
}

// FeedCheck checks the dashboard feed hub.
type FeedCheck struct {
	hub                     FeedHub
	maxConnectionsThreshold int
}

// FeedCheckOption configures a FeedCheck.
type FeedCheckOption func(*FeedCheck)

// WithMaxConnectionsThreshold sets the threshold above which the check
// reports degraded status.
func WithMaxConnectionsThreshold(threshold int) FeedCheckOption {
	return func(c *FeedCheck) {
		c.maxConnectionsThreshold = threshold
	}
}

// NewFeedCheck creates a dashboard feed health check.
func NewFeedCheck(hub FeedHub, opts ...FeedCheckOption) *FeedCheck {
	c := &FeedCheck{
		hub:                     hub,
		maxConnectionsThreshold: 1000,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name returns the name of the health check.
func (c *FeedCheck) Name() string {
	return "dashboard_feed"
}

// Check performs the feed health check.
func (c *FeedCheck) Check(ctx context.Context) error {
	return nil
}

// CheckDetailed performs a detailed health check and returns a Result.
func (c *FeedCheck) CheckDetailed(ctx context.Context) Result {
	connCount := c.hub.ConnectionCount()

	details := map[string]string{
		"connections": fmt.Sprintf("%d", connCount),
	}

	if c.maxConnectionsThreshold > 0 && connCount > c.maxConnectionsThreshold {
		return Result{
			Name:    c.Name(),
			Status:  StatusDegraded,
			Message: fmt.Sprintf("high connection count: %d", connCount),
			Details: details,
		}
	}

	return Result{
		Name:    c.Name(),
		Status:  StatusHealthy,
		Details: details,
	}
}
