package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/warden/warden/internal/world"
)

// PlaceholderAddress is the connect target shipped with a fresh install.
// The controller refuses to start against it so a doomed connection
// attempt is never made.
const PlaceholderAddress = "your.server.address"

// Settings holds the agent's connection identity and patrol center.
// Instances are replaced wholesale on update, never mutated in place.
type Settings struct {
	// ServerAddress is the world server connect target ("host:port").
	ServerAddress string `json:"server_address"`
	// AgentName is the name the agent joins the world under.
	AgentName string `json:"agent_name"`
	// Home is the center of the permitted 3x3 patrol area.
	Home world.Coordinate `json:"home"`
}

// DefaultSettings returns the settings of a fresh install.
func DefaultSettings() Settings {
	return Settings{
		ServerAddress: PlaceholderAddress,
		AgentName:     "warden",
		Home:          world.Coordinate{},
	}
}

// SettingsRepo persists the single settings row.
type SettingsRepo struct {
	store *Store
}

// NewSettingsRepo creates a settings repository on the given store.
func NewSettingsRepo(store *Store) *SettingsRepo {
	return &SettingsRepo{store: store}
}

// Get returns the persisted settings, or DefaultSettings when none have
// been saved yet.
func (r *SettingsRepo) Get(ctx context.Context) (Settings, error) {
	const query = `
SELECT server_address, agent_name, home_x, home_y, home_z
FROM settings WHERE id = 1`

	var s Settings
	err := r.store.db.QueryRowContext(ctx, query).Scan(
		&s.ServerAddress, &s.AgentName, &s.Home.X, &s.Home.Y, &s.Home.Z,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return DefaultSettings(), nil
	}
	if err != nil {
		return Settings{}, fmt.Errorf("failed to load settings: %w", err)
	}
	return s, nil
}

// Set replaces the persisted settings.
func (r *SettingsRepo) Set(ctx context.Context, s Settings) error {
	const query = `
INSERT INTO settings (id, server_address, agent_name, home_x, home_y, home_z, updated_at)
VALUES (1, ?, ?, ?, ?, ?, ?)
ON CONFLICT (id) DO UPDATE SET
	server_address = excluded.server_address,
	agent_name     = excluded.agent_name,
	home_x         = excluded.home_x,
	home_y         = excluded.home_y,
	home_z         = excluded.home_z,
	updated_at     = excluded.updated_at`

	_, err := r.store.db.ExecContext(ctx, query,
		s.ServerAddress, s.AgentName, s.Home.X, s.Home.Y, s.Home.Z,
		time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}
