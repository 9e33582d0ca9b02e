package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Client wraps HTTP client for API operations
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// NewClient creates a new API client
func NewClient(server, token string) *Client {
	// Ensure server has protocol prefix
	if !strings.HasPrefix(server, "http://") && !strings.HasPrefix(server, "https://") {
		server = "http://" + server
	}

	return &Client{
		baseURL: strings.TrimSuffix(server, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// request makes an HTTP request to the API
func (c *Client) request(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 400 {
		var errResp struct {
			Error string `json:"error"`
		}
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error != "" {
			return fmt.Errorf("API error (%d): %s", resp.StatusCode, errResp.Error)
		}
		return fmt.Errorf("API error (%d): %s", resp.StatusCode, string(respBody))
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// Coordinate is a position in the world.
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
	Z int `json:"z"`
}

// AgentStatus is the agent's point-in-time state
type AgentStatus struct {
	Connected    bool       `json:"connected"`
	Activity     string     `json:"activity"`
	Position     Coordinate `json:"position"`
	TimeOfDay    string     `json:"time_of_day"`
	Participants []string   `json:"participants"`
	AreaMask     [9]bool    `json:"area_mask"`
}

// StatusResponse wraps the agent status
type StatusResponse struct {
	Status AgentStatus `json:"status"`
}

// LogEntry is a single activity log entry
type LogEntry struct {
	Timestamp string `json:"timestamp"`
	Message   string `json:"message"`
	Severity  string `json:"severity"`
}

// LogResponse wraps the activity log entries
type LogResponse struct {
	Entries []LogEntry `json:"entries"`
}

// Settings holds the agent's connection and patrol configuration
type Settings struct {
	ServerAddress string     `json:"server_address"`
	AgentName     string     `json:"agent_name"`
	Home          Coordinate `json:"home"`
}

// StartAgent requests an agent start
func (c *Client) StartAgent(ctx context.Context) (*AgentStatus, error) {
	var resp StatusResponse
	if err := c.request(ctx, http.MethodPost, "/api/v1/agent/start", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Status, nil
}

// StopAgent requests an agent stop
func (c *Client) StopAgent(ctx context.Context) (*AgentStatus, error) {
	var resp StatusResponse
	if err := c.request(ctx, http.MethodPost, "/api/v1/agent/stop", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Status, nil
}

// GetStatus retrieves the current agent status
func (c *Client) GetStatus(ctx context.Context) (*AgentStatus, error) {
	var resp StatusResponse
	if err := c.request(ctx, http.MethodGet, "/api/v1/agent/status", nil, &resp); err != nil {
		return nil, err
	}
	return &resp.Status, nil
}

// GetLog retrieves the activity log, oldest first
func (c *Client) GetLog(ctx context.Context) ([]LogEntry, error) {
	var resp LogResponse
	if err := c.request(ctx, http.MethodGet, "/api/v1/agent/log", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Entries, nil
}

// ClearLog empties the activity log
func (c *Client) ClearLog(ctx context.Context) error {
	return c.request(ctx, http.MethodDelete, "/api/v1/agent/log", nil, nil)
}

// GetSettings retrieves the persisted settings
func (c *Client) GetSettings(ctx context.Context) (*Settings, error) {
	var resp Settings
	if err := c.request(ctx, http.MethodGet, "/api/v1/settings", nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdateSettings persists new settings
func (c *Client) UpdateSettings(ctx context.Context, settings *Settings) (*Settings, error) {
	var resp Settings
	if err := c.request(ctx, http.MethodPut, "/api/v1/settings", settings, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}
