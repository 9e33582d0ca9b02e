package server

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/warden/warden/internal/agent"
	"github.com/warden/warden/internal/eventlog"
	"github.com/warden/warden/internal/store"
	"github.com/warden/warden/internal/websocket"
)

// APIHandler implements the REST API over the agent controller.
type APIHandler struct {
	controller *agent.Controller
	settings   agent.SettingsProvider
	publisher  *websocket.Publisher
	logger     zerolog.Logger
}

// NewAPIHandler creates an APIHandler. publisher may be nil when the
// dashboard feed is disabled.
func NewAPIHandler(controller *agent.Controller, settings agent.SettingsProvider, publisher *websocket.Publisher, logger zerolog.Logger) *APIHandler {
	return &APIHandler{
		controller: controller,
		settings:   settings,
		publisher:  publisher,
		logger:     logger.With().Str("component", "api_handler").Logger(),
	}
}

// RegisterRoutes mounts all API routes on the given mux.
func (h *APIHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/agent/start", h.handleStart)
	mux.HandleFunc("POST /api/v1/agent/stop", h.handleStop)
	mux.HandleFunc("GET /api/v1/agent/status", h.handleStatus)
	mux.HandleFunc("GET /api/v1/agent/log", h.handleGetLog)
	mux.HandleFunc("DELETE /api/v1/agent/log", h.handleClearLog)
	mux.HandleFunc("GET /api/v1/settings", h.handleGetSettings)
	mux.HandleFunc("PUT /api/v1/settings", h.handlePutSettings)
}

// statusResponse wraps the agent snapshot for the status endpoint.
type statusResponse struct {
	Status agent.Snapshot `json:"status"`
}

// logResponse wraps the activity log entries.
type logResponse struct {
	Entries []eventlog.Entry `json:"entries"`
}

// errorResponse is the uniform error body.
type errorResponse struct {
	Error string `json:"error"`
}

// handleStart requests an agent start. The call is accepted even when
// the attempt is refused; refusals surface in the activity log and the
// status snapshot, mirroring how the dashboard consumes them.
func (h *APIHandler) handleStart(w http.ResponseWriter, r *http.Request) {
	h.controller.Start()
	writeJSON(w, http.StatusAccepted, statusResponse{Status: h.controller.Status()})
}

// handleStop requests an agent stop.
func (h *APIHandler) handleStop(w http.ResponseWriter, r *http.Request) {
	h.controller.Stop()
	writeJSON(w, http.StatusAccepted, statusResponse{Status: h.controller.Status()})
}

// handleStatus returns the current agent status snapshot.
func (h *APIHandler) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, statusResponse{Status: h.controller.Status()})
}

// handleGetLog returns the activity log, oldest first.
func (h *APIHandler) handleGetLog(w http.ResponseWriter, r *http.Request) {
	entries := h.controller.LogEntries()
	if entries == nil {
		entries = []eventlog.Entry{}
	}
	writeJSON(w, http.StatusOK, logResponse{Entries: entries})
}

// handleClearLog empties the activity log and the feed replay backlog.
func (h *APIHandler) handleClearLog(w http.ResponseWriter, r *http.Request) {
	h.controller.ClearLog()
	if h.publisher != nil {
		h.publisher.ClearBacklog()
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleGetSettings returns the persisted agent settings.
func (h *APIHandler) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	settings, err := h.settings.Get(r.Context())
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to load settings")
		writeError(w, http.StatusInternalServerError, "failed to load settings")
		return
	}
	writeJSON(w, http.StatusOK, settings)
}

// handlePutSettings validates and persists new settings. The placeholder
// connect target may be saved; starting with it is what gets refused.
func (h *APIHandler) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var settings store.Settings
	if err := json.NewDecoder(r.Body).Decode(&settings); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if settings.AgentName == "" {
		writeError(w, http.StatusBadRequest, "agent_name is required")
		return
	}
	if settings.ServerAddress == "" {
		writeError(w, http.StatusBadRequest, "server_address is required")
		return
	}

	h.controller.UpdateSettings(settings)
	writeJSON(w, http.StatusOK, settings)
}

// HandleHealth is the liveness endpoint.
func (h *APIHandler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}
