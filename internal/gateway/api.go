// ABOUTME: REST control plane: health, session start, mode change, history.
// ABOUTME: Unknown session ids surface as 404; blank bodies as 400.

package gateway

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/parleyhq/parley/internal/mode"
	"github.com/parleyhq/parley/internal/session"
)

// StartSessionRequest is the JSON request body for POST /api/session/start.
type StartSessionRequest struct {
	Mode   string      `json:"mode"`
	Config mode.Config `json:"config"`
}

// StartSessionResponse is the JSON response for POST /api/session/start.
type StartSessionResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"sessionId"`
	Mode      mode.Mode `json:"mode"`
	Message   string    `json:"message"`
}

// ChangeModeRequest is the JSON request body for POST /api/session/{id}/mode.
type ChangeModeRequest struct {
	Mode   string      `json:"mode"`
	Config mode.Config `json:"config"`
}

// ChangeModeResponse is the JSON response for POST /api/session/{id}/mode.
type ChangeModeResponse struct {
	Success   bool      `json:"success"`
	SessionID string    `json:"sessionId"`
	Mode      mode.Mode `json:"mode"`
	Message   string    `json:"message"`
}

// HistoryResponse is the JSON response for GET /api/session/{id}/history.
type HistoryResponse struct {
	Success bool           `json:"success"`
	History []session.Turn `json:"history"`
	Mode    mode.Mode      `json:"mode"`
}

// HealthResponse is the JSON response for GET /health.
type HealthResponse struct {
	Status    string          `json:"status"`
	Timestamp string          `json:"timestamp"`
	Services  map[string]bool `json:"services"`
}

// handleHealth handles GET /health. It reports liveness and whether the
// LLM collaborator is configured.
func (g *Gateway) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().Format(time.RFC3339),
		Services:  map[string]bool{"groq": g.llm.Configured()},
	})
}

// handleStartSession handles POST /api/session/start.
func (g *Gateway) handleStartSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req StartSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	m := mode.Normalize(req.Mode)
	sessionID := g.store.Create(m, req.Config)

	writeJSON(w, http.StatusOK, StartSessionResponse{
		Success:   true,
		SessionID: sessionID,
		Mode:      m,
		Message:   "Session created successfully",
	})
}

// handleSessionSubresource routes /api/session/{id}/mode and
// /api/session/{id}/history.
func (g *Gateway) handleSessionSubresource(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/session/")
	sessionID, sub, ok := strings.Cut(rest, "/")
	if !ok || sessionID == "" {
		http.NotFound(w, r)
		return
	}

	switch sub {
	case "mode":
		g.handleChangeMode(w, r, sessionID)
	case "history":
		g.handleHistory(w, r, sessionID)
	default:
		http.NotFound(w, r)
	}
}

// handleChangeMode handles POST /api/session/{id}/mode.
func (g *Gateway) handleChangeMode(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	var req ChangeModeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		g.sendJSONError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if _, ok := g.store.Get(sessionID); !ok {
		g.sendJSONError(w, http.StatusNotFound, "Session not found")
		return
	}

	m := mode.Normalize(req.Mode)
	g.store.ChangeMode(sessionID, m, req.Config)

	writeJSON(w, http.StatusOK, ChangeModeResponse{
		Success:   true,
		SessionID: sessionID,
		Mode:      m,
		Message:   "Mode changed to " + string(m),
	})
}

// handleHistory handles GET /api/session/{id}/history.
func (g *Gateway) handleHistory(w http.ResponseWriter, r *http.Request, sessionID string) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	sess, ok := g.store.Get(sessionID)
	if !ok {
		g.sendJSONError(w, http.StatusNotFound, "Session not found")
		return
	}

	writeJSON(w, http.StatusOK, HistoryResponse{
		Success: true,
		History: sess.History,
		Mode:    sess.Mode,
	})
}

// sendJSONError writes a JSON error response with the given status code.
func (g *Gateway) sendJSONError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"success": false, "error": message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
