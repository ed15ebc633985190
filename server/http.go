package server

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// HTTPErrorResponse represents an error response
type HTTPErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// setupRoutes configures the data plane, dashboard and control plane on
// one mux.
func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("/ws", s.handleWS)
	mux.HandleFunc("/dashboard", s.handleDashboard)

	mux.HandleFunc("/api/models", s.handleModels)
	mux.HandleFunc("/api/models/", s.handleModelToggle)
	mux.HandleFunc("/api/cameras", s.handleCameras)
	mux.HandleFunc("/api/cameras/", s.handleCameraLatest)
	mux.HandleFunc("/api/stats", s.handleStats)

	mux.HandleFunc("/healthz", s.handleHealth)
	mux.Handle("/metrics", promhttp.Handler())

	return mux
}

// handleModels handles GET /api/models
func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"models": s.registry.Toggles().Snapshot(),
	})
}

// handleModelToggle handles POST /api/models/{name}/toggle
func (s *Server) handleModelToggle(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		s.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only POST method is allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/models/")
	name, action, ok := strings.Cut(path, "/")
	if !ok || action != "toggle" || name == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_PATH", "Path must be /api/models/{name}/toggle")
		return
	}

	enabled, ok := s.registry.Toggles().Flip(name)
	if !ok {
		s.writeError(w, http.StatusNotFound, "MODEL_NOT_FOUND", "Unknown model: "+name)
		return
	}

	s.logger.Infof("Model %s toggled to enabled=%v", name, enabled)
	s.writeJSON(w, http.StatusOK, map[string]any{
		"model":   name,
		"enabled": enabled,
	})
}

// handleCameras handles GET /api/cameras
func (s *Server) handleCameras(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"cameras": s.collector.Snapshot().Cameras,
	})
}

// handleCameraLatest handles GET /api/cameras/{id}/latest
func (s *Server) handleCameraLatest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/api/cameras/")
	cameraID, action, ok := strings.Cut(path, "/")
	if !ok || action != "latest" || cameraID == "" {
		s.writeError(w, http.StatusBadRequest, "INVALID_PATH", "Path must be /api/cameras/{id}/latest")
		return
	}

	combined, ok := s.LatestCombined(cameraID)
	if !ok {
		s.writeError(w, http.StatusNotFound, "CAMERA_NOT_FOUND", "No results for camera: "+cameraID)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write(combined)
}

// handleStats handles GET /api/stats
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		s.writeError(w, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Only GET method is allowed")
		return
	}
	s.writeJSON(w, http.StatusOK, s.collector.Snapshot())
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Errorf("Failed to encode JSON response: %v", err)
	}
}

func (s *Server) writeError(w http.ResponseWriter, statusCode int, code, message string) {
	s.writeJSON(w, statusCode, HTTPErrorResponse{Error: message, Code: code})
}
