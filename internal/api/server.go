// Package api serves one world over HTTP.
// GET endpoints are public (read-only observation).
// POST endpoints require a bearer token (the divine control plane).
package api

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/talgya/demiurge/internal/engine"
	"github.com/talgya/demiurge/internal/sim"
	"github.com/talgya/demiurge/internal/society"
)

// Server exposes a running simulation.
type Server struct {
	Sim      *sim.Simulation
	Runner   *sim.Runner
	Port     int
	AdminKey string // Bearer token for POST endpoints. Empty = POST disabled.

	started time.Time
}

// Start begins serving the HTTP API in a goroutine.
func (s *Server) Start() {
	s.started = time.Now()

	limiter := NewRateLimiter(60, time.Minute)

	mux := http.NewServeMux()

	// Public observation endpoints.
	mux.HandleFunc("/api/v1/status", s.handleStatus)
	mux.HandleFunc("/api/v1/citizens", s.handleCitizens)
	mux.HandleFunc("/api/v1/citizen/", s.handleCitizen)
	mux.HandleFunc("/api/v1/movements", s.handleMovements)
	mux.HandleFunc("/api/v1/trends", s.handleTrends)
	mux.HandleFunc("/api/v1/events", s.handleEvents)

	// Divine control plane.
	mux.HandleFunc("/api/v1/whisper", s.adminOnly(RateLimitMiddleware(limiter, s.handleWhisper)))
	mux.HandleFunc("/api/v1/manifest", s.adminOnly(RateLimitMiddleware(limiter, s.handleManifest)))
	mux.HandleFunc("/api/v1/event", s.adminOnly(s.handleEvent))
	mux.HandleFunc("/api/v1/speed", s.adminOnly(s.handleSpeed))

	addr := fmt.Sprintf(":%d", s.Port)
	go func() {
		slog.Info("api server listening", "addr", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			slog.Error("api server failed", "error", err)
		}
	}()
}

// checkBearerToken returns true if the request has a valid admin bearer token.
func (s *Server) checkBearerToken(r *http.Request) bool {
	auth := r.Header.Get("Authorization")
	return strings.HasPrefix(auth, "Bearer ") && strings.TrimPrefix(auth, "Bearer ") == s.AdminKey
}

// adminOnly wraps a handler to require bearer token auth on POST requests.
func (s *Server) adminOnly(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			if s.AdminKey == "" {
				http.Error(w, "divine endpoints disabled (no admin key set)", http.StatusForbidden)
				return
			}
			if !s.checkBearerToken(r) {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
		}
		next(w, r)
	}
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	stats := s.Sim.Snapshot()

	speed := 0.0
	if s.Runner != nil {
		speed = s.Runner.Speed
	}

	writeJSON(w, map[string]any{
		"name":         s.Sim.World.Name,
		"world_id":     s.Sim.World.ID,
		"tick":         stats.Tick,
		"tick_display": humanize.Comma(int64(stats.Tick)),
		"uptime":       humanize.Time(s.started),
		"speed":        speed,
		"population":   stats.Population,
		"believers":    stats.Believers,
		"skeptics":     stats.Skeptics,
		"avg_mood":     stats.AvgMood,
		"avg_stress":   stats.AvgStress,
		"avg_hope":     stats.AvgHope,
		"cohesion":     stats.Cohesion,
		"instability":  stats.Instability,
		"trend":        s.Sim.World.InstabilityTrend,
		"movements":    stats.Movements,
	})
}

func (s *Server) handleCitizens(w http.ResponseWriter, r *http.Request) {
	type summary struct {
		ID          uuid.UUID `json:"id"`
		Name        string    `json:"name"`
		Archetype   string    `json:"archetype"`
		Mood        float64   `json:"mood"`
		Stress      float64   `json:"stress"`
		TrustDivine float64   `json:"trust_divine"`
	}

	var out []summary
	for _, c := range s.Sim.Citizens {
		out = append(out, summary{
			ID:          c.ID,
			Name:        c.Name,
			Archetype:   string(c.Attributes.Archetype),
			Mood:        c.State.Mood,
			Stress:      c.State.Stress,
			TrustDivine: c.State.TrustDivine,
		})
	}
	writeJSON(w, out)
}

func (s *Server) handleCitizen(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/api/v1/citizen/")
	id, err := uuid.Parse(idStr)
	if err != nil {
		http.Error(w, "invalid citizen id", http.StatusBadRequest)
		return
	}
	c, err := s.Sim.CitizenByID(id)
	if err != nil {
		http.Error(w, "citizen not found", http.StatusNotFound)
		return
	}
	writeJSON(w, c)
}

func (s *Server) handleMovements(w http.ResponseWriter, r *http.Request) {
	if s.Sim.Movements == nil {
		writeJSON(w, []any{})
		return
	}
	writeJSON(w, s.Sim.Movements)
}

func (s *Server) handleTrends(w http.ResponseWriter, r *http.Request) {
	if s.Sim.Trends == nil {
		writeJSON(w, []any{})
		return
	}
	writeJSON(w, s.Sim.Trends)
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events := s.Sim.Events
	if len(events) > 50 {
		events = events[len(events)-50:]
	}
	writeJSON(w, events)
}

func (s *Server) handleWhisper(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		CitizenID uuid.UUID `json:"citizen_id"`
		Content   string    `json:"content"`
		Tone      string    `json:"tone"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	res, err := s.Sim.Whisper(r.Context(), engine.WhisperInput{
		TargetCitizenID: req.CitizenID,
		Content:         req.Content,
		Tone:            society.WhisperTone(req.Tone),
	})
	if err != nil {
		status := http.StatusInternalServerError
		if strings.Contains(err.Error(), "not found") {
			status = http.StatusNotFound
		}
		http.Error(w, err.Error(), status)
		return
	}
	if res.Blocked {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	writeJSON(w, res)
}

func (s *Server) handleManifest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Kind      string `json:"kind"`
		Content   string `json:"content"`
		Intensity string `json:"intensity"`
		Audience  string `json:"audience"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Audience == "" {
		req.Audience = string(society.AudienceAll)
	}

	res, err := s.Sim.Manifest(r.Context(), engine.ManifestInput{
		Kind:      req.Kind,
		Content:   req.Content,
		Intensity: society.ManifestIntensity(req.Intensity),
		Audience:  society.TargetAudience(req.Audience),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if res.Blocked {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	writeJSON(w, res)
}

func (s *Server) handleEvent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		Type   string `json:"type"`
		Divine bool   `json:"divine"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	valid := false
	for _, t := range society.EventTypes {
		if t == society.EventType(req.Type) {
			valid = true
			break
		}
	}
	if !valid {
		http.Error(w, "unknown event type", http.StatusBadRequest)
		return
	}

	res := s.Sim.InjectEvent(society.EventType(req.Type), req.Divine)
	writeJSON(w, res.Event)
}

func (s *Server) handleSpeed(w http.ResponseWriter, r *http.Request) {
	if s.Runner == nil {
		http.Error(w, "no runner attached", http.StatusConflict)
		return
	}

	if r.Method == http.MethodPost {
		var req struct {
			Speed float64 `json:"speed"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		if req.Speed < 0 || req.Speed > 100 {
			http.Error(w, "speed out of range", http.StatusBadRequest)
			return
		}
		s.Runner.Speed = req.Speed
		slog.Info("speed changed", "speed", req.Speed)
	}

	writeJSON(w, map[string]float64{"speed": s.Runner.Speed})
}

func writeJSON(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(data)
}
