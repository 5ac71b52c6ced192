package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"abc-audio/internal/domain"
	"abc-audio/internal/logging"
	"abc-audio/internal/usecase"
)

// Server is a primary adapter that exposes HTTP API + UI.
// It depends on the use case (primary port). Every POST counts as a pointer press
// and is delivered as a gesture before the request itself.
type Server struct {
	usecase usecase.EngineUseCase
	server  *http.Server
}

// NewServer creates the HTTP server bound to addr.
func NewServer(uc usecase.EngineUseCase, addr string) *Server {
	srv := &Server{usecase: uc}
	srv.server = &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return srv
}

// Handler returns the routed handler, wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/status", s.handleStatus)
	mux.HandleFunc("/api/toggle/", s.gesture(s.handleToggle))
	mux.HandleFunc("/api/bgm/", s.gesture(s.handleBgm))
	mux.HandleFunc("/api/sfx/", s.gesture(s.handleSfx))
	mux.HandleFunc("/api/speak", s.gesture(s.handleSpeak))
	mux.HandleFunc("/api/gesture", s.handleGesture)
	mux.HandleFunc("/", s.handleRoot)
	return loggingMiddleware(mux)
}

// Start blocks and serves HTTP traffic.
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}

// gesture rejects non-POST requests and delivers a pointer gesture before next.
func (s *Server) gesture(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		if err := s.usecase.Gesture(domain.GesturePointer); err != nil {
			respondError(w, err)
			return
		}
		next(w, r)
	}
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "text/html")
	w.Write([]byte(indexHTML))
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	s.respondStatus(w)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var err error
	switch strings.TrimPrefix(r.URL.Path, "/api/toggle/") {
	case "music":
		_, err = s.usecase.ToggleMusic()
	case "sfx":
		_, err = s.usecase.ToggleSfx()
	case "voice":
		_, err = s.usecase.ToggleVoice()
	default:
		http.Error(w, "toggle music, sfx or voice", http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	s.respondStatus(w)
}

func (s *Server) handleBgm(w http.ResponseWriter, r *http.Request) {
	var err error
	switch strings.TrimPrefix(r.URL.Path, "/api/bgm/") {
	case "play":
		err = s.usecase.PlayBgm()
	case "pause":
		err = s.usecase.PauseBgm()
	default:
		http.Error(w, "bgm play or pause", http.StatusNotFound)
		return
	}
	if err != nil {
		respondError(w, err)
		return
	}
	s.respondStatus(w)
}

func (s *Server) handleSfx(w http.ResponseWriter, r *http.Request) {
	kind, err := domain.ParseSoundKind(strings.TrimPrefix(r.URL.Path, "/api/sfx/"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err := s.usecase.PlaySfx(kind); err != nil {
		respondError(w, err)
		return
	}
	s.respondStatus(w)
}

type speakPayload struct {
	Text string `json:"text"`
}

func (s *Server) handleSpeak(w http.ResponseWriter, r *http.Request) {
	var req speakPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		http.Error(w, "text is required", http.StatusBadRequest)
		return
	}
	if err := s.usecase.Speak(req.Text); err != nil {
		respondError(w, err)
		return
	}
	s.respondStatus(w)
}

type gesturePayload struct {
	Kind string `json:"kind"`
}

func (s *Server) handleGesture(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	req := gesturePayload{Kind: domain.GesturePointer.String()}
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid JSON", http.StatusBadRequest)
			return
		}
	}
	kind, err := domain.ParseGestureKind(req.Kind)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err := s.usecase.Gesture(kind); err != nil {
		respondError(w, err)
		return
	}
	s.respondStatus(w)
}

func (s *Server) respondStatus(w http.ResponseWriter) {
	snap, err := s.usecase.Snapshot()
	if err != nil {
		respondError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, snapshotToView(snap))
}

func snapshotToView(snap domain.Snapshot) map[string]any {
	view := map[string]any{
		"preferences": map[string]any{
			"music": snap.Preferences.MusicEnabled,
			"sfx":   snap.Preferences.SfxEnabled,
			"voice": snap.Preferences.VoiceEnabled,
		},
		"device":     snap.Device.String(),
		"unlock":     snap.Unlock.String(),
		"deviceTime": snap.DeviceTime,
		"melody": map[string]any{
			"armed":        snap.Cursor.Armed,
			"index":        snap.Cursor.Index,
			"nextNoteTime": snap.Cursor.NextNoteTime,
		},
	}
	if snap.Speaking != nil {
		view["speaking"] = map[string]any{
			"id":   snap.Speaking.ID,
			"text": snap.Speaking.Text,
		}
	}
	return view
}

func respondError(w http.ResponseWriter, err error) {
	if errors.Is(err, domain.ErrEngineStopped) {
		http.Error(w, err.Error(), http.StatusServiceUnavailable)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logging.Warnf("encode JSON: %v", err)
	}
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		logging.Debugf("%s %s %s", r.Method, r.URL.Path, time.Since(start))
	})
}
