package stream

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/cwbudde/algo-neurofeedback/engine"
	"github.com/pion/logging"
)

// Controller is the part of the engine loop the API drives.
type Controller interface {
	Latest() *engine.Snapshot
	SetEngaged(engaged bool)
	Engaged() bool
	SetRunning(ctx context.Context, running bool) error
	State() engine.State
	SessionID() string
	Now() float64
}

// Counter reports a number of connected clients.
type Counter interface {
	PeerCount() int
}

// API serves the session's JSON control and telemetry endpoints.
type API struct {
	ctx   context.Context
	loop  Controller
	peers Counter
	log   logging.LeveledLogger
	mux   *http.ServeMux
}

// NewAPI builds the mux. Sessions started through the API live until ctx
// ends. peers and offer may be nil.
func NewAPI(ctx context.Context, loop Controller, peers Counter, offer http.Handler, log logging.LeveledLogger) *API {
	a := &API{ctx: ctx, loop: loop, peers: peers, log: log, mux: http.NewServeMux()}

	a.mux.HandleFunc("/api/metrics", a.handleMetrics)
	a.mux.HandleFunc("/api/engaged", a.handleEngaged)
	a.mux.HandleFunc("/api/session", a.handleSession)
	a.mux.HandleFunc("/api/status", a.handleStatus)
	if offer != nil {
		a.mux.Handle("/offer", offer)
	}
	return a
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func (a *API) handleMetrics(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "GET required", http.StatusMethodNotAllowed)
		return
	}
	s := a.loop.Latest()
	if s == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	writeJSON(w, s)
}

func (a *API) handleEngaged(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Engaged *bool `json:"engaged"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Engaged == nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	a.loop.SetEngaged(*req.Engaged)
	writeJSON(w, map[string]any{"ok": true, "engaged": *req.Engaged})
}

func (a *API) handleSession(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST required", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Running *bool `json:"running"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Running == nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if err := a.loop.SetRunning(a.ctx, *req.Running); err != nil {
		a.log.Errorf("session change: %v", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, map[string]any{
		"ok":        true,
		"state":     a.loop.State().String(),
		"sessionId": a.loop.SessionID(),
	})
}

func (a *API) handleStatus(w http.ResponseWriter, r *http.Request) {
	peers := 0
	if a.peers != nil {
		peers = a.peers.PeerCount()
	}
	writeJSON(w, map[string]any{
		"state":     a.loop.State().String(),
		"sessionId": a.loop.SessionID(),
		"simTime":   a.loop.Now(),
		"engaged":   a.loop.Engaged(),
		"peers":     peers,
	})
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	_ = json.NewEncoder(w).Encode(v)
}
