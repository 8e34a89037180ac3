// Package httpapi exposes the game controls as small JSON endpoints.
package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/xtding233/suika-backend/internal/game"
	"github.com/xtding233/suika-backend/internal/tuning"
)

// Controller is the part of runner.Runner the handlers drive.
type Controller interface {
	SelectMode(ctx context.Context, m game.Mode) error
	Restart(ctx context.Context) error
	ReturnToMenu(ctx context.Context) error
	Aim(ctx context.Context, x float64) error
	Drop(ctx context.Context) (bool, error)
	View(ctx context.Context) (game.View, error)
}

// ReloadFunc re-resolves tuning for a profile and stages it.
type ReloadFunc func(ctx context.Context, profile string) (tuning.Params, error)

type Server struct {
	ctl    Controller
	reload ReloadFunc
	log    *log.Logger
}

func New(ctl Controller, reload ReloadFunc, logger *log.Logger) *Server {
	return &Server{ctl: ctl, reload: reload, log: logger}
}

type actionResp struct {
	OK      bool       `json:"ok"`
	Dropped bool       `json:"dropped,omitempty"`
	View    *game.View `json:"view,omitempty"`
	Err     string     `json:"err,omitempty"`
}

type tuningResp struct {
	Version string `json:"version"`
	Profile string `json:"profile"`
	Err     string `json:"err,omitempty"`
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /view", s.handleView)
	mux.HandleFunc("GET /ranks", s.handleRanks)
	mux.HandleFunc("POST /mode", s.handleMode)
	mux.HandleFunc("POST /restart", s.handleRestart)
	mux.HandleFunc("POST /menu", s.handleMenu)
	mux.HandleFunc("POST /aim", s.handleAim)
	mux.HandleFunc("POST /drop", s.handleDrop)
	mux.HandleFunc("POST /tuning/reload", s.handleReload)
	return mux
}

func parseFloat(r *http.Request, key string) (float64, bool, string) {
	s := r.URL.Query().Get(key)
	if s == "" {
		return 0, false, ""
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false, "invalid " + key
	}
	return v, true, ""
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, game.ErrUnknownMode):
		return http.StatusBadRequest
	case errors.Is(err, game.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	}
	return http.StatusServiceUnavailable
}

func requestCtx(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), 2*time.Second)
}

// respond finishes an action with the resulting view.
func (s *Server) respond(w http.ResponseWriter, r *http.Request, err error, dropped bool) {
	if err != nil {
		writeJSON(w, statusFor(err), actionResp{Err: err.Error()})
		return
	}
	ctx, cancel := requestCtx(r)
	defer cancel()
	v, verr := s.ctl.View(ctx)
	if verr != nil {
		writeJSON(w, statusFor(verr), actionResp{Err: verr.Error()})
		return
	}
	writeJSON(w, http.StatusOK, actionResp{OK: true, Dropped: dropped, View: &v})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	v, err := s.ctl.View(ctx)
	if err != nil {
		writeJSON(w, statusFor(err), actionResp{Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleRanks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, game.RankTable())
}

func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("mode")
	if name == "" {
		http.Error(w, "missing param mode", http.StatusBadRequest)
		return
	}
	m, err := game.ParseMode(name)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, actionResp{Err: err.Error()})
		return
	}
	ctx, cancel := requestCtx(r)
	defer cancel()
	s.respond(w, r, s.ctl.SelectMode(ctx, m), false)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	s.respond(w, r, s.ctl.Restart(ctx), false)
}

func (s *Server) handleMenu(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	s.respond(w, r, s.ctl.ReturnToMenu(ctx), false)
}

func (s *Server) handleAim(w http.ResponseWriter, r *http.Request) {
	x, ok, msg := parseFloat(r, "x")
	if msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	}
	if !ok {
		http.Error(w, "missing param x", http.StatusBadRequest)
		return
	}
	ctx, cancel := requestCtx(r)
	defer cancel()
	s.respond(w, r, s.ctl.Aim(ctx, x), false)
}

func (s *Server) handleDrop(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := requestCtx(r)
	defer cancel()
	if x, ok, msg := parseFloat(r, "x"); msg != "" {
		http.Error(w, msg, http.StatusBadRequest)
		return
	} else if ok {
		if err := s.ctl.Aim(ctx, x); err != nil {
			s.respond(w, r, err, false)
			return
		}
	}
	dropped, err := s.ctl.Drop(ctx)
	s.respond(w, r, err, dropped)
}

func (s *Server) handleReload(w http.ResponseWriter, r *http.Request) {
	if s.reload == nil {
		http.Error(w, "tuning reload not configured", http.StatusNotFound)
		return
	}
	profile := r.URL.Query().Get("profile")
	ctx, cancel := requestCtx(r)
	defer cancel()
	p, err := s.reload(ctx, profile)
	if err != nil {
		if s.log != nil {
			s.log.Printf("tuning reload %q: %v", profile, err)
		}
		writeJSON(w, http.StatusBadRequest, tuningResp{Profile: profile, Err: err.Error()})
		return
	}
	writeJSON(w, http.StatusOK, tuningResp{Version: p.Version, Profile: profile})
}
