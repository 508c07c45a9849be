package server

import (
	"bytes"
	"errors"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"go.uber.org/zap"

	"netinv.sh/internal/console"
	"netinv.sh/internal/dashboard"
	"netinv.sh/internal/ferrors"
	"netinv.sh/internal/middleware"
	"netinv.sh/internal/version"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// handleDashboard renders the dashboard page for one request
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	page := console.NewPage(s.config.Title)
	d := dashboard.New(s.src, page, dashboard.WithOptions(s.config.Dashboard))
	defer d.Close()

	status := http.StatusOK
	if err := d.Render(r.Context(), page); err != nil {
		status = statusFor(err)
		s.logger.Warn("Dashboard render failed",
			zap.Error(err),
			zap.String("request_id", middleware.GetRequestID(r.Context())),
		)
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		s.logger.Error("Failed to render page", zap.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if r.Method != http.MethodHead {
		w.Write(buf.Bytes())
	}
}

// handleSnapshot serves GET /api/dashboard
func (s *Server) handleSnapshot(w http.ResponseWriter, r *http.Request) {
	d := dashboard.New(s.src, nil, dashboard.WithOptions(s.config.Dashboard))
	snap, err := d.Load(r.Context())
	if err != nil {
		writeJSON(w, statusFor(err), map[string]string{
			"error": (&dashboard.LoadError{Err: err}).Error(),
		})
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

// handleHealth reports liveness only; it never calls the inventory API
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   version.Version,
		"timestamp": time.Now().Unix(),
	})
}

func statusFor(err error) int {
	switch {
	case ferrors.Is(err, ferrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, dashboard.ErrStale):
		return http.StatusConflict
	default:
		return http.StatusBadGateway
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("Failed to encode response", zap.Error(err))
	}
}
