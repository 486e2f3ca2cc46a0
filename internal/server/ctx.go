package server

import (
	"context"
	"net/http"

	"github.com/woozymasta/geoarea/assets"
	"github.com/woozymasta/geoarea/internal/config"
	"github.com/woozymasta/geoarea/internal/metrics"
	"github.com/woozymasta/geoarea/internal/scene"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ServerContext holds dependencies for request handlers.
type ServerContext struct {
	log       zerolog.Logger
	Config    *config.Config
	Session   *Session
	Hub       *Hub
	IndexHTML []byte
	Favicon   []byte
}

// NewServerContext builds the shared session and wires its listeners:
// prometheus gauges first, then the websocket hub.
func NewServerContext(cfg *config.Config, bundle *assets.Bundle) *ServerContext {
	logger := log.With().Str("component", "server").Logger()

	session := NewSession(logger, scene.WithRadius(cfg.EarthRadius))
	hub := NewHub(logger)

	// Listeners run under the session lock and read the scene directly.
	session.Subscribe(metrics.SceneListener(session.scene.Len))
	session.Subscribe(hub.Listener())

	logger.Info().
		Float64("earth_radius", session.scene.Radius()).
		Str("export_name", cfg.ExportName).
		Msg("Server context initialized")

	srv := &ServerContext{
		log:     logger,
		Config:  cfg,
		Session: session,
		Hub:     hub,
	}
	if bundle != nil {
		srv.IndexHTML = bundle.Index
		srv.Favicon = bundle.Favicon
	}

	return srv
}

// Run consumes websocket inputs until ctx is done, then disconnects clients.
func (s *ServerContext) Run(ctx context.Context) {
	defer s.Hub.Close()
	s.Session.Run(ctx, s.Hub.Inputs(), s.Hub.ReportInput)
}

// Routes returns the HTTP handler serving the page, the REST API, the
// websocket stream and the metrics endpoint.
func (s *ServerContext) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/config", s.HandleConfig)
	mux.HandleFunc("GET /api/scene", s.HandleScene)
	mux.HandleFunc("DELETE /api/scene", s.HandleClear)
	mux.HandleFunc("POST /api/points", s.HandleAddPoint)
	mux.HandleFunc("PUT /api/points/{id}", s.HandleMovePoint)
	mux.HandleFunc("GET /api/export", s.HandleExport)
	mux.HandleFunc("POST /api/import", s.HandleImport)
	mux.HandleFunc("GET /ws", s.HandleWS)
	mux.Handle("GET /metrics", metrics.Handler())
	mux.HandleFunc("GET /favicon.svg", s.HandleFavicon)
	mux.HandleFunc("GET /", s.HandleIndex)

	return RequestLogger(mux)
}
