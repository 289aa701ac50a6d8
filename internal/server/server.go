// Package server exposes the HTTP API: transcript parsing, audio
// transcription, estimate persistence, and price-catalog management, plus the
// operational endpoints (health, readiness, metrics).
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kairosUNIVERSAL/vizi-kp/internal/catalog"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/estimate"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/health"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/observe"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/quote"
	"github.com/kairosUNIVERSAL/vizi-kp/internal/transcribe"
)

// maxAudioBytes caps transcription uploads. Measurement recordings are a few
// minutes of speech; 25 MiB is generous.
const maxAudioBytes = 25 << 20

// Config bundles the dependencies of a [Server]. Transcriber may be nil, in
// which case the transcription endpoint answers 503.
type Config struct {
	Parse       *quote.ParseService
	Estimates   *estimate.Service
	Catalog     catalog.Store
	Transcriber transcribe.Transcriber
	Health      *health.Handler
	Metrics     *observe.Metrics
	Log         *slog.Logger
}

// Server is the HTTP API server.
type Server struct {
	router      chi.Router
	parse       *quote.ParseService
	estimates   *estimate.Service
	catalog     catalog.Store
	transcriber transcribe.Transcriber
	metrics     *observe.Metrics
	log         *slog.Logger
}

// New builds the server and its route table.
func New(cfg Config) *Server {
	log := cfg.Log
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = observe.DefaultMetrics()
	}
	hh := cfg.Health
	if hh == nil {
		hh = health.New()
	}

	s := &Server{
		parse:       cfg.Parse,
		estimates:   cfg.Estimates,
		catalog:     cfg.Catalog,
		transcriber: cfg.Transcriber,
		metrics:     metrics,
		log:         log,
	}

	r := chi.NewRouter()
	r.Use(chimw.Recoverer)
	r.Use(observe.Middleware(metrics))

	r.Get("/healthz", hh.Healthz)
	r.Get("/readyz", hh.Readyz)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/parse", s.handleParse)
		r.Post("/transcribe", s.handleTranscribe)

		r.Route("/estimates", func(r chi.Router) {
			r.Post("/", s.handleCreateEstimate)
			r.Get("/", s.handleListEstimates)
			r.Get("/{id}", s.handleGetEstimate)
			r.Patch("/{id}/status", s.handleUpdateEstimateStatus)
		})

		r.Route("/price-items", func(r chi.Router) {
			r.Get("/", s.handleListPriceItems)
			r.Post("/", s.handleCreatePriceItem)
			r.Put("/{id}", s.handleUpdatePriceItem)
			r.Delete("/{id}", s.handleDeactivatePriceItem)
		})
	})

	s.router = r
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler {
	return s.router
}
