// Package api serves the analysis pipeline over HTTP.
//
// # Routes
//
//	POST /v1/analyze         analyze one network sent inline, return its record
//	GET  /v1/records/{name}  fetch a stored record
//	GET  /healthz            liveness and build information
//	GET  /metrics            Prometheus metrics, when a handler is configured
//
// Requests to /v1/analyze carry the generator text and the statistics log
// in the body:
//
//	{
//	  "name": "karate",
//	  "generators": "(1,2)\n(3,4)",
//	  "format": "cycles",
//	  "stats": "vertices = 34\nedges = 78",
//	  "alphabet": 2,
//	  "verify": false
//	}
//
// Limits (node limit, term bits, timeout) come from the server's options
// and cannot be raised by a request.
package api

import (
	"encoding/json"
	"net/http"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/symlump/pkg/buildinfo"
	"github.com/matzehuels/symlump/pkg/pipeline"
)

// MaxBodyBytes bounds the size of an analyze request.
const MaxBodyBytes = 8 << 20

// Server handles API requests with a shared Runner. Mount Handler on an
// http.Server.
type Server struct {
	runner  *pipeline.Runner
	opts    pipeline.Options
	metrics http.Handler
	logger  *log.Logger
}

// NewServer creates a server. opts supplies the limits applied to every
// request; metrics may be nil to disable /metrics.
func NewServer(runner *pipeline.Runner, opts pipeline.Options, metrics http.Handler, logger *log.Logger) (*Server, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Server{runner: runner, opts: opts, metrics: metrics, logger: logger}, nil
}

// Handler returns the routed handler with middleware applied.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.healthz)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	r.Route("/v1", func(r chi.Router) {
		r.Post("/analyze", s.analyze)
		r.Get("/records/{name}", s.getRecord)
	})
	return r
}

type healthResponse struct {
	Status string         `json:"status"`
	Build  buildinfo.Info `json:"build"`
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	respondJSON(w, http.StatusOK, healthResponse{Status: "ok", Build: buildinfo.Get()})
}

func respondJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func respondRaw(w http.ResponseWriter, status int, data []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
