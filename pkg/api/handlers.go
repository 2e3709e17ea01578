package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/netio"
	"github.com/matzehuels/symlump/pkg/pipeline"
	"github.com/matzehuels/symlump/pkg/record"
)

// AnalyzeRequest is the body of POST /v1/analyze.
type AnalyzeRequest struct {
	Name       string       `json:"name"` // defaults to a generated ID
	Generators string       `json:"generators"`
	Format     netio.Format `json:"format"`
	Stats      string       `json:"stats"`
	Alphabet   int          `json:"alphabet"`
	Verify     bool         `json:"verify"`
	Refresh    bool         `json:"refresh"`
}

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) analyze(w http.ResponseWriter, r *http.Request) {
	var req AnalyzeRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "decode request"))
		return
	}
	if req.Stats == "" {
		s.respondError(w, r, errors.New(errors.ErrCodeInvalidInput, "stats are required"))
		return
	}
	if req.Name == "" {
		req.Name = "req-" + uuid.NewString()
	}

	opts := s.opts
	if req.Alphabet != 0 {
		opts.Alphabet = req.Alphabet
	}
	opts.Verify = opts.Verify || req.Verify
	opts.Refresh = req.Refresh
	opts.RunID = middleware.GetReqID(r.Context())

	rec, err := s.runner.Analyze(r.Context(), pipeline.Source{
		Name:       req.Name,
		Generators: req.Generators,
		Format:     req.Format,
		Stats:      req.Stats,
	}, opts)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondRecord(w, r, rec)
}

func (s *Server) getRecord(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := errors.ValidateGraphName(name); err != nil {
		s.respondError(w, r, err)
		return
	}
	if s.runner.Store == nil {
		s.respondError(w, r, errors.New(errors.ErrCodeFileNotFound, "no record store configured"))
		return
	}
	rec, err := s.runner.Store.Get(r.Context(), name)
	if err != nil {
		s.respondError(w, r, err)
		return
	}
	s.respondRecord(w, r, rec)
}

func (s *Server) respondRecord(w http.ResponseWriter, r *http.Request, rec *record.Record) {
	data, err := record.Marshal(rec)
	if err != nil {
		s.respondError(w, r, errors.Wrap(errors.ErrCodeInternal, err, "encode record"))
		return
	}
	respondRaw(w, http.StatusOK, data)
}

func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "code", code, "error", err)
	}
	respondJSON(w, status, ErrorResponse{
		Code:      code,
		Message:   errors.UserMessage(err),
		RequestID: middleware.GetReqID(r.Context()),
	})
}

// statusFor maps an error code to an HTTP status.
func statusFor(code errors.Code) int {
	switch code {
	case errors.ErrCodeInvalidInput, errors.ErrCodeParse, errors.ErrCodeUnsupported, errors.ErrCodeInvalidPath:
		return http.StatusBadRequest
	case errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDegenerateInput, errors.ErrCodeGroupTooLarge, errors.ErrCodeConsistency:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeTimeout:
		return http.StatusGatewayTimeout
	case errors.ErrCodeOracleUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
