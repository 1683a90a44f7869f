// Package server exposes conversions over HTTP.
//
// Routes:
//
//	POST /v1/convert   body: .sketch archive; query: page, artboard, all, format, detailed, refresh
//	GET  /healthz      liveness
//	GET  /metrics      Prometheus metrics, when a metrics handler is configured
package server

import (
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/sketchtower/pkg/buildinfo"
	"github.com/matzehuels/sketchtower/pkg/config"
	"github.com/matzehuels/sketchtower/pkg/errors"
	"github.com/matzehuels/sketchtower/pkg/observability"
	"github.com/matzehuels/sketchtower/pkg/pipeline"
)

// DefaultMaxUpload bounds the request body of /v1/convert.
const DefaultMaxUpload = 64 << 20

// Server serves conversions through a shared pipeline runner.
type Server struct {
	runner    *pipeline.Runner
	config    *config.Config
	logger    *log.Logger
	hooks     observability.HTTPHooks
	metrics   http.Handler
	maxUpload int64
}

// Option configures a Server.
type Option func(*Server)

// WithConfig sets the conversion configuration used for every request.
func WithConfig(c *config.Config) Option {
	return func(s *Server) {
		if c != nil {
			s.config = c
		}
	}
}

// WithLogger sets the request logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithHooks sets the receiver of request events. The default is the
// globally registered HTTP hooks.
func WithHooks(h observability.HTTPHooks) Option {
	return func(s *Server) {
		if h != nil {
			s.hooks = h
		}
	}
}

// WithMetrics mounts h on GET /metrics.
func WithMetrics(h http.Handler) Option {
	return func(s *Server) { s.metrics = h }
}

// WithMaxUpload replaces DefaultMaxUpload.
func WithMaxUpload(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxUpload = n
		}
	}
}

// New returns a server converting with runner.
func New(runner *pipeline.Runner, opts ...Option) *Server {
	s := &Server{
		runner:    runner,
		config:    config.Default(),
		logger:    log.NewWithOptions(io.Discard, log.Options{}),
		hooks:     observability.HTTP(),
		maxUpload: DefaultMaxUpload,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Handler returns the routed handler.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.instrument)

	r.Get("/healthz", s.healthz)
	r.Post("/v1/convert", s.convert)
	if s.metrics != nil {
		r.Method(http.MethodGet, "/metrics", s.metrics)
	}
	return r
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		s.hooks.OnRequest(r.Context(), r.Method, r.URL.Path)
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rc := chi.RouteContext(r.Context()); rc != nil && rc.RoutePattern() != "" {
			route = rc.RoutePattern()
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		d := time.Since(start)
		s.hooks.OnResponse(r.Context(), r.Method, route, status, d)
		s.logger.Debug("request", "method", r.Method, "path", route, "status", status,
			"duration", d, "id", middleware.GetReqID(r.Context()))
	})
}

func (s *Server) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "version": buildinfo.Version})
}

type artboardResponse struct {
	Page     string          `json:"page"`
	Artboard string          `json:"artboard"`
	Objects  int             `json:"objects"`
	Cached   bool            `json:"cached"`
	Tree     json.RawMessage `json:"tree"`
}

func (s *Server) convert(w http.ResponseWriter, r *http.Request) {
	opts, err := s.options(r)
	if err != nil {
		s.fail(w, err)
		return
	}

	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxUpload))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if stderrors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "", fmt.Sprintf("upload exceeds %d bytes", tooLarge.Limit))
			return
		}
		s.fail(w, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(data) == 0 {
		s.fail(w, errors.New(errors.ErrCodeInvalidInput, "request body must be a .sketch archive"))
		return
	}

	doc, err := s.runner.LoadZip(r.Context(), "upload", data)
	if err != nil {
		s.fail(w, err)
		return
	}
	res, err := s.runner.Convert(r.Context(), doc, opts)
	if err != nil {
		s.fail(w, err)
		return
	}

	if !opts.All {
		a := res.Artboards[0]
		w.Header().Set("X-Sketchtower-Artboard", a.Artboard)
		w.Header().Set("X-Sketchtower-Cache", cacheStatus(a.TreeHit))
		w.Header().Set("Content-Type", contentType(res.Format))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(a.Output)
		return
	}

	out := make([]artboardResponse, len(res.Artboards))
	for i, a := range res.Artboards {
		out[i] = artboardResponse{Page: a.Page, Artboard: a.Artboard, Objects: a.Objects, Cached: a.TreeHit, Tree: a.Output}
	}
	writeJSON(w, http.StatusOK, map[string]any{"artboards": out})
}

func (s *Server) options(r *http.Request) (pipeline.Options, error) {
	q := r.URL.Query()
	opts := pipeline.Options{
		Page:     q.Get("page"),
		Artboard: q.Get("artboard"),
		Format:   q.Get("format"),
		Config:   s.config,
		Logger:   s.logger,
	}
	for name, dst := range map[string]*bool{"all": &opts.All, "detailed": &opts.Detailed, "refresh": &opts.Refresh} {
		v := q.Get(name)
		if v == "" {
			continue
		}
		b, err := strconv.ParseBool(v)
		if err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "query parameter %s must be a boolean", name)
		}
		*dst = b
	}
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return opts, err
	}
	if opts.All && opts.Format != pipeline.FormatJSON {
		return opts, errors.New(errors.ErrCodeInvalidInput, "all requires format json")
	}
	return opts, nil
}

func (s *Server) fail(w http.ResponseWriter, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("conversion failed", "err", err)
	} else {
		s.logger.Debug("request rejected", "err", err)
	}
	writeError(w, status, errors.GetCode(err), errors.UserMessage(err))
}

func statusFor(err error) int {
	switch errors.GetCode(err) {
	case errors.ErrCodeInvalidInput, errors.ErrCodeInvalidDocument, errors.ErrCodeInvalidFormat,
		errors.ErrCodeInvalidPath, errors.ErrCodeMalformed:
		return http.StatusBadRequest
	case errors.ErrCodeNotFound, errors.ErrCodeFileNotFound:
		return http.StatusNotFound
	case errors.ErrCodeDecorator:
		return http.StatusUnprocessableEntity
	case errors.ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}

func contentType(format string) string {
	switch format {
	case pipeline.FormatSVG:
		return "image/svg+xml"
	case pipeline.FormatPNG:
		return "image/png"
	case pipeline.FormatDOT:
		return "text/vnd.graphviz; charset=utf-8"
	default:
		return "application/json"
	}
}

func cacheStatus(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code errors.Code, msg string) {
	body := map[string]string{"error": msg}
	if code != "" {
		body["code"] = string(code)
	}
	writeJSON(w, status, body)
}
