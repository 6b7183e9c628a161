// Package server serves the organigram over HTTP.
//
// Every chart request runs the pipeline against the configured source, so
// the chart always reflects the current data (subject to the source cache).
//
// Routes:
//
//	GET /healthz      liveness probe
//	GET /chart.svg    the diagram
//	GET /chart.json   the positioned layout
//	GET /chart.txt    the hierarchy as a text tree
//
// Chart routes accept ?root=<id> to draw the subtree below a unit. A source
// without records answers 204 No Content.
package server

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	errs "github.com/matzehuels/organigram/pkg/errors"
	"github.com/matzehuels/organigram/pkg/observability"
	"github.com/matzehuels/organigram/pkg/pipeline"
	"github.com/matzehuels/organigram/pkg/source"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 5 * time.Second
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:  "image/svg+xml",
	pipeline.FormatJSON: "application/json",
	pipeline.FormatText: "text/plain; charset=utf-8",
}

// Server renders charts on request.
type Server struct {
	runner *pipeline.Runner
	src    source.Source
	opts   pipeline.Options
	logger *log.Logger
	router chi.Router
}

// New creates a server that renders src with opts. Output and Formats in
// opts are ignored; each route picks its own format and nothing is written
// to disk.
func New(runner *pipeline.Runner, src source.Source, opts pipeline.Options, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.Default()
	}
	opts.Output = ""
	opts.Formats = nil

	s := &Server{runner: runner, src: src, opts: opts, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.handleHealth)
	r.Get("/chart.svg", s.chartHandler(pipeline.FormatSVG))
	r.Get("/chart.json", s.chartHandler(pipeline.FormatJSON))
	r.Get("/chart.txt", s.chartHandler(pipeline.FormatText))
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.logger.Info("serving chart", "addr", addr)

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Server) chartHandler(format string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		opts := s.opts
		opts.Formats = []string{format}
		opts.Logger = s.logger.With("request", middleware.GetReqID(r.Context()))

		if raw := r.URL.Query().Get("root"); raw != "" {
			id, err := strconv.ParseInt(raw, 10, 64)
			if err != nil {
				http.Error(w, "root must be an integer id", http.StatusBadRequest)
				return
			}
			opts.RootID = &id
		}

		result, err := s.runner.Execute(r.Context(), s.src, opts)
		if err != nil {
			status := statusFor(err)
			opts.Logger.Error("chart request failed", "format", format, "status", status, "error", err)
			http.Error(w, errs.UserMessage(err), status)
			return
		}
		if result.Status == pipeline.StatusEmpty {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		w.Header().Set("Content-Type", contentTypes[format])
		w.Header().Set("X-Organigram-Run", result.RunID.String())
		_, _ = w.Write(result.Artifacts[format])
	}
}

// statusFor maps pipeline errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errs.Is(err, errs.ErrCodeNotFound):
		return http.StatusNotFound
	case errs.IsDataIntegrity(err):
		return http.StatusUnprocessableEntity
	case errs.Is(err, errs.ErrCodeTimeout):
		return http.StatusGatewayTimeout
	case errs.Is(err, errs.ErrCodeSource):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// observe reports every request to the registered HTTP hooks.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hooks := observability.HTTP()
		hooks.OnRequest(r.Context(), r.Method, r.URL.Path)

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		hooks.OnResponse(r.Context(), r.Method, r.URL.Path, status, time.Since(start))
	})
}
