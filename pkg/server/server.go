// Package server exposes the analyzer over HTTP.
//
// Routes:
//
//	GET  /healthz   liveness probe
//	POST /analyze   analyse a directory below the server root (JSON body)
//	POST /parse     parse DOT text into the JSON document form
//	POST /layout    lay out a document or call graph, optionally rendered
//
// Errors are answered as {"error":{"code":...,"message":...}} with the status
// from [errors.HTTPStatus]. Analyses are serialized; a request that arrives
// while another analysis runs gets 409 BUSY instead of queueing.
package server

import (
	"context"
	stderrors "errors"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/flowlens/pkg/analyzer"
	"github.com/matzehuels/flowlens/pkg/buildinfo"
)

// MaxBodyBytes bounds request bodies.
const MaxBodyBytes = 16 << 20

// Options configures a [Server].
type Options struct {
	// Root confines /analyze to directories below it.
	Root string
	// Timeout bounds each request. Zero disables it.
	Timeout time.Duration
	Logger  *log.Logger
}

// Server routes HTTP requests to an Analyzer.
type Server struct {
	analyzer *analyzer.Analyzer
	root     string
	logger   *log.Logger
	router   chi.Router
}

// New builds the router.
func New(a *analyzer.Analyzer, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.NewWithOptions(io.Discard, log.Options{})
	}
	root := opts.Root
	if root == "" {
		root = "."
	}
	s := &Server{analyzer: a, root: root, logger: logger}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(logger))
	r.Use(middleware.Recoverer)
	if opts.Timeout > 0 {
		r.Use(middleware.Timeout(opts.Timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Post("/analyze", s.handleAnalyze)
	r.Post("/parse", s.handleParse)
	r.Post("/layout", s.handleLayout)
	s.router = r
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ListenAndServe serves on addr until ctx is done, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("listening", "addr", addr, "root", s.root)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdown); err != nil {
		return err
	}
	if err := <-errc; !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func requestLogger(logger *log.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			logger.Info("request",
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"bytes", ww.BytesWritten(),
				"took", time.Since(start),
				"id", middleware.GetReqID(r.Context()))
		})
	}
}
