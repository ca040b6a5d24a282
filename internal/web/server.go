// Package web serves the browser surface: a page with a link input and
// Download and View buttons, plus health and metrics endpoints.
package web

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"teraview/internal/httputil"
	"teraview/internal/media"
	"teraview/internal/terabox"
	"teraview/internal/viewer"
)

const shutdownTimeout = 10 * time.Second

// Resolver turns a share link into a direct media URL.
type Resolver interface {
	Resolve(ctx context.Context, link media.Link) (media.Direct, error)
}

// Options configures a Server.
type Options struct {
	Resolver  Resolver
	Filename  string        // default name for downloads
	NotifyFor time.Duration // how long error notices stay on the page
	Logger    *zap.Logger
}

// Server handles the web surface. Each rendered page owns its own video
// element; the server keeps no playback state.
type Server struct {
	resolver  Resolver
	filename  string
	notifyFor time.Duration
	logger    *zap.Logger
	registry  *prometheus.Registry
	metrics   *Metrics
	mux       *http.ServeMux
}

// NewServer creates a Server with its own metrics registry.
func NewServer(opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	filename := opts.Filename
	if filename == "" {
		filename = media.DefaultFilename
	}
	notifyFor := opts.NotifyFor
	if notifyFor <= 0 {
		notifyFor = 5 * time.Second
	}

	reg := prometheus.NewRegistry()
	s := &Server{
		resolver:  opts.Resolver,
		filename:  filename,
		notifyFor: notifyFor,
		logger:    logger,
		registry:  reg,
		metrics:   newMetrics(reg),
	}
	s.mux = s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /download", s.handleDownload)
	mux.HandleFunc("GET /view", s.handleView)

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok","service":"teraview"}`))
	})

	mux.Handle("GET /metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return mux
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.mux }

func createHTTPServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      60 * time.Second,
	}
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := createHTTPServer(addr, s.mux)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.render(w, http.StatusOK, newPageData("", s.notifyFor))
}

func (s *Server) handleDownload(w http.ResponseWriter, r *http.Request) {
	s.metrics.RequestsTotal.WithLabelValues("download").Inc()
	link := strings.TrimSpace(r.URL.Query().Get("url"))

	direct, err := s.resolve(r.Context(), link)
	if err != nil {
		s.fail(w, link, "Download failed: ", err)
		return
	}

	filename := s.filename
	if name := strings.TrimSpace(r.URL.Query().Get("filename")); name != "" {
		filename = httputil.SanitizeFilename(name)
	}

	data := newPageData(link, s.notifyFor)
	data.Download = &downloadLink{URL: direct.URL, Filename: filename}
	s.render(w, http.StatusOK, data)
}

func (s *Server) handleView(w http.ResponseWriter, r *http.Request) {
	s.metrics.RequestsTotal.WithLabelValues("view").Inc()
	link := strings.TrimSpace(r.URL.Query().Get("url"))

	direct, err := s.resolve(r.Context(), link)
	if err != nil {
		s.fail(w, link, "Failed to load video: ", err)
		return
	}

	data := newPageData(link, s.notifyFor)
	data.Video = direct.URL
	s.render(w, http.StatusOK, data)
}

func (s *Server) resolve(ctx context.Context, link string) (media.Direct, error) {
	direct, err := s.resolver.Resolve(ctx, media.Link(link))
	s.metrics.ResolveTotal.WithLabelValues(outcome(err)).Inc()
	return direct, err
}

// fail re-renders the index with a notice. Invalid input is the client's
// fault; everything else is reported as an upstream failure.
func (s *Server) fail(w http.ResponseWriter, link, prefix string, err error) {
	status := http.StatusBadGateway
	if errors.Is(err, terabox.ErrInvalidInput) {
		status = http.StatusBadRequest
	}
	s.logger.Warn("request failed", zap.String("link", link), zap.Int("status", status), zap.Error(err))

	data := newPageData(link, s.notifyFor)
	data.Notice = prefix + viewer.Explain(err)
	s.render(w, status, data)
}

func (s *Server) render(w http.ResponseWriter, status int, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		s.logger.Error("rendering page", zap.Error(err))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
