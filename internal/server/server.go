// Package server provides the HTTP API for generating and browsing document packages.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/docpack/internal/db"
	"github.com/jonathan/docpack/internal/logging"
	"github.com/jonathan/docpack/internal/observability"
	"github.com/jonathan/docpack/internal/pipeline"
	"github.com/jonathan/docpack/internal/pipeline/steps"
	"github.com/jonathan/docpack/internal/progress"
	"github.com/jonathan/docpack/internal/server/ratelimit"
	"github.com/jonathan/docpack/internal/types"
)

// Generator runs one package. *pipeline.Orchestrator satisfies it.
type Generator interface {
	Generate(ctx context.Context, req pipeline.Request, sink progress.Sink) *types.PackageResult
	Table() steps.DependencyTable
}

// Store persists packages. *db.DB satisfies it.
type Store interface {
	SavePackage(ctx context.Context, clientID string, result *types.PackageResult) error
	GetPackage(ctx context.Context, id uuid.UUID) (*types.PackageResult, error)
	ListPackages(ctx context.Context, clientID string, limit int) ([]db.PackageSummary, error)
	ListDocuments(ctx context.Context, packageID uuid.UUID) ([]types.GeneratedDocument, error)
	DeletePackage(ctx context.Context, id uuid.UUID) error
	Ping(ctx context.Context) error
}

// Config holds server configuration
type Config struct {
	Port         int
	RedisChannel string
	RateLimit    ratelimit.Config
	// MaxBodyBytes bounds request bodies; zero means DefaultMaxBodyBytes
	MaxBodyBytes int64
	// KeepAlive is the idle interval for stream comments; zero means DefaultKeepAlive
	KeepAlive time.Duration
}

// DefaultMaxBodyBytes is the request body limit when none is configured.
const DefaultMaxBodyBytes = 1 << 20

// Deps are the collaborators the server calls. Only Generator is required.
type Deps struct {
	Generator Generator
	Store     Store
	Publisher progress.Publisher
	Metrics   *observability.Metrics
	Logger    *logging.Logger
}

// Server represents the HTTP server
type Server struct {
	httpServer   *http.Server
	generator    Generator
	store        Store
	publisher    progress.Publisher
	redisChannel string
	metrics      *observability.Metrics
	logger       *logging.Logger
	rateLimiter  *ratelimit.Limiter
	maxBodyBytes int64
	keepAlive    time.Duration
}

// New creates a new server instance
func New(cfg Config, deps Deps) (*Server, error) {
	if deps.Generator == nil {
		return nil, fmt.Errorf("server requires a generator")
	}
	logger := deps.Logger
	if logger == nil {
		logger = logging.NewNop()
	}

	s := &Server{
		generator:    deps.Generator,
		store:        deps.Store,
		publisher:    deps.Publisher,
		redisChannel: cfg.RedisChannel,
		metrics:      deps.Metrics,
		logger:       logger.With("service", "Server"),
		rateLimiter:  ratelimit.NewLimiter(cfg.RateLimit),
		maxBodyBytes: cfg.MaxBodyBytes,
		keepAlive:    cfg.KeepAlive,
	}
	if s.maxBodyBytes <= 0 {
		s.maxBodyBytes = DefaultMaxBodyBytes
	}
	if s.keepAlive <= 0 {
		s.keepAlive = DefaultKeepAlive
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /packages", s.handleCreatePackage)
	mux.HandleFunc("POST /packages/stream", s.handleCreatePackageStream)
	mux.HandleFunc("GET /packages", s.handleListPackages)
	mux.HandleFunc("GET /packages/{id}", s.handleGetPackage)
	mux.HandleFunc("DELETE /packages/{id}", s.handleDeletePackage)
	mux.HandleFunc("GET /packages/{id}/documents", s.handleListDocuments)
	mux.HandleFunc("GET /document-types", s.handleDocumentTypes)
	mux.HandleFunc("GET /health", s.handleHealth)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      s.withRateLimit(s.withLogging(s.withCORS(mux))),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 300 * time.Second, // Long timeout for package generation
		IdleTimeout:  60 * time.Second,
	}

	return s, nil
}

// Handler returns the root handler including middleware.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start listens until ctx is cancelled or the process receives SIGINT/SIGTERM,
// then shuts down gracefully.
func (s *Server) Start(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "addr", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	s.logger.Info("server stopped")
	return nil
}

// withCORS adds CORS headers
func (s *Server) withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// withRateLimit rejects generation requests over the per-client limit
func (s *Server) withRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		allowed, info := s.rateLimiter.Allow(clientAddr(r), r.URL.Path, r.Method)
		setRateLimitHeaders(w, info)
		if !allowed {
			if info.RetryAfter > 0 {
				w.Header().Set("Retry-After", fmt.Sprintf("%d", int(info.RetryAfter.Seconds()+0.5)))
			}
			s.logger.Warn("rate limit exceeded", "path", r.URL.Path, "client", clientAddr(r))
			s.errorResponse(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withLogging adds request logging
func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug("request completed",
			"method", r.Method,
			"path", r.URL.Path,
			"remote", r.RemoteAddr,
			"duration", time.Since(start),
		)
	})
}

// clientAddr returns the caller's IP from RemoteAddr.
func clientAddr(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(w http.ResponseWriter, info ratelimit.Info) {
	if info.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", fmt.Sprintf("%d", info.Limit))
		w.Header().Set("X-RateLimit-Remaining", fmt.Sprintf("%d", info.Remaining))
		w.Header().Set("X-RateLimit-Reset", fmt.Sprintf("%d", info.ResetTime.Unix()))
	}
}

// handleHealth returns server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]string{"status": "ok"}
	status := http.StatusOK
	if s.store != nil {
		if err := s.store.Ping(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["database"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			resp["database"] = "ok"
		}
	}
	s.jsonResponse(w, status, resp)
}

// jsonResponse writes a JSON response
func (s *Server) jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Warn("failed to encode JSON response", "error", err)
	}
}

// errorResponse writes an error JSON response
func (s *Server) errorResponse(w http.ResponseWriter, status int, message string) {
	s.jsonResponse(w, status, map[string]string{"error": message})
}
