package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apihttp "github.com/GriffinCanCode/AutoThinker/backend/internal/api/http"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/api/middleware"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/config"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/logging"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/infrastructure/monitoring"
	"github.com/GriffinCanCode/AutoThinker/backend/internal/store"
)

// shutdownTimeout bounds how long in-flight requests may drain
const shutdownTimeout = 10 * time.Second

// Server wraps the HTTP server and dependencies
type Server struct {
	router  *gin.Engine
	http    *http.Server
	store   store.Store
	closer  io.Closer
	logger  *zap.Logger
	config  *config.Config
	metrics *monitoring.Metrics
}

// NewServer creates a new server instance. A nil logger is built from
// cfg.Logging.
func NewServer(cfg *config.Config, logger *zap.Logger) (*Server, error) {
	if logger == nil {
		var err error
		logger, err = logging.New(logging.Config{Level: cfg.Logging.Level, Development: cfg.Logging.Development})
		if err != nil {
			return nil, fmt.Errorf("failed to create logger: %w", err)
		}
	}

	logger.Info("Initializing AutoThinker store service",
		zap.String("addr", cfg.Server.Addr()),
		zap.String("backend", cfg.Store.Backend),
	)

	metrics := monitoring.NewMetrics()

	backend, closer, err := openStore(cfg.Store)
	if err != nil {
		return nil, err
	}
	st := store.Instrument(backend, cfg.Store.Backend, metrics, logger)
	if counter, ok := backend.(store.Counter); ok {
		if n, err := counter.Count(context.Background()); err == nil {
			metrics.SetBlueprints(n)
			logger.Info("Store opened", zap.Int("blueprints", n))
		}
	}

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Recovery(logger))
	router.Use(middleware.Logger(logger))
	router.Use(monitoring.Middleware(metrics))

	corsCfg := middleware.DefaultCORSConfig()
	if len(cfg.CORS.Origins) > 0 {
		corsCfg.AllowOrigins = cfg.CORS.Origins
	}
	router.Use(middleware.CORS(corsCfg))

	if cfg.RateLimit.Enabled {
		logger.Info("Rate limiting enabled",
			zap.Int("rps", cfg.RateLimit.RequestsPerSecond),
			zap.Int("burst", cfg.RateLimit.Burst),
		)
		rl := middleware.DefaultRateLimitConfig()
		rl.RequestsPerSecond = cfg.RateLimit.RequestsPerSecond
		rl.Burst = cfg.RateLimit.Burst
		router.Use(middleware.RateLimit(rl))
	}

	handlers := apihttp.NewHandlers(st, cfg.Store.Backend, metrics, logger)
	handlers.Register(router)

	logger.Info("Server initialized successfully")

	return &Server{
		router: router,
		http: &http.Server{
			Addr:              cfg.Server.Addr(),
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
		},
		store:   st,
		closer:  closer,
		logger:  logger,
		config:  cfg,
		metrics: metrics,
	}, nil
}

func openStore(cfg config.StoreConfig) (store.Store, io.Closer, error) {
	switch cfg.Backend {
	case config.BackendSQLite:
		s, err := store.NewSQLiteStore(cfg.Path)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open sqlite store at %s: %w", cfg.Path, err)
		}
		return s, s, nil
	case config.BackendMemory, "":
		return store.NewMemoryStore(), nil, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.Backend)
	}
}

// Handler returns the router, for tests and embedding
func (s *Server) Handler() http.Handler {
	return s.router
}

// Metrics returns the server's collectors
func (s *Server) Metrics() *monitoring.Metrics {
	return s.metrics
}

// Run serves until ctx is cancelled, then drains in-flight requests
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.http.Addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.http.Addr, err)
	}
	return s.Serve(ctx, ln)
}

// Serve is Run on an existing listener
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.logger.Info("Starting HTTP server", zap.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.http.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down: %w", err)
	}
	<-errCh
	return nil
}

// Close releases the store and flushes the logger
func (s *Server) Close() error {
	s.logger.Info("Shutting down server...")

	if s.closer != nil {
		if err := s.closer.Close(); err != nil {
			s.logger.Error("Failed to close store", zap.Error(err))
			return fmt.Errorf("failed to close store: %w", err)
		}
		s.logger.Info("Closed store")
	}

	_ = s.logger.Sync()
	return nil
}
