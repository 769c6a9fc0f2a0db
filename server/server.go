package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/stagekit/logger"
	"github.com/kbukum/stagekit/server/endpoint"
	"github.com/kbukum/stagekit/server/middleware"
)

// Status route paths.
const (
	PathHealth   = "/health"
	PathAlive    = "/alive"
	PathReady    = "/ready"
	PathVersion  = "/version"
	PathTopology = "/topology"
	PathStages   = "/stages"
	PathStage    = "/stages/:index"
	// PathStream is served by sse.Component when a host enables it.
	PathStream = "/stages/stream"
)

// Server serves the status routes over HTTP/1.1 and cleartext HTTP/2 on one
// port.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	config     Config
	log        *logger.Logger

	mu       sync.RWMutex
	listener net.Listener
}

// New creates a server with an empty gin engine; ApplyDefaults installs the
// middleware and status routes. Gin runs in debug mode only when debug
// logging is enabled.
func New(cfg Config, log *logger.Logger) *Server {
	mode := gin.ReleaseMode
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		mode = gin.DebugMode
	}
	gin.SetMode(mode)

	engine := gin.New()
	h2s := &http2.Server{MaxConcurrentStreams: 250, IdleTimeout: 2 * time.Minute}
	return &Server{
		engine: engine,
		config: cfg,
		log:    log.WithComponent("server"),
		httpServer: &http.Server{
			Addr:         cfg.Address(),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
	}
}

// GinEngine exposes the engine so hosts can add routes of their own.
func (s *Server) GinEngine() *gin.Engine { return s.engine }

// Handler returns the root handler, HTTP/2 upgrade included.
func (s *Server) Handler() http.Handler { return s.httpServer.Handler }

// ApplyDefaults installs the middleware and registers the status routes.
func (s *Server) ApplyDefaults(service string, p endpoint.PipelineView, checker endpoint.HealthChecker) {
	s.ApplyMiddleware()
	s.RegisterStatusEndpoints(service, p, checker)
}

// ApplyMiddleware installs recovery, request ids and request logging, in
// that order.
func (s *Server) ApplyMiddleware() {
	s.engine.Use(
		middleware.Recovery(s.log),
		middleware.RequestID(),
		middleware.RequestLogger(s.log),
	)
}

// RegisterStatusEndpoints registers the probes and the pipeline views.
func (s *Server) RegisterStatusEndpoints(service string, p endpoint.PipelineView, checker endpoint.HealthChecker) {
	s.engine.GET(PathHealth, endpoint.Health(service, checker))
	s.engine.GET(PathAlive, endpoint.Liveness(service))
	s.engine.GET(PathReady, endpoint.Readiness(service, checker))
	s.engine.GET(PathVersion, endpoint.Version())
	s.engine.GET(PathTopology, endpoint.Topology(p))
	s.engine.GET(PathStages, endpoint.Stages(p))
	s.engine.GET(PathStage, endpoint.Stage(p))
}

// Start binds the listener and serves on a goroutine. A bind failure is
// returned; once Start returns nil the port accepts connections.
func (s *Server) Start(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("server failed to bind %s: %w", s.httpServer.Addr, err)
	}
	s.setListener(ln)

	go func() {
		if err := s.httpServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("Server stopped serving", logger.Fields(logger.FieldError, err.Error()))
		}
	}()
	s.log.Info("Status server listening", logger.Fields("addr", ln.Addr().String()))
	return nil
}

// Stop drains in-flight requests within ctx and the configured shutdown
// timeout, whichever ends first.
func (s *Server) Stop(ctx context.Context) error {
	if d := s.config.ShutdownTimeout; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	s.setListener(nil)
	s.log.Info("Status server stopped")
	return nil
}

func (s *Server) setListener(ln net.Listener) {
	s.mu.Lock()
	s.listener = ln
	s.mu.Unlock()
}

// Addr returns the bound address while serving, the configured one
// otherwise.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener != nil {
		return s.listener.Addr().String()
	}
	return s.httpServer.Addr
}

// Serving reports whether the listener is bound.
func (s *Server) Serving() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listener != nil
}
