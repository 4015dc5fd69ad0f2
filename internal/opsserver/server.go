package opsserver

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"onetap-admin/internal/metrics"
)

// HealthChecker reports whether the backend is reachable.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Server exposes /metrics and /healthz for the running console.
type Server struct {
	srv *http.Server
	log *zap.Logger
}

// New builds the ops server. It does not start listening.
func New(addr string, m *metrics.Metrics, backend HealthChecker, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{
		srv: &http.Server{
			Addr:         addr,
			Handler:      Router(m, backend),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		log: log,
	}
}

// Router returns the gin engine serving the ops endpoints.
func Router(m *metrics.Metrics, backend HealthChecker) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/metrics", gin.WrapH(m.Handler()))

	r.GET("/healthz", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		if err := backend.Health(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "backend": false, "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "backend": true})
	})
	return r
}

// Start listens in the background until Shutdown.
func (s *Server) Start() {
	go func() {
		s.log.Info("ops server listening", zap.String("addr", s.srv.Addr))
		if err := s.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("ops server failed", zap.Error(err))
		}
	}()
}

// Shutdown gives in-flight scrapes up to 10 seconds to finish.
func (s *Server) Shutdown() {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.srv.Shutdown(ctx); err != nil {
		s.log.Warn("ops server forced shutdown", zap.Error(err))
	}
}
