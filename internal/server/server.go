// Package server is the HTTP front end: it turns JSON bodies into records
// and prediction results into JSON.
package server

import (
	"context"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/YuminosukeSato/churnguard/core/record"
	"github.com/YuminosukeSato/churnguard/internal/config"
	"github.com/YuminosukeSato/churnguard/internal/prediction"
	"github.com/YuminosukeSato/churnguard/pkg/errors"
	"github.com/YuminosukeSato/churnguard/pkg/log"
	"github.com/gin-gonic/gin"
)

// Predictor is the part of prediction.Service the handlers need.
type Predictor interface {
	Predict(ctx context.Context, rec record.Record) (*prediction.Result, error)
	Describe() prediction.ModelInfo
}

// Server wraps a gin engine and its http.Server.
type Server struct {
	cfg    config.ServerConfig
	engine *gin.Engine
	svc    Predictor
	logger log.Logger

	metrics     http.Handler
	metricsPath string
	middleware  []gin.HandlerFunc
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(l log.Logger) Option {
	return func(s *Server) { s.logger = l }
}

// WithMetrics mounts h at path and adds mw in front of every route.
func WithMetrics(path string, h http.Handler, mw gin.HandlerFunc) Option {
	return func(s *Server) {
		s.metricsPath = path
		s.metrics = h
		if mw != nil {
			s.middleware = append(s.middleware, mw)
		}
	}
}

// New builds the router. Nothing listens until Run.
func New(cfg config.ServerConfig, svc Predictor, opts ...Option) *Server {
	s := &Server{cfg: cfg, svc: svc}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = log.GetLoggerWithName("server")
	}
	if cfg.Mode != "" {
		gin.SetMode(cfg.Mode)
	}

	r := gin.New()
	r.Use(gin.Recovery(), s.requestLogger())
	r.Use(s.middleware...)

	r.GET("/healthz", s.health)
	if s.metrics != nil {
		r.GET(s.metricsPath, gin.WrapH(s.metrics))
	}
	v1 := r.Group("/v1")
	v1.POST("/predict", s.predict)
	v1.GET("/model", s.model)

	s.engine = r
	return s
}

// Handler returns the router, for tests and embedding.
func (s *Server) Handler() http.Handler { return s.engine }

// Run listens on the configured address until ctx is canceled, then shuts
// down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	addr := net.JoinHostPort(s.cfg.Host, strconv.Itoa(s.cfg.Port))
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTP server listening", log.AddrKey, addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("Shutting down HTTP server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "http server shutdown failed")
	}
	return nil
}

func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.Debug("HTTP request",
			log.MethodKey, c.Request.Method,
			log.RouteKey, c.FullPath(),
			log.StatusKey, c.Writer.Status(),
			log.DurationMsKey, time.Since(start).Milliseconds(),
		)
	}
}
