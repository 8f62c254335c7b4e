// Package server exposes the pipeline over HTTP with gin.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hupe1980/medmesh/core"
	"github.com/hupe1980/medmesh/internal/imageutil"
	"github.com/hupe1980/medmesh/logging"
)

// Analyzer runs one request through the pipeline.
type Analyzer interface {
	Analyze(ctx context.Context, in core.Input) core.Response
}

// Options configures a Server.
type Options struct {
	// Store serves the audit endpoints. Nil disables them.
	Store core.AnalysisStore
	// Gatherer backs /metrics. Defaults to the global Prometheus registry.
	Gatherer prometheus.Gatherer
	// MaxUploadBytes bounds the request body of /api/analyze.
	MaxUploadBytes int64
	// MaxImagePixels bounds the declared dimensions of an uploaded image.
	MaxImagePixels  int64
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	Debug           bool
	Logger          logging.Logger
}

// DefaultOptions holds the values used for unset options.
var DefaultOptions = Options{
	MaxUploadBytes:  20 << 20,
	MaxImagePixels:  imageutil.DefaultMaxPixels,
	ReadTimeout:     30 * time.Second,
	WriteTimeout:    180 * time.Second,
	ShutdownTimeout: 15 * time.Second,
}

// Server is the HTTP boundary of the pipeline.
type Server struct {
	analyzer Analyzer
	opts     Options
	engine   *gin.Engine
	logger   logging.Logger
}

// New builds a Server with all routes registered.
func New(a Analyzer, optFns ...func(o *Options)) *Server {
	opts := DefaultOptions
	opts.Gatherer = prometheus.DefaultGatherer
	opts.Logger = logging.NoOpLogger{}

	for _, fn := range optFns {
		fn(&opts)
	}

	if !opts.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		analyzer: a,
		opts:     opts,
		engine:   gin.New(),
		logger:   logging.ForComponent(opts.Logger, "server"),
	}

	s.engine.Use(gin.Recovery())
	s.engine.Use(requestID())
	s.engine.Use(accessLog(s.logger))

	s.routes()

	return s
}

func (s *Server) routes() {
	s.engine.GET("/healthz", s.health)
	s.engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(s.opts.Gatherer, promhttp.HandlerOpts{})))

	api := s.engine.Group("/api")
	api.POST("/analyze", s.analyze)

	if s.opts.Store != nil {
		api.GET("/analyses", s.listAnalyses)
		api.GET("/analyses/:id", s.getAnalysis)
	}
}

// Handler returns the HTTP handler serving every route.
func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is canceled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:         addr,
		Handler:      s.engine,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server.listen", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		s.logger.Info("server.shutdown", "timeout", s.opts.ShutdownTimeout)

		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.opts.ShutdownTimeout)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
