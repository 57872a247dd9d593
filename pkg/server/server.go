package server

import (
	"context"
	"net/http"
	"time"

	"github.com/aleksaelezovic/factstore/internal/errors"
	"github.com/aleksaelezovic/factstore/pkg/sparql/results"
	"github.com/aleksaelezovic/factstore/pkg/sparql/tripleterm"
	"github.com/aleksaelezovic/factstore/pkg/store"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// maxBodyBytes bounds uploaded request bodies
const maxBodyBytes = 32 << 20

// Server exposes a TripleStore over HTTP
type Server struct {
	store       *store.TripleStore
	transformer *tripleterm.Transformer
	results     results.Options
	logger      *zap.Logger
	addr        string
	httpServer  *http.Server
}

// Option configures a Server
type Option func(*Server)

// WithLogger sets the request logger
func WithLogger(logger *zap.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithTransformer sets the triple term transformer used by /transform
func WithTransformer(t *tripleterm.Transformer) Option {
	return func(s *Server) {
		if t != nil {
			s.transformer = t
		}
	}
}

// WithResultOptions sets default result formatting (pretty printing, indent)
func WithResultOptions(opts results.Options) Option {
	return func(s *Server) {
		s.results = opts
	}
}

// NewServer creates a new HTTP server for st listening on addr
func NewServer(st *store.TripleStore, addr string, opts ...Option) *Server {
	s := &Server{
		store:       st,
		transformer: tripleterm.NewTransformer(),
		logger:      zap.NewNop(),
		addr:        addr,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the gin engine with all routes registered
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), s.requestLogger())

	router.GET("/health", s.handleHealth)
	router.GET("/stats", s.handleStats)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	router.POST("/data", s.handleAddData)
	router.DELETE("/data", s.handleRemoveData)
	router.DELETE("/data/all", s.handleClear)

	router.GET("/match", s.handleMatch)
	router.GET("/subjects/:uuid", s.handleSubjectsByUUID)

	router.POST("/transform", s.handleTransform)

	return router
}

// Start serves HTTP until Shutdown is called
func (s *Server) Start() error {
	s.httpServer = &http.Server{
		Addr:         s.addr,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting factstore server", zap.String("addr", s.addr))
	if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "serve http")
	}
	return nil
}

// Shutdown gracefully stops a started server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.httpServer == nil {
		return nil
	}
	return s.httpServer.Shutdown(ctx)
}

// requestLogger logs one line per request
func (s *Server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("errors", c.Errors.String()))
		}
		if c.Writer.Status() >= http.StatusInternalServerError {
			s.logger.Error("request failed", fields...)
			return
		}
		s.logger.Debug("request", fields...)
	}
}
