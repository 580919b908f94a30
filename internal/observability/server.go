package observability

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Server is the loopback-only debug surface of the daemon: health,
// prometheus metrics and a JSON snapshot of the synced state.
type Server struct {
	srv    *http.Server
	logger *zap.Logger
}

// NewServer builds the debug server. snapshot is called per request to
// render /debug/state.
func NewServer(addr string, snapshot func() map[string]any, logger *zap.Logger) *Server {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery())

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/debug/state", func(c *gin.Context) {
		c.JSON(http.StatusOK, snapshot())
	})

	return &Server{
		srv:    &http.Server{Addr: addr, Handler: r},
		logger: logger,
	}
}

// Start begins serving. Blocks until stopped.
func (s *Server) Start() error {
	s.logger.Info("debug server starting", zap.String("addr", s.srv.Addr))
	err := s.srv.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Stop performs a graceful shutdown.
func (s *Server) Stop(ctx context.Context) {
	s.logger.Info("debug server stopping")
	_ = s.srv.Shutdown(ctx)
}
