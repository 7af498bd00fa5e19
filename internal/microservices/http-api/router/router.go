package router

import (
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"warehub/internal/microservices/http-api/handler"

	"github.com/gin-gonic/gin"
)

// New builds the status API engine
func New(status *handler.StatusHandler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	status.RegisterRoutes(r)
	return r
}

// NewServer wraps the engine so the caller can Shutdown it with the hub
func NewServer(addr string, engine *gin.Engine) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           engine,
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// Start binds srv.Addr and serves in the background. A bind error is returned
// to the caller; errors after that are only logged.
func Start(srv *http.Server) (net.Addr, error) {
	ln, err := net.Listen("tcp", srv.Addr)
	if err != nil {
		return nil, fmt.Errorf("failed to bind status API: %w", err)
	}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("status_server_failed", "error", err.Error())
		}
	}()
	slog.Info("status_server_listening", "addr", ln.Addr().String())
	return ln.Addr(), nil
}

// requestLogger sends gin's access log through slog so it matches the hub's output
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		slog.Debug("status_request",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"status", c.Writer.Status(),
			"duration_ms", time.Since(start).Milliseconds(),
		)
	}
}
