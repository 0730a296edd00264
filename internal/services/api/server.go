package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	config "github.com/kseslo/deadliner/internal/config/api"
)

// requestID tags every request so log lines from one call can be stitched
// together; incoming X-Request-Id is honored to keep gateway traces intact.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader("X-Request-Id")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set("request_id", rid)
		c.Writer.Header().Set("X-Request-Id", rid)
		c.Next()
	}
}

func accessLog(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		rid, _ := c.Get("request_id")
		log.Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("took", time.Since(start)),
			zap.Any("request_id", rid),
		)
	}
}

func NewRouter(h *Handlers, log *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog(log))

	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	v1 := r.Group("/v1")
	{
		v1.POST("/deadlines", h.createDeadline)
		v1.GET("/deadlines", h.listDeadlines)
		v1.GET("/deadlines/:id", h.getDeadline)
		v1.PUT("/deadlines/:id", h.updateDeadline)
		v1.DELETE("/deadlines/:id", h.deleteDeadline)
		v1.GET("/deadlines/:id/countdown", h.countdown)

		v1.GET("/users/:id/preferences", h.getPreference)
		v1.PUT("/users/:id/preferences", h.putPreference)
		v1.GET("/users/:id/notifications", h.listNotifications)
	}
	return r
}

type Server struct {
	srv *http.Server
	log *zap.Logger
}

func NewServer(cfg *config.Server, h *Handlers, log *zap.Logger) *Server {
	router := NewRouter(h, log)
	return &Server{
		srv: &http.Server{
			Addr:         cfg.Addr,
			Handler:      otelhttp.NewHandler(router, "deadliner-api"),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		log: log,
	}
}

func (s *Server) Run() error {
	s.log.Info("http server listening", zap.String("addr", s.srv.Addr))
	if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.srv.Shutdown(ctx)
}
