// Package server 通过 HTTP 暴露书库、阅读会话与阅读状态存储。
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/ByLCY/quire/config"
	"github.com/ByLCY/quire/logger"
	"github.com/ByLCY/quire/reader"
	"github.com/ByLCY/quire/storage"
)

// Deps 是路由依赖的服务。
type Deps struct {
	Reader    *reader.Reader
	Store     *storage.BestEffort
	Summaries *storage.SummaryCache
}

// Server HTTP 服务
type Server struct {
	cfg    *config.Config
	engine *gin.Engine
	h      *handler
}

// New 创建服务并注册路由
func New(cfg *config.Config, deps Deps) *Server {
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	if deps.Summaries == nil && deps.Store != nil {
		deps.Summaries = storage.NewSummaryCache(deps.Store)
	}

	s := &Server{
		cfg:    cfg,
		engine: gin.New(),
		h: &handler{
			reader:    deps.Reader,
			store:     deps.Store,
			summaries: deps.Summaries,
			defaults:  cfg.Layout.Config,
			version:   cfg.App.Version,
		},
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Engine 返回 Gin Engine
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) setupMiddleware() {
	s.engine.Use(recovery())
	s.engine.Use(requestID())
	s.engine.Use(corsMiddleware(s.cfg.Server.CORSOrigins))
	if s.cfg.Observability.Tracing.Enabled {
		s.engine.Use(otelgin.Middleware(s.cfg.App.Name))
		s.engine.Use(traceContext())
	}
	if s.cfg.Observability.Metrics.Enabled {
		s.engine.Use(metricsMiddleware())
	}
}

func (s *Server) setupRoutes() {
	h := s.h
	s.engine.GET("/health", h.health)
	if s.cfg.Observability.Metrics.Enabled {
		s.engine.GET(s.cfg.Observability.Metrics.Path, gin.WrapH(promhttp.Handler()))
	}

	books := s.engine.Group("/books")
	{
		books.GET("", h.listBooks)
		books.GET("/:id", h.getBook)
		books.GET("/:id/reading-state", h.getReadingState)
		books.PUT("/:id/reading-state", h.putReadingState)
		books.GET("/:id/highlights", h.listHighlights)
		books.POST("/:id/highlights", h.addHighlight)
		books.DELETE("/:id/highlights/:hid", h.deleteHighlight)
	}

	session := s.engine.Group("/session")
	{
		session.POST("", h.openSession)
		session.PUT("/config", h.relayout)
		session.GET("/layout", h.getLayout)
		session.GET("/pages/:number", h.pageByNumber)
		session.GET("/page", h.pageAtOffset)
		session.POST("/position", h.savePosition)
		session.GET("/resume", h.resume)
		session.GET("/summary", h.chapterSummary)
	}

	s.engine.GET("/summaries/:key", h.getSummary)
	s.engine.PUT("/summaries/:key", h.putSummary)
}

// Run 启动服务，ctx 取消后优雅关闭
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.engine,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(ctx, "http server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	logger.Info(ctx, "http server shutting down")
	return srv.Shutdown(shutdownCtx)
}
