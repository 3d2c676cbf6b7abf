// Package server exposes the agent over HTTP: the chat endpoint, the user
// picker feed, the static chat page, and operational routes.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"github.com/smit333/Oracle-Agent-Ex/internal/agent"
	"github.com/smit333/Oracle-Agent-Ex/internal/catalog"
	"github.com/smit333/Oracle-Agent-Ex/internal/hcm"
	"github.com/smit333/Oracle-Agent-Ex/internal/logging"
	"github.com/smit333/Oracle-Agent-Ex/internal/observability"
)

const shutdownGrace = 10 * time.Second

// Server hosts the HTTP surface around one agent pipeline.
type Server struct {
	engine     *gin.Engine
	httpServer *http.Server
	hcmClient  *hcm.Client
	logger     logging.Logger
}

// Config controls the listener.
type Config struct {
	Port  int
	Debug bool
}

// New builds the gin engine and registers all routes.
func New(cfg Config, ag *agent.Agent, hcmClient *hcm.Client, cat *catalog.Catalog, metrics *observability.Metrics) *Server {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestID())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type"}
	engine.Use(cors.New(corsConfig))

	handler := newHandler(ag, hcmClient, cat, metrics)
	engine.GET("/", handler.Index)
	engine.POST("/chat", handler.Chat)
	engine.GET("/users", handler.Users)
	engine.GET("/healthz", handler.Health)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return &Server{
		engine: engine,
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", cfg.Port),
			Handler:           engine,
			ReadHeaderTimeout: 10 * time.Second,
		},
		hcmClient: hcmClient,
		logger:    logging.NewComponentLogger("server"),
	}
}

// Handler returns the underlying engine, mainly for httptest.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is canceled or SIGINT/SIGTERM arrives, then drains
// in-flight requests and releases the HCM transport.
func (s *Server) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	group, ctx := errgroup.WithContext(ctx)

	group.Go(func() error {
		s.logger.Info("listening on %s", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	group.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownGrace)
		defer cancel()
		err := s.httpServer.Shutdown(shutdownCtx)
		s.hcmClient.Close()
		return err
	})

	return group.Wait()
}
