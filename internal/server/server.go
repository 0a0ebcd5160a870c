package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/hubwatch/panelhost/internal/api/middleware"
	"github.com/hubwatch/panelhost/internal/backend"
	"github.com/hubwatch/panelhost/internal/bootstrap"
	"github.com/hubwatch/panelhost/internal/infrastructure/config"
	"github.com/hubwatch/panelhost/internal/infrastructure/logging"
	"github.com/hubwatch/panelhost/internal/infrastructure/monitoring"
	"github.com/hubwatch/panelhost/internal/router"
	"github.com/hubwatch/panelhost/internal/session"
	"github.com/hubwatch/panelhost/internal/shared/types"
	"github.com/hubwatch/panelhost/internal/statestore"
)

// Server hosts the panel runtime: view payloads and assets over HTTP,
// view message streams over WebSocket.
type Server struct {
	cfg       *config.Config
	log       *logging.Logger
	metrics   *monitoring.Metrics
	engine    *gin.Engine
	http      *http.Server
	surfaces  *SurfaceRegistry
	sessions  *session.Registry
	assetRoot string
}

// Option tweaks server construction.
type Option func(*options)

type options struct {
	diagramAvailable func(identity string) bool
}

// WithDiagramPredicate injects the availability set for the
// supplementary visualization. Membership criteria are the caller's
// concern.
func WithDiagramPredicate(fn func(identity string) bool) Option {
	return func(o *options) { o.diagramAvailable = fn }
}

// New wires the full host: state store, payload builder, router,
// session registry, and HTTP surface.
func New(cfg *config.Config, log *logging.Logger, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	metrics := monitoring.NewMetrics()
	store := statestore.NewAdapter(statestore.NewFileStore(cfg.State.File))

	manifest := bootstrap.DefaultManifest(cfg.Assets.Root)
	if cfg.Assets.Manifest != "" {
		loaded, err := bootstrap.LoadManifest(cfg.Assets.Manifest)
		if err != nil {
			return nil, fmt.Errorf("asset manifest: %w", err)
		}
		manifest = loaded
	}
	assets, err := manifest.Discover()
	if err != nil {
		return nil, fmt.Errorf("asset discovery: %w", err)
	}
	log.Info("assets discovered",
		zap.Int("css", len(assets.CSS)),
		zap.Int("js", len(assets.JS)))

	builder := bootstrap.NewBuilder(assetResolver{root: manifest.AssetRoot}, o.diagramAvailable)

	var be router.Backend
	if cfg.Backend.Address != "" {
		be = backend.New(cfg.Backend.Address,
			time.Duration(cfg.Backend.TimeoutSeconds)*time.Second, log)
		log.Info("backend proxy enabled", zap.String("address", cfg.Backend.Address))
	}

	dialog := ExportDialog{Dir: cfg.Export.Dir}
	notifier := zapNotifier{log: log}
	rt := router.New(store, dialog, notifier, be, metrics, log)

	surfaces := NewSurfaceRegistry(log)

	runtimeCfg := types.RuntimeConfig{
		Theme:           cfg.View.Theme,
		TimeDisplayMode: cfg.View.TimeDisplayMode,
		ViewMode:        cfg.View.Mode,
	}

	sessions := session.NewRegistry(func(hub string, onDispose func()) *session.Session {
		return session.New(hub, session.Deps{
			Factory: surfaces,
			Store:   store,
			Builder: builder,
			Assets:  assets,
			Router:  rt,
			Config:  runtimeCfg,
			Metrics: metrics,
			Log:     log,
		}, onDispose)
	}, metrics)

	if !cfg.Logging.Development {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(middleware.CORS(middleware.DefaultCORSConfig()))
	if cfg.RateLimit.Enabled {
		engine.Use(middleware.RateLimit(middleware.RateLimitConfig{
			RequestsPerSecond: cfg.RateLimit.RequestsPerSecond,
			Burst:             cfg.RateLimit.Burst,
		}))
	}

	s := &Server{
		cfg:       cfg,
		log:       log,
		metrics:   metrics,
		engine:    engine,
		surfaces:  surfaces,
		sessions:  sessions,
		assetRoot: manifest.AssetRoot,
	}
	s.routes()
	return s, nil
}

func (s *Server) routes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/metrics", gin.WrapH(s.metrics.Handler()))

	s.engine.POST("/hubs/:hub/show", s.handleShow)
	s.engine.GET("/hubs", s.handleHubs)
	s.engine.GET("/hubs/:hub/views", s.handleViews)
	s.engine.DELETE("/hubs/:hub", s.handleCleanup)

	s.engine.GET("/views/:id", s.handleView)
	s.engine.GET("/views/:id/stream", s.handleStream)

	s.engine.GET("/assets/*filepath", s.handleAsset)
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
		"views":  s.surfaces.Count(),
	})
}

// handleShow is the driver entry: create or reveal the hub's root view.
func (s *Server) handleShow(c *gin.Context) {
	hub := c.Param("hub")
	sess := s.sessions.Obtain(hub)

	if err := sess.Show(c.Request.Context()); err != nil {
		s.log.Error("show failed", zap.String("hub", hub), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"hub":     hub,
		"view":    sess.RootID(),
		"visible": sess.IsVisible(),
	})
}

func (s *Server) handleHubs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"hubs": s.sessions.Hubs()})
}

func (s *Server) handleViews(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("hub"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown hub"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"views":   sess.Views(),
		"visible": sess.IsVisible(),
		"ready":   sess.Ready(),
	})
}

func (s *Server) handleCleanup(c *gin.Context) {
	sess, ok := s.sessions.Get(c.Param("hub"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown hub"})
		return
	}
	sess.Cleanup()
	c.JSON(http.StatusOK, gin.H{"status": "cleaned"})
}

// handleView serves a view's installed bootstrap payload.
func (s *Server) handleView(c *gin.Context) {
	surface, ok := s.surfaces.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown view"})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", []byte(surface.HTML()))
}

// Run blocks serving HTTP until Close or failure.
func (s *Server) Run() error {
	addr := s.cfg.Server.Host + ":" + s.cfg.Server.Port
	s.http = &http.Server{Addr: addr, Handler: s.engine}
	s.log.Info("panelhost listening", zap.String("addr", addr))

	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Close tears down every session and stops the HTTP server.
func (s *Server) Close() error {
	s.sessions.CleanupAll()

	if s.http != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return s.http.Shutdown(ctx)
	}
	return nil
}

// Engine exposes the router for tests.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}
