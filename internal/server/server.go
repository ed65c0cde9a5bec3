// Package server is the preview and relay HTTP server. It serves the
// generated output tree, redirects unknown locales to the default home page
// and relays careers and contact submissions to the configured endpoints.
package server

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/eureka-automation/eureka-site/internal/careers"
	careerscmd "github.com/eureka-automation/eureka-site/internal/commands/careers"
	"github.com/eureka-automation/eureka-site/internal/i18n"
	"github.com/eureka-automation/eureka-site/internal/logging"
	"github.com/eureka-automation/eureka-site/pkg/interfaces"
)

// Config controls listening and the served tree.
type Config struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	OutputDir       string
	BasePath        string
	Limits          careers.Limits
}

// ApplicationRelay executes careers application commands.
type ApplicationRelay interface {
	Execute(ctx context.Context, msg careerscmd.SubmitApplicationCommand) error
}

// ContactRelay executes contact commands.
type ContactRelay interface {
	Execute(ctx context.Context, msg careerscmd.SendContactCommand) error
}

// Translator resolves the locale-appropriate outcome messages.
type Translator interface {
	Translate(locale, key string, args ...any) (string, error)
}

// Deps are the collaborators the server routes to. Nil relays answer 503.
type Deps struct {
	Resolver     *i18n.Resolver
	Applications ApplicationRelay
	Contact      ContactRelay
	Translator   Translator
	Metrics      http.Handler
	Logger       interfaces.Logger
}

// Server wraps the gin engine and its http.Server.
type Server struct {
	cfg    Config
	deps   Deps
	engine *gin.Engine
	logger interfaces.Logger
}

// New builds the router. It panics when deps.Resolver is nil.
func New(cfg Config, deps Deps) *Server {
	if deps.Resolver == nil {
		panic("server: resolver is required")
	}
	if deps.Logger == nil {
		deps.Logger = logging.NoOp()
	}
	if cfg.Addr == "" {
		cfg.Addr = ":8080"
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	cfg.BasePath = normalizeBase(cfg.BasePath)

	s := &Server{
		cfg:    cfg,
		deps:   deps,
		logger: deps.Logger,
	}
	s.engine = s.routes()
	return s
}

// Handler exposes the router, mostly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.engine,
		ReadTimeout:       s.cfg.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.cfg.Addr, "base_path", s.cfg.BasePath, "output", s.cfg.OutputDir)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("server shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) routes() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), RequestID(), RequestLogger(s.logger))
	if mw := s.cors(); mw != nil {
		router.Use(mw)
	}

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	if s.deps.Metrics != nil {
		router.GET("/metrics", gin.WrapH(s.deps.Metrics))
	}

	s.mountAPI(router.Group("/api"))
	if s.cfg.BasePath != "" {
		s.mountAPI(router.Group(s.cfg.BasePath + "/api"))
	}

	router.NoRoute(s.serveStatic)
	return router
}

func (s *Server) mountAPI(api *gin.RouterGroup) {
	api.POST("/careers/applications", s.submitApplication)
	api.POST("/contact", s.sendContact)
}

func (s *Server) cors() gin.HandlerFunc {
	origins := make([]string, 0, len(s.cfg.AllowedOrigins))
	for _, origin := range s.cfg.AllowedOrigins {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return nil
	}

	cfg := cors.Config{
		AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", RequestIDHeader},
		ExposeHeaders: []string{RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}
	if len(origins) == 1 && origins[0] == "*" {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowOrigins = origins
	}
	return cors.New(cfg)
}

func normalizeBase(base string) string {
	base = strings.Trim(strings.TrimSpace(base), "/")
	if base == "" {
		return ""
	}
	return "/" + base
}
