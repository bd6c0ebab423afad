package ui

import (
	"embed"
	"fmt"
	"html/template"
	"net/http"
	"time"

	"discscore/internal"
	"discscore/internal/container"
	"discscore/internal/metrics"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Server is the HTTP surface over the discrepancy and sample-size services
type Server struct {
	router    *gin.Engine
	container *container.Container
	templates *template.Template
	logger    *internal.Logger
	started   time.Time
}

// NewServer creates a server wired to the container's services
func NewServer(c *container.Container) (*Server, error) {
	if c == nil {
		return nil, fmt.Errorf("container cannot be nil")
	}
	gin.SetMode(c.Config.Server.GinMode)

	funcMap := template.FuncMap{
		"pct": func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
	}
	templates, err := template.New("").Funcs(funcMap).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:    gin.New(),
		container: c,
		templates: templates,
		logger:    internal.DefaultLogger.With("http"),
		started:   time.Now(),
	}
	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// setupRoutes registers the API, report and operational endpoints
func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)
	if s.container.Config.Metrics.Enabled {
		s.router.GET("/metrics", gin.WrapH(metrics.Handler()))
	}

	api := s.router.Group("/api")
	api.POST("/discrepancy", s.handleScore)
	api.POST("/discrepancy/upload", s.handleScoreUpload)
	api.POST("/bootstrap", s.handleBootstrap)
	api.POST("/shuffle", s.handleShuffle)

	solve := api.Group("/samplesize")
	solve.POST("/single", s.handleSolveSingle)
	solve.POST("/dual", s.handleSolveDual)
	solve.POST("/simulation", s.handleSimulate)

	api.GET("/runs", s.handleListRuns)
	api.GET("/runs/:id", s.handleGetRun)

	s.router.GET("/report/dual", s.handleDualReport)
}

// Handler exposes the router for embedding and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

// Start listens on addr until the server fails
func (s *Server) Start(addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	s.logger.Info("listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"ledger":  s.container.Runs.Enabled(),
		"uptime":  time.Since(s.started).Round(time.Second).String(),
		"workers": s.container.Config.Engine.Workers,
	})
}
