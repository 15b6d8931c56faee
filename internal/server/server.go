// Package server exposes the analyzer and stored reports over HTTP.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	DefaultAnalyzeTimeout = 2 * time.Minute
	DefaultPostLimit      = 25
	DefaultCommentsPerPost = 5
)

// analyzer runs one analysis end to end.
type analyzer interface {
	Run(ctx context.Context, req models.AnalysisRequest) (*models.Report, error)
}

type reportGetter interface {
	GetReport(ctx context.Context, id string) (*models.Report, error)
}

// reportStore reads back persisted reports. Nil disables the listing route.
type reportStore interface {
	reportGetter
	ListReports(ctx context.Context, subreddit string, limit int) ([]models.ReportMeta, error)
}

// latestReports returns (nil, nil) when a subreddit has no recent report.
type latestReports interface {
	LatestReport(ctx context.Context, subreddit string) (*models.Report, error)
}

type healthCheck struct {
	name string
	fn   func(context.Context) error
}

type Config struct {
	Port            string
	AnalyzeTimeout  time.Duration
	DefaultPosts    int
	DefaultComments int
}

type Server struct {
	echo      *echo.Echo
	config    Config
	analyzer  analyzer
	store     reportStore
	archives  []reportGetter
	latest    latestReports
	checks    []healthCheck
	startTime time.Time
}

type Option func(*Server)

// WithReportStore enables the /api/reports routes.
func WithReportStore(store reportStore) Option {
	return func(s *Server) { s.store = store }
}

// WithReportArchive adds a store consulted by /api/reports/:id when the
// primary store does not know the run.
func WithReportArchive(archive reportGetter) Option {
	return func(s *Server) { s.archives = append(s.archives, archive) }
}

// WithLatestReports enables /api/subreddits/:name/latest.
func WithLatestReports(latest latestReports) Option {
	return func(s *Server) { s.latest = latest }
}

// WithHealthCheck adds a dependency check to /health/ready.
func WithHealthCheck(name string, fn func(context.Context) error) Option {
	return func(s *Server) { s.checks = append(s.checks, healthCheck{name: name, fn: fn}) }
}

func NewServer(cfg Config, a analyzer, opts ...Option) (*Server, error) {
	if a == nil {
		return nil, fmt.Errorf("[Server] %w: analyzer is required", models.ErrInvalidArgument)
	}
	if cfg.AnalyzeTimeout <= 0 {
		cfg.AnalyzeTimeout = DefaultAnalyzeTimeout
	}
	if cfg.DefaultPosts <= 0 {
		cfg.DefaultPosts = DefaultPostLimit
	}
	if cfg.DefaultComments < 0 {
		cfg.DefaultComments = DefaultCommentsPerPost
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	srv := &Server{
		echo:      e,
		config:    cfg,
		analyzer:  a,
		startTime: time.Now(),
	}
	for _, opt := range opts {
		opt(srv)
	}

	srv.registerRoutes()

	return srv, nil
}

func (s *Server) Start() error {
	slog.Info("[Server] Starting", slog.String("port", s.config.Port))
	return s.echo.Start(fmt.Sprintf(":%s", s.config.Port))
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}
