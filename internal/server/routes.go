package server

import (
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func (s *Server) registerRoutes() {
	// Observability
	s.echo.GET("/health/live", s.handleLiveness)
	s.echo.GET("/health/ready", s.handleReadiness)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	s.echo.POST("/api/analyze", s.handleAnalyze)

	if s.store != nil {
		s.echo.GET("/api/reports", s.handleListReports)
	}
	if len(s.readers()) > 0 {
		s.echo.GET("/api/reports/:id", s.handleGetReport)
	}
	if s.latest != nil {
		s.echo.GET("/api/subreddits/:name/latest", s.handleLatestReport)
	}
}
