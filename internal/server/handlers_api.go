package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/clients"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/db"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/processing"
)

// analyzeRequest leaves limits as pointers so an omitted field picks up the
// server default while an explicit 0 comments still means "posts only".
type analyzeRequest struct {
	Subreddit       string `json:"subreddit"`
	PostLimit       *int   `json:"post_limit"`
	CommentsPerPost *int   `json:"comments_per_post"`
	UseAI           bool   `json:"use_ai"`
	Refresh         bool   `json:"refresh"`
}

func (s *Server) toAnalysisRequest(body analyzeRequest) models.AnalysisRequest {
	req := models.AnalysisRequest{
		Subreddit:       body.Subreddit,
		PostLimit:       s.config.DefaultPosts,
		CommentsPerPost: s.config.DefaultComments,
		UseAI:           body.UseAI,
		Refresh:         body.Refresh,
	}
	if body.PostLimit != nil {
		req.PostLimit = *body.PostLimit
	}
	if body.CommentsPerPost != nil {
		req.CommentsPerPost = *body.CommentsPerPost
	}
	return req
}

func (s *Server) handleAnalyze(c echo.Context) error {
	var body analyzeRequest
	if err := c.Bind(&body); err != nil {
		return errorJSON(c, http.StatusBadRequest, "invalid request body")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), s.config.AnalyzeTimeout)
	defer cancel()

	report, err := s.analyzer.Run(ctx, s.toAnalysisRequest(body))
	if err != nil {
		status := statusFor(err)
		if status >= 500 {
			slog.Error("[Server] Analysis failed",
				slog.String("subreddit", body.Subreddit),
				slog.String("error", err.Error()))
		}
		return errorJSON(c, status, err.Error())
	}

	return c.JSON(http.StatusOK, report)
}

// readers lists the report stores in lookup order: primary, then archives.
func (s *Server) readers() []reportGetter {
	var out []reportGetter
	if s.store != nil {
		out = append(out, s.store)
	}
	return append(out, s.archives...)
}

func (s *Server) handleGetReport(c echo.Context) error {
	id := c.Param("id")
	for _, reader := range s.readers() {
		report, err := reader.GetReport(c.Request().Context(), id)
		if err == nil {
			return c.JSON(http.StatusOK, report)
		}
		if !errors.Is(err, db.ErrReportNotFound) {
			slog.Error("[Server] Failed to load report", slog.String("run_id", id), slog.String("error", err.Error()))
			return errorJSON(c, http.StatusInternalServerError, "failed to load report")
		}
	}
	return errorJSON(c, http.StatusNotFound, "report not found")
}

func (s *Server) handleLatestReport(c echo.Context) error {
	req, err := processing.NormalizeRequest(models.AnalysisRequest{Subreddit: c.Param("name")})
	if err != nil {
		return errorJSON(c, http.StatusBadRequest, err.Error())
	}

	report, err := s.latest.LatestReport(c.Request().Context(), req.Subreddit)
	if err != nil {
		slog.Error("[Server] Failed to load latest report",
			slog.String("subreddit", req.Subreddit),
			slog.String("error", err.Error()))
		return errorJSON(c, http.StatusInternalServerError, "failed to load latest report")
	}
	if report == nil {
		return errorJSON(c, http.StatusNotFound, "no recent report for subreddit")
	}
	return c.JSON(http.StatusOK, report)
}

func (s *Server) handleListReports(c echo.Context) error {
	limit := db.DefaultListLimit
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return errorJSON(c, http.StatusBadRequest, "limit must be a positive integer")
		}
		limit = n
	}

	metas, err := s.store.ListReports(c.Request().Context(), c.QueryParam("subreddit"), limit)
	if err != nil {
		slog.Error("[Server] Failed to list reports", slog.String("error", err.Error()))
		return errorJSON(c, http.StatusInternalServerError, "failed to list reports")
	}
	return c.JSON(http.StatusOK, map[string]any{"reports": metas})
}

// statusFor maps pipeline errors onto HTTP statuses.
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		return http.StatusBadRequest
	case errors.Is(err, clients.ErrSubredditNotFound):
		return http.StatusNotFound
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, processing.ErrFetch):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, status int, msg string) error {
	return c.JSON(status, map[string]string{"error": msg})
}
