package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/config"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/app"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/logging"
	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

type analyzeFlags struct {
	subreddit string
	limit     int
	comments  int
	useAI     bool
	refresh   bool
	summary   bool
	env       string
}

func newRootCmd() *cobra.Command {
	flags := &analyzeFlags{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Analyze sentiment and themes of a subreddit",
		Long: `analyze fetches recent posts and comments of a subreddit, scores their
sentiment, extracts the main themes and prints the insight report as JSON.

Examples:
  analyze --subreddit GooglePixel
  analyze -s golang --limit 50 --comments 10
  analyze -s golang --ai --refresh       # LLM narrative, bypass the cache
  analyze -s golang --summary-only       # print only the insight summary`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnalyze(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.subreddit, "subreddit", "s", "", "subreddit to analyze (required)")
	cmd.Flags().IntVarP(&flags.limit, "limit", "l", 0, "number of posts to fetch (default from DEFAULT_POST_LIMIT)")
	cmd.Flags().IntVarP(&flags.comments, "comments", "c", -1, "comments per post (default from DEFAULT_COMMENTS_PER_POST)")
	cmd.Flags().BoolVar(&flags.useAI, "ai", false, "generate the narrative with the configured LLM")
	cmd.Flags().BoolVar(&flags.refresh, "refresh", false, "ignore cached reports")
	cmd.Flags().BoolVar(&flags.summary, "summary-only", false, "print only the insight summary")
	cmd.Flags().StringVar(&flags.env, "env", envOr("APP_ENV", "dev"), "environment file to load from config/envs")
	_ = cmd.MarkFlagRequired("subreddit")

	return cmd
}

func runAnalyze(cmd *cobra.Command, flags *analyzeFlags) error {
	config.LoadEnv(flags.env)
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	// Logs go to stderr so stdout stays valid JSON.
	slog.SetDefault(logging.NewLogger(os.Stderr, level))

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer a.Close()

	req := buildRequest(cfg, flags)
	analyzeCtx, cancel := context.WithTimeout(ctx, cfg.AnalyzeTimeout)
	defer cancel()

	report, err := a.Analyzer.Run(analyzeCtx, req)
	if err != nil {
		return err
	}

	if flags.summary {
		return writeJSON(cmd.OutOrStdout(), report.Summary)
	}
	return writeJSON(cmd.OutOrStdout(), report)
}

// buildRequest fills limits the user did not set from the configured defaults.
func buildRequest(cfg *config.Config, flags *analyzeFlags) models.AnalysisRequest {
	req := models.AnalysisRequest{
		Subreddit:       flags.subreddit,
		PostLimit:       flags.limit,
		CommentsPerPost: flags.comments,
		UseAI:           flags.useAI,
		Refresh:         flags.refresh,
	}
	if req.PostLimit <= 0 {
		req.PostLimit = cfg.DefaultPostLimit
	}
	if req.CommentsPerPost < 0 {
		req.CommentsPerPost = cfg.DefaultComments
	}
	return req
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
