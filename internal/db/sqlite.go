package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

var ErrReportNotFound = errors.New("report not found")

const DefaultListLimit = 20

// SQLiteStore keeps every report as a JSON document next to the columns used
// for listing.
type SQLiteStore struct {
	db *sql.DB
}

// OpenSQLite opens (or creates) the database at path. ":memory:" gives a
// private in-process database.
func OpenSQLite(ctx context.Context, path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("[SQLite] failed to open %s: %w", path, err)
	}
	if path == ":memory:" || strings.Contains(path, "mode=memory") {
		// Every connection to :memory: would see its own empty database.
		db.SetMaxOpenConns(1)
	}

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA busy_timeout=5000"} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("[SQLite] %s failed: %w", pragma, err)
		}
	}

	if err := initSchema(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
CREATE TABLE IF NOT EXISTS reports (
	id TEXT PRIMARY KEY,
	subreddit TEXT NOT NULL,
	generated_at INTEGER NOT NULL,
	item_count INTEGER NOT NULL,
	mean_polarity REAL NOT NULL,
	narrative_source TEXT NOT NULL,
	payload TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_reports_subreddit ON reports(subreddit COLLATE NOCASE, generated_at DESC);
`
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("[SQLite] failed to create schema: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// SaveReport inserts the report, replacing an earlier copy with the same run ID.
func (s *SQLiteStore) SaveReport(ctx context.Context, report *models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("[SQLite] failed to encode report %s: %w", report.RunID, err)
	}

	_, err = s.db.ExecContext(ctx, `
INSERT INTO reports (id, subreddit, generated_at, item_count, mean_polarity, narrative_source, payload)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	subreddit = excluded.subreddit,
	generated_at = excluded.generated_at,
	item_count = excluded.item_count,
	mean_polarity = excluded.mean_polarity,
	narrative_source = excluded.narrative_source,
	payload = excluded.payload`,
		report.RunID,
		report.Subreddit,
		report.GeneratedAt.UnixMilli(),
		report.Summary.ItemCount,
		report.Summary.MeanPolarity,
		string(report.NarrativeSource),
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("[SQLite] failed to save report %s: %w", report.RunID, err)
	}
	return nil
}

func (s *SQLiteStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `SELECT payload FROM reports WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("[SQLite] %w: %s", ErrReportNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("[SQLite] failed to load report %s: %w", id, err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(payload), &report); err != nil {
		return nil, fmt.Errorf("[SQLite] failed to decode report %s: %w", id, err)
	}
	return &report, nil
}

// ListReports returns the newest reports first. An empty subreddit lists all
// of them; limit < 1 uses DefaultListLimit.
func (s *SQLiteStore) ListReports(ctx context.Context, subreddit string, limit int) ([]models.ReportMeta, error) {
	if limit < 1 {
		limit = DefaultListLimit
	}

	query := `SELECT id, subreddit, generated_at, item_count, mean_polarity, narrative_source FROM reports`
	args := []any{}
	if subreddit != "" {
		query += ` WHERE subreddit = ? COLLATE NOCASE`
		args = append(args, subreddit)
	}
	query += ` ORDER BY generated_at DESC, id DESC LIMIT ?`
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("[SQLite] failed to list reports: %w", err)
	}
	defer rows.Close()

	metas := []models.ReportMeta{}
	for rows.Next() {
		var (
			m           models.ReportMeta
			generatedAt int64
			source      string
		)
		if err := rows.Scan(&m.RunID, &m.Subreddit, &generatedAt, &m.ItemCount, &m.MeanPolarity, &source); err != nil {
			return nil, fmt.Errorf("[SQLite] failed to scan report row: %w", err)
		}
		m.GeneratedAt = time.UnixMilli(generatedAt).UTC()
		m.NarrativeSource = models.NarrativeSource(source)
		metas = append(metas, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("[SQLite] failed to list reports: %w", err)
	}
	return metas, nil
}
