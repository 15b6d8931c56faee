package clients

import (
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/valkey-io/valkey-go"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	VALKEY_LATEST_KEY_PREFIX = "report:latest:"
	VALKEY_LATEST_TTL        = 24 * time.Hour
)

type ValkeyConfig struct {
	Address  string
	Password string
	TLS      bool
}

// ValkeyClient caches finished reports: by request key for repeat runs, and
// as the latest report per subreddit.
type ValkeyClient struct {
	Client valkey.Client
}

func NewValkeyClient(ctx context.Context, cfg ValkeyConfig) (*ValkeyClient, error) {
	opts := valkey.ClientOption{
		InitAddress:      []string{cfg.Address},
		Password:         cfg.Password,
		ConnWriteTimeout: 5 * time.Second,
		SelectDB:         0,
	}
	if cfg.TLS {
		opts.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
	}

	client, err := valkey.NewClient(opts)
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to create Valkey client: %w", err)
	}

	vc := &ValkeyClient{Client: client}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := vc.Ping(pingCtx); err != nil {
		client.Close()
		return nil, err
	}

	slog.Info("[ValkeyClient] Successfully connected to valkey", slog.String("address", cfg.Address))
	return vc, nil
}

func (vc *ValkeyClient) Close() {
	vc.Client.Close()
}

func (vc *ValkeyClient) Ping(ctx context.Context) error {
	if err := vc.Client.Do(ctx, vc.Client.B().Ping().Build()).Error(); err != nil {
		return fmt.Errorf("[ValkeyClient] failed to ping Valkey: %w", err)
	}
	return nil
}

// CachedReport returns (nil, nil) when key is absent.
func (vc *ValkeyClient) CachedReport(ctx context.Context, key string) (*models.Report, error) {
	data, err := vc.Client.Do(ctx, vc.Client.B().Get().Key(key).Build()).AsBytes()
	if valkey.IsValkeyNil(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to read %s: %w", key, err)
	}

	var report models.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("[ValkeyClient] failed to decode cached report %s: %w", key, err)
	}
	return &report, nil
}

func (vc *ValkeyClient) CacheReport(ctx context.Context, key string, report *models.Report, ttl time.Duration) error {
	return vc.setWithExpiry(ctx, key, report, ttl)
}

// SaveReport keeps the report as the latest one for its subreddit.
func (vc *ValkeyClient) SaveReport(ctx context.Context, report *models.Report) error {
	return vc.setWithExpiry(ctx, LatestReportKey(report.Subreddit), report, VALKEY_LATEST_TTL)
}

func (vc *ValkeyClient) LatestReport(ctx context.Context, subreddit string) (*models.Report, error) {
	return vc.CachedReport(ctx, LatestReportKey(subreddit))
}

func LatestReportKey(subreddit string) string {
	return VALKEY_LATEST_KEY_PREFIX + strings.ToLower(subreddit)
}

func (vc *ValkeyClient) setWithExpiry(ctx context.Context, key string, report *models.Report, ttl time.Duration) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("[ValkeyClient] failed to encode report %s: %w", report.RunID, err)
	}

	completed := []valkey.Completed{
		vc.Client.B().Set().Key(key).Value(valkey.BinaryString(data)).Build(),
		vc.Client.B().Expire().Key(key).Seconds(max(int64(ttl.Seconds()), 1)).Build(),
	}
	for _, res := range vc.Client.DoMulti(ctx, completed...) {
		if err := res.Error(); err != nil {
			return fmt.Errorf("[ValkeyClient] failed to store %s: %w", key, err)
		}
	}

	slog.Debug("[ValkeyClient] Stored report",
		slog.String("key", key),
		slog.String("run_id", report.RunID),
		slog.Duration("ttl", ttl))
	return nil
}
