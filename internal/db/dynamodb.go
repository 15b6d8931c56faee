package db

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/jonboulle/clockwork"

	"github.com/Tripathiatharvv/reddit-insight-analyzer/internal/models"
)

const (
	REPORTS_TABLE_NAME = "InsightReports"
	DEFAULT_REPORT_TTL = 30 * 24 * time.Hour
)

// DynamoAPI is the subset of the DynamoDB client the report table needs.
type DynamoAPI interface {
	PutItem(ctx context.Context, params *dynamodb.PutItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error)
	GetItem(ctx context.Context, params *dynamodb.GetItemInput, optFns ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error)
}

// reportRecord is one item of the reports table. The full report travels as
// a JSON payload; the top-level attributes serve queries and TTL expiry.
type reportRecord struct {
	RunID           string  `dynamodbav:"run_id"`
	Subreddit       string  `dynamodbav:"subreddit"`
	GeneratedAt     int64   `dynamodbav:"generated_at"`
	ItemCount       int     `dynamodbav:"item_count"`
	MeanPolarity    float64 `dynamodbav:"mean_polarity"`
	NarrativeSource string  `dynamodbav:"narrative_source"`
	Payload         string  `dynamodbav:"payload"`
	ExpiresAt       int64   `dynamodbav:"expires_at"`
}

type DynamoStore struct {
	client DynamoAPI
	table  string
	ttl    time.Duration
	clock  clockwork.Clock
}

func NewDynamoStore(client DynamoAPI, table string, ttl time.Duration, clock clockwork.Clock) *DynamoStore {
	if table == "" {
		table = REPORTS_TABLE_NAME
	}
	if ttl <= 0 {
		ttl = DEFAULT_REPORT_TTL
	}
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &DynamoStore{client: client, table: table, ttl: ttl, clock: clock}
}

func (ds *DynamoStore) SaveReport(ctx context.Context, report *models.Report) error {
	payload, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to encode report %s: %w", report.RunID, err)
	}

	item, err := attributevalue.MarshalMap(reportRecord{
		RunID:           report.RunID,
		Subreddit:       report.Subreddit,
		GeneratedAt:     report.GeneratedAt.Unix(),
		ItemCount:       report.Summary.ItemCount,
		MeanPolarity:    report.Summary.MeanPolarity,
		NarrativeSource: string(report.NarrativeSource),
		Payload:         string(payload),
		ExpiresAt:       ds.clock.Now().Add(ds.ttl).Unix(),
	})
	if err != nil {
		return fmt.Errorf("[DynamoDB] failed to marshal report %s: %w", report.RunID, err)
	}

	if _, err := ds.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(ds.table),
		Item:      item,
	}); err != nil {
		return fmt.Errorf("[DynamoDB] failed to put report %s: %w", report.RunID, err)
	}

	slog.Debug("[DynamoDB] Stored report",
		slog.String("table", ds.table),
		slog.String("run_id", report.RunID))
	return nil
}

func (ds *DynamoStore) GetReport(ctx context.Context, id string) (*models.Report, error) {
	out, err := ds.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(ds.table),
		Key: map[string]types.AttributeValue{
			"run_id": &types.AttributeValueMemberS{Value: id},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("[DynamoDB] failed to get report %s: %w", id, err)
	}
	if len(out.Item) == 0 {
		return nil, fmt.Errorf("[DynamoDB] %w: %s", ErrReportNotFound, id)
	}

	var record reportRecord
	if err := attributevalue.UnmarshalMap(out.Item, &record); err != nil {
		return nil, fmt.Errorf("[DynamoDB] failed to unmarshal report %s: %w", id, err)
	}

	var report models.Report
	if err := json.Unmarshal([]byte(record.Payload), &report); err != nil {
		return nil, fmt.Errorf("[DynamoDB] failed to decode report %s: %w", id, err)
	}
	return &report, nil
}
