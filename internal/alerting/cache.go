package alerting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// ErrNoReport is returned when no dashboard report has been cached yet
var ErrNoReport = errors.New("no report cached")

const latestReportKey = "dashboard_report:latest"

// ReportCache stores the most recent dashboard report in Redis so readers
// never wait on an analysis cycle
type ReportCache struct {
	redis *redis.Client
	ttl   time.Duration
}

// NewReportCache creates a new report cache with the given TTL
func NewReportCache(redisClient *redis.Client, ttl time.Duration) *ReportCache {
	return &ReportCache{redis: redisClient, ttl: ttl}
}

// StoreLatest serializes the report and stores it as the latest
func (rc *ReportCache) StoreLatest(ctx context.Context, report interface{}) error {
	data, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}

	if err := rc.redis.Set(ctx, latestReportKey, data, rc.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store report in Redis: %w", err)
	}

	return nil
}

// Latest returns the raw JSON of the most recent report
func (rc *ReportCache) Latest(ctx context.Context) ([]byte, error) {
	data, err := rc.redis.Get(ctx, latestReportKey).Bytes()
	if err == redis.Nil {
		return nil, ErrNoReport
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read report from Redis: %w", err)
	}
	return data, nil
}
