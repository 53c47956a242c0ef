package portfolio

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	keyEquityCurve = "fusionfx:portfolio:equity"
	keyTrades      = "fusionfx:portfolio:trades"

	// Journal entries older than a year are of no use to the trailing
	// window and get trimmed on write.
	journalRetention = 365 * 24 * time.Hour
)

// RedisStore keeps the equity curve and trade journal in Redis sorted
// sets scored by unix timestamp, so trailing-window reads are a single
// ZRANGEBYSCORE.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore connects to Redis and verifies the connection.
func NewRedisStore(ctx context.Context, opts *redis.Options) (*RedisStore, error) {
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	s := &RedisStore{client: client}

	// Seed the curve so metrics are computable from the first fill.
	n, err := client.ZCard(ctx, keyEquityCurve).Result()
	if err != nil {
		return nil, fmt.Errorf("redis seed check failed: %w", err)
	}
	if n == 0 {
		seed := EquityPoint{Timestamp: time.Now().UTC(), Equity: seedEquity}
		if err := s.AppendEquity(ctx, seed); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// AppendEquity records a new equity sample.
func (s *RedisStore) AppendEquity(ctx context.Context, point EquityPoint) error {
	data, err := json.Marshal(point)
	if err != nil {
		return fmt.Errorf("failed to serialize equity point: %w", err)
	}
	return s.client.ZAdd(ctx, keyEquityCurve, redis.Z{
		Score:  float64(point.Timestamp.UnixNano()),
		Member: data,
	}).Err()
}

// AppendTrade records a filled trade and trims entries past retention.
func (s *RedisStore) AppendTrade(ctx context.Context, trade TradeRecord) error {
	data, err := json.Marshal(trade)
	if err != nil {
		return fmt.Errorf("failed to serialize trade: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.ZAdd(ctx, keyTrades, redis.Z{
		Score:  float64(trade.Timestamp.UnixNano()),
		Member: data,
	})
	horizon := time.Now().Add(-journalRetention).UnixNano()
	pipe.ZRemRangeByScore(ctx, keyTrades, "-inf", fmt.Sprintf("%d", horizon))
	_, err = pipe.Exec(ctx)
	return err
}

// EquityCurve returns the full equity curve in timestamp order.
func (s *RedisStore) EquityCurve(ctx context.Context) ([]EquityPoint, error) {
	raw, err := s.client.ZRange(ctx, keyEquityCurve, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read equity curve: %w", err)
	}

	curve := make([]EquityPoint, 0, len(raw))
	for _, member := range raw {
		var p EquityPoint
		if err := json.Unmarshal([]byte(member), &p); err != nil {
			return nil, fmt.Errorf("corrupt equity point: %w", err)
		}
		curve = append(curve, p)
	}
	return curve, nil
}

// TradesSince returns trades with a timestamp at or after cutoff.
func (s *RedisStore) TradesSince(ctx context.Context, cutoff time.Time) ([]TradeRecord, error) {
	raw, err := s.client.ZRangeByScore(ctx, keyTrades, &redis.ZRangeBy{
		Min: fmt.Sprintf("%d", cutoff.UnixNano()),
		Max: "+inf",
	}).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read trades: %w", err)
	}

	trades := make([]TradeRecord, 0, len(raw))
	for _, member := range raw {
		var t TradeRecord
		if err := json.Unmarshal([]byte(member), &t); err != nil {
			return nil, fmt.Errorf("corrupt trade record: %w", err)
		}
		trades = append(trades, t)
	}
	return trades, nil
}

// Close closes the underlying Redis connection.
func (s *RedisStore) Close() error { return s.client.Close() }
