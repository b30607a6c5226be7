package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"tribuna/internal/config"
	"tribuna/internal/models"
)

// ValkeyClient caches match metadata and price-quote responses. Both are
// read-heavy and tolerate short staleness; holds and payments never go
// through the cache.
type ValkeyClient struct {
	client   *redis.Client
	quoteTTL time.Duration
	matchTTL time.Duration
}

func NewValkeyClient(cfg config.CacheConfig) (*ValkeyClient, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           0,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
		DialTimeout:  5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Valkey: %w", err)
	}

	return &ValkeyClient{
		client:   rdb,
		quoteTTL: cfg.QuoteTTL,
		matchTTL: cfg.MatchTTL,
	}, nil
}

func matchKey(matchID int64) string {
	return fmt.Sprintf("match:%d", matchID)
}

func quoteKey(matchID int64, sectionID string) string {
	return fmt.Sprintf("quote:%d:%s", matchID, sectionID)
}

func (v *ValkeyClient) GetMatch(ctx context.Context, matchID int64) (*models.Match, error) {
	raw, err := v.client.Get(ctx, matchKey(matchID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("match not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}

	var match models.Match
	if err := json.Unmarshal(raw, &match); err != nil {
		return nil, fmt.Errorf("invalid match in cache: %w", err)
	}
	return &match, nil
}

func (v *ValkeyClient) SetMatch(ctx context.Context, match *models.Match) {
	raw, err := json.Marshal(match)
	if err != nil {
		return
	}
	v.client.Set(ctx, matchKey(match.ID), raw, v.matchTTL)
}

// GetQuoteRaw returns the cached quote JSON untouched so handlers can
// serve it without a decode/encode round trip.
func (v *ValkeyClient) GetQuoteRaw(ctx context.Context, matchID int64, sectionID string) ([]byte, error) {
	raw, err := v.client.Get(ctx, quoteKey(matchID, sectionID)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, fmt.Errorf("quote not in cache")
		}
		return nil, fmt.Errorf("cache lookup error: %w", err)
	}
	return raw, nil
}

func (v *ValkeyClient) SetQuote(ctx context.Context, matchID int64, sectionID string, quote *models.QuoteResponse) {
	raw, err := json.Marshal(quote)
	if err != nil {
		return
	}
	v.client.Set(ctx, quoteKey(matchID, sectionID), raw, v.quoteTTL)
}

func (v *ValkeyClient) InvalidateMatch(ctx context.Context, matchID int64) {
	v.client.Del(ctx, matchKey(matchID))
}

func (v *ValkeyClient) Close() error {
	return v.client.Close()
}
