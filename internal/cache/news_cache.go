// Package cache keeps recent provider responses in Redis so repeated
// dashboard loads inside the staleness window skip the upstream call.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/news"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	DefaultTTL = 60 * time.Second
	keyPrefix  = "tickerpulse:news:"
)

type NewsCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewNewsCache(rdb redis.Cmdable, ttl time.Duration) *NewsCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &NewsCache{rdb: rdb, ttl: ttl}
}

type entry struct {
	Ticker string      `json:"ticker"`
	Count  int         `json:"count"`
	Items  []itemEntry `json:"items"`
}

type itemEntry struct {
	ID          string   `json:"id"`
	Title       string   `json:"title"`
	Source      string   `json:"source"`
	Date        string   `json:"date"`
	ArticleURL  string   `json:"article_url,omitempty"`
	Description string   `json:"description,omitempty"`
	Tickers     []string `json:"tickers,omitempty"`
}

// Key is the cache key for q once defaults are applied.
func Key(q news.Query) string {
	q = q.WithDefaults()
	return fmt.Sprintf("%s%s:%s:%d:%s:%s", keyPrefix, q.Ticker, q.Order, q.Limit, q.Sort,
		strconv.FormatFloat(q.WindowHours, 'f', -1, 64))
}

// Get reports a miss as (nil, false, nil).
func (c *NewsCache) Get(ctx context.Context, q news.Query) (*model.NewsResult, bool, error) {
	raw, err := c.rdb.Get(ctx, Key(q)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var e entry
	if err := json.Unmarshal(raw, &e); err != nil {
		return nil, false, fmt.Errorf("decoding cached news: %w", err)
	}

	res := &model.NewsResult{Ticker: e.Ticker, Count: e.Count, Items: make([]model.NewsItem, len(e.Items))}
	for i, it := range e.Items {
		res.Items[i] = model.NewsItem{
			ID:          it.ID,
			Title:       it.Title,
			Source:      it.Source,
			Date:        it.Date,
			ArticleURL:  it.ArticleURL,
			Description: it.Description,
			Tickers:     it.Tickers,
		}
	}
	return res, true, nil
}

func (c *NewsCache) Set(ctx context.Context, q news.Query, res *model.NewsResult) error {
	e := entry{Ticker: res.Ticker, Count: res.Count, Items: make([]itemEntry, len(res.Items))}
	for i, it := range res.Items {
		e.Items[i] = itemEntry{
			ID:          it.ID,
			Title:       it.Title,
			Source:      it.Source,
			Date:        it.Date,
			ArticleURL:  it.ArticleURL,
			Description: it.Description,
			Tickers:     it.Tickers,
		}
	}

	raw, err := json.Marshal(e)
	if err != nil {
		return err
	}
	return c.rdb.Set(ctx, Key(q), raw, c.ttl).Err()
}

// Ping reports whether Redis answers.
func (c *NewsCache) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}
