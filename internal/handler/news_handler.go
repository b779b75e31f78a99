package handler

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"strings"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/news"

	"github.com/gin-gonic/gin"
)

const maxNewsLimit = 1000

type NewsFetcher interface {
	Fetch(ctx context.Context, q news.Query) (*model.NewsResult, error)
	Name() string
}

type NewsCache interface {
	Get(ctx context.Context, q news.Query) (*model.NewsResult, bool, error)
	Set(ctx context.Context, q news.Query, res *model.NewsResult) error
}

type NewsHandler struct {
	fetcher NewsFetcher
	cache   NewsCache
}

// NewNewsHandler accepts a nil cache.
func NewNewsHandler(fetcher NewsFetcher, cache NewsCache) *NewsHandler {
	return &NewsHandler{fetcher: fetcher, cache: cache}
}

func (h *NewsHandler) GetNews(c *gin.Context) {
	q := parseNewsQuery(c)
	ctx := c.Request.Context()

	// Queries that will fail validation go straight to the fetcher so its
	// credential check still reports first.
	cacheable := h.cache != nil && q.Validate() == nil

	if cacheable {
		res, ok, err := h.cache.Get(ctx, q)
		if err != nil {
			slog.Warn("news cache unavailable, bypassing", "ticker", q.Ticker, "error", err)
		} else if ok {
			c.JSON(http.StatusOK, toNewsResponse(res))
			return
		}
	}

	res, err := h.fetcher.Fetch(ctx, q)
	if err != nil {
		respondError(c, err, "Failed to fetch news from "+h.fetcher.Name()+" API")
		return
	}

	if cacheable {
		if err := h.cache.Set(ctx, q, res); err != nil {
			slog.Warn("error caching news", "ticker", q.Ticker, "error", err)
		}
	}

	c.JSON(http.StatusOK, toNewsResponse(res))
}

func parseNewsQuery(c *gin.Context) news.Query {
	q := news.Query{
		Ticker: strings.TrimSpace(c.Query("ticker")),
		Order:  c.Query("order"),
		Sort:   c.Query("sort"),
		Limit:  getQueryInt("limit", news.DefaultLimit, c),
	}
	if q.Limit > maxNewsLimit {
		slog.Warn("query parameter exceeds max, clamping", "param", "limit", "value", q.Limit, "max", maxNewsLimit)
		q.Limit = maxNewsLimit
	}

	q.WindowHours = news.DefaultWindowHours
	if raw := c.Query("timeWindowHours"); raw != "" {
		// An explicit value that is not a positive number becomes NaN so
		// WithDefaults cannot replace it and Validate rejects it.
		hours, err := strconv.ParseFloat(raw, 64)
		if err != nil || !(hours > 0) {
			hours = math.NaN()
		}
		q.WindowHours = hours
	}

	return q.WithDefaults()
}

func toNewsResponse(res *model.NewsResult) NewsResponse {
	items := make([]NewsItemResponse, len(res.Items))
	for i, item := range res.Items {
		items[i] = toNewsItemResponse(item)
	}
	return NewsResponse{News: items, Count: res.Count, Ticker: res.Ticker}
}

func toNewsItemResponse(item model.NewsItem) NewsItemResponse {
	tickers := item.Tickers
	if tickers == nil {
		tickers = []string{}
	}
	return NewsItemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Source:      item.Source,
		Date:        item.Date,
		ArticleURL:  item.ArticleURL,
		Description: item.Description,
		Tickers:     tickers,
	}
}
