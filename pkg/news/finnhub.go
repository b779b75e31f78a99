package news

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"
	"time"

	finnhub "github.com/Finnhub-Stock-API/finnhub-go/v2"
)

type FinnHubClient struct {
	apiKey string
	client *finnhub.DefaultApiService
	now    func() time.Time
}

func NewFinnHubClient(apiKey string, timeout time.Duration) *FinnHubClient {
	return newFinnHubClient(apiKey, &http.Client{Timeout: timeout})
}

func newFinnHubClient(apiKey string, httpClient *http.Client) *FinnHubClient {
	cfg := finnhub.NewConfiguration()
	cfg.AddDefaultHeader("X-Finnhub-Token", apiKey)
	cfg.HTTPClient = httpClient
	client := finnhub.NewAPIClient(cfg).DefaultApi
	return &FinnHubClient{apiKey: apiKey, client: client, now: time.Now}
}

func (c *FinnHubClient) Name() string {
	return "FinnHub"
}

// Fetch asks for company news by day range, then trims to the exact window
// since FinnHub only filters by calendar date.
func (c *FinnHubClient) Fetch(ctx context.Context, q Query) (*model.NewsResult, error) {
	if c.apiKey == "" {
		return nil, apperr.MissingKey("FINNHUB_API_KEY")
	}

	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := c.now()
	since := q.Since(now)

	res, httpResp, err := c.client.CompanyNews(ctx).
		Symbol(q.Ticker).
		From(since.Format(model.DateLayout)).
		To(now.UTC().Format(model.DateLayout)).
		Execute()
	if err != nil {
		if httpResp != nil && !isSuccess(httpResp.StatusCode) {
			return nil, readUpstreamError(c.Name(), httpResp)
		}
		return nil, fmt.Errorf("finnhub fetch: %w", err)
	}

	type dated struct {
		item      model.NewsItem
		published int64
	}

	var collected []dated
	for i, news := range res {
		var published int64
		if news.Datetime != nil {
			published = *news.Datetime
			if published < since.Unix() {
				continue
			}
		}

		a := model.NewsItem{
			ID:     fmt.Sprintf("finnhub-%d", i),
			Title:  model.NoTitle,
			Source: model.UnknownSource,
			Date:   model.DayOf(now),
		}

		if news.Id != nil {
			a.ID = strconv.FormatInt(*news.Id, 10)
		}

		if news.Headline != nil && *news.Headline != "" {
			a.Title = *news.Headline
		}

		if news.Summary != nil {
			a.Description = *news.Summary
		}

		if news.Url != nil {
			a.ArticleURL = *news.Url
		}

		if news.Datetime != nil {
			a.Date = model.DayOf(time.Unix(*news.Datetime, 0))
		}

		if news.Source != nil && *news.Source != "" {
			a.Source = *news.Source
		}

		if news.Related != nil && *news.Related != "" {
			a.Tickers = strings.Split(*news.Related, ",")
		} else {
			a.Tickers = []string{}
		}

		collected = append(collected, dated{item: a, published: published})
	}

	sort.SliceStable(collected, func(i, j int) bool {
		if q.Ascending() {
			return collected[i].published < collected[j].published
		}
		return collected[i].published > collected[j].published
	})

	if len(collected) > q.Limit {
		collected = collected[:q.Limit]
	}

	items := make([]model.NewsItem, len(collected))
	for i, d := range collected {
		items[i] = d.item
	}

	return &model.NewsResult{Items: items, Count: len(items), Ticker: q.Ticker}, nil
}
