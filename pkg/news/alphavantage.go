package news

import (
	"context"
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"
	"time"
)

const (
	alphaVantageURL = "https://www.alphavantage.co/query"

	avTimeLayout     = "20060102T150405"
	avTimeFromLayout = "20060102T1504"
)

type AlphaVantageClient struct {
	apiKey     string
	httpClient *http.Client
	now        func() time.Time
}

func NewAlphaVantageClient(apiKey string, timeout time.Duration) *AlphaVantageClient {
	return &AlphaVantageClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (c *AlphaVantageClient) Name() string {
	return "AlphaVantage"
}

func (c *AlphaVantageClient) Fetch(ctx context.Context, q Query) (*model.NewsResult, error) {
	if c.apiKey == "" {
		return nil, apperr.MissingKey("ALPHA_VANTAGE_API_KEY")
	}

	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := c.now()
	sortOrder := "LATEST"
	if q.Ascending() {
		sortOrder = "EARLIEST"
	}

	params := url.Values{}
	params.Set("function", "NEWS_SENTIMENT")
	params.Set("tickers", q.Ticker)
	params.Set("time_from", q.Since(now).Format(avTimeFromLayout))
	params.Set("sort", sortOrder)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("apikey", c.apiKey)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, alphaVantageURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("alphavantage request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("alphavantage fetch: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, readUpstreamError(c.Name(), resp)
	}

	var raw avResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperr.Malformed("Invalid response from AlphaVantage", err.Error())
	}

	// Rate limiting and bad keys come back as 200 with a notice instead of a feed.
	if raw.Feed == nil && raw.Information != "" {
		return nil, apperr.Malformed("AlphaVantage returned no feed", raw.Information)
	}

	items := make([]model.NewsItem, 0, len(raw.Feed))
	for i, item := range raw.Feed {
		if i >= q.Limit {
			break
		}

		a := model.NewsItem{
			ID:          generateExternalID(item.URL),
			Title:       item.Title,
			Source:      item.Source,
			Date:        model.DayOf(now),
			ArticleURL:  item.URL,
			Description: item.Summary,
			Tickers:     make([]string, 0, len(item.TickerSentiment)),
		}

		if item.URL == "" {
			a.ID = fmt.Sprintf("alphavantage-%d", i)
		}
		if a.Title == "" {
			a.Title = model.NoTitle
		}
		if a.Source == "" {
			a.Source = model.UnknownSource
		}

		if publishedAt, err := time.Parse(avTimeLayout, item.TimePublished); err == nil {
			a.Date = model.DayOf(publishedAt)
		}

		for _, ts := range item.TickerSentiment {
			if ts.Ticker != "" {
				a.Tickers = append(a.Tickers, ts.Ticker)
			}
		}

		items = append(items, a)
	}

	return &model.NewsResult{Items: items, Count: len(items), Ticker: q.Ticker}, nil
}

func generateExternalID(url string) string {
	sum := sha256.Sum256([]byte(url))
	return fmt.Sprintf("%x", sum)[:16]
}

type avResponse struct {
	Feed        []avFeedItem `json:"feed"`
	Information string       `json:"Information"`
}

type avFeedItem struct {
	Title           string              `json:"title"`
	Summary         string              `json:"summary"`
	URL             string              `json:"url"`
	Source          string              `json:"source"`
	TimePublished   string              `json:"time_published"`
	TickerSentiment []avTickerSentiment `json:"ticker_sentiment"`
}

type avTickerSentiment struct {
	Ticker string `json:"ticker"`
}
