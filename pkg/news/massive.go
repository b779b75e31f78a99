package news

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"
	"time"
)

const massiveBaseURL = "https://api.massive.com"

type MassiveClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	now        func() time.Time
}

func NewMassiveClient(apiKey string, baseURL string, timeout time.Duration) *MassiveClient {
	if baseURL == "" {
		baseURL = massiveBaseURL
	}
	return &MassiveClient{
		apiKey:     apiKey,
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: timeout},
		now:        time.Now,
	}
}

func (c *MassiveClient) Name() string {
	return "Massive.com"
}

func (c *MassiveClient) Fetch(ctx context.Context, q Query) (*model.NewsResult, error) {
	if c.apiKey == "" {
		return nil, apperr.MissingKey("POLYGON_API_KEY")
	}

	q = q.WithDefaults()
	if err := q.Validate(); err != nil {
		return nil, err
	}

	now := c.clock()
	params := url.Values{}
	params.Set("ticker", q.Ticker)
	params.Set("order", q.Order)
	params.Set("limit", strconv.Itoa(q.Limit))
	params.Set("sort", q.Sort)
	params.Set("published_utc.gte", q.Since(now).Format(time.RFC3339))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint()+"/v2/reference/news?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("massive request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("massive fetch: %w", err)
	}
	defer resp.Body.Close()

	if !isSuccess(resp.StatusCode) {
		return nil, readUpstreamError(c.Name(), resp)
	}

	var raw massiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, apperr.Malformed("Invalid response from Massive.com", err.Error())
	}

	items := make([]model.NewsItem, 0, len(raw.Results))
	for i, r := range raw.Results {
		items = append(items, r.toNewsItem(i, now))
	}

	count := raw.Count
	if count == 0 {
		count = len(items)
	}

	return &model.NewsResult{Items: items, Count: count, Ticker: q.Ticker}, nil
}

func (c *MassiveClient) endpoint() string {
	if c.baseURL == "" {
		return massiveBaseURL
	}
	return c.baseURL
}

func (c *MassiveClient) clock() time.Time {
	if c.now == nil {
		return time.Now()
	}
	return c.now()
}

type massiveResponse struct {
	Results []massiveResult `json:"results"`
	Count   int             `json:"count"`
}

type massiveResult struct {
	ID           string           `json:"id"`
	Title        string           `json:"title"`
	Description  string           `json:"description"`
	ArticleURL   string           `json:"article_url"`
	PublishedUTC string           `json:"published_utc"`
	Tickers      []string         `json:"tickers"`
	Publisher    massivePublisher `json:"publisher"`
}

type massivePublisher struct {
	Name string `json:"name"`
}

func (r massiveResult) toNewsItem(index int, now time.Time) model.NewsItem {
	item := model.NewsItem{
		ID:          r.ID,
		Title:       r.Title,
		Source:      r.Publisher.Name,
		Date:        model.DayOf(now),
		ArticleURL:  r.ArticleURL,
		Description: r.Description,
		Tickers:     r.Tickers,
	}

	if item.ID == "" {
		item.ID = fmt.Sprintf("massive-%d", index)
	}
	if item.Title == "" {
		item.Title = model.NoTitle
	}
	if item.Source == "" {
		item.Source = model.UnknownSource
	}
	if item.Tickers == nil {
		item.Tickers = []string{}
	}

	if r.PublishedUTC != "" {
		if publishedAt, err := time.Parse(time.RFC3339, r.PublishedUTC); err == nil {
			item.Date = model.DayOf(publishedAt)
		}
	}

	return item
}
