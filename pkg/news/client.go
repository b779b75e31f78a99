package news

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/apperr"
	"time"
)

const (
	DefaultOrder       = "desc"
	DefaultLimit       = 50
	DefaultSort        = "published_utc"
	DefaultWindowHours = 24.0
)

// Query selects the news for one ticker published within the last
// WindowHours hours.
type Query struct {
	Ticker      string
	Order       string
	Limit       int
	Sort        string
	WindowHours float64
}

type NewsClient interface {
	Fetch(ctx context.Context, q Query) (*model.NewsResult, error)
	Name() string
}

func (q Query) WithDefaults() Query {
	if q.Order == "" {
		q.Order = DefaultOrder
	}
	if q.Limit == 0 {
		q.Limit = DefaultLimit
	}
	if q.Sort == "" {
		q.Sort = DefaultSort
	}
	if q.WindowHours == 0 {
		q.WindowHours = DefaultWindowHours
	}
	return q
}

func (q Query) Validate() error {
	if q.Ticker == "" {
		return apperr.Validation("Ticker parameter is required", "Please provide a ticker symbol")
	}
	if math.IsNaN(q.WindowHours) || math.IsInf(q.WindowHours, 0) || q.WindowHours <= 0 {
		return apperr.Validation("Invalid timeWindowHours parameter", "timeWindowHours must be a positive number")
	}
	if q.Limit < 1 {
		return apperr.Validation("Invalid limit parameter", "limit must be a positive integer")
	}
	return nil
}

// Since returns the publish-time lower bound for the query.
func (q Query) Since(now time.Time) time.Time {
	window := time.Duration(q.WindowHours * float64(time.Hour))
	return now.Add(-window).UTC()
}

func (q Query) Ascending() bool {
	return q.Order == "asc"
}

func readUpstreamError(provider string, resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s: read error body: %w", provider, err)
	}
	return &apperr.UpstreamError{Provider: provider, Status: resp.StatusCode, Body: string(body)}
}

func isSuccess(status int) bool {
	return status >= 200 && status < 300
}
