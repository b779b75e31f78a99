package model

import (
	"strings"
	"time"
)

const (
	LabelPositive = "positive"
	LabelNegative = "negative"
	LabelNeutral  = "neutral"

	UnknownSource = "Unknown"
	NoTitle       = "No title"

	// DateLayout is the day granularity NewsItem.Date is truncated to.
	DateLayout = "2006-01-02"
)

type NewsItem struct {
	ID          string
	Title       string
	Source      string
	Date        string
	ArticleURL  string
	Description string
	Tickers     []string
}

type NewsResult struct {
	Items  []NewsItem
	Count  int
	Ticker string
}

// IDs returns the item ids in provider order.
func (r *NewsResult) IDs() []string {
	ids := make([]string, len(r.Items))
	for i, item := range r.Items {
		ids[i] = item.ID
	}
	return ids
}

// Prediction keeps the label as the model returned it. IsOutlier is derived
// from the lowercased label.
type Prediction struct {
	Label     string
	Score     float64
	IsOutlier bool
}

func NewPrediction(label string, score float64) Prediction {
	return Prediction{
		Label:     label,
		Score:     score,
		IsOutlier: NormalizeLabel(label) == LabelNegative,
	}
}

func (p Prediction) NormalizedLabel() string {
	return NormalizeLabel(p.Label)
}

func NormalizeLabel(label string) string {
	return strings.ToLower(strings.TrimSpace(label))
}

// DayOf formats t as a UTC calendar date.
func DayOf(t time.Time) string {
	return t.UTC().Format(DateLayout)
}

type PredictionRecord struct {
	ID           int64
	SessionID    string
	ArticleID    string
	Ticker       string
	Title        string
	Label        string
	Score        float64
	IsOutlier    bool
	ClassifiedAt time.Time
}
