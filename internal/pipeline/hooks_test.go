package pipeline

import (
	"errors"
	"testing"
	"tickerpulse/internal/model"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/assert/v2"
)

type fakeSaver struct {
	records []model.PredictionRecord
	err     error
}

func (f *fakeSaver) Save(rec *model.PredictionRecord) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	f.records = append(f.records, *rec)
	return true, nil
}

func TestPersistPredictions(t *testing.T) {
	mock := clock.NewMock()
	mock.Set(time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC))
	p := New(newFakeFetcher(nil), newFakeClassifier(mock), Config{Clock: mock})

	saver := &fakeSaver{}
	var order []string
	hook := Chain(
		p.PersistPredictions(saver),
		nil,
		func(e PredictionEvent) { order = append(order, e.Item.ID) },
	)

	hook(PredictionEvent{
		SessionID:  "s1",
		Ticker:     "AAPL",
		Item:       model.NewsItem{ID: "a1", Title: "Apple slips"},
		Prediction: model.NewPrediction("negative", 0.8),
	})

	assert.Equal(t, len(saver.records), 1)
	rec := saver.records[0]
	assert.Equal(t, rec.SessionID, "s1")
	assert.Equal(t, rec.ArticleID, "a1")
	assert.Equal(t, rec.Title, "Apple slips")
	assert.Equal(t, rec.IsOutlier, true)
	assert.Equal(t, rec.ClassifiedAt, time.Date(2026, 2, 27, 9, 30, 0, 0, time.UTC))
	assert.Equal(t, order, []string{"a1"})

	saver.err = errors.New("DB down")
	hook(PredictionEvent{Item: model.NewsItem{ID: "a2"}})
	assert.Equal(t, order, []string{"a1", "a2"})
}
