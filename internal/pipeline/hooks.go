package pipeline

import (
	"log/slog"
	"tickerpulse/internal/model"
)

type PredictionSaver interface {
	Save(rec *model.PredictionRecord) (bool, error)
}

// PersistPredictions returns an OnPrediction hook that records each stored
// prediction. Save failures are logged and otherwise ignored.
func (p *Pipeline) PersistPredictions(store PredictionSaver) func(PredictionEvent) {
	return func(e PredictionEvent) {
		rec := &model.PredictionRecord{
			SessionID:    e.SessionID,
			ArticleID:    e.Item.ID,
			Ticker:       e.Ticker,
			Title:        e.Item.Title,
			Label:        e.Prediction.Label,
			Score:        e.Prediction.Score,
			IsOutlier:    e.Prediction.IsOutlier,
			ClassifiedAt: p.clock.Now().UTC(),
		}

		saved, err := store.Save(rec)
		if err != nil {
			slog.Error("error saving prediction", "ticker", e.Ticker, "article_id", e.Item.ID, "error", err)
			return
		}
		if !saved {
			slog.Debug("prediction already recorded", "ticker", e.Ticker, "article_id", e.Item.ID)
		}
	}
}

// Chain runs hooks in order, skipping nil entries.
func Chain(hooks ...func(PredictionEvent)) func(PredictionEvent) {
	return func(e PredictionEvent) {
		for _, h := range hooks {
			if h != nil {
				h(e)
			}
		}
	}
}

// SetPredictionHook replaces the OnPrediction hook. Call it before Select.
func (p *Pipeline) SetPredictionHook(h func(PredictionEvent)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cfg.Hooks.OnPrediction = h
}
