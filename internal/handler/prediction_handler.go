package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"tickerpulse/internal/model"
	"time"

	"github.com/gin-gonic/gin"
)

type PredictionStore interface {
	ListByTickers(tickers []string, limit int) ([]model.PredictionRecord, error)
}

type PredictionHandler struct {
	repository PredictionStore
}

func NewPredictionHandler(repository PredictionStore) *PredictionHandler {
	return &PredictionHandler{repository: repository}
}

// GetPredictions lists stored predictions. ticker accepts a comma separated
// list.
func (h *PredictionHandler) GetPredictions(c *gin.Context) {
	limit := getQueryLimit(c, 20, 100)

	var tickers []string
	for _, t := range strings.Split(c.Query("ticker"), ",") {
		if t = strings.ToUpper(strings.TrimSpace(t)); t != "" {
			tickers = append(tickers, t)
		}
	}

	records, err := h.repository.ListByTickers(tickers, limit)
	if err != nil {
		slog.Error("error fetching predictions", "error", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Database error"})
		return
	}

	res := PredictionsResponse{
		Predictions: make([]PredictionRecordResponse, len(records)),
		Count:       len(records),
		Limit:       limit,
	}
	for i, r := range records {
		res.Predictions[i] = PredictionRecordResponse{
			ID:           r.ID,
			SessionID:    r.SessionID,
			ArticleID:    r.ArticleID,
			Ticker:       r.Ticker,
			Title:        r.Title,
			Label:        r.Label,
			Score:        r.Score,
			IsOutlier:    r.IsOutlier,
			ClassifiedAt: r.ClassifiedAt.Format(time.RFC3339),
		}
	}

	c.JSON(http.StatusOK, res)
}
