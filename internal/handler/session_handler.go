package handler

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"tickerpulse/internal/model"
	"tickerpulse/internal/pipeline"
	"tickerpulse/internal/stats"
	"tickerpulse/pkg/apperr"
	"time"

	"github.com/gin-gonic/gin"
)

type SessionPipeline interface {
	Select(ticker string) string
	Clear()
	Refresh() error
	Snapshot() pipeline.Snapshot
	ClassifyNow(ctx context.Context, id string) (model.Prediction, error)
}

type SessionHandler struct {
	pipeline SessionPipeline
}

func NewSessionHandler(p SessionPipeline) *SessionHandler {
	return &SessionHandler{pipeline: p}
}

func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, toSessionResponse(h.pipeline.Snapshot()))
}

// PutSession switches the dashboard to a ticker. An empty ticker clears it.
func (h *SessionHandler) PutSession(c *gin.Context) {
	var req SessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation error", Details: err.Error()})
		return
	}

	h.pipeline.Select(strings.ToUpper(strings.TrimSpace(req.Ticker)))
	c.JSON(http.StatusOK, toSessionResponse(h.pipeline.Snapshot()))
}

func (h *SessionHandler) DeleteSession(c *gin.Context) {
	h.pipeline.Clear()
	c.Status(http.StatusNoContent)
}

func (h *SessionHandler) Refresh(c *gin.Context) {
	err := h.pipeline.Refresh()
	if errors.Is(err, pipeline.ErrNoSession) {
		c.JSON(http.StatusConflict, ErrorResponse{Error: "No ticker selected"})
		return
	}
	if err != nil {
		respondError(c, err, "Failed to fetch news")
		return
	}
	c.JSON(http.StatusOK, toSessionResponse(h.pipeline.Snapshot()))
}

func (h *SessionHandler) Predict(c *gin.Context) {
	id := c.Param("id")

	prediction, err := h.pipeline.ClassifyNow(c.Request.Context(), id)
	switch {
	case errors.Is(err, pipeline.ErrNoSession):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "No ticker selected"})
		return
	case errors.Is(err, pipeline.ErrUnknownArticle):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Article not found", Details: id})
		return
	case errors.Is(err, pipeline.ErrInFlight):
		c.JSON(http.StatusConflict, ErrorResponse{Error: "Prediction already in progress", Details: id})
		return
	case err != nil:
		respondError(c, err, "Failed to get prediction from model")
		return
	}

	c.JSON(http.StatusOK, toPredictionResponse(prediction))
}

func toSessionResponse(s pipeline.Snapshot) SessionResponse {
	res := SessionResponse{
		SessionID:     s.SessionID,
		Ticker:        s.Ticker,
		Phase:         string(s.Phase),
		PollingActive: s.PollingActive,
		News:          make([]SessionNewsItemResponse, len(s.Items)),
		Distribution:  toDistributionResponse(s.Distribution),
		Keywords:      toKeywordResponses(s.Keywords),
		Cloud:         toKeywordResponses(s.Cloud),
	}
	if !s.FetchedAt.IsZero() {
		res.FetchedAt = s.FetchedAt.UTC().Format(time.RFC3339)
	}

	for i, item := range s.Items {
		view := SessionNewsItemResponse{
			NewsItemResponse: toNewsItemResponse(item.NewsItem),
			IsLoading:        item.Loading,
			Error:            item.Error,
		}
		if item.Prediction != nil {
			p := toPredictionResponse(*item.Prediction)
			view.Prediction = &p
		}
		res.News[i] = view
	}

	if s.LastError != nil {
		message, details := apperr.Describe(s.LastError, "Failed to fetch news")
		res.Error = &ErrorResponse{Error: message, Details: details}
	}
	return res
}

func toDistributionResponse(d stats.Distribution) DistributionResponse {
	return DistributionResponse{
		Total:           d.Total,
		Positive:        d.Positive,
		Negative:        d.Negative,
		Neutral:         d.Neutral,
		Other:           d.Other,
		Normal:          d.Normal,
		Outlier:         d.Outlier,
		PositivePercent: d.PositivePercent,
		NegativePercent: d.NegativePercent,
		NeutralPercent:  d.NeutralPercent,
		NormalPercent:   d.NormalPercent,
		OutlierPercent:  d.OutlierPercent,
	}
}

func toKeywordResponses(keywords []stats.Keyword) []KeywordResponse {
	res := make([]KeywordResponse, len(keywords))
	for i, k := range keywords {
		res[i] = KeywordResponse{Text: k.Text, Count: k.Count, Size: k.Size}
	}
	return res
}
