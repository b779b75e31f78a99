package handler

import (
	"context"
	"net/http"
	"tickerpulse/internal/model"

	"github.com/gin-gonic/gin"
)

type Classifier interface {
	Classify(ctx context.Context, id, title string) (model.Prediction, error)
}

type PredictHandler struct {
	classifier Classifier
}

func NewPredictHandler(classifier Classifier) *PredictHandler {
	return &PredictHandler{classifier: classifier}
}

func (h *PredictHandler) Predict(c *gin.Context) {
	var req PredictRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Validation error", Details: err.Error()})
		return
	}

	prediction, err := h.classifier.Classify(c.Request.Context(), req.ID, req.Title)
	if err != nil {
		respondError(c, err, "Failed to get prediction from model")
		return
	}

	c.JSON(http.StatusOK, PredictResponse{
		ID:         req.ID,
		Title:      req.Title,
		Prediction: toPredictionResponse(prediction),
	})
}

func toPredictionResponse(p model.Prediction) PredictionResponse {
	return PredictionResponse{Label: p.Label, Score: p.Score, IsOutlier: p.IsOutlier}
}
