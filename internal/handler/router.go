package handler

import "github.com/gin-gonic/gin"

// Handlers groups the route handlers. Nil entries leave their routes out.
type Handlers struct {
	News        *NewsHandler
	Predict     *PredictHandler
	Session     *SessionHandler
	Predictions *PredictionHandler
	Health      *HealthHandler
}

func Register(r *gin.Engine, h Handlers) {
	if h.Health != nil {
		r.GET("/health", h.Health.GetHealth)
	}

	api := r.Group("/api")
	if h.News != nil {
		api.GET("/news", h.News.GetNews)
	}
	if h.Predict != nil {
		api.POST("/predict", h.Predict.Predict)
	}
	if h.Session != nil {
		api.GET("/session", h.Session.GetSession)
		api.PUT("/session", h.Session.PutSession)
		api.DELETE("/session", h.Session.DeleteSession)
		api.POST("/session/refresh", h.Session.Refresh)
		api.POST("/session/predict/:id", h.Session.Predict)
	}
	if h.Predictions != nil {
		api.GET("/predictions", h.Predictions.GetPredictions)
	}
}
