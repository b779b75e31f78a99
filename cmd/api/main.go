package main

import (
	"context"
	"log"
	"log/slog"
	"tickerpulse/db"
	"tickerpulse/internal/cache"
	"tickerpulse/internal/config"
	"tickerpulse/internal/handler"
	"tickerpulse/internal/logging"
	"tickerpulse/internal/pipeline"
	"tickerpulse/internal/repository"
	"tickerpulse/pkg/classifier"
	"tickerpulse/pkg/news"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("error loading config: %v", err)
	}

	logging.Setup(cfg.LogLevel, cfg.LogFormat)

	newsClient, err := news.NewClient(cfg.NewsProvider, cfg.NewsCredentials())
	if err != nil {
		log.Fatalf("error creating news client: %v", err)
	}

	model, err := classifier.New(cfg.ModelBackend, cfg.ClassifierCredentials())
	if err != nil {
		log.Fatalf("error creating classifier: %v", err)
	}

	slog.Info("providers configured", "news", newsClient.Name(), "model", model.Name())

	p := pipeline.New(newsClient, model, pipeline.Config{
		PollInterval:  cfg.PollInterval,
		ClassifyDelay: cfg.ClassifyDelay,
	})
	defer p.Close()

	handlers := handler.Handlers{
		News:    handler.NewNewsHandler(newsClient, nil),
		Predict: handler.NewPredictHandler(model),
		Session: handler.NewSessionHandler(p),
	}
	var dbPinger handler.DBPinger
	var cachePinger handler.CachePinger

	if cfg.DatabaseURL != "" {
		conn, err := db.Connect(cfg.DatabaseURL)
		if err != nil {
			log.Fatalf("error connecting to DB: %v", err)
		}
		defer conn.Close()

		predictionRepo := repository.NewPredictionRepository(conn)
		if err := predictionRepo.EnsureSchema(); err != nil {
			log.Fatalf("error creating schema: %v", err)
		}

		p.SetPredictionHook(p.PersistPredictions(predictionRepo))
		handlers.Predictions = handler.NewPredictionHandler(predictionRepo)
		dbPinger = predictionRepo
	} else {
		slog.Warn("DATABASE_URL is not set, prediction history disabled")
	}

	if cfg.RedisURL != "" {
		rdb, err := db.ConnectRedis(context.Background(), cfg.RedisURL)
		if err != nil {
			slog.Warn("error connecting to Redis, news cache disabled", "error", err)
		} else {
			defer rdb.Close()
			newsCache := cache.NewNewsCache(rdb, cfg.NewsCacheTTL)
			handlers.News = handler.NewNewsHandler(newsClient, newsCache)
			cachePinger = newsCache
		}
	}

	handlers.Health = handler.NewHealthHandler(dbPinger, cachePinger)

	r := gin.Default()

	allowedOrigins := []string{"http://localhost:3000"}

	if cfg.FrontendURL != "" {
		allowedOrigins = append(allowedOrigins, cfg.FrontendURL)
	}

	slog.Info("AllowOrigins URL:", "urls", allowedOrigins)

	r.Use(cors.New(cors.Config{
		AllowOrigins: allowedOrigins,
		AllowMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type"},
	}))

	handler.Register(r, handlers)

	err = r.Run(":" + cfg.Port)
	if err != nil {
		log.Fatalf("error starting server: %v", err)
	}
}
