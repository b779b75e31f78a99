package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"tickerpulse/db"
	"tickerpulse/internal/config"
	"tickerpulse/internal/logging"
	"tickerpulse/internal/pipeline"
	"tickerpulse/internal/repository"
	"tickerpulse/pkg/classifier"
	"tickerpulse/pkg/news"
)

func main() {
	ticker := flag.String("ticker", "", "ticker symbol to watch")
	window := flag.Float64("window", news.DefaultWindowHours, "lookback window in hours")
	limit := flag.Int("limit", news.DefaultLimit, "articles per poll")
	flag.Parse()

	symbol := strings.ToUpper(strings.TrimSpace(*ticker))
	if symbol == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *window <= 0 || *limit < 1 {
		log.Fatalf("window and limit must be positive")
	}

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

	var p *pipeline.Pipeline
	logDistribution := func(e pipeline.PredictionEvent) {
		d := p.Snapshot().Distribution
		slog.Info("distribution",
			"ticker", e.Ticker,
			"total", d.Total,
			"positive", d.Positive,
			"negative", d.Negative,
			"neutral", d.Neutral,
			"outlier_percent", d.OutlierPercent,
		)
	}
	logFetch := func(e pipeline.FetchEvent) {
		if e.Err != nil {
			return
		}
		slog.Info("poll complete", "ticker", e.Ticker, "count", e.Count, "new", len(e.NewIDs))
	}

	p = pipeline.New(newsClient, model, pipeline.Config{
		PollInterval:  cfg.PollInterval,
		ClassifyDelay: cfg.ClassifyDelay,
		Query:         news.Query{Limit: *limit, WindowHours: *window},
		Hooks:         pipeline.Hooks{OnFetch: logFetch},
	})

	hook := logDistribution
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
		hook = pipeline.Chain(p.PersistPredictions(predictionRepo), logDistribution)
	}
	p.SetPredictionHook(hook)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	slog.Info("watching ticker", "ticker", symbol, "news", newsClient.Name(), "model", model.Name(), "window_hours", *window)
	p.Select(symbol)

	<-ctx.Done()
	slog.Info("shutting down", "ticker", symbol)
	p.Close()
}
