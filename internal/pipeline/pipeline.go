// Package pipeline polls news for the selected ticker and classifies newly
// seen articles one at a time.
package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"tickerpulse/internal/model"
	"tickerpulse/internal/stats"
	"tickerpulse/pkg/news"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	DefaultPollInterval  = 60 * time.Second
	DefaultClassifyDelay = 1000 * time.Millisecond
)

var (
	ErrNoSession      = errors.New("no ticker selected")
	ErrUnknownArticle = errors.New("article not loaded for the selected ticker")
	ErrInFlight       = errors.New("article classification already in flight")
)

type Fetcher interface {
	Fetch(ctx context.Context, q news.Query) (*model.NewsResult, error)
}

type Classifier interface {
	Classify(ctx context.Context, id, title string) (model.Prediction, error)
}

type FetchEvent struct {
	SessionID string
	Ticker    string
	Count     int
	NewIDs    []string
	Err       error
}

type PredictionEvent struct {
	SessionID  string
	Ticker     string
	Item       model.NewsItem
	Prediction model.Prediction
	Manual     bool
}

type Hooks struct {
	OnFetch      func(FetchEvent)
	OnPrediction func(PredictionEvent)
}

type Config struct {
	PollInterval  time.Duration
	ClassifyDelay time.Duration
	// Query carries order, limit, sort and window; Ticker is set per session.
	Query news.Query
	Clock clock.Clock
	Hooks Hooks
}

type Pipeline struct {
	fetcher    Fetcher
	classifier Classifier
	cfg        Config
	clock      clock.Clock

	mu      sync.Mutex
	current *session
	wg      sync.WaitGroup
}

func New(fetcher Fetcher, classifier Classifier, cfg Config) *Pipeline {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ClassifyDelay <= 0 {
		cfg.ClassifyDelay = DefaultClassifyDelay
	}
	if cfg.Clock == nil {
		cfg.Clock = clock.New()
	}
	cfg.Query = cfg.Query.WithDefaults()

	return &Pipeline{
		fetcher:    fetcher,
		classifier: classifier,
		cfg:        cfg,
		clock:      cfg.Clock,
	}
}

// Select starts a fresh session for ticker, dropping the previous one. The
// first fetch runs in the background; an empty ticker clears the session.
func (p *Pipeline) Select(ticker string) string {
	if ticker == "" {
		p.Clear()
		return ""
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	p.stopLocked()

	s := newSession(context.Background(), ticker)
	s.poller = p.clock.Ticker(p.cfg.PollInterval)
	s.state.PollingActive = true
	p.current = s

	slog.Info("ticker selected", "ticker", ticker, "session_id", s.id.String())

	p.wg.Add(1)
	go p.poll(s)

	return s.id.String()
}

// Clear stops polling and forgets the current session.
func (p *Pipeline) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.stopLocked()
}

// Close clears the session and waits for background work to return.
func (p *Pipeline) Close() {
	p.Clear()
	p.wg.Wait()
}

func (p *Pipeline) stopLocked() {
	s := p.current
	if s == nil {
		return
	}
	s.cancel()
	s.poller.Stop()
	s.state.PollingActive = false
	p.current = nil
	slog.Info("session cleared", "ticker", s.ticker, "session_id", s.id.String())
}

func (p *Pipeline) poll(s *session) {
	defer p.wg.Done()

	p.refresh(s)
	for {
		select {
		case <-s.ctx.Done():
			return
		case <-s.poller.C:
			p.refresh(s)
		}
	}
}

// Refresh fetches the current ticker immediately, outside the poll cadence.
func (p *Pipeline) Refresh() error {
	p.mu.Lock()
	s := p.current
	p.mu.Unlock()
	if s == nil {
		return ErrNoSession
	}
	return p.refresh(s)
}

func (p *Pipeline) refresh(s *session) error {
	q := p.cfg.Query
	q.Ticker = s.ticker

	res, err := p.fetcher.Fetch(s.ctx, q)

	p.mu.Lock()
	if p.current != s {
		p.mu.Unlock()
		return ErrNoSession
	}

	event := FetchEvent{SessionID: s.id.String(), Ticker: s.ticker, Err: err}
	if err != nil {
		s.lastErr = err
		p.mu.Unlock()
		slog.Error("error fetching news", "ticker", s.ticker, "session_id", s.id.String(), "error", err)
		p.emitFetch(event)
		return err
	}

	newIDs := s.absorb(res, p.clock.Now())
	event.Count = len(res.Items)
	event.NewIDs = newIDs

	if len(newIDs) > 0 {
		s.queue = append(s.queue, newIDs...)
		if !s.workerRunning {
			s.workerRunning = true
			p.wg.Add(1)
			go p.work(s)
		}
	}
	p.mu.Unlock()

	slog.Info("news refreshed", "ticker", s.ticker, "session_id", s.id.String(), "count", event.Count, "new", len(newIDs))
	p.emitFetch(event)
	return nil
}

// work is the single consumer of a session's queue. It waits ClassifyDelay
// after every completed call, so two automatic dispatches are never closer
// than that and never overlap.
func (p *Pipeline) work(s *session) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		if p.current != s {
			s.workerRunning = false
			p.mu.Unlock()
			return
		}

		item, ok := s.nextDispatch()
		if !ok {
			s.workerRunning = false
			p.mu.Unlock()
			return
		}
		s.state.InFlight[item.ID] = struct{}{}
		s.dispatched = item.ID
		p.mu.Unlock()

		slog.Debug("classifying article", "ticker", s.ticker, "article_id", item.ID)
		prediction, err := p.classifier.Classify(s.ctx, item.ID, item.Title)
		p.complete(s, item, prediction, err, false)

		select {
		case <-s.ctx.Done():
			p.mu.Lock()
			s.workerRunning = false
			p.mu.Unlock()
			return
		case <-p.clock.After(p.cfg.ClassifyDelay):
		}
	}
}

// ClassifyNow classifies one loaded article on demand. It does not wait for
// or block the background queue. An already classified article returns its
// stored prediction.
func (p *Pipeline) ClassifyNow(ctx context.Context, id string) (model.Prediction, error) {
	p.mu.Lock()
	s := p.current
	if s == nil {
		p.mu.Unlock()
		return model.Prediction{}, ErrNoSession
	}

	item, ok := s.itemsByID[id]
	if !ok {
		p.mu.Unlock()
		return model.Prediction{}, ErrUnknownArticle
	}
	if prediction, done := s.state.Predictions[id]; done {
		p.mu.Unlock()
		return prediction, nil
	}
	if _, busy := s.state.InFlight[id]; busy {
		p.mu.Unlock()
		return model.Prediction{}, ErrInFlight
	}
	s.state.InFlight[id] = struct{}{}
	p.mu.Unlock()

	prediction, err := p.classifier.Classify(ctx, item.ID, item.Title)
	p.complete(s, item, prediction, err, true)
	return prediction, err
}

func (p *Pipeline) complete(s *session, item model.NewsItem, prediction model.Prediction, err error, manual bool) {
	p.mu.Lock()
	delete(s.state.InFlight, item.ID)
	if !manual && s.dispatched == item.ID {
		s.dispatched = ""
	}

	if p.current != s {
		p.mu.Unlock()
		slog.Debug("discarding result for abandoned session", "ticker", s.ticker, "article_id", item.ID)
		return
	}

	if err != nil {
		s.failures[item.ID] = err.Error()
		p.mu.Unlock()
		slog.Warn("error classifying article", "ticker", s.ticker, "article_id", item.ID, "error", err)
		return
	}

	delete(s.failures, item.ID)
	s.state.Predictions[item.ID] = prediction
	onPrediction := p.cfg.Hooks.OnPrediction
	p.mu.Unlock()

	slog.Info("article classified", "ticker", s.ticker, "article_id", item.ID, "label", prediction.Label, "score", prediction.Score)

	if onPrediction != nil {
		onPrediction(PredictionEvent{
			SessionID:  s.id.String(),
			Ticker:     s.ticker,
			Item:       item,
			Prediction: prediction,
			Manual:     manual,
		})
	}
}

func (p *Pipeline) emitFetch(event FetchEvent) {
	if p.cfg.Hooks.OnFetch != nil {
		p.cfg.Hooks.OnFetch(event)
	}
}

type ItemView struct {
	model.NewsItem
	Prediction *model.Prediction
	Loading    bool
	Error      string
}

type Snapshot struct {
	SessionID     string
	Ticker        string
	Phase         Phase
	PollingActive bool
	FetchedAt     time.Time
	Items         []ItemView
	Predictions   map[string]model.Prediction
	SeenCount     int
	Distribution  stats.Distribution
	Keywords      []stats.Keyword
	Cloud         []stats.Keyword
	LastError     error
}

// Snapshot copies the current session and recomputes its summaries.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.Lock()
	s := p.current
	if s == nil {
		p.mu.Unlock()
		return Snapshot{Phase: PhaseIdle, Predictions: map[string]model.Prediction{}}
	}

	snap := Snapshot{
		SessionID:     s.id.String(),
		Ticker:        s.ticker,
		Phase:         s.phase(),
		PollingActive: s.state.PollingActive,
		FetchedAt:     s.fetchedAt,
		Items:         make([]ItemView, len(s.items)),
		Predictions:   make(map[string]model.Prediction, len(s.state.Predictions)),
		SeenCount:     len(s.state.SeenIDs),
		LastError:     s.lastErr,
	}
	for id, prediction := range s.state.Predictions {
		snap.Predictions[id] = prediction
	}
	items := append([]model.NewsItem(nil), s.items...)
	for i, item := range items {
		view := ItemView{NewsItem: item, Error: s.failures[item.ID]}
		if prediction, ok := s.state.Predictions[item.ID]; ok {
			prediction := prediction
			view.Prediction = &prediction
		}
		_, view.Loading = s.state.InFlight[item.ID]
		snap.Items[i] = view
	}
	p.mu.Unlock()

	snap.Distribution = stats.ComputeDistribution(items, snap.Predictions)
	snap.Keywords = stats.KeywordFrequency(items, stats.TableKeywords, false)
	snap.Cloud = stats.KeywordFrequency(items, stats.CloudKeywords, true)
	return snap
}
