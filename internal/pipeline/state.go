package pipeline

import (
	"context"
	"tickerpulse/internal/model"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
)

type Phase string

const (
	PhaseIdle        Phase = "idle"
	PhaseLoading     Phase = "loading"
	PhaseReady       Phase = "ready"
	PhaseClassifying Phase = "classifying"
)

// State is the per-ticker record the pipeline mutates. Predictions only
// ever hold ids that are also in SeenIDs.
type State struct {
	SeenIDs       map[string]struct{}
	Predictions   map[string]model.Prediction
	InFlight      map[string]struct{}
	PollingActive bool
}

func newState() State {
	return State{
		SeenIDs:     make(map[string]struct{}),
		Predictions: make(map[string]model.Prediction),
		InFlight:    make(map[string]struct{}),
	}
}

// session lives from one ticker selection to the next. Every field is
// guarded by Pipeline.mu.
type session struct {
	id     uuid.UUID
	ticker string
	ctx    context.Context
	cancel context.CancelFunc
	poller *clock.Ticker

	state     State
	items     []model.NewsItem
	itemsByID map[string]model.NewsItem
	loaded    bool
	fetchedAt time.Time
	lastErr   error
	failures  map[string]string

	queue         []string
	workerRunning bool
	dispatched    string
}

func newSession(parent context.Context, ticker string) *session {
	ctx, cancel := context.WithCancel(parent)
	return &session{
		id:        uuid.New(),
		ticker:    ticker,
		ctx:       ctx,
		cancel:    cancel,
		state:     newState(),
		itemsByID: make(map[string]model.NewsItem),
		failures:  make(map[string]string),
	}
}

// absorb replaces the visible items and returns the ids not seen before, in
// provider order.
func (s *session) absorb(res *model.NewsResult, now time.Time) []string {
	var newIDs []string
	for _, item := range res.Items {
		if _, seen := s.state.SeenIDs[item.ID]; !seen {
			newIDs = append(newIDs, item.ID)
			s.state.SeenIDs[item.ID] = struct{}{}
		}
		s.itemsByID[item.ID] = item
	}

	s.items = res.Items
	s.loaded = true
	s.fetchedAt = now
	s.lastErr = nil
	return newIDs
}

// nextDispatch pops queued ids until one is neither classified nor in
// flight.
func (s *session) nextDispatch() (model.NewsItem, bool) {
	for len(s.queue) > 0 {
		id := s.queue[0]
		s.queue = s.queue[1:]

		if _, done := s.state.Predictions[id]; done {
			continue
		}
		if _, busy := s.state.InFlight[id]; busy {
			continue
		}
		item, ok := s.itemsByID[id]
		if !ok {
			continue
		}
		return item, true
	}
	return model.NewsItem{}, false
}

func (s *session) phase() Phase {
	switch {
	case s.dispatched != "" || (s.workerRunning && len(s.queue) > 0):
		return PhaseClassifying
	case s.loaded:
		return PhaseReady
	default:
		return PhaseLoading
	}
}
