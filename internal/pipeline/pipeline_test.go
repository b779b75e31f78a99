package pipeline

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"tickerpulse/internal/model"
	"tickerpulse/pkg/news"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/go-playground/assert/v2"
)

type fetchStep struct {
	ids []string
	err error
}

type fakeFetcher struct {
	mu      sync.Mutex
	scripts map[string][]fetchStep
	calls   map[string]int
	queries []news.Query
	gate    chan struct{}
}

func newFakeFetcher(scripts map[string][]fetchStep) *fakeFetcher {
	return &fakeFetcher{scripts: scripts, calls: make(map[string]int)}
}

func (f *fakeFetcher) Fetch(ctx context.Context, q news.Query) (*model.NewsResult, error) {
	f.mu.Lock()
	n := f.calls[q.Ticker]
	f.calls[q.Ticker]++
	f.queries = append(f.queries, q)
	script := f.scripts[q.Ticker]
	gate := f.gate
	f.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	if len(script) == 0 {
		return &model.NewsResult{Ticker: q.Ticker}, nil
	}
	if n >= len(script) {
		n = len(script) - 1
	}
	step := script[n]
	if step.err != nil {
		return nil, step.err
	}

	res := &model.NewsResult{Ticker: q.Ticker, Count: len(step.ids)}
	for _, id := range step.ids {
		res.Items = append(res.Items, model.NewsItem{ID: id, Title: "Headline " + id, Source: "Wire"})
	}
	return res, nil
}

func (f *fakeFetcher) callCount(ticker string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[ticker]
}

type dispatch struct {
	id string
	at time.Time
}

type fakeClassifier struct {
	clock clock.Clock

	mu       sync.Mutex
	calls    []dispatch
	failOnce map[string]bool
	block    map[string]chan struct{}

	active    int32
	maxActive int32
}

func newFakeClassifier(c clock.Clock) *fakeClassifier {
	return &fakeClassifier{
		clock:    c,
		failOnce: make(map[string]bool),
		block:    make(map[string]chan struct{}),
	}
}

func (f *fakeClassifier) Classify(ctx context.Context, id, title string) (model.Prediction, error) {
	n := atomic.AddInt32(&f.active, 1)
	defer atomic.AddInt32(&f.active, -1)
	for {
		max := atomic.LoadInt32(&f.maxActive)
		if n <= max || atomic.CompareAndSwapInt32(&f.maxActive, max, n) {
			break
		}
	}

	f.mu.Lock()
	f.calls = append(f.calls, dispatch{id: id, at: f.clock.Now()})
	ch := f.block[id]
	fail := f.failOnce[id]
	delete(f.failOnce, id)
	f.mu.Unlock()

	if ch != nil {
		<-ch
	}
	if fail {
		return model.Prediction{}, errors.New("model unavailable")
	}
	return model.NewPrediction("negative", 0.75), nil
}

func (f *fakeClassifier) ids() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := make([]string, len(f.calls))
	for i, c := range f.calls {
		ids[i] = c.id
	}
	return ids
}

func (f *fakeClassifier) dispatches() []dispatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]dispatch(nil), f.calls...)
}

func (f *fakeClassifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func eventually(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func advanceUntil(t *testing.T, mock *clock.Mock, step time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		mock.Add(step)
	}
}

func TestPipelineClassifiesOnlyNewArticles(t *testing.T) {
	mock := clock.NewMock()
	fetcher := newFakeFetcher(map[string][]fetchStep{
		"AAPL": {{ids: []string{"a1", "a2", "a3"}}, {ids: []string{"a2", "a3", "a4"}}},
	})
	classifier := newFakeClassifier(mock)

	var mu sync.Mutex
	var fetched [][]string
	var predicted []string
	p := New(fetcher, classifier, Config{
		Clock: mock,
		Hooks: Hooks{
			OnFetch: func(e FetchEvent) {
				mu.Lock()
				fetched = append(fetched, e.NewIDs)
				mu.Unlock()
			},
			OnPrediction: func(e PredictionEvent) {
				mu.Lock()
				predicted = append(predicted, e.Item.ID)
				mu.Unlock()
			},
		},
	})
	defer p.Close()

	p.Select("AAPL")

	advanceUntil(t, mock, 100*time.Millisecond, func() bool { return classifier.count() == 3 })
	assert.Equal(t, fetcher.callCount("AAPL"), 1)
	assert.Equal(t, classifier.ids(), []string{"a1", "a2", "a3"})

	advanceUntil(t, mock, 500*time.Millisecond, func() bool { return classifier.count() == 4 })
	assert.Equal(t, fetcher.callCount("AAPL"), 2)
	assert.Equal(t, classifier.ids(), []string{"a1", "a2", "a3", "a4"})

	calls := classifier.dispatches()
	for i := 1; i < len(calls); i++ {
		gap := calls[i].at.Sub(calls[i-1].at)
		if gap < DefaultClassifyDelay {
			t.Fatalf("dispatch %s followed %s after %s", calls[i].id, calls[i-1].id, gap)
		}
	}
	assert.Equal(t, atomic.LoadInt32(&classifier.maxActive), int32(1))

	// a third poll with nothing new classifies nothing
	mock.Add(2 * DefaultPollInterval)
	eventually(t, func() bool { return fetcher.callCount("AAPL") >= 3 })
	eventually(t, func() bool { return p.Snapshot().Phase == PhaseReady })
	assert.Equal(t, classifier.count(), 4)

	snap := p.Snapshot()
	assert.Equal(t, snap.Ticker, "AAPL")
	assert.Equal(t, snap.SeenCount, 4)
	assert.Equal(t, len(snap.Predictions), 4)
	assert.Equal(t, len(snap.Items), 3)
	assert.Equal(t, snap.Distribution.Total, 3)
	assert.Equal(t, snap.Distribution.Outlier, 3)

	mu.Lock()
	assert.Equal(t, fetched[0], []string{"a1", "a2", "a3"})
	assert.Equal(t, fetched[1], []string{"a4"})
	assert.Equal(t, predicted, []string{"a1", "a2", "a3", "a4"})
	mu.Unlock()
}

func TestPipelineUsesQueryTemplate(t *testing.T) {
	mock := clock.NewMock()
	fetcher := newFakeFetcher(nil)
	p := New(fetcher, newFakeClassifier(mock), Config{
		Clock: mock,
		Query: news.Query{Ticker: "IGNORED", Limit: 10, WindowHours: 6},
	})
	defer p.Close()

	p.Select("TSLA")
	eventually(t, func() bool { return fetcher.callCount("TSLA") == 1 })

	fetcher.mu.Lock()
	q := fetcher.queries[0]
	fetcher.mu.Unlock()
	assert.Equal(t, q.Ticker, "TSLA")
	assert.Equal(t, q.Limit, 10)
	assert.Equal(t, q.WindowHours, 6.0)
	assert.Equal(t, q.Order, news.DefaultOrder)
	assert.Equal(t, q.Sort, news.DefaultSort)
}

func TestPipelineFailureDoesNotStopQueue(t *testing.T) {
	mock := clock.NewMock()
	fetcher := newFakeFetcher(map[string][]fetchStep{
		"AAPL": {{ids: []string{"a1", "a2", "a3"}}},
	})
	classifier := newFakeClassifier(mock)
	classifier.failOnce["a2"] = true

	p := New(fetcher, classifier, Config{Clock: mock})
	defer p.Close()

	p.Select("AAPL")
	advanceUntil(t, mock, 200*time.Millisecond, func() bool { return classifier.count() == 3 })
	eventually(t, func() bool { return p.Snapshot().Phase == PhaseReady })

	snap := p.Snapshot()
	_, ok := snap.Predictions["a2"]
	assert.Equal(t, ok, false)
	assert.Equal(t, snap.Items[1].Error, "model unavailable")
	assert.Equal(t, snap.Items[2].Prediction != nil, true)

	// failed ids are not retried automatically
	advanceUntil(t, mock, time.Second, func() bool { return fetcher.callCount("AAPL") >= 2 })
	mock.Add(5 * time.Second)
	assert.Equal(t, classifier.count(), 3)

	prediction, err := p.ClassifyNow(context.Background(), "a2")
	assert.Equal(t, err, nil)
	assert.Equal(t, prediction.Label, "negative")

	snap = p.Snapshot()
	assert.Equal(t, snap.Items[1].Error, "")
	assert.Equal(t, snap.Predictions["a2"].IsOutlier, true)
}

func TestPipelineClassifyNow(t *testing.T) {
	mock := clock.NewMock()
	fetcher := newFakeFetcher(map[string][]fetchStep{
		"AAPL": {{ids: []string{"a1", "a2", "a3"}}},
	})
	classifier := newFakeClassifier(mock)
	release := make(chan struct{})
	classifier.block["a1"] = release

	p := New(fetcher, classifier, Config{Clock: mock})
	defer p.Close()

	_, err := p.ClassifyNow(context.Background(), "a1")
	assert.Equal(t, err, ErrNoSession)

	p.Select("AAPL")
	eventually(t, func() bool { return classifier.count() == 1 })

	snap := p.Snapshot()
	assert.Equal(t, snap.Phase, PhaseClassifying)
	assert.Equal(t, snap.Items[0].Loading, true)

	_, err = p.ClassifyNow(context.Background(), "a1")
	assert.Equal(t, err, ErrInFlight)

	_, err = p.ClassifyNow(context.Background(), "zz")
	assert.Equal(t, err, ErrUnknownArticle)

	// a manual request does not wait for the blocked automatic one
	prediction, err := p.ClassifyNow(context.Background(), "a2")
	assert.Equal(t, err, nil)
	assert.Equal(t, prediction.Score, 0.75)

	again, err := p.ClassifyNow(context.Background(), "a2")
	assert.Equal(t, err, nil)
	assert.Equal(t, again, prediction)

	close(release)
	advanceUntil(t, mock, 200*time.Millisecond, func() bool { return len(p.Snapshot().Predictions) == 3 })
	eventually(t, func() bool { return p.Snapshot().Phase == PhaseReady })

	assert.Equal(t, classifier.ids(), []string{"a1", "a2", "a3"})
}

func TestPipelineTickerChangeDiscardsResults(t *testing.T) {
	mock := clock.NewMock()
	fetcher := newFakeFetcher(map[string][]fetchStep{
		"AAPL": {{ids: []string{"a1", "a2"}}},
		"MSFT": {{ids: []string{"m1"}}},
	})
	classifier := newFakeClassifier(mock)
	release := make(chan struct{})
	classifier.block["a1"] = release

	p := New(fetcher, classifier, Config{Clock: mock})
	defer p.Close()

	first := p.Select("AAPL")
	eventually(t, func() bool { return classifier.count() == 1 })

	second := p.Select("MSFT")
	assert.NotEqual(t, first, second)
	close(release)

	advanceUntil(t, mock, 200*time.Millisecond, func() bool { return len(p.Snapshot().Predictions) == 1 })

	snap := p.Snapshot()
	assert.Equal(t, snap.Ticker, "MSFT")
	assert.Equal(t, snap.SessionID, second)
	_, stale := snap.Predictions["a1"]
	assert.Equal(t, stale, false)
	_, ok := snap.Predictions["m1"]
	assert.Equal(t, ok, true)

	mock.Add(3 * DefaultPollInterval)
	eventually(t, func() bool { return fetcher.callCount("MSFT") >= 2 })
	assert.Equal(t, fetcher.callCount("AAPL"), 1)
	assert.Equal(t, classifier.ids(), []string{"a1", "m1"})
}

func TestPipelinePhases(t *testing.T) {
	mock := clock.NewMock()
	fetcher := newFakeFetcher(map[string][]fetchStep{
		"AAPL": {{ids: nil}},
	})
	fetcher.gate = make(chan struct{})

	p := New(fetcher, newFakeClassifier(mock), Config{Clock: mock})
	defer p.Close()

	assert.Equal(t, p.Snapshot().Phase, PhaseIdle)

	p.Select("AAPL")
	snap := p.Snapshot()
	assert.Equal(t, snap.Phase, PhaseLoading)
	assert.Equal(t, snap.PollingActive, true)

	close(fetcher.gate)
	eventually(t, func() bool { return p.Snapshot().Phase == PhaseReady })
	assert.Equal(t, len(p.Snapshot().Items), 0)

	p.Select("")
	snap = p.Snapshot()
	assert.Equal(t, snap.Phase, PhaseIdle)
	assert.Equal(t, snap.PollingActive, false)
	assert.Equal(t, snap.Ticker, "")
}

func TestPipelineFetchErrorKeepsItems(t *testing.T) {
	mock := clock.NewMock()
	boom := errors.New("Massive.com API error: 500")
	fetcher := newFakeFetcher(map[string][]fetchStep{
		"AAPL": {{ids: []string{"a1"}}, {err: boom}, {ids: []string{"a1", "a2"}}},
	})
	classifier := newFakeClassifier(mock)

	p := New(fetcher, classifier, Config{Clock: mock})
	defer p.Close()

	p.Select("AAPL")
	eventually(t, func() bool { return classifier.count() == 1 })

	advanceUntil(t, mock, time.Second, func() bool { return p.Snapshot().LastError != nil })
	snap := p.Snapshot()
	assert.Equal(t, snap.LastError, boom)
	assert.Equal(t, len(snap.Items), 1)
	assert.Equal(t, snap.Phase, PhaseReady)

	advanceUntil(t, mock, time.Second, func() bool { return classifier.count() == 2 })
	eventually(t, func() bool { return p.Snapshot().LastError == nil })
	assert.Equal(t, len(p.Snapshot().Items), 2)
}

func TestPipelineRefresh(t *testing.T) {
	mock := clock.NewMock()
	fetcher := newFakeFetcher(map[string][]fetchStep{
		"AAPL": {{ids: []string{"a1"}}},
	})
	p := New(fetcher, newFakeClassifier(mock), Config{Clock: mock})
	defer p.Close()

	assert.Equal(t, p.Refresh(), ErrNoSession)

	p.Select("AAPL")
	eventually(t, func() bool { return fetcher.callCount("AAPL") == 1 })

	assert.Equal(t, p.Refresh(), nil)
	assert.Equal(t, fetcher.callCount("AAPL"), 2)
}
