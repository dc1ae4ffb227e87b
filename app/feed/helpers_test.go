package feed

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/lysyi3m/scroll-feed/app/catalog"
	"github.com/lysyi3m/scroll-feed/app/tasks"
)

// manualEnqueuer holds tasks until the test runs them, so a fetch can be kept
// "in flight" for as long as needed.
type manualEnqueuer struct {
	mu    sync.Mutex
	queue []tasks.TaskInterface
	err   error
}

func (m *manualEnqueuer) EnqueueTask(task tasks.TaskInterface) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.queue = append(m.queue, task)
	return nil
}

func (m *manualEnqueuer) pending() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}

func (m *manualEnqueuer) runNext(t *testing.T) error {
	t.Helper()

	m.mu.Lock()
	if len(m.queue) == 0 {
		m.mu.Unlock()
		t.Fatal("Expected a queued task")
	}
	task := m.queue[0]
	m.queue = m.queue[1:]
	m.mu.Unlock()

	task.Start()
	return task.Execute(context.Background())
}

// inlineEnqueuer runs every task synchronously.
type inlineEnqueuer struct{}

func (inlineEnqueuer) EnqueueTask(task tasks.TaskInterface) error {
	task.Start()
	task.Execute(context.Background())
	return nil
}

// countingSource counts fetches and tracks how many overlap.
type countingSource struct {
	next     catalog.PageSource
	delay    time.Duration
	calls    atomic.Int32
	inflight atomic.Int32
	peak     atomic.Int32

	mu  sync.Mutex
	err error
}

func newCountingSource(records int) *countingSource {
	return &countingSource{next: catalog.NewMemory(catalog.MockCorpus(records), 10)}
}

func (s *countingSource) setErr(err error) {
	s.mu.Lock()
	s.err = err
	s.mu.Unlock()
}

func (s *countingSource) FetchPage(ctx context.Context, page int) ([]catalog.Record, error) {
	s.calls.Add(1)
	current := s.inflight.Add(1)
	defer s.inflight.Add(-1)

	for {
		peak := s.peak.Load()
		if current <= peak || s.peak.CompareAndSwap(peak, current) {
			break
		}
	}

	if s.delay > 0 {
		time.Sleep(s.delay)
	}

	s.mu.Lock()
	err := s.err
	s.mu.Unlock()
	if err != nil {
		return nil, &catalog.FetchError{Page: page, Kind: catalog.KindNetwork, Err: err}
	}

	return s.next.FetchPage(ctx, page)
}

var nearBottom = Viewport{ScrollTop: 960, ViewportHeight: 800, ContentHeight: 1800}
