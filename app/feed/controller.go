package feed

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/lysyi3m/scroll-feed/app/catalog"
	"github.com/lysyi3m/scroll-feed/app/tasks"
)

const DefaultNearBottomThreshold = 50

// Controller owns the state of one mounted feed. Page loads run on the task
// scheduler and report back through complete.
type Controller struct {
	name      string
	source    catalog.PageSource
	enqueuer  tasks.TaskEnqueuer
	threshold float64

	mu         sync.Mutex
	items      []catalog.Record
	nextPage   int
	loading    bool
	hasMore    bool
	lastErr    error
	active     bool
	attached   bool
	generation uint64
	done       chan struct{}
}

func NewController(name string, source catalog.PageSource, enqueuer tasks.TaskEnqueuer, threshold float64) *Controller {
	if threshold < 0 {
		threshold = DefaultNearBottomThreshold
	}
	return &Controller{
		name:      name,
		source:    source,
		enqueuer:  enqueuer,
		threshold: threshold,
		hasMore:   true,
	}
}

func (c *Controller) Name() string {
	return c.name
}

// Activate starts a fresh feed state, attaches the scroll listener and issues
// the initial page load.
func (c *Controller) Activate() bool {
	c.mu.Lock()
	c.generation++
	c.items = nil
	c.nextPage = 0
	c.loading = false
	c.hasMore = true
	c.lastErr = nil
	c.releaseWaiters()
	c.active = true
	c.attached = true
	c.mu.Unlock()

	slog.Debug("Feed activated", "feed", c.name)

	return c.LoadMore()
}

// Deactivate detaches the scroll listener. A page load still in flight is
// discarded when it completes.
func (c *Controller) Deactivate() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.active {
		return
	}

	c.generation++
	c.active = false
	c.attached = false
	c.loading = false
	c.releaseWaiters()

	slog.Debug("Feed deactivated", "feed", c.name, "items", len(c.items))
}

// LoadMore requests the next page unless a load is already outstanding, the
// corpus is exhausted or the feed is inactive. It reports whether a load was issued.
func (c *Controller) LoadMore() bool {
	c.mu.Lock()
	if !c.active || c.loading || !c.hasMore {
		c.mu.Unlock()
		return false
	}

	c.loading = true
	c.done = make(chan struct{})
	generation := c.generation
	page := c.nextPage
	c.mu.Unlock()

	task := NewLoadPageTask(c, generation, page)
	if err := c.enqueuer.EnqueueTask(task); err != nil {
		slog.Warn("Failed to enqueue page load", "feed", c.name, "page", page, "error", err)
		c.complete(generation, page, nil, fmt.Errorf("failed to enqueue page load: %w", err))
		return false
	}

	return true
}

// OnScroll is the scroll listener. It loads the next page when the viewport
// is within the near-bottom threshold.
func (c *Controller) OnScroll(v Viewport) bool {
	c.mu.Lock()
	attached := c.attached
	c.mu.Unlock()

	if !attached || !v.NearBottom(c.threshold) {
		return false
	}
	return c.LoadMore()
}

// Wait blocks until the outstanding page load, if any, has been applied.
func (c *Controller) Wait(ctx context.Context) error {
	c.mu.Lock()
	done := c.done
	c.mu.Unlock()

	if done == nil {
		return nil
	}

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	snapshot := Snapshot{
		Items:      slices.Clone(c.items),
		Count:      len(c.items),
		TotalPrice: TotalPrice(c.items),
		NextPage:   c.nextPage,
		Loading:    c.loading,
		HasMore:    c.hasMore,
		Active:     c.active,
		Status:     statusOf(c.loading, c.hasMore),
	}
	if snapshot.Items == nil {
		snapshot.Items = []catalog.Record{}
	}
	if c.lastErr != nil {
		snapshot.Error = c.lastErr.Error()
	}
	return snapshot
}

// complete applies a finished page load. Results from an earlier generation
// are dropped.
func (c *Controller) complete(generation uint64, page int, records []catalog.Record, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if generation != c.generation || !c.active {
		slog.Debug("Discarding stale page load", "feed", c.name, "page", page, "records", len(records))
		return false
	}

	defer func() {
		c.loading = false
		c.releaseWaiters()
	}()

	switch {
	case err != nil:
		c.lastErr = err
	case len(records) == 0:
		c.hasMore = false
		c.lastErr = nil
	default:
		c.items = append(c.items, records...)
		c.nextPage++
		c.lastErr = nil
	}

	return true
}

func (c *Controller) releaseWaiters() {
	if c.done != nil {
		close(c.done)
		c.done = nil
	}
}
