package feed

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lysyi3m/scroll-feed/app/catalog"
	"github.com/lysyi3m/scroll-feed/app/tasks"
)

func TestControllerPagesThroughCorpus(t *testing.T) {
	source := newCountingSource(25)
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", source, enqueuer, DefaultNearBottomThreshold)

	if !controller.Activate() {
		t.Fatal("Expected activation to issue the initial load")
	}

	steps := []struct {
		items    int
		nextPage int
		hasMore  bool
	}{
		{10, 1, true},
		{20, 2, true},
		{25, 3, true},
		{25, 3, false},
	}

	for i, step := range steps {
		if i > 0 && !controller.LoadMore() {
			t.Fatalf("Step %d: expected LoadMore to be admitted", i)
		}
		if err := enqueuer.runNext(t); err != nil {
			t.Fatalf("Step %d: unexpected error: %v", i, err)
		}

		snapshot := controller.Snapshot()
		if snapshot.Count != step.items {
			t.Errorf("Step %d: expected %d items, got %d", i, step.items, snapshot.Count)
		}
		if snapshot.NextPage != step.nextPage {
			t.Errorf("Step %d: expected next page %d, got %d", i, step.nextPage, snapshot.NextPage)
		}
		if snapshot.HasMore != step.hasMore {
			t.Errorf("Step %d: expected hasMore %v, got %v", i, step.hasMore, snapshot.HasMore)
		}
		if snapshot.Loading {
			t.Errorf("Step %d: expected loading to be cleared", i)
		}
	}

	snapshot := controller.Snapshot()
	if snapshot.Items[20].ProductID != "21" || snapshot.Items[24].ProductID != "25" {
		t.Errorf("Expected last page to hold items 21-25, got %s..%s",
			snapshot.Items[20].ProductID, snapshot.Items[24].ProductID)
	}
	if snapshot.Status != StatusExhausted {
		t.Errorf("Expected status %s, got %s", StatusExhausted, snapshot.Status)
	}

	// Exhausted is terminal.
	for i := 0; i < 3; i++ {
		if controller.LoadMore() {
			t.Error("Expected LoadMore to be a no-op once exhausted")
		}
		if controller.OnScroll(nearBottom) {
			t.Error("Expected scroll to be a no-op once exhausted")
		}
	}
	if enqueuer.pending() != 0 {
		t.Errorf("Expected no queued loads, got %d", enqueuer.pending())
	}
	if got := source.calls.Load(); got != 4 {
		t.Errorf("Expected 4 fetches, got %d", got)
	}
	if snapshot := controller.Snapshot(); snapshot.Count != 25 || snapshot.HasMore {
		t.Errorf("Expected 25 items and hasMore false, got %d and %v", snapshot.Count, snapshot.HasMore)
	}
}

func TestControllerGuardsOutstandingLoad(t *testing.T) {
	source := newCountingSource(50)
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", source, enqueuer, DefaultNearBottomThreshold)

	controller.Activate()

	if snapshot := controller.Snapshot(); snapshot.Status != StatusLoading {
		t.Errorf("Expected status %s while fetching, got %s", StatusLoading, snapshot.Status)
	}

	for i := 0; i < 5; i++ {
		if controller.LoadMore() {
			t.Error("Expected LoadMore to be ignored while loading")
		}
		if controller.OnScroll(nearBottom) {
			t.Error("Expected scroll trigger to be ignored while loading")
		}
	}

	if enqueuer.pending() != 1 {
		t.Fatalf("Expected exactly 1 outstanding load, got %d", enqueuer.pending())
	}

	enqueuer.runNext(t)

	if got := source.calls.Load(); got != 1 {
		t.Errorf("Expected 1 fetch, got %d", got)
	}
	if !controller.OnScroll(nearBottom) {
		t.Error("Expected scroll near bottom to load once idle")
	}
}

func TestControllerTotalPrice(t *testing.T) {
	corpus := catalog.MockCorpus(40)
	source := catalog.NewMemory(corpus, 10)
	controller := NewController("feed", source, inlineEnqueuer{}, DefaultNearBottomThreshold)

	controller.Activate()
	controller.LoadMore()

	snapshot := controller.Snapshot()
	if snapshot.Count != 20 {
		t.Fatalf("Expected 20 items, got %d", snapshot.Count)
	}

	want := TotalPrice(corpus[:20])
	if snapshot.TotalPrice != want {
		t.Errorf("Expected total price %v, got %v", want, snapshot.TotalPrice)
	}

	var manual float64
	for _, record := range corpus[:20] {
		manual += record.Price
	}
	if want != manual {
		t.Errorf("TotalPrice = %v, manual sum = %v", want, manual)
	}

	controller.LoadMore()
	if got := controller.Snapshot().TotalPrice; got != TotalPrice(corpus[:30]) {
		t.Errorf("Expected total to follow the items, got %v", got)
	}
}

func TestControllerTotalPriceEmpty(t *testing.T) {
	if TotalPrice(nil) != 0 {
		t.Error("Expected zero total for no items")
	}
}

func TestControllerDeactivateMidFetch(t *testing.T) {
	source := newCountingSource(30)
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", source, enqueuer, DefaultNearBottomThreshold)

	controller.Activate()
	controller.Deactivate()

	if err := enqueuer.runNext(t); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	snapshot := controller.Snapshot()
	if snapshot.Count != 0 {
		t.Errorf("Expected stale completion to be discarded, got %d items", snapshot.Count)
	}
	if snapshot.Loading {
		t.Error("Expected loading to be cleared on deactivation")
	}
	if snapshot.Active {
		t.Error("Expected controller to be inactive")
	}
	if controller.LoadMore() {
		t.Error("Expected LoadMore to be rejected after deactivation")
	}

	// Deactivate is idempotent.
	controller.Deactivate()
}

func TestControllerReactivateDiscardsOldGeneration(t *testing.T) {
	source := newCountingSource(30)
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", source, enqueuer, DefaultNearBottomThreshold)

	controller.Activate()
	controller.Deactivate()
	controller.Activate()

	if enqueuer.pending() != 2 {
		t.Fatalf("Expected 2 queued loads, got %d", enqueuer.pending())
	}

	enqueuer.runNext(t) // stale
	if snapshot := controller.Snapshot(); snapshot.Count != 0 || !snapshot.Loading {
		t.Errorf("Expected stale load to leave state untouched, got %d items, loading=%v", snapshot.Count, snapshot.Loading)
	}

	enqueuer.runNext(t)
	snapshot := controller.Snapshot()
	if snapshot.Count != 10 {
		t.Errorf("Expected 10 items without duplicates, got %d", snapshot.Count)
	}
	if snapshot.NextPage != 1 {
		t.Errorf("Expected next page 1, got %d", snapshot.NextPage)
	}
}

func TestControllerFetchErrorIsRetryable(t *testing.T) {
	source := newCountingSource(30)
	source.setErr(errors.New("connection reset"))
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", source, enqueuer, DefaultNearBottomThreshold)

	controller.Activate()
	err := enqueuer.runNext(t)

	var fetchErr *catalog.FetchError
	if !errors.As(err, &fetchErr) {
		t.Fatalf("Expected task to report FetchError, got %v", err)
	}

	snapshot := controller.Snapshot()
	if !snapshot.HasMore {
		t.Error("Expected a fetch error not to exhaust the feed")
	}
	if snapshot.Loading {
		t.Error("Expected loading to be cleared after an error")
	}
	if snapshot.NextPage != 0 {
		t.Errorf("Expected next page to stay 0, got %d", snapshot.NextPage)
	}
	if !strings.Contains(snapshot.Error, "connection reset") {
		t.Errorf("Expected error to be surfaced, got %q", snapshot.Error)
	}
	if snapshot.Status != StatusIdle {
		t.Errorf("Expected status %s, got %s", StatusIdle, snapshot.Status)
	}

	source.setErr(nil)
	if !controller.LoadMore() {
		t.Fatal("Expected retry to be admitted")
	}
	enqueuer.runNext(t)

	snapshot = controller.Snapshot()
	if snapshot.Count != 10 || snapshot.Error != "" {
		t.Errorf("Expected retry to load page 0 and clear the error, got %d items, error %q", snapshot.Count, snapshot.Error)
	}
}

func TestControllerEnqueueFailure(t *testing.T) {
	enqueuer := &manualEnqueuer{err: tasks.ErrQueueFull}
	controller := NewController("feed", newCountingSource(10), enqueuer, DefaultNearBottomThreshold)

	if controller.Activate() {
		t.Error("Expected activation load to fail when the queue is full")
	}

	snapshot := controller.Snapshot()
	if snapshot.Loading {
		t.Error("Expected loading to be cleared when enqueue fails")
	}
	if !snapshot.HasMore {
		t.Error("Expected feed to stay retryable")
	}
	if !strings.Contains(snapshot.Error, tasks.ErrQueueFull.Error()) {
		t.Errorf("Expected queue error to be surfaced, got %q", snapshot.Error)
	}

	enqueuer.err = nil
	if !controller.LoadMore() {
		t.Error("Expected LoadMore to be admitted once the queue drains")
	}
}

func TestControllerOnScroll(t *testing.T) {
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", newCountingSource(50), enqueuer, DefaultNearBottomThreshold)

	far := Viewport{ScrollTop: 0, ViewportHeight: 800, ContentHeight: 1800}
	if controller.OnScroll(nearBottom) {
		t.Error("Expected scroll to be ignored before the listener is attached")
	}

	controller.Activate()
	enqueuer.runNext(t)

	if controller.OnScroll(far) {
		t.Error("Expected scroll far from the bottom to be ignored")
	}
	if !controller.OnScroll(nearBottom) {
		t.Error("Expected scroll near the bottom to trigger a load")
	}
	enqueuer.runNext(t)

	controller.Deactivate()
	if controller.OnScroll(nearBottom) {
		t.Error("Expected scroll to be ignored once the listener is detached")
	}
	if enqueuer.pending() != 0 {
		t.Errorf("Expected no loads after detach, got %d", enqueuer.pending())
	}
}

func TestControllerWait(t *testing.T) {
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", newCountingSource(20), enqueuer, DefaultNearBottomThreshold)

	if err := controller.Wait(context.Background()); err != nil {
		t.Errorf("Expected Wait on an idle feed to return immediately, got %v", err)
	}

	controller.Activate()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := controller.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Expected Wait to time out while the load is queued, got %v", err)
	}

	go enqueuer.runNext(t)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer waitCancel()
	if err := controller.Wait(waitCtx); err != nil {
		t.Fatalf("Expected Wait to return after completion, got %v", err)
	}
	if controller.Snapshot().Count != 10 {
		t.Errorf("Expected 10 items after Wait, got %d", controller.Snapshot().Count)
	}
}

func TestControllerWaitReleasedByDeactivate(t *testing.T) {
	enqueuer := &manualEnqueuer{}
	controller := NewController("feed", newCountingSource(20), enqueuer, DefaultNearBottomThreshold)
	controller.Activate()

	released := make(chan error, 1)
	go func() {
		released <- controller.Wait(context.Background())
	}()

	time.Sleep(5 * time.Millisecond)
	controller.Deactivate()

	select {
	case err := <-released:
		if err != nil {
			t.Errorf("Expected nil error, got %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected Deactivate to release waiters")
	}
}

func TestControllerSingleFlightUnderConcurrentScroll(t *testing.T) {
	source := newCountingSource(200)
	source.delay = 5 * time.Millisecond

	scheduler := tasks.NewScheduler(4, 0, 100)
	scheduler.Start()
	defer scheduler.Stop()

	controller := NewController("feed", source, scheduler, DefaultNearBottomThreshold)
	controller.Activate()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				controller.OnScroll(nearBottom)
				time.Sleep(100 * time.Microsecond)
			}
		}()
	}
	wg.Wait()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := controller.Wait(ctx); err != nil {
		t.Fatal(err)
	}

	if peak := source.peak.Load(); peak > 1 {
		t.Errorf("Expected at most 1 outstanding fetch, observed %d", peak)
	}

	snapshot := controller.Snapshot()
	if int(source.calls.Load()) != snapshot.NextPage+boolToInt(!snapshot.HasMore) {
		t.Errorf("Expected fetch count to match completed loads, got %d calls for next page %d", source.calls.Load(), snapshot.NextPage)
	}
	if snapshot.Count != snapshot.NextPage*10 && snapshot.HasMore {
		t.Errorf("Expected %d items for %d full pages, got %d", snapshot.NextPage*10, snapshot.NextPage, snapshot.Count)
	}
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
