package catalog

import (
	"context"
	"time"
)

type latencySource struct {
	next  PageSource
	delay time.Duration
}

// WithLatency delays every fetch by d before delegating to next.
func WithLatency(next PageSource, d time.Duration) PageSource {
	if d <= 0 {
		return next
	}
	return &latencySource{next: next, delay: d}
}

func (l *latencySource) FetchPage(ctx context.Context, page int) ([]Record, error) {
	if page < 0 {
		return nil, ErrInvalidPage
	}

	timer := time.NewTimer(l.delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return nil, contextError(page, ctx.Err())
	case <-timer.C:
	}

	return l.next.FetchPage(ctx, page)
}
