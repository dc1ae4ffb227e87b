package api

import (
	"context"

	"github.com/lysyi3m/scroll-feed/app/catalog"
	"github.com/lysyi3m/scroll-feed/app/database"
	"github.com/lysyi3m/scroll-feed/app/feed"
	"github.com/lysyi3m/scroll-feed/app/render"
)

// RecordCounter reports the size of the catalog. The remote source has none.
type RecordCounter interface {
	Count(ctx context.Context) (int, error)
}

var (
	_ RecordCounter = (*catalog.Memory)(nil)
	_ RecordCounter = (*database.RecordRepository)(nil)
)

type Handler struct {
	registry *feed.Registry
	source   catalog.PageSource
	counter  RecordCounter
	renderer *render.Renderer
}

type FeedResponse struct {
	ID    string        `json:"id"`
	State feed.Snapshot `json:"state"`
}

// ScrollRequest is the body of POST /api/feeds/:id/scroll. Every measurement
// must be present.
type ScrollRequest struct {
	ScrollTop      *float64 `json:"scrollTop" binding:"required,gte=0"`
	ViewportHeight *float64 `json:"viewportHeight" binding:"required,gt=0"`
	ContentHeight  *float64 `json:"contentHeight" binding:"required,gt=0"`
}

func (r ScrollRequest) Viewport() feed.Viewport {
	return feed.Viewport{
		ScrollTop:      *r.ScrollTop,
		ViewportHeight: *r.ViewportHeight,
		ContentHeight:  *r.ContentHeight,
	}
}

type TriggerResponse struct {
	Triggered bool          `json:"triggered"`
	State     feed.Snapshot `json:"state"`
}
