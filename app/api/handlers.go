package api

import (
	"bytes"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/lysyi3m/scroll-feed/app/catalog"
	"github.com/lysyi3m/scroll-feed/app/cfg"
	"github.com/lysyi3m/scroll-feed/app/feed"
	"github.com/lysyi3m/scroll-feed/app/render"
)

func NewHandler(registry *feed.Registry, source catalog.PageSource,
	counter RecordCounter, renderer *render.Renderer) *Handler {
	return &Handler{
		registry: registry,
		source:   source,
		counter:  counter,
		renderer: renderer,
	}
}

func (h *Handler) GetIndex(c *gin.Context) {
	var buf bytes.Buffer
	if err := h.renderer.Page(&buf); err != nil {
		slog.Error("Template error", "template", "page", "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) CreateFeed(c *gin.Context) {
	id, controller := h.registry.Create()
	h.waitForLoad(c, controller)

	c.JSON(http.StatusCreated, FeedResponse{ID: id, State: controller.Snapshot()})
}

func (h *Handler) GetFeedState(c *gin.Context) {
	id, controller, ok := h.lookupFeed(c)
	if !ok {
		return
	}
	h.waitForLoad(c, controller)

	c.JSON(http.StatusOK, FeedResponse{ID: id, State: controller.Snapshot()})
}

func (h *Handler) DeleteFeed(c *gin.Context) {
	id := c.Param("id")
	if err := h.registry.Remove(id); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed session not found"})
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) ScrollFeed(c *gin.Context) {
	_, controller, ok := h.lookupFeed(c)
	if !ok {
		return
	}

	var req ScrollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid scroll measurements",
			"details": err.Error(),
		})
		return
	}

	triggered := controller.OnScroll(req.Viewport())
	if triggered {
		h.waitForLoad(c, controller)
	}

	c.JSON(http.StatusOK, TriggerResponse{Triggered: triggered, State: controller.Snapshot()})
}

func (h *Handler) LoadMore(c *gin.Context) {
	_, controller, ok := h.lookupFeed(c)
	if !ok {
		return
	}

	triggered := controller.LoadMore()
	if triggered {
		h.waitForLoad(c, controller)
	}

	c.JSON(http.StatusOK, TriggerResponse{Triggered: triggered, State: controller.Snapshot()})
}

func (h *Handler) GetFeedView(c *gin.Context) {
	id, controller, ok := h.lookupFeed(c)
	if !ok {
		return
	}
	h.waitForLoad(c, controller)

	var buf bytes.Buffer
	if err := h.renderer.Feed(&buf, id, controller.Snapshot()); err != nil {
		slog.Error("Template error", "template", "feed", "feed", id, "error", err)
		c.Status(http.StatusInternalServerError)
		return
	}

	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

func (h *Handler) GetPage(c *gin.Context) {
	page, err := strconv.Atoi(c.Param("page"))
	if err != nil || page < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page index"})
		return
	}

	records, err := h.source.FetchPage(c.Request.Context(), page)
	if err != nil {
		var fetchErr *catalog.FetchError
		switch {
		case errors.Is(err, catalog.ErrInvalidPage):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid page index"})
		case errors.As(err, &fetchErr):
			slog.Error("Page fetch failed", "page", page, "kind", string(fetchErr.Kind), "error", err)
			c.JSON(http.StatusBadGateway, gin.H{
				"error":   "Failed to fetch page",
				"details": err.Error(),
			})
		default:
			slog.Error("Page fetch failed", "page", page, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch page"})
		}
		return
	}

	if records == nil {
		records = []catalog.Record{}
	}

	c.Header("X-Page-Records", strconv.Itoa(len(records)))
	c.JSON(http.StatusOK, catalog.PageResponse{Page: page, Records: records})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sessions":  h.registry.Count(),
		"version":   cfg.GetVersion(),
	}

	if h.counter != nil {
		if count, err := h.counter.Count(c.Request.Context()); err == nil {
			health["records"] = count
		} else {
			slog.Error("Database error", "operation", "count_records", "error", err)
		}
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) APIListSessions(c *gin.Context) {
	sessions := h.registry.List()

	c.JSON(http.StatusOK, map[string]interface{}{
		"sessions": sessions,
		"total":    len(sessions),
	})
}

func (h *Handler) lookupFeed(c *gin.Context) (string, *feed.Controller, bool) {
	id := c.Param("id")
	controller, err := h.registry.Get(id)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed session not found"})
		return id, nil, false
	}
	return id, controller, true
}

// waitForLoad blocks until the outstanding page load is applied when the
// request asks for it with ?wait=1.
func (h *Handler) waitForLoad(c *gin.Context, controller *feed.Controller) {
	wait, _ := strconv.ParseBool(c.Query("wait"))
	if !wait {
		return
	}

	if err := controller.Wait(c.Request.Context()); err != nil {
		slog.Debug("Stopped waiting for page load", "feed", controller.Name(), "error", err)
	}
}
