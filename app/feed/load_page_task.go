package feed

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lysyi3m/scroll-feed/app/tasks"
)

type LoadPageTask struct {
	tasks.Task
	Page       int
	generation uint64
	controller *Controller
}

func NewLoadPageTask(controller *Controller, generation uint64, page int) *LoadPageTask {
	return &LoadPageTask{
		Task:       tasks.NewTask(tasks.TaskTypeLoadPage, controller.Name()),
		Page:       page,
		generation: generation,
		controller: controller,
	}
}

func (t *LoadPageTask) Execute(ctx context.Context) error {
	records, err := t.controller.source.FetchPage(ctx, t.Page)
	applied := t.controller.complete(t.generation, t.Page, records, err)

	if err != nil {
		return fmt.Errorf("failed to load page %d: %w", t.Page, err)
	}

	slog.Debug("Task completed",
		"type", string(t.GetType()),
		"feed", t.FeedName,
		"page", t.Page,
		"records", len(records),
		"applied", applied,
		"duration", t.GetDuration())

	return nil
}
