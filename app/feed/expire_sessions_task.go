package feed

import (
	"context"
	"log/slog"
	"time"

	"github.com/lysyi3m/scroll-feed/app/tasks"
)

type ExpireSessionsTask struct {
	tasks.Task
	registry *Registry
	ttl      time.Duration
}

func NewExpireSessionsTask(registry *Registry, ttl time.Duration) *ExpireSessionsTask {
	return &ExpireSessionsTask{
		Task:     tasks.NewTask(tasks.TaskTypeExpireSessions, ""),
		registry: registry,
		ttl:      ttl,
	}
}

// ExpireSessionsPeriodic returns a scheduler producer that reaps idle feeds on every tick.
func ExpireSessionsPeriodic(registry *Registry, ttl time.Duration) tasks.PeriodicFunc {
	return func() tasks.TaskInterface {
		if ttl <= 0 {
			return nil
		}
		return NewExpireSessionsTask(registry, ttl)
	}
}

func (t *ExpireSessionsTask) Execute(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	expired := t.registry.ExpireIdle(t.ttl)
	if expired == 0 {
		return nil
	}

	slog.Info("Task completed",
		"type", string(t.GetType()),
		"duration", t.GetDuration(),
		"expired", expired,
		"remaining", t.registry.Count())

	return nil
}
