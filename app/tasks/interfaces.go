package tasks

// TaskSchedulerInterface defines the interface for task scheduling operations.
// Feed controllers enqueue their page loads through it and the main application
// owns its lifecycle.
// Example usage:
//
//	scheduler := NewScheduler(workerCount, interval, queueSize)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.EnqueueTask(task)
type TaskSchedulerInterface interface {
	Start()
	Stop()
	EnqueueTask(task TaskInterface) error
}

// TaskEnqueuer is the part of the scheduler that producers need.
type TaskEnqueuer interface {
	EnqueueTask(task TaskInterface) error
}

// PeriodicFunc produces a task on every scheduler tick. Returning nil skips the tick.
type PeriodicFunc func() TaskInterface
