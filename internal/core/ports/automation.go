package ports

import (
	"context"
	"time"

	"github.com/taskpilot/taskpilot/internal/core/domain"
)

// CompletionNotifier hands a task-completed event to the background
// delivery pipeline. Enqueue never blocks; it reports false when the event
// was dropped.
type CompletionNotifier interface {
	Enqueue(event domain.TaskCompletedEvent) bool
}

// AutomationClient delivers events to the external automation engine.
type AutomationClient interface {
	SendTaskCompleted(ctx context.Context, event domain.TaskCompletedEvent) error
}

// DedupStore remembers keys for a bounded window.
type DedupStore interface {
	// MarkOnce records key and reports true only for the first caller inside
	// the window.
	MarkOnce(ctx context.Context, key string, window time.Duration) (bool, error)
}
