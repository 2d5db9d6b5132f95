package queue

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskpilot/taskpilot/internal/core/domain"
	"github.com/taskpilot/taskpilot/internal/core/ports"
	"github.com/taskpilot/taskpilot/internal/infrastructure/metrics"
	"github.com/taskpilot/taskpilot/pkg/logger"
)

const (
	defaultWorkers     = 4
	defaultBuffer      = 256
	defaultTimeout     = 5 * time.Second
	defaultDedupWindow = 10 * time.Minute
)

// Options tunes the dispatcher. Zero values fall back to the defaults.
type Options struct {
	Workers     int
	Buffer      int
	Timeout     time.Duration
	DedupWindow time.Duration
}

func (o Options) withDefaults() Options {
	if o.Workers <= 0 {
		o.Workers = defaultWorkers
	}
	if o.Buffer <= 0 {
		o.Buffer = defaultBuffer
	}
	if o.Timeout <= 0 {
		o.Timeout = defaultTimeout
	}
	if o.DedupWindow <= 0 {
		o.DedupWindow = defaultDedupWindow
	}
	return o
}

// Dispatcher delivers task-completed notifications in the background. Request
// handlers only ever touch Enqueue, which never blocks: when the buffer is full
// the event is dropped and counted.
type Dispatcher struct {
	queue  chan domain.TaskCompletedEvent
	client ports.AutomationClient
	dedup  ports.DedupStore
	audit  ports.AutomationLogRepository
	opts   Options
	log    zerolog.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewDispatcher creates a dispatcher. dedup and audit are optional.
func NewDispatcher(client ports.AutomationClient, dedup ports.DedupStore, audit ports.AutomationLogRepository, opts Options, log zerolog.Logger) *Dispatcher {
	opts = opts.withDefaults()
	return &Dispatcher{
		queue:  make(chan domain.TaskCompletedEvent, opts.Buffer),
		client: client,
		dedup:  dedup,
		audit:  audit,
		opts:   opts,
		log:    logger.Component(log, "notification_dispatcher"),
		now:    time.Now,
	}
}

// Start launches the workers. Once ctx is cancelled they deliver whatever is
// still buffered and exit; Wait blocks until they have.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.opts.Workers; i++ {
		d.wg.Add(1)
		go d.runWorker(ctx, i)
	}
}

func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) Enqueue(event domain.TaskCompletedEvent) bool {
	select {
	case d.queue <- event:
		metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
		return true
	default:
		metrics.NotificationsTotal.WithLabelValues("dropped").Inc()
		d.log.Warn().
			Int64("task_id", event.TaskID).
			Str("event_id", event.EventID).
			Msg("notification queue full, dropping event")
		return false
	}
}

func (d *Dispatcher) runWorker(ctx context.Context, id int) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			d.drain(ctx, id)
			return
		case event := <-d.queue:
			metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
			d.deliver(ctx, id, event)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context, id int) {
	drained := 0
	for {
		select {
		case event := <-d.queue:
			metrics.NotificationQueueDepth.Set(float64(len(d.queue)))
			d.deliver(ctx, id, event)
			drained++
		default:
			if drained > 0 {
				d.log.Info().Int("worker_id", id).Int("drained", drained).Msg("delivered buffered notifications on shutdown")
			}
			return
		}
	}
}

// deliver runs detached from the worker context so that shutdown does not
// abort an attempt; each attempt is bounded by the delivery timeout instead.
func (d *Dispatcher) deliver(ctx context.Context, workerID int, event domain.TaskCompletedEvent) {
	ctx = context.WithoutCancel(ctx)
	log := d.log.With().
		Int("worker_id", workerID).
		Int64("task_id", event.TaskID).
		Str("event_id", event.EventID).
		Logger()

	if d.dedup != nil {
		first, err := d.dedup.MarkOnce(ctx, event.DedupKey(), d.opts.DedupWindow)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("dedup check failed, delivering anyway")
		case !first:
			metrics.NotificationsTotal.WithLabelValues("duplicate").Inc()
			log.Debug().Msg("duplicate completion inside dedup window, skipping")
			return
		}
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	start := d.now()
	err := d.client.SendTaskCompleted(sendCtx, event)
	cancel()
	elapsed := d.now().Sub(start)

	entry := &domain.AutomationLog{
		EventID:      event.EventID,
		WorkflowName: domain.WorkflowTaskCompleted,
		InputData: map[string]any{
			"task_id":      event.TaskID,
			"actual_hours": event.ActualHours,
		},
		ExecutionTimeMs: elapsed.Milliseconds(),
		CreatedAt:       start,
	}

	result := "sent"
	if err != nil {
		result = "failed"
		entry.Status = domain.AutomationFailed
		entry.ErrorMessage = err.Error()
		log.Error().Err(err).Dur("elapsed", elapsed).Msg("task-completed notification failed")
	} else {
		entry.Status = domain.AutomationSuccess
		log.Info().Dur("elapsed", elapsed).Msg("task-completed notification sent")
	}
	metrics.NotificationsTotal.WithLabelValues(result).Inc()
	metrics.NotificationDuration.WithLabelValues(result).Observe(elapsed.Seconds())

	d.record(ctx, log, entry)
}

func (d *Dispatcher) record(ctx context.Context, log zerolog.Logger, entry *domain.AutomationLog) {
	if d.audit == nil {
		return
	}
	auditCtx, cancel := context.WithTimeout(ctx, d.opts.Timeout)
	defer cancel()
	if err := d.audit.Insert(auditCtx, entry); err != nil {
		log.Warn().Err(err).Msg("failed to record automation log")
	}
}
