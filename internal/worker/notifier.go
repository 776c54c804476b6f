package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/notify"
)

// OrderSource exposes the subset of application functionality required by
// the notifier.
type OrderSource interface {
	RecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]model.Order, error)
}

// Notifier polls for recently updated orders and fans them out to the
// notification hub through a worker pool. It runs beside the write path
// and never participates in reconciliation correctness.
type Notifier struct {
	source       OrderSource
	hub          *notify.Hub
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex

	waterMu   sync.Mutex
	watermark time.Time
}

// NewNotifier constructs the notifier worker pool.
func NewNotifier(source OrderSource, hub *notify.Hub, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *Notifier {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &Notifier{
		source:       source,
		hub:          hub,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
		watermark:    time.Now().UTC(),
	}
}

// Start launches background polling and publishing.
func (n *Notifier) Start(ctx context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	n.cancel = cancel

	for i := 0; i < n.workers; i++ {
		n.wg.Add(1)
		go n.worker(runCtx)
	}

	n.wg.Add(1)
	go n.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (n *Notifier) Stop() {
	n.mu.Lock()
	if n.cancel != nil {
		n.cancel()
		n.cancel = nil
	}
	n.mu.Unlock()

	n.wg.Wait()
}

func (n *Notifier) dispatch(ctx context.Context) {
	defer n.wg.Done()
	defer close(n.jobs)
	ticker := time.NewTicker(n.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n.fetchAndDispatch(ctx)
		}
	}
}

func (n *Notifier) fetchAndDispatch(ctx context.Context) {
	since := n.currentWatermark()
	orders, err := n.source.RecentlyUpdated(ctx, since, n.batchSize)
	if err != nil {
		n.logger.Error("fetch updated orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		if order.UpdatedAt.After(since) {
			n.advanceWatermark(order.UpdatedAt)
		}
		select {
		case <-ctx.Done():
			return
		case n.jobs <- order:
		}
	}
}

func (n *Notifier) worker(ctx context.Context) {
	defer n.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-n.jobs:
			if !ok {
				return
			}
			n.hub.Publish(notify.OrderEvent{
				OrderID:       order.ID,
				Number:        order.Number,
				Status:        order.Status,
				PaymentStatus: order.PaymentStatus,
				UpdatedAt:     order.UpdatedAt,
			})
		}
	}
}

func (n *Notifier) currentWatermark() time.Time {
	n.waterMu.Lock()
	defer n.waterMu.Unlock()
	return n.watermark
}

func (n *Notifier) advanceWatermark(t time.Time) {
	n.waterMu.Lock()
	defer n.waterMu.Unlock()
	if t.After(n.watermark) {
		n.watermark = t
	}
}
