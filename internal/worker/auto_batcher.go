package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/AliXAbdullah03/nge-brain/internal/usecase"
)

// BatchFacade exposes the subset of application functionality required by the worker.
type BatchFacade interface {
	PendingDays(ctx context.Context, limit int) ([]usecase.DayBatch, error)
	AttachDay(ctx context.Context, day usecase.DayBatch) (int, error)
	ReconcileDuplicates(ctx context.Context) (int, error)
}

// AutoBatcher periodically attaches orders that carry a departure date but no
// shipment to their day batch. Each day is handled by one pool worker.
type AutoBatcher struct {
	facade    BatchFacade
	interval  time.Duration
	batchSize int
	workers   int
	logger    *slog.Logger

	jobs   chan usecase.DayBatch
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewAutoBatcher constructs the auto-batch worker pool.
func NewAutoBatcher(facade BatchFacade, interval time.Duration, batchSize, workers int, logger *slog.Logger) *AutoBatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if interval <= 0 {
		interval = time.Minute
	}
	return &AutoBatcher{
		facade:    facade,
		interval:  interval,
		batchSize: batchSize,
		workers:   workers,
		logger:    logger,
	}
}

// Start launches background processing.
func (b *AutoBatcher) Start(ctx context.Context) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	b.cancel = cancel
	b.jobs = make(chan usecase.DayBatch, b.workers)

	for i := 0; i < b.workers; i++ {
		b.wg.Add(1)
		go b.worker(runCtx)
	}

	b.wg.Add(1)
	go b.dispatch(runCtx)
}

// Stop cancels processing and waits for all workers to finish.
func (b *AutoBatcher) Stop() {
	b.mu.Lock()
	if b.cancel != nil {
		b.cancel()
		b.cancel = nil
	}
	b.mu.Unlock()

	b.wg.Wait()
}

func (b *AutoBatcher) dispatch(ctx context.Context) {
	defer b.wg.Done()
	defer close(b.jobs)
	ticker := time.NewTicker(b.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.fetchAndDispatch(ctx)
			b.reconcile(ctx)
		}
	}
}

func (b *AutoBatcher) fetchAndDispatch(ctx context.Context) {
	days, err := b.facade.PendingDays(ctx, b.batchSize)
	if err != nil {
		b.logger.Error("fetch unbatched orders failed", slog.String("error", err.Error()))
		return
	}
	for _, day := range days {
		select {
		case <-ctx.Done():
			return
		case b.jobs <- day:
		}
	}
}

func (b *AutoBatcher) reconcile(ctx context.Context) {
	merged, err := b.facade.ReconcileDuplicates(ctx)
	if err != nil {
		if ctx.Err() == nil {
			b.logger.Error("reconcile duplicate batches failed", slog.String("error", err.Error()))
		}
		return
	}
	if merged > 0 {
		b.logger.Info("duplicate batches merged", slog.Int("days", merged))
	}
}

func (b *AutoBatcher) worker(ctx context.Context) {
	defer b.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case day, ok := <-b.jobs:
			if !ok {
				return
			}
			b.handleDay(ctx, day)
		}
	}
}

func (b *AutoBatcher) handleDay(ctx context.Context, day usecase.DayBatch) {
	attached, err := b.facade.AttachDay(ctx, day)
	if err != nil {
		b.logger.Error("auto batch failed", slog.String("day", day.Day), slog.String("error", err.Error()))
		return
	}
	b.logger.Info("orders batched", slog.String("day", day.Day), slog.Int("orders", attached))
}
