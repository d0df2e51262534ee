package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the watcher.
type PaymentFacade interface {
	PendingOrders(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error)
	CheckTransaction(ctx context.Context, transactionID string) (*model.RemoteTransaction, error)
	Reconcile(ctx context.Context, order *model.Order, tx *model.RemoteTransaction) (model.OrderStatus, error)
}

// PaymentWatcher polls pending orders with an initiated transaction and
// reconciles them against the processor. It is the safety net for webhooks
// and return visits that never arrived.
type PaymentWatcher struct {
	facade       PaymentFacade
	pollInterval time.Duration
	batchSize    int
	workers      int
	logger       *slog.Logger

	jobs   chan model.Order
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewPaymentWatcher constructs the watcher worker pool.
func NewPaymentWatcher(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentWatcher {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	return &PaymentWatcher{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background processing.
func (p *PaymentWatcher) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(runCtx)
	}

	p.wg.Add(1)
	go p.dispatch(runCtx)
}

// Stop waits for all workers to finish.
func (p *PaymentWatcher) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentWatcher) dispatch(ctx context.Context) {
	defer p.wg.Done()
	defer close(p.jobs)
	ticker := time.NewTicker(p.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.fetchAndDispatch(ctx)
		}
	}
}

func (p *PaymentWatcher) fetchAndDispatch(ctx context.Context) {
	// Orders touched within the last poll interval are skipped; a webhook or
	// return visit may still settle them without our help.
	orders, err := p.facade.PendingOrders(ctx, p.pollInterval, p.batchSize)
	if err != nil {
		p.logger.Error("fetch pending orders failed", slog.String("error", err.Error()))
		return
	}
	for _, order := range orders {
		select {
		case <-ctx.Done():
			return
		case p.jobs <- order:
		}
	}
}

func (p *PaymentWatcher) worker(ctx context.Context) {
	defer p.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case order, ok := <-p.jobs:
			if !ok {
				return
			}
			p.handleOrder(ctx, order)
		}
	}
}

func (p *PaymentWatcher) handleOrder(ctx context.Context, order model.Order) {
	tx, err := p.facade.CheckTransaction(ctx, order.TransactionID)
	if err != nil {
		var apiErr *bml.APIError
		if errors.As(err, &apiErr) {
			p.logger.Warn("transaction status unavailable",
				slog.Int64("order_id", order.ID),
				slog.Int("status", apiErr.Status),
			)
			return
		}
		p.logger.Error("transaction status check failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
		return
	}

	if _, err := p.facade.Reconcile(ctx, &order, tx); err != nil {
		p.logger.Error("background reconciliation failed",
			slog.Int64("order_id", order.ID),
			slog.String("error", err.Error()),
		)
	}
}
