package worker

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/adapter/payment"
	"github.com/polkiloo/storefront/internal/domain/model"
)

// PaymentFacade exposes the subset of application functionality required by the poller.
type PaymentFacade interface {
	OrdersAwaitingPayment(ctx context.Context, limit int) ([]model.Order, error)
	PaymentOutcome(ctx context.Context, order model.Order) (*model.PaymentNotification, error)
	ApplyPaymentOutcome(ctx context.Context, n model.PaymentNotification) error
}

// PaymentPoller asks the provider about pending orders whose webhook never
// arrived and feeds terminal outcomes through the same reconciliation path.
type PaymentPoller struct {
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

// NewPaymentPoller constructs payment poller worker pool.
func NewPaymentPoller(facade PaymentFacade, pollInterval time.Duration, batchSize, workers int, logger *slog.Logger) *PaymentPoller {
	if workers <= 0 {
		workers = 1
	}
	if batchSize <= 0 {
		batchSize = 1
	}
	if pollInterval <= 0 {
		pollInterval = time.Second
	}
	return &PaymentPoller{
		facade:       facade,
		pollInterval: pollInterval,
		batchSize:    batchSize,
		workers:      workers,
		logger:       logger,
		jobs:         make(chan model.Order, batchSize*workers),
	}
}

// Start launches background polling.
func (p *PaymentPoller) Start(ctx context.Context) {
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
func (p *PaymentPoller) Stop() {
	p.mu.Lock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *PaymentPoller) dispatch(ctx context.Context) {
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

func (p *PaymentPoller) fetchAndDispatch(ctx context.Context) {
	orders, err := p.facade.OrdersAwaitingPayment(ctx, p.batchSize)
	if err != nil {
		p.logger.Error("fetch orders awaiting payment failed", slog.String("error", err.Error()))
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

func (p *PaymentPoller) worker(ctx context.Context) {
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

func (p *PaymentPoller) handleOrder(ctx context.Context, order model.Order) {
	outcome, err := p.facade.PaymentOutcome(ctx, order)
	if err != nil {
		var tooMany payment.TooManyRequestsError
		switch {
		case errors.As(err, &tooMany):
			p.logger.Warn("payment provider rate limited", slog.Duration("retry_after", tooMany.RetryAfter))
			sleep(ctx, tooMany.RetryAfter)
		case errors.Is(err, payment.ErrIntentNotFound):
			p.logger.Warn("payment intent unknown to provider", slog.String("order_id", order.ID))
		default:
			p.logger.Error("payment outcome fetch failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
		}
		return
	}

	// Intent still open, try again on a later tick.
	if outcome.Kind == "" {
		return
	}

	if err := p.facade.ApplyPaymentOutcome(ctx, *outcome); err != nil {
		p.logger.Error("apply payment outcome failed", slog.String("order_id", order.ID), slog.String("error", err.Error()))
	}
}

func sleep(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}
