package test

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/usecase"
)

// PaymentFacadeStub provides controllable behaviour for HTTP layer tests.
type PaymentFacadeStub struct {
	CreateOrderFn func(context.Context, int64, string, string) (*model.Order, error)
	InitiateFn    func(context.Context, int64) (string, error)
	OrderFn       func(context.Context, int64) (*model.Order, []model.OrderNote, error)
	WebhookFn     func(context.Context, usecase.WebhookNotification) error
	ReturnFn      func(context.Context, int64, string) *usecase.ReturnOutcome
}

// CreateOrder delegates to the override or returns a default pending order.
func (s PaymentFacadeStub) CreateOrder(ctx context.Context, amount int64, currency, reference string) (*model.Order, error) {
	if s.CreateOrderFn != nil {
		return s.CreateOrderFn(ctx, amount, currency, reference)
	}
	return &model.Order{ID: 1, Amount: amount, Currency: currency, Reference: reference, Status: model.OrderStatusPending, Key: "wc_order_stub"}, nil
}

// InitiatePayment delegates to the override or returns a default payment URL.
func (s PaymentFacadeStub) InitiatePayment(ctx context.Context, orderID int64) (string, error) {
	if s.InitiateFn != nil {
		return s.InitiateFn(ctx, orderID)
	}
	return "https://pay.bml.example/stub", nil
}

// Order delegates to the override or returns a default order without notes.
func (s PaymentFacadeStub) Order(ctx context.Context, orderID int64) (*model.Order, []model.OrderNote, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, orderID)
	}
	return &model.Order{ID: orderID, Status: model.OrderStatusPending, Key: "wc_order_stub"}, nil, nil
}

// ProcessWebhook delegates to the override or acknowledges silently.
func (s PaymentFacadeStub) ProcessWebhook(ctx context.Context, n usecase.WebhookNotification) error {
	if s.WebhookFn != nil {
		return s.WebhookFn(ctx, n)
	}
	return nil
}

// HandleReturn delegates to the override or redirects to a stub receipt page.
func (s PaymentFacadeStub) HandleReturn(ctx context.Context, orderID int64, orderKey string) *usecase.ReturnOutcome {
	if s.ReturnFn != nil {
		return s.ReturnFn(ctx, orderID, orderKey)
	}
	return &usecase.ReturnOutcome{RedirectURL: "https://shop.example.com/receipt", OrderStatus: model.OrderStatusPending}
}

// ReconcileCall stores information about Reconcile invocations.
type ReconcileCall struct {
	OrderID       int64
	TransactionID string
	State         model.TransactionState
}

// WorkerFacadeStub mimics watcher interactions with the payment facade.
type WorkerFacadeStub struct {
	Batches     [][]model.Order
	PendingFn   func(context.Context, time.Duration, int) ([]model.Order, error)
	CheckFn     func(context.Context, string) (*model.RemoteTransaction, error)
	ReconcileFn func(context.Context, *model.Order, *model.RemoteTransaction) (model.OrderStatus, error)
	Reconciled  []ReconcileCall

	mu        sync.Mutex
	callCount int32
}

// Lock exposes internal mutex for external synchronization.
func (s *WorkerFacadeStub) Lock() { s.mu.Lock() }

// Unlock releases previously acquired lock.
func (s *WorkerFacadeStub) Unlock() { s.mu.Unlock() }

// PendingOrders returns batches from the configured queue.
func (s *WorkerFacadeStub) PendingOrders(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, minAge, limit)
	}
	call := atomic.AddInt32(&s.callCount, 1)
	if int(call) <= len(s.Batches) {
		return s.Batches[call-1], nil
	}
	time.Sleep(10 * time.Millisecond)
	return nil, nil
}

// CheckTransaction returns the configured transaction state.
func (s *WorkerFacadeStub) CheckTransaction(ctx context.Context, transactionID string) (*model.RemoteTransaction, error) {
	if s.CheckFn != nil {
		return s.CheckFn(ctx, transactionID)
	}
	return &model.RemoteTransaction{ID: transactionID, State: model.StateConfirmed}, nil
}

// Reconcile records reconciliation requests.
func (s *WorkerFacadeStub) Reconcile(ctx context.Context, order *model.Order, tx *model.RemoteTransaction) (model.OrderStatus, error) {
	if s.ReconcileFn != nil {
		return s.ReconcileFn(ctx, order, tx)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Reconciled = append(s.Reconciled, ReconcileCall{OrderID: order.ID, TransactionID: tx.ID, State: tx.State})
	return model.OrderStatusPaid, nil
}

// BMLClientStub answers remote transaction calls for tests.
type BMLClientStub struct {
	CreateFn func(context.Context, bml.CreateRequest) (*model.RemoteTransaction, error)
	QueryFn  func(context.Context, string) (*model.RemoteTransaction, error)
}

// Create returns the configured response or a default generated transaction.
func (s BMLClientStub) Create(ctx context.Context, req bml.CreateRequest) (*model.RemoteTransaction, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, req)
	}
	return &model.RemoteTransaction{ID: "TX-stub", LocalID: req.LocalID, Amount: req.Amount, Currency: req.Currency, State: model.StateQRCodeGenerated, URL: "https://pay.bml.example/TX-stub"}, nil
}

// Query returns the configured response or a confirmed transaction.
func (s BMLClientStub) Query(ctx context.Context, transactionID string) (*model.RemoteTransaction, error) {
	if s.QueryFn != nil {
		return s.QueryFn(ctx, transactionID)
	}
	return &model.RemoteTransaction{ID: transactionID, State: model.StateConfirmed}, nil
}

// PingerStub reports configurable storage health.
type PingerStub struct {
	Err error
}

// HealthCheck returns the configured error.
func (s PingerStub) HealthCheck(context.Context) error { return s.Err }
