package app

import (
	"context"
	"time"

	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/domain/repository"
	"github.com/wdmlabs/bmlconnect/internal/usecase"
)

// TransactionProvider is the remote status lookup used by background
// reconciliation.
type TransactionProvider interface {
	Query(ctx context.Context, transactionID string) (*model.RemoteTransaction, error)
}

// PaymentFacade aggregates the gateway's use cases behind a single surface
// consumed by handlers and the background watcher.
type PaymentFacade struct {
	checkout     *usecase.CheckoutUseCase
	webhook      *usecase.WebhookUseCase
	returns      *usecase.ReturnUseCase
	reconciler   *usecase.ReconcileUseCase
	orders       repository.OrderRepository
	transactions TransactionProvider
}

func NewPaymentFacade(
	checkout *usecase.CheckoutUseCase,
	webhook *usecase.WebhookUseCase,
	returns *usecase.ReturnUseCase,
	reconciler *usecase.ReconcileUseCase,
	orders repository.OrderRepository,
	transactions TransactionProvider,
) *PaymentFacade {
	return &PaymentFacade{
		checkout:     checkout,
		webhook:      webhook,
		returns:      returns,
		reconciler:   reconciler,
		orders:       orders,
		transactions: transactions,
	}
}

func (f *PaymentFacade) CreateOrder(ctx context.Context, amount int64, currency, reference string) (*model.Order, error) {
	return f.checkout.CreateOrder(ctx, amount, currency, reference)
}

func (f *PaymentFacade) InitiatePayment(ctx context.Context, orderID int64) (string, error) {
	return f.checkout.Initiate(ctx, orderID)
}

func (f *PaymentFacade) Order(ctx context.Context, orderID int64) (*model.Order, []model.OrderNote, error) {
	return f.checkout.GetOrder(ctx, orderID)
}

func (f *PaymentFacade) ProcessWebhook(ctx context.Context, n usecase.WebhookNotification) error {
	return f.webhook.Process(ctx, n)
}

func (f *PaymentFacade) HandleReturn(ctx context.Context, orderID int64, orderKey string) *usecase.ReturnOutcome {
	return f.returns.HandleReturn(ctx, orderID, orderKey)
}

func (f *PaymentFacade) PendingOrders(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error) {
	return f.orders.SelectPendingBatch(ctx, minAge, limit)
}

func (f *PaymentFacade) CheckTransaction(ctx context.Context, transactionID string) (*model.RemoteTransaction, error) {
	return f.transactions.Query(ctx, transactionID)
}

func (f *PaymentFacade) Reconcile(ctx context.Context, order *model.Order, tx *model.RemoteTransaction) (model.OrderStatus, error) {
	return f.reconciler.Apply(ctx, order, tx)
}
