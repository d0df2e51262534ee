package usecase

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	"github.com/wdmlabs/bmlconnect/internal/config"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/domain/repository"
)

// ReturnOutcome tells the HTTP layer where to send the customer's browser
// after a return visit and what to tell them.
type ReturnOutcome struct {
	RedirectURL string
	Notice      string
	OrderStatus model.OrderStatus
	State       model.TransactionState
}

// ReturnUseCase handles the customer's browser arriving back from the hosted
// payment page. The redirect payload is never trusted; the live transaction
// state is queried instead.
type ReturnUseCase struct {
	orders     repository.OrderRepository
	client     bml.Client
	reconciler *ReconcileUseCase
	cfg        *config.Config
	logger     *slog.Logger
}

// NewReturnUseCase constructs ReturnUseCase.
func NewReturnUseCase(orders repository.OrderRepository, client bml.Client, reconciler *ReconcileUseCase, cfg *config.Config, logger *slog.Logger) *ReturnUseCase {
	return &ReturnUseCase{orders: orders, client: client, reconciler: reconciler, cfg: cfg, logger: logger}
}

// HandleReturn validates the order reference and reconciles the order against
// the live transaction state. All paths produce an outcome; the customer is
// never shown a bare error page.
func (u *ReturnUseCase) HandleReturn(ctx context.Context, orderID int64, orderKey string) *ReturnOutcome {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		u.logger.Warn("return for unknown order", slog.Int64("order_id", orderID))
		return u.rejected()
	}
	if subtle.ConstantTimeCompare([]byte(order.Key), []byte(orderKey)) != 1 {
		u.logger.Warn("return with bad order key", slog.Int64("order_id", orderID))
		return u.rejected()
	}

	receipt := u.receiptURL(order)
	if order.TransactionID == "" {
		return &ReturnOutcome{
			RedirectURL: receipt,
			Notice:      "No payment is recorded for this order yet.",
			OrderStatus: order.Status,
		}
	}

	tx, err := u.client.Query(ctx, order.TransactionID)
	if err != nil {
		u.logger.Error("return status query failed",
			slog.Int64("order_id", order.ID),
			slog.String("transaction_id", order.TransactionID),
			slog.Any("error", err),
		)
		return &ReturnOutcome{
			RedirectURL: receipt,
			Notice:      "We could not verify your payment yet. The order will be updated once the payment is confirmed.",
			OrderStatus: order.Status,
		}
	}

	status, err := u.reconciler.Apply(ctx, order, tx)
	if err != nil {
		u.logger.Error("return reconciliation failed",
			slog.Int64("order_id", order.ID),
			slog.Any("error", err),
		)
		status = order.Status
	}

	return &ReturnOutcome{
		RedirectURL: receipt,
		Notice:      stateNotice(tx.State),
		OrderStatus: status,
		State:       tx.State,
	}
}

// stateNotice picks the customer-facing message for a reconciled return
// visit. A confirmed payment carries none; the receipt page says it all.
func stateNotice(state model.TransactionState) string {
	switch state {
	case model.StateConfirmed:
		return ""
	case model.StateCancelled:
		return "The payment was cancelled. Please try again or choose a different payment method."
	case model.StateRefunded:
		return "This payment has been refunded."
	case model.StateRefundRequested:
		return "A refund has been requested for this payment."
	default:
		return "Your payment is being processed. The order will be updated once the payment is confirmed."
	}
}

// rejected sends the visitor to the storefront with a generic notice. The
// notice deliberately does not say whether the order exists.
func (u *ReturnUseCase) rejected() *ReturnOutcome {
	return &ReturnOutcome{
		RedirectURL: u.cfg.ShopURL,
		Notice:      "We could not verify your order. Please contact the store if you believe this is an error.",
	}
}

func (u *ReturnUseCase) receiptURL(order *model.Order) string {
	return fmt.Sprintf("%s/checkout/order-received/%d?key=%s",
		u.cfg.ShopURL, order.ID, url.QueryEscape(order.Key))
}
