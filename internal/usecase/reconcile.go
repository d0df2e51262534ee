package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/domain/repository"
)

// ReconcileUseCase applies the authoritative transaction state to a local
// order. Both notification channels converge here, so the transition rules
// do not depend on who delivered the state.
type ReconcileUseCase struct {
	orders repository.OrderRepository
	logger *slog.Logger
}

// NewReconcileUseCase constructs ReconcileUseCase.
func NewReconcileUseCase(orders repository.OrderRepository, logger *slog.Logger) *ReconcileUseCase {
	return &ReconcileUseCase{orders: orders, logger: logger}
}

// Apply maps a transaction state onto the order and returns the resulting
// order status. States that carry no settlement information leave the order
// untouched.
func (u *ReconcileUseCase) Apply(ctx context.Context, order *model.Order, tx *model.RemoteTransaction) (model.OrderStatus, error) {
	if order.TransactionID != "" && tx.ID != "" && tx.ID != order.TransactionID {
		// The stored id stays authoritative; the mismatch is recorded but the
		// state delivered for this order is still applied.
		u.logger.Warn("transaction id mismatch",
			slog.Int64("order_id", order.ID),
			slog.String("stored", order.TransactionID),
			slog.String("received", tx.ID),
		)
	}

	switch tx.State {
	case model.StateConfirmed:
		note := fmt.Sprintf("BML Connect payment confirmed (transaction %s)", tx.ID)
		applied, err := u.orders.MarkPaid(ctx, order.ID, tx.ID, note)
		if err != nil {
			return order.Status, err
		}
		if !applied {
			u.logger.Info("order already settled", slog.Int64("order_id", order.ID))
		}
		return model.OrderStatusPaid, nil

	case model.StateCancelled:
		return u.transition(ctx, order, model.OrderStatusCancelled, "BML Connect payment cancelled")

	case model.StateRefunded:
		return u.transition(ctx, order, model.OrderStatusRefunded, "BML Connect payment refunded")

	case model.StateRefundRequested:
		return u.transition(ctx, order, model.OrderStatusOnHold, "BML Connect refund requested")

	default:
		if !tx.State.Known() {
			u.logger.Warn("unrecognized transaction state",
				slog.Int64("order_id", order.ID),
				slog.String("state", tx.RawState),
			)
		}
		return order.Status, nil
	}
}

func (u *ReconcileUseCase) transition(ctx context.Context, order *model.Order, status model.OrderStatus, note string) (model.OrderStatus, error) {
	if order.Status == status {
		return status, nil
	}
	if err := u.orders.UpdateStatus(ctx, order.ID, status, note); err != nil {
		return order.Status, err
	}
	return status, nil
}
