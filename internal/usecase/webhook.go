package usecase

import (
	"context"
	"errors"
	"log/slog"

	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/domain/repository"
	"github.com/wdmlabs/bmlconnect/internal/pkg/signature"
)

// WebhookNotification is the parsed server-to-server callback. Amount and
// Currency are pointers so that absent fields fail verification instead of
// being signed as zero values.
type WebhookNotification struct {
	TransactionID string
	LocalID       *int64
	State         string
	Amount        *int64
	Currency      *string
	Signature     string
}

// WebhookUseCase authenticates processor callbacks and feeds them into
// reconciliation.
type WebhookUseCase struct {
	orders     repository.OrderRepository
	signer     signature.Signer
	reconciler *ReconcileUseCase
	logger     *slog.Logger
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(orders repository.OrderRepository, signer signature.Signer, reconciler *ReconcileUseCase, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{orders: orders, signer: signer, reconciler: reconciler, logger: logger}
}

// Process verifies and applies a webhook notification. Signature and order
// resolution failures are returned to the caller; anything after that point
// is logged and acknowledged so the processor does not retry a notification
// we have already authenticated.
func (u *WebhookUseCase) Process(ctx context.Context, n WebhookNotification) error {
	payload := signature.Payload{Amount: n.Amount, Currency: n.Currency}
	if !u.signer.Verify(payload, n.Signature) {
		return domainErrors.ErrSignatureMismatch
	}

	if n.LocalID == nil {
		return domainErrors.ErrNotFound
	}
	order, err := u.orders.GetByID(ctx, *n.LocalID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return err
		}
		u.logger.Error("webhook order lookup failed",
			slog.Int64("order_id", *n.LocalID),
			slog.Any("error", err),
		)
		return nil
	}

	tx := &model.RemoteTransaction{
		ID:       n.TransactionID,
		LocalID:  order.ID,
		State:    model.ParseTransactionState(n.State),
		RawState: n.State,
	}
	if _, err := u.reconciler.Apply(ctx, order, tx); err != nil {
		u.logger.Error("webhook reconciliation failed",
			slog.Int64("order_id", order.ID),
			slog.Any("error", err),
		)
	}
	return nil
}
