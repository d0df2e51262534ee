package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	"github.com/wdmlabs/bmlconnect/internal/config"
	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/domain/repository"
)

// CheckoutUseCase starts a payment for an order by registering a transaction
// with the processor.
type CheckoutUseCase struct {
	orders repository.OrderRepository
	client bml.Client
	cfg    *config.Config
	logger *slog.Logger
}

// NewCheckoutUseCase constructs CheckoutUseCase.
func NewCheckoutUseCase(orders repository.OrderRepository, client bml.Client, cfg *config.Config, logger *slog.Logger) *CheckoutUseCase {
	return &CheckoutUseCase{orders: orders, client: client, cfg: cfg, logger: logger}
}

// CreateOrder registers a new local order awaiting payment.
func (u *CheckoutUseCase) CreateOrder(ctx context.Context, amount int64, currency, reference string) (*model.Order, error) {
	if amount <= 0 {
		return nil, domainErrors.ErrInvalidAmount
	}
	if currency == "" {
		currency = u.cfg.Currency
	}
	if currency != "MVR" && currency != "USD" {
		return nil, domainErrors.ErrInvalidCurrency
	}
	return u.orders.Create(ctx, amount, currency, reference)
}

// GetOrder returns the order together with its note history.
func (u *CheckoutUseCase) GetOrder(ctx context.Context, orderID int64) (*model.Order, []model.OrderNote, error) {
	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	notes, err := u.orders.ListNotes(ctx, orderID)
	if err != nil {
		return nil, nil, err
	}
	return order, notes, nil
}

// Initiate creates the remote transaction for the order and returns the
// hosted payment page URL. The remote call happens first; the order is only
// mutated after the processor has accepted the transaction, so a failed
// initiation leaves the order exactly as it was.
func (u *CheckoutUseCase) Initiate(ctx context.Context, orderID int64) (string, error) {
	if !u.cfg.Enabled {
		return "", domainErrors.ErrGatewayDisabled
	}
	if !u.cfg.CredentialsConfigured() {
		return "", domainErrors.ErrGatewayNotConfigured
	}

	order, err := u.orders.GetByID(ctx, orderID)
	if err != nil {
		return "", err
	}
	if order.IsPaid() {
		return "", domainErrors.ErrAlreadyPaid
	}
	if order.Amount <= 0 {
		return "", domainErrors.ErrInvalidAmount
	}

	tx, err := u.client.Create(ctx, bml.CreateRequest{
		LocalID:     order.ID,
		Reference:   order.Reference,
		Amount:      order.Amount,
		Currency:    order.Currency,
		RedirectURL: u.returnURL(order),
	})
	if err != nil {
		u.logger.Error("transaction create failed", slog.Int64("order_id", order.ID), slog.Any("error", err))
		return "", err
	}

	note := fmt.Sprintf("BML Connect transaction created (id %s)", tx.ID)
	if err := u.orders.AttachTransaction(ctx, order.ID, tx.ID, note); err != nil {
		return "", err
	}

	u.logger.Info("payment initiated",
		slog.Int64("order_id", order.ID),
		slog.String("transaction_id", tx.ID),
	)
	return tx.URL, nil
}

func (u *CheckoutUseCase) returnURL(order *model.Order) string {
	return fmt.Sprintf("%s/bml-gateway/return?order_id=%d&order_key=%s",
		u.cfg.PublicURL, order.ID, url.QueryEscape(order.Key))
}
