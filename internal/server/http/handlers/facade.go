package handlers

import (
	"context"

	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/usecase"
)

// OrderFacade encapsulates order operations exposed via the merchant API.
type OrderFacade interface {
	CreateOrder(ctx context.Context, amount int64, currency, reference string) (*model.Order, error)
	InitiatePayment(ctx context.Context, orderID int64) (string, error)
	Order(ctx context.Context, orderID int64) (*model.Order, []model.OrderNote, error)
}

// WebhookFacade processes authenticated processor callbacks.
type WebhookFacade interface {
	ProcessWebhook(ctx context.Context, n usecase.WebhookNotification) error
}

// ReturnFacade resolves a customer's return visit into a redirect decision.
type ReturnFacade interface {
	HandleReturn(ctx context.Context, orderID int64, orderKey string) *usecase.ReturnOutcome
}

// PaymentFacade aggregates the full set of operations used across handlers.
type PaymentFacade interface {
	OrderFacade
	WebhookFacade
	ReturnFacade
}

// Pinger reports backing store connectivity for health checks.
type Pinger interface {
	HealthCheck(ctx context.Context) error
}
