package errors

import "errors"

var (
	ErrNotFound             = errors.New("not found")
	ErrGatewayNotConfigured = errors.New("gateway not configured")
	ErrGatewayDisabled      = errors.New("gateway disabled")
	ErrInvalidPayload       = errors.New("invalid payload")
	ErrSignatureMismatch    = errors.New("signature mismatch")
	ErrOrderKeyMismatch     = errors.New("order key mismatch")
	ErrNoTransaction        = errors.New("no transaction attached")
	ErrAlreadyPaid          = errors.New("order already paid")
	ErrInvalidCurrency      = errors.New("invalid currency")
	ErrInvalidAmount        = errors.New("invalid amount")
)
