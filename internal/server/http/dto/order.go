package dto

import "time"

// CreateOrderRequest registers a new order awaiting payment.
type CreateOrderRequest struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference"`
}

// OrderResponse is the API view of an order.
type OrderResponse struct {
	ID            int64               `json:"id"`
	Reference     string              `json:"reference"`
	Amount        int64               `json:"amount"`
	Currency      string              `json:"currency"`
	Status        string              `json:"status"`
	TransactionID string              `json:"transaction_id,omitempty"`
	CreatedAt     time.Time           `json:"created_at"`
	Notes         []OrderNoteResponse `json:"notes,omitempty"`
}

// OrderNoteResponse is a single audit trail entry.
type OrderNoteResponse struct {
	Note      string    `json:"note"`
	CreatedAt time.Time `json:"created_at"`
}

// PaymentResponse carries the hosted payment page URL for an initiated order.
type PaymentResponse struct {
	PaymentURL string `json:"payment_url"`
}
