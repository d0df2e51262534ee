package model

import "time"

// OrderStatus describes local payment lifecycle.
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
	OrderStatusRefunded  OrderStatus = "refunded"
	OrderStatusOnHold    OrderStatus = "on-hold"
)

// Order describes a storefront order awaiting payment through the gateway.
// Key is a per-order secret capability token, distinct from the numeric id.
type Order struct {
	ID            int64
	Key           string
	Reference     string
	Amount        int64
	Currency      string
	Status        OrderStatus
	TransactionID string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IsPaid reports whether the order reached the terminal success state.
func (o *Order) IsPaid() bool {
	return o.Status == OrderStatusPaid
}

// OrderNote is an entry of the order's append-only note log.
type OrderNote struct {
	ID        int64
	OrderID   int64
	Note      string
	CreatedAt time.Time
}
