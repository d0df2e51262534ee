package repository

import (
	"context"
	"time"

	"github.com/wdmlabs/bmlconnect/internal/domain/model"
)

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	Create(ctx context.Context, amount int64, currency, reference string) (*model.Order, error)
	GetByID(ctx context.Context, id int64) (*model.Order, error)
	// AttachTransaction stores the remote transaction id and moves the order
	// to pending in a single transaction boundary.
	AttachTransaction(ctx context.Context, orderID int64, transactionID, note string) error
	// MarkPaid completes payment unless the order is already paid.
	// Returns false when the transition was a no-op.
	MarkPaid(ctx context.Context, orderID int64, transactionID, note string) (bool, error)
	UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, note string) error
	AddNote(ctx context.Context, orderID int64, note string) error
	ListNotes(ctx context.Context, orderID int64) ([]model.OrderNote, error)
	// SelectPendingBatch returns pending orders with an attached transaction id
	// that have not been touched for at least the given age.
	SelectPendingBatch(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error)
}
