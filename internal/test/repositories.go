package test

import (
	"context"
	"fmt"
	"time"

	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
)

// OrderRepositoryStub stores orders in-memory for tests, with per-method
// overrides.
type OrderRepositoryStub struct {
	CreateFn       func(context.Context, int64, string, string) (*model.Order, error)
	GetByIDFn      func(context.Context, int64) (*model.Order, error)
	AttachFn       func(context.Context, int64, string, string) error
	MarkPaidFn     func(context.Context, int64, string, string) (bool, error)
	UpdateStatusFn func(context.Context, int64, model.OrderStatus, string) error
	AddNoteFn      func(context.Context, int64, string) error
	ListNotesFn    func(context.Context, int64) ([]model.OrderNote, error)
	PendingFn      func(context.Context, time.Duration, int) ([]model.Order, error)

	Orders map[int64]*model.Order
	Notes  map[int64][]model.OrderNote
	Next   int64
}

// NewOrderRepositoryStub constructs a stub with initialized maps.
func NewOrderRepositoryStub() *OrderRepositoryStub {
	return &OrderRepositoryStub{
		Orders: make(map[int64]*model.Order),
		Notes:  make(map[int64][]model.OrderNote),
		Next:   1,
	}
}

func (s *OrderRepositoryStub) ensure() {
	if s.Orders == nil {
		s.Orders = make(map[int64]*model.Order)
	}
	if s.Notes == nil {
		s.Notes = make(map[int64][]model.OrderNote)
	}
	if s.Next == 0 {
		s.Next = 1
	}
}

// Create registers a pending order with a generated key.
func (s *OrderRepositoryStub) Create(ctx context.Context, amount int64, currency, reference string) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, amount, currency, reference)
	}
	s.ensure()
	order := &model.Order{
		ID:        s.Next,
		Key:       fmt.Sprintf("wc_order_%s", RandomASCIIString(12, 12)),
		Reference: reference,
		Amount:    amount,
		Currency:  currency,
		Status:    model.OrderStatusPending,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.Next++
	s.Orders[order.ID] = order
	return order, nil
}

// GetByID fetches an order or returns not found.
func (s *OrderRepositoryStub) GetByID(ctx context.Context, id int64) (*model.Order, error) {
	if s.GetByIDFn != nil {
		return s.GetByIDFn(ctx, id)
	}
	if order, ok := s.Orders[id]; ok {
		copied := *order
		return &copied, nil
	}
	return nil, domainErrors.ErrNotFound
}

// AttachTransaction stores the transaction id and records the note.
func (s *OrderRepositoryStub) AttachTransaction(ctx context.Context, orderID int64, transactionID, note string) error {
	if s.AttachFn != nil {
		return s.AttachFn(ctx, orderID, transactionID, note)
	}
	order, ok := s.Orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.TransactionID = transactionID
	order.Status = model.OrderStatusPending
	return s.AddNote(ctx, orderID, note)
}

// MarkPaid transitions the order to paid unless it already is.
func (s *OrderRepositoryStub) MarkPaid(ctx context.Context, orderID int64, transactionID, note string) (bool, error) {
	if s.MarkPaidFn != nil {
		return s.MarkPaidFn(ctx, orderID, transactionID, note)
	}
	order, ok := s.Orders[orderID]
	if !ok {
		return false, domainErrors.ErrNotFound
	}
	if order.Status == model.OrderStatusPaid {
		return false, nil
	}
	order.Status = model.OrderStatusPaid
	order.TransactionID = transactionID
	return true, s.AddNote(ctx, orderID, note)
}

// UpdateStatus sets the status and records a note when present.
func (s *OrderRepositoryStub) UpdateStatus(ctx context.Context, orderID int64, status model.OrderStatus, note string) error {
	if s.UpdateStatusFn != nil {
		return s.UpdateStatusFn(ctx, orderID, status, note)
	}
	order, ok := s.Orders[orderID]
	if !ok {
		return domainErrors.ErrNotFound
	}
	order.Status = status
	if note == "" {
		return nil
	}
	return s.AddNote(ctx, orderID, note)
}

// AddNote appends a note to the order trail.
func (s *OrderRepositoryStub) AddNote(ctx context.Context, orderID int64, note string) error {
	if s.AddNoteFn != nil {
		return s.AddNoteFn(ctx, orderID, note)
	}
	s.ensure()
	s.Notes[orderID] = append(s.Notes[orderID], model.OrderNote{
		ID:        int64(len(s.Notes[orderID]) + 1),
		OrderID:   orderID,
		Note:      note,
		CreatedAt: time.Now(),
	})
	return nil
}

// ListNotes returns the recorded note trail.
func (s *OrderRepositoryStub) ListNotes(ctx context.Context, orderID int64) ([]model.OrderNote, error) {
	if s.ListNotesFn != nil {
		return s.ListNotesFn(ctx, orderID)
	}
	return s.Notes[orderID], nil
}

// SelectPendingBatch returns pending orders with an attached transaction.
func (s *OrderRepositoryStub) SelectPendingBatch(ctx context.Context, minAge time.Duration, limit int) ([]model.Order, error) {
	if s.PendingFn != nil {
		return s.PendingFn(ctx, minAge, limit)
	}
	var result []model.Order
	for _, order := range s.Orders {
		if order.Status == model.OrderStatusPending && order.TransactionID != "" {
			result = append(result, *order)
			if len(result) == limit {
				break
			}
		}
	}
	return result, nil
}
