package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	"github.com/wdmlabs/bmlconnect/internal/config"
	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
)

type stubClient struct {
	createFn func(context.Context, bml.CreateRequest) (*model.RemoteTransaction, error)
	queryFn  func(context.Context, string) (*model.RemoteTransaction, error)
}

func (s stubClient) Create(ctx context.Context, req bml.CreateRequest) (*model.RemoteTransaction, error) {
	if s.createFn == nil {
		panic("not implemented")
	}
	return s.createFn(ctx, req)
}

func (s stubClient) Query(ctx context.Context, transactionID string) (*model.RemoteTransaction, error) {
	if s.queryFn == nil {
		panic("not implemented")
	}
	return s.queryFn(ctx, transactionID)
}

func testConfig() *config.Config {
	return &config.Config{
		Enabled:   true,
		AppID:     "app-id",
		APIKey:    "api-key",
		Currency:  "MVR",
		PublicURL: "https://pay.example.com",
		ShopURL:   "https://shop.example.com",
	}
}

func TestCreateOrderValidation(t *testing.T) {
	uc := NewCheckoutUseCase(stubOrders{}, stubClient{}, testConfig(), testLogger())

	if _, err := uc.CreateOrder(context.Background(), 0, "MVR", "INV-1"); !errors.Is(err, domainErrors.ErrInvalidAmount) {
		t.Fatalf("expected invalid amount, got %v", err)
	}
	if _, err := uc.CreateOrder(context.Background(), 100, "EUR", "INV-1"); !errors.Is(err, domainErrors.ErrInvalidCurrency) {
		t.Fatalf("expected invalid currency, got %v", err)
	}
}

func TestCreateOrderDefaultsCurrency(t *testing.T) {
	uc := NewCheckoutUseCase(stubOrders{createFn: func(_ context.Context, amount int64, currency, reference string) (*model.Order, error) {
		if currency != "MVR" {
			t.Fatalf("expected configured currency, got %s", currency)
		}
		return &model.Order{ID: 1, Amount: amount, Currency: currency, Reference: reference}, nil
	}}, stubClient{}, testConfig(), testLogger())

	order, err := uc.CreateOrder(context.Background(), 500, "", "INV-2")
	if err != nil || order.Currency != "MVR" {
		t.Fatalf("unexpected result: %+v err=%v", order, err)
	}
}

func TestInitiateGatewayDisabled(t *testing.T) {
	cfg := testConfig()
	cfg.Enabled = false
	uc := NewCheckoutUseCase(stubOrders{}, stubClient{}, cfg, testLogger())

	if _, err := uc.Initiate(context.Background(), 1); !errors.Is(err, domainErrors.ErrGatewayDisabled) {
		t.Fatalf("expected gateway disabled, got %v", err)
	}
}

func TestInitiateMissingCredentials(t *testing.T) {
	cfg := testConfig()
	cfg.APIKey = ""
	uc := NewCheckoutUseCase(stubOrders{}, stubClient{}, cfg, testLogger())

	if _, err := uc.Initiate(context.Background(), 1); !errors.Is(err, domainErrors.ErrGatewayNotConfigured) {
		t.Fatalf("expected gateway not configured, got %v", err)
	}
}

func TestInitiateAlreadyPaid(t *testing.T) {
	uc := NewCheckoutUseCase(stubOrders{getFn: func(context.Context, int64) (*model.Order, error) {
		return &model.Order{ID: 1, Status: model.OrderStatusPaid, Amount: 100, Currency: "MVR"}, nil
	}}, stubClient{}, testConfig(), testLogger())

	if _, err := uc.Initiate(context.Background(), 1); !errors.Is(err, domainErrors.ErrAlreadyPaid) {
		t.Fatalf("expected already paid, got %v", err)
	}
}

func TestInitiateRemoteFailureLeavesOrderUntouched(t *testing.T) {
	remoteErr := &bml.APIError{Status: 401, Message: "unauthorized"}
	uc := NewCheckoutUseCase(stubOrders{
		getFn: func(context.Context, int64) (*model.Order, error) {
			return &model.Order{ID: 1, Key: "wc_order_abc", Status: model.OrderStatusPending, Amount: 100, Currency: "MVR"}, nil
		},
		attachFn: func(context.Context, int64, string, string) error {
			t.Fatal("order must not be mutated when the remote create fails")
			return nil
		},
	}, stubClient{createFn: func(context.Context, bml.CreateRequest) (*model.RemoteTransaction, error) {
		return nil, remoteErr
	}}, testConfig(), testLogger())

	if _, err := uc.Initiate(context.Background(), 1); !errors.Is(err, remoteErr) {
		t.Fatalf("expected remote error, got %v", err)
	}
}

func TestInitiateSuccess(t *testing.T) {
	attached := false
	uc := NewCheckoutUseCase(stubOrders{
		getFn: func(context.Context, int64) (*model.Order, error) {
			return &model.Order{ID: 42, Key: "wc_order_abc", Reference: "INV-42", Status: model.OrderStatusPending, Amount: 2500, Currency: "MVR"}, nil
		},
		attachFn: func(_ context.Context, orderID int64, transactionID, note string) error {
			attached = true
			if orderID != 42 || transactionID != "TX-42" {
				t.Fatalf("unexpected attach arguments: %d %s", orderID, transactionID)
			}
			if !strings.Contains(note, "TX-42") {
				t.Fatalf("note must reference the transaction: %q", note)
			}
			return nil
		},
	}, stubClient{createFn: func(_ context.Context, req bml.CreateRequest) (*model.RemoteTransaction, error) {
		if req.LocalID != 42 || req.Amount != 2500 || req.Currency != "MVR" || req.Reference != "INV-42" {
			t.Fatalf("unexpected create request: %+v", req)
		}
		want := "https://pay.example.com/bml-gateway/return?order_id=42&order_key=wc_order_abc"
		if req.RedirectURL != want {
			t.Fatalf("unexpected redirect url: %s", req.RedirectURL)
		}
		return &model.RemoteTransaction{ID: "TX-42", State: model.StateQRCodeGenerated, URL: "https://pay.bml.example/TX-42"}, nil
	}}, testConfig(), testLogger())

	paymentURL, err := uc.Initiate(context.Background(), 42)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !attached || paymentURL != "https://pay.bml.example/TX-42" {
		t.Fatalf("unexpected result: url=%s attached=%v", paymentURL, attached)
	}
}

func TestInitiateAttachFailurePropagates(t *testing.T) {
	attachErr := errors.New("db down")
	uc := NewCheckoutUseCase(stubOrders{
		getFn: func(context.Context, int64) (*model.Order, error) {
			return &model.Order{ID: 1, Key: "k", Status: model.OrderStatusPending, Amount: 100, Currency: "MVR"}, nil
		},
		attachFn: func(context.Context, int64, string, string) error { return attachErr },
	}, stubClient{createFn: func(context.Context, bml.CreateRequest) (*model.RemoteTransaction, error) {
		return &model.RemoteTransaction{ID: "TX-1", URL: "https://pay"}, nil
	}}, testConfig(), testLogger())

	if _, err := uc.Initiate(context.Background(), 1); !errors.Is(err, attachErr) {
		t.Fatalf("expected attach error, got %v", err)
	}
}

func TestGetOrder(t *testing.T) {
	uc := NewCheckoutUseCase(stubOrders{
		getFn: func(context.Context, int64) (*model.Order, error) {
			return &model.Order{ID: 1, Status: model.OrderStatusPaid}, nil
		},
		listNotesFn: func(context.Context, int64) ([]model.OrderNote, error) {
			return []model.OrderNote{{ID: 1, OrderID: 1, Note: "payment confirmed"}}, nil
		},
	}, stubClient{}, testConfig(), testLogger())

	order, notes, err := uc.GetOrder(context.Background(), 1)
	if err != nil || order.ID != 1 || len(notes) != 1 {
		t.Fatalf("unexpected result: order=%+v notes=%v err=%v", order, notes, err)
	}

	uc = NewCheckoutUseCase(stubOrders{getFn: func(context.Context, int64) (*model.Order, error) {
		return nil, domainErrors.ErrNotFound
	}}, stubClient{}, testConfig(), testLogger())
	if _, _, err := uc.GetOrder(context.Background(), 2); !errors.Is(err, domainErrors.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}
