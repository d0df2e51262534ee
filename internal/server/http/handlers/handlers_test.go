package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	"github.com/wdmlabs/bmlconnect/internal/config"
	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	testhelpers "github.com/wdmlabs/bmlconnect/internal/test"
	"github.com/wdmlabs/bmlconnect/internal/usecase"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func performJSON(handler gin.HandlerFunc, method, target, body string) *httptest.ResponseRecorder {
	router := gin.New()
	router.Handle(method, "/", handler)
	router.Handle(method, "/:id", handler)
	router.Handle(method, "/:id/pay", handler)

	var reader *bytes.Reader
	if body == "" {
		reader = bytes.NewReader(nil)
	} else {
		reader = bytes.NewReader([]byte(body))
	}
	req := httptest.NewRequest(method, target, reader)
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestWebhookHandlerBadJSON(t *testing.T) {
	handler := NewWebhookHandler(testhelpers.PaymentFacadeStub{})
	resp := performJSON(handler.Handle, http.MethodPost, "/", "{not json")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"error":"invalid payload"`) {
		t.Fatalf("expected error body, got %s", resp.Body.String())
	}
}

func TestWebhookHandlerStatuses(t *testing.T) {
	cases := []struct {
		name     string
		err      error
		want     int
		wantBody string
	}{
		{"signature mismatch", domainErrors.ErrSignatureMismatch, http.StatusUnauthorized, `"error":"signature verification failed"`},
		{"order not found", domainErrors.ErrNotFound, http.StatusNotFound, `"error":"order not found"`},
		{"processed", nil, http.StatusOK, `"status":"success"`},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewWebhookHandler(testhelpers.PaymentFacadeStub{
				WebhookFn: func(context.Context, usecase.WebhookNotification) error { return tc.err },
			})
			resp := performJSON(handler.Handle, http.MethodPost, "/", `{"transactionId":"TX-1"}`)
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
			if !strings.Contains(resp.Body.String(), tc.wantBody) {
				t.Fatalf("expected body to contain %s, got %s", tc.wantBody, resp.Body.String())
			}
		})
	}
}

func TestWebhookHandlerMapsPayload(t *testing.T) {
	var captured usecase.WebhookNotification
	handler := NewWebhookHandler(testhelpers.PaymentFacadeStub{
		WebhookFn: func(_ context.Context, n usecase.WebhookNotification) error {
			captured = n
			return nil
		},
	})

	body := `{"transactionId":"TX-9","localId":9,"state":"CONFIRMED","amount":2500,"currency":"MVR","signature":"abc"}`
	resp := performJSON(handler.Handle, http.MethodPost, "/", body)
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if captured.TransactionID != "TX-9" || captured.LocalID == nil || *captured.LocalID != 9 {
		t.Fatalf("unexpected notification: %+v", captured)
	}
	if captured.Amount == nil || *captured.Amount != 2500 || captured.Currency == nil || *captured.Currency != "MVR" {
		t.Fatalf("amount/currency not mapped: %+v", captured)
	}
	if captured.State != "CONFIRMED" || captured.Signature != "abc" {
		t.Fatalf("state/signature not mapped: %+v", captured)
	}
}

func TestReturnHandlerRedirectsWithNotice(t *testing.T) {
	handler := NewReturnHandler(testhelpers.PaymentFacadeStub{
		ReturnFn: func(_ context.Context, orderID int64, orderKey string) *usecase.ReturnOutcome {
			if orderID != 7 || orderKey != "wc_order_abc" {
				t.Fatalf("unexpected arguments: %d %s", orderID, orderKey)
			}
			return &usecase.ReturnOutcome{RedirectURL: "https://shop.example.com/receipt", Notice: "pending payment"}
		},
	}, &config.Config{})

	resp := performJSON(handler.Handle, http.MethodGet, "/?order_id=7&order_key=wc_order_abc", "")
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
	location, err := url.Parse(resp.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad location: %v", err)
	}
	if location.Query().Get("bml_notice") != "pending payment" {
		t.Fatalf("expected notice in redirect, got %s", location)
	}
}

func TestReturnHandlerMalformedOrderID(t *testing.T) {
	handler := NewReturnHandler(testhelpers.PaymentFacadeStub{
		ReturnFn: func(_ context.Context, orderID int64, _ string) *usecase.ReturnOutcome {
			if orderID != 0 {
				t.Fatalf("expected zero order id for malformed input, got %d", orderID)
			}
			return &usecase.ReturnOutcome{RedirectURL: "https://shop.example.com"}
		},
	}, &config.Config{})

	resp := performJSON(handler.Handle, http.MethodGet, "/?order_id=abc&order_key=k", "")
	if resp.Code != http.StatusFound {
		t.Fatalf("expected 302, got %d", resp.Code)
	}
}

func TestReturnHandlerDiagnosticMode(t *testing.T) {
	handler := NewReturnHandler(testhelpers.PaymentFacadeStub{
		ReturnFn: func(context.Context, int64, string) *usecase.ReturnOutcome {
			return &usecase.ReturnOutcome{
				RedirectURL: "https://shop.example.com/receipt",
				OrderStatus: model.OrderStatusPaid,
				State:       model.StateConfirmed,
			}
		},
	}, &config.Config{DisableRedirect: true})

	resp := performJSON(handler.Handle, http.MethodGet, "/?order_id=1&order_key=k", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var diag map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &diag); err != nil {
		t.Fatalf("bad diagnostic body: %v", err)
	}
	if diag["order_status"] != "paid" || diag["state"] != "CONFIRMED" {
		t.Fatalf("unexpected diagnostic: %v", diag)
	}
}

func TestOrderHandlerCreate(t *testing.T) {
	handler := NewOrderHandler(testhelpers.PaymentFacadeStub{})

	resp := performJSON(handler.Create, http.MethodPost, "/", "{bad")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}

	invalid := NewOrderHandler(testhelpers.PaymentFacadeStub{
		CreateOrderFn: func(context.Context, int64, string, string) (*model.Order, error) {
			return nil, domainErrors.ErrInvalidAmount
		},
	})
	resp = performJSON(invalid.Create, http.MethodPost, "/", `{"amount":0}`)
	if resp.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", resp.Code)
	}

	resp = performJSON(handler.Create, http.MethodPost, "/", `{"amount":2500,"currency":"MVR","reference":"INV-1"}`)
	if resp.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"status":"pending"`) {
		t.Fatalf("expected pending order body, got %s", resp.Body.String())
	}
}

func TestOrderHandlerPay(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", domainErrors.ErrNotFound, http.StatusNotFound},
		{"already paid", domainErrors.ErrAlreadyPaid, http.StatusConflict},
		{"disabled", domainErrors.ErrGatewayDisabled, http.StatusServiceUnavailable},
		{"not configured", domainErrors.ErrGatewayNotConfigured, http.StatusServiceUnavailable},
		{"processor rejected", &bml.APIError{Status: 401, Message: "unauthorized"}, http.StatusBadGateway},
		{"internal", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewOrderHandler(testhelpers.PaymentFacadeStub{
				InitiateFn: func(context.Context, int64) (string, error) { return "", tc.err },
			})
			resp := performJSON(handler.Pay, http.MethodPost, "/1/pay", "")
			if resp.Code != tc.want {
				t.Fatalf("expected %d, got %d", tc.want, resp.Code)
			}
		})
	}

	handler := NewOrderHandler(testhelpers.PaymentFacadeStub{})
	resp := performJSON(handler.Pay, http.MethodPost, "/abc/pay", "")
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed id, got %d", resp.Code)
	}

	resp = performJSON(handler.Pay, http.MethodPost, "/1/pay", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "payment_url") {
		t.Fatalf("expected payment url in body, got %s", resp.Body.String())
	}
}

func TestOrderHandlerGet(t *testing.T) {
	handler := NewOrderHandler(testhelpers.PaymentFacadeStub{
		OrderFn: func(_ context.Context, orderID int64) (*model.Order, []model.OrderNote, error) {
			if orderID == 404 {
				return nil, nil, domainErrors.ErrNotFound
			}
			return &model.Order{ID: orderID, Status: model.OrderStatusPaid, TransactionID: "TX-1"},
				[]model.OrderNote{{Note: "payment confirmed"}}, nil
		},
	})

	resp := performJSON(handler.Get, http.MethodGet, "/404", "")
	if resp.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", resp.Code)
	}

	resp = performJSON(handler.Get, http.MethodGet, "/1", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), "payment confirmed") {
		t.Fatalf("expected note in body, got %s", resp.Body.String())
	}
}

func TestHealthHandler(t *testing.T) {
	handler := NewHealthHandler(testhelpers.PingerStub{})
	resp := performJSON(handler.Healthz, http.MethodGet, "/", "")
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}

	handler = NewHealthHandler(testhelpers.PingerStub{Err: errors.New("down")})
	resp = performJSON(handler.Healthz, http.MethodGet, "/", "")
	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", resp.Code)
	}
}
