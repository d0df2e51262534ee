package bml

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"path"
	"time"

	"github.com/wdmlabs/bmlconnect/internal/domain/model"
	"github.com/wdmlabs/bmlconnect/internal/pkg/signature"
)

const (
	productionBaseURL = "https://api.merchants.bankofmaldives.com.mv/public"
	sandboxBaseURL    = "https://api.uat.merchants.bankofmaldives.com.mv/public"

	apiVersion = "2.0"
	appVersion = "1.0.0"

	// Single attempt with a request-scoped timeout; failures surface to the
	// caller instead of being retried.
	requestTimeout = 45 * time.Second
)

// APIError represents a non-2xx response from BML Connect. Body keeps the raw
// response for diagnostics.
type APIError struct {
	Status  int
	Message string
	Body    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("bml api: %s (status %d)", e.Message, e.Status)
}

// CreateRequest carries the order fields of a transaction creation call.
type CreateRequest struct {
	LocalID     int64
	Reference   string
	Amount      int64
	Currency    string
	RedirectURL string
}

// Client exposes the two remote operations against BML Connect.
type Client interface {
	Create(ctx context.Context, req CreateRequest) (*model.RemoteTransaction, error)
	Query(ctx context.Context, transactionID string) (*model.RemoteTransaction, error)
}

// HTTPClient implements Client via the BML Connect HTTP API.
type HTTPClient struct {
	baseURL    *url.URL
	appID      string
	apiKey     string
	signer     signature.Signer
	httpClient *http.Client
	logger     *slog.Logger
}

// BaseURL returns the API host for the selected environment.
func BaseURL(testMode bool) string {
	if testMode {
		return sandboxBaseURL
	}
	return productionBaseURL
}

// NewHTTPClient creates a BML Connect client with the protocol timeout.
func NewHTTPClient(baseURL, appID, apiKey string, signer signature.Signer, logger *slog.Logger) (*HTTPClient, error) {
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse bml url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("bml url must be absolute")
	}
	return &HTTPClient{
		baseURL: parsed,
		appID:   appID,
		apiKey:  apiKey,
		signer:  signer,
		logger:  logger,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
	}, nil
}

type createPayload struct {
	LocalID           int64  `json:"localId"`
	CustomerReference string `json:"customerReference"`
	Signature         string `json:"signature"`
	Amount            int64  `json:"amount"`
	Currency          string `json:"currency"`
	RedirectURL       string `json:"redirectUrl"`
	AppVersion        string `json:"appVersion"`
	APIVersion        string `json:"apiVersion"`
	DeviceID          string `json:"deviceId"`
	SignMethod        string `json:"signMethod"`
}

// transactionResponse mirrors the JSON payload of the transactions resource.
type transactionResponse struct {
	ID       string `json:"id"`
	LocalID  int64  `json:"localId"`
	Amount   int64  `json:"amount"`
	Currency string `json:"currency"`
	State    string `json:"state"`
	URL      string `json:"url"`
}

type errorResponse struct {
	Message string `json:"message"`
}

// Create registers a new transaction and returns the processor's view of it,
// including the redirect URL for the customer's browser.
func (c *HTTPClient) Create(ctx context.Context, req CreateRequest) (*model.RemoteTransaction, error) {
	payload := createPayload{
		LocalID:           req.LocalID,
		CustomerReference: req.Reference,
		Signature:         c.signer.Sign(req.Amount, req.Currency),
		Amount:            req.Amount,
		Currency:          req.Currency,
		RedirectURL:       req.RedirectURL,
		AppVersion:        appVersion,
		APIVersion:        apiVersion,
		DeviceID:          c.appID,
		SignMethod:        c.signer.Method(),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal create request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint("transactions"), bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("create transaction: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, c.createError(resp.StatusCode, raw)
	}

	var data transactionResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode create response: %w", err)
	}
	return toRemoteTransaction(data), nil
}

// Query fetches the authoritative state of a transaction by id.
func (c *HTTPClient) Query(ctx context.Context, transactionID string) (*model.RemoteTransaction, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint("transactions", transactionID), nil)
	if err != nil {
		return nil, err
	}
	c.setHeaders(httpReq)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("query transaction: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		c.logger.Error("bml query failed",
			slog.String("transaction_id", transactionID),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(raw)),
		)
		// Unlike create, per-field detail from the processor is not propagated.
		return nil, &APIError{Status: resp.StatusCode, Message: "failed to query transaction status", Body: string(raw)}
	}

	var data transactionResponse
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, fmt.Errorf("decode query response: %w", err)
	}
	return toRemoteTransaction(data), nil
}

func (c *HTTPClient) createError(status int, raw []byte) *APIError {
	var data errorResponse
	_ = json.Unmarshal(raw, &data)

	message := data.Message
	if message == "" {
		if status == http.StatusUnauthorized {
			message = "unauthorized - check your App ID and API key"
		} else {
			message = "unknown API error"
		}
	}

	c.logger.Error("bml create failed", slog.Int("status", status), slog.String("body", string(raw)))
	return &APIError{Status: status, Message: message, Body: string(raw)}
}

func (c *HTTPClient) endpoint(parts ...string) string {
	endpoint := *c.baseURL
	endpoint.Path = path.Join(append([]string{endpoint.Path}, parts...)...)
	return endpoint.String()
}

func (c *HTTPClient) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", c.apiKey)
	req.Header.Set("Accept", "application/json")
}

func toRemoteTransaction(data transactionResponse) *model.RemoteTransaction {
	return &model.RemoteTransaction{
		ID:       data.ID,
		LocalID:  data.LocalID,
		Amount:   data.Amount,
		Currency: data.Currency,
		State:    model.ParseTransactionState(data.State),
		RawState: data.State,
		URL:      data.URL,
	}
}
