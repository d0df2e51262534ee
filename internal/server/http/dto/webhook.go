package dto

// WebhookRequest is the processor's server-to-server notification. Amount
// and Currency are pointers so a missing field stays distinguishable from a
// zero value when the signature is checked.
type WebhookRequest struct {
	TransactionID     string  `json:"transactionId"`
	LocalID           *int64  `json:"localId"`
	CustomerReference string  `json:"customerReference"`
	State             string  `json:"state"`
	Amount            *int64  `json:"amount"`
	Currency          *string `json:"currency"`
	Signature         string  `json:"signature"`
}

// WebhookAck acknowledges an authenticated notification.
type WebhookAck struct {
	Status string `json:"status"`
}

// WebhookError tells the processor why a notification was rejected.
type WebhookError struct {
	Error string `json:"error"`
}
