package signature

// Signer computes and verifies the shared-secret digest that authenticates
// outbound transaction requests and inbound webhook notifications.
type Signer interface {
	// Sign produces the hex digest over the amount/currency pair.
	Sign(amount int64, currency string) string
	// Verify recomputes the digest and compares it in constant time.
	// Payloads lacking amount or currency always fail verification.
	Verify(payload Payload, signature string) bool
	// Method returns the algorithm identifier transmitted as signMethod.
	Method() string
}

// Payload carries the signed fields of an inbound notification. Pointers
// distinguish absent fields from zero values so verification can fail closed.
type Payload struct {
	Amount   *int64
	Currency *string
}
