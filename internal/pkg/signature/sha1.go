package signature

import (
	"crypto/sha1"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
)

// SHA1Signer implements the BML Connect signature scheme: the hex encoded
// sha1 of "amount=<amount>&currency=<currency>&apiKey=<secret>".
type SHA1Signer struct {
	apiKey string
}

// NewSHA1Signer builds SHA1Signer with the merchant's shared secret.
func NewSHA1Signer(apiKey string) *SHA1Signer {
	return &SHA1Signer{apiKey: apiKey}
}

func (s *SHA1Signer) Sign(amount int64, currency string) string {
	sum := sha1.Sum([]byte(fmt.Sprintf("amount=%d&currency=%s&apiKey=%s", amount, currency, s.apiKey)))
	return hex.EncodeToString(sum[:])
}

func (s *SHA1Signer) Verify(payload Payload, signature string) bool {
	if payload.Amount == nil || payload.Currency == nil {
		return false
	}
	expected := s.Sign(*payload.Amount, *payload.Currency)
	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (s *SHA1Signer) Method() string {
	return "sha1"
}
