package signature

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
)

// Verify checks the gateway checkout signature: hex HMAC-SHA256 over
// "<orderID>|<paymentID>" keyed by the API secret. The comparison is
// constant-time; a length mismatch short-circuits to invalid since
// lengths are not secret.
func Verify(orderID, paymentID, sig, secret string) (bool, error) {
	if orderID == "" || paymentID == "" || sig == "" || secret == "" {
		return false, domainErrors.ErrInvalidRequest
	}
	expected := sign([]byte(orderID+"|"+paymentID), secret)
	return equal(expected, sig), nil
}

// VerifyWebhook checks the webhook signature computed over the raw,
// unparsed request body keyed by the webhook secret. The body must not be
// re-serialized before verification: any JSON round-trip could alter it
// byte-for-byte and break the signature.
func VerifyWebhook(body []byte, sig, secret string) (bool, error) {
	if len(body) == 0 || sig == "" || secret == "" {
		return false, domainErrors.ErrInvalidRequest
	}
	expected := sign(body, secret)
	return equal(expected, sig), nil
}

func sign(payload []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

func equal(expected, got string) bool {
	if len(expected) != len(got) {
		return false
	}
	return hmac.Equal([]byte(expected), []byte(got))
}

// Sign exposes the checkout signature computation for tests and tooling.
func Sign(orderID, paymentID, secret string) string {
	return sign([]byte(orderID+"|"+paymentID), secret)
}

// SignWebhook exposes the webhook signature computation for tests and tooling.
func SignWebhook(body []byte, secret string) string {
	return sign(body, secret)
}
