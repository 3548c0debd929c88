package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func signHex(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}

func TestVerifySignature(t *testing.T) {
	secret := "test_secret"
	sig := signHex("order_123", "pay_456", secret)

	assert.True(t, VerifySignature("order_123", "pay_456", sig, secret))

	// Tampering with any component must fail, even with valid ids.
	assert.False(t, VerifySignature("order_123", "pay_456", sig+"00", secret))
	assert.False(t, VerifySignature("order_999", "pay_456", sig, secret))
	assert.False(t, VerifySignature("order_123", "pay_999", sig, secret))
	assert.False(t, VerifySignature("order_123", "pay_456", sig, "other_secret"))
	assert.False(t, VerifySignature("order_123", "pay_456", "", secret))
}
