package billing

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
)

// VerifySignature recomputes the HMAC-SHA256 of "{orderID}|{paymentID}" with
// the shared key secret and compares it to the client-supplied hex signature
// in constant time. Security-critical: a mismatch must always fail the
// verification request.
func VerifySignature(orderID, paymentID, signature, secret string) bool {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}
