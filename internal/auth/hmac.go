// Package auth verifies request signatures.
//
// Clients sign every turn with HMAC-SHA256 over "userId.timestamp.text" and
// send the hex digest alongside the payload. Verification is constant-time.
package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Sign computes the hex HMAC-SHA256 signature for one request.
func Sign(secret, userID, text string, timestamp int64) string {
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%s.%d.%s", userID, timestamp, text)
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether signature matches the request. A signature that is
// not valid hex never matches.
func Verify(secret, userID, text string, timestamp int64, signature string) bool {
	got, err := hex.DecodeString(signature)
	if err != nil {
		return false
	}
	want, err := hex.DecodeString(Sign(secret, userID, text, timestamp))
	if err != nil {
		return false
	}
	return hmac.Equal(want, got)
}
