package ai

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"time"
)

// SignatureVersion prefixes Zoom request signatures
const SignatureVersion = "v0"

// Sign returns the lowercase hex HMAC-SHA256 of payload keyed by secret
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}

// SignToken answers a URL validation challenge
func SignToken(secret, plainToken string) string {
	return Sign(secret, []byte(plainToken))
}

// VerifyHMAC verifies a sha256 HMAC hex signature against payload and secret
func VerifyHMAC(secret string, payload []byte, signatureHex string) bool {
	if secret == "" || signatureHex == "" {
		return false
	}
	expected := Sign(secret, payload)
	return hmac.Equal([]byte(expected), []byte(signatureHex))
}

// RequestSignature builds the x-zm-signature value for a request body
func RequestSignature(secret, timestamp string, body []byte) string {
	msg := make([]byte, 0, len(body)+len(timestamp)+4)
	msg = append(msg, SignatureVersion+":"+timestamp+":"...)
	msg = append(msg, body...)
	return SignatureVersion + "=" + Sign(secret, msg)
}

// VerifyRequestSignature checks the x-zm-signature header of a webhook
// delivery. A zero maxSkew disables the timestamp freshness check.
func VerifyRequestSignature(secret, timestamp string, body []byte, signature string, maxSkew time.Duration) bool {
	if secret == "" || timestamp == "" || signature == "" {
		return false
	}
	if maxSkew > 0 {
		sec, err := strconv.ParseInt(timestamp, 10, 64)
		if err != nil {
			return false
		}
		skew := time.Since(time.Unix(sec, 0))
		if skew < -maxSkew || skew > maxSkew {
			return false
		}
	}
	expected := RequestSignature(secret, timestamp, body)
	return hmac.Equal([]byte(expected), []byte(signature))
}
