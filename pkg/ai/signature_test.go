package ai

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"testing"
	"time"
)

func TestSignToken_Deterministic(t *testing.T) {
	mac := hmac.New(sha256.New, []byte("abc123"))
	mac.Write([]byte("hello"))
	want := hex.EncodeToString(mac.Sum(nil))

	got := SignToken("abc123", "hello")
	if got != want {
		t.Fatalf("SignToken = %s, want %s", got, want)
	}
	if again := SignToken("abc123", "hello"); again != got {
		t.Fatalf("signature not deterministic: %s vs %s", again, got)
	}
	if len(got) != 64 {
		t.Fatalf("expected 64 hex chars, got %d", len(got))
	}
}

func TestVerifyHMAC(t *testing.T) {
	sig := Sign("secret", []byte("payload"))
	if !VerifyHMAC("secret", []byte("payload"), sig) {
		t.Fatalf("expected valid signature")
	}
	if VerifyHMAC("other", []byte("payload"), sig) {
		t.Fatalf("expected invalid signature for wrong secret")
	}
	if VerifyHMAC("", []byte("payload"), sig) {
		t.Fatalf("empty secret must never verify")
	}
}

func TestVerifyRequestSignature(t *testing.T) {
	body := []byte(`{"event":"recording.completed"}`)
	ts := strconv.FormatInt(time.Now().Unix(), 10)
	sig := RequestSignature("abc123", ts, body)

	if sig[:3] != "v0=" {
		t.Fatalf("expected v0= prefix, got %s", sig)
	}
	if !VerifyRequestSignature("abc123", ts, body, sig, 5*time.Minute) {
		t.Fatalf("expected signature to verify")
	}
	if VerifyRequestSignature("abc123", ts, []byte(`{}`), sig, 5*time.Minute) {
		t.Fatalf("tampered body must not verify")
	}

	old := strconv.FormatInt(time.Now().Add(-time.Hour).Unix(), 10)
	if VerifyRequestSignature("abc123", old, body, RequestSignature("abc123", old, body), 5*time.Minute) {
		t.Fatalf("stale timestamp must not verify")
	}
	if !VerifyRequestSignature("abc123", old, body, RequestSignature("abc123", old, body), 0) {
		t.Fatalf("zero skew disables the freshness check")
	}
}
