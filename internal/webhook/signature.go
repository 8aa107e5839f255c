package webhook

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
)

// SignatureHeader is the header GitHub uses for HMAC-SHA256 payload signatures.
const SignatureHeader = "X-Hub-Signature-256"

var (
	// ErrSignatureMissing is returned when no signature header is present.
	ErrSignatureMissing = errors.New("webhook signature missing")

	// ErrSignatureInvalid is returned when the signature does not match the body.
	ErrSignatureInvalid = errors.New("webhook signature invalid")
)

// VerifySignature checks that signature is the HMAC-SHA256 of body keyed by
// secret, in GitHub's "sha256=<hex>" form. The comparison is constant-time.
// This is the sole authentication gate for inbound events and must run
// before the body is parsed or acted on.
func VerifySignature(body []byte, signature, secret string) error {
	if signature == "" {
		return ErrSignatureMissing
	}

	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	expected := "sha256=" + hex.EncodeToString(mac.Sum(nil))

	if !hmac.Equal([]byte(signature), []byte(expected)) {
		return ErrSignatureInvalid
	}
	return nil
}
