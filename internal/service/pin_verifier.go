package service

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// sha256EmptyDigest is the well-known SHA-256 digest of the empty string, used
// as a startup self-check vector.
const sha256EmptyDigest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// SHA256PinVerifier implements ports.PinVerifier with SHA-256 rendered as
// lowercase hex (64 chars). Comparison rejects on any mismatch, including
// length mismatch.
type SHA256PinVerifier struct{}

// NewSHA256PinVerifier creates the verifier after checking the hash primitive
// against a known vector. A failure here is a fatal configuration error and
// must keep the process from serving traffic.
func NewSHA256PinVerifier() (*SHA256PinVerifier, error) {
	v := &SHA256PinVerifier{}
	if got := v.Digest(""); got != sha256EmptyDigest {
		return nil, fmt.Errorf("sha-256 self-check failed: got %q", got)
	}
	return v, nil
}

// Digest returns the lowercase hex SHA-256 digest of the secret.
func (v *SHA256PinVerifier) Digest(secret string) string {
	sum := sha256.Sum256([]byte(secret))
	return hex.EncodeToString(sum[:])
}

// Verify compares the digest of the presented secret against the stored one.
func (v *SHA256PinVerifier) Verify(presented string, storedDigest string) bool {
	return v.Digest(presented) == storedDigest
}
