package security

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// csrfTokenBytes is the entropy of a CSRF token (256 bits)
const csrfTokenBytes = 32

// RandomToken returns n random bytes as a hex string
func RandomToken(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token length must be positive, got %d", n)
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to read random bytes: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// NewCSRFToken creates the token that guards the local view forms for the
// lifetime of the process.
func NewCSRFToken() (string, error) {
	return RandomToken(csrfTokenBytes)
}
