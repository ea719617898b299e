// Package auth enforces the gateway's single shared API key.
package auth

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"
)

// Verifier validates the static API key every request must present.
type Verifier struct {
	apiKey string
}

// NewVerifier creates a verifier for the given shared secret.
func NewVerifier(apiKey string) *Verifier {
	return &Verifier{apiKey: apiKey}
}

// Verify checks the presented token against the shared key in constant time.
func (v *Verifier) Verify(token string) error {
	if token == "" {
		return fmt.Errorf("missing API key")
	}
	if subtle.ConstantTimeCompare([]byte(token), []byte(v.apiKey)) != 1 {
		return fmt.Errorf("invalid API key")
	}
	return nil
}

// ExtractBearerToken extracts the bearer token from the Authorization header.
func ExtractBearerToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return "", fmt.Errorf("missing Authorization header")
	}
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return "", fmt.Errorf("Authorization header must use the Bearer scheme")
	}
	token := strings.TrimSpace(strings.TrimPrefix(header, prefix))
	if token == "" {
		return "", fmt.Errorf("empty bearer token")
	}
	return token, nil
}

// MaskToken renders a token safe for logging, keeping only the edges.
func MaskToken(token string) string {
	if token == "" {
		return "<missing>"
	}
	if len(token) <= 8 {
		return token[:2] + "***" + token[len(token)-2:]
	}
	return token[:4] + "***" + token[len(token)-4:]
}
