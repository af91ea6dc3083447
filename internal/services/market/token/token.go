// Package token draws unpredictable URL-safe tokens from the process CSPRNG.
// Concurrent callers draw independent values without coordination.
package token

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

// ClientSecretBytes is the entropy behind a payment-UI client session token.
const ClientSecretBytes = 24

// LicenseKeyBytes is the minimum entropy behind an issued license key.
const LicenseKeyBytes = 16

// URLSafe returns a URL-safe token rendered from n random bytes.
func URLSafe(n int) (string, error) {
	if n <= 0 {
		return "", fmt.Errorf("token size must be positive, got %d", n)
	}
	raw := make([]byte, n)
	if _, err := rand.Read(raw); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// ClientSecret returns a fresh opaque client-session token for the caller's
// payment UI. The token is never persisted or validated server-side.
func ClientSecret() (string, error) {
	return URLSafe(ClientSecretBytes)
}

// LicenseKey returns a fresh uppercase URL-safe license key string.
func LicenseKey() (string, error) {
	value, err := URLSafe(LicenseKeyBytes)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(value), nil
}
