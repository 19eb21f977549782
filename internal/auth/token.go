package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// Token format: blg_{prefix}_{secret}
// Example: blg_7a9x3k1f_4f8d2e1b9c7a5f3d2e1b9c7a5f3d2e1b9c7a5f3d
const (
	TokenPrefixLen = 8  // hex encoded 4 bytes
	TokenSecretLen = 40 // hex encoded 20 bytes
)

var (
	// ErrInvalidTokenFormat indicates the bearer token format is invalid.
	ErrInvalidTokenFormat = errors.New("invalid token format")

	tokenFormatRegex = regexp.MustCompile(`^blg_([a-f0-9]{8})_([a-f0-9]{40})$`)
)

// GeneratedToken contains the parts of a newly issued token.
type GeneratedToken struct {
	Plaintext string // shown to the client once
	Hash      string // sha256 hex, stored
	Prefix    string // visible prefix, stored for display
}

// GenerateToken creates a new random bearer token.
func GenerateToken() (*GeneratedToken, error) {
	prefixBytes := make([]byte, TokenPrefixLen/2)
	if _, err := rand.Read(prefixBytes); err != nil {
		return nil, fmt.Errorf("generate prefix: %w", err)
	}
	secretBytes := make([]byte, TokenSecretLen/2)
	if _, err := rand.Read(secretBytes); err != nil {
		return nil, fmt.Errorf("generate secret: %w", err)
	}

	prefix := hex.EncodeToString(prefixBytes)
	plaintext := fmt.Sprintf("blg_%s_%s", prefix, hex.EncodeToString(secretBytes))

	return &GeneratedToken{
		Plaintext: plaintext,
		Hash:      HashToken(plaintext),
		Prefix:    prefix,
	}, nil
}

// ParsedToken contains the parsed parts of a bearer token.
type ParsedToken struct {
	Prefix string
	Secret string
}

// ParseToken extracts the components from a plaintext token.
func ParseToken(token string) (*ParsedToken, error) {
	matches := tokenFormatRegex.FindStringSubmatch(token)
	if matches == nil {
		return nil, ErrInvalidTokenFormat
	}
	return &ParsedToken{Prefix: matches[1], Secret: matches[2]}, nil
}

// HashToken returns the storage hash of a plaintext token.
// Tokens carry 160 bits of entropy, so a fast digest is enough and
// allows lookup by hash.
func HashToken(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

// BearerToken extracts the token from an Authorization header value.
// Returns "" when the header is not a Bearer credential.
func BearerToken(header string) string {
	scheme, token, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}
