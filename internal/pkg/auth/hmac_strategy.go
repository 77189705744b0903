package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

var ErrInvalidToken = errors.New("invalid auth token")

var encoding = base64.RawURLEncoding

// HMACStrategy signs JSON claims with HMAC-SHA256. Tokens have the form
// base64url(claims) "." base64url(signature).
type HMACStrategy struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewHMACStrategy builds HMACStrategy with provided secret and options.
func NewHMACStrategy(secret string, opts Options) *HMACStrategy {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &HMACStrategy{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// IssueToken signs claims. A missing session id is generated and the expiry
// is always set from the configured TTL.
func (s *HMACStrategy) IssueToken(claims Claims) (string, error) {
	if claims.Subject == "" {
		return "", fmt.Errorf("issue token: empty subject")
	}
	if claims.Session == "" {
		claims.Session = uuid.NewString()
	}
	claims.ExpiresAt = s.now().Add(s.ttl).UTC().Truncate(time.Second)

	body, err := json.Marshal(claims)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	payload := encoding.EncodeToString(body)
	return payload + "." + s.sign(payload), nil
}

// ParseToken verifies the signature and expiry of token and returns its claims.
func (s *HMACStrategy) ParseToken(token string) (Claims, error) {
	payload, sig, ok := strings.Cut(token, ".")
	if !ok || payload == "" || sig == "" {
		return Claims{}, ErrInvalidToken
	}
	if !hmac.Equal([]byte(s.sign(payload)), []byte(sig)) {
		return Claims{}, ErrInvalidToken
	}

	body, err := encoding.DecodeString(payload)
	if err != nil {
		return Claims{}, ErrInvalidToken
	}
	var claims Claims
	if err := json.Unmarshal(body, &claims); err != nil {
		return Claims{}, ErrInvalidToken
	}
	if claims.Subject == "" || claims.Session == "" {
		return Claims{}, ErrInvalidToken
	}
	if !claims.ExpiresAt.After(s.now()) {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

func (s *HMACStrategy) Name() string {
	return "hmac"
}

func (s *HMACStrategy) sign(payload string) string {
	mac := hmac.New(sha256.New, s.secret)
	mac.Write([]byte(payload))
	return encoding.EncodeToString(mac.Sum(nil))
}
