package auth

import "time"

// Claims identify the holder of a local session token. Session changes on
// every sign-in, so tokens of an ended session can be told apart from the
// current one even for the same user.
type Claims struct {
	Subject   string    `json:"sub"`
	Role      string    `json:"role,omitempty"`
	Session   string    `json:"sid"`
	ExpiresAt time.Time `json:"exp"`
}

// Strategy issues and verifies local session tokens.
type Strategy interface {
	IssueToken(claims Claims) (string, error)
	ParseToken(token string) (Claims, error)
	Name() string
}

type Options struct {
	TTL time.Duration
}
