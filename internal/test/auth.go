package test

import (
	"strings"

	"github.com/polkiloo/ordertrack/internal/domain/model"
	pkgAuth "github.com/polkiloo/ordertrack/internal/pkg/auth"
)

// StrategyStub issues and parses tokens via function overrides.
type StrategyStub struct {
	IssueFn func(pkgAuth.Claims) (string, error)
	ParseFn func(string) (pkgAuth.Claims, error)
	NameVal string
}

// IssueToken returns deterministic tokens for tests.
func (s StrategyStub) IssueToken(claims pkgAuth.Claims) (string, error) {
	if s.IssueFn != nil {
		return s.IssueFn(claims)
	}
	return "token:" + claims.Subject + ":" + claims.Session, nil
}

// ParseToken parses tokens of the form "token:<subject>:<session>".
func (s StrategyStub) ParseToken(token string) (pkgAuth.Claims, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	parts := strings.SplitN(token, ":", 3)
	if len(parts) != 3 || parts[0] != "token" {
		return pkgAuth.Claims{}, pkgAuth.ErrInvalidToken
	}
	return pkgAuth.Claims{Subject: parts[1], Session: parts[2]}, nil
}

// Name returns the strategy identifier used in tests.
func (s StrategyStub) Name() string {
	if s.NameVal != "" {
		return s.NameVal
	}
	return "stub"
}

// AuthorizerStub implements the middleware authorization contract.
type AuthorizerStub struct {
	User        model.User
	Err         error
	AuthorizeFn func(string) (model.User, error)
}

// Authorize either delegates to override or returns predefined result.
func (s AuthorizerStub) Authorize(token string) (model.User, error) {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(token)
	}
	if s.Err != nil {
		return model.User{}, s.Err
	}
	return s.User, nil
}

var _ pkgAuth.Strategy = StrategyStub{}
