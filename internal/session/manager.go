// Package session owns the signed-in state: the backend token, the push
// channel connection and the per-session reconciliation state.
package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/polkiloo/ordertrack/internal/adapter/backend"
	"github.com/polkiloo/ordertrack/internal/adapter/push"
	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/notification"
	"github.com/polkiloo/ordertrack/internal/pkg/auth"
	"github.com/polkiloo/ordertrack/internal/reconcile"
)

// Backend is the subset of the backend client used for signing in.
type Backend interface {
	Login(ctx context.Context, creds model.Credentials) (backend.Session, error)
	SetToken(token string)
}

// Pump consumes the message stream of a connected channel.
type Pump interface {
	Attach(stream <-chan push.Message)
}

// Result is returned by a successful Login.
type Result struct {
	Token string
	User  model.User
}

// Manager connects the push channel on login and disconnects it on logout.
// At most one session is active at a time.
type Manager struct {
	backend  Backend
	channel  push.Channel
	pump     Pump
	hub      *reconcile.Hub
	tracker  *reconcile.PromptTracker
	inbox    *notification.Inbox
	strategy auth.Strategy
	logger   *slog.Logger

	mu      sync.Mutex
	user    *model.User
	session string
}

// Deps groups Manager collaborators.
type Deps struct {
	Backend  Backend
	Channel  push.Channel
	Pump     Pump
	Hub      *reconcile.Hub
	Tracker  *reconcile.PromptTracker
	Inbox    *notification.Inbox
	Strategy auth.Strategy
	Logger   *slog.Logger
}

// NewManager constructs Manager.
func NewManager(d Deps) *Manager {
	return &Manager{
		backend:  d.Backend,
		channel:  d.Channel,
		pump:     d.Pump,
		hub:      d.Hub,
		tracker:  d.Tracker,
		inbox:    d.Inbox,
		strategy: d.Strategy,
		logger:   d.Logger,
	}
}

// Login signs in against the backend and starts a fresh session. A previous
// session is torn down first. Channel failures do not fail the login; the
// polling fallback keeps views current until the next login.
func (m *Manager) Login(ctx context.Context, creds model.Credentials) (Result, error) {
	sess, err := m.backend.Login(ctx, creds)
	if err != nil {
		return Result{}, err
	}

	sid := uuid.NewString()
	token, err := m.strategy.IssueToken(auth.Claims{
		Subject: sess.User.ID,
		Role:    string(sess.User.Role),
		Session: sid,
	})
	if err != nil {
		return Result{}, fmt.Errorf("issue session token: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.user != nil {
		m.teardown()
	}

	m.backend.SetToken(sess.Token)
	user := sess.User
	m.user = &user
	m.session = sid

	if user.Role == model.RoleRider {
		if err := m.tracker.Load(ctx, user.ID); err != nil {
			m.logger.Warn("load prompted orders failed", slog.String("rider", user.ID), slog.String("error", err.Error()))
		}
		m.hub.Desk().Open(user.ID)
	}

	m.connect(ctx)

	if user.Role == model.RoleRider {
		if err := m.hub.Reevaluate(ctx); err != nil {
			m.logger.Warn("initial available orders fetch failed", slog.String("error", err.Error()))
		}
	}

	m.logger.Info("session started", slog.String("user", user.ID), slog.String("role", string(user.Role)))
	return Result{Token: token, User: user}, nil
}

func (m *Manager) connect(ctx context.Context) {
	if err := m.channel.Connect(ctx); err != nil {
		m.logger.Warn("event channel unavailable", slog.String("error", err.Error()))
		m.hub.Notices().Add("", "Live updates are unavailable, orders refresh periodically")
		return
	}
	m.pump.Attach(m.channel.Messages())
}

// Logout ends the current session. It is a no-op without one.
func (m *Manager) Logout() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return
	}
	id := m.user.ID
	m.teardown()
	m.logger.Info("session ended", slog.String("user", id))
}

// teardown must be called with m.mu held.
func (m *Manager) teardown() {
	if err := m.channel.Close(); err != nil {
		m.logger.Warn("close event channel", slog.String("error", err.Error()))
	}
	m.hub.Reset()
	m.tracker.Reset()
	m.inbox.Clear()
	m.backend.SetToken("")
	m.user = nil
	m.session = ""
}

// Current returns the signed-in user.
func (m *Manager) Current() (model.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil {
		return model.User{}, false
	}
	return *m.user, true
}

// Authorize resolves a local session token to the signed-in user. Tokens of
// an ended session are rejected, including those of an earlier sign-in by
// the same user.
func (m *Manager) Authorize(token string) (model.User, error) {
	claims, err := m.strategy.ParseToken(token)
	if err != nil {
		return model.User{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.user == nil || m.user.ID != claims.Subject || m.session != claims.Session {
		return model.User{}, domainErrors.ErrNoSession
	}
	return *m.user, nil
}
