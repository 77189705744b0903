package app

import (
	"context"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/notification"
	"github.com/polkiloo/ordertrack/internal/reconcile"
	"github.com/polkiloo/ordertrack/internal/session"
)

// TrackerFacade adapts the session, its views and the notification feed to
// the HTTP layer.
type TrackerFacade struct {
	sessions *session.Manager
	hub      *reconcile.Hub
	inbox    *notification.Inbox
}

func NewTrackerFacade(sessions *session.Manager, hub *reconcile.Hub, inbox *notification.Inbox) *TrackerFacade {
	return &TrackerFacade{sessions: sessions, hub: hub, inbox: inbox}
}

func (f *TrackerFacade) Login(ctx context.Context, email, password string) (string, model.User, error) {
	res, err := f.sessions.Login(ctx, model.Credentials{Email: email, Password: password})
	if err != nil {
		return "", model.User{}, err
	}
	return res.Token, res.User, nil
}

func (f *TrackerFacade) Logout() {
	f.sessions.Logout()
}

func (f *TrackerFacade) Authorize(token string) (model.User, error) {
	return f.sessions.Authorize(token)
}

// Orders returns the list for scope, fetching it the first time it is shown.
// A failed fetch still returns the last known entries.
func (f *TrackerFacade) Orders(ctx context.Context, scope model.Scope) ([]model.ListEntry, error) {
	if _, ok := f.sessions.Current(); !ok {
		return nil, domainErrors.ErrNoSession
	}
	view := f.hub.List(scope)
	var err error
	if !view.Loaded() {
		err = view.Refresh(ctx)
	}
	return toListEntries(view.Entries()), err
}

func (f *TrackerFacade) RefreshOrders(ctx context.Context, scope model.Scope) ([]model.ListEntry, error) {
	if _, ok := f.sessions.Current(); !ok {
		return nil, domainErrors.ErrNoSession
	}
	view := f.hub.List(scope)
	err := view.Refresh(ctx)
	return toListEntries(view.Entries()), err
}

// Order opens the detail view of id. A view whose first fetch fails is closed
// again so the next request retries from scratch.
func (f *TrackerFacade) Order(ctx context.Context, id string) (model.OrderDetail, error) {
	if _, ok := f.sessions.Current(); !ok {
		return model.OrderDetail{}, domainErrors.ErrNoSession
	}
	view := f.hub.Detail(id)
	var err error
	if _, ok := view.Order(); !ok {
		err = view.Refresh(ctx)
	}
	order, ok := view.Order()
	if !ok {
		f.hub.CloseDetail(id)
		if err == nil {
			err = domainErrors.ErrViewClosed
		}
		return model.OrderDetail{}, err
	}
	return model.OrderDetail{Order: order, Stages: view.Stages()}, err
}

func (f *TrackerFacade) CloseOrder(id string) bool {
	return f.hub.CloseDetail(id)
}

// Available returns the rider's available list, re-evaluating prompts on the
// first call after sign-in.
func (f *TrackerFacade) Available(ctx context.Context) ([]model.ListEntry, error) {
	desk := f.hub.Desk()
	if !desk.Active() {
		return nil, domainErrors.ErrNoSession
	}
	var err error
	if !desk.Loaded() {
		err = desk.Reevaluate(ctx)
	}
	return toListEntries(desk.Available()), err
}

func (f *TrackerFacade) Prompts() ([]model.Prompt, error) {
	desk := f.hub.Desk()
	if !desk.Active() {
		return nil, domainErrors.ErrNoSession
	}
	return desk.Prompts(), nil
}

func (f *TrackerFacade) Accept(ctx context.Context, id string) error {
	return f.hub.Desk().Accept(ctx, id)
}

func (f *TrackerFacade) Decline(ctx context.Context, id string) error {
	if !f.hub.Desk().Active() {
		return domainErrors.ErrNoSession
	}
	return f.hub.Desk().Decline(ctx, id)
}

func (f *TrackerFacade) Notices() []model.Notice {
	return f.hub.Notices().List()
}

func (f *TrackerFacade) DismissNotice(id int64) bool {
	return f.hub.Notices().Dismiss(id)
}

func (f *TrackerFacade) Notifications() ([]model.Notification, int) {
	return f.inbox.List(), f.inbox.Unread()
}

func (f *TrackerFacade) MarkNotificationRead(id string) bool {
	return f.inbox.MarkRead(id)
}

func (f *TrackerFacade) MarkAllNotificationsRead() {
	f.inbox.MarkAllRead()
}

func (f *TrackerFacade) RemoveNotification(id string) bool {
	return f.inbox.Remove(id)
}

func (f *TrackerFacade) ClearNotifications() {
	f.inbox.Clear()
}

func toListEntries(entries []reconcile.Entry) []model.ListEntry {
	out := make([]model.ListEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, model.ListEntry{Order: e.Order, Optimistic: e.State == reconcile.Optimistic})
	}
	return out
}
