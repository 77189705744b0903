package test

import (
	"context"

	"github.com/polkiloo/ordertrack/internal/domain/model"
)

// SessionFacadeStub provides controllable behaviour for session endpoints.
type SessionFacadeStub struct {
	LoginFn     func(context.Context, string, string) (string, model.User, error)
	LogoutFn    func()
	AuthorizeFn func(string) (model.User, error)
}

// Login delegates to provided function or returns a customer session.
func (s SessionFacadeStub) Login(ctx context.Context, email, password string) (string, model.User, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, email, password)
	}
	return "token", model.User{ID: "u-1", Email: email, Role: model.RoleCustomer}, nil
}

// Logout runs configured hook.
func (s SessionFacadeStub) Logout() {
	if s.LogoutFn != nil {
		s.LogoutFn()
	}
}

// Authorize resolves tokens for authenticated routes.
func (s SessionFacadeStub) Authorize(token string) (model.User, error) {
	if s.AuthorizeFn != nil {
		return s.AuthorizeFn(token)
	}
	return model.User{ID: "u-1", Role: model.RoleCustomer}, nil
}

// OrderFacadeStub simulates list and detail views.
type OrderFacadeStub struct {
	OrdersFn  func(context.Context, model.Scope) ([]model.ListEntry, error)
	RefreshFn func(context.Context, model.Scope) ([]model.ListEntry, error)
	OrderFn   func(context.Context, string) (model.OrderDetail, error)
	CloseFn   func(string) bool
}

// Orders returns predefined entries for scope.
func (s OrderFacadeStub) Orders(ctx context.Context, scope model.Scope) ([]model.ListEntry, error) {
	if s.OrdersFn != nil {
		return s.OrdersFn(ctx, scope)
	}
	return []model.ListEntry{{Order: model.Order{ID: "order-1", Status: string(model.StatusPending)}}}, nil
}

// RefreshOrders returns predefined entries after a forced reload.
func (s OrderFacadeStub) RefreshOrders(ctx context.Context, scope model.Scope) ([]model.ListEntry, error) {
	if s.RefreshFn != nil {
		return s.RefreshFn(ctx, scope)
	}
	return s.Orders(ctx, scope)
}

// Order returns the detail view of id.
func (s OrderFacadeStub) Order(ctx context.Context, id string) (model.OrderDetail, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return model.OrderDetail{Order: model.Order{ID: id, Status: string(model.StatusPending)}}, nil
}

// CloseOrder reports whether a detail view was open.
func (s OrderFacadeStub) CloseOrder(id string) bool {
	if s.CloseFn != nil {
		return s.CloseFn(id)
	}
	return true
}

// RiderFacadeStub simulates the rider desk.
type RiderFacadeStub struct {
	AvailableFn func(context.Context) ([]model.ListEntry, error)
	PromptsFn   func() ([]model.Prompt, error)
	AcceptFn    func(context.Context, string) error
	DeclineFn   func(context.Context, string) error
}

// Available returns predefined available orders.
func (s RiderFacadeStub) Available(ctx context.Context) ([]model.ListEntry, error) {
	if s.AvailableFn != nil {
		return s.AvailableFn(ctx)
	}
	return nil, nil
}

// Prompts returns pending prompts.
func (s RiderFacadeStub) Prompts() ([]model.Prompt, error) {
	if s.PromptsFn != nil {
		return s.PromptsFn()
	}
	return nil, nil
}

// Accept runs configured accept handler.
func (s RiderFacadeStub) Accept(ctx context.Context, id string) error {
	if s.AcceptFn != nil {
		return s.AcceptFn(ctx, id)
	}
	return nil
}

// Decline runs configured decline handler.
func (s RiderFacadeStub) Decline(ctx context.Context, id string) error {
	if s.DeclineFn != nil {
		return s.DeclineFn(ctx, id)
	}
	return nil
}

// FeedFacadeStub simulates notices and notifications.
type FeedFacadeStub struct {
	NoticesFn       func() []model.Notice
	DismissFn       func(int64) bool
	NotificationsFn func() ([]model.Notification, int)
	MarkReadFn      func(string) bool
	MarkAllReadFn   func()
	RemoveFn        func(string) bool
	ClearFn         func()
}

// Notices returns configured notices.
func (s FeedFacadeStub) Notices() []model.Notice {
	if s.NoticesFn != nil {
		return s.NoticesFn()
	}
	return nil
}

// DismissNotice reports whether id was present.
func (s FeedFacadeStub) DismissNotice(id int64) bool {
	if s.DismissFn != nil {
		return s.DismissFn(id)
	}
	return true
}

// Notifications returns configured notifications and unread count.
func (s FeedFacadeStub) Notifications() ([]model.Notification, int) {
	if s.NotificationsFn != nil {
		return s.NotificationsFn()
	}
	return nil, 0
}

// MarkNotificationRead reports whether id was present.
func (s FeedFacadeStub) MarkNotificationRead(id string) bool {
	if s.MarkReadFn != nil {
		return s.MarkReadFn(id)
	}
	return true
}

// MarkAllNotificationsRead runs configured hook.
func (s FeedFacadeStub) MarkAllNotificationsRead() {
	if s.MarkAllReadFn != nil {
		s.MarkAllReadFn()
	}
}

// RemoveNotification reports whether id was present.
func (s FeedFacadeStub) RemoveNotification(id string) bool {
	if s.RemoveFn != nil {
		return s.RemoveFn(id)
	}
	return true
}

// ClearNotifications runs configured hook.
func (s FeedFacadeStub) ClearNotifications() {
	if s.ClearFn != nil {
		s.ClearFn()
	}
}

// TrackerFacadeStub aggregates facade dependencies for HTTP layer tests.
type TrackerFacadeStub struct {
	SessionFacadeStub
	OrderFacadeStub
	RiderFacadeStub
	FeedFacadeStub
}
