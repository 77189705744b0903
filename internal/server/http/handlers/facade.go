package handlers

import (
	"context"

	"github.com/polkiloo/ordertrack/internal/domain/model"
)

// SessionFacade describes sign-in capabilities required by handlers.
type SessionFacade interface {
	Login(ctx context.Context, email, password string) (string, model.User, error)
	Logout()
	Authorize(token string) (model.User, error)
}

// OrderFacade exposes list and detail views.
type OrderFacade interface {
	Orders(ctx context.Context, scope model.Scope) ([]model.ListEntry, error)
	RefreshOrders(ctx context.Context, scope model.Scope) ([]model.ListEntry, error)
	Order(ctx context.Context, id string) (model.OrderDetail, error)
	CloseOrder(id string) bool
}

// RiderFacade exposes the rider desk.
type RiderFacade interface {
	Available(ctx context.Context) ([]model.ListEntry, error)
	Prompts() ([]model.Prompt, error)
	Accept(ctx context.Context, id string) error
	Decline(ctx context.Context, id string) error
}

// FeedFacade exposes notices and the notification inbox.
type FeedFacade interface {
	Notices() []model.Notice
	DismissNotice(id int64) bool
	Notifications() ([]model.Notification, int)
	MarkNotificationRead(id string) bool
	MarkAllNotificationsRead()
	RemoveNotification(id string) bool
	ClearNotifications()
}

// TrackerFacade aggregates the full set of operations used across handlers.
type TrackerFacade interface {
	SessionFacade
	OrderFacade
	RiderFacade
	FeedFacade
}
