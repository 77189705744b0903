// Package notification keeps the user's notification feed.
package notification

import (
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/event"
	"github.com/polkiloo/ordertrack/internal/status"
)

// MaxEntries caps the feed; the oldest entries are dropped first.
const MaxEntries = 100

// Inbox is a newest-first notification feed. The unread count is derived from
// the feed, and entries are keyed by id, so recording the same event twice
// leaves the feed unchanged.
type Inbox struct {
	mu    sync.Mutex
	items []model.Notification
	now   func() time.Time
}

// NewInbox constructs an empty inbox.
func NewInbox() *Inbox {
	return &Inbox{now: time.Now}
}

// Record turns feed-worthy events into notifications.
func (i *Inbox) Record(e event.Event) {
	n, ok := i.derive(e)
	if !ok {
		return
	}
	i.Add(n)
}

// Add prepends n unless an entry with the same id exists. It reports whether
// n was added.
func (i *Inbox) Add(n model.Notification) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	for _, item := range i.items {
		if item.ID == n.ID {
			return false
		}
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = i.now()
	}
	i.items = append([]model.Notification{n}, i.items...)
	if len(i.items) > MaxEntries {
		i.items = i.items[:MaxEntries]
	}
	return true
}

func (i *Inbox) derive(e event.Event) (model.Notification, bool) {
	n := model.Notification{
		Type:    string(e.Kind),
		OrderID: e.OrderID,
		Status:  e.Status,
		Message: e.Message,
	}
	short := model.ShortID(e.OrderID)
	switch e.Kind {
	case event.KindNotification:
		n.ID = e.NotificationID
		if n.ID == "" {
			n.ID = digest(e.Kind, e.OrderID, e.Message)
		}
	case event.KindOrderUpdate:
		if e.OrderID == "" {
			return n, false
		}
		n.Message = fmt.Sprintf("Order #%s status updated to %s", short, status.Label(e.Status))
		n.ID = digest(e.Kind, e.OrderID, status.Canonical(e.Status))
	case event.KindNewOrder:
		if e.OrderID == "" {
			return n, false
		}
		n.Message = fmt.Sprintf("New order #%s received", short)
		n.ID = digest(e.Kind, e.OrderID)
	case event.KindRiderUpdate:
		if n.Message == "" {
			if e.OrderID == "" {
				return n, false
			}
			n.Message = fmt.Sprintf("Rider update for order #%s", short)
		}
		n.ID = digest(e.Kind, e.OrderID, n.Message)
	default:
		return n, false
	}
	return n, true
}

func digest(kind event.Kind, parts ...string) string {
	h := xxhash.New()
	_, _ = h.WriteString(string(kind))
	for _, p := range parts {
		_, _ = h.WriteString("\x00")
		_, _ = h.WriteString(p)
	}
	return fmt.Sprintf("%s-%x", kind, h.Sum64())
}

// List returns the feed, newest first.
func (i *Inbox) List() []model.Notification {
	i.mu.Lock()
	defer i.mu.Unlock()
	return append([]model.Notification(nil), i.items...)
}

// Unread counts entries not yet read.
func (i *Inbox) Unread() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	n := 0
	for _, item := range i.items {
		if !item.Read {
			n++
		}
	}
	return n
}

// MarkRead marks one entry read and reports whether it exists.
func (i *Inbox) MarkRead(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	for k := range i.items {
		if i.items[k].ID == id {
			i.items[k].Read = true
			return true
		}
	}
	return false
}

// MarkAllRead marks every entry read.
func (i *Inbox) MarkAllRead() {
	i.mu.Lock()
	defer i.mu.Unlock()
	for k := range i.items {
		i.items[k].Read = true
	}
}

// Remove deletes one entry and reports whether it existed.
func (i *Inbox) Remove(id string) bool {
	i.mu.Lock()
	defer i.mu.Unlock()
	for k, item := range i.items {
		if item.ID == id {
			i.items = append(i.items[:k], i.items[k+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the feed.
func (i *Inbox) Clear() {
	i.mu.Lock()
	i.items = nil
	i.mu.Unlock()
}
