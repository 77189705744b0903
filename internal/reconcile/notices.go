package reconcile

import (
	"sync"
	"time"

	"github.com/polkiloo/ordertrack/internal/domain/model"
)

const maxNotices = 50

// Notices holds transient failure messages until the user dismisses them.
type Notices struct {
	mu    sync.Mutex
	seq   int64
	items []model.Notice
	now   func() time.Time
}

// NewNotices constructs an empty notice list.
func NewNotices() *Notices {
	return &Notices{now: time.Now}
}

// Add records a notice and returns it. The oldest notice is dropped once the
// list is full.
func (n *Notices) Add(orderID, message string) model.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.seq++
	notice := model.Notice{ID: n.seq, OrderID: orderID, Message: message, CreatedAt: n.now()}
	n.items = append(n.items, notice)
	if len(n.items) > maxNotices {
		n.items = append([]model.Notice(nil), n.items[len(n.items)-maxNotices:]...)
	}
	return notice
}

// List returns the pending notices, oldest first.
func (n *Notices) List() []model.Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]model.Notice(nil), n.items...)
}

// Dismiss removes a notice and reports whether it existed.
func (n *Notices) Dismiss(id int64) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for i, item := range n.items {
		if item.ID == id {
			n.items = append(n.items[:i], n.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear drops all notices.
func (n *Notices) Clear() {
	n.mu.Lock()
	n.items = nil
	n.mu.Unlock()
}
