// Package event decodes push-channel payloads into a tagged union. Every event
// name has its own decoder that extracts only what reconciliation needs.
package event

import (
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/matcher"
)

// Kind is the push-channel event name.
type Kind string

const (
	KindOrderUpdate         Kind = "order_update"
	KindStatusUpdate        Kind = "status_update"
	KindOrderAssigned       Kind = "order_assigned"
	KindRiderAssigned       Kind = "rider_assigned"
	KindRiderUpdate         Kind = "rider_update"
	KindNewOrderReady       Kind = "new_order_ready"
	KindOrderReadyForPickup Kind = "order_ready_for_pickup"
	KindNewOrder            Kind = "new_order"
	KindNotification        Kind = "notification"
)

// Event is a decoded push event.
type Event struct {
	Kind           Kind
	OrderID        string
	Status         string
	RiderID        string
	Rider          bool
	Message        string
	NotificationID string
	// Snapshot is set when the payload embeds a complete order object.
	Snapshot *model.Order
}

// Candidate exposes the event for relevance matching.
func (e Event) Candidate() matcher.Candidate {
	return matcher.Candidate{ID: e.OrderID, Message: e.Message}
}

// Assignment reports whether the event announces a rider taking an order.
func (e Event) Assignment() bool {
	return e.Kind == KindOrderAssigned || e.Kind == KindRiderAssigned
}

// Patch reports whether the event carries enough to update a list entry in place.
func (e Event) Patch() bool {
	if e.OrderID == "" || e.Assignment() {
		return false
	}
	switch e.Kind {
	case KindOrderUpdate, KindStatusUpdate:
		return e.Status != "" || e.Rider
	}
	return false
}

// ReadyForPickup reports whether the event announces an order waiting for a rider.
func (e Event) ReadyForPickup() bool {
	return e.Kind == KindNewOrderReady || e.Kind == KindOrderReadyForPickup
}
