package model

import "time"

// Notification is an entry of the user's notification feed.
type Notification struct {
	ID        string
	Type      string
	Message   string
	OrderID   string
	Status    string
	Read      bool
	CreatedAt time.Time
}

// Notice is a transient, dismissible message surfaced after a non-fatal failure.
type Notice struct {
	ID        int64
	OrderID   string
	Message   string
	CreatedAt time.Time
}

// Prompt asks the rider to accept or decline an order ready for pickup.
type Prompt struct {
	Order     Order
	CreatedAt time.Time
}
