package model

// ListEntry is an order as shown in a list view. Optimistic entries carry a
// local patch that the next fetch will confirm or replace.
type ListEntry struct {
	Order      Order
	Optimistic bool
}

// OrderDetail is an order together with its stage progress.
type OrderDetail struct {
	Order  Order
	Stages []StageFlag
}
