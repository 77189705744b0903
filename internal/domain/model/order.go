package model

import "time"

// Item is a single order line.
type Item struct {
	Name     string
	Quantity int
	Price    float64
}

// Rider is the display-only reference to the rider that accepted an order.
type Rider struct {
	ID    string
	Name  string
	Phone string
}

// Restaurant carries the display fields of the restaurant an order belongs to.
type Restaurant struct {
	ID          string
	Name        string
	Image       string
	Description string
}

// Order is the canonical in-memory shape of a backend order snapshot.
type Order struct {
	ID              string
	Status          string
	TotalAmount     float64
	Items           []Item
	RiderID         string
	Rider           *Rider
	Restaurant      Restaurant
	Customer        string
	DeliveryAddress string
	CreatedAt       time.Time
}

// HasRider reports whether a rider has accepted the order.
func (o Order) HasRider() bool {
	return o.RiderID != "" || o.Rider != nil
}

// ShortID returns the last six characters of the order id.
func (o Order) ShortID() string {
	return ShortID(o.ID)
}

// ShortID returns the last six characters of id, or id itself when shorter.
func ShortID(id string) string {
	if len(id) > 6 {
		return id[len(id)-6:]
	}
	return id
}

// Clone returns a deep copy so views can hand out snapshots safely.
func (o Order) Clone() Order {
	c := o
	if o.Items != nil {
		c.Items = append([]Item(nil), o.Items...)
	}
	if o.Rider != nil {
		r := *o.Rider
		c.Rider = &r
	}
	return c
}
