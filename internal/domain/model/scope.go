package model

// Scope selects which order list the backend returns.
type Scope string

const (
	// ScopeMine lists the orders of the signed-in customer or restaurant.
	ScopeMine Scope = "mine"
	// ScopeRider lists orders assigned to the signed-in rider.
	ScopeRider Scope = "rider"
	// ScopeAdmin lists every order.
	ScopeAdmin Scope = "admin"
	// ScopeAvailable lists unassigned orders ready for pickup.
	ScopeAvailable Scope = "available"
)

// ParseScope maps a query value onto a Scope; empty selects ScopeMine.
func ParseScope(raw string) (Scope, bool) {
	switch s := Scope(raw); s {
	case "":
		return ScopeMine, true
	case ScopeMine, ScopeRider, ScopeAdmin, ScopeAvailable:
		return s, true
	}
	return "", false
}
