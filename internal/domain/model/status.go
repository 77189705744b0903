package model

// Status is a canonical order status name.
type Status string

const (
	StatusPending        Status = "PENDING"
	StatusAccepted       Status = "ACCEPTED"
	StatusPreparing      Status = "PREPARING"
	StatusReadyForPickup Status = "READY_FOR_PICKUP"
	StatusOutForDelivery Status = "OUT_FOR_DELIVERY"
	StatusDelivered      Status = "DELIVERED"
	StatusCancelled      Status = "CANCELLED"
)

// OrdinalUnknown marks a status without a known position in the stage sequence.
const OrdinalUnknown = -1

// Stage is the result of mapping a raw status onto the stage sequence.
type Stage struct {
	Status    Status
	Ordinal   int
	Cancelled bool
}

// Known reports whether the stage has a position in the progress sequence.
func (s Stage) Known() bool {
	return s.Ordinal >= 0
}

// StageFlag is a per-stage rendering hint.
type StageFlag struct {
	Status    Status
	Label     string
	Ordinal   int
	Completed bool
	Current   bool
}
