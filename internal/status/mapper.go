// Package status maps raw backend status strings onto the canonical stage sequence.
package status

import (
	"strings"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
)

type stageDef struct {
	status model.Status
	label  string
}

// sequence is ordered by ordinal.
var sequence = []stageDef{
	{model.StatusPending, "Order Placed"},
	{model.StatusAccepted, "Accepted"},
	{model.StatusPreparing, "Preparing"},
	{model.StatusReadyForPickup, "Ready for Pickup"},
	{model.StatusOutForDelivery, "Out for Delivery"},
	{model.StatusDelivered, "Delivered"},
}

var synonyms = map[string]model.Status{
	"pending":          model.StatusPending,
	"placed":           model.StatusPending,
	"accepted":         model.StatusAccepted,
	"confirmed":        model.StatusAccepted,
	"preparing":        model.StatusPreparing,
	"ready_for_pickup": model.StatusReadyForPickup,
	"ready":            model.StatusReadyForPickup,
	"out_for_delivery": model.StatusOutForDelivery,
	"picked_up":        model.StatusOutForDelivery,
	"delivered":        model.StatusDelivered,
	"cancelled":        model.StatusCancelled,
	"canceled":         model.StatusCancelled,
}

var ordinals = func() map[model.Status]int {
	m := make(map[model.Status]int, len(sequence))
	for i, s := range sequence {
		m[s.status] = i
	}
	return m
}()

// Normalize lowercases raw, trims it and turns '-' and inner spaces into '_'.
func Normalize(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = strings.ReplaceAll(s, "-", "_")
	return strings.Join(strings.Fields(s), "_")
}

// Lookup maps raw onto a stage and fails with ErrUnknownStatus for unmapped terms.
func Lookup(raw string) (model.Stage, error) {
	canonical, ok := synonyms[Normalize(raw)]
	if !ok {
		return model.Stage{Ordinal: model.OrdinalUnknown}, domainErrors.ErrUnknownStatus
	}
	if canonical == model.StatusCancelled {
		return model.Stage{Status: canonical, Ordinal: model.OrdinalUnknown, Cancelled: true}, nil
	}
	return model.Stage{Status: canonical, Ordinal: ordinals[canonical]}, nil
}

// Map is Lookup with unknown statuses degraded to "no progress known".
func Map(raw string) model.Stage {
	stage, _ := Lookup(raw)
	return stage
}

// Canonical returns the canonical status name, or the trimmed raw value when unknown.
func Canonical(raw string) string {
	if stage, err := Lookup(raw); err == nil {
		return string(stage.Status)
	}
	return strings.TrimSpace(raw)
}

// Label returns the display label of raw. Cancelled orders read "Cancelled";
// unknown statuses are shown as received.
func Label(raw string) string {
	stage, err := Lookup(raw)
	switch {
	case err != nil:
		return strings.TrimSpace(raw)
	case stage.Cancelled:
		return "Cancelled"
	}
	return sequence[stage.Ordinal].label
}

// Flags derives completed/current rendering flags for every stage.
// Cancelled and unknown statuses mark nothing.
func Flags(raw string) []model.StageFlag {
	current := Map(raw).Ordinal
	flags := make([]model.StageFlag, len(sequence))
	for i, s := range sequence {
		flags[i] = model.StageFlag{
			Status:    s.status,
			Label:     s.label,
			Ordinal:   i,
			Completed: current >= 0 && i <= current,
			Current:   current >= 0 && i == current,
		}
	}
	return flags
}

// CanAdvance reports whether moving from one raw status to another keeps the
// lifecycle monotonic. CANCELLED is reachable from any non-terminal state and
// absorbs everything after it.
func CanAdvance(from, to string) bool {
	next, err := Lookup(to)
	if err != nil {
		return false
	}
	prev, err := Lookup(from)
	if err != nil {
		return true
	}
	if prev.Cancelled {
		return next.Cancelled
	}
	if next.Cancelled {
		return prev.Status != model.StatusDelivered
	}
	return next.Ordinal >= prev.Ordinal
}

// Terminal reports whether no further transition is expected.
func Terminal(raw string) bool {
	stage := Map(raw)
	return stage.Cancelled || stage.Status == model.StatusDelivered
}
