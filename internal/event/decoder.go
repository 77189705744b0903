package event

import (
	"bytes"
	"fmt"

	"github.com/goccy/go-json"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
	"github.com/polkiloo/ordertrack/internal/matcher"
	"github.com/polkiloo/ordertrack/internal/normalize"
)

type decodeFunc func(kind Kind, payload map[string]any) Event

// Decoder maps event names to their payload decoders.
type Decoder struct {
	normalizer *normalize.Normalizer
	decoders   map[Kind]decodeFunc
}

// NewDecoder constructs Decoder with the built-in event table.
func NewDecoder(normalizer *normalize.Normalizer) *Decoder {
	d := &Decoder{normalizer: normalizer}
	d.decoders = map[Kind]decodeFunc{
		KindOrderUpdate:         d.statusChange,
		KindStatusUpdate:        d.statusChange,
		KindOrderAssigned:       d.assignment,
		KindRiderAssigned:       d.assignment,
		KindRiderUpdate:         d.riderUpdate,
		KindNewOrderReady:       d.readyForPickup,
		KindOrderReadyForPickup: d.readyForPickup,
		KindNewOrder:            d.newOrder,
		KindNotification:        d.notification,
	}
	return d
}

// Decode parses a JSON payload for the named event.
func (d *Decoder) Decode(name string, payload []byte) (Event, error) {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var m map[string]any
	if err := dec.Decode(&m); err != nil {
		return Event{}, fmt.Errorf("decode %s payload: %w", name, err)
	}
	return d.DecodeMap(name, m)
}

// DecodeMap decodes an already parsed payload.
func (d *Decoder) DecodeMap(name string, payload map[string]any) (Event, error) {
	kind := Kind(name)
	fn, ok := d.decoders[kind]
	if !ok {
		return Event{}, fmt.Errorf("%q: %w", name, domainErrors.ErrUnknownEvent)
	}
	if payload == nil {
		payload = map[string]any{}
	}
	return fn(kind, payload), nil
}

func (d *Decoder) statusChange(kind Kind, p map[string]any) Event {
	order, _ := p["order"].(map[string]any)
	e := Event{
		Kind:    kind,
		OrderID: matcher.CandidateID(p),
		Status:  pick(p, order, "status"),
		Message: normalize.String(p["message"]),
		RiderID: riderID(p, order),
	}
	e.Rider = e.RiderID != "" || p["rider"] != nil || (order != nil && order["rider"] != nil)
	e.Snapshot = d.snapshot(order)
	return e
}

func (d *Decoder) assignment(kind Kind, p map[string]any) Event {
	order, _ := p["order"].(map[string]any)
	return Event{
		Kind:     kind,
		OrderID:  matcher.CandidateID(p),
		Status:   pick(p, order, "status"),
		RiderID:  riderID(p, order),
		Rider:    true,
		Message:  normalize.String(p["message"]),
		Snapshot: d.snapshot(order),
	}
}

func (d *Decoder) riderUpdate(kind Kind, p map[string]any) Event {
	order, _ := p["order"].(map[string]any)
	return Event{
		Kind:    kind,
		OrderID: matcher.ReferencedID(p),
		Status:  pick(p, order, "status"),
		RiderID: riderID(p, order),
		Message: normalize.String(p["message"]),
	}
}

func (d *Decoder) readyForPickup(kind Kind, p map[string]any) Event {
	order, _ := p["order"].(map[string]any)
	e := Event{
		Kind:     kind,
		OrderID:  matcher.CandidateID(p),
		Status:   pick(p, order, "status"),
		RiderID:  riderID(p, order),
		Message:  normalize.String(p["message"]),
		Snapshot: d.snapshot(order),
	}
	if e.Status == "" {
		e.Status = string(model.StatusReadyForPickup)
	}
	e.Rider = e.RiderID != ""
	return e
}

func (d *Decoder) newOrder(kind Kind, p map[string]any) Event {
	order, _ := p["order"].(map[string]any)
	return Event{
		Kind:     kind,
		OrderID:  matcher.CandidateID(p),
		Status:   pick(p, order, "status"),
		Message:  normalize.String(p["message"]),
		Snapshot: d.snapshot(order),
	}
}

func (d *Decoder) notification(kind Kind, p map[string]any) Event {
	id := normalize.String(p["_id"])
	if id == "" {
		id = normalize.String(p["id"])
	}
	return Event{
		Kind:           kind,
		NotificationID: id,
		OrderID:        matcher.ReferencedID(p),
		Status:         normalize.String(p["status"]),
		Message:        normalize.String(p["message"]),
	}
}

func (d *Decoder) snapshot(order map[string]any) *model.Order {
	if order == nil {
		return nil
	}
	o, err := d.normalizer.Order(order)
	if err != nil {
		return nil
	}
	return &o
}

func pick(p, order map[string]any, key string) string {
	if v := normalize.String(p[key]); v != "" {
		return v
	}
	if order != nil {
		return normalize.String(order[key])
	}
	return ""
}

func riderID(p, order map[string]any) string {
	for _, src := range []map[string]any{p, order} {
		if src == nil {
			continue
		}
		if id := normalize.String(src["riderId"]); id != "" {
			return id
		}
		switch r := src["rider"].(type) {
		case map[string]any:
			for _, key := range []string{"id", "_id"} {
				if id := normalize.String(r[key]); id != "" {
					return id
				}
			}
		default:
			if id := normalize.String(r); id != "" {
				return id
			}
		}
		if r, ok := src["riderId"].(map[string]any); ok {
			for _, key := range []string{"id", "_id"} {
				if id := normalize.String(r[key]); id != "" {
					return id
				}
			}
		}
	}
	return ""
}
