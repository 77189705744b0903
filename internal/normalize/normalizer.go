// Package normalize converts heterogeneous backend payloads into canonical orders.
package normalize

import (
	"fmt"
	"log/slog"
	"math"
	"strings"
	"time"

	"github.com/spf13/cast"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
	"github.com/polkiloo/ordertrack/internal/domain/model"
)

// Display fallbacks for optional restaurant fields.
const (
	PlaceholderImage       = "/images/restaurant-placeholder.png"
	PlaceholderDescription = "No description available"
	DefaultStatus          = string(model.StatusPending)
)

// envelopeDepth is how many {status, data: {...}} wrappers are peeled off.
const envelopeDepth = 2

// Normalizer canonicalizes order snapshots. Malformed amounts are logged and
// defaulted to zero instead of failing the whole record.
type Normalizer struct {
	logger *slog.Logger
}

// New constructs Normalizer.
func New(logger *slog.Logger) *Normalizer {
	return &Normalizer{logger: logger}
}

// Order normalizes a single order response. Envelopes of the form
// {data: {order: {...}}} are unwrapped first.
func (n *Normalizer) Order(raw any) (model.Order, error) {
	m, ok := Unwrap(raw).(map[string]any)
	if !ok {
		return model.Order{}, fmt.Errorf("order payload is %T: %w", raw, domainErrors.ErrMissingID)
	}
	if inner, ok := m["order"].(map[string]any); ok {
		m = inner
	}
	return n.order(m)
}

// Orders normalizes a list response. Accepted shapes are a bare array,
// {orders: [...]} and either of those inside up to two data envelopes.
// Records that cannot be normalized are skipped and logged.
func (n *Normalizer) Orders(raw any) []model.Order {
	list := ordersList(Unwrap(raw))
	result := make([]model.Order, 0, len(list))
	for _, item := range list {
		m, ok := item.(map[string]any)
		if !ok {
			n.logger.Warn("skip non-object order entry", slog.String("type", fmt.Sprintf("%T", item)))
			continue
		}
		order, err := n.order(m)
		if err != nil {
			n.logger.Warn("skip malformed order", slog.String("error", err.Error()))
			continue
		}
		result = append(result, order)
	}
	return result
}

// Unwrap peels off up to two levels of data envelopes.
func Unwrap(raw any) any {
	for i := 0; i < envelopeDepth; i++ {
		m, ok := raw.(map[string]any)
		if !ok {
			break
		}
		inner, ok := m["data"]
		if !ok || inner == nil {
			break
		}
		raw = inner
	}
	return raw
}

func ordersList(raw any) []any {
	switch v := raw.(type) {
	case []any:
		return v
	case map[string]any:
		if list, ok := v["orders"].([]any); ok {
			return list
		}
	}
	return nil
}

func (n *Normalizer) order(m map[string]any) (model.Order, error) {
	id := firstString(m, "id", "_id")
	if id == "" {
		return model.Order{}, domainErrors.ErrMissingID
	}

	order := model.Order{
		ID:              id,
		Status:          firstString(m, "status"),
		Customer:        customer(m),
		DeliveryAddress: address(m["deliveryAddress"]),
		Restaurant:      restaurant(m),
		CreatedAt:       timestamp(m["createdAt"]),
	}
	if order.Status == "" {
		order.Status = DefaultStatus
	}

	order.TotalAmount = n.amount(id, "totalAmount", first(m, "totalAmount", "total"))

	items, err := n.items(id, m["items"])
	if err != nil {
		return model.Order{}, fmt.Errorf("order %s: %w", id, err)
	}
	order.Items = items

	order.RiderID, order.Rider = rider(m)
	return order, nil
}

func (n *Normalizer) items(orderID string, raw any) ([]model.Item, error) {
	if raw == nil {
		return nil, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return nil, fmt.Errorf("items is %T: %w", raw, domainErrors.ErrMissingItemField)
	}
	items := make([]model.Item, 0, len(list))
	for i, entry := range list {
		m, ok := entry.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("item %d: %w", i, domainErrors.ErrMissingItemField)
		}
		menu, _ := m["menuItem"].(map[string]any)

		name := firstString(m, "name")
		if name == "" && menu != nil {
			name = firstString(menu, "name")
		}
		if name == "" {
			return nil, fmt.Errorf("item %d name: %w", i, domainErrors.ErrMissingItemField)
		}

		quantity := 1
		if q, ok := m["quantity"]; ok && q != nil {
			v, err := cast.ToIntE(stringify(q))
			if err != nil || v < 1 {
				return nil, fmt.Errorf("item %d quantity %v: %w", i, q, domainErrors.ErrMissingItemField)
			}
			quantity = v
		}

		price := m["price"]
		if price == nil && menu != nil {
			price = menu["price"]
		}

		items = append(items, model.Item{
			Name:     name,
			Quantity: quantity,
			Price:    n.amount(orderID, fmt.Sprintf("items[%d].price", i), price),
		})
	}
	return items, nil
}

func (n *Normalizer) amount(orderID, field string, v any) float64 {
	amount, err := Amount(v)
	if err != nil {
		n.logger.Warn("malformed amount defaulted to zero",
			slog.String("order", orderID),
			slog.String("field", field),
			slog.String("error", err.Error()),
		)
		return 0
	}
	return amount
}

// Amount coerces a string or numeric monetary value. Absent and blank values
// are zero; anything else that is not a finite non-negative number fails with
// a MalformedAmountError.
func Amount(v any) (float64, error) {
	if v == nil {
		return 0, nil
	}
	if _, ok := v.(bool); ok {
		return 0, &domainErrors.MalformedAmountError{Field: "amount", Value: v}
	}
	s := stringify(v)
	if str, ok := s.(string); ok {
		str = strings.TrimSpace(str)
		if str == "" {
			return 0, nil
		}
		s = str
	}
	f, err := cast.ToFloat64E(s)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) || f < 0 {
		return 0, &domainErrors.MalformedAmountError{Field: "amount", Value: v}
	}
	return f, nil
}

// stringify turns json.Number-like values into their string form.
func stringify(v any) any {
	if num, ok := v.(interface{ Float64() (float64, error) }); ok {
		if s, ok := num.(fmt.Stringer); ok {
			return s.String()
		}
	}
	return v
}

func first(m map[string]any, keys ...string) any {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v
		}
	}
	return nil
}

func firstString(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := String(m[k]); s != "" {
			return s
		}
	}
	return ""
}

// String coerces scalar ids and names to trimmed strings; maps and slices yield "".
func String(v any) string {
	switch t := v.(type) {
	case nil, map[string]any, []any:
		return ""
	case string:
		return strings.TrimSpace(t)
	}
	s, err := cast.ToStringE(stringify(v))
	if err != nil {
		return ""
	}
	return strings.TrimSpace(s)
}

func rider(m map[string]any) (string, *model.Rider) {
	var r *model.Rider
	id := ""
	for _, key := range []string{"riderId", "rider"} {
		switch v := m[key].(type) {
		case map[string]any:
			if r == nil {
				r = &model.Rider{
					ID:    firstString(v, "id", "_id"),
					Name:  firstString(v, "name"),
					Phone: firstString(v, "phone"),
				}
			}
			if id == "" {
				id = r.ID
			}
		default:
			if id == "" {
				id = String(v)
			}
		}
	}
	return id, r
}

func restaurant(m map[string]any) model.Restaurant {
	r := model.Restaurant{Name: firstString(m, "restaurantName")}
	for _, key := range []string{"restaurant", "restaurantId"} {
		switch v := m[key].(type) {
		case map[string]any:
			r.ID = firstString(v, "id", "_id")
			if name := firstString(v, "name"); name != "" {
				r.Name = name
			}
			r.Image = firstString(v, "image", "imageUrl")
			r.Description = firstString(v, "description", "cuisine")
		default:
			if r.ID == "" {
				r.ID = String(v)
			}
		}
		if r.ID != "" {
			break
		}
	}
	if r.Image == "" {
		r.Image = PlaceholderImage
	}
	if r.Description == "" {
		r.Description = PlaceholderDescription
	}
	return r
}

func customer(m map[string]any) string {
	if name := firstString(m, "customerName"); name != "" {
		return name
	}
	for _, key := range []string{"customer", "user", "userId"} {
		switch v := m[key].(type) {
		case map[string]any:
			if s := firstString(v, "name", "email"); s != "" {
				return s
			}
		default:
			if s := String(v); s != "" {
				return s
			}
		}
	}
	return ""
}

func address(v any) string {
	switch a := v.(type) {
	case map[string]any:
		parts := make([]string, 0, 4)
		for _, key := range []string{"street", "city", "state", "zipCode", "pincode"} {
			if s := String(a[key]); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return String(v)
	}
}

func timestamp(v any) time.Time {
	s, ok := v.(string)
	if !ok {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}
	}
	return t
}
