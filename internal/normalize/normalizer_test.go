package normalize

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	domainErrors "github.com/polkiloo/ordertrack/internal/domain/errors"
)

func newNormalizer() *Normalizer {
	return New(slog.New(slog.NewJSONHandler(io.Discard, nil)))
}

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		t.Fatalf("bad fixture: %v", err)
	}
	return v
}

func TestAmount(t *testing.T) {
	cases := []struct {
		name    string
		value   any
		want    float64
		wantErr bool
	}{
		{name: "string", value: "12.50", want: 12.50},
		{name: "number", value: 23.0, want: 23},
		{name: "int", value: 7, want: 7},
		{name: "json number", value: json.Number("4.25"), want: 4.25},
		{name: "absent", value: nil, want: 0},
		{name: "blank", value: "  ", want: 0},
		{name: "garbage", value: "abc", wantErr: true},
		{name: "negative", value: "-1", wantErr: true},
		{name: "nan", value: "NaN", wantErr: true},
		{name: "bool", value: true, wantErr: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Amount(tc.value)
			if tc.wantErr {
				if !errors.Is(err, domainErrors.ErrMalformedAmount) {
					t.Fatalf("expected ErrMalformedAmount, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestOrderCanonicalShape(t *testing.T) {
	raw := decode(t, `{
		"status": "success",
		"data": {"order": {
			"_id": "65f1c0ffee0000abcdef12",
			"status": "PENDING",
			"totalAmount": "23.00",
			"items": [
				{"name": "Margherita", "quantity": 2, "price": "9.50"},
				{"menuItem": {"name": "Cola", "price": 4}, "quantity": "1"}
			],
			"restaurant": {"_id": "r1", "name": "Luigi's"},
			"user": {"name": "Ann"},
			"deliveryAddress": {"street": "1 Main St", "city": "Pune"},
			"createdAt": "2024-03-01T10:00:00Z"
		}}
	}`)

	order, err := newNormalizer().Order(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "65f1c0ffee0000abcdef12" {
		t.Fatalf("unexpected id %q", order.ID)
	}
	if order.Status != "PENDING" || order.TotalAmount != 23.00 {
		t.Fatalf("unexpected status/amount: %q %v", order.Status, order.TotalAmount)
	}
	if len(order.Items) != 2 || order.Items[0].Price != 9.50 || order.Items[1].Name != "Cola" || order.Items[1].Price != 4 {
		t.Fatalf("unexpected items: %+v", order.Items)
	}
	if order.Restaurant.Name != "Luigi's" || order.Restaurant.Image != PlaceholderImage || order.Restaurant.Description != PlaceholderDescription {
		t.Fatalf("unexpected restaurant: %+v", order.Restaurant)
	}
	if order.Customer != "Ann" || order.DeliveryAddress != "1 Main St, Pune" {
		t.Fatalf("unexpected display fields: %q %q", order.Customer, order.DeliveryAddress)
	}
	if !order.CreatedAt.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected createdAt %v", order.CreatedAt)
	}
	if order.HasRider() {
		t.Fatal("did not expect rider")
	}
}

func TestOrderPrefersIDOverUnderscoreID(t *testing.T) {
	order, err := newNormalizer().Order(map[string]any{"id": "first", "_id": "second"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if order.ID != "first" {
		t.Fatalf("expected id field to win, got %q", order.ID)
	}
	if order.Status != DefaultStatus || order.TotalAmount != 0 {
		t.Fatalf("unexpected defaults: %+v", order)
	}
}

func TestOrderFailures(t *testing.T) {
	cases := []struct {
		name string
		raw  any
		want error
	}{
		{name: "not an object", raw: "oops", want: domainErrors.ErrMissingID},
		{name: "missing id", raw: map[string]any{"status": "PENDING"}, want: domainErrors.ErrMissingID},
		{name: "item without name", raw: map[string]any{"id": "1", "items": []any{map[string]any{"price": 1}}}, want: domainErrors.ErrMissingItemField},
		{name: "item zero quantity", raw: map[string]any{"id": "1", "items": []any{map[string]any{"name": "x", "quantity": 0}}}, want: domainErrors.ErrMissingItemField},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := newNormalizer().Order(tc.raw); !errors.Is(err, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestOrderMalformedAmountDefaultsToZero(t *testing.T) {
	order, err := newNormalizer().Order(map[string]any{"id": "1", "totalAmount": "twelve"})
	if err != nil {
		t.Fatalf("malformed amount must not fail the record: %v", err)
	}
	if order.TotalAmount != 0 {
		t.Fatalf("expected 0, got %v", order.TotalAmount)
	}
}

func TestOrderRiderReferences(t *testing.T) {
	n := newNormalizer()

	order, _ := n.Order(map[string]any{"id": "1", "riderId": "rider-7"})
	if order.RiderID != "rider-7" || order.Rider != nil {
		t.Fatalf("unexpected rider fields: %+v", order)
	}

	order, _ = n.Order(map[string]any{"id": "1", "rider": map[string]any{"_id": "r9", "name": "Sam", "phone": "555"}})
	if order.RiderID != "r9" || order.Rider == nil || order.Rider.Phone != "555" {
		t.Fatalf("unexpected rider fields: %+v", order)
	}
}

func TestOrders(t *testing.T) {
	n := newNormalizer()
	shapes := map[string]string{
		"bare array":      `[{"id":"a"},{"id":"b"}]`,
		"orders field":    `{"orders":[{"id":"a"},{"id":"b"}]}`,
		"double envelope": `{"status":"success","data":{"data":{"orders":[{"id":"a"},{"id":"b"}]}}}`,
		"skips bad":       `{"data":[{"id":"a"},{"status":"x"},"junk",{"_id":"b"}]}`,
	}
	for name, raw := range shapes {
		t.Run(name, func(t *testing.T) {
			orders := n.Orders(decode(t, raw))
			if len(orders) != 2 || orders[0].ID != "a" || orders[1].ID != "b" {
				t.Fatalf("unexpected orders: %+v", orders)
			}
		})
	}

	if got := n.Orders(decode(t, `{"message":"nothing"}`)); len(got) != 0 {
		t.Fatalf("expected empty list, got %+v", got)
	}
}

func TestString(t *testing.T) {
	if String(json.Number("42")) != "42" {
		t.Fatal("expected json number to stringify")
	}
	if String(map[string]any{"id": "x"}) != "" {
		t.Fatal("expected objects to yield empty string")
	}
	if String(" a ") != "a" {
		t.Fatal("expected trimming")
	}
}
