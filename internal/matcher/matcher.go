// Package matcher decides whether an inbound event concerns a tracked order.
//
// Matching is heuristic. A missed event only leaves a view stale until the
// next event, poll or manual refresh, and a spurious match only costs an
// idempotent re-fetch, so the rules favour recall over precision.
package matcher

import (
	"regexp"
	"strings"

	"github.com/polkiloo/ordertrack/internal/normalize"
)

const shortLen = 6

var textID = regexp.MustCompile(`(?i)\border\s*#?\s*([0-9a-f]{6,})\b`)

// ID is an identifier prepared for loose comparison.
type ID struct {
	Raw   string
	Full  string
	Short string
}

// Normalize lowercases and trims id and derives its short form.
func Normalize(id string) ID {
	full := strings.ToLower(strings.TrimSpace(id))
	short := full
	if len(full) > shortLen {
		short = full[len(full)-shortLen:]
	}
	return ID{Raw: id, Full: full, Short: short}
}

// Same compares two ids by full form, short form or raw equality.
func Same(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if a == b {
		return true
	}
	na, nb := Normalize(a), Normalize(b)
	if na.Full == "" || nb.Full == "" {
		return false
	}
	return na.Full == nb.Full || na.Short == nb.Short
}

// Candidate carries what an event offers for matching.
type Candidate struct {
	ID      string
	Message string
}

// Relevant reports whether the candidate concerns the tracked order. A
// structured id is authoritative; free text is consulted only without one.
func Relevant(tracked string, c Candidate) bool {
	if strings.TrimSpace(tracked) == "" {
		return false
	}
	if c.ID != "" {
		return Same(tracked, c.ID)
	}
	fromText := FromText(c.Message)
	if fromText == "" {
		return false
	}
	if Same(tracked, fromText) {
		return true
	}
	t, f := Normalize(tracked), Normalize(fromText)
	return strings.Contains(t.Full, f.Short) || strings.Contains(f.Full, t.Short)
}

// FromText extracts the first "order #<hex>" reference from a message.
func FromText(msg string) string {
	m := textID.FindStringSubmatch(msg)
	if len(m) < 2 {
		return ""
	}
	return strings.ToLower(m[1])
}

// CandidateID extracts an order id from a payload trying, in order, an
// explicit order-id field, the payload's own id or _id (a bare order) and a
// nested order object.
func CandidateID(payload map[string]any) string {
	if id := explicitID(payload); id != "" {
		return id
	}
	for _, key := range []string{"id", "_id"} {
		if id := normalize.String(payload[key]); id != "" {
			return id
		}
	}
	return nestedID(payload)
}

// ReferencedID is CandidateID without the top-level id field, for payloads
// whose own id names something other than the order (notifications).
func ReferencedID(payload map[string]any) string {
	if id := explicitID(payload); id != "" {
		return id
	}
	return nestedID(payload)
}

func explicitID(payload map[string]any) string {
	for _, key := range []string{"orderId", "order_id"} {
		if id := normalize.String(payload[key]); id != "" {
			return id
		}
	}
	return ""
}

func nestedID(payload map[string]any) string {
	order, ok := payload["order"].(map[string]any)
	if !ok {
		return ""
	}
	for _, key := range []string{"id", "_id"} {
		if id := normalize.String(order[key]); id != "" {
			return id
		}
	}
	return ""
}
