// Package push provides push-event channel drivers. Every driver delivers raw
// named events; decoding them is left to the event package.
package push

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-json"
)

const bufferSize = 64

// Message is one event received from the channel.
type Message struct {
	Name    string
	Payload []byte
}

// Channel is a push-event connection. Messages is closed once the
// connection ends; a later Connect opens a new one.
type Channel interface {
	Connect(ctx context.Context) error
	Messages() <-chan Message
	Close() error
}

type envelope struct {
	Event   string          `json:"event"`
	Type    string          `json:"type"`
	Data    json.RawMessage `json:"data"`
	Payload json.RawMessage `json:"payload"`
}

// ParseEnvelope extracts the event name and payload from body. Bodies of the
// form {"event": name, "data": {...}} carry their own name; anything else is
// taken as the payload of the fallback name (routing key or channel suffix).
func ParseEnvelope(body []byte, fallback string) (Message, error) {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return Message{}, fmt.Errorf("parse event envelope: %w", err)
	}

	data := env.Data
	if len(data) == 0 {
		data = env.Payload
	}
	name := env.Event
	if name == "" && len(data) > 0 {
		name = env.Type
	}
	if name == "" || len(data) == 0 {
		name, data = fallback, body
	}
	if name == "" {
		return Message{}, fmt.Errorf("event without name")
	}
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		data = []byte("{}")
	}
	return Message{Name: name, Payload: data}, nil
}
