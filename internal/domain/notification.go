package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// Destination is the broker topic a message is published to.
// The notification event kind is carried only here, never in the payload.
type Destination string

const (
	DestinationTest    Destination = "notification.test"
	DestinationCreated Destination = "notification.created"
	DestinationUpdated Destination = "notification.updated"
	DestinationDeleted Destination = "notification.deleted"
)

// Destinations lists every label the gateway publishes to.
var Destinations = []Destination{
	DestinationTest,
	DestinationCreated,
	DestinationUpdated,
	DestinationDeleted,
}

func (d Destination) IsValid() bool {
	switch d {
	case DestinationTest, DestinationCreated, DestinationUpdated, DestinationDeleted:
		return true
	}
	return false
}

// NotificationID is an opaque notification identifier: either an integer
// or a UUID. The zero value means "absent".
type NotificationID string

// ParseNotificationID validates an identifier taken from a URL path.
// Integers are stored in canonical form, so "007" and "+5" become "7"
// and "5".
func ParseNotificationID(s string) (NotificationID, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ErrInvalidID
	}
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return NotificationID(strconv.FormatInt(n, 10)), nil
	}
	if _, err := uuid.Parse(s); err == nil {
		return NotificationID(s), nil
	}
	return "", ErrInvalidID
}

// String renders the identifier for response bodies. An absent identifier
// renders as "null".
func (id NotificationID) String() string {
	if id == "" {
		return "null"
	}
	return string(id)
}

// MarshalJSON writes numeric identifiers as JSON numbers and everything
// else as JSON strings, so the broker sees the same type the caller sent.
func (id NotificationID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if n, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return strconv.AppendInt(nil, n, 10), nil
	}
	return json.Marshal(string(id))
}

func (id *NotificationID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*id = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = NotificationID(s)
		return nil
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("notification id: %w", err)
		}
		*id = NotificationID(n.String())
		return nil
	}
}

// NotificationEvent is a notification lifecycle event as received from the
// caller. The body is kept verbatim and forwarded unchanged; only the
// identifier is extracted.
type NotificationEvent struct {
	ID  NotificationID
	raw json.RawMessage
}

// NewNotificationEvent builds an event from an identifier and free-form fields.
func NewNotificationEvent(id NotificationID, fields map[string]any) (NotificationEvent, error) {
	body := make(map[string]any, len(fields)+1)
	for k, v := range fields {
		body[k] = v
	}
	body["id"] = id
	raw, err := json.Marshal(body)
	if err != nil {
		return NotificationEvent{}, err
	}
	return NotificationEvent{ID: id, raw: raw}, nil
}

func (e *NotificationEvent) UnmarshalJSON(data []byte) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	if fields == nil {
		return fmt.Errorf("notification event must be a JSON object")
	}
	var id NotificationID
	if v, ok := fields["id"]; ok {
		if err := id.UnmarshalJSON(v); err != nil {
			return err
		}
	}
	e.ID = id
	e.raw = append(json.RawMessage(nil), data...)
	return nil
}

func (e NotificationEvent) MarshalJSON() ([]byte, error) {
	if len(e.raw) == 0 {
		return json.Marshal(map[string]NotificationID{"id": e.ID})
	}
	return e.raw, nil
}
