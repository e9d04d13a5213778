package domain

import "time"

// Outcome is the result of a single publish attempt.
type Outcome string

const (
	OutcomeQueued Outcome = "queued"
	OutcomeFailed Outcome = "failed"
)

func (o Outcome) IsValid() bool {
	return o == OutcomeQueued || o == OutcomeFailed
}

// Dispatch is a ledger entry for one publish attempt. It holds metadata
// only; the payload itself is never stored.
type Dispatch struct {
	ID             string      `json:"id"`
	Destination    Destination `json:"destination"`
	MessageKey     *string     `json:"messageKey,omitempty"`
	NotificationID *string     `json:"notificationId,omitempty"`
	Outcome        Outcome     `json:"outcome"`
	ErrorMessage   *string     `json:"error,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// DispatchFilter holds query parameters for paginated ledger listing.
type DispatchFilter struct {
	Destination *Destination
	Outcome     *Outcome
	Page        int
	Limit       int
}

// Receipt is what the gateway hands back after a successful publish.
type Receipt struct {
	Destination    Destination
	MessageKey     string
	Payload        string
	NotificationID NotificationID
}

// StreamEvent is pushed to attached server-push listeners after each
// successful dispatch.
type StreamEvent struct {
	Destination    Destination `json:"destination"`
	MessageKey     string      `json:"messageKey"`
	NotificationID string      `json:"notificationId,omitempty"`
	Timestamp      int64       `json:"timestamp"`
}

// StatusSnapshot is the static status report of the gateway.
type StatusSnapshot struct {
	Service             string `json:"service"`
	KafkaUtilityEnabled bool   `json:"kafkaUtilityEnabled"`
	SSEClientsCount     int    `json:"sseClientsCount"`
	Timestamp           int64  `json:"timestamp"`
}
