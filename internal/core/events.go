package core

import "time"

// Event actions.
const (
	ActionGranted = "delegation.granted"
	ActionRevoked = "delegation.revoked"
)

// Event is a notification about a registry state change. Events are
// published synchronously after the change has been applied.
type Event struct {
	// Action is one of ActionGranted, ActionRevoked.
	Action string `json:"action"`

	// Key identifies the affected delegation.
	Key DelegationKey `json:"key"`

	// ExpiresAt is set for ActionGranted only.
	ExpiresAt time.Time `json:"expires_at,omitzero"`

	// Time is when the change was applied (registry clock).
	Time time.Time `json:"time"`

	// CorrelationID ties the event to the originating request.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// EventSink receives registry events. Sinks must not block; slow
// consumers should buffer internally.
type EventSink interface {
	Publish(event Event)
}

// EventSinkFunc adapts a function to an EventSink.
type EventSinkFunc func(event Event)

func (f EventSinkFunc) Publish(event Event) {
	f(event)
}
