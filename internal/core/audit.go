package core

import "time"

type AuditEntry struct {
	// ID is the unique request ID (X-Correlation-ID)
	ID string `json:"id"`

	// Time is the timestamp of the event
	Time time.Time `json:"time"`

	// Action describing what happened (e.g. "delegation.grant", "delegation.revoke")
	Action string `json:"action"`

	// RequestingIdentity is who made the request (as asserted by the hosting layer).
	RequestingIdentity Identity `json:"requesting_identity,omitempty"`

	// Key identifies the delegation the request targeted.
	Key DelegationKey `json:"key"`

	// DurationUnits is the requested duration (grant only).
	DurationUnits int `json:"duration_units,omitempty"`

	// ExpiresAt is the resulting expiry (successful grant only).
	ExpiresAt time.Time `json:"expires_at,omitzero"`

	// GuardName is the guard rule that denied the grant, if any.
	GuardName string `json:"guard_name,omitempty"`

	Granted    bool   `json:"granted"`
	Error      string `json:"error,omitempty"`
	Stacktrace string `json:"stacktrace,omitempty"`
}

type Auditor interface {
	Log(entry AuditEntry) error
	Close() error
}
