package core

import "time"

// Identity is an opaque principal or scope identifier.
// The registry never interprets identities, it only compares them.
type Identity string

// IsZero reports whether the identity is unset.
func (i Identity) IsZero() bool {
	return i == ""
}

// DelegationKey is the composite identity of a delegation:
// who delegates (Owner), to whom (Delegate), and for which resource
// domain (Scope). At most one record exists per key.
type DelegationKey struct {
	Owner    Identity `json:"owner"`
	Delegate Identity `json:"delegate"`
	Scope    Identity `json:"scope"`
}

// DelegationRecord is the stored state of a single delegation.
type DelegationRecord struct {
	Key DelegationKey `json:"key"`

	// GrantedAt is the time the (most recent) grant was made.
	GrantedAt time.Time `json:"granted_at"`

	// ExpiresAt is the absolute time after which the delegation is
	// no longer honored. A record past its expiry is kept until it is
	// revoked or swept; queries derive "expired" from the clock.
	ExpiresAt time.Time `json:"expires_at"`

	// CorrelationID is the ID of the request that created this record.
	CorrelationID string `json:"correlation_id,omitempty"`
}

// ActiveAt reports whether the record is unexpired at the given time.
// Expiry is exclusive: a record is inactive at exactly ExpiresAt.
func (r DelegationRecord) ActiveAt(now time.Time) bool {
	return now.Before(r.ExpiresAt)
}
