package service

import (
	"time"

	"github.com/Himess/delreg/internal/core"
)

type GrantRequest struct {
	// RequestingIdentity is the already-authenticated caller, as
	// asserted by the hosting layer. Must equal Owner.
	RequestingIdentity core.Identity

	Owner    core.Identity
	Delegate core.Identity
	Scope    core.Identity

	// DurationUnits is the grant length in configured units.
	DurationUnits int
}

type GrantResponse struct {
	Key       core.DelegationKey `json:"key"`
	ExpiresAt time.Time          `json:"expires_at"`
}

type RevokeRequest struct {
	RequestingIdentity core.Identity

	Owner    core.Identity
	Delegate core.Identity
	Scope    core.Identity
}

type ExpiryResponse struct {
	Key core.DelegationKey `json:"key"`

	// ExpiresAt is zero when no record exists (never granted, or
	// revoked). An expired record keeps its stored expiry.
	ExpiresAt time.Time `json:"expires_at,omitzero"`

	// ExpiresAtUnix is ExpiresAt in seconds since epoch, 0 when absent.
	ExpiresAtUnix int64 `json:"expires_at_unix"`
}

type ActiveResponse struct {
	Key    core.DelegationKey `json:"key"`
	Active bool               `json:"active"`
}

type ExplainRequest struct {
	Owner         core.Identity
	Delegate      core.Identity
	Scope         core.Identity
	DurationUnits int
}

type ExplainResponse struct {
	CorrelationID string             `json:"correlation_id"`
	Allowed       bool               `json:"allowed"`
	Guards        []core.GuardResult `json:"guards"`
}
