package core

import (
	"context"
	"time"
)

// DelegationStore persists delegation records.
// Implementations: in-memory store, SQLite store.
type DelegationStore interface {
	// Put creates or overwrites the record for its key.
	Put(ctx context.Context, record DelegationRecord) error

	// Get returns the record for the key, or ok=false if none exists.
	Get(ctx context.Context, key DelegationKey) (DelegationRecord, bool, error)

	// Delete removes the record for the key. Deleting an absent key
	// is not an error.
	Delete(ctx context.Context, key DelegationKey) error

	// ListActive returns records that have not expired as of now.
	ListActive(ctx context.Context, now time.Time) ([]DelegationRecord, error)

	// DeleteExpired removes records whose expiry is at or before now
	// and returns how many were removed.
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
}

// OwnerDirectory answers whether an owner currently controls a resource
// under a scope. The registry consults it on Grant, Revoke and IsActive;
// ownership may change independently of the delegation state.
type OwnerDirectory interface {
	// ControlsResource reports whether owner holds a resource under scope.
	ControlsResource(ctx context.Context, owner, scope Identity) (bool, error)
}

// Clock supplies the current time. Injected so that expiry logic is
// deterministic under test.
type Clock interface {
	Now() time.Time
}
