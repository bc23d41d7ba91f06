// Package registry implements the delegation registry: time-bounded,
// revocable access grants keyed by (owner, delegate, scope).
package registry

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Himess/delreg/internal/core"
)

// Options are the policy constants supplied by the hosting code.
type Options struct {
	// UnitLength is the length of one duration unit (e.g. one day).
	UnitLength time.Duration

	// MaxDuration is the largest number of units a single grant may span.
	MaxDuration int
}

// DefaultOptions mirror the common one-day / one-year policy.
func DefaultOptions() Options {
	return Options{
		UnitLength:  24 * time.Hour,
		MaxDuration: 365,
	}
}

// Registry owns the delegation records and answers grant, revoke and
// query requests. It trusts its owner parameter: the hosting layer must
// have verified the requesting identity already.
type Registry struct {
	store     core.DelegationStore
	directory core.OwnerDirectory
	clock     core.Clock
	opts      Options

	// mu serializes mutations so that concurrent Grant/Revoke calls on
	// the same key apply in a single total order.
	mu sync.Mutex

	sinks []core.EventSink
}

func New(
	store core.DelegationStore,
	directory core.OwnerDirectory,
	clock core.Clock,
	opts Options,
	sinks ...core.EventSink,
) *Registry {
	if clock == nil {
		clock = core.SystemClock{}
	}
	if opts.UnitLength <= 0 {
		opts.UnitLength = DefaultOptions().UnitLength
	}
	if opts.MaxDuration <= 0 {
		opts.MaxDuration = DefaultOptions().MaxDuration
	}
	return &Registry{
		store:     store,
		directory: directory,
		clock:     clock,
		opts:      opts,
		sinks:     sinks,
	}
}

// Grant creates or overwrites the delegation for (owner, delegate, scope)
// and returns the computed expiry. Granting again for an existing key
// replaces the record; no revoke-first is required.
func (r *Registry) Grant(
	ctx context.Context,
	owner, delegate, scope core.Identity,
	durationUnits int,
) (time.Time, error) {
	if delegate.IsZero() || delegate == owner {
		return time.Time{}, ErrInvalidDelegate
	}
	if durationUnits < 1 || durationUnits > r.opts.MaxDuration {
		return time.Time{}, fmt.Errorf("%w: %d units (allowed 1..%d)",
			ErrInvalidDuration, durationUnits, r.opts.MaxDuration)
	}

	ok, err := r.directory.ControlsResource(ctx, owner, scope)
	if err != nil {
		return time.Time{}, fmt.Errorf("checking owner resource: %w", err)
	}
	if !ok {
		return time.Time{}, ErrOwnerHasNoResource
	}

	reqID, _ := ctx.Value("correlation_id").(string)

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	record := core.DelegationRecord{
		Key: core.DelegationKey{
			Owner:    owner,
			Delegate: delegate,
			Scope:    scope,
		},
		GrantedAt:     now,
		ExpiresAt:     now.Add(time.Duration(durationUnits) * r.opts.UnitLength),
		CorrelationID: reqID,
	}
	if err := r.store.Put(ctx, record); err != nil {
		return time.Time{}, fmt.Errorf("storing delegation: %w", err)
	}

	r.publish(core.Event{
		Action:        core.ActionGranted,
		Key:           record.Key,
		ExpiresAt:     record.ExpiresAt,
		Time:          now,
		CorrelationID: reqID,
	})

	return record.ExpiresAt, nil
}

// Revoke deletes the delegation for (owner, delegate, scope). Revoking
// an absent or already-expired delegation is a no-op that still emits
// a revocation event.
func (r *Registry) Revoke(ctx context.Context, owner, delegate, scope core.Identity) error {
	if delegate.IsZero() {
		return ErrInvalidDelegate
	}

	ok, err := r.directory.ControlsResource(ctx, owner, scope)
	if err != nil {
		return fmt.Errorf("checking owner resource: %w", err)
	}
	if !ok {
		return ErrOwnerHasNoResource
	}

	reqID, _ := ctx.Value("correlation_id").(string)

	r.mu.Lock()
	defer r.mu.Unlock()

	key := core.DelegationKey{Owner: owner, Delegate: delegate, Scope: scope}
	if err := r.store.Delete(ctx, key); err != nil {
		return fmt.Errorf("deleting delegation: %w", err)
	}

	r.publish(core.Event{
		Action:        core.ActionRevoked,
		Key:           key,
		Time:          r.clock.Now(),
		CorrelationID: reqID,
	})

	return nil
}

// GetExpiry returns the stored expiry for the key, or the zero time if
// no record exists (never granted, or revoked). The expiry of an
// expired-but-unrevoked record is returned as stored; records are not
// purged on read.
func (r *Registry) GetExpiry(ctx context.Context, owner, delegate, scope core.Identity) (time.Time, error) {
	record, ok, err := r.store.Get(ctx, core.DelegationKey{
		Owner:    owner,
		Delegate: delegate,
		Scope:    scope,
	})
	if err != nil {
		return time.Time{}, fmt.Errorf("loading delegation: %w", err)
	}
	if !ok {
		return time.Time{}, nil
	}
	return record.ExpiresAt, nil
}

// IsActive reports whether the delegation is currently honored: a record
// exists, the owner still controls a resource under the scope, and the
// expiry has not passed. Ownership is re-validated at query time because
// it may have been removed independently of the delegation.
func (r *Registry) IsActive(ctx context.Context, owner, delegate, scope core.Identity) (bool, error) {
	record, ok, err := r.store.Get(ctx, core.DelegationKey{
		Owner:    owner,
		Delegate: delegate,
		Scope:    scope,
	})
	if err != nil {
		return false, fmt.Errorf("loading delegation: %w", err)
	}
	if !ok {
		return false, nil
	}

	controls, err := r.directory.ControlsResource(ctx, owner, scope)
	if err != nil {
		return false, fmt.Errorf("checking owner resource: %w", err)
	}
	if !controls {
		return false, nil
	}

	return record.ActiveAt(r.clock.Now()), nil
}

// Options returns the policy constants the registry was built with.
func (r *Registry) Options() Options {
	return r.opts
}

func (r *Registry) publish(event core.Event) {
	for _, sink := range r.sinks {
		sink.Publish(event)
	}
}
