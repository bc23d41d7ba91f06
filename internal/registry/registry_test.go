package registry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/directory"
	"github.com/Himess/delreg/internal/store"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type sinkRecorder struct {
	events []core.Event
}

func (s *sinkRecorder) Publish(event core.Event) {
	s.events = append(s.events, event)
}

func newTestRegistry(clk core.Clock, sinks ...core.EventSink) (*Registry, *directory.InMemoryDirectory) {
	dir := directory.NewInMemory()
	dir.Register("alice", "reports")
	dir.Register("alice", "billing")
	dir.Register("carol", "reports")

	reg := New(store.NewInMemoryDelegationStore(), dir, clk, Options{
		UnitLength:  24 * time.Hour,
		MaxDuration: 365,
	}, sinks...)
	return reg, dir
}

func TestRegistry_Grant(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name     string
		owner    core.Identity
		delegate core.Identity
		scope    core.Identity
		units    int
		wantErr  error
	}{
		{
			name:  "Valid Grant",
			owner: "alice", delegate: "bob", scope: "reports",
			units: 30,
		},
		{
			name:  "Single Unit",
			owner: "alice", delegate: "bob", scope: "reports",
			units: 1,
		},
		{
			name:  "Maximum Duration",
			owner: "alice", delegate: "bob", scope: "reports",
			units: 365,
		},
		{
			name:  "Zero Units",
			owner: "alice", delegate: "bob", scope: "reports",
			units: 0, wantErr: ErrInvalidDuration,
		},
		{
			name:  "Negative Units",
			owner: "alice", delegate: "bob", scope: "reports",
			units: -5, wantErr: ErrInvalidDuration,
		},
		{
			name:  "Above Maximum",
			owner: "alice", delegate: "bob", scope: "reports",
			units: 366, wantErr: ErrInvalidDuration,
		},
		{
			name:  "Empty Delegate",
			owner: "alice", delegate: "", scope: "reports",
			units: 30, wantErr: ErrInvalidDelegate,
		},
		{
			name:  "Self Delegation",
			owner: "alice", delegate: "alice", scope: "reports",
			units: 30, wantErr: ErrInvalidDelegate,
		},
		{
			name:  "Owner Without Resource",
			owner: "mallory", delegate: "bob", scope: "reports",
			units: 30, wantErr: ErrOwnerHasNoResource,
		},
		{
			name:  "Scope Not Controlled By Owner",
			owner: "carol", delegate: "bob", scope: "billing",
			units: 30, wantErr: ErrOwnerHasNoResource,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reg, _ := newTestRegistry(&core.FixedClock{Time: t0})

			expiresAt, err := reg.Grant(ctx, tt.owner, tt.delegate, tt.scope, tt.units)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Grant() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Grant() unexpected error: %v", err)
			}

			want := t0.Add(time.Duration(tt.units) * 24 * time.Hour)
			if !expiresAt.Equal(want) {
				t.Errorf("Grant() expiry = %v, want %v", expiresAt, want)
			}
		})
	}
}

func TestRegistry_GrantOverwrites(t *testing.T) {
	ctx := context.Background()
	clk := &core.FixedClock{Time: t0}
	reg, _ := newTestRegistry(clk)

	if _, err := reg.Grant(ctx, "alice", "bob", "reports", 30); err != nil {
		t.Fatalf("first Grant() failed: %v", err)
	}

	// re-grant later with a shorter duration; the new expiry wins
	clk.Time = t0.Add(10 * 24 * time.Hour)
	expiresAt, err := reg.Grant(ctx, "alice", "bob", "reports", 5)
	if err != nil {
		t.Fatalf("second Grant() failed: %v", err)
	}

	want := clk.Time.Add(5 * 24 * time.Hour)
	if !expiresAt.Equal(want) {
		t.Errorf("overwrite expiry = %v, want %v", expiresAt, want)
	}

	got, err := reg.GetExpiry(ctx, "alice", "bob", "reports")
	if err != nil {
		t.Fatalf("GetExpiry() failed: %v", err)
	}
	if !got.Equal(want) {
		t.Errorf("GetExpiry() = %v, want %v", got, want)
	}
}

func TestRegistry_GrantRevokeQuery(t *testing.T) {
	ctx := context.Background()
	clk := &core.FixedClock{Time: t0}
	reg, _ := newTestRegistry(clk)

	// grant 30 days
	expiresAt, err := reg.Grant(ctx, "alice", "bob", "reports", 30)
	if err != nil {
		t.Fatalf("Grant() failed: %v", err)
	}
	if want := t0.Add(30 * 24 * time.Hour); !expiresAt.Equal(want) {
		t.Fatalf("expiry = %v, want %v", expiresAt, want)
	}

	active, err := reg.IsActive(ctx, "alice", "bob", "reports")
	if err != nil || !active {
		t.Fatalf("IsActive() = %v, %v; want true", active, err)
	}

	// revoke half-way through
	clk.Time = t0.Add(15 * 24 * time.Hour)
	if err := reg.Revoke(ctx, "alice", "bob", "reports"); err != nil {
		t.Fatalf("Revoke() failed: %v", err)
	}

	active, err = reg.IsActive(ctx, "alice", "bob", "reports")
	if err != nil || active {
		t.Fatalf("IsActive() after revoke = %v, %v; want false", active, err)
	}

	got, err := reg.GetExpiry(ctx, "alice", "bob", "reports")
	if err != nil {
		t.Fatalf("GetExpiry() failed: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("GetExpiry() after revoke = %v, want zero", got)
	}
}

func TestRegistry_ExpiryWithoutRevoke(t *testing.T) {
	ctx := context.Background()
	clk := &core.FixedClock{Time: t0}
	reg, _ := newTestRegistry(clk)

	expiresAt, err := reg.Grant(ctx, "alice", "bob", "reports", 7)
	if err != nil {
		t.Fatalf("Grant() failed: %v", err)
	}

	// one second before expiry: still active
	clk.Time = expiresAt.Add(-time.Second)
	if active, _ := reg.IsActive(ctx, "alice", "bob", "reports"); !active {
		t.Error("IsActive() just before expiry = false, want true")
	}

	// expiry is exclusive: inactive at exactly ExpiresAt
	clk.Time = expiresAt
	if active, _ := reg.IsActive(ctx, "alice", "bob", "reports"); active {
		t.Error("IsActive() at expiry = true, want false")
	}

	// the stored expiry survives expiration; records are not purged on read
	clk.Time = expiresAt.Add(90 * 24 * time.Hour)
	got, err := reg.GetExpiry(ctx, "alice", "bob", "reports")
	if err != nil {
		t.Fatalf("GetExpiry() failed: %v", err)
	}
	if !got.Equal(expiresAt) {
		t.Errorf("GetExpiry() after expiry = %v, want stored %v", got, expiresAt)
	}
}

func TestRegistry_RevokeIsIdempotent(t *testing.T) {
	ctx := context.Background()
	sink := &sinkRecorder{}
	reg, _ := newTestRegistry(&core.FixedClock{Time: t0}, sink)

	// revoking something never granted succeeds
	if err := reg.Revoke(ctx, "alice", "bob", "reports"); err != nil {
		t.Fatalf("Revoke() on absent delegation failed: %v", err)
	}

	if _, err := reg.Grant(ctx, "alice", "bob", "reports", 10); err != nil {
		t.Fatalf("Grant() failed: %v", err)
	}
	if err := reg.Revoke(ctx, "alice", "bob", "reports"); err != nil {
		t.Fatalf("Revoke() failed: %v", err)
	}
	if err := reg.Revoke(ctx, "alice", "bob", "reports"); err != nil {
		t.Fatalf("repeated Revoke() failed: %v", err)
	}

	// every revoke emits an event, even the no-op ones
	var revocations int
	for _, event := range sink.events {
		if event.Action == core.ActionRevoked {
			revocations++
		}
	}
	if revocations != 3 {
		t.Errorf("revocation events = %d, want 3", revocations)
	}
}

func TestRegistry_RevokeValidation(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(&core.FixedClock{Time: t0})

	if err := reg.Revoke(ctx, "alice", "", "reports"); !errors.Is(err, ErrInvalidDelegate) {
		t.Errorf("Revoke() with empty delegate = %v, want ErrInvalidDelegate", err)
	}
	if err := reg.Revoke(ctx, "mallory", "bob", "reports"); !errors.Is(err, ErrOwnerHasNoResource) {
		t.Errorf("Revoke() without resource = %v, want ErrOwnerHasNoResource", err)
	}
}

func TestRegistry_KeysAreIndependent(t *testing.T) {
	ctx := context.Background()
	reg, _ := newTestRegistry(&core.FixedClock{Time: t0})

	grants := []struct {
		owner, delegate, scope core.Identity
		units                  int
	}{
		{"alice", "bob", "reports", 10},
		{"alice", "bob", "billing", 20},
		{"alice", "dave", "reports", 30},
		{"carol", "bob", "reports", 40},
	}
	for _, g := range grants {
		if _, err := reg.Grant(ctx, g.owner, g.delegate, g.scope, g.units); err != nil {
			t.Fatalf("Grant(%s, %s, %s) failed: %v", g.owner, g.delegate, g.scope, err)
		}
	}

	// revoking one key leaves the others untouched
	if err := reg.Revoke(ctx, "alice", "bob", "reports"); err != nil {
		t.Fatalf("Revoke() failed: %v", err)
	}

	for _, g := range grants[1:] {
		active, err := reg.IsActive(ctx, g.owner, g.delegate, g.scope)
		if err != nil {
			t.Fatalf("IsActive(%s, %s, %s) failed: %v", g.owner, g.delegate, g.scope, err)
		}
		if !active {
			t.Errorf("IsActive(%s, %s, %s) = false, want true", g.owner, g.delegate, g.scope)
		}
	}

	got, _ := reg.GetExpiry(ctx, "alice", "bob", "billing")
	if want := t0.Add(20 * 24 * time.Hour); !got.Equal(want) {
		t.Errorf("GetExpiry(alice, bob, billing) = %v, want %v", got, want)
	}
}

func TestRegistry_InactiveWhenOwnershipRemoved(t *testing.T) {
	ctx := context.Background()
	reg, dir := newTestRegistry(&core.FixedClock{Time: t0})

	if _, err := reg.Grant(ctx, "alice", "bob", "reports", 30); err != nil {
		t.Fatalf("Grant() failed: %v", err)
	}

	dir.Remove("alice", "reports")

	active, err := reg.IsActive(ctx, "alice", "bob", "reports")
	if err != nil {
		t.Fatalf("IsActive() failed: %v", err)
	}
	if active {
		t.Error("IsActive() = true after ownership removal, want false")
	}

	// the record itself is untouched
	got, _ := reg.GetExpiry(ctx, "alice", "bob", "reports")
	if got.IsZero() {
		t.Error("GetExpiry() = zero after ownership removal, want stored expiry")
	}
}

func TestRegistry_Events(t *testing.T) {
	ctx := context.WithValue(context.Background(), "correlation_id", "req-123")
	sink := &sinkRecorder{}
	reg, _ := newTestRegistry(&core.FixedClock{Time: t0}, sink)

	expiresAt, err := reg.Grant(ctx, "alice", "bob", "reports", 30)
	if err != nil {
		t.Fatalf("Grant() failed: %v", err)
	}
	if err := reg.Revoke(ctx, "alice", "bob", "reports"); err != nil {
		t.Fatalf("Revoke() failed: %v", err)
	}

	key := core.DelegationKey{Owner: "alice", Delegate: "bob", Scope: "reports"}
	want := []core.Event{
		{
			Action:        core.ActionGranted,
			Key:           key,
			ExpiresAt:     expiresAt,
			Time:          t0,
			CorrelationID: "req-123",
		},
		{
			Action:        core.ActionRevoked,
			Key:           key,
			Time:          t0,
			CorrelationID: "req-123",
		},
	}
	if diff := cmp.Diff(want, sink.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_NoEventOnFailedGrant(t *testing.T) {
	ctx := context.Background()
	sink := &sinkRecorder{}
	reg, _ := newTestRegistry(&core.FixedClock{Time: t0}, sink)

	if _, err := reg.Grant(ctx, "alice", "bob", "reports", 0); err == nil {
		t.Fatal("Grant() with zero units succeeded, want error")
	}
	if _, err := reg.Grant(ctx, "mallory", "bob", "reports", 5); err == nil {
		t.Fatal("Grant() without resource succeeded, want error")
	}

	if len(sink.events) != 0 {
		t.Errorf("events after failed grants = %d, want 0", len(sink.events))
	}
}

func TestRegistry_DefaultOptions(t *testing.T) {
	reg := New(store.NewInMemoryDelegationStore(), directory.NewInMemory(), nil, Options{})

	opts := reg.Options()
	if opts.UnitLength != 24*time.Hour {
		t.Errorf("UnitLength = %v, want 24h", opts.UnitLength)
	}
	if opts.MaxDuration != 365 {
		t.Errorf("MaxDuration = %d, want 365", opts.MaxDuration)
	}
}
