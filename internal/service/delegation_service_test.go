package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/expr-lang/expr"

	"github.com/Himess/delreg/internal/audit"
	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/directory"
	"github.com/Himess/delreg/internal/engine"
	"github.com/Himess/delreg/internal/registry"
	"github.com/Himess/delreg/internal/store"
)

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, guards *engine.Engine) (*DelegationService, *audit.InMemoryAuditor) {
	t.Helper()

	dir := directory.NewInMemory()
	dir.Register("alice", "reports")

	clk := &core.FixedClock{Time: t0}
	st := store.NewInMemoryDelegationStore()
	reg := registry.New(st, dir, clk, registry.Options{
		UnitLength:  24 * time.Hour,
		MaxDuration: 365,
	})

	auditor := audit.NewInMemoryAuditor()
	return NewDelegationService(reg, guards, auditor, st, clk), auditor
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	var httpErr *HTTPError
	if !errors.As(err, &httpErr) {
		t.Fatalf("error %v is not an HTTPError", err)
	}
	return httpErr.StatusCode
}

func TestDelegationService_Grant(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name       string
		req        GrantRequest
		wantStatus int
	}{
		{
			name: "Owner Grants",
			req: GrantRequest{
				RequestingIdentity: "alice",
				Owner:              "alice", Delegate: "bob", Scope: "reports",
				DurationUnits: 30,
			},
		},
		{
			name: "Identity Mismatch",
			req: GrantRequest{
				RequestingIdentity: "mallory",
				Owner:              "alice", Delegate: "bob", Scope: "reports",
				DurationUnits: 30,
			},
			wantStatus: http.StatusForbidden,
		},
		{
			name: "Invalid Duration",
			req: GrantRequest{
				RequestingIdentity: "alice",
				Owner:              "alice", Delegate: "bob", Scope: "reports",
				DurationUnits: 0,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Self Delegation",
			req: GrantRequest{
				RequestingIdentity: "alice",
				Owner:              "alice", Delegate: "alice", Scope: "reports",
				DurationUnits: 30,
			},
			wantStatus: http.StatusBadRequest,
		},
		{
			name: "Owner Without Resource",
			req: GrantRequest{
				RequestingIdentity: "dave",
				Owner:              "dave", Delegate: "bob", Scope: "reports",
				DurationUnits: 30,
			},
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newTestService(t, nil)

			resp, err := svc.Grant(ctx, tt.req)
			if tt.wantStatus != 0 {
				if err == nil {
					t.Fatal("Grant() succeeded, want error")
				}
				if got := statusOf(t, err); got != tt.wantStatus {
					t.Errorf("status = %d, want %d", got, tt.wantStatus)
				}
				return
			}
			if err != nil {
				t.Fatalf("Grant() failed: %v", err)
			}
			if want := t0.Add(30 * 24 * time.Hour); !resp.ExpiresAt.Equal(want) {
				t.Errorf("ExpiresAt = %v, want %v", resp.ExpiresAt, want)
			}
		})
	}
}

func TestDelegationService_GuardDeniesGrant(t *testing.T) {
	ctx := context.Background()

	program, err := expr.Compile(`units <= 7`, expr.Env(engine.GrantEnv{}), expr.AsBool())
	if err != nil {
		t.Fatalf("compiling guard: %v", err)
	}
	guards := engine.New([]core.GuardRule{
		{Name: "week-max", Expr: `units <= 7`, CompiledExpr: program},
	})

	svc, auditor := newTestService(t, guards)

	_, err = svc.Grant(ctx, GrantRequest{
		RequestingIdentity: "alice",
		Owner:              "alice", Delegate: "bob", Scope: "reports",
		DurationUnits: 30,
	})
	if got := statusOf(t, err); got != http.StatusForbidden {
		t.Fatalf("status = %d, want %d", got, http.StatusForbidden)
	}

	// denied by guard, so no state was created
	active, err := svc.IsActive(ctx, "alice", "bob", "reports")
	if err != nil {
		t.Fatalf("IsActive() failed: %v", err)
	}
	if active.Active {
		t.Error("delegation active after guard denial")
	}

	entries, err := auditor.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent() failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(entries))
	}
	if entries[0].GuardName != "week-max" || entries[0].Granted {
		t.Errorf("audit entry = %+v, want denial by 'week-max'", entries[0])
	}
}

func TestDelegationService_AuditTrail(t *testing.T) {
	ctx := context.Background()
	svc, auditor := newTestService(t, nil)

	if _, err := svc.Grant(ctx, GrantRequest{
		RequestingIdentity: "alice",
		Owner:              "alice", Delegate: "bob", Scope: "reports",
		DurationUnits: 30,
	}); err != nil {
		t.Fatalf("Grant() failed: %v", err)
	}
	if err := svc.Revoke(ctx, RevokeRequest{
		RequestingIdentity: "alice",
		Owner:              "alice", Delegate: "bob", Scope: "reports",
	}); err != nil {
		t.Fatalf("Revoke() failed: %v", err)
	}

	// queries are not audited
	if _, err := svc.GetExpiry(ctx, "alice", "bob", "reports"); err != nil {
		t.Fatalf("GetExpiry() failed: %v", err)
	}

	entries, err := auditor.GetRecent(10)
	if err != nil {
		t.Fatalf("GetRecent() failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("audit entries = %d, want 2", len(entries))
	}

	// oldest first
	if entries[0].Action != ActionGrant || !entries[0].Granted {
		t.Errorf("entry[0] = %+v, want successful grant", entries[0])
	}
	if entries[1].Action != ActionRevoke || !entries[1].Granted {
		t.Errorf("entry[1] = %+v, want successful revoke", entries[1])
	}
}

func TestDelegationService_ListActive(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, nil)

	if _, err := svc.Grant(ctx, GrantRequest{
		RequestingIdentity: "alice",
		Owner:              "alice", Delegate: "bob", Scope: "reports",
		DurationUnits: 30,
	}); err != nil {
		t.Fatalf("Grant() failed: %v", err)
	}

	records, err := svc.ListActive(ctx)
	if err != nil {
		t.Fatalf("ListActive() failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("active records = %d, want 1", len(records))
	}
	if records[0].Key.Delegate != "bob" {
		t.Errorf("record delegate = %s, want bob", records[0].Key.Delegate)
	}
}
