package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Himess/delreg/internal/audit"
	"github.com/Himess/delreg/internal/core"
	"github.com/Himess/delreg/internal/directory"
	"github.com/Himess/delreg/internal/registry"
	"github.com/Himess/delreg/internal/service"
	"github.com/Himess/delreg/internal/store"
	"github.com/Himess/delreg/internal/tasks"
)

var (
	t0         = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	signingKey = []byte("test-signing-key")
)

func newTestHandler(t *testing.T) http.Handler {
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
	delegations := service.NewDelegationService(reg, nil, auditor, st, clk)

	srv := NewServer(delegations, tasks.NewManager(), auditor)
	return srv.Routes(signingKey)
}

func adminToken(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   "test-admin",
		"roles": []string{"admin"},
	})
	signed, err := token.SignedString(signingKey)
	if err != nil {
		t.Fatalf("signing admin token: %v", err)
	}
	return signed
}

func doRequest(t *testing.T, handler http.Handler, method, target, identity, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body != "" {
		reader = strings.NewReader(body)
	} else {
		reader = strings.NewReader("")
	}

	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if identity != "" {
		req.Header.Set(RequestingIdentityHeader, identity)
	}

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestHandleGrant(t *testing.T) {
	tests := []struct {
		name       string
		identity   string
		body       string
		wantStatus int
	}{
		{
			name:       "Valid Grant",
			identity:   "alice",
			body:       `{"owner":"alice","delegate":"bob","scope":"reports","duration_units":30}`,
			wantStatus: http.StatusCreated,
		},
		{
			name:       "Missing Identity Header",
			body:       `{"owner":"alice","delegate":"bob","scope":"reports","duration_units":30}`,
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "Identity Is Not Owner",
			identity:   "mallory",
			body:       `{"owner":"alice","delegate":"bob","scope":"reports","duration_units":30}`,
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "Invalid Duration",
			identity:   "alice",
			body:       `{"owner":"alice","delegate":"bob","scope":"reports","duration_units":0}`,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "Owner Without Resource",
			identity:   "dave",
			body:       `{"owner":"dave","delegate":"bob","scope":"reports","duration_units":30}`,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "Malformed Payload",
			identity:   "alice",
			body:       `{"owner":`,
			wantStatus: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := newTestHandler(t)

			rec := doRequest(t, handler, http.MethodPost, GrantRoute, tt.identity, tt.body)
			if rec.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d; body: %s", rec.Code, tt.wantStatus, rec.Body.String())
			}

			if tt.wantStatus != http.StatusCreated {
				return
			}

			var resp service.GrantResponse
			if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decoding response: %v", err)
			}
			if want := t0.Add(30 * 24 * time.Hour); !resp.ExpiresAt.Equal(want) {
				t.Errorf("ExpiresAt = %v, want %v", resp.ExpiresAt, want)
			}
		})
	}
}

func TestGrantQueryRevokeFlow(t *testing.T) {
	handler := newTestHandler(t)

	grantBody := `{"owner":"alice","delegate":"bob","scope":"reports","duration_units":30}`
	if rec := doRequest(t, handler, http.MethodPost, GrantRoute, "alice", grantBody); rec.Code != http.StatusCreated {
		t.Fatalf("grant status = %d; body: %s", rec.Code, rec.Body.String())
	}

	query := "?owner=alice&delegate=bob&scope=reports"

	rec := doRequest(t, handler, http.MethodGet, ActiveRoute+query, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("active status = %d", rec.Code)
	}
	var activeResp service.ActiveResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &activeResp); err != nil {
		t.Fatalf("decoding active response: %v", err)
	}
	if !activeResp.Active {
		t.Error("delegation not active after grant")
	}

	rec = doRequest(t, handler, http.MethodGet, ExpiryRoute+query, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expiry status = %d", rec.Code)
	}
	var expiryResp service.ExpiryResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &expiryResp); err != nil {
		t.Fatalf("decoding expiry response: %v", err)
	}
	if want := t0.Add(30 * 24 * time.Hour); !expiryResp.ExpiresAt.Equal(want) {
		t.Errorf("ExpiresAt = %v, want %v", expiryResp.ExpiresAt, want)
	}

	revokeBody := `{"owner":"alice","delegate":"bob","scope":"reports"}`
	if rec := doRequest(t, handler, http.MethodPost, RevokeRoute, "alice", revokeBody); rec.Code != http.StatusOK {
		t.Fatalf("revoke status = %d; body: %s", rec.Code, rec.Body.String())
	}

	rec = doRequest(t, handler, http.MethodGet, ActiveRoute+query, "", "")
	_ = json.Unmarshal(rec.Body.Bytes(), &activeResp)
	if activeResp.Active {
		t.Error("delegation still active after revoke")
	}

	rec = doRequest(t, handler, http.MethodGet, ExpiryRoute+query, "", "")
	if err := json.Unmarshal(rec.Body.Bytes(), &expiryResp); err != nil {
		t.Fatalf("decoding expiry response: %v", err)
	}
	if !expiryResp.ExpiresAt.IsZero() {
		t.Errorf("ExpiresAt after revoke = %v, want zero", expiryResp.ExpiresAt)
	}
}

func TestQueryParameterValidation(t *testing.T) {
	handler := newTestHandler(t)

	for _, route := range []string{ExpiryRoute, ActiveRoute} {
		rec := doRequest(t, handler, http.MethodGet, route+"?owner=alice&scope=reports", "", "")
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s without delegate: status = %d, want %d", route, rec.Code, http.StatusBadRequest)
		}
	}
}

func TestAdminRoutesRequireToken(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, ListAuditsRoute, "", "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("unauthenticated admin request: status = %d, want %d", rec.Code, http.StatusUnauthorized)
	}

	req := httptest.NewRequest(http.MethodGet, ListAuditsRoute, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	recAuth := httptest.NewRecorder()
	handler.ServeHTTP(recAuth, req)
	if recAuth.Code != http.StatusOK {
		t.Fatalf("authenticated admin request: status = %d; body: %s", recAuth.Code, recAuth.Body.String())
	}
}

func TestAdminListDelegations(t *testing.T) {
	handler := newTestHandler(t)

	grantBody := `{"owner":"alice","delegate":"bob","scope":"reports","duration_units":30}`
	if rec := doRequest(t, handler, http.MethodPost, GrantRoute, "alice", grantBody); rec.Code != http.StatusCreated {
		t.Fatalf("grant status = %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, ListDelegationsRoute, nil)
	req.Header.Set("Authorization", "Bearer "+adminToken(t))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("list delegations: status = %d; body: %s", rec.Code, rec.Body.String())
	}

	var records []core.DelegationRecord
	if err := json.Unmarshal(rec.Body.Bytes(), &records); err != nil {
		t.Fatalf("decoding records: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %d, want 1", len(records))
	}
	if records[0].Key.Owner != "alice" || records[0].Key.Delegate != "bob" {
		t.Errorf("unexpected record key: %+v", records[0].Key)
	}
}

func TestHealthCheck(t *testing.T) {
	handler := newTestHandler(t)

	rec := doRequest(t, handler, http.MethodGet, HealthCheckRoute, "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("health check status = %d", rec.Code)
	}
}
