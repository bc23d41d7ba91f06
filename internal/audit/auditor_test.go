package audit

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Himess/delreg/internal/config"
	"github.com/Himess/delreg/internal/core"
)

func entry(n int) core.AuditEntry {
	return core.AuditEntry{
		ID:     fmt.Sprintf("req-%d", n),
		Time:   time.Date(2025, 6, 1, 12, 0, n, 0, time.UTC),
		Action: "delegation.grant",
		Key: core.DelegationKey{
			Owner:    "alice",
			Delegate: "bob",
			Scope:    "reports",
		},
		Granted: true,
	}
}

func TestInMemoryAuditor(t *testing.T) {
	auditor := NewInMemoryAuditor()

	for i := 0; i < 5; i++ {
		if err := auditor.Log(entry(i)); err != nil {
			t.Fatalf("Log() failed: %v", err)
		}
	}

	recent, err := auditor.GetRecent(3)
	if err != nil {
		t.Fatalf("GetRecent() failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("GetRecent(3) returned %d entries", len(recent))
	}
	// oldest first within the window
	if recent[0].ID != "req-2" || recent[2].ID != "req-4" {
		t.Errorf("unexpected window: %s .. %s", recent[0].ID, recent[2].ID)
	}

	matches, err := auditor.Find(func(e core.AuditEntry) bool {
		return e.ID == "req-1"
	}, 10)
	if err != nil {
		t.Fatalf("Find() failed: %v", err)
	}
	if len(matches) != 1 || matches[0].ID != "req-1" {
		t.Errorf("Find() = %+v, want single req-1", matches)
	}
}

func TestFileAuditor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.jsonl")

	auditor, err := NewFileAuditor(path)
	if err != nil {
		t.Fatalf("NewFileAuditor() failed: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := auditor.Log(entry(i)); err != nil {
			t.Fatalf("Log() failed: %v", err)
		}
	}
	if err := auditor.Close(); err != nil {
		t.Fatalf("Close() failed: %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("opening audit file: %v", err)
	}
	defer func() {
		_ = f.Close()
	}()

	var count int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		var e core.AuditEntry
		if err := json.Unmarshal(scanner.Bytes(), &e); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", count, err)
		}
		count++
	}
	if count != 3 {
		t.Errorf("audit file has %d lines, want 3", count)
	}
}

func TestBuild(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.AuditConfig
		wantNoop bool
		wantErr  bool
	}{
		{
			name:     "Disabled",
			cfg:      config.AuditConfig{Enabled: false},
			wantNoop: true,
		},
		{
			name: "Memory Default",
			cfg:  config.AuditConfig{Enabled: true},
		},
		{
			name: "Memory Explicit",
			cfg:  config.AuditConfig{Enabled: true, Type: "memory"},
		},
		{
			name:    "File Without Path",
			cfg:     config.AuditConfig{Enabled: true, Type: "file"},
			wantErr: true,
		},
		{
			name:    "Unknown Type",
			cfg:     config.AuditConfig{Enabled: true, Type: "syslog"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auditor, err := Build(tt.cfg)
			if tt.wantErr {
				if err == nil {
					t.Fatal("Build() succeeded, want error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Build() failed: %v", err)
			}

			_, isNoop := auditor.(*NoopAuditor)
			if isNoop != tt.wantNoop {
				t.Errorf("noop = %v, want %v", isNoop, tt.wantNoop)
			}
		})
	}
}
