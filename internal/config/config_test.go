package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "delreg.yaml")
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("writing config file: %v", err)
	}
	return path
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
registry:
  unit_length: 24h
  max_duration: 365

store:
  type: sqlite
  path: /tmp/delreg.db

directory:
  type: static
  scopes:
    reports: [alice, carol]

guards:
  - name: short-grants-only
    scope: reports
    expr: units <= 30

audit:
  enabled: true
  type: memory

sweep:
  interval: 1h

admin:
  signing_key: super-secret
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.Registry.UnitLength != 24*time.Hour {
		t.Errorf("UnitLength = %v, want 24h", cfg.Registry.UnitLength)
	}
	if cfg.Registry.MaxDuration != 365 {
		t.Errorf("MaxDuration = %d, want 365", cfg.Registry.MaxDuration)
	}
	if cfg.Store.Type != "sqlite" || cfg.Store.Path != "/tmp/delreg.db" {
		t.Errorf("store config = %+v", cfg.Store)
	}
	if cfg.Directory.Type != "static" {
		t.Errorf("directory type = %q, want static", cfg.Directory.Type)
	}
	if _, ok := cfg.Directory.Config["scopes"]; !ok {
		t.Error("directory scopes not captured")
	}
	if cfg.Sweep.Interval != time.Hour {
		t.Errorf("sweep interval = %v, want 1h", cfg.Sweep.Interval)
	}

	if len(cfg.Guards) != 1 {
		t.Fatalf("guards = %d, want 1", len(cfg.Guards))
	}
	if cfg.Guards[0].CompiledExpr == nil {
		t.Error("guard expression was not compiled during validation")
	}
}

func TestLoadInvalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "Sqlite Without Path",
			content: `
store:
  type: sqlite
`,
		},
		{
			name: "Unknown Store Type",
			content: `
store:
  type: postgres
`,
		},
		{
			name: "Unknown Directory Type",
			content: `
directory:
  type: ldap
`,
		},
		{
			name: "File Audit Without Path",
			content: `
audit:
  enabled: true
  type: file
`,
		},
		{
			name: "Guard Without Name",
			content: `
guards:
  - expr: units <= 30
`,
		},
		{
			name: "Duplicate Guard Name",
			content: `
guards:
  - name: g
    expr: units <= 30
  - name: g
    expr: units <= 10
`,
		},
		{
			name: "Guard With Bad Expression",
			content: `
guards:
  - name: g
    expr: units <<< 30
`,
		},
		{
			name: "Guard With Non-Boolean Expression",
			content: `
guards:
  - name: g
    expr: units + 1
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Load(writeConfig(t, tt.content)); err == nil {
				t.Fatal("Load() succeeded, want error")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("Load() of missing file succeeded, want error")
	}
}
