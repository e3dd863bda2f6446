// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package configs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadNodeConfigDefaultsWithoutFile(t *testing.T) {
	cfg, err := LoadNodeConfig("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FetchTimeoutMillis != 3000 {
		t.Fatalf("fetch timeout %d, want 3000", cfg.FetchTimeoutMillis)
	}
	if cfg.LogLevel != "info" {
		t.Fatalf("log level %q, want info", cfg.LogLevel)
	}
}

func TestLoadNodeConfigOverridesAndBackfills(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.json")
	data := `{"ledgerPath":"/tmp/l.db","fetchTimeoutMillis":0,"accounts":["bob"]}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cfg, err := LoadNodeConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LedgerPath != "/tmp/l.db" {
		t.Fatalf("ledger path %q not overridden", cfg.LedgerPath)
	}
	if len(cfg.Accounts) != 1 || cfg.Accounts[0] != "bob" {
		t.Fatalf("accounts %v, want [bob]", cfg.Accounts)
	}
	// Zero timeout falls back to the 3000 ms default.
	if cfg.FetchTimeoutMillis != 3000 {
		t.Fatalf("fetch timeout %d, want 3000", cfg.FetchTimeoutMillis)
	}
}

func TestLoadNodeConfigRejectsBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "node.json")
	if err := os.WriteFile(path, []byte("{"), 0o644); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := LoadNodeConfig(path); err == nil {
		t.Fatalf("expected error for malformed config")
	}
}
