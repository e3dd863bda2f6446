// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package configs

import (
	"encoding/json"
	"fmt"
	"os"
)

// NodeConfig holds every tunable of a worker node.
type NodeConfig struct {
	LedgerPath     string `json:"ledgerPath"`     // SQLite file backing the shared ledger state
	LocalStorePath string `json:"localStorePath"` // Bolt file backing the node-local store
	JournalPath    string `json:"journalPath"`    // Badger directory for the activity journal

	FetchEndpoint      string `json:"fetchEndpoint"`      // Remote HTTP endpoint queried by the worker
	FetchTimeoutMillis int    `json:"fetchTimeoutMillis"` // Hard deadline on the remote fetch

	UnsignedPriority    uint64 `json:"unsignedPriority"`    // Priority attached to admitted unsigned submissions
	BlockIntervalMillis int    `json:"blockIntervalMillis"` // Block production interval

	Accounts []string `json:"accounts"` // Account IDs this process can sign for

	LogAddress string `json:"logAddress"` // UDP log listener address, empty disables logging
	LogLevel   string `json:"logLevel"`
}

// DefaultNodeConfig returns the config used when no file is supplied.
func DefaultNodeConfig() NodeConfig {
	return NodeConfig{
		LedgerPath:          "ledger.db",
		LocalStorePath:      "localstore.db",
		JournalPath:         "journal",
		FetchEndpoint:       "https://api.github.com/orgs/substrate-developer-hub",
		FetchTimeoutMillis:  3000,
		UnsignedPriority:    100,
		BlockIntervalMillis: 6000,
		Accounts:            []string{"alice"},
		LogLevel:            "info",
	}
}

// LoadNodeConfig reads a node config file, filling in defaults for zero fields.
func LoadNodeConfig(path string) (NodeConfig, error) {
	cfg := DefaultNodeConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("failed to read node config: %w", err)
	}
	if err := json.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("failed to parse node config: %w", err)
	}

	if cfg.FetchTimeoutMillis <= 0 {
		cfg.FetchTimeoutMillis = 3000
	}
	if cfg.BlockIntervalMillis <= 0 {
		cfg.BlockIntervalMillis = 6000
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	return cfg, nil
}
