// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

// Package cmd holds the ocw command-line interface.
package cmd

import (
	"log"

	"github.com/spf13/cobra"

	"github.com/Greenetwork/offchain-worker/internal/configs"
	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "ocw",
	Short: "A ledger-integrated offchain worker node",
}

// loadConfig resolves the node config from the --config flag and wires the
// log service when one is configured.
func loadConfig() (configs.NodeConfig, error) {
	cfg, err := configs.LoadNodeConfig(configPath)
	if err != nil {
		return cfg, err
	}

	if cfg.LogAddress != "" && logservice.LS == nil {
		if err := logservice.Init(cfg.LogAddress, cfg.LogLevel); err != nil {
			// Logging is best-effort; the node runs fine without it.
			log.Printf("warning: %v", err)
		}
	}
	return cfg, nil
}

// Execute runs the CLI.
func Execute() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to node config JSON")

	rootCmd.AddCommand(RunCmd())
	rootCmd.AddCommand(InsertTaskCmd())
	rootCmd.AddCommand(ClearTasksCmd())
	rootCmd.AddCommand(InspectCmd())
	rootCmd.AddCommand(ExportJournalCmd())
	rootCmd.AddCommand(ListenLogsCmd())

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}
