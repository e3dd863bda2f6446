// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Greenetwork/offchain-worker/internal/etl"
	"github.com/Greenetwork/offchain-worker/internal/journal"
)

// ExportJournalCmd exports the activity journal into a DuckDB file.
func ExportJournalCmd() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export-journal",
		Short: "export the worker activity journal to DuckDB",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			j, err := journal.Open(cfg.JournalPath)
			if err != nil {
				return err
			}
			defer j.Close()

			n, err := etl.ExportJournal(j, out)
			if err != nil {
				return fmt.Errorf("export failed after %d entries: %w", n, err)
			}

			fmt.Printf("exported %d journal entries to %s\n", n, out)
			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "journal.duckdb", "output DuckDB file")
	return cmd
}
