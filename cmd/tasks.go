// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Greenetwork/offchain-worker/internal/ledger"
)

// InsertTaskCmd writes a task queue entry and raises the availability flag.
func InsertTaskCmd() *cobra.Command {
	var (
		id      uint32
		target  string
		header  string
		account string
	)

	cmd := &cobra.Command{
		Use:   "insert-task",
		Short: "insert a fetch task into the ledger task queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			l, err := ledger.Open(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer l.Close()

			if err := l.Execute(ledger.SignedOrigin(account), ledger.InsertTask(id, target, header)); err != nil {
				return fmt.Errorf("insert_task failed: %w", err)
			}

			fmt.Printf("task %d inserted, queue flag raised\n", id)
			return nil
		},
	}

	cmd.Flags().Uint32Var(&id, "id", 1, "task queue entry id")
	cmd.Flags().StringVar(&target, "target", "", "remote request target")
	cmd.Flags().StringVar(&header, "header", "", "User-Agent header value for the fetch")
	cmd.Flags().StringVar(&account, "account", "alice", "signing account")
	cmd.MarkFlagRequired("header")

	return cmd
}

// ClearTasksCmd lowers the availability flag. Entries stay until overwritten.
func ClearTasksCmd() *cobra.Command {
	var account string

	cmd := &cobra.Command{
		Use:   "clear-tasks",
		Short: "clear the task queue availability flag",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			l, err := ledger.Open(cfg.LedgerPath)
			if err != nil {
				return err
			}
			defer l.Close()

			if err := l.Execute(ledger.SignedOrigin(account), ledger.ClearTasks()); err != nil {
				return fmt.Errorf("clear_tasks failed: %w", err)
			}

			fmt.Println("queue flag cleared")
			return nil
		},
	}

	cmd.Flags().StringVar(&account, "account", "alice", "signing account")
	return cmd
}
