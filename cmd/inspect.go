// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Greenetwork/offchain-worker/internal/ledger"
)

// InspectCmd prints the current ledger state.
func InspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect",
		Short: "print the current ledger state",
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

			available, err := l.QueueAvailable()
			if err != nil {
				return err
			}
			numbers, err := l.Numbers()
			if err != nil {
				return err
			}
			avg, err := l.Average()
			if err != nil {
				return err
			}
			agent, err := l.UserAgentOnChain()
			if err != nil {
				return err
			}

			fmt.Printf("queue available: %v\n", available)
			fmt.Printf("numbers:         %v (average %d)\n", numbers, avg)
			fmt.Printf("agent on chain:  %q\n", agent)

			if task, found, err := l.Task(1); err != nil {
				return err
			} else if found {
				fmt.Printf("task 1:          target=%q header=%q\n", task.Target, task.Header)
			} else {
				fmt.Println("task 1:          (none)")
			}
			return nil
		},
	}
}
