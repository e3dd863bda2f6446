// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Greenetwork/offchain-worker/internal/node"
)

// RunCmd starts the node and produces blocks until interrupted.
func RunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "run the worker node until interrupted",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			n, err := node.New(cfg)
			if err != nil {
				return fmt.Errorf("failed to start node: %w", err)
			}
			defer n.Close()

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			fmt.Println("node running, ctrl-c to stop")
			n.Run(ctx)
			return nil
		},
	}
}
