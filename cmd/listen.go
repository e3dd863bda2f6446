// Copyright 2025 Greenetwork contributors
// SPDX-License-Identifier: LGPL-2.1-or-later

package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Greenetwork/offchain-worker/internal/logservice"
)

// ListenLogsCmd runs the UDP log listener in the foreground.
func ListenLogsCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "listen-logs",
		Short: "run the UDP log listener",
		RunE: func(cmd *cobra.Command, args []string) error {
			return logservice.RunListener(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:1997", "UDP address to listen on")
	return cmd
}
