// Package cmd implements the ljc-server CLI: a cobra root command
// ("serve" by default) plus a "token" helper, matching the teacher's
// cmd/altmount/cmd package shape (rootCmd, one file per subcommand,
// cobra.Command{Use, Short, RunE}).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "ljc-server",
	Short: "LAN file-sharing relay server",
	Long: `ljc-server relays WebDAV traffic between a desktop host's file
browser and remote client endpoints connected over a WebSocket, so a
remote machine's folder can be mounted as if it were local.`,
	RunE: runServe,
}

// Execute runs the root command, exiting non-zero on error.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
