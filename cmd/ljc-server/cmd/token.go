package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/snowcode-jp/ljc-server/internal/hub"
)

func init() {
	tokenCmd := &cobra.Command{
		Use:   "token",
		Short: "Print a freshly minted bearer token and exit",
		Long: `token mints a bearer token the same way the server does at startup
and prints it. The printed token is independent of any running server:
a server mints its own token at startup and prints it in its banner.`,
		RunE: runToken,
	}

	rootCmd.AddCommand(tokenCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	h := hub.New()
	fmt.Println(h.Token())
	return nil
}
