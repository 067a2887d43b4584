package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var accountsCmd = &cobra.Command{
	Use:   "accounts",
	Short: "List the accounts the gateway manages",
	Long: `List the account ids the connected gateway can route orders to.
The account picked by configuration or --account is marked.

Examples:
  seekingquant accounts`,
	RunE: runAccounts,
}

func init() {
	rootCmd.AddCommand(accountsCmd)
}

func runAccounts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	ctx := context.Background()
	s, err := dialSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer s.Close()

	accounts, err := s.ManagedAccounts(ctx)
	if err != nil {
		return err
	}
	if len(accounts) == 0 {
		fmt.Println("The gateway reported no managed accounts.")
		return nil
	}

	selected := accountFlag
	if selected == "" {
		selected = cfg.Broker.Account
	}

	fmt.Printf("Managed accounts (%d):\n", len(accounts))
	for _, a := range accounts {
		mark := " "
		if a == selected {
			mark = "*"
		}
		fmt.Printf("  %s %s\n", mark, a)
	}
	if selected != "" {
		fmt.Println("\n* selected by configuration")
	}
	return nil
}
