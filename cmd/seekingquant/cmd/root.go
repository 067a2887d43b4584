package cmd

import (
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "seekingquant",
	Short: "Dollar-denominated order execution and portfolio rebalancing",
	Long: `SeekingQuant trades a brokerage account toward target dollar values.

It provides tools for:
  - Rebalancing holdings toward per-symbol dollar targets
  - Flat-dollar buying of a picks list
  - Placing single dollar-denominated market or limit orders
  - Listing positions valued at freshly resolved prices
  - Journaling every run and querying past movements

Complete documentation is available at https://github.com/Tvpower/seekingQuant`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (YAML or JSON; defaults plus .env overrides when empty)")
	rootCmd.PersistentFlags().StringVarP(&accountFlag, "account", "a", "", "account to trade (overrides config)")
	rootCmd.PersistentFlags().BoolVarP(&yesFlag, "yes", "y", false, "skip interactive prompts")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().BoolVar(&pretty, "pretty", false, "human-readable log output")
}
