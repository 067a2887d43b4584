package cmd

import (
	"context"
	"fmt"
	"sort"

	"github.com/spf13/cobra"
)

var positionsCmd = &cobra.Command{
	Use:   "positions",
	Short: "Show current holdings valued at fresh prices",
	Long: `Show the account's holdings with quantity, average cost and market
value. Each position is valued at a freshly resolved price; where no
price can be resolved the cost basis is used instead and the row is
marked with *.

Examples:
  seekingquant positions
  seekingquant positions -a DU1234567`,
	RunE: runPositions,
}

func init() {
	rootCmd.AddCommand(positionsCmd)
}

func runPositions(cmd *cobra.Command, args []string) error {
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

	account, err := resolveAccount(ctx, s, cfg)
	if err != nil {
		return err
	}

	positions, err := s.Positions(ctx, account)
	if err != nil {
		return err
	}
	if len(positions) == 0 {
		fmt.Printf("No open positions in account %s.\n", accountLabel(account))
		return nil
	}

	symbols := make([]string, 0, len(positions))
	for sym := range positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	fmt.Printf("Positions in account %s:\n\n", accountLabel(account))
	fmt.Printf("%-10s %12s %12s %12s %14s\n", "Symbol", "Quantity", "Avg Cost", "Price", "Market Value")

	var total float64
	degraded := false
	for _, sym := range symbols {
		p := positions[sym]
		name := sym
		if p.Degraded {
			name += "*"
			degraded = true
		}
		fmt.Printf("%-10s %12.4f %12.2f %12.2f %14.2f\n", name, p.Quantity, p.AvgCost, p.Price, p.MarketValue)
		total += p.MarketValue
	}
	fmt.Printf("\n%-10s %54.2f\n", "Total", total)
	if degraded {
		fmt.Println("\n* valued at cost basis (no live price)")
	}
	return nil
}
