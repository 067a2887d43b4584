package cmd

import (
	"context"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/Tvpower/seekingQuant/broker/ibgw"
	"github.com/Tvpower/seekingQuant/broker/sim"
	"github.com/Tvpower/seekingQuant/pkg/id"
	"github.com/Tvpower/seekingQuant/pkg/logger"
	"github.com/Tvpower/seekingQuant/portfolio"
	"github.com/Tvpower/seekingQuant/report"
)

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Rebalance against an in-process simulated gateway",
	Long: `Run the full pipeline against a simulated gateway: no brokerage, no
network, nothing real at risk.

The gateway starts holding AAPL and MSFT and serves live prices for
AAPL, MSFT and GOOG. Rebalancing toward $500 per symbol sells the
overweight position, tops up the underweight one and opens the missing
one, then shows the report and the orders the gateway accepted.

Examples:
  seekingquant demo
  seekingquant demo -v --pretty`,
	Args: cobra.NoArgs,
	RunE: runDemo,
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	const account = "DU1234567"

	level := "warn"
	if verbose {
		level = "debug"
	}
	log := logger.New(logger.Config{Level: level, Pretty: pretty})

	g := sim.New(log)
	g.SetAccounts(account)
	g.SetNextOrderID(10)
	g.SetPositions(
		sim.PositionSpec{Account: account, Symbol: "AAPL", Quantity: 48, AvgCost: 9},
		sim.PositionSpec{Account: account, Symbol: "MSFT", Quantity: 26, AvgCost: 18},
	)
	g.SetLast("AAPL", 10)
	g.SetLast("MSFT", 20)
	g.SetLast("GOOG", 250)

	url, err := g.Listen("127.0.0.1:0")
	if err != nil {
		return fmt.Errorf("start gateway: %w", err)
	}
	ctx := context.Background()
	defer g.Shutdown(ctx)
	fmt.Printf("✓ Simulated gateway listening at %s\n", url)

	s, err := ibgw.Dial(ctx, ibgw.Config{URL: url}, log)
	if err != nil {
		return err
	}
	defer s.Close()
	fmt.Println("✓ Session connected")

	positions, err := s.Positions(ctx, account)
	if err != nil {
		return err
	}

	symbols := make([]string, 0, len(positions))
	for sym := range positions {
		symbols = append(symbols, sym)
	}
	sort.Strings(symbols)

	fmt.Println("\nCurrent holdings:")
	for _, sym := range symbols {
		p := positions[sym]
		fmt.Printf("  %-6s %8.0f @ $%-8.2f = $%.2f\n", sym, p.Quantity, p.Price, p.MarketValue)
	}

	targets := []portfolio.Target{
		{Symbol: "AAPL", Value: 500},
		{Symbol: "GOOG", Value: 500},
		{Symbol: "MSFT", Value: 500},
	}
	ops := portfolio.Plan(positions, targets, portfolio.PlanConfig{
		MinDelta: 5,
		Policy:   portfolio.SellsFirst,
	})

	fmt.Println("\nPlan toward $500.00 per symbol (threshold $5.00, sells first):")
	for _, op := range ops {
		fmt.Printf("  %-9s %-6s $%.2f\n", op.Action, op.Symbol, op.Amount)
	}

	r := portfolio.NewRebalancer(s, portfolio.RebalancerConfig{Account: account}, log)
	movements := r.Execute(ctx, ops)

	rep := report.New("demo", id.New(), movements)
	rep.Params = []report.Param{
		{Name: "Account", Value: account},
		{Name: "Threshold", Value: "$5.00"},
		{Name: "Policy", Value: string(portfolio.SellsFirst)},
		{Name: "Order Type", Value: orderTypeName(false)},
	}
	fmt.Println()
	if err := rep.Render(os.Stdout); err != nil {
		return err
	}

	orders := g.Orders()
	fmt.Printf("\n✓ Gateway accepted %d orders:\n", len(orders))
	for _, o := range orders {
		fmt.Printf("  #%d %s %g %s (%s %s)\n", o.OrderID, o.Action, o.Quantity, o.Symbol, o.Type, o.TIF)
	}
	fmt.Println("\nNothing was journaled and no real orders were placed.")
	return nil
}
