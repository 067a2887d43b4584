package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
	"github.com/Tvpower/seekingQuant/portfolio"
	"github.com/Tvpower/seekingQuant/report"
)

var buyCmd = &cobra.Command{
	Use:   "buy [symbols...]",
	Short: "Trade a flat dollar amount of each pick",
	Long: `Buy (or sell) a flat dollar amount of each listed symbol, no delta
computation.

Picks come from the command line or a file (--file) with one symbol per
line, optionally followed by BUY or SELL and a per-line amount. The
default per-symbol amount comes from --amount, the config, or
TRADE_AMOUNT.

Examples:
  seekingquant buy AAPL MSFT --amount 500
  seekingquant buy --file picks.txt --limit
  seekingquant buy GOOG --dry-run`,
	Args: cobra.ArbitraryArgs,
	RunE: runBuy,
}

var (
	buyFile   string
	buyAmount float64
	buyLimit  bool
	buyDryRun bool
)

func init() {
	rootCmd.AddCommand(buyCmd)

	buyCmd.Flags().StringVarP(&buyFile, "file", "f", "", "picks file: SYMBOL [BUY|SELL] [AMOUNT] per line")
	buyCmd.Flags().Float64Var(&buyAmount, "amount", 0, "dollar amount per symbol (default from config)")
	buyCmd.Flags().BoolVar(&buyLimit, "limit", false, "submit overnight-capable limit orders instead of market orders")
	buyCmd.Flags().BoolVar(&buyDryRun, "dry-run", false, "report without submitting")
}

func runBuy(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	amount := cfg.Rebalance.TradeAmount
	if cmd.Flags().Changed("amount") {
		amount = buyAmount
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %.2f", amount)
	}

	var dirs []portfolio.Directive
	switch {
	case buyFile != "" && len(args) > 0:
		return errors.New("give symbols or --file, not both")
	case buyFile != "":
		f, err := os.Open(buyFile)
		if err != nil {
			return fmt.Errorf("open picks: %w", err)
		}
		dirs, err = portfolio.ParseDirectives(f, amount)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", buyFile, err)
		}
	case len(args) > 0:
		seen := make(map[string]bool, len(args))
		for _, arg := range args {
			sym := market.Normalize(strings.ToUpper(arg))
			if seen[sym] {
				continue
			}
			seen[sym] = true
			dirs = append(dirs, portfolio.Directive{Symbol: sym, Action: broker.Buy, Amount: amount})
		}
	default:
		return errors.New("nothing to trade: give symbols or --file")
	}

	policy := portfolio.OrderPolicy(cfg.Rebalance.OrderPolicy)
	limit := buyLimit || cfg.Rebalance.LimitOrders
	ops := portfolio.DirectiveOperations(dirs, policy)

	params := []report.Param{
		{Name: "Amount", Value: fmt.Sprintf("$%.2f per symbol", amount)},
		{Name: "Order Type", Value: orderTypeName(limit)},
	}

	if buyDryRun {
		return finishRun(cfg, log, "buy", accountFlag, true, params, portfolio.Preview(ops), nil)
	}

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
	params = append(params, report.Param{Name: "Account", Value: accountLabel(account)})

	ok, err := confirmBatch(fmt.Sprintf("Submit %d orders to account %s?", len(ops), accountLabel(account)))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted, nothing submitted.")
		return nil
	}

	spacing, err := cfg.Rebalance.ParseOrderSpacing()
	if err != nil {
		return err
	}
	r := portfolio.NewRebalancer(s, portfolio.RebalancerConfig{
		Account:      account,
		LimitOrders:  limit,
		OrderSpacing: spacing,
	}, log)
	movements := r.Execute(ctx, ops)

	var runErr error
	if len(movements) < len(ops) {
		runErr = fmt.Errorf("batch aborted after %d of %d movements", len(movements), len(ops))
	}
	return finishRun(cfg, log, "buy", account, false, params, movements, runErr)
}
