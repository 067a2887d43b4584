package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Tvpower/seekingQuant/broker"
	"github.com/Tvpower/seekingQuant/market"
	"github.com/Tvpower/seekingQuant/portfolio"
	"github.com/Tvpower/seekingQuant/report"
)

var orderCmd = &cobra.Command{
	Use:   "order <BUY|SELL> <SYMBOL>",
	Short: "Place a single dollar-denominated order",
	Long: `Place one order sized by dollar amount.

The amount converts to shares at a freshly resolved price (previous
close accepted as a fallback). Market orders stay inside regular hours
with DAY time-in-force; --limit prices 2% through the resolved price,
good till cancelled and allowed outside regular hours.

Examples:
  seekingquant order BUY AAPL --amount 100
  seekingquant order SELL MSFT --amount 250 --limit`,
	Args: cobra.ExactArgs(2),
	RunE: runOrder,
}

var (
	orderAmount float64
	orderLimit  bool
)

func init() {
	rootCmd.AddCommand(orderCmd)

	orderCmd.Flags().Float64Var(&orderAmount, "amount", 0, "dollar amount (default from config)")
	orderCmd.Flags().BoolVar(&orderLimit, "limit", false, "overnight-capable limit order instead of a market order")
}

func runOrder(cmd *cobra.Command, args []string) error {
	action := broker.Action(strings.ToUpper(args[0]))
	if action != broker.Buy && action != broker.Sell {
		return fmt.Errorf("action must be BUY or SELL, got %q", args[0])
	}
	symbol := market.Normalize(strings.ToUpper(args[1]))

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	amount := cfg.Rebalance.TradeAmount
	if cmd.Flags().Changed("amount") {
		amount = orderAmount
	}
	if amount <= 0 {
		return fmt.Errorf("amount must be positive, got %.2f", amount)
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

	ok, err := confirmBatch(fmt.Sprintf("%s $%.2f of %s in account %s?", action, amount, symbol, accountLabel(account)))
	if err != nil {
		return err
	}
	if !ok {
		fmt.Println("Aborted, nothing submitted.")
		return nil
	}

	ack, placeErr := s.PlaceDollarOrder(ctx, broker.OrderSpec{
		Symbol:  symbol,
		Action:  action,
		Amount:  amount,
		Limit:   orderLimit,
		Account: account,
	})

	mv := portfolio.Movement{Symbol: symbol, Amount: amount}
	if placeErr != nil {
		mv.Action = portfolio.ActionBuyFail
		if action == broker.Sell {
			mv.Action = portfolio.ActionSellFail
		}
		mv.Reason = placeErr.Error()
		fmt.Printf("✗ Order not submitted: %v\n", placeErr)
	} else {
		mv.Action = portfolio.ActionBuy
		if action == broker.Sell {
			mv.Action = portfolio.ActionSell
		}
		mv.Reason = fmt.Sprintf("order %d: %s %.4f shares at ref $%.2f", ack.OrderID, ack.Status, ack.Quantity, ack.Price)
		fmt.Printf("✓ Order %d %s: %s %.4f %s at ref $%.2f", ack.OrderID, ack.Status, ack.Action, ack.Quantity, ack.Symbol, ack.Price)
		if ack.LimitPrice > 0 {
			fmt.Printf(" (limit $%.2f)", ack.LimitPrice)
		}
		fmt.Println()
	}

	params := []report.Param{
		{Name: "Account", Value: accountLabel(account)},
		{Name: "Order Type", Value: orderTypeName(orderLimit)},
	}
	return finishRun(cfg, log, "order", account, false, params, []portfolio.Movement{mv}, placeErr)
}
