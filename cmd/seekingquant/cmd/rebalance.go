package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tvpower/seekingQuant/portfolio"
	"github.com/Tvpower/seekingQuant/report"
)

var rebalanceCmd = &cobra.Command{
	Use:   "rebalance",
	Short: "Rebalance holdings toward target dollar values",
	Long: `Rebalance the account toward per-symbol dollar targets.

Targets come from a file (--file) or an equal dollar value applied to
every currently held symbol (--target, the maintenance mode). Deltas
smaller than the threshold hold; held symbols missing from the targets
are sold in full; targeted symbols not held are bought in full. Sells
are submitted before buys unless the policy says otherwise.

Examples:
  seekingquant rebalance --file targets.txt
  seekingquant rebalance --target 500 --threshold 5
  seekingquant rebalance --file targets.txt --limit --dry-run`,
	RunE: runRebalance,
}

var (
	rebalanceFile      string
	rebalanceTarget    float64
	rebalanceThreshold float64
	rebalancePolicy    string
	rebalanceLimit     bool
	rebalanceDryRun    bool
)

func init() {
	rootCmd.AddCommand(rebalanceCmd)

	rebalanceCmd.Flags().StringVarP(&rebalanceFile, "file", "f", "", "targets file: SYMBOL VALUE per line")
	rebalanceCmd.Flags().Float64VarP(&rebalanceTarget, "target", "t", 0, "equal dollar target per held symbol (default from config)")
	rebalanceCmd.Flags().Float64Var(&rebalanceThreshold, "threshold", 0, "minimum dollar delta worth an order (default from config)")
	rebalanceCmd.Flags().StringVar(&rebalancePolicy, "policy", "", "submission order: sells_first or buys_first (default from config)")
	rebalanceCmd.Flags().BoolVar(&rebalanceLimit, "limit", false, "submit overnight-capable limit orders instead of market orders")
	rebalanceCmd.Flags().BoolVar(&rebalanceDryRun, "dry-run", false, "plan and report without submitting")
}

func runRebalance(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := newLogger(cfg)

	var fileTargets []portfolio.Target
	if rebalanceFile != "" {
		f, err := os.Open(rebalanceFile)
		if err != nil {
			return fmt.Errorf("open targets: %w", err)
		}
		fileTargets, err = portfolio.ParseTargets(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("parse %s: %w", rebalanceFile, err)
		}
	}

	threshold := cfg.Rebalance.MinDelta
	if cmd.Flags().Changed("threshold") {
		threshold = rebalanceThreshold
	}
	policy := portfolio.OrderPolicy(cfg.Rebalance.OrderPolicy)
	if rebalancePolicy != "" {
		policy = portfolio.OrderPolicy(rebalancePolicy)
		if !policy.Valid() {
			return fmt.Errorf("unknown policy %q", rebalancePolicy)
		}
	}
	limit := rebalanceLimit || cfg.Rebalance.LimitOrders

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

	current, err := s.Positions(ctx, account)
	if err != nil {
		return fmt.Errorf("positions: %w", err)
	}

	targets := fileTargets
	if targets == nil {
		value := cfg.Rebalance.TargetValue
		if cmd.Flags().Changed("target") {
			value = rebalanceTarget
		}
		if value <= 0 {
			return fmt.Errorf("flat target must be positive, got %.2f", value)
		}
		if len(current) == 0 {
			return errors.New("no positions held; flat mode rebalances existing holdings")
		}
		targets = portfolio.FlatTargets(current, value)
	}

	ops := portfolio.Plan(current, targets, portfolio.PlanConfig{MinDelta: threshold, Policy: policy})
	orders := 0
	for _, op := range ops {
		if op.Action != portfolio.ActionHold {
			orders++
		}
	}
	fmt.Printf("Planned %d movements (%d orders) from %d positions and %d targets\n",
		len(ops), orders, len(current), len(targets))

	params := []report.Param{
		{Name: "Account", Value: accountLabel(account)},
		{Name: "Threshold", Value: fmt.Sprintf("$%.2f", threshold)},
		{Name: "Policy", Value: string(policy)},
		{Name: "Order Type", Value: orderTypeName(limit)},
	}

	if rebalanceDryRun {
		return finishRun(cfg, log, "rebalance", account, true, params, portfolio.Preview(ops), nil)
	}

	if orders > 0 {
		ok, err := confirmBatch(fmt.Sprintf("Submit %d orders to account %s?", orders, accountLabel(account)))
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Aborted, nothing submitted.")
			return nil
		}
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
	return finishRun(cfg, log, "rebalance", account, false, params, movements, runErr)
}
