package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rs/zerolog"

	"github.com/Tvpower/seekingQuant/broker/ibgw"
	"github.com/Tvpower/seekingQuant/config"
	"github.com/Tvpower/seekingQuant/journal"
	"github.com/Tvpower/seekingQuant/pkg/id"
	"github.com/Tvpower/seekingQuant/pkg/logger"
	"github.com/Tvpower/seekingQuant/portfolio"
	"github.com/Tvpower/seekingQuant/report"
)

// flags shared across commands, set on the root command
var (
	cfgPath     string
	accountFlag string
	yesFlag     bool
	verbose     bool
	pretty      bool
)

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, err
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	if pretty {
		cfg.Log.Pretty = true
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	return logger.New(logger.Config{Level: cfg.Log.Level, Pretty: cfg.Log.Pretty})
}

func dialSession(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*ibgw.Session, error) {
	s, err := ibgw.Dial(ctx, ibgw.Config{
		Host:             cfg.Broker.Host,
		Port:             cfg.Broker.Port,
		ClientID:         cfg.Broker.ClientID,
		FractionalShares: cfg.Rebalance.Fractional,
	}, log)
	if err != nil {
		return nil, fmt.Errorf("connect gateway: %w", err)
	}
	return s, nil
}

// resolveAccount decides which account orders route to: the --account
// flag, the configured account, the only managed account, or an
// interactive choice when the gateway manages several.
func resolveAccount(ctx context.Context, s *ibgw.Session, cfg *config.Config) (string, error) {
	account := cfg.Broker.Account
	if accountFlag != "" {
		account = accountFlag
	}

	managed, err := s.ManagedAccounts(ctx)
	if err != nil {
		return "", fmt.Errorf("list accounts: %w", err)
	}
	if account != "" {
		for _, a := range managed {
			if a == account {
				return account, nil
			}
		}
		return "", fmt.Errorf("account %s is not managed by this session (have %s)", account, strings.Join(managed, ", "))
	}

	switch len(managed) {
	case 0:
		return "", nil
	case 1:
		return managed[0], nil
	}
	if yesFlag {
		return "", fmt.Errorf("%d accounts managed; pick one with --account", len(managed))
	}
	return selectAccount(managed)
}

// openJournal returns the configured journal, or nil when journaling is
// off.
func openJournal(cfg *config.Config) (journal.Journal, error) {
	switch cfg.Journal.Type {
	case "sqlite":
		return journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		return journal.NewCSV(cfg.Journal.RunsFile, cfg.Journal.MovementsFile)
	default:
		return nil, nil
	}
}

// finishRun is every trading command's common tail: render the report,
// write it under the reports directory, and journal the run. It returns
// runErr so a partial batch still exits non-zero after reporting.
func finishRun(cfg *config.Config, log zerolog.Logger, mode, account string, dryRun bool, params []report.Param, movements []portfolio.Movement, runErr error) error {
	runID := id.New()

	rep := report.New(mode, runID, movements)
	rep.Params = params
	if runErr != nil {
		rep.Err = runErr.Error()
	}

	fmt.Println()
	if err := rep.Render(os.Stdout); err != nil {
		return fmt.Errorf("render report: %w", err)
	}

	path, err := rep.Write(cfg.ReportsDir)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	fmt.Printf("\n✓ Report written: %s\n", path)

	j, err := openJournal(cfg)
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	if j != nil {
		defer j.Close()
		run := journal.RunRecord{
			RunID:   runID,
			Time:    rep.Time,
			Mode:    mode,
			Account: account,
			DryRun:  dryRun,
			Params:  formatParams(params),
		}
		if err := journal.Append(j, run, movements); err != nil {
			return fmt.Errorf("journal run: %w", err)
		}
		log.Debug().Str("run_id", runID).Int("movements", len(movements)).Msg("run journaled")
	}
	return runErr
}

func formatParams(params []report.Param) string {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		parts = append(parts, p.Name+"="+p.Value)
	}
	return strings.Join(parts, " ")
}

func accountLabel(account string) string {
	if account == "" {
		return "default"
	}
	return account
}

func orderTypeName(limit bool) string {
	if limit {
		return "limit (2% through price, outside RTH, GTC)"
	}
	return "market (RTH, DAY)"
}
