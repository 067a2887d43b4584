package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Tvpower/seekingQuant/journal"
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Query the movement journal",
	Long: `Query and display journaled runs and movements from the SQLite
journal.

Subcommands:
  runs  - List recent runs
  run   - Show one run with its movements
  day   - List movements recorded on a specific day

Examples:
  seekingquant journal runs --limit 10
  seekingquant journal run 01JF8S2VJ4T0FKGWZ0YD0D7R2M
  seekingquant journal day 2026-01-15`,
}

var journalRunsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent runs, newest first",
	Args:  cobra.NoArgs,
	RunE:  runJournalRuns,
}

var journalRunCmd = &cobra.Command{
	Use:   "run <run-id>",
	Short: "Show one run with its movements",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalRun,
}

var journalDayCmd = &cobra.Command{
	Use:   "day <YYYY-MM-DD>",
	Short: "List movements recorded on a specific day",
	Args:  cobra.ExactArgs(1),
	RunE:  runJournalDay,
}

var (
	journalDBPath string
	journalLimit  int
)

func init() {
	rootCmd.AddCommand(journalCmd)
	journalCmd.AddCommand(journalRunsCmd)
	journalCmd.AddCommand(journalRunCmd)
	journalCmd.AddCommand(journalDayCmd)

	journalCmd.PersistentFlags().StringVarP(&journalDBPath, "db", "d", "", "path to SQLite journal DB (default from config)")
	journalRunsCmd.Flags().IntVar(&journalLimit, "limit", 20, "maximum runs to list, 0 for all")
}

// openQueryJournal opens the SQLite journal named by --db, falling back to
// the configured one.
func openQueryJournal() (*journal.SQLite, error) {
	path := journalDBPath
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return nil, err
		}
		if cfg.Journal.Type != "sqlite" || cfg.Journal.DBPath == "" {
			return nil, fmt.Errorf("no SQLite journal configured, pass --db")
		}
		path = cfg.Journal.DBPath
	}

	j, err := journal.NewSQLite(path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	return j, nil
}

func runJournalRuns(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	recs, err := j.ListRuns(journalLimit)
	if err != nil {
		return fmt.Errorf("query runs: %w", err)
	}
	if len(recs) == 0 {
		fmt.Println("No runs journaled yet.")
		return nil
	}

	fmt.Println(journal.FormatRunsOrg(recs))
	return nil
}

func runJournalRun(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	runID := args[0]
	rec, err := j.GetRun(runID)
	if err != nil {
		return fmt.Errorf("get run: %w", err)
	}
	movements, err := j.ListMovementsByRun(runID)
	if err != nil {
		return fmt.Errorf("query movements: %w", err)
	}

	fmt.Println(journal.FormatRunOrg(rec, movements))
	return nil
}

func runJournalDay(cmd *cobra.Command, args []string) error {
	j, err := openQueryJournal()
	if err != nil {
		return err
	}
	defer j.Close()

	start, end, err := dayBounds(time.Local, args[0])
	if err != nil {
		return fmt.Errorf("date: %w", err)
	}

	recs, err := j.ListMovementsBetween(start, end)
	if err != nil {
		return fmt.Errorf("query movements: %w", err)
	}
	if len(recs) == 0 {
		fmt.Printf("No movements journaled on %s.\n", args[0])
		return nil
	}

	fmt.Println(journal.FormatMovementsOrg(recs))
	return nil
}

func dayBounds(loc *time.Location, day string) (time.Time, time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02", day, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	end := start.Add(24 * time.Hour)
	return start, end, nil
}
