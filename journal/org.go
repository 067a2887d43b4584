package journal

import (
	"fmt"
	"strings"
	"time"
)

// FormatRunOrg renders a run as an Org-mode block suitable for pasting into
// a trading journal. Structured facts live in a PROPERTIES drawer for easy
// search; the run's movements follow as an Org table, and a Review section
// is left open for notes.
func FormatRunOrg(r RunRecord, movements []MovementRecord) string {
	heading := fmt.Sprintf("** Run: %s (%s)", r.Mode, shortID(r.RunID))

	var b strings.Builder
	b.WriteString(heading)
	b.WriteString("\n")
	b.WriteString(":PROPERTIES:\n")
	b.WriteString(fmt.Sprintf(":RUN_ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":ID: %s\n", r.RunID))
	b.WriteString(fmt.Sprintf(":MODE: %s\n", r.Mode))
	if r.Account != "" {
		b.WriteString(fmt.Sprintf(":ACCOUNT: %s\n", r.Account))
	}
	b.WriteString(fmt.Sprintf(":TIME: %s\n", r.Time.UTC().Format(time.RFC3339)))
	b.WriteString(fmt.Sprintf(":DRY_RUN: %t\n", r.DryRun))
	if r.Params != "" {
		b.WriteString(fmt.Sprintf(":PARAMS: %s\n", r.Params))
	}
	b.WriteString(":END:\n")
	if len(movements) > 0 {
		b.WriteString("\n")
		b.WriteString(FormatMovementsOrg(movements))
	}
	b.WriteString("\n*** Review\n- \n")

	return b.String()
}

// FormatRunsOrg renders runs as an Org table, one line each, in the order
// given.
func FormatRunsOrg(runs []RunRecord) string {
	if len(runs) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| Time (UTC) | Run ID | Mode | Account | Dry |\n")
	b.WriteString("|------------+--------+------+---------+-----|\n")
	for _, r := range runs {
		dry := ""
		if r.DryRun {
			dry = "yes"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %s |\n",
			r.Time.UTC().Format("2006-01-02 15:04"), r.RunID, r.Mode, r.Account, dry))
	}
	return b.String()
}

// FormatMovementsOrg renders movements as an Org table. Cost-basis
// valuations are marked with * on the symbol.
func FormatMovementsOrg(movements []MovementRecord) string {
	if len(movements) == 0 {
		return ""
	}

	var b strings.Builder
	b.WriteString("| Time (UTC) | Run | Symbol | Action | Current | Target | Amount | Reason |\n")
	b.WriteString("|------------+-----+--------+--------+---------+--------+--------+--------|\n")
	for _, m := range movements {
		sym := m.Symbol
		if m.Degraded {
			sym += "*"
		}
		b.WriteString(fmt.Sprintf("| %s | %s | %s | %s | %.2f | %.2f | %.2f | %s |\n",
			m.Time.UTC().Format("2006-01-02 15:04"), shortID(m.RunID), sym, m.Action,
			m.CurrentValue, m.TargetValue, m.Amount, m.Reason))
	}
	return b.String()
}

func shortID(full string) string {
	if len(full) <= 8 {
		return full
	}
	return full[:8]
}
