// Package report renders a run's movements into the text artifact the
// engine leaves behind, on screen and under the reports directory.
package report

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"
	"time"

	"github.com/Tvpower/seekingQuant/portfolio"
)

// Param is one run parameter echoed in the report header.
type Param struct {
	Name  string
	Value string
}

// Report is everything the artifact shows for one run. Err carries a
// batch-level failure; the report is still rendered around it.
type Report struct {
	Title     string
	Mode      string
	RunID     string
	Time      time.Time
	Params    []Param
	Err       string
	Movements []portfolio.Movement
}

func New(mode, runID string, movements []portfolio.Movement) *Report {
	return &Report{
		Title:     strings.ToUpper(strings.ReplaceAll(mode, "_", " ")) + " REPORT",
		Mode:      mode,
		RunID:     runID,
		Time:      time.Now(),
		Movements: movements,
	}
}

// Render writes the full text report to w.
func (r *Report) Render(w io.Writer) error {
	t, err := template.New("report").Funcs(reportFuncs).Parse(reportTemplate)
	if err != nil {
		return err
	}

	buf := new(bytes.Buffer)
	if err := t.Execute(buf, r.view()); err != nil {
		return err
	}
	_, err = w.Write(buf.Bytes())
	return err
}

// Write renders the report into dir, creating it if needed, and returns
// the path of the file written.
func (r *Report) Write(dir string) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s_%s_%s.txt", r.Mode, r.Time.Format("20060102_150405"), r.RunID)
	path := filepath.Join(dir, name)

	buf := new(bytes.Buffer)
	if err := r.Render(buf); err != nil {
		return "", err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return "", err
	}
	return path, nil
}

// view holds the derived numbers and pre-formatted rows the template
// prints.
type view struct {
	Title  string
	Stamp  string
	RunID  string
	Params []Param
	Err    string

	Total     int
	Buys      int
	BuyTotal  float64
	Sells     int
	SellTotal float64
	Holds     int
	Failed    int
	Net       float64
	Degraded  int

	Rows []string
}

func (r *Report) view() view {
	v := view{
		Title:  r.Title,
		Stamp:  r.Time.Format("2006-01-02 15:04:05"),
		RunID:  r.RunID,
		Params: r.Params,
		Err:    r.Err,
		Total:  len(r.Movements),
	}
	for _, m := range r.Movements {
		switch m.Action {
		case portfolio.ActionBuy, portfolio.ActionBuyNew:
			v.Buys++
			v.BuyTotal += m.Amount
		case portfolio.ActionSell, portfolio.ActionSellAll:
			v.Sells++
			v.SellTotal += m.Amount
		case portfolio.ActionHold:
			v.Holds++
		default:
			if m.Action.Failed() {
				v.Failed++
			}
		}
		if m.Degraded {
			v.Degraded++
		}
	}
	v.Net = v.BuyTotal - v.SellTotal

	sorted := make([]portfolio.Movement, len(r.Movements))
	copy(sorted, r.Movements)
	sort.SliceStable(sorted, func(i, j int) bool {
		ri, rj := actionRank(sorted[i].Action), actionRank(sorted[j].Action)
		if ri != rj {
			return ri < rj
		}
		return sorted[i].Symbol < sorted[j].Symbol
	})
	for _, m := range sorted {
		v.Rows = append(v.Rows, formatRow(m))
	}
	return v
}

// actionRank fixes the display grouping of the detailed table.
func actionRank(a portfolio.Action) int {
	switch a {
	case portfolio.ActionBuyNew:
		return 1
	case portfolio.ActionBuy:
		return 2
	case portfolio.ActionSell:
		return 3
	case portfolio.ActionSellAll:
		return 4
	case portfolio.ActionHold:
		return 5
	case portfolio.ActionBuyFail:
		return 6
	case portfolio.ActionSellFail:
		return 7
	default:
		return 99
	}
}

func formatRow(m portfolio.Movement) string {
	sym := m.Symbol
	if m.Degraded {
		sym += "*"
	}
	amount := "-"
	if m.Amount != 0 {
		amount = fmt.Sprintf("$%.2f", m.Amount)
	}
	return fmt.Sprintf("%-8s %-12s %-12s %-12s %-12s %s",
		sym,
		string(m.Action),
		fmt.Sprintf("$%.2f", m.CurrentValue),
		fmt.Sprintf("$%.2f", m.TargetValue),
		amount,
		m.Reason,
	)
}

var reportFuncs = template.FuncMap{
	"rule": func(c string) string { return strings.Repeat(c, 70) },
}

const reportTemplate = `{{rule "="}}
      {{.Title}}
{{rule "="}}
Timestamp: {{.Stamp}}
Run ID: {{.RunID}}
{{- range .Params}}
{{.Name}}: {{.Value}}
{{- end}}
{{rule "="}}

{{if .Err}}ERROR OCCURRED: {{.Err}}

{{end -}}
SUMMARY
{{rule "-"}}
Total Movements: {{.Total}}
  - BUY Orders:    {{printf "%3d" .Buys}}  (Total: ${{printf "%10.2f" .BuyTotal}})
  - SELL Orders:   {{printf "%3d" .Sells}}  (Total: ${{printf "%10.2f" .SellTotal}})
{{- if .Holds}}
  - HOLD:          {{printf "%3d" .Holds}}
{{- end}}
{{- if .Failed}}
  - FAILED:        {{printf "%3d" .Failed}}
{{- end}}
Net Cash Movement: ${{printf "%+.2f" .Net}}
{{rule "-"}}

DETAILED MOVEMENTS
{{rule "-"}}
{{printf "%-8s %-12s %-12s %-12s %-12s %s" "Symbol" "Action" "Current" "Target" "Amount" "Reason"}}
{{rule "-"}}
{{- range .Rows}}
{{.}}
{{- end}}
{{rule "-"}}
{{- if .Degraded}}

* position valued at cost basis (no live price)
{{- end}}

End of Report
`
