package notify

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/gocarina/gocsv"
	"github.com/olekukonko/tablewriter"

	"optionscout/internal/models"
)

// logTailLines limits how much of the per-symbol log lands in a report.
const logTailLines = 20

// BuildReportText renders a ranked run as the plain-text body used for email
// delivery.
func BuildReportText(run models.RankedIdeas) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Scan at %s, horizon %dh, %d symbols\n",
		run.Meta.Timestamp.Format("2006-01-02 15:04"), run.Meta.HorizonHours, len(run.Meta.Universe)))
	sb.WriteString(strings.Repeat("=", 60) + "\n")

	writeSection := func(title string, ideas []models.ScoredIdea) {
		if len(ideas) == 0 {
			return
		}
		sb.WriteString("\n" + title + "\n")
		for _, idea := range ideas {
			c := idea.Contract
			sb.WriteString(fmt.Sprintf("  %-28s %-4s K=%-8.2f mid=%-7.2f roi=%+.1f%% (dP=%+.2f) oi=%d spr=%.1f%%\n",
				c.Symbol, strings.ToUpper(string(c.Type)), c.Strike, c.Mid,
				idea.ExpROI, idea.ExpChange, c.OpenInterest, c.SpreadPct))
		}
	}

	writeSection("TIER 1", run.Tier1)
	writeSection("TIER 2", run.Tier2)
	writeSection("WATCH (no tier qualified)", run.Watch)

	if run.Empty() {
		sb.WriteString("\nNo contracts qualified for any tier.\n")
	}

	if len(run.Logs) > 0 {
		sb.WriteString("\n" + strings.Repeat("-", 60) + "\nLog:\n")
		logs := run.Logs
		if len(logs) > logTailLines {
			logs = logs[len(logs)-logTailLines:]
		}
		for _, line := range logs {
			sb.WriteString("  " + line + "\n")
		}
	}

	return sb.String()
}

// RenderTables writes the ranked run to w as colored terminal tables.
func RenderTables(w io.Writer, run models.RankedIdeas) {
	header := color.New(color.FgCyan, color.Bold)
	header.Fprintf(w, "Scan %s  horizon %dh  universe %d\n",
		run.Meta.Timestamp.Format("2006-01-02 15:04"), run.Meta.HorizonHours, len(run.Meta.Universe))

	renderTier(w, "Tier 1", run.Tier1, color.New(color.FgGreen, color.Bold))
	renderTier(w, "Tier 2", run.Tier2, color.New(color.FgYellow, color.Bold))
	renderTier(w, "Watch", run.Watch, color.New(color.FgMagenta, color.Bold))

	if run.Empty() {
		color.New(color.FgRed).Fprintln(w, "No contracts qualified for any tier.")
	}
}

func renderTier(w io.Writer, title string, ideas []models.ScoredIdea, c *color.Color) {
	if len(ideas) == 0 {
		return
	}
	c.Fprintf(w, "\n%s (%d)\n", title, len(ideas))

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"Contract", "Type", "Strike", "Expiry", "Mid", "Spread%", "OI", "IV", "Exp dP", "Exp ROI"})
	table.SetBorder(false)
	table.SetAutoWrapText(false)

	for _, idea := range ideas {
		ct := idea.Contract
		table.Append([]string{
			ct.Symbol,
			strings.ToUpper(string(ct.Type)),
			fmt.Sprintf("%.2f", ct.Strike),
			ct.Expiry.Format("02-Jan"),
			fmt.Sprintf("%.2f", ct.Mid),
			fmt.Sprintf("%.1f", ct.SpreadPct),
			fmt.Sprintf("%d", ct.OpenInterest),
			fmt.Sprintf("%.1f%%", ct.ImpliedVol*100),
			fmt.Sprintf("%+.2f", idea.ExpChange),
			roiCell(idea.ExpROI),
		})
	}
	table.Render()
}

func roiCell(roi float64) string {
	if math.IsInf(roi, -1) {
		return "n/a"
	}
	return fmt.Sprintf("%+.1f%%", roi)
}

// csvIdea flattens a scored idea for CSV export.
type csvIdea struct {
	Symbol       string  `csv:"symbol"`
	Type         string  `csv:"type"`
	Strike       float64 `csv:"strike"`
	Expiry       string  `csv:"expiry"`
	Mid          float64 `csv:"mid"`
	SpreadPct    float64 `csv:"spread_pct"`
	OpenInterest int64   `csv:"open_interest"`
	ImpliedVol   float64 `csv:"implied_vol"`
	ExpChange    float64 `csv:"exp_change"`
	ExpROI       float64 `csv:"exp_roi"`
	Tier         string  `csv:"tier"`
}

// WriteCSV exports every scored contract of the run, tiers first.
func WriteCSV(w io.Writer, run models.RankedIdeas) error {
	rows := make([]csvIdea, 0, len(run.All))
	for _, idea := range run.All {
		c := idea.Contract
		rows = append(rows, csvIdea{
			Symbol:       c.Symbol,
			Type:         string(c.Type),
			Strike:       c.Strike,
			Expiry:       c.Expiry.Format(time.DateOnly),
			Mid:          c.Mid,
			SpreadPct:    c.SpreadPct,
			OpenInterest: c.OpenInterest,
			ImpliedVol:   c.ImpliedVol,
			ExpChange:    idea.ExpChange,
			ExpROI:       idea.ExpROI,
			Tier:         string(idea.Tier),
		})
	}
	return gocsv.Marshal(&rows, w)
}
