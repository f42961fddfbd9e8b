package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/guregu/null/v6"

	"github.com/wonny/hunter/internal/contracts"
	"github.com/wonny/hunter/internal/screener"
)

// ═══════════════════════════════════════════════════════════
// Common Formatting Utilities
// 모든 커맨드가 동일한 출력 포맷을 사용하도록 통일
// ═══════════════════════════════════════════════════════════

const (
	doubleLine = "═══════════════════════════════════════════════════════════"
	singleLine = "───────────────────────────────────────────────────────────"
)

// printHeader prints a titled block of key-value lines
func printHeader(w io.Writer, title string, fields [][2]string) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, doubleLine)
	fmt.Fprintf(w, "  %s\n", title)
	fmt.Fprintln(w, singleLine)
	for _, f := range fields {
		fmt.Fprintf(w, "  %-11s: %s\n", f[0], f[1])
	}
	fmt.Fprintln(w, singleLine)
}

// printWarning prints a warning message
func printWarning(w io.Writer, message string) {
	fmt.Fprintf(w, "⚠️  %s\n", message)
}

// printSuccess prints a success message
func printSuccess(w io.Writer, message string) {
	fmt.Fprintf(w, "✅ %s\n", message)
}

// printInfo prints an info message
func printInfo(w io.Writer, message string) {
	fmt.Fprintf(w, "ℹ️  %s\n", message)
}

// printJSON writes v as indented JSON
func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printReport renders a scan report as a ranked table
func printReport(w io.Writer, r *screener.ScanReport, top int, reasons bool) {
	universe := r.Universe.Source
	if r.Universe.Category != "" {
		universe = fmt.Sprintf("%s (%s)", r.Universe.Category, r.Universe.Source)
	}

	printHeader(w, "Multibagger Scan", [][2]string{
		{"Scan ID", r.ID},
		{"Universe", fmt.Sprintf("%s, %d symbols", universe, r.Universe.Size)},
		{"Regime", regimeLine(r)},
		{"Weights", fmt.Sprintf("T %.2f / F %.2f / R %.2f", r.Weights.Technical, r.Weights.Fundamental, r.Weights.Risk)},
		{"Lookback", string(r.Lookback)},
		{"Strategy", fmt.Sprintf("%s (%s)", r.StrategyID, shortHash(r.StrategyHash))},
	})

	if r.Universe.Degraded {
		printWarning(w, fmt.Sprintf("Universe served from static list: %s", r.Universe.Reason))
	}
	if r.Truncated {
		printWarning(w, fmt.Sprintf("Deadline reached: %d of %d symbols fetched", r.Fetched, r.Requested))
	}

	switch r.Outcome {
	case screener.OutcomeNoData:
		printWarning(w, r.Message)
		return
	case screener.OutcomeNoneQualified:
		printInfo(w, fmt.Sprintf("No symbol reached %.1f%% (%d scored)", r.MinThreshold, r.Scored))
		return
	}

	records := r.Records
	if top > 0 && top < len(records) {
		records = records[:top]
	}
	printRecords(w, records)

	if reasons {
		for _, rec := range records {
			printReasons(w, rec)
		}
	}

	fmt.Fprintln(w)
	printSuccess(w, fmt.Sprintf("%d qualified of %d scored (%d dropped) in %.1fs",
		len(r.Records), r.Scored, len(r.Dropped), r.FinishedAt.Sub(r.StartedAt).Seconds()))
}

// printRecords prints one row per record
func printRecords(w io.Writer, records []contracts.ScoreRecord) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tSYMBOL\tOVERALL\tTECH\tFUND\tRISK\tCLOSE\tMCAP\tSECTOR")
	for _, rec := range records {
		fmt.Fprintf(tw, "%d\t%s\t%.1f%%\t%s\t%s\t%s\t%s\t%s\t%s\n",
			rec.Rank,
			rec.Symbol,
			rec.Overall,
			subScore(rec.Technical),
			subScore(rec.Fundamental),
			subScore(rec.Risk),
			optFloat(rec.Snapshot.LastClose, "%.2f"),
			optCompact(rec.Snapshot.MarketCap),
			rec.Snapshot.Sector.ValueOrZero(),
		)
	}
	tw.Flush()
}

// printReasons lists the unmet criteria of one record
func printReasons(w io.Writer, rec contracts.ScoreRecord) {
	fmt.Fprintln(w)
	fmt.Fprintf(w, "  %s  %.1f%%", rec.Symbol, rec.Overall)
	if rec.Dampener < 1 {
		fmt.Fprintf(w, "  (dampened ×%.2f)", rec.Dampener)
	}
	fmt.Fprintln(w)
	if len(rec.Reasons) == 0 {
		fmt.Fprintln(w, "   • all criteria met")
	}
	for _, reason := range rec.Reasons {
		fmt.Fprintf(w, "   • %s\n", reason)
	}
	if len(rec.Sources) > 0 {
		kinds := make([]string, 0, len(rec.Sources))
		for k := range rec.Sources {
			kinds = append(kinds, string(k))
		}
		sort.Strings(kinds)
		parts := make([]string, len(kinds))
		for i, k := range kinds {
			parts[i] = k + "=" + rec.Sources[contracts.DataKind(k)]
		}
		fmt.Fprintf(w, "   sources: %s\n", strings.Join(parts, ", "))
	}
}

func regimeLine(r *screener.ScanReport) string {
	g := r.Regime
	if g.Index == "" {
		return "not evaluated"
	}
	line := fmt.Sprintf("%s %s (×%.2f)", g.Index, g.State, g.Dampener)
	if g.Reason != "" {
		line += ", " + g.Reason
	}
	return line
}

func subScore(s contracts.SubScore) string {
	return fmt.Sprintf("%.0f/%.0f", s.Score, s.Max)
}

func optFloat(v null.Float, format string) string {
	if !v.Valid {
		return "-"
	}
	return fmt.Sprintf(format, v.Float64)
}

func optCompact(v null.Float) string {
	if !v.Valid {
		return "-"
	}
	x := v.Float64
	switch {
	case x >= 1e12:
		return fmt.Sprintf("%.1fT", x/1e12)
	case x >= 1e9:
		return fmt.Sprintf("%.1fB", x/1e9)
	case x >= 1e6:
		return fmt.Sprintf("%.1fM", x/1e6)
	default:
		return fmt.Sprintf("%.0f", x)
	}
}

func shortHash(h string) string {
	if len(h) > 12 {
		return h[:12]
	}
	return h
}
