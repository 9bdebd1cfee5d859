package status

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bnema/pioneer-tx-cli/internal/application"
	"github.com/bnema/pioneer-tx-cli/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const barWidth = 24

type Entry struct {
	Account string
	Count   int
	// Outcome is a failure kind from a finished run, empty when unknown.
	Outcome string
	Detail  string
}

type Report struct {
	Title   string
	Entries []Entry
}

type RenderOptions struct {
	Now   time.Time
	Quota int
}

// FromSnapshot lists the accounts of a progress snapshot in their tracked
// order, followed by any account that only reported a count.
func FromSnapshot(snapshot domain.ProgressSnapshot) Report {
	report := Report{Title: "Daily transfers"}

	seen := make(map[string]bool, len(snapshot.Accounts))
	for _, account := range snapshot.Accounts {
		if seen[account] {
			continue
		}
		seen[account] = true
		report.Entries = append(report.Entries, Entry{Account: account, Count: snapshot.Count(account)})
	}

	extra := make([]string, 0)
	for account := range snapshot.Counts {
		if !seen[account] {
			extra = append(extra, account)
		}
	}
	sort.Strings(extra)
	for _, account := range extra {
		report.Entries = append(report.Entries, Entry{Account: account, Count: snapshot.Count(account)})
	}

	return report
}

func FromResults(results []application.AccountResult) Report {
	report := Report{Title: "Run summary"}
	for _, result := range results {
		entry := Entry{
			Account: result.Account.Label(),
			Count:   result.Session.Final(),
			Outcome: domain.FailureKind(result.Err),
		}
		if result.Err != nil {
			entry.Detail = result.Err.Error()
		}
		report.Entries = append(report.Entries, entry)
	}
	return report
}

func renderView(report Report, opts RenderOptions, s styles) string {
	quota := opts.Quota
	if quota <= 0 {
		quota = domain.DefaultDailyQuota
	}

	title := report.Title
	if title == "" {
		title = "Daily transfers"
	}

	lines := []string{
		s.title.Render(title),
		s.header.Render(fmt.Sprintf("accounts: %d  quota: %d  %s", len(report.Entries), quota, formatReset(opts.Now))),
	}

	if len(report.Entries) == 0 {
		lines = append(lines, s.empty.Render("No accounts tracked."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, entry := range report.Entries {
		lines = append(lines, entryLine(entry, quota, s))
		if entry.Detail != "" {
			lines = append(lines, "  "+s.meta.Render(entry.Detail))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func entryLine(entry Entry, quota int, s styles) string {
	percent := clampPercent(float64(entry.Count) * 100 / float64(quota))
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(percent, 0, 100))

	parts := []string{
		s.account.Render(entry.Account),
		" ",
		renderProgressBar(percent, barWidth, s),
		" ",
		percentStyle.Render(fmt.Sprintf("%d/%d", entry.Count, quota)),
	}

	switch {
	case entry.Outcome != "" && entry.Outcome != "ok":
		parts = append(parts, " ", s.failure.Render("["+entry.Outcome+"]"))
	case entry.Count >= quota:
		parts = append(parts, " ", s.done.Render("done"))
	}

	return lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

func renderProgressBar(percent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(percent) / 100))
	filled = max(0, min(width, filled))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// formatReset describes when the ledger day rolls over, at 00:00 UTC.
func formatReset(now time.Time) string {
	if now.IsZero() {
		return "resets 00:00 UTC"
	}

	now = now.UTC()
	next := time.Date(now.Year(), now.Month(), now.Day()+1, 0, 0, 0, 0, time.UTC)
	remaining := next.Sub(now)

	if remaining < time.Hour {
		minutes := max(1, int(math.Ceil(remaining.Minutes())))
		return fmt.Sprintf("resets in %d min (00:00 UTC)", minutes)
	}

	hours := int(math.Ceil(remaining.Hours()))
	suffix := "hours"
	if hours == 1 {
		suffix = "hour"
	}
	return fmt.Sprintf("resets in %d %s (00:00 UTC)", hours, suffix)
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, lo, hi float64) lipgloss.Color {
	if hi == lo {
		return lipgloss.Color("255")
	}

	normalized := (value - lo) / (hi - lo)
	normalized = math.Max(0, math.Min(1, normalized))

	return lipgloss.Color(fmt.Sprintf("%d", int(240+15*normalized)))
}
