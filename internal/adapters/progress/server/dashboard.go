package server

import (
	"bytes"
	"embed"
	"html/template"
	"log/slog"
	"net/http"
	"sort"

	"github.com/bnema/pioneer-tx-cli/internal/domain"
)

//go:embed templates/index.html
var templatesFS embed.FS

var dashboardTemplate = template.Must(template.ParseFS(templatesFS, "templates/index.html"))

type dashboardRow struct {
	Account string
	Count   int
	Percent int
	Done    bool
}

type dashboardView struct {
	Quota int
	Rows  []dashboardRow
	Total int
}

func newDashboardView(snapshot domain.ProgressSnapshot, quota int) dashboardView {
	view := dashboardView{Quota: quota, Rows: make([]dashboardRow, 0, len(snapshot.Counts))}

	seen := make(map[string]bool, len(snapshot.Accounts))
	add := func(account string) {
		count := snapshot.Count(account)
		percent := 0
		if quota > 0 {
			percent = min(100, count*100/quota)
		}
		view.Rows = append(view.Rows, dashboardRow{Account: account, Count: count, Percent: percent, Done: count >= quota})
		view.Total += count
	}

	for _, account := range snapshot.Accounts {
		if seen[account] {
			continue
		}
		seen[account] = true
		add(account)
	}

	// Accounts that reported a count without being listed go last.
	var extra []string
	for account := range snapshot.Counts {
		if !seen[account] {
			extra = append(extra, account)
		}
	}
	sort.Strings(extra)
	for _, account := range extra {
		add(account)
	}

	return view
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.store.Snapshot(r.Context())
	if err != nil {
		s.logger.Error("snapshot failed", slog.String("error", err.Error()))
		http.Error(w, "store unavailable", http.StatusInternalServerError)
		return
	}

	var buf bytes.Buffer
	if err := dashboardTemplate.Execute(&buf, newDashboardView(snapshot, s.cfg.Quota)); err != nil {
		s.logger.Error("render dashboard failed", slog.String("error", err.Error()))
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(buf.Bytes())
}
