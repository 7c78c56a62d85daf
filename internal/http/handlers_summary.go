package http

import (
	"log/slog"
	"net/http"
	"time"

	"nexo/internal/report"
)

const (
	weekWindowDays      = 7
	historyWindowMonths = 6
)

func (s *Server) handleMonthSummary(w http.ResponseWriter, r *http.Request) {
	now := time.Now()
	year, month := yearMonthParams(r, now)
	key := s.summaryCacheKey(year, int(month))

	if summary, found := s.summaryCache.Get(key); found {
		slog.DebugContext(r.Context(), "Summary cache hit", "year", year, "month", int(month))
		writeJSON(w, http.StatusOK, summary)
		return
	}

	ref := time.Date(year, month, 1, 0, 0, 0, 0, now.Location())
	summary := report.SummarizeMonth(s.tracker.Transactions(), s.tracker.Accounts(), ref)
	s.summaryCache.Set(key, summary)
	writeJSON(w, http.StatusOK, summary)
}

func (s *Server) handleCategorySummary(w http.ResponseWriter, r *http.Request) {
	totals := report.CategoryTotals(s.tracker.Transactions())
	if totals == nil {
		totals = []report.CategoryTotal{}
	}
	writeJSON(w, http.StatusOK, totals)
}

func (s *Server) handleWeekSummary(w http.ResponseWriter, r *http.Request) {
	days := report.LastDays(s.tracker.Transactions(), time.Now(), weekWindowDays)
	writeJSON(w, http.StatusOK, days)
}

func (s *Server) handleHistorySummary(w http.ResponseWriter, r *http.Request) {
	months := report.MonthlyHistory(s.tracker.Transactions(), time.Now(), historyWindowMonths)
	writeJSON(w, http.StatusOK, months)
}
