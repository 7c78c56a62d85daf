package http

import (
	"log/slog"
	"net/http"
	"time"

	"nexo/internal/charts"
	"nexo/internal/report"
)

func (s *Server) handleCategoryChart(w http.ResponseWriter, r *http.Request) {
	totals := report.CategoryTotals(s.tracker.Transactions())
	s.writeChart(w, r, func() ([]byte, error) {
		return charts.RenderCategoryPie(totals)
	})
}

func (s *Server) handleWeekChart(w http.ResponseWriter, r *http.Request) {
	days := report.LastDays(s.tracker.Transactions(), time.Now(), weekWindowDays)
	s.writeChart(w, r, func() ([]byte, error) {
		return charts.RenderWeekBar(days)
	})
}

func (s *Server) handleHistoryChart(w http.ResponseWriter, r *http.Request) {
	months := report.MonthlyHistory(s.tracker.Transactions(), time.Now(), historyWindowMonths)
	s.writeChart(w, r, func() ([]byte, error) {
		return charts.RenderHistoryBar(months)
	})
}

func (s *Server) writeChart(w http.ResponseWriter, r *http.Request, render func() ([]byte, error)) {
	png, err := render()
	if err != nil {
		slog.ErrorContext(r.Context(), "Chart rendering failed", "error", err, "url", r.URL.Path)
		writeError(w, http.StatusInternalServerError, "chart rendering failed")
		return
	}
	if png == nil {
		// Nothing to draw yet.
		w.WriteHeader(http.StatusNoContent)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(png)
}
