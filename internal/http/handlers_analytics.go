package http

import (
	"fmt"
	"net/http"
)

// cached serves a derived view from the analytics cache, computing it at
// most once per key between ledger writes.
func (s *Server) cached(w http.ResponseWriter, key string, compute func() any) {
	if v, ok := s.analyticsCache.Get(key); ok {
		writeJSON(w, http.StatusOK, v)
		return
	}
	v := compute()
	s.analyticsCache.Set(key, v)
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleMonthlyData(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 6, 1, 60)
	s.cached(w, fmt.Sprintf("monthly:%d", months), func() any {
		return s.analytics.MonthlyData(r.Context(), months)
	})
}

func (s *Server) handleCurrentMonth(w http.ResponseWriter, r *http.Request) {
	s.cached(w, "current-month", func() any {
		return s.analytics.CurrentMonthData(r.Context())
	})
}

func (s *Server) handleDailyChart(w http.ResponseWriter, r *http.Request) {
	days := queryInt(r, "days", 30, 1, 366)
	s.cached(w, fmt.Sprintf("daily:%d", days), func() any {
		return s.analytics.DailyChartData(r.Context(), days)
	})
}

func (s *Server) handleCategorySpending(w http.ResponseWriter, r *http.Request) {
	months := queryInt(r, "months", 1, 1, 60)
	s.cached(w, fmt.Sprintf("categories:%d", months), func() any {
		return s.analytics.CategorySpending(r.Context(), months)
	})
}

func (s *Server) handleAdvancedAnalytics(w http.ResponseWriter, r *http.Request) {
	s.cached(w, "advanced", func() any {
		return s.analytics.AdvancedAnalytics(r.Context())
	})
}
