package http

import (
	"net/http"

	"tally/internal/auth"
	"tally/internal/core"
)

func (s *Server) handleCurrentPreview(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	preview, err := s.reports.CurrentPreview(r.Context(), claims.UserID, s.clock())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	writeJSON(w, http.StatusOK, preview)
}

func (s *Server) handleCategoryMerge(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	summaries, err := s.reports.CategoryMerge(r.Context(), claims.UserID, s.clock())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if summaries == nil {
		summaries = []core.CategorySummary{}
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (s *Server) handleCategoryAverages(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	first, last, err := ParseDayRange(r.URL.Query())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	points, err := s.reports.CategoryAverages(r.Context(), claims.UserID, first, last)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if points == nil {
		points = []core.CategoryPoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"monthAVG": points})
}

func (s *Server) handleYearlyTotals(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	year, err := ParseYear(r.URL.Query())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	points, err := s.reports.YearlyTotals(r.Context(), claims.UserID, year)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if points == nil {
		points = []core.TimePoint{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"monthTot": points})
}

func (s *Server) handleDailyScatter(w http.ResponseWriter, r *http.Request, claims *auth.Claims) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}

	points, err := s.reports.DailyScatter(r.Context(), claims.UserID, month)
	if err != nil {
		writeError(r.Context(), w, err)
		return
	}
	if points == nil {
		points = []core.TimePoint{}
	}
	writeJSON(w, http.StatusOK, points)
}
