package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lexiflash/internal/analytics"
	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/models"
)

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	st, err := s.StatsService.GetStats(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

// handleWeeklyStats reports the week holding ?week=YYYY-MM-DD, this week by
// default.
func (s *Server) handleWeeklyStats(w http.ResponseWriter, r *http.Request) {
	weekOf := time.Now()
	if v := r.URL.Query().Get("week"); v != "" {
		t, err := time.Parse(models.DateLayout, v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("week", "must be YYYY-MM-DD"))
			return
		}
		weekOf = t
	}
	ws, err := s.StatsService.GetWeeklyStats(r.Context(), userFromContext(r.Context()), weekOf)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ws)
}

// handleMonthlyStats reports ?month=YYYY-MM, this month by default.
func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	month := time.Now()
	if v := r.URL.Query().Get("month"); v != "" {
		t, err := time.Parse("2006-01", v)
		if err != nil {
			handleError(w, r, errors.NewValidationError("month", "must be YYYY-MM"))
			return
		}
		month = t
	}
	ms, err := s.StatsService.GetMonthlyStats(r.Context(), userFromContext(r.Context()), month.Year(), month.Month())
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ms)
}

func (s *Server) handleCorrectDay(w http.ResponseWriter, r *http.Request) {
	var day models.DailyProgress
	if err := decodeJSON(w, r, &day); err != nil {
		handleError(w, r, err)
		return
	}
	day.Date = chi.URLParam(r, "date")
	st, err := s.StatsService.CorrectDay(r.Context(), userFromContext(r.Context()), day)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, st)
}

func (s *Server) handleWordPerformance(w http.ResponseWriter, r *http.Request) {
	view, err := s.StatsService.GetWordPerformance(r.Context(), userFromContext(r.Context()), wordID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

func (s *Server) handleAnalysis(w http.ResponseWriter, r *http.Request) {
	a, err := s.StatsService.GetAnalysis(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, a)
}

func (s *Server) handleWeakAreas(w http.ResponseWriter, r *http.Request) {
	groupBy := analytics.GroupBy(r.URL.Query().Get("group_by"))
	areas, err := s.StatsService.GetWeakAreas(r.Context(), userFromContext(r.Context()), groupBy)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, areas)
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	recs, err := s.StatsService.GetRecommendations(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, recs)
}

func (s *Server) handleResetStats(w http.ResponseWriter, r *http.Request) {
	if err := s.StatsService.ResetStats(r.Context(), userFromContext(r.Context())); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := s.StatsService.ClearHistory(r.Context(), userFromContext(r.Context())); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
