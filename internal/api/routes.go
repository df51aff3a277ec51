package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

func (s *Server) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(loggingMiddleware)
	r.Use(recoveryMiddleware)
	r.Use(securityHeadersMiddleware)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)

	r.Route("/api", func(r chi.Router) {
		r.Use(s.authMiddleware)

		r.Get("/words", s.handleListWords)
		r.Post("/words", s.handleCreateWord)
		r.Post("/words/import", s.handleImportWords)
		r.Get("/words/{id}", s.handleGetWord)
		r.Put("/words/{id}", s.handleUpdateWord)
		r.Delete("/words/{id}", s.handleDeleteWord)
		r.Post("/words/{id}/learned", s.handleSetLearned)
		r.Post("/words/{id}/difficult", s.handleSetDifficult)
		r.Get("/chapters", s.handleChapters)

		r.Post("/tests", s.handleGenerateTest)
		r.Get("/tests", s.handleListTests)
		r.Get("/tests/{id}", s.handleGetTest)
		r.Post("/tests/{id}/start", s.handleStartTest)
		r.Post("/tests/{id}/answers", s.handleAnswer)
		r.Post("/tests/{id}/hints", s.handleHint)
		r.Post("/tests/{id}/complete", s.handleCompleteTest)

		r.Get("/stats", s.handleStats)
		r.Get("/stats/weekly", s.handleWeeklyStats)
		r.Get("/stats/monthly", s.handleMonthlyStats)
		r.Put("/stats/daily/{date}", s.handleCorrectDay)
		r.Get("/stats/words/{id}", s.handleWordPerformance)
		r.Get("/stats/analysis", s.handleAnalysis)
		r.Get("/stats/weak-areas", s.handleWeakAreas)
		r.Get("/stats/recommendations", s.handleRecommendations)
		r.Post("/stats/reset", s.handleResetStats)
		r.Post("/stats/clear-history", s.handleClearHistory)

		r.Get("/export", s.handleExport)
		r.Post("/import", s.handleImport)
	})
	return r
}
