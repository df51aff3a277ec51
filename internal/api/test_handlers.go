package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/models"
)

func testID(r *http.Request) models.TestID {
	return models.TestID(chi.URLParam(r, "id"))
}

// handleGenerateTest starts from the default configuration, so a request
// only needs the fields it changes.
func (s *Server) handleGenerateTest(w http.ResponseWriter, r *http.Request) {
	cfg := models.DefaultTestConfig()
	if err := decodeJSON(w, r, &cfg); err != nil {
		handleError(w, r, err)
		return
	}
	view, err := s.TestService.Generate(r.Context(), userFromContext(r.Context()), cfg)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, view)
}

func (s *Server) handleStartTest(w http.ResponseWriter, r *http.Request) {
	view, err := s.TestService.Start(r.Context(), userFromContext(r.Context()), testID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, view)
}

type answerRequest struct {
	WordID         models.WordID `json:"word_id"`
	Answer         string        `json:"answer"`
	ResponseTimeMs int64         `json:"response_time_ms"`
}

func (s *Server) handleAnswer(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.WordID == "" {
		handleError(w, r, errors.NewValidationError("word_id", "required"))
		return
	}
	if req.ResponseTimeMs < 0 {
		handleError(w, r, errors.NewValidationError("response_time_ms", "must not be negative"))
		return
	}
	res, err := s.TestService.Answer(r.Context(), userFromContext(r.Context()), testID(r), req.WordID, req.Answer, time.Duration(req.ResponseTimeMs)*time.Millisecond)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

type hintRequest struct {
	WordID models.WordID `json:"word_id"`
}

func (s *Server) handleHint(w http.ResponseWriter, r *http.Request) {
	var req hintRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	if req.WordID == "" {
		handleError(w, r, errors.NewValidationError("word_id", "required"))
		return
	}
	res, err := s.TestService.Hint(r.Context(), userFromContext(r.Context()), testID(r), req.WordID)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}

func (s *Server) handleCompleteTest(w http.ResponseWriter, r *http.Request) {
	test, err := s.TestService.Complete(r.Context(), userFromContext(r.Context()), testID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, test)
}

func (s *Server) handleGetTest(w http.ResponseWriter, r *http.Request) {
	test, err := s.TestService.GetTest(r.Context(), userFromContext(r.Context()), testID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, test)
}

func (s *Server) handleListTests(w http.ResponseWriter, r *http.Request) {
	limit, err := queryInt(r, "limit", 50)
	if err != nil {
		handleError(w, r, err)
		return
	}
	tests, err := s.TestService.ListTests(r.Context(), userFromContext(r.Context()), limit)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, tests)
}
