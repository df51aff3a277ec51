package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/importer"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
)

func wordID(r *http.Request) models.WordID {
	return models.WordID(chi.URLParam(r, "id"))
}

func (s *Server) handleListWords(w http.ResponseWriter, r *http.Request) {
	filter := models.WordFilter{
		UserID:   userFromContext(r.Context()),
		Chapters: queryList(r, "chapter"),
		Search:   r.URL.Query().Get("search"),
		OrderBy:  r.URL.Query().Get("order_by"),
		OrderDir: strings.ToUpper(r.URL.Query().Get("order_dir")),
	}
	for _, c := range queryList(r, "category") {
		filter.Categories = append(filter.Categories, models.Category(strings.ToUpper(c)))
	}
	var err error
	if filter.Learned, err = queryBool(r, "learned"); err != nil {
		handleError(w, r, err)
		return
	}
	if filter.Difficult, err = queryBool(r, "difficult"); err != nil {
		handleError(w, r, err)
		return
	}

	words, err := s.WordService.ListWords(r.Context(), filter)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, words)
}

func (s *Server) handleGetWord(w http.ResponseWriter, r *http.Request) {
	word, err := s.WordService.GetWord(r.Context(), userFromContext(r.Context()), wordID(r))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleCreateWord(w http.ResponseWriter, r *http.Request) {
	var in models.WordInput
	if err := decodeJSON(w, r, &in); err != nil {
		handleError(w, r, err)
		return
	}
	word, err := s.WordService.CreateWord(r.Context(), userFromContext(r.Context()), in)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, word)
}

func (s *Server) handleUpdateWord(w http.ResponseWriter, r *http.Request) {
	var update models.WordUpdate
	if err := decodeJSON(w, r, &update); err != nil {
		handleError(w, r, err)
		return
	}
	word, err := s.WordService.UpdateWord(r.Context(), userFromContext(r.Context()), wordID(r), update)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleDeleteWord(w http.ResponseWriter, r *http.Request) {
	if err := s.WordService.DeleteWord(r.Context(), userFromContext(r.Context()), wordID(r)); err != nil {
		handleError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type flagRequest struct {
	Value bool `json:"value"`
}

func (s *Server) handleSetLearned(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	word, err := s.WordService.SetLearned(r.Context(), userFromContext(r.Context()), wordID(r), req.Value)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleSetDifficult(w http.ResponseWriter, r *http.Request) {
	var req flagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleError(w, r, err)
		return
	}
	word, err := s.WordService.SetDifficult(r.Context(), userFromContext(r.Context()), wordID(r), req.Value)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, word)
}

func (s *Server) handleChapters(w http.ResponseWriter, r *http.Request) {
	chapters, err := s.WordService.Chapters(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, chapters)
}

type importWordsResponse struct {
	Imported int      `json:"imported"`
	Skipped  []string `json:"skipped"`
}

// handleImportWords accepts a multipart upload with an .xlsx or .csv file in
// the "file" field.
func (s *Server) handleImportWords(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := r.ParseMultipartForm(maxBodyBytes); err != nil {
		handleError(w, r, errors.NewBadRequestError("expected a multipart upload"))
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, r, errors.NewBadRequestError("missing file field"))
		return
	}
	defer file.Close()

	log.Debug("parsing word list: filename=%s, size=%d", header.Filename, header.Size)
	parsed, err := importer.Parse(file, header.Filename)
	if err != nil {
		handleError(w, r, err)
		return
	}
	if len(parsed.Words) == 0 {
		handleError(w, r, errors.NewValidationError("file", "no valid rows found"))
		return
	}

	n, err := s.WordService.ImportWords(r.Context(), userFromContext(r.Context()), parsed.Words)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusCreated, importWordsResponse{Imported: n, Skipped: parsed.Skipped})
}
