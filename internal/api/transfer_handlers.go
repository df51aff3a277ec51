package api

import (
	"fmt"
	"net/http"

	"github.com/vytor/lexiflash/internal/models"
)

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.TransferService.Export(r.Context(), userFromContext(r.Context()))
	if err != nil {
		handleError(w, r, err)
		return
	}
	filename := fmt.Sprintf("lexiflash-%s.json", data.ExportedAt.Format(models.DateLayout))
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	writeJSON(w, r, http.StatusOK, data)
}

func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	var data models.ExportData
	if err := decodeJSON(w, r, &data); err != nil {
		handleError(w, r, err)
		return
	}
	res, err := s.TransferService.Import(r.Context(), userFromContext(r.Context()), data)
	if err != nil {
		handleError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, res)
}
