package httpapi

import (
	"fmt"
	"net/http"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

// FilesResponse lists candidate documents.
type FilesResponse struct {
	Source    domain.SourceKind       `json:"source"`
	Documents []domain.DocumentHandle `json:"documents"`
	Count     int                     `json:"count"`
}

type filesHandler struct {
	documents driving.DocumentService
}

// ServeHTTP lists the documents of the source named by ?source=.
func (h *filesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.documents == nil {
		notConfigured(w, "documents")
		return
	}

	source := domain.SourceKind(r.URL.Query().Get("source"))
	if source == "" {
		source = domain.SourceDropbox
	}
	if !source.IsValid() {
		writeError(w, fmt.Errorf("%w: unknown source %q", domain.ErrInvalidInput, source))
		return
	}

	handles, err := h.documents.List(r.Context(), source)
	if err != nil {
		writeError(w, err)
		return
	}
	if handles == nil {
		handles = []domain.DocumentHandle{}
	}

	writeJSON(w, http.StatusOK, FilesResponse{Source: source, Documents: handles, Count: len(handles)})
}
