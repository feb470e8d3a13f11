package httpapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime"
	"net/http"
	"strconv"
	"time"

	"github.com/custodia-labs/coach/internal/core/domain"
	"github.com/custodia-labs/coach/internal/core/ports/driving"
)

type exportHandler struct {
	actions driving.AnswerActionService
}

// ServeHTTP renders a posted answer as a downloadable document.
func (h *exportHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.actions == nil {
		notConfigured(w, "export")
		return
	}

	var answer domain.Answer
	if err := json.NewDecoder(r.Body).Decode(&answer); err != nil {
		writeError(w, fmt.Errorf("%w: invalid answer body", domain.ErrInvalidInput))
		return
	}
	if answer.GeneratedAt.IsZero() {
		answer.GeneratedAt = time.Now()
	}

	var buf bytes.Buffer
	if err := h.actions.Export(&answer, &buf); err != nil {
		writeError(w, err)
		return
	}

	ext := h.actions.ExportExtension()
	contentType := mime.TypeByExtension(ext)
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	name := "coach-" + answer.GeneratedAt.Format("20060102-150405") + ext

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": name}))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}
