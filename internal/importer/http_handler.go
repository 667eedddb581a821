package importer

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Handler exposes the import pipeline over HTTP:
//
//	POST /api/tally/upload-preview
//	POST /api/tally/import
//	GET  /api/tally/import-history
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the tally endpoints.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/upload-preview"):
		h.handlePreview(w, r)
	case strings.HasSuffix(r.URL.Path, "/import-history"):
		h.handleHistory(w, r)
	case strings.HasSuffix(r.URL.Path, "/import"):
		h.handleImport(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fileName, payload, ok := readUpload(w, r)
	if !ok {
		return
	}

	result, err := h.service.Preview(r.Context(), fileName, payload)
	if err != nil {
		http.Error(w, err.Error(), importErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	fileName, payload, ok := readUpload(w, r)
	if !ok {
		return
	}

	policy := strings.TrimSpace(r.FormValue("duplicate_handling"))
	if policy == "" {
		policy = PolicySkip
	}
	validationStrict := r.FormValue("validation_strict") != "false"

	result, err := h.service.Import(r.Context(), fileName, payload, policy, validationStrict)
	if err != nil {
		http.Error(w, err.Error(), importErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) handleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	history, err := h.service.History(r.Context())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imports": history})
}

func readUpload(w http.ResponseWriter, r *http.Request) (string, []byte, bool) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return "", nil, false
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return "", nil, false
	}
	return header.Filename, payload, true
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}

func importErrorStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat),
		errors.Is(err, ErrEmptyFile),
		errors.Is(err, ErrNoDataFound),
		errors.Is(err, ErrParse),
		errors.Is(err, ErrInvalidPolicy):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
