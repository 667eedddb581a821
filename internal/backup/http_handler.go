package backup

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/medipos/rms-api/internal/repository"
)

// Handler exposes backup management:
//
//	GET/POST /api/backups
//	GET      /api/backups/{id}/preview
//	GET      /api/backups/{id}/download
//	POST     /api/backups/{id}/restore
//	DELETE   /api/backups/{id}
//	POST     /api/backups/upload
//	POST     /api/backups/restore-upload
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the backup endpoints.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rest := pathAfter(r.URL.Path, "/backups")
	switch {
	case rest == "":
		h.handleCollection(w, r)
	case rest == "upload":
		h.handleUpload(w, r)
	case rest == "restore-upload":
		h.handleRestoreUpload(w, r)
	default:
		h.handleItem(w, r, rest)
	}
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		backups, err := h.service.List(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"backups": backups})
	case http.MethodPost:
		var req struct {
			Name       string   `json:"name"`
			Categories []string `json:"categories"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		meta, err := h.service.Create(r.Context(), req.Name, req.Categories)
		if err != nil {
			http.Error(w, err.Error(), backupErrorStatus(err))
			return
		}
		writeJSON(w, http.StatusCreated, meta)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request, rest string) {
	rawID, action, _ := strings.Cut(rest, "/")
	id, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, "invalid backup id", http.StatusBadRequest)
		return
	}

	switch {
	case action == "" && r.Method == http.MethodDelete:
		if err := h.service.Delete(r.Context(), id); err != nil {
			http.Error(w, err.Error(), backupErrorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "backup deleted"})
	case action == "preview" && r.Method == http.MethodGet:
		meta, counts, err := h.service.Preview(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), backupErrorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"metadata": meta, "record_counts": counts})
	case action == "download" && r.Method == http.MethodGet:
		meta, payload, err := h.service.Download(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), backupErrorStatus(err))
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", meta.Name+".json"))
		_, _ = w.Write(payload)
	case action == "restore" && r.Method == http.MethodPost:
		var req struct {
			Categories    []string `json:"categories"`
			ClearExisting *bool    `json:"clear_existing_data"`
		}
		if r.Body != nil {
			_ = json.NewDecoder(r.Body).Decode(&req)
		}
		options := RestoreOptions{Categories: req.Categories, ClearExisting: true}
		if req.ClearExisting != nil {
			options.ClearExisting = *req.ClearExisting
		}
		result, err := h.service.Restore(r.Context(), id, options)
		if err != nil {
			http.Error(w, err.Error(), backupErrorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, result)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, ok := readUploadedFile(w, r)
	if !ok {
		return
	}

	meta, err := h.service.Upload(r.Context(), r.FormValue("name"), payload)
	if err != nil {
		http.Error(w, err.Error(), backupErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (h *Handler) handleRestoreUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	payload, ok := readUploadedFile(w, r)
	if !ok {
		return
	}

	options := RestoreOptions{ClearExisting: r.FormValue("clear_existing_data") != "false"}
	if raw := r.FormValue("categories"); raw != "" {
		for _, category := range strings.Split(raw, ",") {
			options.Categories = append(options.Categories, strings.TrimSpace(category))
		}
	}

	result, err := h.service.RestoreUpload(r.Context(), payload, options)
	if err != nil {
		http.Error(w, err.Error(), backupErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func readUploadedFile(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		http.Error(w, fmt.Sprintf("invalid form data: %v", err), http.StatusBadRequest)
		return nil, false
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		http.Error(w, fmt.Sprintf("file required: %v", err), http.StatusBadRequest)
		return nil, false
	}
	defer file.Close()

	payload, err := io.ReadAll(file)
	if err != nil {
		http.Error(w, fmt.Sprintf("failed to read file: %v", err), http.StatusBadRequest)
		return nil, false
	}
	return payload, true
}

func pathAfter(path, marker string) string {
	idx := strings.Index(path, marker)
	if idx < 0 {
		return ""
	}
	return strings.Trim(path[idx+len(marker):], "/")
}

func backupErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrUnknownCategory), errors.Is(err, ErrInvalidDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
