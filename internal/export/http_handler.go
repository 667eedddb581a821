package export

import (
	"fmt"
	"net/http"
)

// Handler exposes inventory downloads:
//
//	GET /api/export/inventory?format=csv|xlsx
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the export endpoint.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var file File
	var err error
	switch format := r.URL.Query().Get("format"); format {
	case "", "csv":
		file, err = h.service.ExportCSV(r.Context())
	case "xlsx":
		file, err = h.service.ExportXLSX(r.Context())
	default:
		http.Error(w, fmt.Sprintf("unsupported export format: %s", format), http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", file.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.Name))
	_, _ = w.Write(file.Data)
}
