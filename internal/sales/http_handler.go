package sales

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/medipos/rms-api/internal/repository"
)

// Handler exposes point-of-sale transactions:
//
//	POST /api/sales
//	GET  /api/sales?start_date=&end_date=&medicine_name=&limit=
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the sales endpoints.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		h.handleCreate(w, r)
	case http.MethodGet:
		h.handleList(w, r)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var input SaleInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	sale, err := h.service.CreateSale(r.Context(), input)
	if err != nil {
		http.Error(w, err.Error(), saleErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusCreated, sale)
}

func (h *Handler) handleList(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	var start, end time.Time
	if raw := query.Get("start_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid start_date", http.StatusBadRequest)
			return
		}
		start = parsed
	}
	if raw := query.Get("end_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			http.Error(w, "invalid end_date", http.StatusBadRequest)
			return
		}
		// Inclusive end of day.
		end = parsed.AddDate(0, 0, 1)
	}

	limit := 0
	if raw := query.Get("limit"); raw != "" {
		limit, _ = strconv.Atoi(raw)
	}

	sales, err := h.service.ListSales(r.Context(), start, end, query.Get("medicine_name"), limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"sales": sales})
}

func saleErrorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNoItems), errors.Is(err, ErrInvalidPayment), errors.Is(err, ErrInsufficientStock):
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
