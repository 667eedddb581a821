package analytics

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/medipos/rms-api/internal/repository"
)

// Handler exposes the analytics endpoints:
//
//	POST /api/analytics/sales
//	GET  /api/analytics/medicine-sales/{id}?days=30
//	GET  /api/analytics/stock-history/{id}?days=30
//	GET  /api/analytics/medicines-sold-summary
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the analytics endpoints.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/sales"):
		h.handleSalesReport(w, r)
	case strings.Contains(r.URL.Path, "/medicine-sales/"):
		h.handleMedicineSales(w, r)
	case strings.Contains(r.URL.Path, "/stock-history/"):
		h.handleStockHistory(w, r)
	case strings.HasSuffix(r.URL.Path, "/medicines-sold-summary"):
		h.handleSoldSummary(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleSalesReport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req struct {
		StartDate string `json:"start_date"`
		EndDate   string `json:"end_date"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	start, end, err := parseRange(req.StartDate, req.EndDate)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	report, err := h.service.SalesReportForRange(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) handleMedicineSales(w http.ResponseWriter, r *http.Request) {
	id, days, ok := idAndDays(w, r, "/medicine-sales/")
	if !ok {
		return
	}

	daily, err := h.service.MedicineSales(r.Context(), id, days)
	if err != nil {
		http.Error(w, err.Error(), analyticsErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"daily_sales": daily})
}

func (h *Handler) handleStockHistory(w http.ResponseWriter, r *http.Request) {
	id, days, ok := idAndDays(w, r, "/stock-history/")
	if !ok {
		return
	}

	movements, err := h.service.StockHistory(r.Context(), id, days)
	if err != nil {
		http.Error(w, err.Error(), analyticsErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"movements": movements})
}

func (h *Handler) handleSoldSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	start, end, err := parseRange(r.URL.Query().Get("start_date"), r.URL.Query().Get("end_date"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.service.MedicinesSoldSummary(r.Context(), start, end)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"medicines": summary})
}

func idAndDays(w http.ResponseWriter, r *http.Request, marker string) (uuid.UUID, int, bool) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return uuid.Nil, 0, false
	}

	idx := strings.Index(r.URL.Path, marker)
	rawID := strings.Trim(r.URL.Path[idx+len(marker):], "/")
	id, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, "invalid medicine id", http.StatusBadRequest)
		return uuid.Nil, 0, false
	}

	days := 0
	if raw := r.URL.Query().Get("days"); raw != "" {
		days, _ = strconv.Atoi(raw)
	}
	return id, days, true
}

func parseRange(startDate, endDate string) (time.Time, time.Time, error) {
	var start, end time.Time
	if startDate != "" {
		parsed, err := time.Parse("2006-01-02", startDate)
		if err != nil {
			return start, end, errors.New("invalid start_date")
		}
		start = parsed
	}
	if endDate != "" {
		parsed, err := time.Parse("2006-01-02", endDate)
		if err != nil {
			return start, end, errors.New("invalid end_date")
		}
		end = parsed.AddDate(0, 0, 1)
	}
	return start, end, nil
}

func analyticsErrorStatus(err error) int {
	if errors.Is(err, repository.ErrNotFound) {
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(payload)
}
