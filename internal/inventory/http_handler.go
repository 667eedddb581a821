package inventory

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/medipos/rms-api/internal/domain"
	"github.com/medipos/rms-api/internal/repository"
)

// Handler exposes the medicine catalogue and shop details:
//
//	GET/POST       /api/medicines
//	GET/PUT/DELETE /api/medicines/{id}
//	POST           /api/medicines/{id}/adjust-stock
//	GET/PUT        /api/shop
type Handler struct {
	service *Service
}

// NewHTTPHandler wraps the service with the inventory endpoints.
func NewHTTPHandler(service *Service) http.Handler {
	return &Handler{service: service}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if strings.HasSuffix(strings.TrimSuffix(r.URL.Path, "/"), "/shop") {
		h.handleShop(w, r)
		return
	}

	rest := pathAfter(r.URL.Path, "/medicines")
	switch {
	case rest == "":
		h.handleCollection(w, r)
	case strings.HasSuffix(rest, "/adjust-stock"):
		h.handleAdjustStock(w, r, strings.TrimSuffix(rest, "/adjust-stock"))
	default:
		h.handleItem(w, r, rest)
	}
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			limit, _ = strconv.Atoi(raw)
		}
		medicines, err := h.service.ListMedicines(r.Context(), r.URL.Query().Get("search"), limit)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"medicines": medicines})
	case http.MethodPost:
		var input MedicineInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		medicine, err := h.service.CreateMedicine(r.Context(), input)
		if err != nil {
			http.Error(w, err.Error(), errorStatus(err))
			return
		}
		writeJSON(w, http.StatusCreated, medicine)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleItem(w http.ResponseWriter, r *http.Request, rawID string) {
	id, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, "invalid medicine id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		medicine, err := h.service.GetMedicine(r.Context(), id)
		if err != nil {
			http.Error(w, err.Error(), errorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, medicine)
	case http.MethodPut:
		var input MedicineInput
		if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		medicine, err := h.service.UpdateMedicine(r.Context(), id, input)
		if err != nil {
			http.Error(w, err.Error(), errorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, medicine)
	case http.MethodDelete:
		if err := h.service.DeleteMedicine(r.Context(), id); err != nil {
			http.Error(w, err.Error(), errorStatus(err))
			return
		}
		writeJSON(w, http.StatusOK, map[string]string{"message": "medicine deleted"})
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleAdjustStock(w http.ResponseWriter, r *http.Request, rawID string) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id, err := uuid.Parse(rawID)
	if err != nil {
		http.Error(w, "invalid medicine id", http.StatusBadRequest)
		return
	}

	var req struct {
		Change       int    `json:"change"`
		MovementType string `json:"movement_type"`
		Notes        string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.MovementType == "" {
		req.MovementType = "adjustment"
	}

	medicine, err := h.service.AdjustStock(r.Context(), id, req.Change, req.MovementType, req.Notes)
	if err != nil {
		http.Error(w, err.Error(), errorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, medicine)
}

func (h *Handler) handleShop(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		shop, err := h.service.GetShop(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, shop)
	case http.MethodPut, http.MethodPost:
		var shop struct {
			Name          string `json:"name"`
			Address       string `json:"address"`
			Phone         string `json:"phone"`
			Email         string `json:"email"`
			LicenseNumber string `json:"license_number"`
			GSTNumber     string `json:"gst_number"`
		}
		if err := json.NewDecoder(r.Body).Decode(&shop); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		saved, err := h.service.SaveShop(r.Context(), shopFromInput(shop.Name, shop.Address, shop.Phone, shop.Email, shop.LicenseNumber, shop.GSTNumber))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func shopFromInput(name, address, phone, email, license, gst string) domain.Shop {
	return domain.Shop{
		Name:          name,
		Address:       address,
		Phone:         phone,
		Email:         email,
		LicenseNumber: license,
		GSTNumber:     gst,
	}
}

func pathAfter(path, marker string) string {
	idx := strings.Index(path, marker)
	if idx < 0 {
		return ""
	}
	return strings.Trim(path[idx+len(marker):], "/")
}

func errorStatus(err error) int {
	switch {
	case errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrNameRequired), errors.Is(err, ErrNegativeValue), errors.Is(err, ErrInvalidMovement):
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
