package notify

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

// Handler exposes notification settings and checks:
//
//	GET/PUT /api/notifications/settings
//	POST    /api/notifications/test
//	GET     /api/notifications/history
//	POST    /api/notifications/check/{low-stock|expiry|expired}
type Handler struct {
	service   *Service
	scheduler *Scheduler
}

// NewHTTPHandler wraps the service with the notification endpoints. The
// scheduler is rebuilt whenever settings change; it may be nil in tests.
func NewHTTPHandler(service *Service, scheduler *Scheduler) http.Handler {
	return &Handler{service: service, scheduler: scheduler}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch {
	case strings.HasSuffix(r.URL.Path, "/settings"):
		h.handleSettings(w, r)
	case strings.HasSuffix(r.URL.Path, "/test"):
		h.handleTest(w, r)
	case strings.HasSuffix(r.URL.Path, "/history"):
		h.handleHistory(w, r)
	case strings.Contains(r.URL.Path, "/check/"):
		h.handleCheck(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handleSettings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		settings, err := h.service.GetSettings(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		writeJSON(w, http.StatusOK, settings)
	case http.MethodPut, http.MethodPost:
		current, err := h.service.GetSettings(r.Context())
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&current); err != nil {
			http.Error(w, "invalid request body", http.StatusBadRequest)
			return
		}
		saved, err := h.service.SaveSettings(r.Context(), current)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if h.scheduler != nil {
			if err := h.scheduler.Rebuild(context.WithoutCancel(r.Context())); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
		}
		writeJSON(w, http.StatusOK, saved)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *Handler) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	if err := h.service.SendTest(r.Context()); err != nil {
		http.Error(w, err.Error(), notifyErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "test notification sent"})
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
	writeJSON(w, http.StatusOK, map[string]any{"notifications": history})
}

func (h *Handler) handleCheck(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var count int
	var err error
	switch {
	case strings.HasSuffix(r.URL.Path, "/low-stock"):
		count, err = h.service.CheckLowStock(r.Context())
	case strings.HasSuffix(r.URL.Path, "/expiry"):
		count, err = h.service.CheckExpiry(r.Context())
	case strings.HasSuffix(r.URL.Path, "/expired"):
		count, err = h.service.CheckExpired(r.Context())
	default:
		http.NotFound(w, r)
		return
	}
	if err != nil {
		http.Error(w, err.Error(), notifyErrorStatus(err))
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"flagged": count})
}

func notifyErrorStatus(err error) int {
	if errors.Is(err, ErrTelegramNotConfigured) {
		return http.StatusBadRequest
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
