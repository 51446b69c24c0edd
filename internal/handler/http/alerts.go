package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/ckcelina/my-wishlist-sub005/internal/service"
	"github.com/ckcelina/my-wishlist-sub005/pkg/httputil"
	"github.com/ckcelina/my-wishlist-sub005/pkg/middleware"
	"github.com/ckcelina/my-wishlist-sub005/pkg/validator"
)

// AlertHandler handles HTTP requests for alert settings endpoints.
type AlertHandler struct {
	service *service.AlertService
	logger  *slog.Logger
}

// NewAlertHandler creates a new alert HTTP handler.
func NewAlertHandler(svc *service.AlertService, logger *slog.Logger) *AlertHandler {
	return &AlertHandler{
		service: svc,
		logger:  logger,
	}
}

// GetSettings handles GET /api/v1/alerts/settings
func (h *AlertHandler) GetSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	settings, err := h.service.GetSettings(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}

// UpdateSettings handles PATCH /api/v1/alerts/settings
func (h *AlertHandler) UpdateSettings(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.UpdateSettingsInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	settings, err := h.service.UpdateSettings(r.Context(), userID, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: settings})
}

// ListTargets handles GET /api/v1/alerts/targets
func (h *AlertHandler) ListTargets(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	items, err := h.service.ItemsWithTargets(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: items})
}
