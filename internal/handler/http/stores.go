package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ckcelina/my-wishlist-sub005/internal/service"
	"github.com/ckcelina/my-wishlist-sub005/pkg/httputil"
	"github.com/ckcelina/my-wishlist-sub005/pkg/middleware"
	"github.com/ckcelina/my-wishlist-sub005/pkg/validator"
)

// StoreHandler handles HTTP requests for store and availability endpoints.
type StoreHandler struct {
	service *service.AvailabilityService
	logger  *slog.Logger
}

// NewStoreHandler creates a new store HTTP handler.
func NewStoreHandler(svc *service.AvailabilityService, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		service: svc,
		logger:  logger,
	}
}

// CreateStore handles POST /api/v1/stores
func (h *StoreHandler) CreateStore(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.CreateStoreInput
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

	store, err := h.service.CreateStore(r.Context(), &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: store})
}

// ListStores handles GET /api/v1/stores
func (h *StoreHandler) ListStores(w http.ResponseWriter, r *http.Request) {
	stores, err := h.service.ListStores(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: stores})
}

// GetStore handles GET /api/v1/stores/{id}
func (h *StoreHandler) GetStore(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "id")

	store, rules, err := h.service.GetStore(r.Context(), storeID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: map[string]any{
		"store": store,
		"rules": rules,
	}})
}

// AddShippingRule handles POST /api/v1/stores/{id}/rules
func (h *StoreHandler) AddShippingRule(w http.ResponseWriter, r *http.Request) {
	storeID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.AddShippingRuleInput
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

	rule, err := h.service.AddShippingRule(r.Context(), storeID, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: rule})
}

// Availability handles GET /api/v1/stores/{id}/availability
func (h *StoreHandler) Availability(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	storeID := chi.URLParam(r, "id")

	availability, err := h.service.ResolveForUser(r.Context(), userID, storeID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: availability})
}

// GetLocation handles GET /api/v1/me/location
func (h *StoreHandler) GetLocation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	loc, err := h.service.GetLocation(r.Context(), userID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: loc})
}

// SetLocation handles PUT /api/v1/me/location
func (h *StoreHandler) SetLocation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.SetLocationInput
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

	loc, err := h.service.SetLocation(r.Context(), userID, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: loc})
}

// DeleteLocation handles DELETE /api/v1/me/location
func (h *StoreHandler) DeleteLocation(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())

	if err := h.service.ClearLocation(r.Context(), userID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
