package http

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/ckcelina/my-wishlist-sub005/internal/service"
	"github.com/ckcelina/my-wishlist-sub005/pkg/httputil"
	"github.com/ckcelina/my-wishlist-sub005/pkg/middleware"
	"github.com/ckcelina/my-wishlist-sub005/pkg/validator"
)

// SharingHandler handles HTTP requests for share links and guest reservations.
type SharingHandler struct {
	service *service.SharingService
	logger  *slog.Logger
}

// NewSharingHandler creates a new sharing HTTP handler.
func NewSharingHandler(svc *service.SharingService, logger *slog.Logger) *SharingHandler {
	return &SharingHandler{
		service: svc,
		logger:  logger,
	}
}

// --- Owner endpoints ---

// Share handles POST /api/v1/wishlists/{id}/share
func (h *SharingHandler) Share(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	wishlistID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	// All share settings have defaults, so an empty body is accepted.
	var req service.ShareInput
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
			Error: &httputil.ErrorResponse{Code: "INVALID_INPUT", Message: "invalid request body: " + err.Error()},
		})
		return
	}

	if err := validator.Validate(req); err != nil {
		httputil.WriteValidationError(w, err)
		return
	}

	share, err := h.service.Share(r.Context(), userID, wishlistID, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: share})
}

// UpdateShare handles PATCH /api/v1/wishlists/{id}/share
func (h *SharingHandler) UpdateShare(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	wishlistID := chi.URLParam(r, "id")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.UpdateShareInput
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

	share, err := h.service.UpdateShareSettings(r.Context(), userID, wishlistID, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: share})
}

// OwnerReservations handles GET /api/v1/wishlists/{id}/reservations
func (h *SharingHandler) OwnerReservations(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	wishlistID := chi.URLParam(r, "id")

	reservations, err := h.service.OwnerReservations(r.Context(), userID, wishlistID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: reservations})
}

// --- Guest endpoints (no authentication) ---

// GuestView handles GET /shared/{slug}
func (h *SharingHandler) GuestView(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	view, err := h.service.GuestView(r.Context(), slug)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: view})
}

// Reserve handles POST /shared/{slug}/reservations
func (h *SharingHandler) Reserve(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)

	var req service.ReserveInput
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

	reservation, err := h.service.Reserve(r.Context(), slug, &req)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, httputil.Response{Data: reservation})
}

// Release handles DELETE /shared/{slug}/reservations/{itemID}
func (h *SharingHandler) Release(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	itemID := chi.URLParam(r, "itemID")

	if err := h.service.Release(r.Context(), slug, itemID); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
