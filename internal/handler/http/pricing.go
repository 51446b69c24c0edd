package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/ckcelina/my-wishlist-sub005/internal/service"
	"github.com/ckcelina/my-wishlist-sub005/pkg/httputil"
	"github.com/ckcelina/my-wishlist-sub005/pkg/middleware"
)

// PricingHandler handles HTTP requests for price tracking endpoints.
type PricingHandler struct {
	service *service.TrackerService
	logger  *slog.Logger
}

// NewPricingHandler creates a new pricing HTTP handler.
func NewPricingHandler(svc *service.TrackerService, logger *slog.Logger) *PricingHandler {
	return &PricingHandler{
		service: svc,
		logger:  logger,
	}
}

// RefreshWishlist handles POST /api/v1/wishlists/{id}/refresh
func (h *PricingHandler) RefreshWishlist(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	wishlistID := chi.URLParam(r, "id")

	summary, err := h.service.RefreshWishlist(r.Context(), userID, wishlistID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: summary})
}

// PriceHistory handles GET /api/v1/items/{id}/price-history
func (h *PricingHandler) PriceHistory(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	itemID := chi.URLParam(r, "id")

	page, perPage, ok := parsePagination(w, r)
	if !ok {
		return
	}

	out, err := h.service.PriceHistory(r.Context(), userID, itemID, page, perPage)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: out})
}

// DropInfo handles GET /api/v1/items/{id}/drop-info
func (h *PricingHandler) DropInfo(w http.ResponseWriter, r *http.Request) {
	userID := middleware.UserIDFromContext(r.Context())
	itemID := chi.URLParam(r, "id")

	info, err := h.service.DropInfo(r.Context(), userID, itemID)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, httputil.Response{Data: info})
}

// parsePagination reads page/per_page query parameters, writing a 400 on
// invalid values.
func parsePagination(w http.ResponseWriter, r *http.Request) (page, perPage int, ok bool) {
	page, perPage = 1, 20

	if v := r.URL.Query().Get("page"); v != "" {
		p, err := strconv.Atoi(v)
		if err != nil || p < 1 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "page must be a valid positive integer"},
			})
			return 0, 0, false
		}
		page = p
	}
	if v := r.URL.Query().Get("per_page"); v != "" {
		pp, err := strconv.Atoi(v)
		if err != nil || pp < 1 || pp > 100 {
			httputil.WriteJSON(w, http.StatusBadRequest, httputil.Response{
				Error: &httputil.ErrorResponse{Code: "INVALID_PARAMETER", Message: "per_page must be a valid integer between 1 and 100"},
			})
			return 0, 0, false
		}
		perPage = pp
	}

	return page, perPage, true
}
