package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Akshaybondre123/First-Startup/internal/service"
	"github.com/Akshaybondre123/First-Startup/pkg/httputil"
	"github.com/Akshaybondre123/First-Startup/pkg/pagination"
)

// defaultReviewLimit is the page size when ?limit is absent.
const defaultReviewLimit = 10

// ReviewHandler serves the /api/reviews endpoints.
type ReviewHandler struct {
	service *service.ReviewService
	logger  *slog.Logger
}

// NewReviewHandler creates a ReviewHandler.
func NewReviewHandler(svc *service.ReviewService, logger *slog.Logger) *ReviewHandler {
	return &ReviewHandler{service: svc, logger: logger}
}

// Submit handles POST /api/reviews
func (h *ReviewHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var in service.SubmitReviewInput
	if err := decodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rv, _, err := h.service.Submit(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, rv)
}

// List handles GET /api/reviews/{restaurantId}?page&limit
func (h *ReviewHandler) List(w http.ResponseWriter, r *http.Request) {
	p, err := pagination.FromRequest(r, defaultReviewLimit)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	reviews, total, err := h.service.List(r.Context(), chi.URLParam(r, "restaurantId"), p)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WritePage(w, reviews, httputil.NewPagination(p.Page, p.Limit, total))
}
