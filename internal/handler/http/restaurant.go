package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/Akshaybondre123/First-Startup/internal/service"
	"github.com/Akshaybondre123/First-Startup/pkg/httputil"
)

// RestaurantHandler serves the /api/restaurants endpoints.
type RestaurantHandler struct {
	restaurants *service.RestaurantService
	discovery   *service.DiscoveryService
	seed        *service.SeedService
	logger      *slog.Logger
}

// NewRestaurantHandler creates a RestaurantHandler.
func NewRestaurantHandler(restaurants *service.RestaurantService, discovery *service.DiscoveryService, seed *service.SeedService, logger *slog.Logger) *RestaurantHandler {
	return &RestaurantHandler{
		restaurants: restaurants,
		discovery:   discovery,
		seed:        seed,
		logger:      logger,
	}
}

// Discover handles GET /api/restaurants?lat&lng&tags&verified&search&maxDistance
func (h *RestaurantHandler) Discover(w http.ResponseWriter, r *http.Request) {
	q, err := parseDiscoveryQuery(r.URL.Query())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rs, err := h.discovery.Discover(r.Context(), q)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WritePage(w, rs, nil)
}

// Get handles GET /api/restaurants/{id}. The id may also be a slug.
func (h *RestaurantHandler) Get(w http.ResponseWriter, r *http.Request) {
	rest, err := h.restaurants.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, rest)
}

// Create handles POST /api/restaurants
func (h *RestaurantHandler) Create(w http.ResponseWriter, r *http.Request) {
	var in service.CreateRestaurantInput
	if err := decodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rest, err := h.restaurants.Create(r.Context(), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusCreated, rest)
}

// Update handles PUT /api/restaurants/{id}
func (h *RestaurantHandler) Update(w http.ResponseWriter, r *http.Request) {
	var in service.UpdateRestaurantInput
	if err := decodeJSON(w, r, &in); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}

	rest, err := h.restaurants.Update(r.Context(), chi.URLParam(r, "id"), in)
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteData(w, http.StatusOK, rest)
}

// Delete handles DELETE /api/restaurants/{id}
func (h *RestaurantHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.restaurants.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteMessage(w, http.StatusOK, true, "Restaurant deleted")
}

// Seed handles POST /api/restaurants/seed. A refused seed is still a 200
// with success=false.
func (h *RestaurantHandler) Seed(w http.ResponseWriter, r *http.Request) {
	res, err := h.seed.Seed(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	if !res.Seeded {
		httputil.WriteMessage(w, http.StatusOK, false, res.Message)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Success: true,
		Message: res.Message,
		Data:    res.Restaurants,
	})
}
