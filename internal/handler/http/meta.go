package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/Akshaybondre123/First-Startup/internal/service"
	"github.com/Akshaybondre123/First-Startup/internal/suggest"
	"github.com/Akshaybondre123/First-Startup/pkg/httputil"
)

// APIInfo is the body of GET /.
type APIInfo struct {
	Success   bool              `json:"success"`
	Message   string            `json:"message"`
	Version   string            `json:"version"`
	Endpoints map[string]string `json:"endpoints"`
}

// MetaHandler serves the root, API health, tag suggestion and admin
// endpoints.
type MetaHandler struct {
	version string
	reindex *service.ReindexService
	logger  *slog.Logger
	now     func() time.Time
}

// NewMetaHandler creates a MetaHandler.
func NewMetaHandler(version string, reindex *service.ReindexService, logger *slog.Logger) *MetaHandler {
	return &MetaHandler{
		version: version,
		reindex: reindex,
		logger:  logger,
		now:     time.Now,
	}
}

// Info handles GET /
func (h *MetaHandler) Info(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, APIInfo{
		Success: true,
		Message: "Wampin Backend API",
		Version: h.version,
		Endpoints: map[string]string{
			"health":      "/api/health",
			"restaurants": "/api/restaurants",
			"reviews":     "/api/reviews",
			"tags":        "/api/tags/suggest",
		},
	})
}

// Health handles GET /api/health
func (h *MetaHandler) Health(w http.ResponseWriter, _ *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, struct {
		Success   bool      `json:"success"`
		Message   string    `json:"message"`
		Timestamp time.Time `json:"timestamp"`
	}{true, "Backend API is running", h.now().UTC()})
}

// SuggestTags handles GET /api/tags/suggest?q=
func (h *MetaHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, http.StatusOK, suggest.Tags(r.URL.Query().Get("q")))
}

// Reindex handles POST /api/admin/reindex
func (h *MetaHandler) Reindex(w http.ResponseWriter, r *http.Request) {
	n, err := h.reindex.Reindex(r.Context())
	if err != nil {
		httputil.WriteError(w, r, err, h.logger)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, httputil.Response{
		Success: true,
		Message: "Search index rebuilt",
		Data:    map[string]int{"indexed": n},
	})
}
