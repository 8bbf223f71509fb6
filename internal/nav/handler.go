package nav

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/harborview/clinic-portal/internal/identity"
)

// Handler exposes the computed navigation so every client renders the same
// role gating.
type Handler struct{}

// NewHandler creates the navigation HTTP handler.
func NewHandler() *Handler {
	return &Handler{}
}

// Routes returns a chi router with the navigation route.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Visible)
	return r
}

// Visible handles GET /api/nav?path=<current path>. The profile comes from
// the request context when authenticated; anonymous requests get the
// unauthenticated view.
func (h *Handler) Visible(w http.ResponseWriter, r *http.Request) {
	pathname := r.URL.Query().Get("path")
	if pathname == "" {
		pathname = "/"
	}

	var profile *identity.Profile
	if p, ok := identity.ProfileFromContext(r.Context()); ok {
		profile = &p
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(Compute(profile, pathname))
}
