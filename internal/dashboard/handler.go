// AngelaMos | 2026
// handler.go

package dashboard

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/dashboard", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/stats", h.Stats)
	})
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.WriteError(w, err, "dashboard")
		return
	}

	core.OK(w, stats)
}
