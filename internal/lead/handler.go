// AngelaMos | 2026
// handler.go

package lead

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
	r.Route("/leads", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
		r.Post("/{id}/convert", h.Convert)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	leads, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.WriteError(w, err, "lead")
		return
	}

	core.OK(w, leads)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateLeadRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	l, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "lead")
		return
	}

	core.Created(w, l)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateLeadRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	l, err := h.service.Update(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req.Patch(),
	)
	if err != nil {
		core.WriteError(w, err, "lead")
		return
	}

	core.OK(w, l)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err, "lead")
		return
	}

	core.NoContent(w)
}

func (h *Handler) Convert(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Convert(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err, "lead")
		return
	}

	core.Created(w, c)
}
