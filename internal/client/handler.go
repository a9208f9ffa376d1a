// AngelaMos | 2026
// handler.go

package client

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
	r.Route("/clients", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Get("/{id}", h.Get)
		r.Put("/{id}/checklist/{itemID}", h.ToggleChecklist)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	clients, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.WriteError(w, err, "client")
		return
	}

	core.OK(w, clients)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.Get(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err, "client")
		return
	}

	core.OK(w, c)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateClientRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	c, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "client")
		return
	}

	core.Created(w, c)
}

func (h *Handler) ToggleChecklist(w http.ResponseWriter, r *http.Request) {
	c, err := h.service.ToggleChecklistItem(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		chi.URLParam(r, "itemID"),
	)
	if err != nil {
		core.WriteError(w, err, "client")
		return
	}

	core.OK(w, c)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err, "client")
		return
	}

	core.NoContent(w)
}
