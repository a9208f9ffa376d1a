// AngelaMos | 2026
// handler.go

package task

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
	r.Route("/tasks", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.service.List(
		r.Context(),
		middleware.GetUserID(r.Context()),
		r.URL.Query().Get("filter"),
	)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.OK(w, tasks)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	t, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.Created(w, t)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdateTaskRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	t, err := h.service.Update(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req.Patch(),
	)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.OK(w, t)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err, "task")
		return
	}

	core.NoContent(w)
}
