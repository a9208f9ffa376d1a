// AngelaMos | 2026
// handler.go

package payment

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
	r.Route("/payments", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/", h.List)
		r.Post("/", h.Create)
		r.Put("/{id}", h.Update)
		r.Delete("/{id}", h.Delete)
	})
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	payments, err := h.service.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		core.WriteError(w, err, "payment")
		return
	}

	core.OK(w, payments)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePaymentRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		core.WriteError(w, err, "client")
		return
	}

	core.Created(w, p)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	var req UpdatePaymentRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	p, err := h.service.Update(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
		req.Patch(),
	)
	if err != nil {
		core.WriteError(w, err, "payment")
		return
	}

	core.OK(w, p)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	err := h.service.Delete(
		r.Context(),
		chi.URLParam(r, "id"),
		middleware.GetUserID(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err, "payment")
		return
	}

	core.NoContent(w)
}
