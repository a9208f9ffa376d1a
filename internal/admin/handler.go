// AngelaMos | 2026
// handler.go

package admin

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agenciasuportapoio350-spec/part2/internal/audit"
	"github.com/agenciasuportapoio350-spec/part2/internal/core"
	"github.com/agenciasuportapoio350-spec/part2/internal/middleware"
	"github.com/agenciasuportapoio350-spec/part2/internal/user"
)

type Handler struct {
	service   *Service
	system    *SystemHandler
	auditLogs *audit.Handler
}

func NewHandler(
	service *Service,
	system *SystemHandler,
	auditLogs *audit.Handler,
) *Handler {
	return &Handler{
		service:   service,
		system:    system,
		auditLogs: auditLogs,
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Route("/admin", func(r chi.Router) {
		r.Use(authenticator)

		r.Get("/check", h.Check)
		r.Post("/exit-impersonate", h.ExitImpersonate)

		// System stats expose no tenant data.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdminOrSuper)

			if h.system != nil {
				h.system.RegisterRoutes(r)
			}
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireSuperAdmin)

			r.Get("/stats", h.Stats)
			r.Get("/events", h.Events)
			r.Get("/users", h.ListUsers)
			r.Get("/users/{id}", h.GetUser)
			r.Post("/users", h.CreateUser)
			r.Put("/users/{id}/status", h.SetStatus)
			r.Put("/users/{id}/role", h.SetRole)
			r.Put("/users/{id}/plan", h.SetPlan)
			r.Put("/users/{id}/profile", h.UpdateProfile)
			r.Put("/users/{id}/password", h.ResetPassword)
			r.Delete("/users/{id}", h.DeleteUser)
			r.Post("/impersonate/{id}", h.Impersonate)

			if h.auditLogs != nil {
				h.auditLogs.RegisterRoutes(r)
			}
		})
	})
}

func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	actx := middleware.GetActingContext(r.Context())
	if actx == nil {
		core.Unauthorized(w, "")
		return
	}

	core.OK(w, h.service.Check(actx))
}

func (h *Handler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.service.Stats(r.Context())
	if err != nil {
		core.WriteError(w, err, "stats")
		return
	}

	core.OK(w, stats)
}

func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	events, err := h.service.Events(r.Context(), limit)
	if err != nil {
		core.WriteError(w, err, "events")
		return
	}

	core.OK(w, events)
}

func (h *Handler) ListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	params := user.ListUsersParams{
		Page:     page,
		PageSize: pageSize,
		Search:   q.Get("search"),
		Status:   q.Get("status"),
		Plan:     q.Get("plan"),
		Role:     q.Get("role"),
	}
	params.Normalize()

	users, total, err := h.service.ListUsers(r.Context(), params)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.Paginated(w, user.ToUserResponseList(users), params.Page, params.PageSize, total)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	detail, err := h.service.GetUserDetail(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, detail)
}

func (h *Handler) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req StatusRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.SetStatus(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		chi.URLParam(r, "id"),
		req.Status,
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, user.ToUserResponse(updated))
}

func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req RoleRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.SetRole(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		chi.URLParam(r, "id"),
		req.Role,
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, user.ToUserResponse(updated))
}

func (h *Handler) SetPlan(w http.ResponseWriter, r *http.Request) {
	var req PlanRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.SetPlan(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		chi.URLParam(r, "id"),
		PlanChange{
			Plan:          req.Plan,
			PlanValue:     req.PlanValue,
			PlanStatus:    req.PlanStatus,
			PlanExpiresAt: req.PlanExpiresAt,
		},
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, user.ToUserResponse(updated))
}

func (h *Handler) Impersonate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Impersonate(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) ExitImpersonate(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.ExitImpersonate(
		r.Context(),
		middleware.GetActingContext(r.Context()),
	)
	if err != nil {
		core.WriteError(w, err, "original user")
		return
	}

	core.OK(w, resp)
}

func (h *Handler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var req CreateUserRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	created, err := h.service.CreateUser(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		NewUserInput{
			Name:      req.Name,
			Email:     req.Email,
			Password:  req.Password,
			Role:      req.Role,
			Plan:      req.Plan,
			PlanValue: req.PlanValue,
		},
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.Created(w, user.ToUserResponse(created))
}

func (h *Handler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req ProfileRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	updated, err := h.service.UpdateProfile(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		chi.URLParam(r, "id"),
		ProfileChange{Name: req.Name, Email: req.Email},
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, user.ToUserResponse(updated))
}

func (h *Handler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req PasswordResetRequest
	if !core.DecodeJSON(w, r, &req) {
		return
	}

	err := h.service.ResetPassword(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		chi.URLParam(r, "id"),
		req.NewPassword,
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.OK(w, MessageResponse{Message: "password reset"})
}

func (h *Handler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	err := h.service.DeleteUser(
		r.Context(),
		middleware.GetActingContext(r.Context()),
		chi.URLParam(r, "id"),
	)
	if err != nil {
		core.WriteError(w, err, "user")
		return
	}

	core.NoContent(w)
}
