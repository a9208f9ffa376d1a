// AngelaMos | 2026
// handler.go

package audit

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/agenciasuportapoio350-spec/part2/internal/core"
)

type Handler struct {
	repo Repository
}

func NewHandler(repo Repository) *Handler {
	return &Handler{repo: repo}
}

// RegisterRoutes mounts the audit trail. Callers apply the super-admin gate.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/audit-logs", h.List)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	pageSize, _ := strconv.Atoi(q.Get("page_size"))

	params := ListParams{
		Page:     page,
		PageSize: pageSize,
		Action:   q.Get("action"),
	}
	params.Normalize()

	entries, total, err := h.repo.List(r.Context(), params)
	if err != nil {
		core.WriteError(w, err, "audit log")
		return
	}

	if entries == nil {
		entries = []Entry{}
	}

	core.Paginated(w, entries, params.Page, params.PageSize, total)
}
