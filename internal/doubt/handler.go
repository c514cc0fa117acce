// AngelaMos | 2026
// handler.go

package doubt

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
)

type Handler struct {
	service   *Service
	validator *validator.Validate
}

func NewHandler(service *Service) *Handler {
	return &Handler{
		service:   service,
		validator: validator.New(validator.WithRequiredStructEnabled()),
	}
}

func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator func(http.Handler) http.Handler,
) {
	r.Get("/doubts", h.List)
	r.Get("/doubts/{id}", h.Get)

	can := func(a access.Action) chi.Router {
		return r.With(authenticator, middleware.RequirePermission(a, access.ResourceDoubt))
	}
	can(access.ActionCreate).Post("/doubts", h.Create)
	can(access.ActionUpdate).Patch("/doubts/{id}", h.Update)
	can(access.ActionDelete).Delete("/doubts/{id}", h.Delete)
	can(access.ActionResolve).Post("/doubts/{id}/resolve", h.Resolve)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := ListFilter{
		AuthorID: q.Get("authorId"),
		Status:   domain.DoubtStatus(q.Get("status")),
		Page:     core.ParsePage(r),
	}

	if filter.AuthorID != "" {
		id, err := core.ParseID(filter.AuthorID)
		if err != nil {
			// No user has that id, so nothing matches.
			core.Paginated(w, []domain.Doubt{}, filter.Page.Page, filter.Page.PageSize, 0)
			return
		}
		filter.AuthorID = id
	}

	doubts, total, err := h.service.List(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(doubts), filter.Page.Page, filter.Page.PageSize, total)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	d, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToResponse(d))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateDoubtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	d, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.Created(w, ToResponse(d))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateDoubtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}
	if req.Empty() {
		core.JSONError(w, core.ValidationError("nothing to update"))
		return
	}

	d, err := h.service.Update(
		r.Context(),
		middleware.GetUserID(r.Context()),
		id,
		req,
	)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, ToResponse(d))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeError(w, err)
		return
	}

	core.NoContent(w)
}

func (h *Handler) Resolve(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	actor := Actor{
		ID:   middleware.GetUserID(r.Context()),
		Role: middleware.GetUserRole(r.Context()),
	}

	d, changed, err := h.service.Resolve(r.Context(), actor, id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, domain.ResolveResult{Doubt: ToResponse(d), Changed: changed})
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "doubt")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "not allowed on this doubt")
	case errors.Is(err, core.ErrInvalidInput):
		core.JSONError(w, core.ValidationError("status must be pending, answered or resolved"))
	case errors.Is(err, lifecycle.ErrIllegalTransition):
		core.Error(w, http.StatusConflict, "ILLEGAL_TRANSITION", "doubt has no answers yet")
	case errors.Is(err, core.ErrConflict):
		core.JSONError(w, core.ConflictError("doubt changed concurrently, retry"))
	default:
		core.JSONError(w, err)
	}
}
