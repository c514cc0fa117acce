// AngelaMos | 2026
// handler.go

package user

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/core"
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
	r.Get("/users/mentors/approved", h.ListMentors)
	r.Get("/users/{id}", h.GetUser)

	r.With(
		authenticator,
		middleware.RequirePermission(access.ActionUpdate, access.ResourceUser),
	).Patch("/users/{id}", h.UpdateUser)
}

func (h *Handler) GetUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	profile, err := h.service.GetProfile(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, profile)
}

func (h *Handler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err)
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	profile, err := h.service.UpdateProfile(r.Context(), middleware.GetUserID(r.Context()), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	core.OK(w, profile)
}

func (h *Handler) ListMentors(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)

	mentors, total, err := h.service.ListMentors(r.Context(), page)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(
		w,
		ToUserResponseList(mentors),
		page.Page,
		page.PageSize,
		total,
	)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, "user")
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "cannot edit another user")
	case errors.Is(err, core.ErrUnauthorized):
		core.Unauthorized(w, "")
	case errors.Is(err, core.ErrInvalidInput):
		core.JSONError(w, core.ValidationError("name is required"))
	default:
		core.JSONError(w, err)
	}
}
