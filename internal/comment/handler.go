// AngelaMos | 2026
// handler.go

package comment

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

func (h *Handler) RegisterRoutes(r chi.Router, authenticator func(http.Handler) http.Handler) {
	r.Get("/comments/doubt/{id}", h.ListByDoubt)

	can := func(a access.Action) chi.Router {
		return r.With(authenticator, middleware.RequirePermission(a, access.ResourceComment))
	}
	can(access.ActionCreate).Post("/comments", h.Create)
	can(access.ActionUpdate).Patch("/comments/{id}", h.Update)
	can(access.ActionDelete).Delete("/comments/{id}", h.Delete)
}

func (h *Handler) ListByDoubt(w http.ResponseWriter, r *http.Request) {
	doubtID, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "doubt")
		return
	}

	comments, err := h.service.ListByDoubt(r.Context(), doubtID)
	if err != nil {
		writeError(w, err, "doubt")
		return
	}

	core.OK(w, ToResponseList(comments))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	doubtID, err := core.ParseID(req.DoubtID)
	if err != nil {
		writeError(w, err, "doubt")
		return
	}
	req.DoubtID = doubtID

	c, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req)
	if err != nil {
		writeError(w, err, "doubt")
		return
	}

	core.Created(w, ToResponse(c))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "comment")
		return
	}

	var req UpdateCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	c, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), id, req)
	if err != nil {
		writeError(w, err, "comment")
		return
	}

	core.OK(w, ToResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "comment")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeError(w, err, "comment")
		return
	}

	core.NoContent(w)
}

func writeError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "not the author of this comment")
	default:
		core.JSONError(w, err)
	}
}
