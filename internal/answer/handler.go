// AngelaMos | 2026
// handler.go

package answer

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

// RegisterRoutes wires the answer endpoints. Listing is public but reads
// the optional token to fill in the viewer's own upvote.
func (h *Handler) RegisterRoutes(
	r chi.Router,
	authenticator, optionalAuth func(http.Handler) http.Handler,
) {
	r.With(optionalAuth).Get("/answers/doubt/{id}", h.ListByDoubt)

	can := func(a access.Action) chi.Router {
		return r.With(authenticator, middleware.RequirePermission(a, access.ResourceAnswer))
	}
	// On create the path id is the doubt; elsewhere it is the answer.
	can(access.ActionCreate).Post("/answers/{id}", h.Create)
	can(access.ActionUpdate).Patch("/answers/{id}", h.Update)
	can(access.ActionDelete).Delete("/answers/{id}", h.Delete)
}

func (h *Handler) ListByDoubt(w http.ResponseWriter, r *http.Request) {
	doubtID, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "doubt")
		return
	}

	answers, err := h.service.ListByDoubt(r.Context(), doubtID, middleware.GetUserID(r.Context()))
	if err != nil {
		writeError(w, err, "doubt")
		return
	}

	core.OK(w, ToResponseList(answers))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	doubtID, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "doubt")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	a, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), doubtID, req)
	if err != nil {
		writeError(w, err, "doubt")
		return
	}

	core.Created(w, ToResponse(a))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "answer")
		return
	}

	req, ok := h.decode(w, r)
	if !ok {
		return
	}

	a, err := h.service.Update(r.Context(), middleware.GetUserID(r.Context()), id, req)
	if err != nil {
		writeError(w, err, "answer")
		return
	}

	core.OK(w, ToResponse(a))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "answer")
		return
	}

	if err := h.service.Delete(r.Context(), middleware.GetUserID(r.Context()), id); err != nil {
		writeError(w, err, "answer")
		return
	}

	core.NoContent(w)
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (AnswerRequest, bool) {
	var req AnswerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return req, false
	}

	req.Normalize()
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return req, false
	}
	return req, true
}

func writeError(w http.ResponseWriter, err error, resource string) {
	switch {
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "not the author of this answer")
	default:
		core.JSONError(w, err)
	}
}
