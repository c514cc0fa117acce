// AngelaMos | 2026
// handler.go

package vote

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
	r.With(authenticator, middleware.RequirePermission(access.ActionCreate, access.ResourceUpvote)).
		Post("/upvotes", h.Create)
	r.With(authenticator, middleware.RequirePermission(access.ActionDelete, access.ResourceUpvote)).
		Delete("/upvotes/{id}", h.Delete)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreateVoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	answerID, err := core.ParseID(req.AnswerID)
	if err != nil {
		writeError(w, err, "answer")
		return
	}

	result, err := h.service.Add(r.Context(), middleware.GetUserID(r.Context()), answerID)
	if err != nil {
		writeError(w, err, "answer")
		return
	}

	core.Created(w, result)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := core.PathID(r, "id")
	if err != nil {
		writeError(w, err, "upvote")
		return
	}

	result, err := h.service.Remove(r.Context(), middleware.GetUserID(r.Context()), id)
	if err != nil {
		writeError(w, err, "upvote")
		return
	}

	core.OK(w, result)
}

func writeError(w http.ResponseWriter, err error, resource string) {
	switch {
	case isDuplicate(err):
		core.JSONError(w, core.DuplicateError("upvote"))
	case errors.Is(err, core.ErrNotFound):
		core.NotFound(w, resource)
	case errors.Is(err, core.ErrForbidden):
		core.Forbidden(w, "not your upvote")
	default:
		core.JSONError(w, err)
	}
}
