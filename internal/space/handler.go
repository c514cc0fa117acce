// AngelaMos | 2026
// handler.go

package space

import (
	"encoding/json"
	"net/http"
	"strings"

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
	r.Get("/junior-space-posts", h.List)
	r.With(
		authenticator,
		middleware.RequirePermission(access.ActionCreate, access.ResourceSpacePost),
	).Post("/junior-space-posts", h.Create)
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	page := core.ParsePage(r)

	posts, total, err := h.service.List(r.Context(), page)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Paginated(w, ToResponseList(posts), page.Page, page.PageSize, total)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		core.BadRequest(w, "invalid request body")
		return
	}

	req.Content = strings.TrimSpace(req.Content)
	if err := h.validator.Struct(req); err != nil {
		core.JSONError(w, core.ValidationError(core.FormatValidationError(err)))
		return
	}

	post, err := h.service.Create(r.Context(), middleware.GetUserID(r.Context()), req.Content)
	if err != nil {
		core.JSONError(w, err)
		return
	}

	core.Created(w, post.ToResponse())
}
