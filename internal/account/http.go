// Copyright (c) 2026 Gatekeep. All rights reserved.

package account

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vuminh-lab/gatekeep/internal/platform/constants"
	"github.com/vuminh-lab/gatekeep/internal/platform/middleware"
	"github.com/vuminh-lab/gatekeep/internal/platform/respond"
	"github.com/vuminh-lab/gatekeep/internal/platform/validate"
	"github.com/vuminh-lab/gatekeep/pkg/pagination"
)

// Handler implements the admin user-management HTTP endpoints.
type Handler struct {
	accountService *Service
}

// NewHandler constructs an account [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{accountService: service}
}

// Routes returns a [chi.Router] with the admin endpoints.
//
// Every route requires the admin role; [middleware.RequireRole] implies
// authentication, so anonymous requests get 401 and authenticated
// non-admins get 403.
//
// # Endpoints
//   - GET    /                    : Paginated account listing.
//   - GET    /search              : Username/email substring search.
//   - GET    /stats               : Aggregate account counts.
//   - GET    /{id}                : Single account.
//   - PUT    /{id}/toggle-status  : Flip the enable flag.
//   - DELETE /{id}                : Soft-delete the account.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Use(middleware.RequireRole(constants.RoleAdmin))

	router.Get("/", handler.list)
	router.Get("/search", handler.search)
	router.Get("/stats", handler.stats)
	router.Get("/{id}", handler.get)
	router.Put("/{id}/toggle-status", handler.toggleStatus)
	router.Delete("/{id}", handler.remove)

	return router
}

// list handles GET /api/v1/users with page/limit query parameters.
func (handler *Handler) list(writer http.ResponseWriter, request *http.Request) {
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.List(request.Context(), params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

// search handles GET /api/v1/users/search?q=term.
func (handler *Handler) search(writer http.ResponseWriter, request *http.Request) {
	term := request.URL.Query().Get("q")
	params := pagination.FromRequest(request)

	users, total, err := handler.accountService.Search(request.Context(), term, params.Limit, params.Offset())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Paginated(writer, users, pagination.NewMeta(params.Page, params.Limit, int(total)))
}

// stats handles GET /api/v1/users/stats.
func (handler *Handler) stats(writer http.ResponseWriter, request *http.Request) {
	stats, err := handler.accountService.Stats(request.Context())
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, stats)
}

// get handles GET /api/v1/users/{id}.
func (handler *Handler) get(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	if err := (&validate.Validator{}).UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.Get(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// toggleStatus handles PUT /api/v1/users/{id}/toggle-status.
func (handler *Handler) toggleStatus(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	if err := (&validate.Validator{}).UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.accountService.ToggleEnabled(request.Context(), id)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, user)
}

// remove handles DELETE /api/v1/users/{id}.
func (handler *Handler) remove(writer http.ResponseWriter, request *http.Request) {
	id := chi.URLParam(request, "id")

	if err := (&validate.Validator{}).UUID("id", id).Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.accountService.Delete(request.Context(), id); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.NoContent(writer)
}
