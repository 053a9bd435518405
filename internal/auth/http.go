// Copyright (c) 2026 Gatekeep. All rights reserved.

package auth

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/vuminh-lab/gatekeep/internal/platform/ctxutil"
	"github.com/vuminh-lab/gatekeep/internal/platform/middleware"
	"github.com/vuminh-lab/gatekeep/internal/platform/respond"
	"github.com/vuminh-lab/gatekeep/internal/platform/validate"
)

// Handler implements the authentication HTTP endpoints.
//
// Handlers parse and validate JSON payloads, call the service, and shape
// responses via the [respond] package. They contain no business logic.
type Handler struct {
	authService *Service
}

// NewHandler constructs a new [Handler] with its service dependency.
func NewHandler(service *Service) *Handler {
	return &Handler{authService: service}
}

// Routes returns a [chi.Router] with the authentication routes.
//
// # Endpoints
//   - POST /register : Creates a new account.
//   - POST /login    : Authenticates and returns a JWT.
//   - GET  /me       : Profile of the authenticated principal.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/register", handler.register)
	router.Post("/login", handler.login)

	router.Group(func(protected chi.Router) {
		protected.Use(middleware.RequireAuth)
		protected.Get("/me", handler.me)
	})

	return router
}

// registerRequest represents the JSON payload expected for account creation.
type registerRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

// register handles POST /api/v1/auth/register.
//
// # Returns
//   - 201 Created with the user profile.
//   - 400 Bad Request if validation rules fail.
//   - 409 Conflict if username/email is taken.
func (handler *Handler) register(writer http.ResponseWriter, request *http.Request) {
	var input registerRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	validator := &validate.Validator{}
	err := validator.
		Required("username", input.Username).
		MinLen("username", input.Username, 3).
		MaxLen("username", input.Username, 100).
		Required("email", input.Email).
		Email("email", input.Email).
		Required("password", input.Password).
		MinLen("password", input.Password, 8).
		Custom("confirm_password", input.Password != input.ConfirmPassword, "Passwords do not match").
		Err()
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	user, err := handler.authService.Register(request.Context(), RegisterInput{
		Username: input.Username,
		Email:    input.Email,
		Password: input.Password,
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, user)
}

// loginRequest represents the JSON payload expected for authentication.
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// login handles POST /api/v1/auth/login.
//
// # Returns
//   - 200 OK with access token, authorities, and user profile.
//   - 401 Unauthorized for bad credentials (always the same generic body).
func (handler *Handler) login(writer http.ResponseWriter, request *http.Request) {
	var input loginRequest
	if err := json.NewDecoder(request.Body).Decode(&input); err != nil {
		respond.Error(writer, request, validate.ErrInvalidJSON)
		return
	}

	if input.Username == "" || input.Password == "" {
		respond.Error(writer, request, validate.RequiredError("username/password", "are required"))
		return
	}

	result, err := handler.authService.Login(request.Context(), LoginInput{
		Username: input.Username,
		Password: input.Password,
	})
	if err != nil {
		// 401 without revealing whether the username exists.
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"access_token": result.AccessToken,
		"token_type":   "Bearer",
		"authorities":  result.Authorities,
		"user":         result.User,
	})
}

// me handles GET /api/v1/auth/me for the authenticated principal.
func (handler *Handler) me(writer http.ResponseWriter, request *http.Request) {
	principal := ctxutil.GetPrincipal(request.Context())

	user, err := handler.authService.Profile(request.Context(), principal.Subject)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, map[string]any{
		"user":        user,
		"authorities": principal.Authorities,
	})
}
