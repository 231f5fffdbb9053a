package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/api/middleware"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/service"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/policy"
)

type UserHandler struct {
	userService *service.UserService
}

func NewUserHandler(us *service.UserService) *UserHandler {
	return &UserHandler{userService: us}
}

func (h *UserHandler) RegisterRoutes(r chi.Router) {
	r.Use(middleware.Authenticator)

	r.Get("/{userID}", h.getUser)    // GET /api/users/{id}
	r.Put("/{userID}", h.updateUser) // PUT /api/users/{id}

	r.Group(func(admin chi.Router) {
		admin.Use(middleware.AdminOnly)
		admin.Post("/", h.createUser)           // POST /api/users
		admin.Get("/", h.listUsers)             // GET /api/users
		admin.Delete("/{userID}", h.deleteUser) // DELETE /api/users/{id}
	})
}

func (h *UserHandler) createUser(w http.ResponseWriter, r *http.Request) {
	var req service.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.userService.Create(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, user)
}

func (h *UserHandler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.List(r.Context())
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, users)
}

func (h *UserHandler) getUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "userID")
	if !policy.CanAccessOwnResource(caller, id) {
		forbid(w, "you can only view your own profile")
		return
	}

	user, err := h.userService.Get(r.Context(), id)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) updateUser(w http.ResponseWriter, r *http.Request) {
	caller, ok := requireCaller(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "userID")
	if !policy.CanAccessOwnResource(caller, id) {
		forbid(w, "you can only update your own profile")
		return
	}

	var req service.UpdateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	user, err := h.userService.Update(r.Context(), id, req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, user)
}

func (h *UserHandler) deleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), chi.URLParam(r, "userID")); err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondNoContent(w)
}
