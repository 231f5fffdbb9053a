package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/pablolpereira/ProgramaFinanceiro/internal/api/middleware"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/app/service"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/common"
	"github.com/pablolpereira/ProgramaFinanceiro/internal/domain/model"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) RegisterRoutes(r chi.Router) {
	r.Post("/login", h.login)       // POST /api/auth/login
	r.Post("/register", h.register) // POST /api/auth/register

	r.Group(func(authed chi.Router) {
		authed.Use(middleware.Authenticator)
		authed.Get("/me", h.me) // GET /api/auth/me
	})
}

type registerResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

func (h *AuthHandler) register(w http.ResponseWriter, r *http.Request) {
	var req service.RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	user, err := h.authService.Register(r.Context(), middleware.OptionalCaller(r), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusCreated, registerResponse{Message: "user registered successfully", User: user})
}

func (h *AuthHandler) login(w http.ResponseWriter, r *http.Request) {
	var req service.LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondError(w, r, err)
		return
	}
	resp, err := h.authService.Login(r.Context(), req)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, resp)
}

func (h *AuthHandler) me(w http.ResponseWriter, r *http.Request) {
	claims, _ := middleware.ClaimsFromContext(r.Context())
	me, err := h.authService.Me(claims)
	if err != nil {
		respondError(w, r, err)
		return
	}
	common.RespondWithJSON(w, http.StatusOK, me)
}
