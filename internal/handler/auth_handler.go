package handler

import (
	"encoding/json"
	"net/http"

	"mediafeed-server/internal/domain"
	"mediafeed-server/internal/service"
	"mediafeed-server/pkg/response"

	"github.com/go-playground/validator/v10"
)

// refreshCookieName carries the refresh token between browser and server.
const refreshCookieName = "mfjwt"

type AuthHandler struct {
	authService *service.AuthService
	validator   *validator.Validate
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		validator:   validator.New(),
	}
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	resp, err := h.authService.Register(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Created(w, resp)
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	loginResp, err := h.authService.Login(r.Context(), &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	// Refresh token travels only in the cookie, never in the body.
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    loginResp.RefreshToken,
		Path:     "/",
		MaxAge:   int(h.authService.RefreshExpiration().Seconds()),
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	response.Success(w, loginResp)
}

func (h *AuthHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	cookie, err := r.Cookie(refreshCookieName)
	if err != nil {
		response.Unauthorized(w, "login required")
		return
	}

	tokenResp, err := h.authService.Refresh(r.Context(), cookie.Value)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, tokenResp)
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     refreshCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   true,
		SameSite: http.SameSiteNoneMode,
	})

	response.Success(w, map[string]string{
		"message": "Logged out successfully",
	})
}
