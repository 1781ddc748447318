package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mediafeed-server/internal/domain"
	"mediafeed-server/internal/middleware"
	"mediafeed-server/internal/service"
	"mediafeed-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type UserHandler struct {
	userService *service.UserService
	validator   *validator.Validate
}

func NewUserHandler(userService *service.UserService) *UserHandler {
	return &UserHandler{
		userService: userService,
		validator:   validator.New(),
	}
}

func (h *UserHandler) GetMe(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetMe(r.Context(), middleware.GetUserID(r))
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, profile)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.GetUser(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, profile)
}

func (h *UserHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	profile, err := h.userService.UpdateProfile(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, profile)
}

func (h *UserHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	var req domain.ChangePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	if err := h.userService.ChangePassword(r.Context(), middleware.GetUserID(r), &req); err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, map[string]string{
		"message": "Password changed successfully",
	})
}

func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	profile, err := h.userService.FollowUser(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, profile)
}

func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")

	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil {
		page = 1
	}

	result, err := h.userService.SearchUsers(r.Context(), middleware.GetUserID(r), query, page)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, result)
}

func (h *UserHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.Suggestions(r.Context(), middleware.GetUserID(r))
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, users)
}
