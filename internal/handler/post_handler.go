package handler

import (
	"encoding/json"
	"net/http"

	"mediafeed-server/internal/domain"
	"mediafeed-server/internal/middleware"
	"mediafeed-server/internal/service"
	"mediafeed-server/pkg/response"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
)

type PostHandler struct {
	postService *service.PostService
	validator   *validator.Validate
}

func NewPostHandler(postService *service.PostService) *PostHandler {
	return &PostHandler{
		postService: postService,
		validator:   validator.New(),
	}
}

func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	post, err := h.postService.AddPost(r.Context(), middleware.GetUserID(r), &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Created(w, post)
}

func (h *PostHandler) Feed(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.Feed(r.Context(), middleware.GetUserID(r))
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, posts)
}

func (h *PostHandler) Get(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.GetPost(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, post)
}

func (h *PostHandler) UserPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.UserPosts(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, posts)
}

func (h *PostHandler) Like(w http.ResponseWriter, r *http.Request) {
	post, err := h.postService.LikePost(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, post)
}

func (h *PostHandler) Comment(w http.ResponseWriter, r *http.Request) {
	var req domain.CommentPostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		response.BadRequest(w, err.Error())
		return
	}

	post, err := h.postService.CommentPost(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"], &req)
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Created(w, post)
}

func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	resp, err := h.postService.RemovePost(r.Context(), middleware.GetUserID(r), mux.Vars(r)["id"])
	if err != nil {
		serviceError(w, err)
		return
	}

	response.Success(w, resp)
}
