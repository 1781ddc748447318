package handler

import (
	"bufio"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"mediafeed-server/internal/middleware"
	"mediafeed-server/internal/storage"
	"mediafeed-server/pkg/response"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

const maxPictureSize = 10 << 20 // 10 MiB

type MediaHandler struct {
	store *storage.MediaStore
}

func NewMediaHandler(store *storage.MediaStore) *MediaHandler {
	return &MediaHandler{
		store: store,
	}
}

// Upload accepts a multipart picture and returns the object key that posts
// store as their picture reference.
func (h *MediaHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if middleware.GetUserID(r) == "" {
		response.Unauthorized(w, "not authorised")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxPictureSize)
	if err := r.ParseMultipartForm(maxPictureSize); err != nil {
		response.BadRequest(w, "picture too large or malformed form")
		return
	}

	file, header, err := r.FormFile("picture")
	if err != nil {
		response.BadRequest(w, "picture field is required")
		return
	}
	defer file.Close()

	contentType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		response.BadRequest(w, "only image uploads are allowed")
		return
	}

	key := uuid.New().String() + strings.ToLower(filepath.Ext(header.Filename))

	if err := h.store.Put(r.Context(), key, file, header.Size, contentType); err != nil {
		response.InternalError(w, fmt.Sprintf("failed to store picture: %v", err))
		return
	}

	response.Created(w, map[string]string{
		"key": key,
		"url": "/api/v1/media/" + key,
	})
}

// Serve streams a stored picture back to the client.
func (h *MediaHandler) Serve(w http.ResponseWriter, r *http.Request) {
	key := mux.Vars(r)["key"]

	object, err := h.store.Get(r.Context(), key)
	if err != nil {
		response.NotFound(w, "picture not found")
		return
	}
	defer object.Close()

	// Missing keys surface on first read with the minio client, so peek
	// before committing a 200.
	buffered := bufio.NewReader(object)
	if _, err := buffered.Peek(1); err != nil {
		response.NotFound(w, "picture not found")
		return
	}

	io.Copy(w, buffered)
}
