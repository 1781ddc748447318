package handler

import (
	"errors"
	"net/http"

	"mediafeed-server/internal/service"
	"mediafeed-server/pkg/response"
)

// serviceError maps the service failure taxonomy onto HTTP statuses. Store
// failures fall through as 500 with the store's message.
func serviceError(w http.ResponseWriter, err error) {
	var notFound *service.NotFoundError
	var validation *service.ValidationError

	switch {
	case errors.Is(err, service.ErrNotAuthorised),
		errors.Is(err, service.ErrInvalidCredentials):
		response.Unauthorized(w, err.Error())
	case errors.Is(err, service.ErrForbidden):
		response.Forbidden(w, err.Error())
	case errors.Is(err, service.ErrIncorrectPassword):
		response.BadRequest(w, err.Error())
	case errors.As(err, &notFound):
		response.NotFound(w, err.Error())
	case errors.As(err, &validation):
		response.BadRequest(w, err.Error())
	default:
		response.InternalError(w, err.Error())
	}
}
