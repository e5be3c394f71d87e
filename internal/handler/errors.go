package handler

import (
	"errors"
	"net/http"

	"github.com/rmedina/placepix/internal/provider"
	"github.com/rmedina/placepix/internal/service"
)

// statusForError maps the error taxonomy onto HTTP statuses:
// missing credential is a configuration error (503, fix the deployment),
// a failed provider call is an upstream error (502), rejected input is 400.
func statusForError(err error) int {
	var upstream *provider.UpstreamError
	var download *service.DownloadError
	switch {
	case errors.Is(err, provider.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	case errors.As(err, &download):
		return http.StatusBadGateway
	case errors.Is(err, service.ErrInvalidPick):
		return http.StatusBadRequest
	case errors.Is(err, provider.ErrUnknownProvider):
		return http.StatusBadRequest
	case errors.Is(err, service.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, service.ErrBusy):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
