package handler

import (
	"log/slog"
	"net/http"

	"github.com/mcoot/charsheet-go/internal/api/apierr"
	"github.com/mcoot/charsheet-go/internal/model"
)

// Re-export from apierr for convenience
type APIError = apierr.APIError
type ErrorResponse = apierr.ErrorResponse

// WriteError writes an error response to the response writer
func WriteError(w http.ResponseWriter, err error) {
	apierr.WriteError(w, err)
}

// NewInvalidRequestError creates an invalid request error
func NewInvalidRequestError(message string) error {
	return apierr.NewInvalidRequestError(message)
}

// fail writes the error response, logging faults that are not the caller's doing
func fail(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch model.KindOf(err) {
	case model.KindIllegalState:
		logger.Error("illegal state", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
	case model.KindInternal:
		if apierr.Status(err) >= http.StatusInternalServerError {
			logger.Error("request failed", slog.String("path", r.URL.Path), slog.String("error", err.Error()))
		}
	}
	WriteError(w, err)
}
