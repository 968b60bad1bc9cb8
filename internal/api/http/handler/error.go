package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/abenov/accounts-server/internal/model"
)

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps service failures to HTTP statuses and a JSON error body.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	var conflict *model.ConflictError
	var credentials *model.CredentialsError
	var backend *model.BackendError
	var fetch *model.FetchError

	switch {
	case errors.As(err, &conflict):
		status = http.StatusConflict
		message = conflict.Error()
	case errors.As(err, &credentials):
		status = http.StatusUnauthorized
		message = credentials.Error()
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
		message = model.ErrNotFound.Error()
	case errors.Is(err, model.ErrNoImage):
		status = http.StatusNotFound
		message = model.ErrNoImage.Error()
	case errors.Is(err, model.ErrEmptyUpload):
		status = http.StatusBadRequest
		message = model.ErrEmptyUpload.Error()
	case errors.As(err, &backend):
		status = http.StatusBadGateway
		message = backend.Error()
	case errors.As(err, &fetch):
		status = http.StatusBadGateway
		message = fetch.Error()
	}

	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
