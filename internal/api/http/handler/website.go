package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/abenov/accounts-server/internal/logger"
	"github.com/abenov/accounts-server/internal/model"
)

// WebsiteService defines the website metadata operations the HTTP layer
// exposes.
type WebsiteService interface {
	Create(ctx context.Context, website model.Website) (model.Website, error)
	Get(ctx context.Context, id int64) (model.Website, error)
	List(ctx context.Context) ([]model.Website, error)
	Update(ctx context.Context, id int64, params model.Website) (model.Website, error)
	Delete(ctx context.Context, id int64) (string, error)
}

// Website handles HTTP endpoints for website metadata.
type Website struct {
	service WebsiteService
	logger  *logger.Logger
}

func NewWebsite(service WebsiteService, logger *logger.Logger) *Website {
	return &Website{
		service: service,
		logger:  logger,
	}
}

func (h *Website) Create(w http.ResponseWriter, r *http.Request) {
	var req model.Website
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	website, err := h.service.Create(r.Context(), req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, website)
}

func (h *Website) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	website, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, website)
}

func (h *Website) List(w http.ResponseWriter, r *http.Request) {
	websites, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, websites)
}

func (h *Website) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req model.Website
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return
	}

	website, err := h.service.Update(r.Context(), id, req)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, website)
}

func (h *Website) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	message, err := h.service.Delete(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: message})
}
