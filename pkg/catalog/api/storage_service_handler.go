package api

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/tendant/storage-catalog/pkg/catalog"
)

// StorageServiceHandler handles HTTP requests for storage services
type StorageServiceHandler struct {
	service catalog.Service
}

// NewStorageServiceHandler creates a new storage service handler
func NewStorageServiceHandler(service catalog.Service) *StorageServiceHandler {
	return &StorageServiceHandler{
		service: service,
	}
}

// Routes returns the routes for storage services. The write middlewares
// wrap only the mutating routes; reads stay unguarded.
func (h *StorageServiceHandler) Routes(writeMiddlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.ListStorageServices)
	r.Get("/name/{name}", h.GetStorageServiceByName)
	r.Get("/{id}", h.GetStorageService)

	r.Group(func(r chi.Router) {
		r.Use(writeMiddlewares...)
		r.Post("/", h.CreateStorageService)
		r.Patch("/{id}", h.UpdateStorageService)
		r.Delete("/{id}", h.DeleteStorageService)
	})

	return r
}

// CreateStorageServiceRequest is the request body for registering a storage service
type CreateStorageServiceRequest struct {
	Name        string                     `json:"name"`
	DisplayName *string                    `json:"displayName,omitempty"`
	Description *string                    `json:"description,omitempty"`
	ServiceType catalog.StorageServiceType `json:"serviceType"`
	UpdatedBy   string                     `json:"updatedBy,omitempty"`
}

// UpdateStorageServiceRequest is the request body for updating a storage
// service. Omitted or null fields are kept; an empty string clears a field.
type UpdateStorageServiceRequest struct {
	DisplayName *string `json:"displayName,omitempty"`
	Description *string `json:"description,omitempty"`
	UpdatedBy   string  `json:"updatedBy,omitempty"`
}

// StorageServiceList is the response body for a list request
type StorageServiceList struct {
	Data   []*catalog.StorageService `json:"data"`
	Paging Paging                    `json:"paging"`
}

// Paging describes the size of a list response
type Paging struct {
	Total int `json:"total"`
}

// ErrorResponse is the body returned for failed requests
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// CreateStorageService registers a new storage service
func (h *StorageServiceHandler) CreateStorageService(w http.ResponseWriter, r *http.Request) {
	var req CreateStorageServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Fail to decode request", "error", err)
		writeError(w, r, err)
		return
	}

	svc, err := h.service.CreateStorageService(r.Context(), catalog.CreateStorageServiceRequest{
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Description: req.Description,
		ServiceType: req.ServiceType,
		UpdatedBy:   req.UpdatedBy,
	})
	if err != nil {
		slog.Error("Failed to create storage service", "name", req.Name, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Storage service created", "id", svc.ID, "name", svc.Name)
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, svc)
}

// GetStorageService retrieves a storage service by ID
func (h *StorageServiceHandler) GetStorageService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	svc, err := h.service.GetStorageService(r.Context(), id)
	if err != nil {
		slog.Error("Fail to get storage service", "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, svc)
}

// GetStorageServiceByName retrieves a storage service by name
func (h *StorageServiceHandler) GetStorageServiceByName(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")

	svc, err := h.service.GetStorageServiceByName(r.Context(), name)
	if err != nil {
		slog.Error("Fail to get storage service", "name", name, "error", err)
		writeError(w, r, err)
		return
	}

	render.JSON(w, r, svc)
}

// ListStorageServices lists storage services, optionally filtered by ?name=
func (h *StorageServiceHandler) ListStorageServices(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")

	services, err := h.service.ListStorageServices(r.Context(), name)
	if err != nil {
		slog.Error("Fail to list storage services", "name", name, "error", err)
		writeError(w, r, err)
		return
	}

	if services == nil {
		services = []*catalog.StorageService{}
	}
	render.JSON(w, r, StorageServiceList{
		Data:   services,
		Paging: Paging{Total: len(services)},
	})
}

// UpdateStorageService updates the display name or description
func (h *StorageServiceHandler) UpdateStorageService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req UpdateStorageServiceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		slog.Error("Fail to decode request", "error", err)
		writeError(w, r, err)
		return
	}

	svc, err := h.service.UpdateStorageService(r.Context(), id, catalog.UpdateStorageServiceRequest{
		DisplayName: req.DisplayName,
		Description: req.Description,
		UpdatedBy:   req.UpdatedBy,
	})
	if err != nil {
		slog.Error("Fail to update storage service", "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	slog.Info("Storage service updated", "id", id, "fields", svc.ChangeDescription.FieldNames())
	render.JSON(w, r, svc)
}

// DeleteStorageService deletes a storage service
func (h *StorageServiceHandler) DeleteStorageService(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if err := h.service.DeleteStorageService(r.Context(), id); err != nil {
		slog.Error("Fail to delete storage service", "id", id, "error", err)
		writeError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Code: status, Message: err.Error()})
}

func statusFor(err error) int {
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.Is(err, catalog.ErrSchemaViolation),
		errors.As(err, &syntaxErr),
		errors.As(err, &typeErr),
		errors.Is(err, io.EOF),
		errors.Is(err, io.ErrUnexpectedEOF):
		return http.StatusBadRequest
	case errors.Is(err, catalog.ErrStorageServiceNotFound):
		return http.StatusNotFound
	case errors.Is(err, catalog.ErrStorageServiceExists),
		errors.Is(err, catalog.ErrStorageServiceConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
