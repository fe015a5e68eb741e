package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/usecase"
	"github.com/BahMbeirik/Dossiers-Medicaux/pkg/httputil"
)

// ReferenceHandler serves the category, hospital and field endpoints.
type ReferenceHandler struct {
	service *usecase.ReferenceService
}

// NewReferenceHandler creates a new ReferenceHandler.
func NewReferenceHandler(service *usecase.ReferenceService) *ReferenceHandler {
	return &ReferenceHandler{service: service}
}

// NameRequest is the request body for creating a named reference entity.
type NameRequest struct {
	Name string `json:"name"`
}

// CategoryResponse is the response body for a category.
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// HospitalResponse is the response body for a hospital.
type HospitalResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

// FieldRequest is the request body for creating a category form field.
type FieldRequest struct {
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Required     bool     `json:"required"`
	Options      []string `json:"options,omitempty"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
}

// FieldResponse is the response body for a category form field.
type FieldResponse struct {
	ID           string   `json:"id"`
	CategoryID   string   `json:"category_id"`
	Name         string   `json:"name"`
	Kind         string   `json:"kind"`
	Required     bool     `json:"required"`
	Options      []string `json:"options,omitempty"`
	AllowedTypes []string `json:"allowed_types,omitempty"`
	CreatedAt    string   `json:"created_at"`
}

// CreateCategory creates a new document category.
func (h *ReferenceHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidName) {
			httputil.Error(w, http.StatusBadRequest, "INVALID_NAME", "name is required and must be at most 50 characters")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, CategoryResponse{
		ID:        category.ID,
		Name:      category.Name,
		CreatedAt: category.CreatedAt.Format(time.RFC3339),
	})
}

// ListCategories returns all document categories.
func (h *ReferenceHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		response[i] = CategoryResponse{
			ID:        c.ID,
			Name:      c.Name,
			CreatedAt: c.CreatedAt.Format(time.RFC3339),
		}
	}
	httputil.JSON(w, http.StatusOK, response)
}

// CreateHospital creates a new hospital.
func (h *ReferenceHandler) CreateHospital(w http.ResponseWriter, r *http.Request) {
	var req NameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	hospital, err := h.service.CreateHospital(r.Context(), req.Name)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidName) {
			httputil.Error(w, http.StatusBadRequest, "INVALID_NAME", "name is required and must be at most 50 characters")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	httputil.JSON(w, http.StatusCreated, HospitalResponse{
		ID:        hospital.ID,
		Name:      hospital.Name,
		CreatedAt: hospital.CreatedAt.Format(time.RFC3339),
	})
}

// ListHospitals returns all hospitals.
func (h *ReferenceHandler) ListHospitals(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.service.ListHospitals(r.Context())
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := make([]HospitalResponse, len(hospitals))
	for i, hospital := range hospitals {
		response[i] = HospitalResponse{
			ID:        hospital.ID,
			Name:      hospital.Name,
			CreatedAt: hospital.CreatedAt.Format(time.RFC3339),
		}
	}
	httputil.JSON(w, http.StatusOK, response)
}

// CreateField adds a form field to a category.
func (h *ReferenceHandler) CreateField(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "category_id")

	var req FieldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}

	field, err := h.service.CreateField(r.Context(), categoryID, req.Name, domain.FieldKind(req.Kind), req.Required, req.Options, req.AllowedTypes)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			httputil.Error(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found")
		case errors.Is(err, domain.ErrInvalidName):
			httputil.Error(w, http.StatusBadRequest, "INVALID_NAME", "name is required and must be at most 100 characters")
		case errors.Is(err, domain.ErrInvalidFieldKind):
			httputil.Error(w, http.StatusBadRequest, "INVALID_FIELD_KIND", "kind must be one of text, number, date, textarea, select, file")
		case errors.Is(err, domain.ErrMissingOptions),
			errors.Is(err, domain.ErrUnexpectedOptions),
			errors.Is(err, domain.ErrUnexpectedFileTypes):
			httputil.Error(w, http.StatusBadRequest, "INVALID_FIELD_ATTRIBUTES", err.Error())
		default:
			httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return
	}

	httputil.JSON(w, http.StatusCreated, toFieldResponse(field))
}

// ListFields returns the form fields of a category.
func (h *ReferenceHandler) ListFields(w http.ResponseWriter, r *http.Request) {
	categoryID := chi.URLParam(r, "category_id")

	fields, err := h.service.ListFields(r.Context(), categoryID)
	if err != nil {
		if errors.Is(err, domain.ErrCategoryNotFound) {
			httputil.Error(w, http.StatusNotFound, "CATEGORY_NOT_FOUND", "category not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := make([]FieldResponse, len(fields))
	for i, field := range fields {
		response[i] = toFieldResponse(field)
	}
	httputil.JSON(w, http.StatusOK, response)
}

func toFieldResponse(field *domain.Field) FieldResponse {
	return FieldResponse{
		ID:           field.ID,
		CategoryID:   field.CategoryID,
		Name:         field.Name,
		Kind:         string(field.Kind),
		Required:     field.Required,
		Options:      field.Options,
		AllowedTypes: field.AllowedTypes,
		CreatedAt:    field.CreatedAt.Format(time.RFC3339),
	}
}
