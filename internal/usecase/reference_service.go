package usecase

import (
	"context"
	"fmt"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
)

// ReferenceRepository is the data access interface for reference data.
type ReferenceRepository interface {
	CreateCategory(ctx context.Context, category *domain.Category) error
	FindCategoryByID(ctx context.Context, id string) (*domain.Category, error)
	FindAllCategories(ctx context.Context) ([]*domain.Category, error)
	CreateHospital(ctx context.Context, hospital *domain.Hospital) error
	FindAllHospitals(ctx context.Context) ([]*domain.Hospital, error)
	CreateField(ctx context.Context, field *domain.Field) error
	FindFieldsByCategoryID(ctx context.Context, categoryID string) ([]*domain.Field, error)
}

// ReferenceService manages categories, hospitals and category form fields.
type ReferenceService struct {
	repo ReferenceRepository
}

// NewReferenceService creates a new ReferenceService.
func NewReferenceService(repo ReferenceRepository) *ReferenceService {
	return &ReferenceService{repo: repo}
}

// CreateCategory creates a new document category.
func (s *ReferenceService) CreateCategory(ctx context.Context, name string) (*domain.Category, error) {
	if name == "" || len(name) > 50 {
		return nil, domain.ErrInvalidName
	}
	category := &domain.Category{Name: name}
	if err := s.repo.CreateCategory(ctx, category); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return category, nil
}

// ListCategories returns all document categories.
func (s *ReferenceService) ListCategories(ctx context.Context) ([]*domain.Category, error) {
	categories, err := s.repo.FindAllCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding categories: %w", err)
	}
	return categories, nil
}

// CreateHospital creates a new hospital.
func (s *ReferenceService) CreateHospital(ctx context.Context, name string) (*domain.Hospital, error) {
	if name == "" || len(name) > 50 {
		return nil, domain.ErrInvalidName
	}
	hospital := &domain.Hospital{Name: name}
	if err := s.repo.CreateHospital(ctx, hospital); err != nil {
		return nil, fmt.Errorf("creating hospital: %w", err)
	}
	return hospital, nil
}

// ListHospitals returns all hospitals.
func (s *ReferenceService) ListHospitals(ctx context.Context) ([]*domain.Hospital, error) {
	hospitals, err := s.repo.FindAllHospitals(ctx)
	if err != nil {
		return nil, fmt.Errorf("finding hospitals: %w", err)
	}
	return hospitals, nil
}

// CreateField adds a validated form field to an existing category. The
// kind-specific attributes are checked by the domain constructor.
func (s *ReferenceService) CreateField(ctx context.Context, categoryID, name string, kind domain.FieldKind, required bool, options, allowedTypes []string) (*domain.Field, error) {
	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("finding category: %w", err)
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	field, err := domain.NewField(categoryID, name, kind, required, options, allowedTypes)
	if err != nil {
		return nil, err
	}
	if err := s.repo.CreateField(ctx, field); err != nil {
		return nil, fmt.Errorf("creating field: %w", err)
	}
	return field, nil
}

// ListFields returns the form fields of a category.
func (s *ReferenceService) ListFields(ctx context.Context, categoryID string) ([]*domain.Field, error) {
	category, err := s.repo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("finding category: %w", err)
	}
	if category == nil {
		return nil, domain.ErrCategoryNotFound
	}

	fields, err := s.repo.FindFieldsByCategoryID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("finding fields: %w", err)
	}
	return fields, nil
}
