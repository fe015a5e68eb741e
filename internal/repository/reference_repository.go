package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
)

// CategoryModel is the gorm model for document categories.
type CategoryModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(50);not null;uniqueIndex:uk_categories_name"`
	CreatedAt time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
}

// TableName returns the table name.
func (CategoryModel) TableName() string {
	return "categories"
}

// BeforeCreate assigns a UUID before the record is created.
func (m *CategoryModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *CategoryModel) toDomain() *domain.Category {
	return &domain.Category{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

// HospitalModel is the gorm model for hospitals.
type HospitalModel struct {
	ID        string    `gorm:"type:char(36);primaryKey"`
	Name      string    `gorm:"type:varchar(50);not null"`
	CreatedAt time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
}

// TableName returns the table name.
func (HospitalModel) TableName() string {
	return "hospitals"
}

// BeforeCreate assigns a UUID before the record is created.
func (m *HospitalModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *HospitalModel) toDomain() *domain.Hospital {
	return &domain.Hospital{ID: m.ID, Name: m.Name, CreatedAt: m.CreatedAt}
}

// FieldModel is the gorm model for category form fields. Kind-specific
// attributes (options, allowed file types) are stored as JSON text.
type FieldModel struct {
	ID           string    `gorm:"type:char(36);primaryKey"`
	CategoryID   string    `gorm:"type:char(36);not null;index:idx_fields_category"`
	Name         string    `gorm:"type:varchar(100);not null"`
	Kind         string    `gorm:"type:varchar(20);not null"`
	Required     bool      `gorm:"not null;default:false"`
	Options      string    `gorm:"type:text"`
	AllowedTypes string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
}

// TableName returns the table name.
func (FieldModel) TableName() string {
	return "fields"
}

// BeforeCreate assigns a UUID before the record is created.
func (m *FieldModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

func (m *FieldModel) toDomain() (*domain.Field, error) {
	var options, allowedTypes []string
	if m.Options != "" {
		if err := json.Unmarshal([]byte(m.Options), &options); err != nil {
			return nil, fmt.Errorf("decoding field options: %w", err)
		}
	}
	if m.AllowedTypes != "" {
		if err := json.Unmarshal([]byte(m.AllowedTypes), &allowedTypes); err != nil {
			return nil, fmt.Errorf("decoding field allowed types: %w", err)
		}
	}
	return &domain.Field{
		ID:           m.ID,
		CategoryID:   m.CategoryID,
		Name:         m.Name,
		Kind:         domain.FieldKind(m.Kind),
		Required:     m.Required,
		Options:      options,
		AllowedTypes: allowedTypes,
		CreatedAt:    m.CreatedAt,
	}, nil
}

// ReferenceRepository provides data access for categories, hospitals and fields.
type ReferenceRepository struct {
	db *gorm.DB
}

// NewReferenceRepository creates a new ReferenceRepository.
func NewReferenceRepository(db *gorm.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

// CreateCategory persists a new category.
func (r *ReferenceRepository) CreateCategory(ctx context.Context, category *domain.Category) error {
	model := &CategoryModel{ID: category.ID, Name: category.Name}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create category",
			"operation", "create_category",
			"name", category.Name,
			"error", err,
		)
		return err
	}
	category.ID = model.ID
	category.CreatedAt = model.CreatedAt
	return nil
}

// FindCategoryByID returns the category with the given ID, or nil when none exists.
func (r *ReferenceRepository) FindCategoryByID(ctx context.Context, id string) (*domain.Category, error) {
	var model CategoryModel
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find category",
			"operation", "find_category_by_id",
			"category_id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain(), nil
}

// FindAllCategories returns all categories ordered by name.
func (r *ReferenceRepository) FindAllCategories(ctx context.Context) ([]*domain.Category, error) {
	var models []CategoryModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to find categories",
			"operation", "find_all_categories",
			"error", err,
		)
		return nil, err
	}
	categories := make([]*domain.Category, len(models))
	for i, m := range models {
		categories[i] = m.toDomain()
	}
	return categories, nil
}

// CreateHospital persists a new hospital.
func (r *ReferenceRepository) CreateHospital(ctx context.Context, hospital *domain.Hospital) error {
	model := &HospitalModel{ID: hospital.ID, Name: hospital.Name}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create hospital",
			"operation", "create_hospital",
			"name", hospital.Name,
			"error", err,
		)
		return err
	}
	hospital.ID = model.ID
	hospital.CreatedAt = model.CreatedAt
	return nil
}

// FindAllHospitals returns all hospitals ordered by name.
func (r *ReferenceRepository) FindAllHospitals(ctx context.Context) ([]*domain.Hospital, error) {
	var models []HospitalModel
	if err := r.db.WithContext(ctx).Order("name ASC").Find(&models).Error; err != nil {
		slog.ErrorContext(ctx, "failed to find hospitals",
			"operation", "find_all_hospitals",
			"error", err,
		)
		return nil, err
	}
	hospitals := make([]*domain.Hospital, len(models))
	for i, m := range models {
		hospitals[i] = m.toDomain()
	}
	return hospitals, nil
}

// CreateField persists a new category form field.
func (r *ReferenceRepository) CreateField(ctx context.Context, field *domain.Field) error {
	options, err := marshalStrings(field.Options)
	if err != nil {
		return err
	}
	allowedTypes, err := marshalStrings(field.AllowedTypes)
	if err != nil {
		return err
	}

	model := &FieldModel{
		ID:           field.ID,
		CategoryID:   field.CategoryID,
		Name:         field.Name,
		Kind:         string(field.Kind),
		Required:     field.Required,
		Options:      options,
		AllowedTypes: allowedTypes,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create field",
			"operation", "create_field",
			"category_id", field.CategoryID,
			"name", field.Name,
			"error", err,
		)
		return err
	}
	field.ID = model.ID
	field.CreatedAt = model.CreatedAt
	return nil
}

// FindFieldsByCategoryID returns all form fields of a category.
func (r *ReferenceRepository) FindFieldsByCategoryID(ctx context.Context, categoryID string) ([]*domain.Field, error) {
	var models []FieldModel
	err := r.db.WithContext(ctx).
		Where("category_id = ?", categoryID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find fields",
			"operation", "find_fields_by_category_id",
			"category_id", categoryID,
			"error", err,
		)
		return nil, err
	}

	fields := make([]*domain.Field, len(models))
	for i, m := range models {
		field, err := m.toDomain()
		if err != nil {
			return nil, err
		}
		fields[i] = field
	}
	return fields, nil
}

func marshalStrings(values []string) (string, error) {
	if len(values) == 0 {
		return "", nil
	}
	b, err := json.Marshal(values)
	if err != nil {
		return "", fmt.Errorf("encoding string list: %w", err)
	}
	return string(b), nil
}
