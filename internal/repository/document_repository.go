// Package repository implements the data access layer.
package repository

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
)

// DocumentModel is the gorm model for sealed documents. The ciphertext is
// stored base64-encoded in a text column (`result`) and the fingerprint in
// `hash`, preserving the layout of previously stored data.
type DocumentModel struct {
	ID         string    `gorm:"type:char(36);primaryKey"`
	PatientID  string    `gorm:"type:varchar(64);not null;index:idx_documents_patient"`
	CategoryID string    `gorm:"type:varchar(64);not null;index:idx_documents_category"`
	DoctorID   string    `gorm:"type:varchar(64);not null;index:idx_documents_doctor"`
	Result     string    `gorm:"column:result;type:longtext;not null"`
	Hash       string    `gorm:"column:hash;type:char(64);not null"`
	CreatedAt  time.Time `gorm:"type:datetime(6);not null;autoCreateTime"`
}

// TableName returns the table name.
func (DocumentModel) TableName() string {
	return "documents"
}

// BeforeCreate assigns a UUID before the record is created.
func (m *DocumentModel) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	return nil
}

// toDomain converts the model into a domain entity, decoding the ciphertext.
func (m *DocumentModel) toDomain() (*domain.SealedDocument, error) {
	ciphertext, err := base64.StdEncoding.DecodeString(m.Result)
	if err != nil {
		return nil, fmt.Errorf("%w: stored ciphertext is not valid base64: %v", domain.ErrInvalidCiphertext, err)
	}
	return &domain.SealedDocument{
		ID:          m.ID,
		PatientID:   m.PatientID,
		CategoryID:  m.CategoryID,
		DoctorID:    m.DoctorID,
		Ciphertext:  ciphertext,
		Fingerprint: m.Hash,
		CreatedAt:   m.CreatedAt,
	}, nil
}

// DocumentRepository provides data access for sealed documents.
type DocumentRepository struct {
	db *gorm.DB
}

// NewDocumentRepository creates a new DocumentRepository.
func NewDocumentRepository(db *gorm.DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

// Create persists a sealed document in a single write. The generated ID and
// timestamp are reflected back into the entity.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.SealedDocument) error {
	model := &DocumentModel{
		ID:         doc.ID,
		PatientID:  doc.PatientID,
		CategoryID: doc.CategoryID,
		DoctorID:   doc.DoctorID,
		Result:     base64.StdEncoding.EncodeToString(doc.Ciphertext),
		Hash:       doc.Fingerprint,
	}
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		slog.ErrorContext(ctx, "failed to create document",
			"operation", "create",
			"patient_id", doc.PatientID,
			"category_id", doc.CategoryID,
			"error", err,
		)
		return err
	}
	doc.ID = model.ID
	doc.CreatedAt = model.CreatedAt
	return nil
}

// FindByID returns the sealed document with the given ID, or nil when none exists.
func (r *DocumentRepository) FindByID(ctx context.Context, id string) (*domain.SealedDocument, error) {
	var model DocumentModel
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		slog.ErrorContext(ctx, "failed to find document",
			"operation", "find_by_id",
			"document_id", id,
			"error", err,
		)
		return nil, err
	}
	return model.toDomain()
}

// FindAllByPatientID returns all documents of a patient, oldest first.
func (r *DocumentRepository) FindAllByPatientID(ctx context.Context, patientID string) ([]*domain.SealedDocument, error) {
	var models []DocumentModel
	err := r.db.WithContext(ctx).
		Where("patient_id = ?", patientID).
		Order("created_at ASC").
		Find(&models).Error
	if err != nil {
		slog.ErrorContext(ctx, "failed to find documents by patient_id",
			"operation", "find_all_by_patient_id",
			"patient_id", patientID,
			"error", err,
		)
		return nil, err
	}

	docs := make([]*domain.SealedDocument, 0, len(models))
	for _, m := range models {
		doc, err := m.toDomain()
		if err != nil {
			// A single undecodable record must not hide the rest of the
			// history; it is reported per-entry by the verifier instead.
			slog.WarnContext(ctx, "skipping undecodable document",
				"operation", "find_all_by_patient_id",
				"document_id", m.ID,
				"error", err,
			)
			docs = append(docs, &domain.SealedDocument{
				ID:          m.ID,
				PatientID:   m.PatientID,
				CategoryID:  m.CategoryID,
				DoctorID:    m.DoctorID,
				Ciphertext:  nil,
				Fingerprint: m.Hash,
				CreatedAt:   m.CreatedAt,
			})
			continue
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
