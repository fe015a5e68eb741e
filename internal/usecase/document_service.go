// Package usecase implements the application use cases.
package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/sealing"
)

// DocumentRepository is the data access interface for sealed documents.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.SealedDocument) error
	FindByID(ctx context.Context, id string) (*domain.SealedDocument, error)
	FindAllByPatientID(ctx context.Context, patientID string) ([]*domain.SealedDocument, error)
}

// LedgerClient is the interface to the external anchor ledger.
type LedgerClient interface {
	Anchor(ctx context.Context, id, fingerprint string) (string, error)
	ReadFingerprint(ctx context.Context, id string) (string, error)
}

// DocumentService seals clinical documents, reveals their plaintext and
// verifies their integrity locally and against the ledger. The document key
// is loaded once at startup and is read-only afterwards, so the service is
// safe for concurrent use.
type DocumentService struct {
	repo   DocumentRepository
	ledger LedgerClient
	key    []byte
}

// NewDocumentService creates a new DocumentService. The key must be exactly
// 32 bytes; a wrong-sized key is a configuration fault and the caller is
// expected to refuse to start.
func NewDocumentService(repo DocumentRepository, ledger LedgerClient, key []byte) (*DocumentService, error) {
	if len(key) != sealing.KeySize {
		return nil, fmt.Errorf("%w: got %d", domain.ErrKeyLength, len(key))
	}
	return &DocumentService{
		repo:   repo,
		ledger: ledger,
		key:    key,
	}, nil
}

// CreateDocument seals the plaintext, persists the document and then anchors
// its fingerprint on the ledger. Anchoring happens strictly after the local
// write has succeeded and is best-effort: a ledger failure never fails the
// call, it is reported in the receipt so the anchor can be retried out-of-band.
func (s *DocumentService) CreateDocument(ctx context.Context, plaintext []byte, patientID, categoryID, doctorID string) (*domain.SealReceipt, error) {
	if len(plaintext) == 0 {
		return nil, domain.ErrMissingContent
	}

	sealed, err := sealing.Seal(plaintext, s.key)
	if err != nil {
		return nil, fmt.Errorf("sealing document: %w", err)
	}

	// The fingerprint covers the whole sealed blob, IV included.
	doc := &domain.SealedDocument{
		PatientID:   patientID,
		CategoryID:  categoryID,
		DoctorID:    doctorID,
		Ciphertext:  sealed,
		Fingerprint: sealing.Fingerprint(sealed),
	}
	if err := s.repo.Create(ctx, doc); err != nil {
		return nil, fmt.Errorf("creating document: %w", err)
	}

	receipt := &domain.SealReceipt{
		ID:          doc.ID,
		Fingerprint: doc.Fingerprint,
		CreatedAt:   doc.CreatedAt,
	}

	txHash, err := s.ledger.Anchor(ctx, doc.ID, doc.Fingerprint)
	if err != nil {
		slog.WarnContext(ctx, "document sealed but not anchored",
			"operation", "create_document",
			"document_id", doc.ID,
			"error", err,
		)
		receipt.AnchorError = err.Error()
		return receipt, nil
	}

	receipt.Anchored = true
	receipt.AnchorTx = txHash
	return receipt, nil
}

// GetDocument returns the sealed document with the given ID.
func (s *DocumentService) GetDocument(ctx context.Context, id string) (*domain.SealedDocument, error) {
	doc, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("finding document: %w", err)
	}
	if doc == nil {
		return nil, domain.ErrDocumentNotFound
	}
	return doc, nil
}

// RevealPlaintext decrypts the stored ciphertext of a document. Cipher
// failures (wrong key, corruption, truncation) propagate unchanged.
func (s *DocumentService) RevealPlaintext(ctx context.Context, id string) ([]byte, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}
	return sealing.Unseal(doc.Ciphertext, s.key)
}

// VerifyLocal recomputes the fingerprint of the stored ciphertext and compares
// it in constant time against the stored fingerprint. It detects local storage
// corruption or direct tampering with the ciphertext/fingerprint pair.
func (s *DocumentService) VerifyLocal(ctx context.Context, id string) (bool, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return false, err
	}
	return s.verifyLocalDoc(doc), nil
}

// VerifyAnchored compares the stored fingerprint against the one anchored on
// the ledger. A ledger outage yields OutcomeUnavailable, never a false
// "mismatch": the caller must be able to tell "tampered" from "could not check".
func (s *DocumentService) VerifyAnchored(ctx context.Context, id string) (domain.VerificationOutcome, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return "", err
	}
	return s.verifyAnchoredDoc(ctx, doc), nil
}

// VerifyDocument produces the full three-verdict integrity report: local
// fingerprint match, ledger anchor outcome and decryptability. The verdicts
// are independent; each failure mode implies a different remediation.
func (s *DocumentService) VerifyDocument(ctx context.Context, id string) (*domain.VerificationReport, error) {
	doc, err := s.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	_, unsealErr := sealing.Unseal(doc.Ciphertext, s.key)

	return &domain.VerificationReport{
		ID:             doc.ID,
		LocalIntegrity: s.verifyLocalDoc(doc),
		AnchorOutcome:  s.verifyAnchoredDoc(ctx, doc),
		Decryptable:    unsealErr == nil,
	}, nil
}

// ListPatientHistory returns a patient's documents with per-entry integrity
// verdicts. A failing verification on one document never aborts the batch.
func (s *DocumentService) ListPatientHistory(ctx context.Context, patientID string) ([]*domain.HistoryEntry, error) {
	docs, err := s.repo.FindAllByPatientID(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("finding patient documents: %w", err)
	}

	entries := make([]*domain.HistoryEntry, len(docs))
	for i, doc := range docs {
		entries[i] = &domain.HistoryEntry{
			ID:             doc.ID,
			CategoryID:     doc.CategoryID,
			DoctorID:       doc.DoctorID,
			Fingerprint:    doc.Fingerprint,
			CreatedAt:      doc.CreatedAt,
			LocalIntegrity: s.verifyLocalDoc(doc),
			AnchorOutcome:  s.verifyAnchoredDoc(ctx, doc),
		}
	}
	return entries, nil
}

func (s *DocumentService) verifyLocalDoc(doc *domain.SealedDocument) bool {
	return sealing.FingerprintEqual(sealing.Fingerprint(doc.Ciphertext), doc.Fingerprint)
}

func (s *DocumentService) verifyAnchoredDoc(ctx context.Context, doc *domain.SealedDocument) domain.VerificationOutcome {
	anchored, err := s.ledger.ReadFingerprint(ctx, doc.ID)
	if err != nil {
		if errors.Is(err, domain.ErrAnchorNotFound) {
			return domain.OutcomeNotAnchored
		}
		slog.WarnContext(ctx, "ledger verification unavailable",
			"operation", "verify_anchored",
			"document_id", doc.ID,
			"error", err,
		)
		return domain.OutcomeUnavailable
	}
	if sealing.FingerprintEqual(anchored, doc.Fingerprint) {
		return domain.OutcomeMatch
	}
	return domain.OutcomeMismatch
}
