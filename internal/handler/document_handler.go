// Package handler provides the HTTP handlers.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"regexp"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/middleware"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/usecase"
	"github.com/BahMbeirik/Dossiers-Medicaux/pkg/httputil"
)

var subjectIDRegex = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

// DocumentHandler serves the document sealing and verification endpoints.
type DocumentHandler struct {
	service *usecase.DocumentService
}

// NewDocumentHandler creates a new DocumentHandler.
func NewDocumentHandler(service *usecase.DocumentService) *DocumentHandler {
	return &DocumentHandler{service: service}
}

func validateSubjectID(id string) error {
	if id == "" || len(id) > 64 || !subjectIDRegex.MatchString(id) {
		return domain.ErrInvalidSubjectID
	}
	return nil
}

// CreateDocumentRequest is the request body for document creation. The content
// is the plaintext clinical result, already serialized by the caller.
type CreateDocumentRequest struct {
	PatientID  string `json:"patient_id"`
	CategoryID string `json:"category_id"`
	DoctorID   string `json:"doctor_id"`
	Content    string `json:"content"`
}

// SealReceiptResponse is the response body for a created document.
type SealReceiptResponse struct {
	ID          string `json:"id"`
	Fingerprint string `json:"fingerprint"`
	Anchored    bool   `json:"anchored"`
	AnchorTx    string `json:"anchor_tx,omitempty"`
	AnchorError string `json:"anchor_error,omitempty"`
	CreatedAt   string `json:"created_at"`
}

// DocumentResponse is the response body for a revealed document.
type DocumentResponse struct {
	ID          string `json:"id"`
	PatientID   string `json:"patient_id"`
	CategoryID  string `json:"category_id"`
	DoctorID    string `json:"doctor_id"`
	Content     string `json:"content"`
	Fingerprint string `json:"fingerprint"`
	CreatedAt   string `json:"created_at"`
}

// IntegrityResponse is the response body for a full integrity check. Status is
// one of "confirmed", "failed" and "unavailable": a ledger outage is reported
// as such, never as a failed verification.
type IntegrityResponse struct {
	ID             string `json:"id"`
	Status         string `json:"status"`
	LocalIntegrity bool   `json:"local_integrity"`
	AnchorOutcome  string `json:"anchor_outcome"`
	Decryptable    bool   `json:"decryptable"`
}

// HistoryEntryResponse is one document in a patient history listing.
type HistoryEntryResponse struct {
	ID             string `json:"id"`
	CategoryID     string `json:"category_id"`
	DoctorID       string `json:"doctor_id"`
	Fingerprint    string `json:"fingerprint"`
	CreatedAt      string `json:"created_at"`
	LocalIntegrity bool   `json:"local_integrity"`
	AnchorOutcome  string `json:"anchor_outcome"`
}

// HistoryResponse is the response body for a patient history listing.
type HistoryResponse struct {
	Documents []HistoryEntryResponse `json:"documents"`
}

// CreateDocument seals and persists a new document, then anchors it.
func (h *DocumentHandler) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var req CreateDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_BODY", "request body is not valid JSON")
		return
	}
	for _, id := range []string{req.PatientID, req.CategoryID, req.DoctorID} {
		if err := validateSubjectID(id); err != nil {
			httputil.Error(w, http.StatusBadRequest, "INVALID_SUBJECT_ID", "patient, category and doctor IDs are required and must be well-formed")
			return
		}
	}

	receipt, err := h.service.CreateDocument(r.Context(), []byte(req.Content), req.PatientID, req.CategoryID, req.DoctorID)
	if err != nil {
		if errors.Is(err, domain.ErrMissingContent) {
			middleware.WriteAuditLog(r.Context(), "CREATE_DOCUMENT", "", "FAILED")
			httputil.Error(w, http.StatusBadRequest, "MISSING_CONTENT", "document content must not be empty")
			return
		}
		middleware.WriteAuditLog(r.Context(), "CREATE_DOCUMENT", "", "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "CREATE_DOCUMENT", receipt.ID, "SUCCESS")
	httputil.JSON(w, http.StatusCreated, SealReceiptResponse{
		ID:          receipt.ID,
		Fingerprint: receipt.Fingerprint,
		Anchored:    receipt.Anchored,
		AnchorTx:    receipt.AnchorTx,
		AnchorError: receipt.AnchorError,
		CreatedAt:   receipt.CreatedAt.Format(time.RFC3339),
	})
}

// GetDocument reveals the plaintext of a document. Authorization of the
// requester happens outside this service.
func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")

	doc, err := h.service.GetDocument(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			httputil.Error(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
			return
		}
		middleware.WriteAuditLog(r.Context(), "READ_DOCUMENT", documentID, "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	plaintext, err := h.service.RevealPlaintext(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrPadding) || errors.Is(err, domain.ErrInvalidCiphertext) {
			middleware.WriteAuditLog(r.Context(), "READ_DOCUMENT", documentID, "FAILED")
			httputil.Error(w, http.StatusUnprocessableEntity, "DOCUMENT_UNREADABLE", "stored ciphertext cannot be decrypted")
			return
		}
		middleware.WriteAuditLog(r.Context(), "READ_DOCUMENT", documentID, "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "READ_DOCUMENT", documentID, "SUCCESS")
	httputil.JSON(w, http.StatusOK, DocumentResponse{
		ID:          doc.ID,
		PatientID:   doc.PatientID,
		CategoryID:  doc.CategoryID,
		DoctorID:    doc.DoctorID,
		Content:     string(plaintext),
		Fingerprint: doc.Fingerprint,
		CreatedAt:   doc.CreatedAt.Format(time.RFC3339),
	})
}

// VerifyDocument runs the full integrity check on a document.
func (h *DocumentHandler) VerifyDocument(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")

	report, err := h.service.VerifyDocument(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			httputil.Error(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
			return
		}
		middleware.WriteAuditLog(r.Context(), "VERIFY_DOCUMENT", documentID, "FAILED")
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	middleware.WriteAuditLog(r.Context(), "VERIFY_DOCUMENT", documentID, "SUCCESS")
	httputil.JSON(w, http.StatusOK, IntegrityResponse{
		ID:             report.ID,
		Status:         integrityStatus(report),
		LocalIntegrity: report.LocalIntegrity,
		AnchorOutcome:  string(report.AnchorOutcome),
		Decryptable:    report.Decryptable,
	})
}

// VerifyLocal checks only the stored fingerprint against the stored ciphertext.
func (h *DocumentHandler) VerifyLocal(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")

	match, err := h.service.VerifyLocal(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			httputil.Error(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"id":    documentID,
		"match": match,
	})
}

// VerifyAnchored checks the stored fingerprint against the ledger anchor.
func (h *DocumentHandler) VerifyAnchored(w http.ResponseWriter, r *http.Request) {
	documentID := chi.URLParam(r, "document_id")

	outcome, err := h.service.VerifyAnchored(r.Context(), documentID)
	if err != nil {
		if errors.Is(err, domain.ErrDocumentNotFound) {
			httputil.Error(w, http.StatusNotFound, "DOCUMENT_NOT_FOUND", "document not found")
			return
		}
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	httputil.JSON(w, http.StatusOK, map[string]interface{}{
		"id":      documentID,
		"outcome": string(outcome),
	})
}

// ListPatientDocuments returns a patient's document history with per-entry
// integrity verdicts.
func (h *DocumentHandler) ListPatientDocuments(w http.ResponseWriter, r *http.Request) {
	patientID := chi.URLParam(r, "patient_id")
	if err := validateSubjectID(patientID); err != nil {
		httputil.Error(w, http.StatusBadRequest, "INVALID_SUBJECT_ID", "invalid patient ID format")
		return
	}

	entries, err := h.service.ListPatientHistory(r.Context(), patientID)
	if err != nil {
		httputil.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		return
	}

	response := HistoryResponse{
		Documents: make([]HistoryEntryResponse, len(entries)),
	}
	for i, entry := range entries {
		response.Documents[i] = HistoryEntryResponse{
			ID:             entry.ID,
			CategoryID:     entry.CategoryID,
			DoctorID:       entry.DoctorID,
			Fingerprint:    entry.Fingerprint,
			CreatedAt:      entry.CreatedAt.Format(time.RFC3339),
			LocalIntegrity: entry.LocalIntegrity,
			AnchorOutcome:  string(entry.AnchorOutcome),
		}
	}
	httputil.JSON(w, http.StatusOK, response)
}

// integrityStatus collapses a report into the user-visible overall status.
// Local corruption or an anchored mismatch means "failed"; a ledger outage
// alone means "unavailable", not "failed".
func integrityStatus(report *domain.VerificationReport) string {
	if !report.LocalIntegrity || !report.Decryptable || report.AnchorOutcome == domain.OutcomeMismatch {
		return "failed"
	}
	if report.AnchorOutcome == domain.OutcomeUnavailable {
		return "unavailable"
	}
	return "confirmed"
}
