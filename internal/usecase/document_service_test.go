package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/BahMbeirik/Dossiers-Medicaux/internal/domain"
	"github.com/BahMbeirik/Dossiers-Medicaux/internal/sealing"
)

// mockDocumentRepository is a mock repository for tests.
type mockDocumentRepository struct {
	createErr      error
	findByIDResult *domain.SealedDocument
	findByIDErr    error
	findAllResult  []*domain.SealedDocument
	findAllErr     error
	createdDocs    []*domain.SealedDocument
}

func (m *mockDocumentRepository) Create(ctx context.Context, doc *domain.SealedDocument) error {
	if m.createErr != nil {
		return m.createErr
	}
	doc.ID = fmt.Sprintf("doc-%d", len(m.createdDocs)+1)
	doc.CreatedAt = time.Now()
	m.createdDocs = append(m.createdDocs, doc)
	return nil
}

func (m *mockDocumentRepository) FindByID(ctx context.Context, id string) (*domain.SealedDocument, error) {
	return m.findByIDResult, m.findByIDErr
}

func (m *mockDocumentRepository) FindAllByPatientID(ctx context.Context, patientID string) ([]*domain.SealedDocument, error) {
	return m.findAllResult, m.findAllErr
}

// mockLedgerClient is a mock anchor ledger for tests.
type mockLedgerClient struct {
	anchorTx    string
	anchorErr   error
	readResult  string
	readErr     error
	anchorCalls []string
}

func (m *mockLedgerClient) Anchor(ctx context.Context, id, fingerprint string) (string, error) {
	if m.anchorErr != nil {
		return "", m.anchorErr
	}
	m.anchorCalls = append(m.anchorCalls, id+":"+fingerprint)
	if m.anchorTx != "" {
		return m.anchorTx, nil
	}
	return "0xdeadbeef", nil
}

func (m *mockLedgerClient) ReadFingerprint(ctx context.Context, id string) (string, error) {
	if m.readErr != nil {
		return "", m.readErr
	}
	return m.readResult, nil
}

var serviceTestKey = bytes.Repeat([]byte{0x42}, sealing.KeySize)

func newTestService(t *testing.T, repo *mockDocumentRepository, ledger *mockLedgerClient) *DocumentService {
	t.Helper()
	svc, err := NewDocumentService(repo, ledger, serviceTestKey)
	if err != nil {
		t.Fatalf("NewDocumentService failed: %v", err)
	}
	return svc
}

// sealedTestDocument builds a valid document sealed under the service key.
func sealedTestDocument(t *testing.T, plaintext string) *domain.SealedDocument {
	t.Helper()
	sealed, err := sealing.Seal([]byte(plaintext), serviceTestKey)
	if err != nil {
		t.Fatalf("Seal failed: %v", err)
	}
	return &domain.SealedDocument{
		ID:          "doc-1",
		PatientID:   "patient-1",
		CategoryID:  "category-1",
		DoctorID:    "doctor-1",
		Ciphertext:  sealed,
		Fingerprint: sealing.Fingerprint(sealed),
		CreatedAt:   time.Now(),
	}
}

func TestNewDocumentService_KeyLength(t *testing.T) {
	_, err := NewDocumentService(&mockDocumentRepository{}, &mockLedgerClient{}, make([]byte, 16))
	if !errors.Is(err, domain.ErrKeyLength) {
		t.Errorf("want ErrKeyLength, got %v", err)
	}
}

func TestCreateDocument_Success(t *testing.T) {
	repo := &mockDocumentRepository{}
	ledger := &mockLedgerClient{anchorTx: "0xabc123"}
	svc := newTestService(t, repo, ledger)

	plaintext := []byte("blood-glucose:95mg/dL")
	receipt, err := svc.CreateDocument(context.Background(), plaintext, "patient-1", "category-1", "doctor-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(repo.createdDocs) != 1 {
		t.Fatalf("want 1 created document, got %d", len(repo.createdDocs))
	}
	doc := repo.createdDocs[0]

	// the stored blob must be sealed, not the plaintext
	if bytes.Contains(doc.Ciphertext, plaintext) {
		t.Error("ciphertext contains the plaintext")
	}
	if len(doc.Ciphertext) < 32 {
		t.Errorf("ciphertext too short: %d bytes", len(doc.Ciphertext))
	}

	// the fingerprint covers the whole sealed blob
	if doc.Fingerprint != sealing.Fingerprint(doc.Ciphertext) {
		t.Error("stored fingerprint does not match the sealed blob")
	}
	if receipt.Fingerprint != doc.Fingerprint {
		t.Error("receipt fingerprint differs from stored fingerprint")
	}

	if !receipt.Anchored {
		t.Error("want anchored receipt")
	}
	if receipt.AnchorTx != "0xabc123" {
		t.Errorf("want anchor tx 0xabc123, got %s", receipt.AnchorTx)
	}
	if len(ledger.anchorCalls) != 1 || ledger.anchorCalls[0] != doc.ID+":"+doc.Fingerprint {
		t.Errorf("unexpected anchor calls: %v", ledger.anchorCalls)
	}
}

func TestCreateDocument_MissingContent(t *testing.T) {
	repo := &mockDocumentRepository{}
	ledger := &mockLedgerClient{}
	svc := newTestService(t, repo, ledger)

	_, err := svc.CreateDocument(context.Background(), nil, "patient-1", "category-1", "doctor-1")
	if !errors.Is(err, domain.ErrMissingContent) {
		t.Errorf("want ErrMissingContent, got %v", err)
	}
	if len(repo.createdDocs) != 0 {
		t.Error("no document must be persisted for empty content")
	}
	if len(ledger.anchorCalls) != 0 {
		t.Error("nothing must be anchored for empty content")
	}
}

func TestCreateDocument_AnchorFailureDoesNotFailCreation(t *testing.T) {
	repo := &mockDocumentRepository{}
	ledger := &mockLedgerClient{anchorErr: fmt.Errorf("%w: insufficient funds", domain.ErrAnchorFailed)}
	svc := newTestService(t, repo, ledger)

	receipt, err := svc.CreateDocument(context.Background(), []byte("result"), "patient-1", "category-1", "doctor-1")
	if err != nil {
		t.Fatalf("creation must succeed without the ledger: %v", err)
	}

	if receipt.Anchored {
		t.Error("want anchored=false after ledger failure")
	}
	if receipt.AnchorError == "" {
		t.Error("want anchor error reported in the receipt")
	}
	if len(repo.createdDocs) != 1 {
		t.Errorf("want 1 created document, got %d", len(repo.createdDocs))
	}
}

func TestCreateDocument_NoAnchorBeforePersistence(t *testing.T) {
	repo := &mockDocumentRepository{createErr: errors.New("disk full")}
	ledger := &mockLedgerClient{}
	svc := newTestService(t, repo, ledger)

	_, err := svc.CreateDocument(context.Background(), []byte("result"), "patient-1", "category-1", "doctor-1")
	if err == nil {
		t.Fatal("want error when persistence fails")
	}
	if len(ledger.anchorCalls) != 0 {
		t.Error("an anchor must never be written before local persistence succeeded")
	}
}

func TestRevealPlaintext_RoundTrip(t *testing.T) {
	doc := sealedTestDocument(t, "blood-glucose:95mg/dL")
	repo := &mockDocumentRepository{findByIDResult: doc}
	svc := newTestService(t, repo, &mockLedgerClient{})

	plaintext, err := svc.RevealPlaintext(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(plaintext) != "blood-glucose:95mg/dL" {
		t.Errorf("want original plaintext, got %q", plaintext)
	}
}

func TestRevealPlaintext_NotFound(t *testing.T) {
	repo := &mockDocumentRepository{findByIDResult: nil}
	svc := newTestService(t, repo, &mockLedgerClient{})

	_, err := svc.RevealPlaintext(context.Background(), "missing")
	if !errors.Is(err, domain.ErrDocumentNotFound) {
		t.Errorf("want ErrDocumentNotFound, got %v", err)
	}
}

func TestRevealPlaintext_MalformedCiphertext(t *testing.T) {
	// a stored blob that is not a whole number of cipher blocks
	blob := bytes.Repeat([]byte{0x5A}, 17)
	doc := &domain.SealedDocument{ID: "doc-1", Ciphertext: blob, Fingerprint: sealing.Fingerprint(blob)}
	repo := &mockDocumentRepository{findByIDResult: doc}
	svc := newTestService(t, repo, &mockLedgerClient{})

	_, err := svc.RevealPlaintext(context.Background(), doc.ID)
	if !errors.Is(err, domain.ErrInvalidCiphertext) {
		t.Errorf("want ErrInvalidCiphertext, got %v", err)
	}
}

func TestVerifyLocal_Match(t *testing.T) {
	doc := sealedTestDocument(t, "intact result")
	repo := &mockDocumentRepository{findByIDResult: doc}
	svc := newTestService(t, repo, &mockLedgerClient{})

	match, err := svc.VerifyLocal(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !match {
		t.Error("want local verification to pass for intact document")
	}
}

func TestVerifyLocal_TamperedCiphertext(t *testing.T) {
	doc := sealedTestDocument(t, "tampered result")
	doc.Ciphertext[len(doc.Ciphertext)/2] ^= 0x01
	repo := &mockDocumentRepository{findByIDResult: doc}
	svc := newTestService(t, repo, &mockLedgerClient{})

	match, err := svc.VerifyLocal(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if match {
		t.Error("want local verification to fail after a bit flip")
	}
}

func TestVerifyAnchored_Outcomes(t *testing.T) {
	doc := sealedTestDocument(t, "anchored result")

	cases := map[string]struct {
		readResult string
		readErr    error
		want       domain.VerificationOutcome
	}{
		"match":        {readResult: doc.Fingerprint, want: domain.OutcomeMatch},
		"mismatch":     {readResult: sealing.Fingerprint([]byte("other")), want: domain.OutcomeMismatch},
		"not anchored": {readErr: domain.ErrAnchorNotFound, want: domain.OutcomeNotAnchored},
		"ledger down":  {readErr: fmt.Errorf("%w: connection refused", domain.ErrLedgerUnavailable), want: domain.OutcomeUnavailable},
	}

	for name, tc := range cases {
		repo := &mockDocumentRepository{findByIDResult: doc}
		ledger := &mockLedgerClient{readResult: tc.readResult, readErr: tc.readErr}
		svc := newTestService(t, repo, ledger)

		outcome, err := svc.VerifyAnchored(context.Background(), doc.ID)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", name, err)
		}
		if outcome != tc.want {
			t.Errorf("%s: want %s, got %s", name, tc.want, outcome)
		}
	}
}

func TestVerifyDocument_IntactAndAnchored(t *testing.T) {
	doc := sealedTestDocument(t, "blood-glucose:95mg/dL")
	repo := &mockDocumentRepository{findByIDResult: doc}
	ledger := &mockLedgerClient{readResult: doc.Fingerprint}
	svc := newTestService(t, repo, ledger)

	report, err := svc.VerifyDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !report.LocalIntegrity {
		t.Error("want local integrity")
	}
	if report.AnchorOutcome != domain.OutcomeMatch {
		t.Errorf("want anchor match, got %s", report.AnchorOutcome)
	}
	if !report.Decryptable {
		t.Error("want decryptable")
	}
}

// Local and anchored checks are independent: tampering with the stored
// ciphertext breaks the local check, while the stored fingerprint still
// matches the anchored one.
func TestVerifyDocument_TamperBreaksOnlyLocalCheck(t *testing.T) {
	doc := sealedTestDocument(t, "blood-glucose:95mg/dL")
	ledger := &mockLedgerClient{readResult: doc.Fingerprint}

	// flip one bit in the IV: the fingerprint changes but decryption still works
	doc.Ciphertext[0] ^= 0x01
	repo := &mockDocumentRepository{findByIDResult: doc}
	svc := newTestService(t, repo, ledger)

	report, err := svc.VerifyDocument(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if report.LocalIntegrity {
		t.Error("want local verification to fail after tampering")
	}
	if report.AnchorOutcome != domain.OutcomeMatch {
		t.Errorf("anchored check compares the stored fingerprint, want match, got %s", report.AnchorOutcome)
	}
}

func TestListPatientHistory_PartialFailure(t *testing.T) {
	intact := sealedTestDocument(t, "first result")
	tampered := sealedTestDocument(t, "second result")
	tampered.ID = "doc-2"
	tampered.Ciphertext[20] ^= 0xFF

	repo := &mockDocumentRepository{findAllResult: []*domain.SealedDocument{intact, tampered}}
	ledger := &mockLedgerClient{readErr: fmt.Errorf("%w: timeout", domain.ErrLedgerUnavailable)}
	svc := newTestService(t, repo, ledger)

	entries, err := svc.ListPatientHistory(context.Background(), "patient-1")
	if err != nil {
		t.Fatalf("a failing entry must not abort the listing: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("want 2 entries, got %d", len(entries))
	}

	if !entries[0].LocalIntegrity {
		t.Error("want intact entry to verify locally")
	}
	if entries[1].LocalIntegrity {
		t.Error("want tampered entry to fail locally")
	}
	for _, entry := range entries {
		if entry.AnchorOutcome != domain.OutcomeUnavailable {
			t.Errorf("want unavailable anchor outcome while the ledger is down, got %s", entry.AnchorOutcome)
		}
	}
}
