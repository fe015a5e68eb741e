// Package domain defines the domain model and business rules.
package domain

import "time"

// SealedDocument is an encrypted clinical document. The ciphertext is the
// whole sealed blob (IV followed by AES-256-CBC data) and is never partially
// updated; the fingerprint is the lowercase hex SHA-256 of that blob, always
// recomputed from it and never supplied by a caller.
type SealedDocument struct {
	ID          string
	PatientID   string
	CategoryID  string
	DoctorID    string
	Ciphertext  []byte
	Fingerprint string
	CreatedAt   time.Time
}

// SealReceipt is returned to the caller after a document is sealed. Anchoring
// is best-effort: a document can exist locally without a ledger anchor, in
// which case Anchored is false and AnchorError carries the cause.
type SealReceipt struct {
	ID          string
	Fingerprint string
	Anchored    bool
	AnchorTx    string
	AnchorError string
	CreatedAt   time.Time
}

// VerificationOutcome is the result of checking a document against the ledger.
type VerificationOutcome string

const (
	// OutcomeMatch means the anchored fingerprint equals the stored one.
	OutcomeMatch VerificationOutcome = "match"
	// OutcomeMismatch means the ledger holds a different fingerprint.
	OutcomeMismatch VerificationOutcome = "mismatch"
	// OutcomeUnavailable means the ledger could not be queried. This is not a
	// verification failure: "could not check" must never be reported as "tampered".
	OutcomeUnavailable VerificationOutcome = "unavailable"
	// OutcomeNotAnchored means no fingerprint was ever written for the document.
	OutcomeNotAnchored VerificationOutcome = "not_anchored"
)

// VerificationReport carries the three independent integrity verdicts.
// Each failure mode implies a different remediation: restore from backup,
// re-anchor, or rotate the key.
type VerificationReport struct {
	ID             string
	LocalIntegrity bool
	AnchorOutcome  VerificationOutcome
	Decryptable    bool
}

// HistoryEntry is one document in a patient's history, with its integrity
// verdicts attached. Verification errors on a single entry never abort the
// surrounding listing.
type HistoryEntry struct {
	ID             string
	CategoryID     string
	DoctorID       string
	Fingerprint    string
	CreatedAt      time.Time
	LocalIntegrity bool
	AnchorOutcome  VerificationOutcome
}
