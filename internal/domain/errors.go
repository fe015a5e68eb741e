package domain

import "errors"

var (
	// ErrKeyLength is returned when the document key is not exactly 32 bytes.
	// This is a configuration fault: the server refuses to start with a bad key.
	ErrKeyLength = errors.New("document key must be exactly 32 bytes")

	// ErrMissingContent is returned when a document is created with empty plaintext.
	ErrMissingContent = errors.New("document content is missing")

	// ErrInvalidCiphertext is returned when a sealed blob is too short or not block-aligned.
	ErrInvalidCiphertext = errors.New("invalid ciphertext")

	// ErrPadding is returned when PKCS#7 unpadding fails. Wrong key, corruption
	// and truncation are deliberately indistinguishable to callers.
	ErrPadding = errors.New("invalid padding")

	// ErrDocumentNotFound is returned when no document exists for the given ID.
	ErrDocumentNotFound = errors.New("document not found")

	// ErrAnchorFailed is returned when submitting an anchor transaction to the ledger fails.
	ErrAnchorFailed = errors.New("anchoring to ledger failed")

	// ErrLedgerUnavailable is returned when the ledger cannot be queried.
	ErrLedgerUnavailable = errors.New("ledger unavailable")

	// ErrAnchorNotFound is returned when no fingerprint was ever anchored for the ID.
	// This is an expected condition, not a failure of the ledger.
	ErrAnchorNotFound = errors.New("no anchor found for document")

	// ErrInvalidDocumentID is returned when a document ID has an invalid format.
	ErrInvalidDocumentID = errors.New("invalid document ID")

	// ErrInvalidSubjectID is returned when a patient, category or doctor ID is malformed.
	ErrInvalidSubjectID = errors.New("invalid subject ID")

	// ErrCategoryNotFound is returned when no category exists for the given ID.
	ErrCategoryNotFound = errors.New("category not found")

	// ErrHospitalNotFound is returned when no hospital exists for the given ID.
	ErrHospitalNotFound = errors.New("hospital not found")

	// ErrFieldNotFound is returned when no form field exists for the given ID.
	ErrFieldNotFound = errors.New("field not found")

	// ErrInvalidName is returned when a reference entity name is empty or too long.
	ErrInvalidName = errors.New("invalid name")

	// ErrInvalidFieldKind is returned when a field declares an unknown kind.
	ErrInvalidFieldKind = errors.New("invalid field kind")

	// ErrMissingOptions is returned when a select field carries no options.
	ErrMissingOptions = errors.New("select field requires options")

	// ErrUnexpectedOptions is returned when a non-select field carries options.
	ErrUnexpectedOptions = errors.New("field kind does not accept options")

	// ErrUnexpectedFileTypes is returned when a non-file field restricts file types.
	ErrUnexpectedFileTypes = errors.New("field kind does not accept allowed file types")

	// ErrMigrationFailed is returned when applying a migration fails.
	ErrMigrationFailed = errors.New("migration failed")

	// ErrInvalidMigrationFile is returned when a migration file name is malformed.
	ErrInvalidMigrationFile = errors.New("invalid migration file")
)
