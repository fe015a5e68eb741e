package domain

import "time"

// Category groups documents of the same kind of clinical result.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// Hospital is a care facility referenced by documents.
type Hospital struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

// FieldKind enumerates the allowed form field types of a category.
type FieldKind string

const (
	FieldKindText     FieldKind = "text"
	FieldKindNumber   FieldKind = "number"
	FieldKindDate     FieldKind = "date"
	FieldKindTextArea FieldKind = "textarea"
	FieldKindSelect   FieldKind = "select"
	FieldKindFile     FieldKind = "file"
)

// Field is one entry of a category's form. Kind-specific attributes are
// validated at construction, not at read time: only select fields carry
// options, only file fields carry allowed MIME types.
type Field struct {
	ID         string
	CategoryID string
	Name       string
	Kind       FieldKind
	Required   bool

	// Options is the choice list of a select field.
	Options []string
	// AllowedTypes restricts the MIME types a file field accepts.
	AllowedTypes []string

	CreatedAt time.Time
}

// NewField builds a validated Field. It returns ErrInvalidFieldKind,
// ErrMissingOptions, ErrUnexpectedOptions or ErrUnexpectedFileTypes when the
// kind and its attributes do not agree.
func NewField(categoryID, name string, kind FieldKind, required bool, options, allowedTypes []string) (*Field, error) {
	if name == "" || len(name) > 100 {
		return nil, ErrInvalidName
	}

	switch kind {
	case FieldKindText, FieldKindNumber, FieldKindDate, FieldKindTextArea:
		if len(options) > 0 {
			return nil, ErrUnexpectedOptions
		}
		if len(allowedTypes) > 0 {
			return nil, ErrUnexpectedFileTypes
		}
	case FieldKindSelect:
		if len(options) == 0 {
			return nil, ErrMissingOptions
		}
		if len(allowedTypes) > 0 {
			return nil, ErrUnexpectedFileTypes
		}
	case FieldKindFile:
		if len(options) > 0 {
			return nil, ErrUnexpectedOptions
		}
	default:
		return nil, ErrInvalidFieldKind
	}

	return &Field{
		CategoryID:   categoryID,
		Name:         name,
		Kind:         kind,
		Required:     required,
		Options:      options,
		AllowedTypes: allowedTypes,
	}, nil
}
