package ports

import "context"

// Classifier decides whether a name or its reference text describes a single
// species rather than a group, a non-bird, or an unrelated topic.
type Classifier interface {
	// RejectsName is the fast, offline check applied before any lookup.
	RejectsName(name string) bool

	// IsSpecies inspects the reference page text.
	IsSpecies(title, text string) bool
}

// SubjectValidator runs the full species check, including reference lookups.
type SubjectValidator interface {
	// Validate returns entities.ErrValidationRejected when name is not a
	// concrete species or cannot be confirmed.
	Validate(ctx context.Context, name string) error
}

// PhotoFilter decides whether a URL points at a real photograph.
type PhotoFilter interface {
	IsRealPhoto(url string) bool
}
