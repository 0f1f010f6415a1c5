package ports

import "context"

// ReferencePage is the summary of a reference-encyclopedia article.
type ReferencePage struct {
	Title          string
	Extract        string
	ImageURL       string
	ThumbnailURL   string
	Disambiguation bool
}

// ReferenceSource looks up encyclopedia summaries.
type ReferenceSource interface {
	// Lookup returns the page for name, or nil when no page exists.
	Lookup(ctx context.Context, name string) (*ReferencePage, error)
}

// MediaSearch searches a media repository.
type MediaSearch interface {
	// Search returns direct file URLs matching the query, best first.
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Catalog lists candidate subject names from a browsable category.
type Catalog interface {
	Candidates(ctx context.Context, limit int) ([]string, error)
}
