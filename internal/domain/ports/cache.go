package ports

import "context"

// ImageCache remembers resolved image URLs per subject.
// A miss returns "" and a nil error.
type ImageCache interface {
	GetImage(ctx context.Context, name string) (string, error)
	SetImage(ctx context.Context, name, url string) error
	DeleteImage(ctx context.Context, name string) error
}
