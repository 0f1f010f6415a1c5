package ports

import "context"

// CollectionManager handles vector collection lifecycle operations.
// This is separate from FactIndex because not every deployment runs a
// vector store, and it keeps FactIndex focused on data operations.
type CollectionManager interface {
	// EnsureCollection creates the collection if it doesn't exist.
	EnsureCollection(ctx context.Context, vectorSize uint64) error

	// DeleteCollection removes the collection and all its data.
	DeleteCollection(ctx context.Context) error
}
