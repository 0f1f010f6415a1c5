package ports

import "context"

// FactMatch is a stored fact similar to a probe.
type FactMatch struct {
	Subject string
	Fact    string
	Score   float32
}

// FactIndex stores embedded facts for near-duplicate detection across subjects.
type FactIndex interface {
	// Index stores the facts of a subject, replacing previous ones.
	Index(ctx context.Context, subject string, facts []string, vectors [][]float32) error

	// Similar returns the closest stored facts to the vector.
	Similar(ctx context.Context, vector []float32, limit int) ([]FactMatch, error)

	// DeleteSubject removes all facts of a subject.
	DeleteSubject(ctx context.Context, subject string) error
}
