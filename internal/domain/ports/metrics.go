package ports

// Metrics records pipeline outcomes.
type Metrics interface {
	CandidateSelected(tier string)
	MediaResolved(source string)
	FactsProduced(source string)
	Fallback(component string)
	Published(kind string)
}
