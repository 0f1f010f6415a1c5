package entities

import "time"

// HistoryRecord is one past publication.
type HistoryRecord struct {
	ID       string    `json:"id"`
	Subject  Subject   `json:"subject"`
	Facts    []string  `json:"facts,omitempty"`
	ImageURL string    `json:"image_url,omitempty"`
	PostedAt time.Time `json:"posted_at"`
}

// CandidateTier names the selection tier that produced a subject.
type CandidateTier string

// Candidate tiers, in the order they are tried.
const (
	TierPriority   CandidateTier = "priority"
	TierCurated    CandidateTier = "curated"
	TierCatalog    CandidateTier = "catalog"
	TierGenerative CandidateTier = "generative"
	TierExhausted  CandidateTier = "exhausted"
)

// MediaSource names the strategy that produced an image URL.
type MediaSource string

// Media sources, in resolution order. MediaNone means no image was found.
const (
	MediaCache           MediaSource = "cache"
	MediaReferenceDirect MediaSource = "reference_direct"
	MediaAlternateName   MediaSource = "alternate_name"
	MediaSearchSource    MediaSource = "media_search"
	MediaGenerative      MediaSource = "generative"
	MediaSimilar         MediaSource = "similar"
	MediaCuratedDefault  MediaSource = "curated_default"
	MediaNone            MediaSource = "none"
)

// IsFallback reports whether the image was borrowed from another subject
// or a curated default rather than found for the subject itself.
func (m MediaSource) IsFallback() bool {
	return m == MediaSimilar || m == MediaCuratedDefault
}

// ContentUnit is the assembled publishable item for one subject.
type ContentUnit struct {
	Subject     Subject  `json:"subject"`
	Description string   `json:"description"`
	ImageURL    *string  `json:"image_url"`
	Facts       []string `json:"facts"`
	// GeneratedByFallback is true when the subject came from exhaustion
	// fallback, the facts from the curated table, or the description from
	// the templated sentence.
	GeneratedByFallback bool          `json:"generated_by_fallback"`
	CandidateTier       CandidateTier `json:"candidate_tier"`
	Repeated            bool          `json:"repeated,omitempty"`
	// SuggestionID links the unit to the approved suggestion it came from.
	SuggestionID string      `json:"suggestion_id,omitempty"`
	MediaSource  MediaSource `json:"media_source"`
	FactSource   FactSource  `json:"fact_source"`
	CreatedAt    time.Time   `json:"created_at"`
}

// HasImage reports whether the unit carries an image URL.
func (c *ContentUnit) HasImage() bool {
	return c.ImageURL != nil && *c.ImageURL != ""
}

// Image returns the image URL or an empty string.
func (c *ContentUnit) Image() string {
	if c.ImageURL == nil {
		return ""
	}
	return *c.ImageURL
}

// HistoryStats summarizes the publication history.
type HistoryStats struct {
	Subjects      int       `json:"subjects"`
	Posts         int       `json:"posts"`
	WithFacts     int       `json:"with_facts"`
	PendingIdeas  int       `json:"pending_suggestions"`
	LastPostedAt  time.Time `json:"last_posted_at,omitempty"`
	LastPostedFor string    `json:"last_posted_for,omitempty"`
}
