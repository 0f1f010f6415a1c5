package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/ports"
)

const imageURLPrompt = `Find a DIRECT link to a real photograph of the bird "%s" on Wikimedia Commons.

Requirements:
1. The link must point directly at the image file (ending in .jpg, .jpeg or .png)
2. The image must be hosted on upload.wikimedia.org
3. It must be a photograph, not a drawing or illustration
4. Do not return thumbnail or redirect links

If you find a photo, return ONLY the direct link.
If you do not, return NO_PHOTO.`

// MediaStrategy is one step of the image fallback chain.
type MediaStrategy struct {
	Source entities.MediaSource
	// Candidates returns image URLs to try, best first.
	Candidates func(ctx context.Context, subject entities.Subject) ([]string, error)
}

// MediaResult is the outcome of image resolution.
type MediaResult struct {
	URL    string
	Source entities.MediaSource
}

// Found reports whether an image was resolved.
func (m MediaResult) Found() bool {
	return m.URL != ""
}

// MediaResolver walks an ordered list of strategies and returns the first
// candidate URL accepted by the PhotoFilter.
type MediaResolver struct {
	strategies []MediaStrategy
	filter     ports.PhotoFilter
	reference  ports.ReferenceSource
	cache      ports.ImageCache
	metrics    ports.Metrics
	logger     *zap.Logger
}

// MediaOption customises the MediaResolver.
type MediaOption func(*MediaResolver)

// WithImageCache stores resolved images from real sources.
func WithImageCache(cache ports.ImageCache) MediaOption {
	return func(r *MediaResolver) {
		if cache != nil {
			r.cache = cache
		}
	}
}

// WithMediaMetrics records the winning strategy.
func WithMediaMetrics(m ports.Metrics) MediaOption {
	return func(r *MediaResolver) {
		if m != nil {
			r.metrics = m
		}
	}
}

// WithMediaLogger sets the logger.
func WithMediaLogger(logger *zap.Logger) MediaOption {
	return func(r *MediaResolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// NewMediaResolver creates a resolver over the given strategies. The
// reference source is used by HasPhoto and may be nil.
func NewMediaResolver(filter ports.PhotoFilter, reference ports.ReferenceSource, strategies []MediaStrategy, opts ...MediaOption) *MediaResolver {
	r := &MediaResolver{
		strategies: strategies,
		filter:     filter,
		reference:  reference,
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.Named("media")
	return r
}

// Strategies returns the strategy order.
func (r *MediaResolver) Strategies() []entities.MediaSource {
	out := make([]entities.MediaSource, len(r.strategies))
	for i, s := range r.strategies {
		out[i] = s.Source
	}
	return out
}

// Resolve returns the first accepted image, or a result with MediaNone.
// Strategy errors are logged and skipped; no error is fatal.
func (r *MediaResolver) Resolve(ctx context.Context, subject entities.Subject) MediaResult {
	for _, strategy := range r.strategies {
		if ctx.Err() != nil {
			break
		}
		urls, err := strategy.Candidates(ctx, subject)
		if err != nil {
			r.logger.Warn("media strategy failed",
				zap.String("subject", subject.Name),
				zap.String("strategy", string(strategy.Source)),
				zap.Error(err))
			continue
		}
		for _, u := range urls {
			if u == "" {
				continue
			}
			if !r.filter.IsRealPhoto(u) {
				r.logger.Debug("candidate rejected", zap.String("strategy", string(strategy.Source)), zap.String("url", u))
				continue
			}
			r.remember(ctx, subject, strategy.Source, u)
			if r.metrics != nil {
				r.metrics.MediaResolved(string(strategy.Source))
			}
			r.logger.Info("image resolved",
				zap.String("subject", subject.Name),
				zap.String("strategy", string(strategy.Source)))
			return MediaResult{URL: u, Source: strategy.Source}
		}
	}

	if r.metrics != nil {
		r.metrics.MediaResolved(string(entities.MediaNone))
	}
	r.logger.Info("no image found", zap.String("subject", subject.Name))
	return MediaResult{Source: entities.MediaNone}
}

// ResolveImage returns the image URL or nil when none was found.
func (r *MediaResolver) ResolveImage(ctx context.Context, subject entities.Subject) *string {
	res := r.Resolve(ctx, subject)
	if !res.Found() {
		return nil
	}
	return &res.URL
}

// HasPhoto reports whether the reference page of name has a real photo.
func (r *MediaResolver) HasPhoto(ctx context.Context, name string) bool {
	if r.reference == nil {
		return false
	}
	urls, err := referenceImages(ctx, r.reference, name)
	if err != nil {
		return false
	}
	for _, u := range urls {
		if r.filter.IsRealPhoto(u) {
			return true
		}
	}
	return false
}

func (r *MediaResolver) remember(ctx context.Context, subject entities.Subject, source entities.MediaSource, url string) {
	if r.cache == nil || source == entities.MediaCache || source.IsFallback() {
		return
	}
	if err := r.cache.SetImage(ctx, subject.NormalizedName, url); err != nil {
		r.logger.Warn("caching image failed", zap.String("subject", subject.Name), zap.Error(err))
	}
}

// MediaSources bundles the collaborators DefaultMediaStrategies draws on.
// Nil collaborators drop their strategies.
type MediaSources struct {
	Cache     ports.ImageCache
	Reference ports.ReferenceSource
	Search    ports.MediaSearch
	Generator ports.TextGenerator
	Curated   *CuratedData
	// Qualifier is appended to search queries, e.g. "bird".
	Qualifier string
	// SearchLimit caps media search results.
	SearchLimit int
}

// DefaultMediaStrategies builds the standard chain: cache, reference_direct,
// alternate_name, media_search, generative, similar, curated_default.
func DefaultMediaStrategies(src MediaSources) []MediaStrategy {
	var out []MediaStrategy

	if src.Cache != nil {
		out = append(out, MediaStrategy{
			Source: entities.MediaCache,
			Candidates: func(ctx context.Context, s entities.Subject) ([]string, error) {
				u, err := src.Cache.GetImage(ctx, s.NormalizedName)
				if err != nil || u == "" {
					return nil, err
				}
				return []string{u}, nil
			},
		})
	}

	if src.Reference != nil {
		out = append(out, MediaStrategy{
			Source: entities.MediaReferenceDirect,
			Candidates: func(ctx context.Context, s entities.Subject) ([]string, error) {
				return referenceImages(ctx, src.Reference, s.Name)
			},
		})
		if src.Curated != nil {
			out = append(out, MediaStrategy{
				Source: entities.MediaAlternateName,
				Candidates: func(ctx context.Context, s entities.Subject) ([]string, error) {
					var urls []string
					for _, alt := range src.Curated.Alternates(s.Name) {
						found, err := referenceImages(ctx, src.Reference, alt)
						if err != nil {
							return urls, err
						}
						urls = append(urls, found...)
					}
					return urls, nil
				},
			})
		}
	}

	if src.Search != nil {
		limit := src.SearchLimit
		if limit <= 0 {
			limit = 10
		}
		out = append(out, MediaStrategy{
			Source: entities.MediaSearchSource,
			Candidates: func(ctx context.Context, s entities.Subject) ([]string, error) {
				queries := []string{strings.TrimSpace(s.Name + " " + src.Qualifier)}
				if src.Curated != nil {
					queries = append(queries, src.Curated.Alternates(s.Name)...)
				}
				var urls []string
				for _, q := range queries {
					found, err := src.Search.Search(ctx, q, limit)
					if err != nil {
						return urls, fmt.Errorf("searching %q: %w", q, err)
					}
					urls = append(urls, found...)
				}
				return urls, nil
			},
		})
	}

	if src.Generator != nil {
		out = append(out, MediaStrategy{
			Source: entities.MediaGenerative,
			Candidates: func(ctx context.Context, s entities.Subject) ([]string, error) {
				resp, err := src.Generator.Generate(ctx, fmt.Sprintf(imageURLPrompt, s.Name), ports.GenerationParams{
					Temperature: 0.1,
					MaxTokens:   200,
					TopP:        0.1,
				})
				if err != nil {
					return nil, err
				}
				if u := parseDirectImageURL(resp); u != "" {
					return []string{u}, nil
				}
				return nil, nil
			},
		})
	}

	if src.Curated != nil {
		if src.Reference != nil {
			out = append(out, MediaStrategy{
				Source: entities.MediaSimilar,
				Candidates: func(ctx context.Context, s entities.Subject) ([]string, error) {
					var urls []string
					for _, other := range src.Curated.SimilarSubjects(s.Name) {
						if entities.NormalizeName(other) == s.NormalizedName {
							continue
						}
						found, err := referenceImages(ctx, src.Reference, other)
						if err != nil {
							continue
						}
						urls = append(urls, found...)
					}
					return urls, nil
				},
			})
		}
		out = append(out, MediaStrategy{
			Source: entities.MediaCuratedDefault,
			Candidates: func(ctx context.Context, s entities.Subject) ([]string, error) {
				if u := src.Curated.DefaultImage(s.Name); u != "" {
					return []string{u}, nil
				}
				return nil, nil
			},
		})
	}

	return out
}

// referenceImages returns the original and thumbnail URLs of a reference page.
func referenceImages(ctx context.Context, reference ports.ReferenceSource, name string) ([]string, error) {
	page, err := reference.Lookup(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("looking up %q: %w", name, err)
	}
	if page == nil {
		return nil, nil
	}
	var urls []string
	if page.ImageURL != "" {
		urls = append(urls, page.ImageURL)
	}
	if page.ThumbnailURL != "" && page.ThumbnailURL != page.ImageURL {
		urls = append(urls, page.ThumbnailURL)
	}
	return urls, nil
}

// parseDirectImageURL extracts a direct (non-thumbnail) file URL from a
// generated response; anything else yields "".
func parseDirectImageURL(resp string) string {
	for _, field := range strings.Fields(resp) {
		field = strings.Trim(field, "\"'`<>()[],.;")
		if !strings.HasPrefix(field, "http://") && !strings.HasPrefix(field, "https://") {
			continue
		}
		if strings.Contains(field, "/thumb/") || strings.Contains(field, "Special:") {
			return ""
		}
		return field
	}
	return ""
}
