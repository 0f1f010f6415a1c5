package services

import (
	"net/url"
	"path"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// RealnessRules configures RealnessFilter. All terms are lowercase.
type RealnessRules struct {
	Extensions []string
	// Domains are approved hosts; subdomains of an approved host are approved.
	Domains []string
	// Markers are path tokens identifying non-photographic images.
	Markers []string
	// BadPatterns are path substrings identifying unusable files.
	BadPatterns []string
	// MinPixels is the smallest acceptable width encoded in the URL.
	MinPixels int
}

// DefaultRealnessRules returns rules for Wikimedia-hosted photographs.
func DefaultRealnessRules() RealnessRules {
	return RealnessRules{
		Extensions: []string{".jpg", ".jpeg", ".png", ".webp"},
		Domains:    []string{"upload.wikimedia.org", "commons.wikimedia.org", "wikipedia.org", "wikimedia.org"},
		Markers: []string{
			"drawing", "illustration", "painting", "vector", "sketch", "diagram",
			"poster", "logo", "icon", "clipart", "cartoon", "schematic", "silhouette",
			"graphic", "map", "chart", "artwork", "coloring", "colouring", "pattern",
			"design", "svg", "distribution", "plate", "stamp", "lithograph",
		},
		BadPatterns: []string{
			"/transcoded/", "/temp/", "ogg_", ".gif", "_icon", "_badge", "_emblem",
			"stub", "placeholder", "default", "missing", "no_image", "question_mark",
		},
		MinPixels: 400,
	}
}

var rePixelWidth = regexp.MustCompile(`(\d+)px-`)

// RealnessFilter rejects image URLs that are not real, large-enough photos.
type RealnessFilter struct {
	rules RealnessRules
}

// NewRealnessFilter creates a filter with the given rules.
func NewRealnessFilter(rules RealnessRules) *RealnessFilter {
	return &RealnessFilter{rules: rules}
}

// IsRealPhoto reports whether raw is an approved-domain photo URL with an
// image extension, no illustration markers or bad patterns, and no encoded
// width below the minimum.
func (f *RealnessFilter) IsRealPhoto(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") || u.Host == "" {
		return false
	}
	if !f.approvedHost(strings.ToLower(u.Hostname())) {
		return false
	}

	p := strings.ToLower(u.Path)
	if !f.hasExtension(p) {
		return false
	}
	for _, pattern := range f.rules.BadPatterns {
		if strings.Contains(p, pattern) {
			return false
		}
	}
	if f.hasMarker(p) {
		return false
	}
	return f.largeEnough(p, u.Query())
}

func (f *RealnessFilter) approvedHost(host string) bool {
	for _, d := range f.rules.Domains {
		if host == d || strings.HasSuffix(host, "."+d) {
			return true
		}
	}
	return false
}

func (f *RealnessFilter) hasExtension(p string) bool {
	ext := path.Ext(p)
	for _, allowed := range f.rules.Extensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// hasMarker matches markers against whole path tokens so that names like
// "Ciconia" do not trip "icon".
func (f *RealnessFilter) hasMarker(p string) bool {
	tokens := strings.FieldsFunc(p, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		for _, m := range f.rules.Markers {
			if tok == m {
				return true
			}
		}
	}
	return false
}

func (f *RealnessFilter) largeEnough(p string, query url.Values) bool {
	if f.rules.MinPixels <= 0 {
		return true
	}
	for _, m := range rePixelWidth.FindAllStringSubmatch(p, -1) {
		if size, err := strconv.Atoi(m[1]); err == nil && size < f.rules.MinPixels {
			return false
		}
	}
	if w := query.Get("width"); w != "" {
		if size, err := strconv.Atoi(w); err == nil && size < f.rules.MinPixels {
			return false
		}
	}
	return true
}
