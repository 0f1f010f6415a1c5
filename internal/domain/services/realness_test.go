package services

import (
	"net/url"
	"path"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealnessFilter_IsRealPhoto(t *testing.T) {
	f := NewRealnessFilter(DefaultRealnessRules())

	tests := []struct {
		name string
		url  string
		want bool
	}{
		{"original file", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Troglodytes_troglodytes.jpg", true},
		{"large thumbnail", "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ab/Wren.jpg/1024px-Wren.jpg", true},
		{"upper-case extension", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Erithacus_rubecula.JPG", true},
		{"marker inside a word", "https://upload.wikimedia.org/wikipedia/commons/1/1a/Ciconia_ciconia.jpg", true},
		{"small thumbnail", "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ab/Wren.jpg/120px-Wren.jpg", false},
		{"small width query", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Wren.jpg?width=200", false},
		{"vector file", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Bird_icon.svg", false},
		{"svg rendered to png", "https://upload.wikimedia.org/wikipedia/commons/thumb/a/ab/Wren.svg/800px-Wren.svg.png", false},
		{"animated gif", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Wren.gif", false},
		{"drawing", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Parus_major_drawing.jpg", false},
		{"distribution map", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Parus_major_distribution_map.png", false},
		{"placeholder", "https://upload.wikimedia.org/wikipedia/commons/a/ab/No_image_placeholder.png", false},
		{"unapproved domain", "https://example.com/wren.jpg", false},
		{"lookalike domain", "https://evilwikimedia.org/wren.jpg", false},
		{"non-http scheme", "ftp://upload.wikimedia.org/wren.jpg", false},
		{"no extension", "https://upload.wikimedia.org/wikipedia/commons/a/ab/Wren", false},
		{"empty", "", false},
		{"garbage", "::not a url::", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsRealPhoto(tt.url))
		})
	}
}

// Every accepted URL must satisfy each rule independently.
func TestRealnessFilter_AcceptedURLsSatisfyRules(t *testing.T) {
	rules := DefaultRealnessRules()
	f := NewRealnessFilter(rules)

	hosts := []string{"upload.wikimedia.org", "commons.wikimedia.org", "example.org", "cdn.example.com"}
	files := []string{
		"Wren.jpg", "Wren.jpeg", "Wren.png", "Wren.webp", "Wren.svg", "Wren.gif",
		"Wren_sketch.jpg", "Wren_logo.png", "thumb/Wren.jpg/300px-Wren.jpg",
		"thumb/Wren.jpg/640px-Wren.jpg", "Wren_stub.jpg", "Wren_(cropped).jpg",
	}

	accepted := 0
	for _, host := range hosts {
		for _, file := range files {
			raw := "https://" + host + "/wikipedia/commons/" + file
			if !f.IsRealPhoto(raw) {
				continue
			}
			accepted++

			u, err := url.Parse(raw)
			require.NoError(t, err)
			assert.True(t, strings.HasSuffix(u.Hostname(), "wikimedia.org"), raw)

			ext := path.Ext(strings.ToLower(u.Path))
			assert.Contains(t, rules.Extensions, ext, raw)
			for _, bad := range rules.BadPatterns {
				assert.NotContains(t, strings.ToLower(u.Path), bad, raw)
			}
			for _, m := range rePixelWidth.FindAllStringSubmatch(u.Path, -1) {
				assert.GreaterOrEqual(t, len(m[1]), 3, raw)
				assert.NotEqual(t, "300", m[1], raw)
			}
		}
	}
	assert.Positive(t, accepted)
}
