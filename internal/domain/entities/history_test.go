package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContentUnit_Image(t *testing.T) {
	url := "https://upload.wikimedia.org/wikipedia/commons/a/ab/Parus_major.jpg"

	withImage := &ContentUnit{ImageURL: &url}
	assert.True(t, withImage.HasImage())
	assert.Equal(t, url, withImage.Image())

	without := &ContentUnit{}
	assert.False(t, without.HasImage())
	assert.Equal(t, "", without.Image())
}

func TestMediaSource_IsFallback(t *testing.T) {
	assert.True(t, MediaSimilar.IsFallback())
	assert.True(t, MediaCuratedDefault.IsFallback())
	assert.False(t, MediaReferenceDirect.IsFallback())
	assert.False(t, MediaCache.IsFallback())
}
