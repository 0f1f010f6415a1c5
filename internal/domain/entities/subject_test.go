package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "already canonical", input: "Great Tit", expected: "Great Tit"},
		{name: "lowercase input", input: "eurasian blue tit", expected: "Eurasian Blue Tit"},
		{name: "extra whitespace", input: "  Common   Kingfisher \t", expected: "Common Kingfisher"},
		{name: "punctuation removed", input: "Bewick's Swan!", expected: "Bewicks Swan"},
		{name: "hyphen kept", input: "black-capped chickadee", expected: "Black-capped Chickadee"},
		{name: "combining stress mark removed", input: "Сини́ца", expected: "Синица"},
		{name: "cyrillic words", input: "большая  синица", expected: "Большая Синица"},
		{name: "empty", input: "", expected: ""},
		{name: "only punctuation", input: "?!.", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, NormalizeName(tt.input))
		})
	}
}

func TestNormalizeName_Idempotent(t *testing.T) {
	inputs := []string{"great   TIT", "Сини́ца", "white-throated dipper"}
	for _, in := range inputs {
		once := NormalizeName(in)
		assert.Equal(t, once, NormalizeName(once))
	}
}

func TestSubject_SameAs(t *testing.T) {
	a := NewSubject("great tit")
	b := NewSubject("  Great  Tit ")
	c := NewSubject("Blue Tit")

	assert.True(t, a.SameAs(b))
	assert.False(t, a.SameAs(c))
	assert.False(t, Subject{}.SameAs(Subject{}))
	assert.Equal(t, "great tit", a.Name)
}

func TestNameSet(t *testing.T) {
	set := NewNameSet("Great Tit", "blue tit", "great tit", "")

	require.Equal(t, 2, set.Len())
	assert.True(t, set.Has("GREAT TIT"))
	assert.True(t, set.Has("Blue  Tit"))
	assert.False(t, set.Has("Robin"))

	assert.True(t, set.Add("Robin"))
	assert.False(t, set.Add("robin"))
	assert.Equal(t, []string{"Robin", "Great Tit"}, set.Recent(2))
	assert.Equal(t, []string{"Robin", "Great Tit", "Blue Tit"}, set.Names())
	assert.Len(t, set.Recent(10), 3)
	assert.Nil(t, set.Recent(0))
}

func TestNameSet_Nil(t *testing.T) {
	var set *NameSet
	assert.False(t, set.Has("Great Tit"))
	assert.Equal(t, 0, set.Len())
	assert.Nil(t, set.Names())
}
