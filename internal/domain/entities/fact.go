// Package entities contains core domain data structures.
package entities

import (
	"strings"
	"unicode/utf8"
)

// Fact bounds, measured in runes.
const (
	MinFactLen = 20
	MaxFactLen = 200
)

// Fact counts carried by a content unit.
const (
	MinFacts = 2
	MaxFacts = 3
)

// FactSource identifies where a fact set came from.
type FactSource string

// Fact sources.
const (
	FactSourceStored    FactSource = "stored"
	FactSourceGenerated FactSource = "generated"
	FactSourceFallback  FactSource = "fallback"
)

// FactSet is the result of fact generation for one subject.
type FactSet struct {
	Facts  []string   `json:"facts"`
	Source FactSource `json:"source"`
	// Padded counts curated facts appended to a generated set.
	Padded int `json:"padded,omitempty"`
}

// IsFallback reports whether any fact in the set came from the curated table.
func (f FactSet) IsFallback() bool {
	return f.Source == FactSourceFallback
}

// FactLen returns the fact length in runes, ignoring surrounding whitespace.
func FactLen(fact string) int {
	return utf8.RuneCountInString(strings.TrimSpace(fact))
}

// WithinFactBounds reports whether the fact length lies in [MinFactLen, MaxFactLen].
func WithinFactBounds(fact string) bool {
	n := FactLen(fact)
	return n >= MinFactLen && n <= MaxFactLen
}
