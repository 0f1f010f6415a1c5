package entities

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// Subject is a bird species identified by its display name.
// Two subjects are the same entity iff their NormalizedName values are equal.
type Subject struct {
	Name           string `json:"name"`
	NormalizedName string `json:"normalized_name"`
}

// NewSubject builds a Subject from a raw name.
func NewSubject(name string) Subject {
	return Subject{
		Name:           strings.TrimSpace(name),
		NormalizedName: NormalizeName(name),
	}
}

// String returns the display name.
func (s Subject) String() string {
	return s.Name
}

// IsZero reports whether the subject has no usable name.
func (s Subject) IsZero() bool {
	return s.NormalizedName == ""
}

// SameAs reports whether two subjects refer to the same species.
func (s Subject) SameAs(other Subject) bool {
	return s.NormalizedName != "" && s.NormalizedName == other.NormalizedName
}

// NormalizeName converts a name to its canonical form used for identity.
// The name is NFC-composed, lowercased and stripped of everything except
// letters, digits, spaces and hyphens (stress marks and punctuation vanish).
// Whitespace runs collapse to one space and every space-separated word
// gets an upper-case first letter.
func NormalizeName(name string) string {
	name = strings.ToLower(norm.NFC.String(name))

	var b strings.Builder
	b.Grow(len(name))
	for _, r := range name {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '-':
			b.WriteRune(r)
		case unicode.IsSpace(r):
			b.WriteRune(' ')
		}
	}

	words := strings.Fields(b.String())
	for i, w := range words {
		r, size := utf8.DecodeRuneInString(w)
		words[i] = string(unicode.ToUpper(r)) + w[size:]
	}
	return strings.Join(words, " ")
}

// NameSet is an ordered set of normalized subject names, most recent first.
// The zero value is not usable; create one with NewNameSet.
type NameSet struct {
	order []string
	index map[string]struct{}
}

// NewNameSet creates a set from names ordered most recent first.
// Duplicates keep their first (most recent) position.
func NewNameSet(names ...string) *NameSet {
	s := &NameSet{
		order: make([]string, 0, len(names)),
		index: make(map[string]struct{}, len(names)),
	}
	for _, n := range names {
		key := NormalizeName(n)
		if key == "" {
			continue
		}
		if _, ok := s.index[key]; ok {
			continue
		}
		s.index[key] = struct{}{}
		s.order = append(s.order, key)
	}
	return s
}

// Has reports whether the set contains the name (after normalization).
func (s *NameSet) Has(name string) bool {
	if s == nil {
		return false
	}
	_, ok := s.index[NormalizeName(name)]
	return ok
}

// Add records a name as the most recent entry. It returns false if the
// name was already present or normalizes to nothing.
func (s *NameSet) Add(name string) bool {
	key := NormalizeName(name)
	if key == "" {
		return false
	}
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.order = append([]string{key}, s.order...)
	return true
}

// Len returns the number of names in the set.
func (s *NameSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.order)
}

// Recent returns up to n names, most recent first.
func (s *NameSet) Recent(n int) []string {
	if s == nil || n <= 0 {
		return nil
	}
	if n > len(s.order) {
		n = len(s.order)
	}
	out := make([]string, n)
	copy(out, s.order[:n])
	return out
}

// Names returns all names, most recent first.
func (s *NameSet) Names() []string {
	return s.Recent(s.Len())
}
