package services

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// containsWord reports whether text contains word as a whole word,
// ignoring case. Word boundaries are any non-letter, non-digit runes.
func containsWord(text, word string) bool {
	word = strings.ToLower(strings.TrimSpace(word))
	if word == "" {
		return false
	}
	return indexWord(strings.ToLower(text), word) >= 0
}

func isBoundary(s string, pos int, before bool) bool {
	if before {
		if pos < 0 {
			return true
		}
		r, _ := utf8.DecodeLastRuneInString(s[:pos+1])
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}
	if pos >= len(s) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(s[pos:])
	return !unicode.IsLetter(r) && !unicode.IsDigit(r)
}

// maskWord replaces whole-word, case-insensitive occurrences of word.
func maskWord(text, word, replacement string) string {
	word = strings.TrimSpace(word)
	if word == "" {
		return text
	}
	lowerWord := strings.ToLower(word)
	if len(strings.ToLower(text)) != len(text) {
		text = strings.ToLower(text)
	}
	var b strings.Builder
	for {
		lower := strings.ToLower(text)
		i := indexWord(lower, lowerWord)
		if i < 0 {
			b.WriteString(text)
			return b.String()
		}
		b.WriteString(text[:i])
		b.WriteString(replacement)
		text = text[i+len(lowerWord):]
	}
}

// indexWord returns the byte index of the first whole-word match or -1.
// Both arguments must already be lowercase.
func indexWord(lower, word string) int {
	for start := 0; start < len(lower); {
		i := strings.Index(lower[start:], word)
		if i < 0 {
			return -1
		}
		i += start
		if isBoundary(lower, i-1, true) && isBoundary(lower, i+len(word), false) {
			return i
		}
		_, size := utf8.DecodeRuneInString(lower[i:])
		start = i + size
	}
	return -1
}

// normalizeText lowercases s and reduces it to letters and digits separated
// by single spaces.
func normalizeText(s string) string {
	return strings.Join(strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	}), " ")
}

// restates reports whether fact repeats reference, ignoring case and
// punctuation: either text contains the other. The reverse direction only
// counts for references at least minLen runes long.
func restates(fact, reference string, minLen int) bool {
	f, ref := normalizeText(fact), normalizeText(reference)
	if f == "" || ref == "" {
		return false
	}
	if strings.Contains(ref, f) {
		return true
	}
	return runeLen(ref) >= minLen && strings.Contains(f, ref)
}

// cleanGenerated trims quotes, collapses whitespace and repeated dots in
// generated text.
func cleanGenerated(s string) string {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer("“", "\"", "”", "\"", "«", "\"", "»", "\"").Replace(s)
	s = strings.Trim(s, "\"'`")
	s = strings.Join(strings.Fields(s), " ")
	for strings.Contains(s, "..") {
		s = strings.ReplaceAll(s, "..", ".")
	}
	return strings.TrimSpace(s)
}

// runeLen returns the length of s in runes.
func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}
