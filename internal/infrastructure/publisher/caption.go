package publisher

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ersonp/feather/internal/domain/entities"
)

// MaxCaptionLength is the caption limit of an image-attached post.
const MaxCaptionLength = 1024

const (
	factsHeading    = "Did you know?"
	channelHashtags = "#birds #nature"
	ellipsis        = "..."
)

// Caption renders a content unit as post text. When the full rendering does
// not fit in limit runes it drops the hashtags, then shortens the
// description to its first sentence and keeps two facts, and finally
// truncates with an ellipsis.
func Caption(unit *entities.ContentUnit, limit int) string {
	if limit <= 0 {
		limit = MaxCaptionLength
	}
	tags := "\n" + hashtag(unit.Subject.Name) + " " + channelHashtags

	body := captionBody(unit.Subject.Name, unit.Description, unit.Facts, entities.MaxFacts)
	if runeLen(body)+runeLen(tags) <= limit {
		return body + tags
	}
	if runeLen(body) <= limit {
		return body
	}

	short := captionBody(unit.Subject.Name, firstSentence(unit.Description), unit.Facts, 2) + tags
	return truncate(short, limit)
}

func captionBody(name, description string, facts []string, maxFacts int) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", strings.ToUpper(name))
	if description != "" {
		fmt.Fprintf(&b, "%s\n\n", description)
	}
	b.WriteString(factsHeading + "\n")
	for i, fact := range facts {
		if i == maxFacts {
			break
		}
		fmt.Fprintf(&b, "• %s\n", fact)
	}
	return b.String()
}

// hashtag builds a tag from the letters and digits of name.
func hashtag(name string) string {
	var b strings.Builder
	b.WriteByte('#')
	for _, r := range name {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

func firstSentence(text string) string {
	if i := strings.IndexAny(text, ".!?"); i >= 0 {
		return strings.TrimSpace(text[:i+1])
	}
	return text
}

func truncate(s string, limit int) string {
	if runeLen(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-len(ellipsis)]) + ellipsis
}

func runeLen(s string) int {
	return utf8.RuneCountInString(s)
}

// QuizText renders a quiz round as a plain-text poll.
func QuizText(quiz *entities.QuizRound) string {
	var b strings.Builder
	fmt.Fprintf(&b, "QUIZ: %s\n", quiz.Question)
	for i, opt := range quiz.Options {
		fmt.Fprintf(&b, "  %c) %s\n", 'A'+rune(i), opt)
	}
	if quiz.Explanation != "" {
		fmt.Fprintf(&b, "Answer: %s\n", quiz.Explanation)
	}
	return b.String()
}
