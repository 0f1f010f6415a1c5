package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ersonp/feather/internal/domain/entities"
)

func TestPrintHistory(t *testing.T) {
	var buf bytes.Buffer
	printHistory(&buf, exportRecords())

	out := buf.String()
	assert.Contains(t, out, "POSTED")
	assert.Contains(t, out, "2024-05-06")
	assert.Contains(t, out, "Eurasian Wren")
	assert.Contains(t, out, "yes")
}

func TestPrintStats(t *testing.T) {
	var buf bytes.Buffer
	printStats(&buf, "europe", entities.HistoryStats{
		Subjects:      12,
		Posts:         14,
		WithFacts:     10,
		PendingIdeas:  2,
		LastPostedAt:  time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC),
		LastPostedFor: "Eurasian Wren",
	})

	out := buf.String()
	assert.Contains(t, out, "Channel:             europe")
	assert.Contains(t, out, "Posts:               14")
	assert.Contains(t, out, "Last post:           Eurasian Wren (2024-05-06)")

	buf.Reset()
	printStats(&buf, "europe", entities.HistoryStats{})
	assert.NotContains(t, buf.String(), "Last post")
}

func TestPrintSuggestions(t *testing.T) {
	var buf bytes.Buffer
	printSuggestions(&buf, []entities.Suggestion{
		{ID: "s-1", UserID: "42", Username: "ana", Subject: entities.NewSubject("Goldcrest"), Status: entities.SuggestionPending},
		{ID: "s-2", UserID: "77", Subject: entities.NewSubject("Mallard"), Status: entities.SuggestionApproved},
	})

	out := buf.String()
	assert.Contains(t, out, "Goldcrest")
	assert.Contains(t, out, "ana")
	assert.Contains(t, out, "77")
	assert.Contains(t, out, "approved")
}
