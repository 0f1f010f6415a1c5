package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/mocks"
	"github.com/ersonp/feather/internal/domain/services"
)

func newTestHistoryHandler() (*HistoryHandler, *mocks.HistoryStore, *mocks.FactIndex) {
	store := mocks.NewHistoryStore(quizRecords()...)
	index := &mocks.FactIndex{}
	service := services.NewHistoryService(store, index, nil, &mocks.AuditLog{}, nil)
	return NewHistoryHandler(service), store, index
}

func TestHistoryHandler_List(t *testing.T) {
	handler, _, _ := newTestHistoryHandler()

	records, err := handler.List(t.Context(), 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "Eurasian Wren", records[0].Subject.Name)
	assert.Equal(t, "Song Thrush", records[1].Subject.Name)

	all, err := handler.List(t.Context(), 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}

func TestHistoryHandler_FactsAndStats(t *testing.T) {
	handler, _, _ := newTestHistoryHandler()

	facts, err := handler.Facts(t.Context(), "eurasian wren")
	require.NoError(t, err)
	assert.Equal(t, wrenFacts, facts)

	stats, err := handler.Stats(t.Context())
	require.NoError(t, err)
	assert.Equal(t, 5, stats.Posts)
	assert.Equal(t, "Eurasian Wren", stats.LastPostedFor)
}

func TestHistoryHandler_Retract(t *testing.T) {
	handler, store, index := newTestHistoryHandler()

	require.NoError(t, handler.Retract(t.Context(), "Eurasian Wren", "wrong photo"))

	known, err := store.IsKnown(t.Context(), "Eurasian Wren")
	require.NoError(t, err)
	assert.False(t, known)
	assert.Equal(t, []string{"Eurasian Wren"}, index.Deleted)

	err = handler.Retract(t.Context(), "Eurasian Wren", "")
	assert.ErrorIs(t, err, entities.ErrNotFound)
}
