package sqlite

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
)

func suggestion(id, userID, name string, at time.Time) *entities.Suggestion {
	return &entities.Suggestion{
		ID:        id,
		UserID:    userID,
		Username:  "user_" + userID,
		Subject:   entities.NewSubject(name),
		Status:    entities.SuggestionPending,
		CreatedAt: at,
	}
}

func TestRepository_Suggestions(t *testing.T) {
	repo := setupTestRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveSuggestion(ctx, suggestion("s1", "42", "Goldcrest", day)))
	require.NoError(t, repo.SaveSuggestion(ctx, suggestion("s2", "42", "Tawny Owl", day.Add(time.Minute))))
	require.NoError(t, repo.SaveSuggestion(ctx, suggestion("s3", "7", "Goldcrest", day.Add(2*time.Minute))))

	t.Run("duplicate per user", func(t *testing.T) {
		err := repo.SaveSuggestion(ctx, suggestion("s4", "42", "goldcrest", day.Add(3*time.Minute)))
		assert.ErrorIs(t, err, entities.ErrDuplicate)
	})

	t.Run("find by id", func(t *testing.T) {
		s, err := repo.FindSuggestion(ctx, "s2")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "Tawny Owl", s.Subject.Name)
		assert.Equal(t, "user_42", s.Username)
		assert.Nil(t, s.DecidedAt)

		missing, err := repo.FindSuggestion(ctx, "nope")
		require.NoError(t, err)
		assert.Nil(t, missing)
	})

	t.Run("find by user", func(t *testing.T) {
		s, err := repo.FindSuggestionByUser(ctx, "7", "GOLDCREST")
		require.NoError(t, err)
		require.NotNil(t, s)
		assert.Equal(t, "s3", s.ID)
	})

	t.Run("list pending oldest first", func(t *testing.T) {
		list, err := repo.ListSuggestions(ctx, entities.SuggestionPending, 0)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.Equal(t, []string{"s1", "s2", "s3"}, []string{list[0].ID, list[1].ID, list[2].ID})
	})

	t.Run("list by user newest first", func(t *testing.T) {
		list, err := repo.ListSuggestionsByUser(ctx, "42", 1)
		require.NoError(t, err)
		require.Len(t, list, 1)
		assert.Equal(t, "s2", list[0].ID)
	})

	t.Run("count since", func(t *testing.T) {
		n, err := repo.CountSuggestionsSince(ctx, "42", day.Add(30*time.Second))
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		n, err = repo.CountSuggestionsSince(ctx, "42", day.Add(-time.Hour))
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("update status", func(t *testing.T) {
		at := day.Add(time.Hour)
		require.NoError(t, repo.UpdateSuggestionStatus(ctx, "s1", entities.SuggestionRejected, "not a species", at))

		s, err := repo.FindSuggestion(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, entities.SuggestionRejected, s.Status)
		assert.Equal(t, "not a species", s.Reason)
		require.NotNil(t, s.DecidedAt)
		assert.True(t, s.DecidedAt.Equal(at))

		pending, err := repo.ListSuggestions(ctx, entities.SuggestionPending, 0)
		require.NoError(t, err)
		assert.Len(t, pending, 2)

		err = repo.UpdateSuggestionStatus(ctx, "missing", entities.SuggestionApproved, "", at)
		assert.ErrorIs(t, err, entities.ErrNotFound)
	})
}
