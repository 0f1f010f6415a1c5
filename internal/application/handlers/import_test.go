package handlers

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersonp/feather/internal/domain/entities"
	"github.com/ersonp/feather/internal/domain/mocks"
	"github.com/ersonp/feather/internal/domain/services"
)

func newTestImportHandler() (*ImportHandler, *mocks.HistoryStore) {
	history := mocks.NewHistoryStore()
	embedder := &mocks.Embedder{EmbeddingResult: []float32{0.1, 0.2, 0.3}}
	service := services.NewImportService(history, embedder, &mocks.FactIndex{}, nil, nil)
	return NewImportHandler(service), history
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestImportHandler_Handle_JSONFile(t *testing.T) {
	handler, history := newTestImportHandler()

	path := writeFile(t, "history.json", `[{"subject": "Eurasian Wren", "posted_at": "2024-05-01", "facts": ["Males build several domed nests for the female to choose from."]}]`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Records)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Equal(t, 1, result.Facts)
	assert.Equal(t, 1, result.Indexed)
	assert.Empty(t, result.Errors)
	assert.Len(t, history.Records(), 1)
}

func TestImportHandler_Handle_CSVFile(t *testing.T) {
	handler, history := newTestImportHandler()

	path := writeFile(t, "history.csv", "subject,posted_at,facts\n"+
		"Goldcrest,2024-05-02,The smallest bird in Europe weighing about five grams. | Often hangs upside down while feeding.\n")

	result, err := handler.Handle(context.Background(), path, ImportOptions{
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 2, result.Facts)
	facts, err := history.GetFacts(context.Background(), "Goldcrest")
	require.NoError(t, err)
	assert.Len(t, facts, 2)
}

func TestImportHandler_Handle_ExplicitFormat(t *testing.T) {
	handler, _ := newTestImportHandler()

	// .txt extension with JSON content
	path := writeFile(t, "history.txt", `[{"subject": "Hawfinch", "posted_at": "2024-05-03"}]`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{
		Format:     "json",
		OnConflict: services.ConflictOverwrite,
	})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
}

func TestImportHandler_Handle_UnsupportedFormat(t *testing.T) {
	handler, _ := newTestImportHandler()

	path := writeFile(t, "history.xml", "<data/>")

	_, err := handler.Handle(context.Background(), path, ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestImportHandler_Handle_FileNotFound(t *testing.T) {
	handler, _ := newTestImportHandler()

	_, err := handler.Handle(context.Background(), "/nonexistent/history.json", ImportOptions{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "opening file")
}

func TestImportHandler_Handle_DryRun(t *testing.T) {
	handler, history := newTestImportHandler()

	path := writeFile(t, "history.json", `[{"subject": "Eurasian Wren", "posted_at": "2024-05-01"}]`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{DryRun: true})

	require.NoError(t, err)
	assert.Equal(t, 1, result.Imported)
	assert.Zero(t, result.Indexed)
	assert.Empty(t, history.Records(), "dry run should not write history")
}

func TestImportHandler_Handle_EmptyFile(t *testing.T) {
	handler, _ := newTestImportHandler()

	path := writeFile(t, "empty.json", "[]")

	result, err := handler.Handle(context.Background(), path, ImportOptions{})

	require.NoError(t, err)
	assert.Equal(t, 0, result.Records)
	assert.Equal(t, 0, result.Imported)
	assert.Equal(t, 0, result.Skipped)
	assert.Empty(t, result.Errors)
}

func TestImportHandler_Handle_AccountsForEveryRecord(t *testing.T) {
	handler, history := newTestImportHandler()
	require.NoError(t, history.Add(context.Background(), entities.NewSubject("Goldcrest")))

	path := writeFile(t, "history.json", `[
		{"subject": "Eurasian Wren", "posted_at": "2024-05-01", "facts": ["Males build several domed nests for the female to choose from."]},
		{"subject": "goldcrest", "posted_at": "2024-05-02"},
		{"subject": "Hawfinch", "posted_at": "last tuesday"}
	]`)

	result, err := handler.Handle(context.Background(), path, ImportOptions{OnConflict: services.ConflictSkip})

	require.NoError(t, err)
	assert.Equal(t, 3, result.Records)
	assert.Equal(t, 1, result.Imported)
	assert.Equal(t, 1, result.Skipped)
	assert.Equal(t, 1, result.Invalid())
	assert.Equal(t, result.Records, result.Imported+result.Skipped+result.Invalid())
	assert.Equal(t, 1, result.Facts)
}
