package services_test

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/models"
)

func TestTransferService_RoundTrip(t *testing.T) {
	f := newFixture(t)
	f.seedWords(t, "u1", input("dog", "cane", "1"), input("cat", "gatto", "2"))

	view, err := f.tests.Generate(ctx(), "u1", plainConfig())
	require.NoError(t, err)
	_, err = f.tests.Start(ctx(), "u1", view.ID)
	require.NoError(t, err)
	_, err = f.tests.Answer(ctx(), "u1", view.ID, view.Words[0].ID, "wrong", time.Second)
	require.NoError(t, err)
	_, err = f.tests.Complete(ctx(), "u1", view.ID)
	require.NoError(t, err)

	exported, err := f.transfer.Export(ctx(), "u1")
	require.NoError(t, err)
	assert.Equal(t, models.ExportVersion, exported.Version)
	assert.Len(t, exported.Words, 2)
	assert.Len(t, exported.Tests, 1)
	assert.Len(t, exported.WordPerformance, 2)

	// Data added after the export is discarded by the import.
	f.seedWords(t, "u1", input("house", "casa", "3"))

	result, err := f.transfer.Import(ctx(), "u1", *exported)
	require.NoError(t, err)
	assert.Equal(t, &models.ImportResult{Words: 2, Tests: 1, WordPerformance: 2}, result)

	again, err := f.transfer.Export(ctx(), "u1")
	require.NoError(t, err)
	assert.Equal(t, exported.Words, again.Words)
	assert.Equal(t, exported.Tests, again.Tests)
	assert.Equal(t, exported.WordPerformance, again.WordPerformance)

	exportedStats, againStats := exported.Stats, again.Stats
	exportedStats.UpdatedAt, againStats.UpdatedAt = time.Time{}, time.Time{}
	assert.Equal(t, exportedStats, againStats)
}

func TestTransferService_ImportIntoAnotherUser(t *testing.T) {
	f := newFixture(t)
	f.seedWords(t, "u1", input("dog", "cane", "1"))
	exported, err := f.transfer.Export(ctx(), "u1")
	require.NoError(t, err)

	_, err = f.transfer.Import(ctx(), "u2", *exported)
	require.NoError(t, err)

	words, err := f.wordRepo.ListByUser(ctx(), "u2")
	require.NoError(t, err)
	require.Len(t, words, 1)
	assert.Equal(t, models.UserID("u2"), words[0].UserID)
	assert.NotEqual(t, exported.Words[0].ID, words[0].ID)

	source, err := f.wordRepo.ListByUser(ctx(), "u1")
	require.NoError(t, err)
	assert.Len(t, source, 1, "the source account is untouched")
}

func TestTransferService_RejectsBadExports(t *testing.T) {
	f := newFixture(t)
	f.seedWords(t, "u1", input("dog", "cane", "1"))

	_, err := f.transfer.Import(ctx(), "u1", models.ExportData{Version: "0.1"})
	var appErr *errors.AppError
	require.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, errors.ErrCodeValidation, appErr.Code)

	dup := models.Word{ID: "w1", English: "a", Italian: "b", Category: models.CategoryNouns}
	_, err = f.transfer.Import(ctx(), "u1", models.ExportData{Version: models.ExportVersion, UserID: "u1", Words: []models.Word{dup, dup}})
	assert.Error(t, err)

	words, err := f.wordRepo.ListByUser(ctx(), "u1")
	require.NoError(t, err)
	assert.Len(t, words, 1, "a rejected import leaves existing data alone")
}
