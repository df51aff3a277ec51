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

func TestTestService_FullSession(t *testing.T) {
	f := newFixture(t)
	words := f.seedWords(t, "u1",
		input("dog", "cane", "1"),
		input("cat", "gatto", "1"),
		input("house", "casa", "2"),
	)

	view, err := f.tests.Generate(ctx(), "u1", plainConfig())
	require.NoError(t, err)
	require.Len(t, view.Words, 3)
	assert.Equal(t, "configured", view.State)
	ids := []models.WordID{view.Words[0].ID, view.Words[1].ID, view.Words[2].ID}

	_, err = f.tests.Answer(ctx(), "u1", view.ID, ids[0], "x", time.Second)
	assert.True(t, stderrors.Is(err, errors.ErrTestNotInProgress))

	started, err := f.tests.Start(ctx(), "u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, "in_progress", started.State)

	res, err := f.tests.Answer(ctx(), "u1", view.ID, ids[0], "  "+words[ids[0]].Italian+" ", 2*time.Second)
	require.NoError(t, err)
	assert.True(t, res.IsCorrect)
	assert.Equal(t, words[ids[0]].Italian, res.CorrectAnswer)

	_, err = f.tests.Answer(ctx(), "u1", view.ID, ids[0], "again", time.Second)
	assert.True(t, stderrors.Is(err, errors.ErrAlreadyAnswered))

	hint, err := f.tests.Hint(ctx(), "u1", view.ID, ids[1])
	require.NoError(t, err)
	assert.Equal(t, 1, hint.HintsUsed)
	assert.Equal(t, 0, hint.Remaining)

	_, err = f.tests.Hint(ctx(), "u1", view.ID, ids[1])
	assert.True(t, stderrors.Is(err, errors.ErrHintLimitExceeded))
	_, err = f.tests.Hint(ctx(), "u1", view.ID, ids[2])
	assert.True(t, stderrors.Is(err, errors.ErrHintCooldownActive))

	f.clock.Advance(5 * time.Second)
	res, err = f.tests.Answer(ctx(), "u1", view.ID, ids[1], "wrong", 30*time.Second)
	require.NoError(t, err)
	assert.False(t, res.IsCorrect)
	assert.Equal(t, 1, res.HintsUsed)
	assert.Equal(t, "slow", string(res.ResponseClass))

	test, err := f.tests.Complete(ctx(), "u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, test.TotalWords)
	assert.Equal(t, 1, test.CorrectWords)
	assert.Equal(t, 2, test.IncorrectWords)
	assert.Equal(t, 1, test.HintsUsed)
	assert.Equal(t, int64(32000), test.TotalTimeMs)

	_, err = f.tests.Complete(ctx(), "u1", view.ID)
	assert.True(t, stderrors.Is(err, errors.ErrTestAlreadyCompleted))

	stored, err := f.tests.GetTest(ctx(), "u1", view.ID)
	require.NoError(t, err)
	assert.Equal(t, test.Percentage, stored.Percentage)

	st, err := f.stats.GetStats(ctx(), "u1")
	require.NoError(t, err)
	assert.Equal(t, 1, st.TotalTests)
	assert.Equal(t, 1, st.CorrectAnswers)
	assert.Equal(t, 2, st.IncorrectAnswers)
	assert.Equal(t, 1, st.CurrentStreak)
	assert.Equal(t, 33, st.AccuracyRate)

	perf, err := f.perfRepo.Get(ctx(), "u1", ids[0])
	require.NoError(t, err)
	require.NotNil(t, perf)
	assert.Equal(t, 1, perf.TimesCorrect)

	w, err := f.wordRepo.Get(ctx(), "u1", ids[2])
	require.NoError(t, err)
	assert.Equal(t, 1, w.TimesShown)
	assert.Equal(t, 1, w.TimesIncorrect)

	list, err := f.tests.ListTests(ctx(), "u1", 0)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestTestService_GenerateWithoutWords(t *testing.T) {
	f := newFixture(t)

	_, err := f.tests.Generate(ctx(), "u1", plainConfig())
	assert.True(t, stderrors.Is(err, errors.ErrInsufficientWords))
}

func TestTestService_UnknownOrReplacedTest(t *testing.T) {
	f := newFixture(t)
	f.seedWords(t, "u1", input("dog", "cane", "1"))

	_, err := f.tests.Start(ctx(), "u1", "missing")
	assert.True(t, stderrors.Is(err, errors.ErrTestNotFound))

	first, err := f.tests.Generate(ctx(), "u1", plainConfig())
	require.NoError(t, err)
	second, err := f.tests.Generate(ctx(), "u1", plainConfig())
	require.NoError(t, err)

	_, err = f.tests.Start(ctx(), "u1", first.ID)
	assert.True(t, stderrors.Is(err, errors.ErrTestNotFound), "a new test replaces the unfinished one")
	_, err = f.tests.Start(ctx(), "u1", second.ID)
	assert.NoError(t, err)

	_, err = f.tests.Start(ctx(), "u2", second.ID)
	assert.True(t, stderrors.Is(err, errors.ErrTestNotFound), "sessions are per user")
}

func TestTestService_RequiresUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.tests.Generate(ctx(), "", plainConfig())
	assert.True(t, stderrors.Is(err, errors.ErrUserNotAuthenticated))
}

func TestTestService_ExcludesRecentlyShownWords(t *testing.T) {
	f := newFixture(t)
	f.seedWords(t, "u1", input("dog", "cane", "1"), input("cat", "gatto", "1"))

	view, err := f.tests.Generate(ctx(), "u1", models.TestConfig{Type: models.TestTypeComplete, MaxWords: 1, IncludeDifficultWords: true})
	require.NoError(t, err)
	_, err = f.tests.Start(ctx(), "u1", view.ID)
	require.NoError(t, err)
	_, err = f.tests.Complete(ctx(), "u1", view.ID)
	require.NoError(t, err)
	shown := view.Words[0].ID

	f.clock.Advance(time.Hour)
	next, err := f.tests.Generate(ctx(), "u1", models.TestConfig{
		Type: models.TestTypeComplete, MaxWords: 1, IncludeDifficultWords: true, ExcludeRecentlyShown: true,
	})
	require.NoError(t, err)
	require.Len(t, next.Words, 1)
	assert.NotEqual(t, shown, next.Words[0].ID)
}
