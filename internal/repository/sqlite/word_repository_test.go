package sqlite_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
	"github.com/vytor/lexiflash/internal/repository/sqlite"
	"github.com/vytor/lexiflash/internal/testutil"
)

type WordRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.WordRepository
}

func (s *WordRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewWordRepository(s.db)
}

func (s *WordRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

var created = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newWord(id, user, english, italian, chapter string, category models.Category) models.Word {
	return models.Word{
		ID:        models.WordID(id),
		UserID:    models.UserID(user),
		English:   english,
		Italian:   italian,
		Category:  category,
		Chapter:   chapter,
		Sentences: []string{"The " + english + " runs."},
		Synonyms:  []string{},
		Antonyms:  []string{},
		CreatedAt: created,
		UpdatedAt: created,
	}
}

func (s *WordRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()
	w := newWord("w1", "u1", "dog", "cane", "1", models.CategoryNouns)
	w.Synonyms = []string{"hound"}
	w.Notes = "masculine"

	s.Require().NoError(s.repo.Create(ctx, w))

	got, err := s.repo.Get(ctx, "u1", "w1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(w, *got)

	other, err := s.repo.Get(ctx, "u2", "w1")
	s.Require().NoError(err)
	s.Nil(other, "words are scoped to their owner")
}

func (s *WordRepositorySuite) TestListFilters() {
	ctx := context.Background()
	learned := newWord("w3", "u1", "to run", "correre", "2", models.CategoryVerbs)
	learned.Learned = true
	s.Require().NoError(s.repo.CreateBatch(ctx, []models.Word{
		newWord("w1", "u1", "dog", "cane", "1", models.CategoryNouns),
		newWord("w2", "u1", "cat", "gatto", "1", models.CategoryNouns),
		learned,
		newWord("w4", "u2", "dog", "cane", "1", models.CategoryNouns),
	}))

	all, err := s.repo.ListByUser(ctx, "u1")
	s.Require().NoError(err)
	s.Len(all, 3)

	yes := true
	got, err := s.repo.List(ctx, models.WordFilter{UserID: "u1", Learned: &yes})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(models.WordID("w3"), got[0].ID)

	got, err = s.repo.List(ctx, models.WordFilter{UserID: "u1", Chapters: []string{"1"}, OrderBy: "english", OrderDir: "DESC"})
	s.Require().NoError(err)
	s.Require().Len(got, 2)
	s.Equal("dog", got[0].English)

	got, err = s.repo.List(ctx, models.WordFilter{UserID: "u1", Categories: []models.Category{models.CategoryVerbs}})
	s.Require().NoError(err)
	s.Len(got, 1)

	got, err = s.repo.List(ctx, models.WordFilter{UserID: "u1", Search: "GAT"})
	s.Require().NoError(err)
	s.Require().Len(got, 1)
	s.Equal(models.WordID("w2"), got[0].ID)

	got, err = s.repo.List(ctx, models.WordFilter{UserID: "u1", OrderBy: "id; DROP TABLE words"})
	s.Require().NoError(err)
	s.Len(got, 3)
}

func (s *WordRepositorySuite) TestUpdateAndDelete() {
	ctx := context.Background()
	w := newWord("w1", "u1", "dog", "cane", "1", models.CategoryNouns)
	s.Require().NoError(s.repo.Create(ctx, w))

	w.Italian = "cagnolino"
	w.Difficult = true
	s.Require().NoError(s.repo.Update(ctx, w))
	got, err := s.repo.Get(ctx, "u1", "w1")
	s.Require().NoError(err)
	s.Equal("cagnolino", got.Italian)
	s.True(got.Difficult)

	missing := newWord("nope", "u1", "x", "y", "1", models.CategoryNouns)
	s.ErrorIs(s.repo.Update(ctx, missing), repository.ErrNotFound)

	s.Require().NoError(s.repo.Delete(ctx, "u1", "w1"))
	s.ErrorIs(s.repo.Delete(ctx, "u1", "w1"), repository.ErrNotFound)
}

func (s *WordRepositorySuite) TestIncrementPerformance() {
	ctx := context.Background()
	s.Require().NoError(s.repo.Create(ctx, newWord("w1", "u1", "dog", "cane", "1", models.CategoryNouns)))
	at := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)

	s.Require().NoError(s.repo.IncrementPerformance(ctx, "u1", "w1", true, 2000, at))
	s.Require().NoError(s.repo.IncrementPerformance(ctx, "u1", "w1", false, 4000, at.Add(time.Minute)))

	got, err := s.repo.Get(ctx, "u1", "w1")
	s.Require().NoError(err)
	s.Equal(2, got.TimesShown)
	s.Equal(1, got.TimesCorrect)
	s.Equal(1, got.TimesIncorrect)
	s.InDelta(3000, got.AverageResponseTimeMs, 1e-9)
	s.Require().NotNil(got.LastShown)
	s.Equal(at.Add(time.Minute), *got.LastShown)

	s.ErrorIs(s.repo.IncrementPerformance(ctx, "u2", "w1", true, 1, at), repository.ErrNotFound)
}

func (s *WordRepositorySuite) TestChaptersAndDeleteAll() {
	ctx := context.Background()
	s.Require().NoError(s.repo.CreateBatch(ctx, []models.Word{
		newWord("w1", "u1", "a", "a", "2", models.CategoryNouns),
		newWord("w2", "u1", "b", "b", "1", models.CategoryNouns),
		newWord("w3", "u1", "c", "c", "1", models.CategoryNouns),
		newWord("w4", "u1", "d", "d", "", models.CategoryNouns),
	}))

	chapters, err := s.repo.Chapters(ctx, "u1")
	s.Require().NoError(err)
	s.Equal([]string{"1", "2"}, chapters)

	s.Require().NoError(s.repo.DeleteAllForUser(ctx, "u1"))
	all, err := s.repo.ListByUser(ctx, "u1")
	s.Require().NoError(err)
	s.Empty(all)
}

func TestWordRepositorySuite(t *testing.T) {
	suite.Run(t, new(WordRepositorySuite))
}
