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

type TestRepositorySuite struct {
	suite.Suite
	db   *sql.DB
	repo repository.TestRepository
}

func (s *TestRepositorySuite) SetupTest() {
	s.db = testutil.NewTestDB(s.T())
	s.repo = sqlite.NewTestRepository(s.db)
}

func (s *TestRepositorySuite) TearDownTest() {
	testutil.MustClose(s.T(), s.db)
}

func sampleTest(id string, at time.Time) models.Test {
	return models.Test{
		ID:               models.TestID(id),
		UserID:           "u1",
		Timestamp:        at,
		Type:             models.TestTypeComplete,
		SelectedChapters: []string{"1"},
		TotalWords:       2,
		CorrectWords:     1,
		IncorrectWords:   1,
		TotalTimeMs:      3000,
		AvgTimePerWordMs: 1500,
		Percentage:       50,
		Difficulty:       models.DifficultyMedium,
		RightWords:       []models.TestWordResult{{WordID: "w1", IsCorrect: true, ResponseTimeMs: 1000, Difficulty: models.DifficultyEasy}},
		WrongWords:       []models.TestWordResult{{WordID: "w2", ResponseTimeMs: 2000, Difficulty: models.DifficultyHard, UserAnswer: "x"}},
		ChapterStats:     map[string]models.ChapterTestStats{"1": {TotalWords: 2, CorrectWords: 1, IncorrectWords: 1, Percentage: 50}},
		DifficultyAnalysis: &models.DifficultyAnalysis{
			BaseComplexity: 30, FinalDifficulty: 30, Level: models.DifficultyMedium,
		},
		CreatedAt: at,
	}
}

func (s *TestRepositorySuite) TestCreateAndGet() {
	ctx := context.Background()
	t := sampleTest("t1", time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC))

	s.Require().NoError(s.repo.Create(ctx, t))

	got, err := s.repo.Get(ctx, "u1", "t1")
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(t, *got)

	s.Error(s.repo.Create(ctx, t), "tests are append-only")

	missing, err := s.repo.Get(ctx, "u1", "nope")
	s.Require().NoError(err)
	s.Nil(missing)
}

func (s *TestRepositorySuite) TestRejectsInconsistentTotals() {
	t := sampleTest("bad", time.Now().UTC())
	t.CorrectWords = 2

	s.Error(s.repo.Create(context.Background(), t))
}

func (s *TestRepositorySuite) TestListNewestFirstAndRange() {
	ctx := context.Background()
	base := time.Date(2024, 3, 4, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"t1", "t2", "t3"} {
		s.Require().NoError(s.repo.Create(ctx, sampleTest(id, base.Add(time.Duration(i)*24*time.Hour))))
	}

	all, err := s.repo.ListByUser(ctx, "u1", 0)
	s.Require().NoError(err)
	s.Require().Len(all, 3)
	s.Equal(models.TestID("t3"), all[0].ID)

	limited, err := s.repo.ListByUser(ctx, "u1", 2)
	s.Require().NoError(err)
	s.Len(limited, 2)

	ranged, err := s.repo.ListInRange(ctx, "u1", base.Add(time.Hour), base.Add(72*time.Hour))
	s.Require().NoError(err)
	s.Require().Len(ranged, 2)
	s.Equal(models.TestID("t2"), ranged[0].ID)

	s.Require().NoError(s.repo.DeleteAllForUser(ctx, "u1"))
	all, err = s.repo.ListByUser(ctx, "u1", 0)
	s.Require().NoError(err)
	s.Empty(all)
}

func TestTestRepositorySuite(t *testing.T) {
	suite.Run(t, new(TestRepositorySuite))
}
