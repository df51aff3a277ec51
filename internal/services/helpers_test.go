package services_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/vytor/lexiflash/internal/analytics"
	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
	"github.com/vytor/lexiflash/internal/repository/sqlite"
	"github.com/vytor/lexiflash/internal/services"
	"github.com/vytor/lexiflash/internal/stats"
	"github.com/vytor/lexiflash/internal/testutil"
)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	db    *sql.DB
	clock *clock

	wordRepo  repository.WordRepository
	testRepo  repository.TestRepository
	statsRepo repository.StatsRepository
	perfRepo  repository.PerformanceRepository

	words    services.WordService
	tests    services.TestService
	stats    services.StatsService
	transfer services.TransferService
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	f := &fixture{
		db:        db,
		clock:     &clock{t: time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)},
		wordRepo:  sqlite.NewWordRepository(db),
		testRepo:  sqlite.NewTestRepository(db),
		statsRepo: sqlite.NewStatsRepository(db),
		perfRepo:  sqlite.NewPerformanceRepository(db),
	}
	tx := sqlite.NewTransactor(db)
	settings := engine.DefaultSettings()
	eng := engine.New(settings, engine.WithClock(f.clock.Now))

	f.words = services.NewWordService(f.wordRepo)
	f.stats = services.NewStatsService(services.StatsDeps{
		Tx:         tx,
		Stats:      f.statsRepo,
		Tests:      f.testRepo,
		Words:      f.wordRepo,
		Perf:       f.perfRepo,
		Aggregator: stats.New(time.UTC, settings.ExcellentScore, settings.GoodScore),
		Analyzer:   analytics.New(time.UTC, settings),
		Now:        f.clock.Now,
	})
	f.tests = services.NewTestService(eng, f.wordRepo, f.testRepo, f.perfRepo, f.stats)
	f.transfer = services.NewTransferService(tx, f.wordRepo, f.testRepo, f.statsRepo, f.perfRepo)
	return f
}

func ctx() context.Context {
	return logger.NewContext(context.Background(), logger.Discard())
}

// seedWords creates words and returns them keyed by id.
func (f *fixture) seedWords(t *testing.T, user models.UserID, inputs ...models.WordInput) map[models.WordID]models.Word {
	t.Helper()
	out := make(map[models.WordID]models.Word, len(inputs))
	for _, in := range inputs {
		w, err := f.words.CreateWord(ctx(), user, in)
		require.NoError(t, err)
		out[w.ID] = *w
	}
	return out
}

func input(english, italian, chapter string) models.WordInput {
	return models.WordInput{
		English:   english,
		Italian:   italian,
		Category:  models.CategoryNouns,
		Chapter:   chapter,
		Sentences: []string{"I see the " + english + "."},
	}
}

func plainConfig() models.TestConfig {
	cfg := models.DefaultTestConfig()
	cfg.RandomizeOrder = false
	return cfg
}
