package services

import (
	"context"
	"time"

	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
)

// TransferService exports and imports everything a user owns
type TransferService interface {
	Export(ctx context.Context, userID models.UserID) (*models.ExportData, error)
	Import(ctx context.Context, userID models.UserID, data models.ExportData) (*models.ImportResult, error)
}

type transferService struct {
	tx        repository.Transactor
	wordRepo  repository.WordRepository
	testRepo  repository.TestRepository
	statsRepo repository.StatsRepository
	perfRepo  repository.PerformanceRepository
	now       func() time.Time
}

// NewTransferService creates a new TransferService
func NewTransferService(tx repository.Transactor, wordRepo repository.WordRepository, testRepo repository.TestRepository, statsRepo repository.StatsRepository, perfRepo repository.PerformanceRepository) TransferService {
	return &transferService{
		tx:        tx,
		wordRepo:  wordRepo,
		testRepo:  testRepo,
		statsRepo: statsRepo,
		perfRepo:  perfRepo,
		now:       time.Now,
	}
}

func (s *transferService) Export(ctx context.Context, userID models.UserID) (*models.ExportData, error) {
	log := logger.FromContext(ctx)
	log.Info("exporting data: user_id=%s", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	data := &models.ExportData{
		Version:    models.ExportVersion,
		ExportedAt: s.now().UTC(),
		UserID:     userID,
	}
	// One transaction gives a consistent snapshot.
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		if data.Words, err = s.wordRepo.ListByUser(ctx, userID); err != nil {
			return err
		}
		if data.Tests, err = s.testRepo.ListByUser(ctx, userID, 0); err != nil {
			return err
		}
		if data.Stats, err = s.statsRepo.GetOrCreate(ctx, userID); err != nil {
			return err
		}
		data.WordPerformance, err = s.perfRepo.ListByUser(ctx, userID)
		return err
	})
	if err != nil {
		log.Error("failed to export data: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Debug("exported %d words, %d tests, %d performance records", len(data.Words), len(data.Tests), len(data.WordPerformance))
	return data, nil
}

func validateExport(data models.ExportData) error {
	if data.Version != models.ExportVersion {
		return errors.NewValidationError("version", "unsupported export version "+data.Version)
	}
	seen := make(map[models.WordID]bool, len(data.Words))
	for _, w := range data.Words {
		if w.ID == "" {
			return errors.NewValidationError("words", "word without id")
		}
		if seen[w.ID] {
			return errors.NewValidationError("words", "duplicate word id "+string(w.ID))
		}
		seen[w.ID] = true
		if err := validateWordInput(models.WordInput{English: w.English, Italian: w.Italian, Category: w.Category}); err != nil {
			return err
		}
	}
	for _, t := range data.Tests {
		if t.ID == "" {
			return errors.NewValidationError("tests", "test without id")
		}
		if t.CorrectWords+t.IncorrectWords != t.TotalWords || t.Percentage < 0 || t.Percentage > 100 {
			return errors.NewValidationError("tests", "inconsistent totals in test "+string(t.ID))
		}
	}
	for _, p := range data.WordPerformance {
		if p.WordID == "" {
			return errors.NewValidationError("word_performance", "record without word id")
		}
	}
	return nil
}

// rekey gives every record a fresh id and rewrites the references between
// them. Used when an export moves into another account.
func rekey(data models.ExportData) models.ExportData {
	wordIDs := make(map[models.WordID]models.WordID, len(data.Words))
	words := make([]models.Word, len(data.Words))
	for i, w := range data.Words {
		wordIDs[w.ID] = models.NewWordID()
		w.ID = wordIDs[w.ID]
		words[i] = w
	}
	wordID := func(id models.WordID) models.WordID {
		if n, ok := wordIDs[id]; ok {
			return n
		}
		return id
	}
	remap := func(results []models.TestWordResult) []models.TestWordResult {
		out := make([]models.TestWordResult, len(results))
		for i, r := range results {
			r.WordID = wordID(r.WordID)
			out[i] = r
		}
		return out
	}

	testIDs := make(map[models.TestID]models.TestID, len(data.Tests))
	tests := make([]models.Test, len(data.Tests))
	for i, t := range data.Tests {
		testIDs[t.ID] = models.NewTestID()
		t.ID = testIDs[t.ID]
		t.RightWords = remap(t.RightWords)
		t.WrongWords = remap(t.WrongWords)
		tests[i] = t
	}

	perf := make([]models.WordPerformance, len(data.WordPerformance))
	for i, p := range data.WordPerformance {
		p.WordID = wordID(p.WordID)
		perf[i] = p
	}

	st := data.Stats
	st.ID = models.NewStatsID()
	st.AppliedTests = make([]models.TestID, 0, len(data.Stats.AppliedTests))
	for _, id := range data.Stats.AppliedTests {
		if n, ok := testIDs[id]; ok {
			id = n
		}
		st.AppliedTests = append(st.AppliedTests, id)
	}

	data.Words, data.Tests, data.WordPerformance, data.Stats = words, tests, perf, st
	return data
}

// Import replaces all of the user's data with the exported content. Ids are
// kept when the export belongs to the same user, so importing it restores
// the account exactly; exports of other users get fresh ids.
func (s *transferService) Import(ctx context.Context, userID models.UserID, data models.ExportData) (*models.ImportResult, error) {
	log := logger.FromContext(ctx)
	log.Info("importing data: user_id=%s, words=%d, tests=%d", userID, len(data.Words), len(data.Tests))

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateExport(data); err != nil {
		return nil, err
	}
	if data.UserID != userID {
		log.Debug("export belongs to %q, assigning new ids", data.UserID)
		data = rekey(data)
	}

	words := make([]models.Word, len(data.Words))
	for i, w := range data.Words {
		w.UserID = userID
		words[i] = w
	}
	st := data.Stats
	st.UserID = userID
	if st.ID == "" {
		st.ID = models.NewStatsID()
	}

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := s.wordRepo.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.testRepo.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.perfRepo.DeleteAllForUser(ctx, userID); err != nil {
			return err
		}
		if err := s.statsRepo.Delete(ctx, userID); err != nil {
			return err
		}

		if err := s.wordRepo.CreateBatch(ctx, words); err != nil {
			return err
		}
		for _, t := range data.Tests {
			t.UserID = userID
			if err := s.testRepo.Create(ctx, t); err != nil {
				return err
			}
		}
		for _, p := range data.WordPerformance {
			p.UserID = userID
			if err := s.perfRepo.Upsert(ctx, p); err != nil {
				return err
			}
		}
		return s.statsRepo.Put(ctx, st)
	})
	if err != nil {
		log.Error("failed to import data: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return &models.ImportResult{
		Words:           len(words),
		Tests:           len(data.Tests),
		WordPerformance: len(data.WordPerformance),
	}, nil
}
