package services

import (
	"context"
	stderrors "errors"
	"fmt"
	"strings"
	"time"

	"github.com/vytor/lexiflash/internal/errors"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository"
)

// WordService handles word-related business logic
type WordService interface {
	ListWords(ctx context.Context, filter models.WordFilter) ([]models.Word, error)
	GetWord(ctx context.Context, userID models.UserID, id models.WordID) (*models.Word, error)
	CreateWord(ctx context.Context, userID models.UserID, in models.WordInput) (*models.Word, error)
	ImportWords(ctx context.Context, userID models.UserID, inputs []models.WordInput) (int, error)
	UpdateWord(ctx context.Context, userID models.UserID, id models.WordID, update models.WordUpdate) (*models.Word, error)
	DeleteWord(ctx context.Context, userID models.UserID, id models.WordID) error
	SetLearned(ctx context.Context, userID models.UserID, id models.WordID, learned bool) (*models.Word, error)
	SetDifficult(ctx context.Context, userID models.UserID, id models.WordID, difficult bool) (*models.Word, error)
	Chapters(ctx context.Context, userID models.UserID) ([]string, error)
}

type wordService struct {
	wordRepo repository.WordRepository
	now      func() time.Time
}

// NewWordService creates a new WordService
func NewWordService(wordRepo repository.WordRepository) WordService {
	return &wordService{wordRepo: wordRepo, now: time.Now}
}

func requireUser(userID models.UserID) error {
	if strings.TrimSpace(string(userID)) == "" {
		return errors.ErrUserNotAuthenticated
	}
	return nil
}

func validateWordInput(in models.WordInput) error {
	if strings.TrimSpace(in.English) == "" {
		return errors.NewValidationError("english", "must not be empty")
	}
	if strings.TrimSpace(in.Italian) == "" {
		return errors.NewValidationError("italian", "must not be empty")
	}
	if !in.Category.Valid() {
		return errors.NewValidationError("category", "unknown category "+string(in.Category))
	}
	return nil
}

func cleanList(items []string) []string {
	out := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func (s *wordService) newWord(userID models.UserID, in models.WordInput, at time.Time) models.Word {
	return models.Word{
		ID:        models.NewWordID(),
		UserID:    userID,
		English:   strings.TrimSpace(in.English),
		Italian:   strings.TrimSpace(in.Italian),
		Category:  in.Category,
		Chapter:   strings.TrimSpace(in.Chapter),
		Sentences: cleanList(in.Sentences),
		Synonyms:  cleanList(in.Synonyms),
		Antonyms:  cleanList(in.Antonyms),
		Notes:     strings.TrimSpace(in.Notes),
		CreatedAt: at,
		UpdatedAt: at,
	}
}

func (s *wordService) ListWords(ctx context.Context, filter models.WordFilter) ([]models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing words: user_id=%s", filter.UserID)

	if err := requireUser(filter.UserID); err != nil {
		return nil, err
	}
	for _, c := range filter.Categories {
		if !c.Valid() {
			return nil, errors.NewValidationError("category", "unknown category "+string(c))
		}
	}
	words, err := s.wordRepo.List(ctx, filter)
	if err != nil {
		log.Error("failed to list words: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return words, nil
}

func (s *wordService) GetWord(ctx context.Context, userID models.UserID, id models.WordID) (*models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("getting word: user_id=%s, id=%s", userID, id)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	w, err := s.wordRepo.Get(ctx, userID, id)
	if err != nil {
		log.Error("failed to get word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	if w == nil {
		return nil, errors.NewNotFoundError("word", id)
	}
	return w, nil
}

func (s *wordService) CreateWord(ctx context.Context, userID models.UserID, in models.WordInput) (*models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("creating word: user_id=%s, english=%q", userID, in.English)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	if err := validateWordInput(in); err != nil {
		return nil, err
	}
	w := s.newWord(userID, in, s.now().UTC())
	if err := s.wordRepo.Create(ctx, w); err != nil {
		log.Error("failed to create word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	log.Info("created word: id=%s", w.ID)
	return &w, nil
}

// ImportWords validates every row first so a bad row imports nothing.
func (s *wordService) ImportWords(ctx context.Context, userID models.UserID, inputs []models.WordInput) (int, error) {
	log := logger.FromContext(ctx)
	log.Debug("importing words: user_id=%s, rows=%d", userID, len(inputs))

	if err := requireUser(userID); err != nil {
		return 0, err
	}
	if len(inputs) == 0 {
		return 0, errors.NewBadRequestError("no words to import")
	}
	at := s.now().UTC()
	words := make([]models.Word, 0, len(inputs))
	for i, in := range inputs {
		if err := validateWordInput(in); err != nil {
			var appErr *errors.AppError
			if stderrors.As(err, &appErr) {
				return 0, errors.NewValidationError(fmt.Sprintf("row %d", i+1), appErr.Message)
			}
			return 0, err
		}
		words = append(words, s.newWord(userID, in, at))
	}
	if err := s.wordRepo.CreateBatch(ctx, words); err != nil {
		log.Error("failed to import words: %v", err)
		return 0, errors.NewInternalError(err)
	}
	log.Info("imported %d words", len(words))
	return len(words), nil
}

func (s *wordService) UpdateWord(ctx context.Context, userID models.UserID, id models.WordID, update models.WordUpdate) (*models.Word, error) {
	log := logger.FromContext(ctx)
	log.Debug("updating word: user_id=%s, id=%s", userID, id)

	w, err := s.GetWord(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	update.Apply(w)
	in := models.WordInput{English: w.English, Italian: w.Italian, Category: w.Category}
	if err := validateWordInput(in); err != nil {
		return nil, err
	}
	w.English = strings.TrimSpace(w.English)
	w.Italian = strings.TrimSpace(w.Italian)
	w.Chapter = strings.TrimSpace(w.Chapter)
	w.Sentences = cleanList(w.Sentences)
	w.Synonyms = cleanList(w.Synonyms)
	w.Antonyms = cleanList(w.Antonyms)
	w.UpdatedAt = s.now().UTC()

	if err := s.wordRepo.Update(ctx, *w); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return nil, errors.NewNotFoundError("word", id)
		}
		log.Error("failed to update word: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return w, nil
}

func (s *wordService) DeleteWord(ctx context.Context, userID models.UserID, id models.WordID) error {
	log := logger.FromContext(ctx)
	log.Debug("deleting word: user_id=%s, id=%s", userID, id)

	if err := requireUser(userID); err != nil {
		return err
	}
	if err := s.wordRepo.Delete(ctx, userID, id); err != nil {
		if stderrors.Is(err, repository.ErrNotFound) {
			return errors.NewNotFoundError("word", id)
		}
		log.Error("failed to delete word: %v", err)
		return errors.NewInternalError(err)
	}
	return nil
}

func (s *wordService) SetLearned(ctx context.Context, userID models.UserID, id models.WordID, learned bool) (*models.Word, error) {
	return s.UpdateWord(ctx, userID, id, models.WordUpdate{Learned: &learned})
}

func (s *wordService) SetDifficult(ctx context.Context, userID models.UserID, id models.WordID, difficult bool) (*models.Word, error) {
	return s.UpdateWord(ctx, userID, id, models.WordUpdate{Difficult: &difficult})
}

func (s *wordService) Chapters(ctx context.Context, userID models.UserID) ([]string, error) {
	log := logger.FromContext(ctx)
	log.Debug("listing chapters: user_id=%s", userID)

	if err := requireUser(userID); err != nil {
		return nil, err
	}
	chapters, err := s.wordRepo.Chapters(ctx, userID)
	if err != nil {
		log.Error("failed to list chapters: %v", err)
		return nil, errors.NewInternalError(err)
	}
	return chapters, nil
}
