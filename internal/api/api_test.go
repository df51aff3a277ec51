package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/lexiflash/internal/analytics"
	"github.com/vytor/lexiflash/internal/engine"
	"github.com/vytor/lexiflash/internal/logger"
	"github.com/vytor/lexiflash/internal/models"
	"github.com/vytor/lexiflash/internal/repository/sqlite"
	"github.com/vytor/lexiflash/internal/services"
	"github.com/vytor/lexiflash/internal/stats"
	"github.com/vytor/lexiflash/internal/testutil"
)

const testSecret = "test-secret-0123456789"

type apiFixture struct {
	t       *testing.T
	handler http.Handler
	auth    *Authenticator
	token   string
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	logger.SetDefault(logger.Discard())

	db := testutil.NewTestDB(t)
	t.Cleanup(func() { testutil.MustClose(t, db) })

	wordRepo := sqlite.NewWordRepository(db)
	testRepo := sqlite.NewTestRepository(db)
	statsRepo := sqlite.NewStatsRepository(db)
	perfRepo := sqlite.NewPerformanceRepository(db)
	tx := sqlite.NewTransactor(db)
	settings := engine.DefaultSettings()

	statsService := services.NewStatsService(services.StatsDeps{
		Tx:         tx,
		Stats:      statsRepo,
		Tests:      testRepo,
		Words:      wordRepo,
		Perf:       perfRepo,
		Aggregator: stats.New(time.UTC, settings.ExcellentScore, settings.GoodScore),
		Analyzer:   analytics.New(time.UTC, settings),
		Now:        time.Now,
	})
	auth := NewAuthenticator(testSecret)
	srv := &Server{
		DB:              db,
		Auth:            auth,
		WordService:     services.NewWordService(wordRepo),
		TestService:     services.NewTestService(engine.New(settings), wordRepo, testRepo, perfRepo, statsService),
		StatsService:    statsService,
		TransferService: services.NewTransferService(tx, wordRepo, testRepo, statsRepo, perfRepo),
	}
	token, err := auth.Issue("user-1", time.Hour)
	require.NoError(t, err)

	return &apiFixture{t: t, handler: srv.Routes(), auth: auth, token: token}
}

func (f *apiFixture) do(method, path string, body any) *httptest.ResponseRecorder {
	f.t.Helper()
	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(f.t, err)
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Authorization", "Bearer "+f.token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	return decodeBody[errorBody](t, rec).Error.Code
}

func (f *apiFixture) createWord(english, italian, chapter string) models.Word {
	f.t.Helper()
	rec := f.do(http.MethodPost, "/api/words", models.WordInput{
		English:  english,
		Italian:  italian,
		Category: models.CategoryNouns,
		Chapter:  chapter,
	})
	require.Equal(f.t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeBody[models.Word](f.t, rec)
}

func TestHealthIsPublic(t *testing.T) {
	f := newAPIFixture(t)
	for _, path := range []string{"/health", "/ready"} {
		rec := httptest.NewRecorder()
		f.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestAPIRequiresValidToken(t *testing.T) {
	f := newAPIFixture(t)

	expired, err := f.auth.Issue("user-1", -time.Hour)
	require.NoError(t, err)
	foreign, err := NewAuthenticator("another-secret-0123456").Issue("user-1", time.Hour)
	require.NoError(t, err)

	for name, header := range map[string]string{
		"missing":      "",
		"not bearer":   "Basic abc",
		"expired":      "Bearer " + expired,
		"wrong secret": "Bearer " + foreign,
		"garbage":      "Bearer not-a-token",
	} {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/words", nil)
			if header != "" {
				req.Header.Set("Authorization", header)
			}
			rec := httptest.NewRecorder()
			f.handler.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "USER_NOT_AUTHENTICATED", errorCode(t, rec))
		})
	}
}

func TestWordEndpoints(t *testing.T) {
	f := newAPIFixture(t)
	dog := f.createWord("dog", "cane", "1")
	f.createWord("cat", "gatto", "2")

	rec := f.do(http.MethodGet, "/api/words/"+string(dog.ID), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "cane", decodeBody[models.Word](t, rec).Italian)

	rec = f.do(http.MethodGet, "/api/words?search=do", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Word](t, rec), 1)

	rec = f.do(http.MethodGet, "/api/words?chapter=1,2&order_by=english&order_dir=asc", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	words := decodeBody[[]models.Word](t, rec)
	require.Len(t, words, 2)
	assert.Equal(t, "cat", words[0].English)

	rec = f.do(http.MethodPost, "/api/words/"+string(dog.ID)+"/learned", flagRequest{Value: true})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[models.Word](t, rec).Learned)

	rec = f.do(http.MethodGet, "/api/words?learned=true", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Word](t, rec), 1)

	rec = f.do(http.MethodGet, "/api/words?learned=maybe", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	english := "hound"
	rec = f.do(http.MethodPut, "/api/words/"+string(dog.ID), models.WordUpdate{English: &english})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "hound", decodeBody[models.Word](t, rec).English)

	rec = f.do(http.MethodGet, "/api/chapters", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{"1", "2"}, decodeBody[[]string](t, rec))

	rec = f.do(http.MethodDelete, "/api/words/"+string(dog.ID), nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(http.MethodGet, "/api/words/"+string(dog.ID), nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "NOT_FOUND", errorCode(t, rec))
}

func TestCreateWordRejectsBadInput(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPost, "/api/words", models.WordInput{English: "dog", Category: models.CategoryNouns})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", errorCode(t, rec))

	rec = f.do(http.MethodPost, "/api/words", map[string]string{"english": "dog", "colour": "brown"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "BAD_REQUEST", errorCode(t, rec))
}

func TestQuizFlow(t *testing.T) {
	f := newAPIFixture(t)
	answers := map[models.WordID]string{}
	for _, w := range []models.Word{
		f.createWord("dog", "cane", "1"),
		f.createWord("cat", "gatto", "1"),
		f.createWord("house", "casa", "2"),
	} {
		answers[w.ID] = w.Italian
	}

	rec := f.do(http.MethodPost, "/api/tests", map[string]any{"randomize_order": false})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	view := decodeBody[services.TestView](t, rec)
	require.Len(t, view.Words, 3)
	assert.Equal(t, int64(1500), view.AutoAdvanceDelay)
	assert.NotContains(t, rec.Body.String(), "gatto")

	base := "/api/tests/" + string(view.ID)
	rec = f.do(http.MethodPost, base+"/answers", answerRequest{WordID: view.Words[0].ID, Answer: "x", ResponseTimeMs: 1000})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TEST_NOT_IN_PROGRESS", errorCode(t, rec))

	rec = f.do(http.MethodPost, base+"/start", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	for _, w := range view.Words {
		rec = f.do(http.MethodPost, base+"/answers", answerRequest{WordID: w.ID, Answer: answers[w.ID], ResponseTimeMs: 2000})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		res := decodeBody[services.AnswerResult](t, rec)
		assert.True(t, res.IsCorrect)
		assert.Equal(t, answers[w.ID], res.CorrectAnswer)
	}

	rec = f.do(http.MethodPost, base+"/answers", answerRequest{WordID: view.Words[0].ID, Answer: "again"})
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "ALREADY_ANSWERED", errorCode(t, rec))

	rec = f.do(http.MethodPost, base+"/complete", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	test := decodeBody[models.Test](t, rec)
	assert.Equal(t, 100, test.Percentage)
	assert.Equal(t, 3, test.CorrectWords)

	rec = f.do(http.MethodPost, base+"/complete", nil)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "TEST_ALREADY_COMPLETED", errorCode(t, rec))

	rec = f.do(http.MethodGet, base, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	rec = f.do(http.MethodGet, "/api/tests?limit=5", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decodeBody[[]models.Test](t, rec), 1)

	rec = f.do(http.MethodGet, "/api/stats", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	st := decodeBody[models.Stats](t, rec)
	assert.Equal(t, 1, st.TotalTests)
	assert.Equal(t, 100, st.AccuracyRate)

	for _, path := range []string{"/api/stats/weekly", "/api/stats/monthly", "/api/stats/analysis", "/api/stats/weak-areas?group_by=category", "/api/stats/recommendations", "/api/stats/words/" + string(view.Words[0].ID)} {
		rec = f.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, rec.Code, path+": "+rec.Body.String())
	}
}

func TestGenerateWithoutWords(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(http.MethodPost, "/api/tests", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "INSUFFICIENT_WORDS", errorCode(t, rec))
}

func TestUnknownTest(t *testing.T) {
	f := newAPIFixture(t)
	rec := f.do(http.MethodPost, "/api/tests/nope/start", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "TEST_NOT_FOUND", errorCode(t, rec))
}

func TestStatsQueryValidation(t *testing.T) {
	f := newAPIFixture(t)
	for _, path := range []string{"/api/stats/weekly?week=monday", "/api/stats/monthly?month=March", "/api/stats/weak-areas?group_by=planet", "/api/tests?limit=many"} {
		rec := f.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
	}
}

func TestCorrectDayAndReset(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(http.MethodPut, "/api/stats/daily/2024-03-04", models.DailyProgress{Tests: 2, WordsStudied: 10, CorrectAnswers: 8, IncorrectAnswers: 2})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, decodeBody[models.Stats](t, rec).DailyProgress, "2024-03-04")

	rec = f.do(http.MethodPut, "/api/stats/daily/yesterday", models.DailyProgress{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/api/stats/reset", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
	rec = f.do(http.MethodPost, "/api/stats/clear-history", nil)
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestImportWordList(t *testing.T) {
	f := newAPIFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "words.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("english,italian,category,chapter\ndog,cane,SOSTANTIVI,1\ncat,gatto,SOSTANTIVI,1\nbad,,SOSTANTIVI,1\n"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/words/import", &body)
	req.Header.Set("Authorization", "Bearer "+f.token)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	res := decodeBody[importWordsResponse](t, rec)
	assert.Equal(t, 2, res.Imported)
	assert.Len(t, res.Skipped, 1)

	rec = f.do(http.MethodGet, "/api/words", nil)
	assert.Len(t, decodeBody[[]models.Word](t, rec), 2)
}

func TestExportImport(t *testing.T) {
	f := newAPIFixture(t)
	f.createWord("dog", "cane", "1")

	rec := f.do(http.MethodGet, "/api/export", nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment")
	data := decodeBody[models.ExportData](t, rec)
	require.Len(t, data.Words, 1)

	rec = f.do(http.MethodPost, "/api/import", data)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, decodeBody[models.ImportResult](t, rec).Words)

	rec = f.do(http.MethodGet, "/api/words", nil)
	words := decodeBody[[]models.Word](t, rec)
	require.Len(t, words, 1)
	assert.Equal(t, data.Words[0].ID, words[0].ID)
}

func TestRecoveryMiddleware(t *testing.T) {
	h := loggingMiddleware(recoveryMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	})))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "INTERNAL_ERROR", errorCode(t, rec))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}
