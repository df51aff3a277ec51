package models

import "time"

// Category groups words by part of speech or topic.
type Category string

const (
	CategoryVerbs            Category = "VERBI"
	CategoryIrregularVerbs   Category = "VERBI_IRREGOLARI"
	CategoryNouns            Category = "SOSTANTIVI"
	CategoryAdjectives       Category = "AGGETTIVI"
	CategoryPhysicalFeatures Category = "DESCRIZIONI_FISICHE"
	CategoryBodyPosition     Category = "POSIZIONE_CORPO"
	CategoryEmotions         Category = "EMOZIONI"
	CategoryPositiveEmotions Category = "EMOZIONI_POSITIVE"
	CategoryNegativeEmotions Category = "EMOZIONI_NEGATIVE"
	CategoryWork             Category = "LAVORO"
	CategoryFamily           Category = "FAMIGLIA"
	CategoryTechnology       Category = "TECNOLOGIA"
	CategoryClothes          Category = "VESTITI"
)

var categories = map[Category]bool{
	CategoryVerbs: true, CategoryIrregularVerbs: true, CategoryNouns: true,
	CategoryAdjectives: true, CategoryPhysicalFeatures: true, CategoryBodyPosition: true,
	CategoryEmotions: true, CategoryPositiveEmotions: true, CategoryNegativeEmotions: true,
	CategoryWork: true, CategoryFamily: true, CategoryTechnology: true, CategoryClothes: true,
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	return categories[c]
}

type Word struct {
	ID       WordID   `json:"id"`
	UserID   UserID   `json:"user_id"`
	English  string   `json:"english"`
	Italian  string   `json:"italian"`
	Category Category `json:"category"`
	Chapter  string   `json:"chapter"`

	Sentences []string `json:"sentences"`
	Synonyms  []string `json:"synonyms,omitempty"`
	Antonyms  []string `json:"antonyms,omitempty"`
	Notes     string   `json:"notes,omitempty"`

	Learned   bool `json:"learned"`
	Difficult bool `json:"difficult"`

	TimesShown            int        `json:"times_shown"`
	TimesCorrect          int        `json:"times_correct"`
	TimesIncorrect        int        `json:"times_incorrect"`
	AverageResponseTimeMs float64    `json:"average_response_time_ms"`
	LastShown             *time.Time `json:"last_shown,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type WordInput struct {
	English   string   `json:"english"`
	Italian   string   `json:"italian"`
	Category  Category `json:"category"`
	Chapter   string   `json:"chapter"`
	Sentences []string `json:"sentences,omitempty"`
	Synonyms  []string `json:"synonyms,omitempty"`
	Antonyms  []string `json:"antonyms,omitempty"`
	Notes     string   `json:"notes,omitempty"`
}

// WordUpdate is a partial update; nil fields are left untouched.
type WordUpdate struct {
	English   *string   `json:"english,omitempty"`
	Italian   *string   `json:"italian,omitempty"`
	Category  *Category `json:"category,omitempty"`
	Chapter   *string   `json:"chapter,omitempty"`
	Sentences *[]string `json:"sentences,omitempty"`
	Synonyms  *[]string `json:"synonyms,omitempty"`
	Antonyms  *[]string `json:"antonyms,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	Learned   *bool     `json:"learned,omitempty"`
	Difficult *bool     `json:"difficult,omitempty"`
}

// Apply copies the set fields of u onto w.
func (u WordUpdate) Apply(w *Word) {
	if u.English != nil {
		w.English = *u.English
	}
	if u.Italian != nil {
		w.Italian = *u.Italian
	}
	if u.Category != nil {
		w.Category = *u.Category
	}
	if u.Chapter != nil {
		w.Chapter = *u.Chapter
	}
	if u.Sentences != nil {
		w.Sentences = *u.Sentences
	}
	if u.Synonyms != nil {
		w.Synonyms = *u.Synonyms
	}
	if u.Antonyms != nil {
		w.Antonyms = *u.Antonyms
	}
	if u.Notes != nil {
		w.Notes = *u.Notes
	}
	if u.Learned != nil {
		w.Learned = *u.Learned
	}
	if u.Difficult != nil {
		w.Difficult = *u.Difficult
	}
}

type WordFilter struct {
	UserID     UserID
	Chapters   []string
	Categories []Category
	Learned    *bool
	Difficult  *bool
	Search     string
	OrderBy    string // english, italian, created_at, chapter, category, times_shown, average_response_time_ms
	OrderDir   string // ASC or DESC
}

// WordPerformanceUpdate is one answer's effect on a word.
type WordPerformanceUpdate struct {
	WordID    WordID
	IsCorrect bool
	UsedHint  bool
	TimeSpent time.Duration
	Context   string
}
