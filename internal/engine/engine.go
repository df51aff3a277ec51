package engine

import (
	"time"
)

// Settings are the externally configured knobs of the test engine.
type Settings struct {
	SlowThreshold     time.Duration
	VerySlowThreshold time.Duration
	AutoAdvanceDelay  time.Duration
	HintCooldown      time.Duration
	MaxHintsPerWord   int

	ExcellentScore int
	GoodScore      int
	VictoryScore   int

	// HintPenalty is the score fraction lost when every answer used a hint.
	HintPenalty float64
	// RecencyWindow decides which words count as recently shown.
	RecencyWindow time.Duration
	// TimeAffectsScore subtracts points for slow averages. Off by default.
	TimeAffectsScore bool
}

// DefaultSettings returns the values the quiz screens were tuned with.
func DefaultSettings() Settings {
	return Settings{
		SlowThreshold:     25 * time.Second,
		VerySlowThreshold: 40 * time.Second,
		AutoAdvanceDelay:  1500 * time.Millisecond,
		HintCooldown:      3 * time.Second,
		MaxHintsPerWord:   1,
		ExcellentScore:    80,
		GoodScore:         60,
		VictoryScore:      80,
		HintPenalty:       DerivedHintPenalty(80, 60),
		RecencyWindow:     24 * time.Hour,
	}
}

// DerivedHintPenalty is the gap between the excellent and good thresholds: a
// test answered entirely with hints drops exactly one scoring band.
func DerivedHintPenalty(excellent, good int) float64 {
	p := float64(excellent-good) / 100
	if p < 0 {
		return 0
	}
	return p
}

// Engine selects words, evaluates answers and scores tests. It holds no
// per-user state and is safe for concurrent use.
type Engine struct {
	settings Settings
	now      func() time.Time
}

type Option func(*Engine)

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(settings Settings, opts ...Option) *Engine {
	e := &Engine{settings: settings, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Settings() Settings {
	return e.settings
}

// Now reads the engine's clock.
func (e *Engine) Now() time.Time {
	return e.now()
}

// ResponseClass is the UI warning level for an answer time.
type ResponseClass string

const (
	ResponseNormal   ResponseClass = "normal"
	ResponseSlow     ResponseClass = "slow"
	ResponseVerySlow ResponseClass = "very_slow"
)

// ClassifyResponseTime never affects correctness.
func (e *Engine) ClassifyResponseTime(d time.Duration) ResponseClass {
	switch {
	case d >= e.settings.VerySlowThreshold:
		return ResponseVerySlow
	case d >= e.settings.SlowThreshold:
		return ResponseSlow
	default:
		return ResponseNormal
	}
}
