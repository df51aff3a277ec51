package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/joho/godotenv"
	"github.com/vytor/lexiflash/internal/engine"
)

type Config struct {
	Addr           string
	DBPath         string
	LogLevel       string
	LogFormat      string
	JWTSecret      string
	Timezone       string
	StatsRefreshAt string

	WorkerCount int
	QueueSize   int

	SlowThresholdMs     int
	VerySlowThresholdMs int
	AutoAdvanceDelayMs  int
	HintCooldownMs      int
	MaxHintsPerWord     int
	ExcellentScore      int
	GoodScore           int
	VictoryScore        int
	RecencyWindowHours  int
	TimeAffectsScore    bool
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:           envOr("ADDR", ":8080"),
		DBPath:         envOr("DB_PATH", "file:lexiflash.db"),
		LogLevel:       envOr("LOG_LEVEL", "INFO"),
		LogFormat:      envOr("LOG_FORMAT", "text"),
		JWTSecret:      os.Getenv("AUTH_JWT_SECRET"),
		Timezone:       envOr("TIMEZONE", "UTC"),
		StatsRefreshAt: envOr("STATS_REFRESH_AT", "00:05"),

		WorkerCount: envIntOr("WORKER_COUNT", 2),
		QueueSize:   envIntOr("QUEUE_SIZE", 64),

		SlowThresholdMs:     envIntOr("SLOW_THRESHOLD_MS", 25000),
		VerySlowThresholdMs: envIntOr("VERY_SLOW_THRESHOLD_MS", 40000),
		AutoAdvanceDelayMs:  envIntOr("AUTO_ADVANCE_DELAY_MS", 1500),
		HintCooldownMs:      envIntOr("HINT_COOLDOWN_MS", 3000),
		MaxHintsPerWord:     envIntOr("MAX_HINTS_PER_WORD", 1),
		ExcellentScore:      envIntOr("EXCELLENT_SCORE", 80),
		GoodScore:           envIntOr("GOOD_SCORE", 60),
		VictoryScore:        envIntOr("VICTORY_SCORE", 80),
		RecencyWindowHours:  envIntOr("RECENCY_WINDOW_HOURS", 24),
		TimeAffectsScore:    envBoolOr("TIME_AFFECTS_SCORE", false),
	}
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if c.Addr == "" {
		add("ADDR cannot be empty")
	}
	if c.DBPath == "" {
		add("DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "ERROR":
	default:
		add("LOG_LEVEL must be one of DEBUG, INFO, WARN, ERROR (got %q)", c.LogLevel)
	}
	if f := strings.ToLower(c.LogFormat); f != "text" && f != "json" {
		add("LOG_FORMAT must be text or json (got %q)", c.LogFormat)
	}
	if len(c.JWTSecret) < 16 {
		add("AUTH_JWT_SECRET must be at least 16 characters")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		add("TIMEZONE %q is not a known location", c.Timezone)
	}
	if _, err := time.Parse("15:04", c.StatsRefreshAt); err != nil {
		add("STATS_REFRESH_AT must be HH:MM (got %q)", c.StatsRefreshAt)
	}
	if c.WorkerCount <= 0 {
		add("WORKER_COUNT must be positive")
	}
	if c.QueueSize <= 0 {
		add("QUEUE_SIZE must be positive")
	}
	if c.SlowThresholdMs <= 0 {
		add("SLOW_THRESHOLD_MS must be positive")
	}
	if c.VerySlowThresholdMs <= c.SlowThresholdMs {
		add("VERY_SLOW_THRESHOLD_MS must be greater than SLOW_THRESHOLD_MS")
	}
	if c.AutoAdvanceDelayMs < 0 {
		add("AUTO_ADVANCE_DELAY_MS cannot be negative")
	}
	if c.HintCooldownMs < 0 {
		add("HINT_COOLDOWN_MS cannot be negative")
	}
	if c.MaxHintsPerWord < 0 {
		add("MAX_HINTS_PER_WORD cannot be negative")
	}
	for _, s := range []struct {
		name  string
		value int
	}{{"EXCELLENT_SCORE", c.ExcellentScore}, {"GOOD_SCORE", c.GoodScore}, {"VICTORY_SCORE", c.VictoryScore}} {
		if s.value < 0 || s.value > 100 {
			add("%s must be between 0 and 100", s.name)
		}
	}
	if c.GoodScore > c.ExcellentScore {
		add("GOOD_SCORE cannot exceed EXCELLENT_SCORE")
	}
	if c.RecencyWindowHours < 0 {
		add("RECENCY_WINDOW_HOURS cannot be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// EngineSettings converts the configured knobs into engine settings.
func (c Config) EngineSettings() engine.Settings {
	return engine.Settings{
		SlowThreshold:     time.Duration(c.SlowThresholdMs) * time.Millisecond,
		VerySlowThreshold: time.Duration(c.VerySlowThresholdMs) * time.Millisecond,
		AutoAdvanceDelay:  time.Duration(c.AutoAdvanceDelayMs) * time.Millisecond,
		HintCooldown:      time.Duration(c.HintCooldownMs) * time.Millisecond,
		MaxHintsPerWord:   c.MaxHintsPerWord,
		ExcellentScore:    c.ExcellentScore,
		GoodScore:         c.GoodScore,
		VictoryScore:      c.VictoryScore,
		HintPenalty:       engine.DerivedHintPenalty(c.ExcellentScore, c.GoodScore),
		RecencyWindow:     time.Duration(c.RecencyWindowHours) * time.Hour,
		TimeAffectsScore:  c.TimeAffectsScore,
	}
}

// Location returns the timezone days are bucketed in. Call Validate first.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}
