package stats

import (
	"math"
	"time"

	"github.com/vytor/lexiflash/internal/models"
)

// dayNumber counts calendar days in loc since the epoch, so two instants on
// the same local date share a number regardless of DST.
func dayNumber(t time.Time, loc *time.Location) int {
	y, m, d := t.In(loc).Date()
	return int(time.Date(y, m, d, 0, 0, 0, 0, time.UTC).Unix() / 86400)
}

// DateKey is the dailyProgress key of t in loc.
func DateKey(t time.Time, loc *time.Location) string {
	return t.In(loc).Format(models.DateLayout)
}

// WeekStart returns the Monday of the week holding t, at midnight in t's zone.
func WeekStart(t time.Time) time.Time {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, t.Location())
	offset := (int(midnight.Weekday()) + 6) % 7
	return midnight.AddDate(0, 0, -offset)
}

func parseDay(key string) (time.Time, bool) {
	t, err := time.Parse(models.DateLayout, key)
	return t, err == nil
}

func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}

func perUnit(total int64, n int) int64 {
	if n <= 0 {
		return 0
	}
	return total / int64(n)
}
