package codec

import (
	"math"
	"time"

	"github.com/DamirAinullin/ManagedEsent/lib/engine"
)

const millisPerDay = 86_400_000

var (
	// MinDateTime is day zero of the OLE Automation calendar.
	MinDateTime = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)
	// MaxDateTime is the last representable millisecond.
	MaxDateTime = time.Date(9999, 12, 31, 23, 59, 59, 999_000_000, time.UTC)

	epochMillis = MinDateTime.UnixMilli()
	maxMillis   = MaxDateTime.UnixMilli() - epochMillis
)

// ToOADate converts the wall clock of t to an OLE Automation date. The
// location of t is ignored: dates are stored without a zone. Precision is
// one millisecond.
func ToOADate(t time.Time) (float64, error) {
	wall := time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	ms := wall.UnixMilli() - epochMillis
	if ms < 0 || ms > maxMillis {
		return 0, engine.RangeError("codec.ToOADate", "t", "%s is outside %s..%s",
			wall.Format(time.RFC3339), MinDateTime.Format(time.DateOnly), MaxDateTime.Format(time.DateOnly))
	}
	return float64(ms) / millisPerDay, nil
}

// FromOADate converts an OLE Automation date to a UTC time, rounded to the
// nearest millisecond.
func FromOADate(d float64) (time.Time, error) {
	if math.IsNaN(d) || math.IsInf(d, 0) || d < 0 {
		return time.Time{}, engine.RangeError("codec.FromOADate", "d", "invalid date %v", d)
	}
	ms := math.Round(d * millisPerDay)
	if ms > float64(maxMillis) {
		return time.Time{}, engine.RangeError("codec.FromOADate", "d", "date %v is past %s", d, MaxDateTime.Format(time.DateOnly))
	}
	return time.UnixMilli(epochMillis + int64(ms)).UTC(), nil
}
