// Package yearrange turns a calendar year into the epoch boundaries used to
// filter activity queries.
//
// Boundaries are computed in the process's local timezone (time.Local). A
// deployment whose timezone differs from the athlete's will shift the year
// edge by the offset between the two.
package yearrange

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// dateLayout is day.month.year.
const dateLayout = "02.01.2006"

// ErrInvalidYear is returned when a year cannot be parsed or resolved.
var ErrInvalidYear = errors.New("invalid year")

// Range is the [Start, End) window of one calendar year in Unix seconds.
type Range struct {
	Year  int
	Start int64
	End   int64
}

// Resolve returns the range starting Jan 1 00:00:00 of year and ending at the
// same instant of year+1.
func Resolve(year int) (Range, error) {
	return ResolveIn(year, time.Local)
}

// ResolveIn is Resolve with an explicit location.
func ResolveIn(year int, loc *time.Location) (Range, error) {
	start, err := newYear(year, loc)
	if err != nil {
		return Range{}, err
	}
	end, err := newYear(year+1, loc)
	if err != nil {
		return Range{}, err
	}
	return Range{Year: year, Start: start.Unix(), End: end.Unix()}, nil
}

func newYear(year int, loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(dateLayout, fmt.Sprintf("01.01.%d", year), loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %d: %v", ErrInvalidYear, year, err)
	}
	return t, nil
}

// ParseYear converts raw user input into a year.
func ParseYear(raw string) (int, error) {
	year, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not an integer", ErrInvalidYear, raw)
	}
	return year, nil
}
