// Package navigation implements the archive's date and name navigation:
// DateKey formatting and clamping, day stepping in by-date mode and
// cyclic stepping through sorted author/poem lists in by-name mode.
//
// Every function here is pure. Nothing reads the system clock; callers
// pass the current calendar date explicitly.
package navigation

import (
	"fmt"
	"strconv"
	"time"

	"github.com/starford/almanac/internal/apperr"
)

// DateKey is an 8-digit YYYYMMDD archive day.
type DateKey string

// Archive bounds. The archive holds no content outside this window.
const (
	MinDateKey DateKey = "19930101"
	MaxDateKey DateKey = "20171129"

	minDateInt = 19930101
	maxDateInt = 20171129
)

// FormatDateKey formats the UTC calendar date of t as a DateKey.
// The result is not clamped.
func FormatDateKey(t time.Time) DateKey {
	t = t.UTC()
	return DateKey(fmt.Sprintf("%04d%02d%02d", t.Year(), int(t.Month()), t.Day()))
}

// ParseDateKey validates that s is exactly eight ASCII digits.
func ParseDateKey(s string) (DateKey, error) {
	if len(s) != 8 {
		return "", fmt.Errorf("%w: date key %q must be 8 digits", apperr.ErrInvalidArgument, s)
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return "", fmt.Errorf("%w: date key %q must be 8 digits", apperr.ErrInvalidArgument, s)
		}
	}
	return DateKey(s), nil
}

// Int returns the numeric value of k, or 0 if k is not numeric.
func (k DateKey) Int() int {
	n, err := strconv.Atoi(string(k))
	if err != nil {
		return 0
	}
	return n
}

// Time returns midnight UTC of the calendar day k names. Out-of-range
// month/day values are normalised by time.Date.
func (k DateKey) Time() (time.Time, error) {
	if _, err := ParseDateKey(string(k)); err != nil {
		return time.Time{}, err
	}
	n := k.Int()
	year, month, day := n/10000, (n/100)%100, n%100
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC), nil
}

func (k DateKey) String() string { return string(k) }

// Clamp bounds k to [MinDateKey, MaxDateKey]. Non-numeric keys clamp to
// the lower bound.
func Clamp(k DateKey) DateKey {
	return ClampInt(k.Int())
}

// ClampInt bounds an integer date to the archive window and formats it.
func ClampInt(n int) DateKey {
	switch {
	case n < minDateInt:
		return MinDateKey
	case n > maxDateInt:
		return MaxDateKey
	default:
		return DateKey(fmt.Sprintf("%08d", n))
	}
}

// InRange reports whether k lies inside the archive window.
func InRange(k DateKey) bool {
	n := k.Int()
	return n >= minDateInt && n <= maxDateInt
}

// DefaultDate returns the archive day to show for the given current
// calendar date: today's key clamped into the archive window.
func DefaultDate(currentCalendarDate time.Time) DateKey {
	return Clamp(FormatDateKey(currentCalendarDate))
}
