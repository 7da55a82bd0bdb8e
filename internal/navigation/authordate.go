package navigation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/starford/almanac/internal/apperr"
)

var monthNumbers = map[string]string{
	"Jan": "01", "Feb": "02", "Mar": "03", "Apr": "04",
	"May": "05", "Jun": "06", "Jul": "07", "Aug": "08",
	"Sep": "09", "Oct": "10", "Nov": "11", "Dec": "12",
}

// FormatAuthorDate converts a bibliography date such as "Jan. 15, 2003"
// (day optionally space padded) into a DateKey. Month abbreviations are
// case sensitive. Anything it cannot read is an error; it never guesses.
func FormatAuthorDate(text string) (DateKey, error) {
	fields := strings.Fields(text)
	if len(fields) != 3 {
		return "", fmt.Errorf("%w: author date %q: want \"Mon. D, YYYY\"", apperr.ErrInvalidArgument, text)
	}

	month, ok := monthNumbers[strings.TrimSuffix(fields[0], ".")]
	if !ok {
		return "", fmt.Errorf("%w: author date %q: unknown month %q", apperr.ErrInvalidArgument, text, fields[0])
	}

	dayText := strings.TrimSuffix(fields[1], ",")
	day, err := strconv.Atoi(dayText)
	if err != nil || day < 1 || day > 31 {
		return "", fmt.Errorf("%w: author date %q: bad day %q", apperr.ErrInvalidArgument, text, fields[1])
	}

	year := fields[2]
	if !fourDigits(year) {
		return "", fmt.Errorf("%w: author date %q: bad year %q", apperr.ErrInvalidArgument, text, year)
	}

	return DateKey(fmt.Sprintf("%s%s%02d", year, month, day)), nil
}

// fourDigits reports whether s is exactly four ASCII digits. Atoi alone
// would accept a signed "+003".
func fourDigits(s string) bool {
	if len(s) != 4 {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
