package navigation

import (
	"fmt"
	"strings"
	"time"

	"github.com/starford/almanac/internal/apperr"
)

// Mode selects which stepping algorithm prev/next uses.
type Mode int

const (
	ByDate Mode = iota
	ByName
)

// ParseMode accepts "date" and "name" (also "author" and "poem").
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "date":
		return ByDate, nil
	case "name", "author", "poem":
		return ByName, nil
	}
	return ByDate, fmt.Errorf("%w: unknown navigation mode %q", apperr.ErrInvalidArgument, s)
}

func (m Mode) String() string {
	if m == ByName {
		return "name"
	}
	return "date"
}

// State is a position in the archive. Date is meaningful in ByDate mode,
// Name in ByName mode. State is a value; every transition returns a new one.
type State struct {
	Mode Mode
	Date DateKey
	Name string
}

// NewState starts in by-date mode on the default day for the given date.
func NewState(currentCalendarDate time.Time) State {
	return State{Mode: ByDate, Date: DefaultDate(currentCalendarDate)}
}

// SelectDate switches to by-date mode on the clamped day k.
func (s State) SelectDate(k DateKey) State {
	s.Mode = ByDate
	s.Date = Clamp(k)
	return s
}

// SelectName switches to by-name mode on an author or poem title.
func (s State) SelectName(name string) State {
	s.Mode = ByName
	s.Name = name
	return s
}

// Step moves one position in the current mode.
func (s State) Step(dir Direction, authors, poems []string) State {
	switch s.Mode {
	case ByName:
		s.Name = StepName(s.Name, dir, authors, poems)
	default:
		s.Date = StepDate(s.Date, dir)
	}
	return s
}

// Key returns the canonical key for the state: the DateKey in by-date
// mode, the name in by-name mode.
func (s State) Key() string {
	if s.Mode == ByName {
		return s.Name
	}
	return string(s.Date)
}
