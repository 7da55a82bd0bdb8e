package navigation

import (
	"fmt"
	"strings"

	"github.com/starford/almanac/internal/apperr"
)

// Direction is the way a prev/next action moves.
type Direction int

const (
	Forward Direction = iota
	Backward
)

// ParseDirection accepts "forward"/"next" and "backward"/"previous"/"prev".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "forward", "next":
		return Forward, nil
	case "backward", "previous", "prev":
		return Backward, nil
	}
	return Forward, fmt.Errorf("%w: unknown direction %q", apperr.ErrInvalidArgument, s)
}

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// StepDate moves one calendar day from current and clamps the result.
// Stepping past either bound saturates at that bound.
func StepDate(current DateKey, dir Direction) DateKey {
	t, err := current.Time()
	if err != nil {
		return Clamp(current)
	}
	days := 1
	if dir == Backward {
		days = -1
	}
	return Clamp(FormatDateKey(t.AddDate(0, 0, days)))
}

// StepName returns the neighbour of current in the authors list when
// current is an author, otherwise in the poems list. Both lists must be
// sorted by the caller. Neighbours wrap around at either end. A name
// found in neither list is returned unchanged.
func StepName(current string, dir Direction, authors, poems []string) string {
	list := poems
	if indexOf(authors, current) >= 0 {
		list = authors
	}
	i := indexOf(list, current)
	if i < 0 {
		return current
	}
	last := len(list) - 1
	if dir == Backward {
		if i == 0 {
			return list[last]
		}
		return list[i-1]
	}
	if i == last {
		return list[0]
	}
	return list[i+1]
}

func indexOf(list []string, name string) int {
	for i, v := range list {
		if v == name {
			return i
		}
	}
	return -1
}
