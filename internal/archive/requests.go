package archive

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/almanac/internal/apperr"
	"github.com/starford/almanac/internal/navigation"
)

// Search limits applied when the service is built without WithSearchLimits.
const (
	DefaultSearchLimit = 10
	MaxSearchLimit     = 50
	maxQueryLength     = 200
)

// Search scopes.
const (
	ScopeAuthors = "authors"
	ScopeAll     = "all"
)

var (
	letterRe  = regexp.MustCompile(`^[A-Z]$`)
	dateKeyRe = regexp.MustCompile(`^[0-9]{8}$`)
)

// SearchRequest is an autocomplete or full-text query.
type SearchRequest struct {
	Query string `json:"q"`
	Limit int    `json:"limit"`
	Scope string `json:"scope"`
}

// withLimits trims the query and fills in the default and ceiling limits.
func (r SearchRequest) withLimits(def, ceiling int) SearchRequest {
	r.Query = strings.TrimSpace(r.Query)
	if r.Limit <= 0 {
		r.Limit = def
	}
	if r.Limit > ceiling {
		r.Limit = ceiling
	}
	if r.Scope == "" {
		r.Scope = ScopeAuthors
	}
	return r
}

// Validate validates the search request.
func (r SearchRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Query, validation.Required, validation.RuneLength(1, maxQueryLength)),
		validation.Field(&r.Limit, validation.Min(1)),
		validation.Field(&r.Scope, validation.In(ScopeAuthors, ScopeAll)),
	))
}

// LetterRequest selects one A–Z author bucket.
type LetterRequest struct {
	Letter string `json:"letter"`
}

// Validate validates the letter request.
func (r LetterRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Letter, validation.Required, validation.Match(letterRe).Error("must be a single uppercase letter A-Z")),
	))
}

// PoemRequest selects the poem for one day. Out-of-range days are clamped,
// not rejected.
type PoemRequest struct {
	Date string `json:"date"`
}

// Validate validates the poem request.
func (r PoemRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Date, validation.Required, validation.Match(dateKeyRe).Error("must be an 8-digit YYYYMMDD date")),
	))
}

// NavigateRequest asks for the neighbour of Current in the given mode.
type NavigateRequest struct {
	Mode      string `json:"mode"`
	Current   string `json:"current"`
	Direction string `json:"direction"`
}

// Validate validates the navigate request.
func (r NavigateRequest) Validate() error {
	return invalid(validation.ValidateStruct(&r,
		validation.Field(&r.Mode, validation.Required, validation.By(func(v any) error {
			if _, err := navigation.ParseMode(v.(string)); err != nil {
				return errors.New("must be date or name")
			}
			return nil
		})),
		validation.Field(&r.Current, validation.Required),
		validation.Field(&r.Direction, validation.Required, validation.By(func(v any) error {
			if _, err := navigation.ParseDirection(v.(string)); err != nil {
				return errors.New("must be forward or backward")
			}
			return nil
		})),
	))
}

func invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", apperr.ErrInvalidArgument, err)
}
