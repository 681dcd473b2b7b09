package pagination

import (
	"net/http"
	"strconv"

	"github.com/Akshaybondre123/First-Startup/pkg/validator"
)

// MaxLimit caps the page size a caller may request.
const MaxLimit = 100

// Params holds pagination parameters extracted from query strings.
type Params struct {
	Page   int `json:"page"`
	Limit  int `json:"limit"`
	Offset int `json:"-"`
}

// DefaultParams returns page 1 with the given page size.
func DefaultParams(limit int) Params {
	return Params{Page: 1, Limit: limit}
}

// FromRequest reads ?page and ?limit. Absent values take defaults. Values
// that are not positive integers are rejected with a validator.ValidationError.
// A limit above MaxLimit is clamped.
func FromRequest(r *http.Request, defaultLimit int) (Params, error) {
	p := DefaultParams(defaultLimit)
	q := r.URL.Query()
	ve := &validator.ValidationError{}

	if raw := q.Get("page"); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v < 1 {
			ve.Add("page", "must be a positive integer")
		} else {
			p.Page = v
		}
	}

	if raw := q.Get("limit"); raw != "" {
		v, err := strconv.Atoi(raw)
		switch {
		case err != nil || v < 1:
			ve.Add("limit", "must be a positive integer")
		case v > MaxLimit:
			p.Limit = MaxLimit
		default:
			p.Limit = v
		}
	}

	if !ve.Empty() {
		return Params{}, ve
	}

	p.Offset = (p.Page - 1) * p.Limit
	return p, nil
}
