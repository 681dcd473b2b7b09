// Package suggest maps free-text search input to canonical discovery tags.
package suggest

import "strings"

// MaxSuggestions caps the result of Tags.
const MaxSuggestions = 6

// Canonical is the ordered set of tags the UI offers as chips.
var Canonical = []string{
	"Budget",
	"Family Friendly",
	"Late Night",
	"Pure Veg",
	"Student Friendly",
	"Couple Friendly",
	"Party Place",
	"Best Dinner Spot",
	"Aesthetic Cafe",
	"City Special",
	"Private Cafe",
	"Private Dining",
}

type keyword struct {
	word string
	tags []string
}

// Order matters: suggestions are emitted in declaration order.
var keywords = []keyword{
	{"family", []string{"Family Friendly"}},
	{"couple", []string{"Couple Friendly"}},
	{"single", []string{"Aesthetic Cafe", "Student Friendly"}},
	{"party", []string{"Party Place"}},
	{"budget", []string{"Budget", "Student Friendly"}},
	{"veg", []string{"Pure Veg"}},
	{"vegetarian", []string{"Pure Veg"}},
	{"late", []string{"Late Night"}},
	{"night", []string{"Late Night"}},
	{"dinner", []string{"Best Dinner Spot"}},
	{"private", []string{"Private Cafe", "Private Dining"}},
	{"aesthetic", []string{"Aesthetic Cafe"}},
	{"cafe", []string{"Aesthetic Cafe", "Private Cafe"}},
}

// Tags returns up to MaxSuggestions tags for query. Canonical tags whose
// name contains the query come first, then tags reached through keywords the
// query contains. Blank input yields an empty, non-nil slice.
//
// Surrounding whitespace is ignored: "friendly " still matches the canonical
// "... Friendly" tags, which a raw substring test would miss.
func Tags(query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]string, 0, MaxSuggestions)
	if q == "" {
		return out
	}

	seen := make(map[string]struct{}, MaxSuggestions)
	add := func(tag string) bool {
		if _, ok := seen[tag]; ok {
			return len(out) < MaxSuggestions
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
		return len(out) < MaxSuggestions
	}

	for _, tag := range Canonical {
		if strings.Contains(strings.ToLower(tag), q) && !add(tag) {
			return out
		}
	}
	for _, kw := range keywords {
		if !strings.Contains(q, kw.word) {
			continue
		}
		for _, tag := range kw.tags {
			if !add(tag) {
				return out
			}
		}
	}
	return out
}
