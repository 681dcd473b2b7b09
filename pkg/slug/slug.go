package slug

import (
	"regexp"
	"strings"
)

var (
	nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

	// Latin letters with diacritics that commonly show up in restaurant and
	// cuisine names, plus "&" which reads better spelled out.
	transliterate = strings.NewReplacer(
		"&", " and ",
		"à", "a", "á", "a", "â", "a", "ä", "a", "ã", "a", "å", "a",
		"ç", "c",
		"è", "e", "é", "e", "ê", "e", "ë", "e",
		"ì", "i", "í", "i", "î", "i", "ï", "i",
		"ñ", "n",
		"ò", "o", "ó", "o", "ô", "o", "ö", "o", "õ", "o",
		"ù", "u", "ú", "u", "û", "u", "ü", "u",
		"ā", "a", "ī", "i", "ū", "u",
	)
)

// Generate creates a URL-friendly slug from a display name.
//
//   - "The Nagpur Kitchen" → "the-nagpur-kitchen"
//   - "Love & Latte"       → "love-and-latte"
//   - "Café Mocha!"        → "cafe-mocha"
func Generate(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = transliterate.Replace(s)
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// WithSuffix returns the slug of name followed by a short disambiguating
// suffix, for use when the plain slug is already taken.
func WithSuffix(name, suffix string) string {
	base := Generate(name)
	suffix = Generate(suffix)
	switch {
	case base == "":
		return suffix
	case suffix == "":
		return base
	default:
		return base + "-" + suffix
	}
}
