// Package identity reconciles the two athlete identifier namespaces: the
// box-score source keys athletes by display name, the rating source by a
// slug-style external ID ("20/deandre-ayton"). Both sides are reduced to a
// canonical slug via name normalization plus a small override table for
// the known mismatches normalization alone cannot bridge.
package identity

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Resolver maps a raw athlete name to its canonical identifier. It is
// injected wherever the two namespaces are joined so the mapping can be
// tested and swapped independently of either source schema.
type Resolver interface {
	Canonical(name string) string
}

// defaultOverrides patches the known cases where the two sources disagree
// beyond what normalization fixes (suffixes, alternate first names,
// swapped name order).
var defaultOverrides = map[string]string{
	"alex-sarr":                 "alexandre-sarr",
	"daron-holmes":              "daron-holmes-ii",
	"walter-clayton":            "walter-clayton-jr",
	"ron-holland":               "ronald-holland-ii",
	"xavier-tillman-sr":         "xavier-tillman",
	"yang-hansen":               "hansen-yang",
	"yanic-konan-niederhauser":  "yanic-niederhauser",
}

var (
	punctRe = regexp.MustCompile(`['.]`)
	spaceRe = regexp.MustCompile(`\s+`)

	// NFD decomposition followed by removal of combining marks strips
	// diacritics (Dončić -> Doncic, Jokić -> Jokic).
	deaccent = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
)

// NameResolver is the default Resolver: normalization plus overrides.
type NameResolver struct {
	overrides map[string]string
}

// NewResolver returns a resolver with the built-in override table merged
// with the supplied extra overrides (extra entries win).
func NewResolver(extra map[string]string) *NameResolver {
	overrides := make(map[string]string, len(defaultOverrides)+len(extra))
	for k, v := range defaultOverrides {
		overrides[k] = v
	}
	for k, v := range extra {
		overrides[k] = v
	}
	return &NameResolver{overrides: overrides}
}

// Canonical returns the canonical slug for a raw athlete name.
func (r *NameResolver) Canonical(name string) string {
	slug := Normalize(name)
	if mapped, ok := r.overrides[slug]; ok {
		return mapped
	}
	return slug
}

// Normalize reduces a display name to a lowercase hyphenated slug:
// diacritics stripped, apostrophes and periods removed, whitespace
// collapsed to single hyphens.
func Normalize(name string) string {
	s, _, err := transform.String(deaccent, name)
	if err != nil {
		s = name
	}
	s = strings.ToLower(strings.TrimSpace(s))
	s = punctRe.ReplaceAllString(s, "")
	s = spaceRe.ReplaceAllString(s, "-")
	return s
}

// SlugFromExternalID extracts the name slug from a rating-source external
// ID of the form "<numeric-prefix>/<slug>". IDs without a separator are
// returned unchanged.
func SlugFromExternalID(id string) string {
	if i := strings.LastIndex(id, "/"); i >= 0 {
		return id[i+1:]
	}
	return id
}
