package model

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// accentStripper decomposes characters (NFD) so diacritics become separate
// combining marks, removes the marks (unicode.Mn), then recomposes (NFC).
// "São Paulo" → "Sao Paulo".
var accentStripper = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

var (
	nonWordChars = regexp.MustCompile(`[^\w\s-]`)
	spaceRuns    = regexp.MustCompile(`[\s_]+`)
)

// Slug converts free text into a lowercase, accent-free, filesystem-safe
// token: non-word characters are dropped and runs of whitespace/underscores
// collapse to single hyphens. Deterministic for a given input.
func Slug(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if stripped, _, err := transform.String(accentStripper, s); err == nil {
		s = stripped
	}
	s = nonWordChars.ReplaceAllString(s, "")
	s = spaceRuns.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// DefaultImageExt is used when the source URL carries no usable extension.
const DefaultImageExt = ".jpg"

// ImageFilename derives the local filename for a downloaded image:
// <slug(city)>-<slug(country)>-<sanitized id><ext>, with the extension taken
// from the URL path or defaulted.
func ImageFilename(city, country, imageID, rawURL string) string {
	id := spaceRuns.ReplaceAllString(nonWordChars.ReplaceAllString(imageID, ""), "-")
	return Slug(city) + "-" + Slug(country) + "-" + id + extFromURL(rawURL)
}

// extFromURL extracts the file extension from a URL's path component,
// ignoring query strings. Returns DefaultImageExt when none is present.
func extFromURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return DefaultImageExt
	}
	ext := strings.ToLower(path.Ext(u.Path))
	if ext == "" || len(ext) > 5 {
		return DefaultImageExt
	}
	return ext
}
