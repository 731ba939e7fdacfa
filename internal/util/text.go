package util

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	reWordStartIj = regexp.MustCompile(`(^|[^\p{L}\p{N}])Ij`)
	reSpaces      = regexp.MustCompile(`\s+`)

	foldReplacer = strings.NewReplacer(
		"æ", "ae",
		"œ", "oe",
		"ø", "o",
		"‘", "'", "’", "'", "‚", "'", "‛", "'",
		"“", `"`, "”", `"`, "„", `"`, "‟", `"`,
	)
)

// NormalizeDescription trims the description and upper-cases the Dutch
// "Ij" digraph where it starts a word.
func NormalizeDescription(input string) string {
	s := strings.TrimSpace(input)
	return reWordStartIj.ReplaceAllString(s, "${1}IJ")
}

// NormalizeForFiltering folds text for matching only: lowercase, diacritics
// stripped, a few ligatures and curly quotes flattened.
func NormalizeForFiltering(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	if s == "" {
		return ""
	}
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}
	return foldReplacer.Replace(s)
}

// SearchKey joins the folded parts with single spaces and pads both ends so
// that " "+word matches only at the start of a word.
func SearchKey(parts ...string) string {
	folded := make([]string, 0, len(parts))
	for _, p := range parts {
		if f := NormalizeForFiltering(p); f != "" {
			folded = append(folded, f)
		}
	}
	joined := reSpaces.ReplaceAllString(strings.Join(folded, " "), " ")
	return " " + joined + " "
}

// Tokenize splits folded filter text into words.
func Tokenize(input string) []string {
	return strings.Fields(NormalizeForFiltering(input))
}
