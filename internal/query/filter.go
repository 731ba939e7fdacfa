package query

import (
	"strconv"
	"strings"

	"pricetags/internal"
	"pricetags/internal/util"
)

// WildcardMarker in a filter word ("*melk", "mel*") drops the word-start
// anchor; the rest of the word may match anywhere.
const WildcardMarker = "*"

type Predicate func(internal.LabelRecord) bool

// Compile turns filter criteria into a predicate over label records. Every
// word of the text must occur in the search key, at the start of a word
// unless it carries the wildcard marker. The barcode bucket compares barcode lengths.
func Compile(c internal.FilterCriteria) Predicate {
	needles := []string{}
	for _, word := range util.Tokenize(c.Text) {
		if strings.Contains(word, WildcardMarker) {
			if rest := strings.ReplaceAll(word, WildcardMarker, ""); rest != "" {
				needles = append(needles, rest)
			}
			continue
		}
		needles = append(needles, " "+word)
	}
	matchLength := compileBucket(c.BarcodeLength)

	return func(r internal.LabelRecord) bool {
		if !matchLength(r.BarcodeLength) {
			return false
		}
		for _, needle := range needles {
			if !strings.Contains(r.SearchKey, needle) {
				return false
			}
		}
		return true
	}
}

func compileBucket(b internal.BarcodeBucket) func(int) bool {
	switch b {
	case internal.BucketAny:
		return func(int) bool { return true }
	case internal.BucketNone:
		return func(n int) bool { return n == 0 }
	case internal.BucketPresent:
		return func(n int) bool { return n > 0 }
	}
	want, err := strconv.Atoi(string(b))
	if err != nil {
		return func(int) bool { return false }
	}
	return func(n int) bool { return n == want }
}

// Filter keeps the records matching pred, in their original order.
func Filter(records []internal.LabelRecord, pred Predicate) []internal.LabelRecord {
	out := make([]internal.LabelRecord, 0, len(records))
	for _, r := range records {
		if pred(r) {
			out = append(out, r)
		}
	}
	return out
}
