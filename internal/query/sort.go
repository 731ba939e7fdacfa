package query

import (
	"cmp"
	"slices"
	"strings"

	"pricetags/internal"
)

// Sort returns a stably sorted copy. Descending order negates the
// comparator instead of reversing, so ties keep their input order.
func Sort(records []internal.LabelRecord, spec internal.SortSpec) []internal.LabelRecord {
	out := slices.Clone(records)
	compare := comparator(spec.Key)
	if compare == nil {
		return out
	}
	if !spec.Ascending {
		asc := compare
		compare = func(a, b internal.LabelRecord) int { return -asc(a, b) }
	}
	slices.SortStableFunc(out, compare)
	return out
}

func comparator(key internal.SortKey) func(a, b internal.LabelRecord) int {
	switch key {
	case internal.SortDescription:
		return byText(func(r internal.LabelRecord) string { return r.Description })
	case internal.SortBarcode:
		return byText(func(r internal.LabelRecord) string { return r.Barcode })
	case internal.SortSKU:
		return byText(func(r internal.LabelRecord) string { return r.SKU })
	case internal.SortRegularPrice:
		return func(a, b internal.LabelRecord) int { return cmp.Compare(a.RegularPrice.Value, b.RegularPrice.Value) }
	case internal.SortSocialPrice:
		return func(a, b internal.LabelRecord) int { return cmp.Compare(a.SocialPrice.Value, b.SocialPrice.Value) }
	default:
		return nil
	}
}

func byText(field func(internal.LabelRecord) string) func(a, b internal.LabelRecord) int {
	return func(a, b internal.LabelRecord) int {
		return strings.Compare(strings.TrimSpace(field(a)), strings.TrimSpace(field(b)))
	}
}
