package pipeline

import (
	"fmt"

	"pricetags/internal"
	"pricetags/internal/util"
)

// ValidationError explains why a row was dropped.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Field)
}

// ValidateRow rejects rows that are structurally short or carry a missing or
// placeholder price. Cosmetic price formatting is repaired later, not here.
func ValidateRow(row internal.RawRow) error {
	for i := 0; i < internal.RequiredFields; i++ {
		if _, ok := row.Field(i); !ok {
			return &ValidationError{Field: internal.FieldNames[i], Reason: "missing field"}
		}
	}
	for _, i := range []int{internal.FieldSocialPrice, internal.FieldRegularPrice} {
		if util.IsPlaceholderPrice(row.Fields[i]) {
			return &ValidationError{Field: internal.FieldNames[i], Reason: "missing price"}
		}
	}
	return nil
}
