package util

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"pricetags/internal"
)

const decimalSeparator = ","

var (
	ErrInvalidPrice = errors.New("invalid price")

	canonicalPrice = regexp.MustCompile(`^\d+,\d{2}$`)
)

// NormalizePrice repairs a decimal-comma price into the canonical "D+,DD"
// form: ",9" -> "0,90", "12" -> "12,00", "4,567" -> "4,56".
func NormalizePrice(raw string) (internal.Price, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, decimalSeparator) {
		s = "0" + s
	}
	if !strings.Contains(s, decimalSeparator) {
		s += decimalSeparator + "00"
	}

	whole, frac, _ := strings.Cut(s, decimalSeparator)
	if len(frac) != 2 {
		frac = (frac + "00")[:2]
	}
	s = whole + decimalSeparator + frac

	if !canonicalPrice.MatchString(s) {
		return internal.Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}

	value, err := strconv.ParseFloat(strings.Replace(s, decimalSeparator, ".", 1), 64)
	if err != nil {
		return internal.Price{}, fmt.Errorf("%w: %q", ErrInvalidPrice, raw)
	}
	return internal.Price{Text: s, Value: value}, nil
}

// IsPlaceholderPrice reports a price that is missing or only a stand-in:
// empty, the bare separator, or "0".
func IsPlaceholderPrice(raw string) bool {
	switch strings.TrimSpace(raw) {
	case "", decimalSeparator, "0":
		return true
	}
	return false
}
