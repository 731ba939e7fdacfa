package barcode

import (
	"strings"
	"unicode"

	"pricetags/internal"
)

// DefaultLengths are the digit counts accepted as a barcode.
var DefaultLengths = []int{8, 13}

var typeByLength = map[int]internal.BarcodeType{
	0:  internal.BarcodeNone,
	8:  internal.BarcodeEAN8,
	13: internal.BarcodeEAN13,
}

// Extractor pulls the real barcode out of a point-of-sale barcode field,
// which may also hold internal numbers and control bytes.
type Extractor struct {
	Lengths []int

	// StripGTIN14Prefix turns a 14 digit token starting with 0 or 1 into
	// its 13 digit EAN-13 remainder before the length check.
	StripGTIN14Prefix bool
}

func NewExtractor(lengths []int, stripGTIN14Prefix bool) *Extractor {
	if len(lengths) == 0 {
		lengths = DefaultLengths
	}
	return &Extractor{Lengths: lengths, StripGTIN14Prefix: stripGTIN14Prefix}
}

// Extract returns the last token of an accepted length, or "" when there is
// none. Running it on its own output returns the output unchanged.
func (e *Extractor) Extract(field string) string {
	found := ""
	for _, token := range Tokens(field) {
		if e.StripGTIN14Prefix && len(token) == 14 && (token[0] == '0' || token[0] == '1') {
			token = token[1:]
		}
		if !isDigits(token) || !e.accepts(len(token)) {
			continue
		}
		found = token
	}
	return found
}

func (e *Extractor) accepts(n int) bool {
	lengths := e.Lengths
	if len(lengths) == 0 {
		lengths = DefaultLengths
	}
	for _, l := range lengths {
		if l == n {
			return true
		}
	}
	return false
}

// Tokens splits a raw field on control characters (GS, RS, CR, LF, ...)
// and then on whitespace.
func Tokens(field string) []string {
	chunks := strings.FieldsFunc(field, unicode.IsControl)
	out := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		out = append(out, strings.Fields(strings.TrimSpace(chunk))...)
	}
	return out
}

// Classify maps a cleaned barcode to its symbol type by length.
func Classify(barcode string) internal.BarcodeType {
	if t, ok := typeByLength[len(barcode)]; ok {
		return t
	}
	return internal.BarcodeUnsupported
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
