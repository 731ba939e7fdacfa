package barcode

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"pricetags/internal"
)

func TestExtract(t *testing.T) {
	e := NewExtractor(nil, false)
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "sku and ean13 behind group separator", input: "12345\u001D0012345678905\n", want: "0012345678905"},
		{name: "plain ean8", input: "96385074", want: "96385074"},
		{name: "last match wins", input: "4006381333931 0012345678905", want: "0012345678905"},
		{name: "stale value before newline", input: "96385074\r\n4006381333931", want: "4006381333931"},
		{name: "no valid length", input: "12345 678", want: ""},
		{name: "non digits ignored", input: "ABCDEFGH", want: ""},
		{name: "control bytes around", input: "\u0004\u001E96385074\u001F", want: "96385074"},
		{name: "empty", input: "", want: ""},
		{name: "gtin14 kept off by default", input: "00012345678905", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, e.Extract(tc.input))
		})
	}
}

func TestExtractIdempotent(t *testing.T) {
	e := NewExtractor(nil, true)
	for _, in := range []string{"12345\u001D0012345678905\n", "96385074", "junk", "10012345678905", ""} {
		once := e.Extract(in)
		assert.Equal(t, once, e.Extract(once), "input %q", in)
	}
}

func TestExtractGTIN14Policy(t *testing.T) {
	strip := NewExtractor(nil, true)
	assert.Equal(t, "0012345678905", strip.Extract("00012345678905"))
	assert.Equal(t, "0012345678905", strip.Extract("10012345678905"))
	assert.Equal(t, "", strip.Extract("20012345678905"))

	keep := NewExtractor(nil, false)
	assert.Equal(t, "", keep.Extract("00012345678905"))
}

func TestExtractCustomLengths(t *testing.T) {
	e := NewExtractor([]int{8, 12, 13}, false)
	assert.Equal(t, "012345678905", e.Extract("x 012345678905"))
	assert.Equal(t, internal.BarcodeUnsupported, Classify("012345678905"))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, internal.BarcodeNone, Classify(""))
	assert.Equal(t, internal.BarcodeEAN8, Classify("96385074"))
	assert.Equal(t, internal.BarcodeEAN13, Classify("4006381333931"))
	assert.Equal(t, internal.BarcodeUnsupported, Classify("12345"))
}

func TestTokens(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c", "d"}, Tokens(" a b\u001Dc\n d "))
	assert.Empty(t, Tokens("\n\u001D "))
}
