package internal

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/boombuler/barcode"
)

// Positions of the fields in a price-list row.
const (
	FieldDescription = iota
	FieldBarcode
	FieldSKU
	FieldSocialPrice
	FieldRegularPrice

	RequiredFields
)

var FieldNames = [RequiredFields]string{"description", "barcode", "sku", "socialPrice", "regularPrice"}

// RawRow is one parsed row of the source file. A field at an index past
// len(Fields) is absent, which is not the same as an empty field.
type RawRow struct {
	Line   int
	Fields []string
}

func (r RawRow) Field(i int) (string, bool) {
	if i < 0 || i >= len(r.Fields) {
		return "", false
	}
	return r.Fields[i], true
}

func (r RawRow) IsBlank() bool {
	for _, f := range r.Fields {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}

type BarcodeType string

const (
	BarcodeNone        BarcodeType = "None"
	BarcodeEAN8        BarcodeType = "EAN8"
	BarcodeEAN13       BarcodeType = "EAN13"
	BarcodeUnsupported BarcodeType = "Unsupported"
)

// Price holds the canonical "D+,DD" text and its numeric value. Value is
// only meant for ordering.
type Price struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"`
}

type LabelRecord struct {
	Index         int         `json:"index"`
	Line          int         `json:"line"`
	Description   string      `json:"description"`
	SearchKey     string      `json:"-"`
	Barcode       string      `json:"barcode"`
	BarcodeLength int         `json:"barcodeLength"`
	BarcodeType   BarcodeType `json:"barcodeType"`
	SKU           string      `json:"sku"`
	SocialPrice   Price       `json:"socialPrice"`
	RegularPrice  Price       `json:"regularPrice"`

	// Symbol is nil when there is no barcode or the encoder rejected it.
	Symbol barcode.Barcode `json:"-"`
}

type DiagnosticKind string

const (
	DiagnosticParse      DiagnosticKind = "parse"
	DiagnosticValidation DiagnosticKind = "validation"
	DiagnosticEncoding   DiagnosticKind = "encoding"
)

type Diagnostic struct {
	Kind    DiagnosticKind `json:"kind"`
	Line    int            `json:"line,omitempty"`
	Column  int            `json:"column,omitempty"`
	Message string         `json:"message"`
	Row     []string       `json:"row,omitempty"`
}

func (d Diagnostic) String() string {
	loc := ""
	if d.Line > 0 {
		loc = fmt.Sprintf(" line %d", d.Line)
		if d.Column > 0 {
			loc += fmt.Sprintf(" col %d", d.Column)
		}
	}
	if len(d.Row) > 0 {
		return fmt.Sprintf("[%s]%s: %s %q", d.Kind, loc, d.Message, d.Row)
	}
	return fmt.Sprintf("[%s]%s: %s", d.Kind, loc, d.Message)
}

// BarcodeBucket selects records by barcode length: "" (any), "0" (none),
// ">0" (some barcode) or an exact length such as "8" or "13".
type BarcodeBucket string

const (
	BucketAny     BarcodeBucket = ""
	BucketNone    BarcodeBucket = "0"
	BucketPresent BarcodeBucket = ">0"
	BucketEAN8    BarcodeBucket = "8"
	BucketEAN13   BarcodeBucket = "13"
)

func ParseBarcodeBucket(s string) (BarcodeBucket, error) {
	s = strings.TrimSpace(s)
	switch BarcodeBucket(s) {
	case BucketAny, BucketNone, BucketPresent:
		return BarcodeBucket(s), nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return BucketAny, fmt.Errorf("invalid barcode length bucket: %q", s)
	}
	return BarcodeBucket(strconv.Itoa(n)), nil
}

type FilterCriteria struct {
	Text          string
	BarcodeLength BarcodeBucket
}

type SortKey string

const (
	SortDescription  SortKey = "description"
	SortBarcode      SortKey = "barcode"
	SortSKU          SortKey = "sku"
	SortRegularPrice SortKey = "regularPrice"
	SortSocialPrice  SortKey = "socialPrice"
)

func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.TrimSpace(s)); k {
	case SortDescription, SortBarcode, SortSKU, SortRegularPrice, SortSocialPrice:
		return k, nil
	default:
		return "", fmt.Errorf("unsupported sort key: %s", s)
	}
}

type SortSpec struct {
	Key       SortKey
	Ascending bool
}

// Dataset is everything produced by one load of a source file. It is
// replaced as a whole on the next load.
type Dataset struct {
	Source      string
	TraceID     string
	Rows        []RawRow
	Records     []LabelRecord
	Diagnostics []Diagnostic
}
