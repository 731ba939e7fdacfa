package pipeline

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/xuri/excelize/v2"

	"pricetags/internal"
)

var utf8BOM = []byte("\xef\xbb\xbf")

type ParseOptions struct {
	Delimiter  rune
	LazyQuotes bool
	HasHeader  bool
}

// ParseResult is what the tabular parser hands to the builder: rows in input
// order plus parse-level diagnostics.
type ParseResult struct {
	Rows        []internal.RawRow
	Diagnostics []internal.Diagnostic

	// set when the parser already recognized and dropped a header row
	headerSkipped bool
}

func (r *ParseResult) addParse(line, column int, msg string) {
	r.Diagnostics = append(r.Diagnostics, internal.Diagnostic{Kind: internal.DiagnosticParse, Line: line, Column: column, Message: msg})
}

func ExtractRows(format Format, data []byte, opt ParseOptions) (ParseResult, error) {
	var (
		res ParseResult
		err error
	)
	switch format {
	case FormatCSV:
		res = parseCSV(data, opt)
	case FormatTSV:
		opt.Delimiter = '\t'
		res = parseCSV(data, opt)
	case FormatXLSX:
		res, err = parseXLSX(data)
	case FormatHTML:
		res, err = parseHTMLTable(data)
	default:
		return ParseResult{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err != nil {
		return ParseResult{}, err
	}
	if opt.HasHeader && !res.headerSkipped && len(res.Rows) > 0 {
		res.Rows = res.Rows[1:]
	}
	return res, nil
}

func parseCSV(data []byte, opt ParseOptions) ParseResult {
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = opt.Delimiter
	if r.Comma == 0 {
		r.Comma = SniffDelimiter(data)
	}
	r.LazyQuotes = opt.LazyQuotes
	r.FieldsPerRecord = -1

	res := ParseResult{}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				res.addParse(perr.Line, perr.Column, perr.Err.Error())
				continue
			}
			res.addParse(0, 0, err.Error())
			break
		}

		// A lone blank field is a whitespace-only line. Rows with delimiters
		// go on to validation even when every field is empty.
		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}
		line, _ := r.FieldPos(0)
		res.Rows = append(res.Rows, internal.RawRow{Line: line, Fields: append([]string(nil), rec...)})
	}
	return res
}

func parseXLSX(content []byte) (ParseResult, error) {
	f, err := excelize.OpenReader(bytes.NewReader(content))
	if err != nil {
		return ParseResult{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	res := ParseResult{}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return res, nil
	}
	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		res.addParse(0, 0, fmt.Sprintf("sheet %s: %v", sheet, err))
		return res, nil
	}

	// GetRows drops trailing empty cells; pad so an empty price cell is
	// empty rather than absent.
	width := 0
	for _, row := range rows {
		width = max(width, len(row))
	}
	for i, cells := range rows {
		fields := make([]string, width)
		copy(fields, cells)
		row := internal.RawRow{Line: i + 1, Fields: fields}
		if row.IsBlank() {
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

func parseHTMLTable(content []byte) (ParseResult, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(content))
	if err != nil {
		return ParseResult{}, fmt.Errorf("parse html: %w", err)
	}

	res := ParseResult{}
	table := doc.Find("table").First()
	if table.Length() == 0 {
		res.addParse(0, 0, "no <table> found")
		return res, nil
	}

	table.Find("tr").Each(func(i int, tr *goquery.Selection) {
		cells := tr.Find("th,td")
		if cells.Length() == 0 {
			return
		}
		if tr.Find("td").Length() == 0 {
			if len(res.Rows) == 0 {
				res.headerSkipped = true
			}
			return
		}
		fields := make([]string, 0, cells.Length())
		cells.Each(func(_ int, cell *goquery.Selection) {
			fields = append(fields, strings.TrimSpace(cell.Text()))
		})
		res.Rows = append(res.Rows, internal.RawRow{Line: i + 1, Fields: fields})
	})
	return res, nil
}

var delimiterCandidates = []rune{';', '\t', ',', '|'}

// SniffDelimiter guesses the separator from the first non-blank line by
// counting candidates outside quotes. Semicolon wins ties because decimal
// comma prices make it the usual choice for these exports.
func SniffDelimiter(data []byte) rune {
	line := ""
	for _, l := range strings.Split(string(bytes.TrimPrefix(data, utf8BOM)), "\n") {
		if strings.TrimSpace(l) != "" {
			line = l
			break
		}
	}

	counts := map[rune]int{}
	inQuotes := false
	for _, r := range line {
		if r == '"' {
			inQuotes = !inQuotes
			continue
		}
		if !inQuotes {
			counts[r]++
		}
	}

	best, bestCount := ',', 0
	for _, c := range delimiterCandidates {
		if counts[c] > bestCount {
			best, bestCount = c, counts[c]
		}
	}
	return best
}
