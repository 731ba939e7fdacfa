package pipeline

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricetags/internal"
)

func mkXLSX(rows [][]any) []byte {
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for r, row := range rows {
		for c, v := range row {
			if v == nil {
				continue
			}
			cell, _ := excelize.CoordinatesToCellName(c+1, r+1)
			_ = f.SetCellValue(sheet, cell, v)
		}
	}
	buf := bytes.NewBuffer(nil)
	_, _ = f.WriteTo(buf)
	return buf.Bytes()
}

func TestParseCSVSemicolon(t *testing.T) {
	data := "\xef\xbb\xbfMelk;96385074;M1;0,50;1,19\n\nKaas;\"4006381333931\";K1;2;4,99\n"
	res, err := ExtractRows(FormatCSV, []byte(data), ParseOptions{LazyQuotes: true})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Melk", res.Rows[0].Fields[0])
	assert.Equal(t, "0,50", res.Rows[0].Fields[3])
	assert.Equal(t, 3, res.Rows[1].Line)
	assert.Empty(t, res.Diagnostics)
}

func TestParseCSVQuotedCommaPrices(t *testing.T) {
	data := "Melk,96385074,M1,\"0,50\",\"1,19\"\n"
	res, err := ExtractRows(FormatCSV, []byte(data), ParseOptions{Delimiter: ','})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	require.Len(t, res.Rows[0].Fields, 5)
	assert.Equal(t, "1,19", res.Rows[0].Fields[4])
}

func TestParseCSVShortRowIsKept(t *testing.T) {
	res, err := ExtractRows(FormatCSV, []byte("Melk;1;M1;1;2\nKaas;2\n"), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 2)
	assert.Len(t, res.Rows[1].Fields, 2)
}

func TestParseCSVDelimiterOnlyRowIsKept(t *testing.T) {
	data := "Melk;;M1;1;2\n;;;;\n   \nKaas;;K1;1;2\n"
	res, err := ExtractRows(FormatCSV, []byte(data), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3, "whitespace-only line is skipped, delimiter-only row is not")
	assert.Equal(t, 2, res.Rows[1].Line)
	assert.Equal(t, []string{"", "", "", "", ""}, res.Rows[1].Fields)

	diags := NewCollector()
	records := NewBuilder(nil, nil, nil).Build(res.Rows, diags)
	assert.Len(t, records, 2)
	items := diags.Items()
	require.Len(t, items, 1)
	assert.Equal(t, internal.DiagnosticValidation, items[0].Kind)
	assert.Equal(t, 2, items[0].Line)
}

func TestParseCSVReportsParseErrors(t *testing.T) {
	data := "Melk;1;M1;1;2\nKa\"as;2;K1;1;2\nBrood;3;B1;1;2\n"
	res, err := ExtractRows(FormatCSV, []byte(data), ParseOptions{Delimiter: ';'})
	require.NoError(t, err)
	require.Len(t, res.Diagnostics, 1)
	d := res.Diagnostics[0]
	assert.Equal(t, internal.DiagnosticParse, d.Kind)
	assert.Equal(t, 2, d.Line)
	assert.NotZero(t, d.Column)
	require.Len(t, res.Rows, 2)
	assert.Equal(t, "Brood", res.Rows[1].Fields[0])
}

func TestParseCSVHeader(t *testing.T) {
	res, err := ExtractRows(FormatTSV, []byte("omschrijving\tbarcode\tsku\tsociaal\tprijs\nMelk\t\tM1\t1\t2\n"), ParseOptions{HasHeader: true})
	require.NoError(t, err)
	require.Len(t, res.Rows, 1)
	assert.Equal(t, "Melk", res.Rows[0].Fields[0])
}

func TestSniffDelimiter(t *testing.T) {
	cases := map[string]rune{
		"a;b;c;\"1,5\";2":  ';',
		"a\tb\tc\t1,5\t2":  '\t',
		"a,b,c,\"1;5\",2":  ',',
		"\n\na|b|c|1,5|2,0": '|',
		"single":           ',',
	}
	for in, want := range cases {
		assert.Equal(t, want, SniffDelimiter([]byte(in)), "input %q", in)
	}
}

func TestParseXLSXPadsTrailingCells(t *testing.T) {
	blob := mkXLSX([][]any{
		{"Melk", "96385074", "M1", "0,50", "1,19"},
		{"Kaas", "4006381333931", "K1", "2"},
		{nil, nil, nil, nil, nil},
		{"Brood", 12345, "B1", "1", "2,5"},
	})
	res, err := ExtractRows(FormatXLSX, blob, ParseOptions{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Len(t, res.Rows[1].Fields, 5)
	assert.Equal(t, "", res.Rows[1].Fields[4])
	assert.Equal(t, "Brood", res.Rows[2].Fields[0])
	assert.Equal(t, "12345", res.Rows[2].Fields[1])
}

func TestParseXLSXRejectsGarbage(t *testing.T) {
	_, err := ExtractRows(FormatXLSX, []byte("not a workbook"), ParseOptions{})
	assert.Error(t, err)
}

func TestParseHTMLTable(t *testing.T) {
	html := `<html><body><table>
<tr><th>Omschrijving</th><th>Barcode</th><th>Sku</th><th>Sociaal</th><th>Prijs</th></tr>
<tr><td> Melk </td><td>96385074</td><td>M1</td><td>0,50</td><td>1,19</td></tr>
<tr><td></td><td></td><td></td><td></td><td></td></tr>
<tr><td>Kaas</td><td></td><td>K1</td></tr>
</table></body></html>`
	res, err := ExtractRows(FormatHTML, []byte(html), ParseOptions{})
	require.NoError(t, err)
	require.Len(t, res.Rows, 3)
	assert.Equal(t, "Melk", res.Rows[0].Fields[0])
	assert.Equal(t, 2, res.Rows[0].Line)
	assert.Equal(t, 3, res.Rows[1].Line, "empty cells still reach validation")
	assert.Len(t, res.Rows[2].Fields, 3)
}

func TestParseHTMLHeaderOption(t *testing.T) {
	cases := []struct {
		name  string
		html  string
		first string
	}{
		{
			name: "th header is not dropped twice",
			html: `<table>
<tr><th>Omschrijving</th><th>Barcode</th><th>Sku</th><th>Sociaal</th><th>Prijs</th></tr>
<tr><td>Melk</td><td></td><td>M1</td><td>1</td><td>2,19</td></tr>
<tr><td>Kaas</td><td></td><td>K1</td><td>2</td><td>4,99</td></tr>
</table>`,
			first: "Melk",
		},
		{
			name: "td header is dropped",
			html: `<table>
<tr><td>Omschrijving</td><td>Barcode</td><td>Sku</td><td>Sociaal</td><td>Prijs</td></tr>
<tr><td>Melk</td><td></td><td>M1</td><td>1</td><td>2,19</td></tr>
<tr><td>Kaas</td><td></td><td>K1</td><td>2</td><td>4,99</td></tr>
</table>`,
			first: "Melk",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ExtractRows(FormatHTML, []byte(tc.html), ParseOptions{HasHeader: true})
			require.NoError(t, err)
			require.Len(t, res.Rows, 2)
			assert.Equal(t, tc.first, res.Rows[0].Fields[0])
			assert.Equal(t, "Kaas", res.Rows[1].Fields[0])
		})
	}
}

func TestParseHTMLWithoutTable(t *testing.T) {
	res, err := ExtractRows(FormatHTML, []byte("<p>leeg</p>"), ParseOptions{})
	require.NoError(t, err)
	assert.Empty(t, res.Rows)
	assert.Len(t, res.Diagnostics, 1)
}
