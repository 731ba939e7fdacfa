package pipeline

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"pricetags/internal"
)

func TestExportLabelsToXLSX(t *testing.T) {
	out := filepath.Join(t.TempDir(), "nested", "labels.xlsx")
	records := []internal.LabelRecord{
		{Line: 1, Description: "Melk", SKU: "M1", Barcode: "0012345678905", BarcodeType: internal.BarcodeEAN13,
			SocialPrice: internal.Price{Text: "0,90"}, RegularPrice: internal.Price{Text: "1,19"}},
		{Line: 4, Description: "Brood", SKU: "B1", BarcodeType: internal.BarcodeNone,
			SocialPrice: internal.Price{Text: "1,50"}, RegularPrice: internal.Price{Text: "2,25"}},
	}
	require.NoError(t, ExportLabelsToXLSX(records, out))

	f, err := excelize.OpenFile(out)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(f.GetSheetName(0))
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"line", "description", "social_price", "regular_price", "sku", "barcode", "barcode_type"}, rows[0])
	assert.Equal(t, "0012345678905", rows[1][5])
	assert.Equal(t, "EAN13", rows[1][6])
	assert.Equal(t, "Brood", rows[2][1])
	assert.Equal(t, "None", rows[2][6])
}
