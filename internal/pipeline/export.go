package pipeline

import (
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"pricetags/internal"
)

func ExportLabelsToXLSX(records []internal.LabelRecord, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	headers := []string{
		"line", "description", "social_price", "regular_price", "sku", "barcode", "barcode_type",
	}

	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, rec := range records {
		r := i + 2
		set := func(col int, value any) {
			cell, _ := excelize.CoordinatesToCellName(col, r)
			_ = f.SetCellValue(sheet, cell, value)
		}

		set(1, rec.Line)
		set(2, rec.Description)
		set(3, rec.SocialPrice.Text)
		set(4, rec.RegularPrice.Text)
		set(5, rec.SKU)
		set(6, rec.Barcode)
		set(7, string(rec.BarcodeType))
	}

	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return f.SaveAs(outputPath)
}
