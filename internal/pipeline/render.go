package pipeline

import (
	"encoding/base64"
	"html/template"
	"io"
	"log/slog"

	"pricetags/internal"
	"pricetags/internal/barcode"
	"pricetags/internal/logging"
	"pricetags/internal/query"
)

const (
	symbolWidth  = 190
	symbolHeight = 60
)

var labelSheet = template.Must(template.New("labels").Funcs(template.FuncMap{
	"inc": func(i int) int { return i + 1 },
}).Parse(`<!DOCTYPE html>
<html lang="nl">
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
<style>
section.page { display: grid; grid-template-columns: repeat(3, 1fr); gap: 4mm; page-break-after: always; }
article.label { border: 1px solid #000; padding: 3mm; }
.price-regular { font-size: 1.6em; font-weight: bold; }
.price-social { font-size: 1.1em; }
.sku { font-size: 0.8em; }
</style>
</head>
<body>
{{range $i, $page := .Pages}}<section class="page" data-page="{{inc $i}}">
{{range $page}}<article class="label" data-line="{{.Line}}" data-barcode-type="{{.BarcodeType}}">
<h2 class="description">{{.Description}}</h2>
<p class="price-regular">&euro; {{.RegularPrice}}</p>
<p class="price-social">&euro; {{.SocialPrice}}</p>
<p class="sku">{{.SKU}}</p>
{{if .SymbolURL}}<img class="barcode" alt="{{.Barcode}}" src="{{.SymbolURL}}">{{else if .Barcode}}<p class="barcode-text">{{.Barcode}}</p>{{end}}
</article>
{{end}}</section>
{{end}}</body>
</html>
`))

type labelView struct {
	Line         int
	Description  string
	RegularPrice string
	SocialPrice  string
	SKU          string
	Barcode      string
	BarcodeType  internal.BarcodeType
	SymbolURL    template.URL
}

type sheetView struct {
	Title string
	Pages [][]labelView
}

// RenderLabelsHTML writes a printable label sheet, pageSize labels per page.
// Records without a symbol get their barcode printed as text, or nothing.
func RenderLabelsHTML(w io.Writer, title string, records []internal.LabelRecord, pageSize int, log *slog.Logger) error {
	log = logging.Module(log, "render")
	view := sheetView{Title: title}
	for _, page := range query.Pages(records, pageSize) {
		labels := make([]labelView, 0, len(page))
		for _, rec := range page {
			lv := labelView{
				Line:         rec.Line,
				Description:  rec.Description,
				RegularPrice: rec.RegularPrice.Text,
				SocialPrice:  rec.SocialPrice.Text,
				SKU:          rec.SKU,
				Barcode:      rec.Barcode,
				BarcodeType:  rec.BarcodeType,
			}
			if rec.Symbol != nil {
				blob, err := barcode.PNG(rec.Symbol, symbolWidth, symbolHeight)
				if err != nil {
					log.Warn("barcode image failed", "line", rec.Line, "barcode", rec.Barcode, "error", err)
				} else {
					lv.SymbolURL = template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(blob))
				}
			}
			labels = append(labels, lv)
		}
		view.Pages = append(view.Pages, labels)
	}
	return labelSheet.Execute(w, view)
}
