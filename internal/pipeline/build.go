package pipeline

import (
	"errors"
	"fmt"
	"log/slog"

	"pricetags/internal"
	"pricetags/internal/barcode"
	"pricetags/internal/logging"
	"pricetags/internal/util"
)

// Builder turns raw rows into label records. Bad rows end up in the
// diagnostics collector and never stop the batch. Blank lines are the
// parser's business; every row handed over is either built or reported.
type Builder struct {
	extractor *barcode.Extractor
	encoder   barcode.Encoder
	log       *slog.Logger
}

func NewBuilder(extractor *barcode.Extractor, encoder barcode.Encoder, log *slog.Logger) *Builder {
	if extractor == nil {
		extractor = barcode.NewExtractor(nil, false)
	}
	return &Builder{extractor: extractor, encoder: encoder, log: logging.Module(log, "builder")}
}

// Build reports rejected rows to diags; a nil diags discards them.
func (b *Builder) Build(rows []internal.RawRow, diags *Collector) []internal.LabelRecord {
	if diags == nil {
		diags = NewCollector()
	}
	out := make([]internal.LabelRecord, 0, len(rows))
	for _, row := range rows {
		record, err := b.BuildRecord(row)
		if err != nil {
			b.log.Debug("row rejected", "line", row.Line, "reason", err.Error())
			diags.AddValidation(row, err.Error())
			continue
		}
		record.Index = len(out)

		if record.BarcodeType != internal.BarcodeNone && b.encoder != nil {
			res := b.encoder.Encode(record.Barcode, record.BarcodeType)
			if res.OK() {
				record.Symbol = res.Symbol
			} else {
				b.log.Debug("barcode not encodable", "line", row.Line, "barcode", record.Barcode, "error", res.Err)
				diags.AddEncoding(row, fmt.Sprintf("barcode %s (%s): %v", record.Barcode, record.BarcodeType, res.Err))
			}
		}

		out = append(out, record)
	}
	return out
}

// BuildRecord validates and normalizes a single row without invoking the
// symbol encoder.
func (b *Builder) BuildRecord(row internal.RawRow) (internal.LabelRecord, error) {
	if err := ValidateRow(row); err != nil {
		return internal.LabelRecord{}, err
	}

	social, err := util.NormalizePrice(row.Fields[internal.FieldSocialPrice])
	if err != nil {
		return internal.LabelRecord{}, priceError(internal.FieldSocialPrice, err)
	}
	regular, err := util.NormalizePrice(row.Fields[internal.FieldRegularPrice])
	if err != nil {
		return internal.LabelRecord{}, priceError(internal.FieldRegularPrice, err)
	}

	description := util.NormalizeDescription(row.Fields[internal.FieldDescription])
	code := b.extractor.Extract(row.Fields[internal.FieldBarcode])
	sku := row.Fields[internal.FieldSKU]

	return internal.LabelRecord{
		Line:          row.Line,
		Description:   description,
		SearchKey:     util.SearchKey(description, code, sku),
		Barcode:       code,
		BarcodeLength: len(code),
		BarcodeType:   barcode.Classify(code),
		SKU:           sku,
		SocialPrice:   social,
		RegularPrice:  regular,
	}, nil
}

func priceError(field int, err error) error {
	reason := "invalid price"
	if !errors.Is(err, util.ErrInvalidPrice) {
		reason = err.Error()
	}
	return &ValidationError{Field: internal.FieldNames[field], Reason: reason}
}
