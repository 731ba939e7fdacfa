package barcode

import (
	"bytes"
	"errors"
	"fmt"
	"image/png"

	gobarcode "github.com/boombuler/barcode"
	"github.com/boombuler/barcode/ean"

	"pricetags/internal"
)

var ErrUnsupportedSymbol = errors.New("unsupported symbol format")

// SymbolResult carries either a renderable symbol or the reason the encoder
// refused the digits.
type SymbolResult struct {
	Symbol gobarcode.Barcode
	Err    error
}

func (r SymbolResult) OK() bool {
	return r.Err == nil && r.Symbol != nil
}

type Encoder interface {
	Encode(digits string, kind internal.BarcodeType) SymbolResult
}

// EANEncoder encodes EAN-8 and EAN-13 symbols. The check digit must be valid.
type EANEncoder struct{}

func NewEANEncoder() *EANEncoder {
	return &EANEncoder{}
}

func (e *EANEncoder) Encode(digits string, kind internal.BarcodeType) SymbolResult {
	want := 0
	switch kind {
	case internal.BarcodeEAN8:
		want = 8
	case internal.BarcodeEAN13:
		want = 13
	default:
		return SymbolResult{Err: fmt.Errorf("%w: %s", ErrUnsupportedSymbol, kind)}
	}
	if len(digits) != want {
		return SymbolResult{Err: fmt.Errorf("%s needs %d digits, got %d", kind, want, len(digits))}
	}

	symbol, err := ean.Encode(digits)
	if err != nil {
		return SymbolResult{Err: fmt.Errorf("encode %s %s: %w", kind, digits, err)}
	}
	return SymbolResult{Symbol: symbol}
}

// PNG scales a symbol to width x height and returns it as PNG bytes.
func PNG(symbol gobarcode.Barcode, width, height int) ([]byte, error) {
	scaled, err := gobarcode.Scale(symbol, width, height)
	if err != nil {
		return nil, err
	}
	buf := bytes.NewBuffer(nil)
	if err := png.Encode(buf, scaled); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
