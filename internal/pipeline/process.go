package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"pricetags/internal"
	"pricetags/internal/barcode"
	"pricetags/internal/config"
	"pricetags/internal/logging"
	"pricetags/internal/storage"
)

// ProcessingService loads one price-list source into a fresh Dataset. The db
// is optional; when set, every load leaves an audit row behind.
type ProcessingService struct {
	db      *storage.DB
	cfg     config.Config
	builder *Builder
	log     *slog.Logger
}

func NewProcessingService(db *storage.DB, cfg config.Config, log *slog.Logger) *ProcessingService {
	extractor := barcode.NewExtractor(cfg.BarcodeLengths, cfg.BarcodeStripGTIN14)
	return &ProcessingService{
		db:      db,
		cfg:     cfg,
		builder: NewBuilder(extractor, barcode.NewEANEncoder(), log),
		log:     logging.Module(log, "pipeline"),
	}
}

func (s *ProcessingService) LoadFile(ctx context.Context, path string) (*internal.Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	format, err := DetectFormat(path, head)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, path, format, data)
}

type parseOutcome struct {
	res ParseResult
	err error
}

// Load parses data and builds the label records. Parsing is the only step
// that waits; everything after it runs to completion synchronously. Data
// problems end up as diagnostics, so only cancellation is returned as an
// error from here on.
func (s *ProcessingService) Load(ctx context.Context, name string, format Format, data []byte) (*internal.Dataset, error) {
	start := time.Now()
	opt := ParseOptions{
		Delimiter:  s.cfg.CSVDelimiter,
		LazyQuotes: s.cfg.CSVLazyQuotes,
		HasHeader:  s.cfg.HasHeader,
	}

	done := make(chan parseOutcome, 1)
	go func() {
		res, err := ExtractRows(format, data, opt)
		done <- parseOutcome{res: res, err: err}
	}()

	var parsed parseOutcome
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case parsed = <-done:
	}
	parseDone := time.Now()

	diags := NewCollector()
	for _, d := range parsed.res.Diagnostics {
		diags.Add(d)
	}
	if parsed.err != nil {
		diags.AddParse(0, 0, parsed.err.Error())
	}

	records := s.builder.Build(parsed.res.Rows, diags)

	ds := &internal.Dataset{
		Source:      name,
		TraceID:     uuid.NewString(),
		Rows:        parsed.res.Rows,
		Records:     records,
		Diagnostics: diags.Items(),
	}

	s.log.Info("source loaded",
		"source", name,
		"format", string(format),
		"trace_id", ds.TraceID,
		"rows", len(ds.Rows),
		"records", len(records),
		"parse_errors", diags.Count(internal.DiagnosticParse),
		"rejected", diags.Count(internal.DiagnosticValidation),
		"encoding_errors", diags.Count(internal.DiagnosticEncoding),
	)

	if s.db != nil && s.cfg.RunLogEnabled {
		timings := map[string]float64{
			"parseMs": float64(parseDone.Sub(start).Microseconds()) / 1000,
			"totalMs": float64(time.Since(start).Microseconds()) / 1000,
		}
		if _, err := s.db.InsertRun(ds, timings); err != nil {
			s.log.Warn("run not recorded", "trace_id", ds.TraceID, "error", err)
		}
	}

	return ds, nil
}

// Summary is a one-line description of a dataset for CLI output.
func Summary(ds *internal.Dataset) string {
	c := NewCollector()
	for _, d := range ds.Diagnostics {
		c.Add(d)
	}
	return fmt.Sprintf("source=%s rows=%d records=%d parse_errors=%d rejected=%d encoding_errors=%d",
		ds.Source, len(ds.Rows), len(ds.Records),
		c.Count(internal.DiagnosticParse), c.Count(internal.DiagnosticValidation), c.Count(internal.DiagnosticEncoding))
}
