package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/urfave/cli/v2"

	"pricetags/internal"
	"pricetags/internal/config"
	"pricetags/internal/listener"
	"pricetags/internal/pipeline"
	"pricetags/internal/query"
	"pricetags/internal/storage"
)

var errNoRunLog = errors.New("run log is disabled (RUN_LOG_ENABLED=false)")

// newCLIApp creates the CLI application with all commands. db may be nil
// when the run log is disabled.
func newCLIApp(db *storage.DB, cfg config.Config, log *slog.Logger) *cli.App {
	svc := pipeline.NewProcessingService(db, cfg, log)
	app := &cli.App{
		Name:    "pricetags",
		Usage:   "Turn supplier price lists into printable shelf labels",
		Version: Version,
		Commands: []*cli.Command{
			showCmd(svc, cfg),
			diagnosticsCmd(svc, db),
			exportCmd(svc, cfg),
			renderCmd(svc, cfg, log),
			runsCmd(db),
			watchCmd(svc, cfg, log),
		},
	}
	app.ExitErrHandler = func(_ *cli.Context, _ error) {}
	return app
}

func inputFlag() cli.Flag {
	return &cli.StringFlag{Name: "input", Aliases: []string{"i"}, Required: true, Usage: "Price list file (csv, tsv, xlsx, html)"}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "filter", Aliases: []string{"f"}, Usage: "Filter words; * in a word matches anywhere"},
		&cli.StringFlag{Name: "barcode", Aliases: []string{"b"}, Usage: "Barcode length bucket: 0|>0|8|13"},
		&cli.StringFlag{Name: "sort", Aliases: []string{"s"}, Usage: "description|barcode|sku|regularPrice|socialPrice"},
		&cli.BoolFlag{Name: "desc", Usage: "Sort descending"},
	}
}

func showCmd(svc *pipeline.ProcessingService, cfg config.Config) *cli.Command {
	flags := append([]cli.Flag{
		inputFlag(),
		&cli.IntFlag{Name: "page", Aliases: []string{"p"}, Usage: "1-based page to print; 0 prints all"},
		&cli.BoolFlag{Name: "raw", Usage: "Print parsed rows as they appear in the source"},
	}, queryFlags()...)

	return &cli.Command{
		Name:  "show",
		Usage: "Load a price list and print its label records",
		Flags: flags,
		Action: func(c *cli.Context) error {
			ds, err := svc.LoadFile(c.Context, c.String("input"))
			if err != nil {
				return err
			}
			out := c.App.Writer

			if c.Bool("raw") {
				writeRawTable(out, ds.Rows)
				fmt.Fprintln(out, pipeline.Summary(ds))
				return nil
			}

			res, err := applyQuery(c, ds.Records, cfg.PageSize)
			if err != nil {
				return err
			}
			records := res.Records
			// page 1 of an empty result is the empty table
			if page := c.Int("page"); page > 0 {
				if page > max(res.Pages, 1) {
					return fmt.Errorf("page %d out of range (1-%d)", page, max(res.Pages, 1))
				}
				records = query.Page(records, page, cfg.PageSize)
			}

			writeRecordTable(out, records)
			fmt.Fprintf(out, "%s matched=%d pages=%d\n", pipeline.Summary(ds), res.Count, res.Pages)
			return nil
		},
	}
}

func diagnosticsCmd(svc *pipeline.ProcessingService, db *storage.DB) *cli.Command {
	return &cli.Command{
		Name:  "diagnostics",
		Usage: "Print the diagnostics of a load as JSON",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "input", Aliases: []string{"i"}, Usage: "Price list file to load"},
			&cli.StringFlag{Name: "trace", Usage: "Trace id of a recorded run instead of --input"},
			&cli.StringFlag{Name: "kind", Usage: "Only this kind: parse|validation|encoding"},
		},
		Action: func(c *cli.Context) error {
			var items []internal.Diagnostic
			switch {
			case c.String("trace") != "":
				if db == nil {
					return errNoRunLog
				}
				run, err := db.GetRunByTraceID(c.String("trace"))
				if err != nil {
					return err
				}
				if run == nil {
					return fmt.Errorf("no run with trace id %s", c.String("trace"))
				}
				if items, err = db.ListRunDiagnostics(run.ID); err != nil {
					return err
				}
			case c.String("input") != "":
				ds, err := svc.LoadFile(c.Context, c.String("input"))
				if err != nil {
					return err
				}
				items = ds.Diagnostics
			default:
				return errors.New("--input or --trace is required")
			}

			if kind := c.String("kind"); kind != "" {
				kept := items[:0:0]
				for _, d := range items {
					if string(d.Kind) == kind {
						kept = append(kept, d)
					}
				}
				items = kept
			}

			blob, err := pipeline.DiagnosticsJSON(items)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.App.Writer, string(blob))
			return err
		},
	}
}

func exportCmd(svc *pipeline.ProcessingService, cfg config.Config) *cli.Command {
	flags := append([]cli.Flag{
		inputFlag(),
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output xlsx path (default OUTPUT_DIR/labels.xlsx)"},
	}, queryFlags()...)

	return &cli.Command{
		Name:  "export:xlsx",
		Usage: "Export the label records to a workbook",
		Flags: flags,
		Action: func(c *cli.Context) error {
			ds, err := svc.LoadFile(c.Context, c.String("input"))
			if err != nil {
				return err
			}
			res, err := applyQuery(c, ds.Records, cfg.PageSize)
			if err != nil {
				return err
			}
			out := outputPath(c.String("out"), cfg.OutputDir, "labels.xlsx")
			if err := pipeline.ExportLabelsToXLSX(res.Records, out); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "exported %d labels to %s\n", res.Count, out)
			return nil
		},
	}
}

func renderCmd(svc *pipeline.ProcessingService, cfg config.Config, log *slog.Logger) *cli.Command {
	flags := append([]cli.Flag{
		inputFlag(),
		&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "Output html path (default OUTPUT_DIR/labels.html)"},
		&cli.StringFlag{Name: "title", Value: "Prijskaartjes", Usage: "Document title"},
	}, queryFlags()...)

	return &cli.Command{
		Name:  "render:html",
		Usage: "Render a printable label sheet",
		Flags: flags,
		Action: func(c *cli.Context) error {
			ds, err := svc.LoadFile(c.Context, c.String("input"))
			if err != nil {
				return err
			}
			res, err := applyQuery(c, ds.Records, cfg.PageSize)
			if err != nil {
				return err
			}

			out := outputPath(c.String("out"), cfg.OutputDir, "labels.html")
			if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
				return err
			}
			f, err := os.Create(out)
			if err != nil {
				return err
			}
			if err := pipeline.RenderLabelsHTML(f, c.String("title"), res.Records, cfg.PageSize, log); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "rendered %d labels on %d pages to %s\n", res.Count, res.Pages, out)
			return nil
		},
	}
}

func runsCmd(db *storage.DB) *cli.Command {
	return &cli.Command{
		Name:  "runs",
		Usage: "List recorded loads, newest first",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "limit", Aliases: []string{"l"}, Value: 20, Usage: "Maximum runs to list"},
		},
		Action: func(c *cli.Context) error {
			if db == nil {
				return errNoRunLog
			}
			runs, err := db.ListRuns(c.Int("limit"))
			if err != nil {
				return err
			}

			table := tablewriter.NewWriter(c.App.Writer)
			table.SetAutoWrapText(false)
			table.SetHeader([]string{"id", "trace", "source", "rows", "records", "parse", "validation", "encoding", "created"})
			for _, r := range runs {
				table.Append([]string{
					strconv.Itoa(r.ID),
					r.TraceID,
					r.Source,
					strconv.Itoa(r.Rows),
					strconv.Itoa(r.Records),
					strconv.Itoa(r.Counts[string(internal.DiagnosticParse)]),
					strconv.Itoa(r.Counts[string(internal.DiagnosticValidation)]),
					strconv.Itoa(r.Counts[string(internal.DiagnosticEncoding)]),
					r.CreatedAt,
				})
			}
			table.Render()
			return nil
		},
	}
}

func watchCmd(svc *pipeline.ProcessingService, cfg config.Config, log *slog.Logger) *cli.Command {
	return &cli.Command{
		Name:  "watch",
		Usage: "Load every price list dropped into WATCH_DIR until interrupted",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Drop folder (default WATCH_DIR)"},
			&cli.BoolFlag{Name: "once", Usage: "Run a single cycle and exit"},
		},
		Action: func(c *cli.Context) error {
			if dir := c.String("dir"); dir != "" {
				cfg.WatchDir = dir
			}
			s := listener.NewService(svc, cfg, log)
			if c.Bool("once") {
				res, err := s.RunCycle(c.Context)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "scanned=%d loaded=%d failed=%d\n", res.Scanned, res.Loaded, res.Failed)
				return nil
			}
			return s.Run(c.Context)
		},
	}
}

// applyQuery reads the filter and sort flags and runs them over records.
func applyQuery(c *cli.Context, records []internal.LabelRecord, pageSize int) (query.Result, error) {
	bucket, err := internal.ParseBarcodeBucket(c.String("barcode"))
	if err != nil {
		return query.Result{}, err
	}
	filter := internal.FilterCriteria{Text: c.String("filter"), BarcodeLength: bucket}

	var sort *internal.SortSpec
	if key := c.String("sort"); key != "" {
		parsed, err := internal.ParseSortKey(key)
		if err != nil {
			return query.Result{}, err
		}
		sort = &internal.SortSpec{Key: parsed, Ascending: !c.Bool("desc")}
	}

	return query.NewView(records, pageSize).Apply(filter, sort), nil
}

func outputPath(flag, dir, name string) string {
	if strings.TrimSpace(flag) != "" {
		return flag
	}
	return filepath.Join(dir, name)
}

func writeRecordTable(w io.Writer, records []internal.LabelRecord) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	table.SetHeader([]string{"line", "description", "regular", "social", "sku", "barcode", "type"})
	for _, r := range records {
		table.Append([]string{
			strconv.Itoa(r.Line),
			r.Description,
			r.RegularPrice.Text,
			r.SocialPrice.Text,
			r.SKU,
			r.Barcode,
			string(r.BarcodeType),
		})
	}
	table.Render()
}

func writeRawTable(w io.Writer, rows []internal.RawRow) {
	table := tablewriter.NewWriter(w)
	table.SetAutoWrapText(false)
	header := append([]string{"line"}, internal.FieldNames[:]...)
	table.SetHeader(header)
	for _, row := range rows {
		cells := make([]string, len(header))
		cells[0] = strconv.Itoa(row.Line)
		for i := 0; i < internal.RequiredFields; i++ {
			if v, ok := row.Field(i); ok {
				cells[i+1] = strconv.Quote(v)
			}
		}
		table.Append(cells)
	}
	table.Render()
}
