package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pricetags/internal"
	"pricetags/internal/config"
	"pricetags/internal/logging"
	"pricetags/internal/query"
	"pricetags/internal/storage"
)

const priceList = "Halfvolle melk;0012345678905;M100;,9;1,19\n" +
	"Karamelk toffee;96385074;K200;1;2,5\n" +
	"Kaas jong belegen;;K300;;4,99\n" +
	"Ijsthee perzik;87654321;I400;0,75;1\n"

func setup(t *testing.T) (string, config.Config, *storage.DB) {
	t.Helper()
	dir := t.TempDir()
	input := filepath.Join(dir, "prices.csv")
	require.NoError(t, os.WriteFile(input, []byte(priceList), 0o644))

	db, err := storage.Open(filepath.Join(dir, "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	cfg := config.Config{
		OutputDir:       filepath.Join(dir, "out"),
		RunLogEnabled:   true,
		CSVLazyQuotes:   true,
		PageSize:        query.DefaultPageSize,
		BarcodeLengths:  []int{8, 13},
		WatchAutoOutput: true,
	}
	return input, cfg, db
}

func run(t *testing.T, db *storage.DB, cfg config.Config, args ...string) (string, error) {
	t.Helper()
	app := newCLIApp(db, cfg, logging.Discard())
	buf := &bytes.Buffer{}
	app.Writer = buf
	app.ErrWriter = buf
	err := app.Run(append([]string{"pricetags"}, args...))
	return buf.String(), err
}

func TestShowCommand(t *testing.T) {
	input, cfg, db := setup(t)

	out, err := run(t, db, cfg, "show", "--input", input, "--filter", "mel*", "--sort", "regularPrice", "--desc")
	require.NoError(t, err)
	assert.Less(t, strings.Index(out, "Karamelk toffee"), strings.Index(out, "Halfvolle melk"))
	assert.NotContains(t, out, "IJsthee")
	assert.Contains(t, out, "records=3")
	assert.Contains(t, out, "matched=2 pages=1")
}

func TestShowRaw(t *testing.T) {
	input, cfg, db := setup(t)

	out, err := run(t, db, cfg, "show", "--input", input, "--raw")
	require.NoError(t, err)
	assert.Contains(t, out, `"Ijsthee perzik"`)
	assert.Contains(t, out, `",9"`)
}

func TestShowRejectsBadFlags(t *testing.T) {
	input, cfg, db := setup(t)

	_, err := run(t, db, cfg, "show", "--input", input, "--sort", "price")
	assert.ErrorContains(t, err, "unsupported sort key")

	_, err = run(t, db, cfg, "show", "--input", input, "--barcode", "abc")
	assert.ErrorContains(t, err, "invalid barcode length bucket")

	_, err = run(t, db, cfg, "show", "--input", input, "--page", "2")
	assert.ErrorContains(t, err, "out of range")
}

func TestShowEmptyResultFirstPage(t *testing.T) {
	input, cfg, db := setup(t)

	out, err := run(t, db, cfg, "show", "--input", input, "--filter", "appelmoes", "--page", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "matched=0 pages=0")

	_, err = run(t, db, cfg, "show", "--input", input, "--filter", "appelmoes", "--page", "2")
	assert.ErrorContains(t, err, "out of range")
}

func TestDiagnosticsCommand(t *testing.T) {
	input, cfg, db := setup(t)

	out, err := run(t, db, cfg, "diagnostics", "--input", input, "--kind", "validation")
	require.NoError(t, err)

	var items []internal.Diagnostic
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	require.Len(t, items, 1)
	assert.Equal(t, 3, items[0].Line)
	assert.Equal(t, "missing price: socialPrice", items[0].Message)

	runs, err := db.ListRuns(1)
	require.NoError(t, err)
	require.Len(t, runs, 1)

	out, err = run(t, db, cfg, "diagnostics", "--trace", runs[0].TraceID)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal([]byte(out), &items))
	assert.Len(t, items, 2)

	_, err = run(t, db, cfg, "diagnostics")
	assert.Error(t, err)
}

func TestExportAndRenderCommands(t *testing.T) {
	input, cfg, db := setup(t)

	out, err := run(t, db, cfg, "export:xlsx", "--input", input, "--barcode", ">0")
	require.NoError(t, err)
	assert.Contains(t, out, "exported 3 labels")
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "labels.xlsx"))

	html := filepath.Join(t.TempDir(), "sheet.html")
	out, err = run(t, db, cfg, "render:html", "--input", input, "--out", html)
	require.NoError(t, err)
	assert.Contains(t, out, "rendered 3 labels on 1 pages")
	blob, err := os.ReadFile(html)
	require.NoError(t, err)
	assert.Contains(t, string(blob), "Karamelk toffee")
}

func TestRunsCommand(t *testing.T) {
	input, cfg, db := setup(t)

	_, err := run(t, db, cfg, "show", "--input", input)
	require.NoError(t, err)

	out, err := run(t, db, cfg, "runs")
	require.NoError(t, err)
	assert.Contains(t, out, input)

	_, err = run(t, nil, cfg, "runs")
	assert.ErrorIs(t, err, errNoRunLog)
}

func TestWatchOnce(t *testing.T) {
	input, cfg, db := setup(t)

	out, err := run(t, db, cfg, "watch", "--once", "--dir", filepath.Dir(input))
	require.NoError(t, err)
	assert.Equal(t, "scanned=1 loaded=1 failed=0\n", out)
	assert.FileExists(t, filepath.Join(cfg.OutputDir, "listener", "prices.html"))
}
