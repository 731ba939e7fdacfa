package pipeline

import (
	"encoding/json"

	"pricetags/internal"
)

// Collector keeps parse, validation and encoding problems in arrival order.
// It is display-only and never fails.
type Collector struct {
	items []internal.Diagnostic
}

func NewCollector() *Collector {
	return &Collector{}
}

func (c *Collector) Add(d internal.Diagnostic) {
	c.items = append(c.items, d)
}

func (c *Collector) AddParse(line, column int, msg string) {
	c.Add(internal.Diagnostic{Kind: internal.DiagnosticParse, Line: line, Column: column, Message: msg})
}

func (c *Collector) AddValidation(row internal.RawRow, reason string) {
	c.Add(internal.Diagnostic{Kind: internal.DiagnosticValidation, Line: row.Line, Message: reason, Row: copyFields(row.Fields)})
}

func (c *Collector) AddEncoding(row internal.RawRow, reason string) {
	c.Add(internal.Diagnostic{Kind: internal.DiagnosticEncoding, Line: row.Line, Message: reason, Row: copyFields(row.Fields)})
}

func (c *Collector) Items() []internal.Diagnostic {
	out := make([]internal.Diagnostic, len(c.items))
	copy(out, c.items)
	return out
}

func (c *Collector) Len() int {
	return len(c.items)
}

func (c *Collector) Count(kind internal.DiagnosticKind) int {
	n := 0
	for _, d := range c.items {
		if d.Kind == kind {
			n++
		}
	}
	return n
}

// DiagnosticsJSON renders diagnostics as indented JSON for display.
func DiagnosticsJSON(items []internal.Diagnostic) ([]byte, error) {
	if items == nil {
		items = []internal.Diagnostic{}
	}
	return json.MarshalIndent(items, "", "  ")
}

func copyFields(fields []string) []string {
	out := make([]string, len(fields))
	copy(out, fields)
	return out
}
