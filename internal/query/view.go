package query

import (
	"pricetags/internal"
)

// DefaultPageSize is the number of labels on one printed sheet.
const DefaultPageSize = 21

// View is a read-only window over one loaded collection. Apply recomputes
// the visible records from scratch each time, so the latest request always
// wins and nothing needs to be cancelled.
type View struct {
	records  []internal.LabelRecord
	pageSize int
}

type Result struct {
	Records []internal.LabelRecord
	Count   int
	Pages   int
}

func NewView(records []internal.LabelRecord, pageSize int) *View {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return &View{records: records, pageSize: pageSize}
}

func (v *View) Len() int {
	return len(v.records)
}

func (v *View) PageSize() int {
	return v.pageSize
}

// Apply filters, then sorts. A nil sort spec keeps input order.
func (v *View) Apply(filter internal.FilterCriteria, sort *internal.SortSpec) Result {
	visible := Filter(v.records, Compile(filter))
	if sort != nil {
		visible = Sort(visible, *sort)
	}
	return Result{Records: visible, Count: len(visible), Pages: PageCount(len(visible), v.pageSize)}
}

// PageCount rounds up; zero records means zero pages.
func PageCount(count, pageSize int) int {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	return (count + pageSize - 1) / pageSize
}

// Page returns the 1-based page n of records, or nil when out of range.
func Page(records []internal.LabelRecord, n, pageSize int) []internal.LabelRecord {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if n < 1 {
		return nil
	}
	start := (n - 1) * pageSize
	if start >= len(records) {
		return nil
	}
	end := min(start+pageSize, len(records))
	return records[start:end]
}

// Pages splits records into consecutive pages.
func Pages(records []internal.LabelRecord, pageSize int) [][]internal.LabelRecord {
	out := [][]internal.LabelRecord{}
	for n := 1; ; n++ {
		page := Page(records, n, pageSize)
		if page == nil {
			return out
		}
		out = append(out, page)
	}
}
