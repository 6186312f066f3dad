package table

import (
	"fmt"
)

// View is the current filtered, sorted and paginated projection of a
// dataset. It is a value: every interaction returns a new View derived from
// All and Filtered, and the caller replaces the one it holds.
type View struct {
	Columns  []Column
	All      []Record
	Filtered []Record
	Filter   FilterStats
	Sort     SortState
	Page     int
	PageSize int
}

// NewView starts an unfiltered, unsorted view on the first page.
func NewView(ds *Dataset, pageSize int) (View, error) {
	if ds == nil {
		return View{}, &ConfigurationError{Field: "dataset", Reason: "not loaded"}
	}
	if pageSize <= 0 {
		return View{}, &ConfigurationError{Field: "page_size", Reason: fmt.Sprintf("must be greater than zero, got %d", pageSize)}
	}
	filtered, stats := Filter(ds.Records, "")
	return View{
		Columns:  ds.Columns,
		All:      ds.Records,
		Filtered: filtered,
		Filter:   stats,
		PageSize: pageSize,
	}, nil
}

// Search re-filters All by query, clears the sort and returns to page one.
func (v View) Search(query string) View {
	v.Filtered, v.Filter = Filter(v.All, query)
	v.Sort = SortState{}
	v.Page = 0
	return v
}

// ClickHeader applies a header click on column and returns to page one.
func (v View) ClickHeader(column string) (View, error) {
	return v.SortBy(column, v.Sort.Click(column).Direction)
}

// SortBy sorts the filtered records by column in dir and returns to page one.
func (v View) SortBy(column string, dir Direction) (View, error) {
	if _, ok := Lookup(v.Columns, column); !ok {
		return v, fmt.Errorf("%w: %q", ErrUnknownColumn, column)
	}
	if dir == Unsorted {
		return v.ClearSort(), nil
	}
	v.Filtered = Sort(v.Filtered, column, dir)
	v.Sort = SortState{Column: column, Direction: dir}
	v.Page = 0
	return v, nil
}

// ClearSort restores source order within the current filter.
func (v View) ClearSort() View {
	v.Filtered = Sort(v.Filtered, "", Unsorted)
	v.Sort = SortState{}
	return v
}

// GoTo moves to a zero-based page. Anything outside 0..TotalPages()-1,
// including AllPages, returns the unchanged view and an error wrapping
// ErrPageOutOfRange; ShowAll is the only way to the unpaginated view.
func (v View) GoTo(page int) (View, error) {
	if page < 0 || !ValidPage(page, len(v.Filtered), v.PageSize) {
		return v, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page+1, v.TotalPages())
	}
	v.Page = page
	return v, nil
}

// ShowAll switches to the unpaginated view.
func (v View) ShowAll() View {
	v.Page = AllPages
	return v
}

// WithPageSize changes rows per page and returns to page one.
func (v View) WithPageSize(size int) (View, error) {
	if size <= 0 {
		return v, &ConfigurationError{Field: "page_size", Reason: fmt.Sprintf("must be greater than zero, got %d", size)}
	}
	v.PageSize = size
	if v.Page != AllPages {
		v.Page = 0
	}
	return v, nil
}

// TotalPages is the number of pages of the filtered set.
func (v View) TotalPages() int { return TotalPages(len(v.Filtered), v.PageSize) }

// Current returns the visible page.
func (v View) Current() Page {
	p, err := Paginate(v.Filtered, v.Page, v.PageSize)
	if err != nil {
		p, _ = Paginate(v.Filtered, 0, max(v.PageSize, 1))
	}
	return p
}

// Visible returns the records on the current page.
func (v View) Visible() []Record { return v.Current().Visible }
