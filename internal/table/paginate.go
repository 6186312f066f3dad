package table

import (
	"fmt"
	"math"
	"sort"
)

// AllPages is the page sentinel meaning "unpaginated, show every row".
const AllPages = -1

// jumpOffsets are the page-link candidates relative to the current page.
var jumpOffsets = []int{-30, -2, -1, 0, 1, 2, 30}

// Page is one slice of a record set together with its position.
type Page struct {
	Number     int        `json:"number"`
	Size       int        `json:"size"`
	TotalPages int        `json:"total_pages"`
	Total      int        `json:"total"`
	First      int        `json:"first"` // zero-based index of the first visible row
	Last       int        `json:"last"`  // exclusive end
	Visible    []Record   `json:"-"`
	Window     PageWindow `json:"window,omitempty"`
}

// TotalPages returns ceil(n/size).
func TotalPages(n, size int) int {
	if size <= 0 || n <= 0 {
		return 0
	}
	return (n + size - 1) / size
}

// ValidPage reports whether page can be requested for n records. Page 0 is
// always valid so that an empty result still shows an (empty) first page.
func ValidPage(page, n, size int) bool {
	if page == AllPages {
		return true
	}
	if page < 0 {
		return false
	}
	return page == 0 || page < TotalPages(n, size)
}

// Paginate slices records to the given zero-based page. An invalid page
// returns ErrPageOutOfRange and a zero Page; callers keep their current page.
func Paginate(records []Record, page, size int) (Page, error) {
	if size <= 0 {
		return Page{}, &ConfigurationError{Field: "page_size", Reason: "must be greater than zero"}
	}
	if !ValidPage(page, len(records), size) {
		return Page{}, fmt.Errorf("%w: page %d of %d", ErrPageOutOfRange, page+1, TotalPages(len(records), size))
	}
	total := TotalPages(len(records), size)
	if page == AllPages {
		return Page{
			Number: AllPages, Size: size, TotalPages: total, Total: len(records),
			First: 0, Last: len(records), Visible: records,
		}, nil
	}
	first := min(page*size, len(records))
	last := min(len(records), (page+1)*size)
	return Page{
		Number: page, Size: size, TotalPages: total, Total: len(records),
		First: first, Last: last, Visible: records[first:last],
		Window: NewWindow(page, total),
	}, nil
}

// LinkKind distinguishes the previous/next sentinels from page links.
type LinkKind string

const (
	LinkPrev LinkKind = "prev"
	LinkPage LinkKind = "page"
	LinkNext LinkKind = "next"
)

// PageLink is one entry of a pager.
type PageLink struct {
	Kind     LinkKind `json:"kind"`
	Page     int      `json:"page"`
	Active   bool     `json:"active,omitempty"`
	Disabled bool     `json:"disabled,omitempty"`
	// GapBefore marks a collapsed range (ellipsis) before this link.
	GapBefore bool `json:"gap_before,omitempty"`
}

// Label is the 1-based page number, or an arrow for the sentinels.
func (l PageLink) Label() string {
	switch l.Kind {
	case LinkPrev:
		return "«"
	case LinkNext:
		return "»"
	}
	return fmt.Sprint(l.Page + 1)
}

// PageWindow is the ordered list of links shown in a pager.
type PageWindow []PageLink

// NewWindow builds the pager for page out of totalPages: a previous sentinel,
// the first and last page, the current page ±2 and ±30, then a next sentinel.
// The sentinels are always present and disabled when they point outside the
// valid range. Unpaginated views get an empty window.
func NewWindow(page, totalPages int) PageWindow {
	if page == AllPages {
		return nil
	}
	valid := func(p int) bool { return p >= 0 && p < totalPages }
	set := map[int]bool{}
	if totalPages > 0 {
		set[0] = true
		set[totalPages-1] = true
	}
	for _, off := range jumpOffsets {
		if p := page + off; valid(p) {
			set[p] = true
		}
	}
	pages := make([]int, 0, len(set))
	for p := range set {
		pages = append(pages, p)
	}
	sort.Ints(pages)

	w := make(PageWindow, 0, len(pages)+2)
	w = append(w, PageLink{Kind: LinkPrev, Page: page - 1, Disabled: !valid(page - 1)})
	for i, p := range pages {
		w = append(w, PageLink{
			Kind:      LinkPage,
			Page:      p,
			Active:    p == page,
			GapBefore: i > 0 && p-pages[i-1] > 1,
		})
	}
	w = append(w, PageLink{Kind: LinkNext, Page: page + 1, Disabled: !valid(page + 1)})
	return w
}

// Pages returns the page numbers of the non-sentinel links.
func (w PageWindow) Pages() []int {
	var out []int
	for _, l := range w {
		if l.Kind == LinkPage {
			out = append(out, l.Page)
		}
	}
	return out
}

// PageSizeFor derives rows per page from the available height and measured
// row heights: floor(available / weighted average height) - 1, at least 1.
func PageSizeFor(available float64, rowHeights []float64) int {
	if available <= 0 || len(rowHeights) == 0 {
		return 1
	}
	freq := map[float64]int{}
	for _, h := range rowHeights {
		if h > 0 {
			freq[h]++
		}
	}
	var sum float64
	var count int
	for h, n := range freq {
		sum += h * float64(n)
		count += n
	}
	if count == 0 {
		return 1
	}
	n := int(math.Floor(available/(sum/float64(count)))) - 1
	if n < 1 {
		return 1
	}
	return n
}
