// internal/app/system/paging/paging.go
package paging

import (
	"net/http"
	"strconv"
)

// PageSize is the number of rows requested per page from the backend.
const PageSize = 5

// ParsePage extracts the 1-indexed "page" query parameter.
// Returns 1 if not present or invalid.
func ParsePage(r *http.Request) int {
	s := r.URL.Query().Get("page")
	if s == "" {
		return 1
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// Window is the skip/limit pair sent to a listing endpoint.
type Window struct {
	Skip  int
	Limit int
}

// WindowFor returns the backend window for a 1-indexed page.
func WindowFor(page int) Window {
	if page < 1 {
		page = 1
	}
	return Window{Skip: (page - 1) * PageSize, Limit: PageSize}
}

// Result holds the navigation state for one rendered page.
//
// The backend count is not trusted for the "next" decision: a full page
// means there may be more rows, a short page means there are not.
type Result struct {
	Page     int
	HasPrev  bool
	HasNext  bool
	PrevPage int
	NextPage int
	Start    int // 1-based index of the first row shown (0 if none)
	End      int // 1-based index of the last row shown (0 if none)
}

// Compute calculates navigation for page given the number of rows shown.
func Compute(page, shown int) Result {
	if page < 1 {
		page = 1
	}
	res := Result{
		Page:     page,
		HasPrev:  page > 1,
		HasNext:  shown == PageSize,
		PrevPage: max(page-1, 1),
		NextPage: page + 1,
	}
	if shown > 0 {
		res.Start = (page-1)*PageSize + 1
		res.End = res.Start + shown - 1
	}
	return res
}

// Pager is the data for the pagination partial: a Result plus the fragment
// URL its buttons fetch and the element they swap.
type Pager struct {
	Result
	Base   string
	Target string
}

// Link binds r to a fragment endpoint for rendering.
func (r Result) Link(base, target string) Pager {
	return Pager{Result: r, Base: base, Target: target}
}

// Skeleton is the placeholder shown while a list fragment loads. Rows and
// Cols exist only to be ranged over.
type Skeleton struct {
	Rows []struct{}
	Cols []struct{}
}

// NewSkeleton returns a placeholder of one page of rows with cols cells.
func NewSkeleton(cols int) Skeleton {
	return Skeleton{Rows: make([]struct{}, PageSize), Cols: make([]struct{}, cols)}
}
