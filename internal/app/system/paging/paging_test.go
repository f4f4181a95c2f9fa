package paging

import (
	"net/http/httptest"
	"testing"
)

func TestParsePage(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"missing", "", 1},
		{"valid", "?page=3", 3},
		{"zero", "?page=0", 1},
		{"negative", "?page=-2", 1},
		{"not a number", "?page=abc", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/labs"+tt.query, nil)
			if got := ParsePage(r); got != tt.want {
				t.Errorf("ParsePage(%q) = %d, want %d", tt.query, got, tt.want)
			}
		})
	}
}

func TestWindowFor(t *testing.T) {
	tests := []struct {
		page int
		want Window
	}{
		{1, Window{Skip: 0, Limit: PageSize}},
		{2, Window{Skip: PageSize, Limit: PageSize}},
		{4, Window{Skip: 3 * PageSize, Limit: PageSize}},
		{0, Window{Skip: 0, Limit: PageSize}},
	}
	for _, tt := range tests {
		if got := WindowFor(tt.page); got != tt.want {
			t.Errorf("WindowFor(%d) = %+v, want %+v", tt.page, got, tt.want)
		}
	}
}

func TestCompute(t *testing.T) {
	tests := []struct {
		name  string
		page  int
		shown int
		want  Result
	}{
		{
			name:  "first page full",
			page:  1,
			shown: PageSize,
			want:  Result{Page: 1, HasPrev: false, HasNext: true, PrevPage: 1, NextPage: 2, Start: 1, End: 5},
		},
		{
			name:  "second page short",
			page:  2,
			shown: 3,
			want:  Result{Page: 2, HasPrev: true, HasNext: false, PrevPage: 1, NextPage: 3, Start: 6, End: 8},
		},
		{
			name:  "empty first page",
			page:  1,
			shown: 0,
			want:  Result{Page: 1, PrevPage: 1, NextPage: 2},
		},
		{
			name:  "empty later page",
			page:  3,
			shown: 0,
			want:  Result{Page: 3, HasPrev: true, PrevPage: 2, NextPage: 4},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compute(tt.page, tt.shown); got != tt.want {
				t.Errorf("Compute(%d, %d) = %+v, want %+v", tt.page, tt.shown, got, tt.want)
			}
		})
	}
}

func TestLinkAndSkeleton(t *testing.T) {
	p := Compute(2, PageSize).Link("/labs/list", "#labs-list")
	if p.Base != "/labs/list" || p.Target != "#labs-list" || p.NextPage != 3 {
		t.Errorf("Link = %+v", p)
	}

	s := NewSkeleton(4)
	if len(s.Rows) != PageSize || len(s.Cols) != 4 {
		t.Errorf("NewSkeleton(4) = %d rows, %d cols", len(s.Rows), len(s.Cols))
	}
}
