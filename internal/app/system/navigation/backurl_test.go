package navigation

import (
	"net/http/httptest"
	"testing"
)

func TestSafeBackURL(t *testing.T) {
	tests := []struct {
		name   string
		target string
		opts   BackURLOptions
		want   string
	}{
		{"no return", "/x", LabsBackURL, "/labs"},
		{"valid return", "/x?return=/labs?page=2", LabsBackURL, "/labs?page=2"},
		{"wrong prefix", "/x?return=/users", LabsBackURL, "/labs"},
		{"excluded subpath", "/x?return=/labs/L1/edit", LabsBackURL, "/labs"},
		{"open redirect", "/x?return=//evil.example", LabsBackURL, "/labs"},
		{"absolute url", "/x?return=https://evil.example/", LabsBackURL, "/labs"},
		{"no prefix rule", "/x?return=/profile", BackURLOptions{Fallback: "/"}, "/profile"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if got := SafeBackURL(r, tt.opts); got != tt.want {
				t.Errorf("SafeBackURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRedirect(t *testing.T) {
	r := httptest.NewRequest("POST", "/labs/L1/delete", nil)
	rec := httptest.NewRecorder()
	Redirect(rec, r, "/labs")
	if rec.Code != 303 || rec.Header().Get("Location") != "/labs" {
		t.Errorf("plain: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	r.Header.Set("HX-Request", "true")
	rec = httptest.NewRecorder()
	Redirect(rec, r, "/labs")
	if rec.Code != 204 || rec.Header().Get("HX-Redirect") != "/labs" {
		t.Errorf("htmx: code=%d hx-redirect=%q", rec.Code, rec.Header().Get("HX-Redirect"))
	}
}

func TestResolveBackURL(t *testing.T) {
	tests := []struct {
		name    string
		target  string
		referer string
		def     string
		want    string
	}{
		{"default", "/x", "", "/labs", "/labs"},
		{"return wins", "/x?return=/users", "http://example.com/labs", "/", "/users"},
		{"same host referer", "/x", "http://example.com/labs?page=3", "/", "/labs?page=3"},
		{"foreign referer", "/x", "http://evil.example/labs", "/", "/"},
		{"protocol relative return", "/x?return=//evil.example", "", "/labs", "/labs"},
		{"unsafe default", "/x", "", "//evil.example", "/"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.referer != "" {
				r.Header.Set("Referer", tt.referer)
			}
			if got := ResolveBackURL(r, tt.def); got != tt.want {
				t.Errorf("ResolveBackURL = %q, want %q", got, tt.want)
			}
		})
	}
}
