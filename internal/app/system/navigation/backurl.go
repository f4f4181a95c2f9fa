// Package navigation provides helpers for safe URL navigation and redirects.
package navigation

import (
	"net/http"
	"strings"

	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/waffle/pantry/httpnav"
)

// BackURLOptions configures the behavior of SafeBackURL.
type BackURLOptions struct {
	// AllowedPrefix is the required URL prefix (e.g., "/labs", "/users").
	// If empty, any safe URL is allowed.
	AllowedPrefix string

	// ExcludedSubpaths are subpath patterns to reject (e.g., "/edit", "/delete", "/new").
	// These prevent redirect loops back to action pages.
	ExcludedSubpaths []string

	// Fallback is the default URL if no valid return URL is found.
	Fallback string
}

// SafeBackURL extracts and validates a return URL from the request.
//
// It checks both the query parameter and form value for "return", rejects
// anything that is not a local path, optionally validates the prefix, and
// excludes specified subpaths to prevent redirect loops.
func SafeBackURL(r *http.Request, opts BackURLOptions) string {
	ret := auth.SafeReturn(strings.TrimSpace(r.URL.Query().Get("return")), "")
	if ret == "" {
		ret = auth.SafeReturn(strings.TrimSpace(r.FormValue("return")), "")
	}

	if ret != "" {
		valid := opts.AllowedPrefix == "" || strings.HasPrefix(ret, opts.AllowedPrefix)
		for _, excluded := range opts.ExcludedSubpaths {
			if strings.Contains(ret, excluded) {
				valid = false
				break
			}
		}
		if valid {
			return ret
		}
	}
	return opts.Fallback
}

// ResolveBackURL picks the back link for a page: the "return" query or
// form value, then a same-host Referer, then def. Protocol-relative and
// backslash paths are never returned.
func ResolveBackURL(r *http.Request, def string) string {
	def = auth.SafeReturn(def, "/")
	return auth.SafeReturn(httpnav.ResolveBackURL(r, def), def)
}

// CurrentPath is the request path with its query string.
func CurrentPath(r *http.Request) string {
	return httpnav.CurrentPath(r)
}

// IsHTMX reports whether the request was issued by htmx.
func IsHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// Redirect sends the browser to dest. htmx requests get an HX-Redirect
// header so the whole page navigates instead of swapping the response into
// the modal.
func Redirect(w http.ResponseWriter, r *http.Request, dest string) {
	if IsHTMX(r) {
		w.Header().Set("HX-Redirect", dest)
		w.WriteHeader(http.StatusNoContent)
		return
	}
	http.Redirect(w, r, dest, http.StatusSeeOther)
}

// Common back URL configurations for reuse across packages.
var (
	// UsersBackURL returns options for the user admin pages.
	UsersBackURL = BackURLOptions{
		AllowedPrefix:    "/users",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/users",
	}

	// LabsBackURL returns options for lab pages, including a lab's items
	// and members.
	LabsBackURL = BackURLOptions{
		AllowedPrefix:    "/labs",
		ExcludedSubpaths: []string{"/edit", "/delete", "/new"},
		Fallback:         "/labs",
	}
)
