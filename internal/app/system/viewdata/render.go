// internal/app/system/viewdata/render.go
package viewdata

import (
	"net/http"
	"strconv"

	"github.com/dalemusser/waffle/pantry/templates"
)

// RenderStatus writes a full page with a non-200 status.
func RenderStatus(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.Render(w, r, name, data)
}

// NotAvailable stands in for an unset optional value.
const NotAvailable = "N/A"

// OrNA returns s, or NotAvailable when s is empty.
func OrNA(s string) string {
	if s == "" {
		return NotAvailable
	}
	return s
}

// PtrOrNA is OrNA for optional strings.
func PtrOrNA(s *string) string {
	if s == nil {
		return NotAvailable
	}
	return OrNA(*s)
}

// IntOrNA formats an optional integer.
func IntOrNA(n *int) string {
	if n == nil {
		return NotAvailable
	}
	return strconv.Itoa(*n)
}
