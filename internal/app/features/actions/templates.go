// internal/app/features/actions/templates.go
package actions

import (
	"embed"

	"github.com/dalemusser/waffle/pantry/templates"
)

//go:embed templates/*.gohtml
var FS embed.FS

func init() {
	templates.Register(templates.Set{
		Name:     "actions",
		FS:       FS,
		Patterns: []string{"templates/*.gohtml"},
	})
}
