// internal/app/system/viewdata/viewdata.go
package viewdata

import (
	"html/template"
	"net/http"
	"sync"

	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/app/system/authz"
	"github.com/dalemusser/labhub/internal/app/system/navigation"
	"github.com/dalemusser/labhub/internal/domain/models"
	"github.com/gorilla/csrf"
)

// BaseVM contains common fields for all view models.
// Embed this struct in your feature-specific view models.
//
// Usage:
//
//	type myPageData struct {
//	    viewdata.BaseVM
//	    // page-specific fields...
//	}
//
//	data := myPageData{
//	    BaseVM: viewdata.NewBaseVM(w, r, "Page Title", "/default-back"),
//	    // page-specific fields...
//	}
type BaseVM struct {
	SiteName string

	// User context (from auth middleware)
	IsLoggedIn  bool
	IsSuperuser bool
	Role        string
	UserName    string

	// Page context
	Title       string
	BackURL     string
	CurrentPath string

	// CSRF protection
	CSRFToken string
	CSRFField template.HTML

	// Toasts queued by the previous request
	Flashes []auth.Flash
}

var (
	mu       sync.RWMutex
	siteName = models.DefaultSiteName
	sessions *auth.SessionManager
)

// Init sets the site name and the session manager used to pop flashes.
// Call this once at startup from bootstrap.
func Init(name string, sm *auth.SessionManager) {
	mu.Lock()
	defer mu.Unlock()
	if name != "" {
		siteName = name
	}
	sessions = sm
}

// NewBaseVM creates a fully populated BaseVM for a page.
//
// It consumes any pending flashes, so call it before writing to w and only
// for responses that will actually render them.
func NewBaseVM(w http.ResponseWriter, r *http.Request, title, backDefault string) BaseVM {
	role, name, _, signedIn := authz.UserCtx(r)

	mu.RLock()
	vm := BaseVM{
		SiteName:    siteName,
		IsLoggedIn:  signedIn,
		IsSuperuser: signedIn && role == auth.RoleSuperuser,
		Role:        role,
		UserName:    name,
		Title:       title,
		BackURL:     navigation.ResolveBackURL(r, backDefault),
		CurrentPath: navigation.CurrentPath(r),
		CSRFToken:   csrf.Token(r),
		CSRFField:   csrf.TemplateField(r),
	}
	sm := sessions
	mu.RUnlock()

	if sm != nil {
		vm.Flashes = sm.Flashes(w, r)
	}
	return vm
}

// Snippet is the base for HTMX fragments: no layout, just the CSRF token
// that modal forms post back.
type Snippet struct {
	CSRFToken string
	CSRFField template.HTML
}

// NewSnippet fills a Snippet from r.
func NewSnippet(r *http.Request) Snippet {
	return Snippet{CSRFToken: csrf.Token(r), CSRFField: csrf.TemplateField(r)}
}
