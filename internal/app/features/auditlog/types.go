// internal/app/features/auditlog/types.go
package auditlog

import (
	"html/template"
	"time"

	"github.com/dalemusser/labhub/internal/app/store/audit"
	"github.com/dalemusser/labhub/internal/app/system/viewdata"
)

// listItem is a single audit event row.
type listItem struct {
	Timestamp time.Time
	Category  string
	EventType string
	Actor     string
	Target    string
	LabID     string
	IP        string
	Success   bool
	Reason    string
	Details   map[string]string
}

type listData struct {
	viewdata.BaseVM

	// Disabled is set when events are not stored anywhere the console can
	// read them back.
	Disabled bool
	Items    []listItem

	// Filters
	Category  string
	EventType string
	LabID     string
	StartDate string
	EndDate   string
	Query     template.URL // the filters as a query string, for pagination links

	Categories []categoryOption
	EventTypes []string

	Page       int
	TotalPages int
	Total      int64
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

type categoryOption struct {
	Value string
	Label string
}

func allCategories() []categoryOption {
	return []categoryOption{
		{Value: audit.CategoryAuth, Label: "Authentication"},
		{Value: audit.CategoryAdmin, Label: "Changes"},
	}
}

// eventTypesForCategory returns the event types of one category, or all of
// them when category is empty.
func eventTypesForCategory(category string) []string {
	authEvents := []string{
		audit.EventLoginSuccess,
		audit.EventLoginFailed,
		audit.EventLogout,
		audit.EventSignup,
		audit.EventPasswordChanged,
		audit.EventPasswordRecoveryRequested,
		audit.EventPasswordReset,
		audit.EventSessionExpired,
	}

	adminEvents := []string{
		audit.EventUserCreated,
		audit.EventUserUpdated,
		audit.EventUserDeleted,
		audit.EventProfileUpdated,
		audit.EventAccountDeleted,
		audit.EventLabCreated,
		audit.EventLabUpdated,
		audit.EventLabDeleted,
		audit.EventItemCreated,
		audit.EventItemUpdated,
		audit.EventItemDeleted,
		audit.EventMemberAdded,
		audit.EventMemberPermissionsUpdated,
	}

	switch category {
	case audit.CategoryAuth:
		return authEvents
	case audit.CategoryAdmin:
		return adminEvents
	case "":
		all := make([]string, 0, len(authEvents)+len(adminEvents))
		all = append(all, authEvents...)
		return append(all, adminEvents...)
	default:
		return nil
	}
}
