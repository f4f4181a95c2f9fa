// Package entityref names the record an action menu acts on.
//
// A Ref is one of UserRef, LabRef, ItemRef or MembershipRef. The set is
// closed: only this package can add cases, so every switch over a Ref is
// checked here once and handlers never branch on a loose "type" string.
package entityref

import (
	"errors"
	"fmt"
	"net/url"

	"github.com/dalemusser/labhub/internal/app/system/querycache"
)

// ErrMissingID is returned when a ref lacks an identifier it needs.
var ErrMissingID = errors.New("missing identifier")

// Ref identifies one record the console can edit or delete.
type Ref interface {
	// Kind is the lowercase noun used in messages, e.g. "item".
	Kind() string
	// Key is a stable string form, used to bind confirmation tokens.
	Key() string
	isRef()
}

// UserRef is a user account.
type UserRef struct{ UserID string }

// LabRef is a lab.
type LabRef struct{ LabID string }

// ItemRef is an item. Items are addressed through their lab.
type ItemRef struct{ LabID, ItemID string }

// MembershipRef is one user's membership in one lab.
type MembershipRef struct{ LabID, UserID string }

func (UserRef) isRef()       {}
func (LabRef) isRef()        {}
func (ItemRef) isRef()       {}
func (MembershipRef) isRef() {}

func (UserRef) Kind() string       { return "user" }
func (LabRef) Kind() string        { return "lab" }
func (ItemRef) Kind() string       { return "item" }
func (MembershipRef) Kind() string { return "membership" }

func (r UserRef) Key() string       { return "user:" + r.UserID }
func (r LabRef) Key() string        { return "lab:" + r.LabID }
func (r ItemRef) Key() string       { return "item:" + r.LabID + "/" + r.ItemID }
func (r MembershipRef) Key() string { return "membership:" + r.LabID + "/" + r.UserID }

func missing(kind, field string) error {
	return fmt.Errorf("%s: %w %s", kind, ErrMissingID, field)
}

// Validate reports the first identifier r is missing.
func Validate(r Ref) error {
	switch r := r.(type) {
	case UserRef:
		if r.UserID == "" {
			return missing("user", "user_id")
		}
	case LabRef:
		if r.LabID == "" {
			return missing("lab", "lab_id")
		}
	case ItemRef:
		if r.LabID == "" {
			return missing("item", "lab_id")
		}
		if r.ItemID == "" {
			return missing("item", "item_id")
		}
	case MembershipRef:
		if r.LabID == "" {
			return missing("membership", "lab_id")
		}
		if r.UserID == "" {
			return missing("membership", "user_id")
		}
	case nil:
		return fmt.Errorf("%w: nil ref", ErrMissingID)
	}
	return nil
}

// Collections lists the cached entities a mutation of r makes stale.
// Deleting a user removes the items and memberships that hang off them;
// deleting a lab removes its items and memberships.
func Collections(r Ref) []querycache.Entity {
	switch r.(type) {
	case UserRef:
		return []querycache.Entity{querycache.Users, querycache.Items, querycache.Members}
	case LabRef:
		return []querycache.Entity{querycache.Labs, querycache.Items, querycache.Members}
	case ItemRef:
		return []querycache.Entity{querycache.Items}
	case MembershipRef:
		return []querycache.Entity{querycache.Members}
	}
	return nil
}

// Label is the heading of the confirmation dialog, e.g. "Delete Item".
func Label(r Ref) string {
	switch r.(type) {
	case UserRef:
		return "Delete User"
	case LabRef:
		return "Delete Lab"
	case ItemRef:
		return "Delete Item"
	case MembershipRef:
		return "Edit Permissions"
	}
	return ""
}

// DeleteWarning is shown in bold above the confirmation prompt.
// Only user deletion cascades visibly.
func DeleteWarning(r Ref) string {
	if _, ok := r.(UserRef); ok {
		return "All items associated with this user will also be permanently deleted."
	}
	return ""
}

// CanDelete reports whether the backend exposes a delete for r.
func CanDelete(r Ref) bool {
	_, isMembership := r.(MembershipRef)
	return !isMembership
}

// EditURL is the modal route for editing r.
func EditURL(r Ref) string {
	switch r := r.(type) {
	case UserRef:
		return "/users/" + url.PathEscape(r.UserID) + "/edit"
	case LabRef:
		return "/labs/" + url.PathEscape(r.LabID) + "/edit"
	case ItemRef:
		return "/labs/" + url.PathEscape(r.LabID) + "/items/" + url.PathEscape(r.ItemID) + "/edit"
	case MembershipRef:
		return "/labs/" + url.PathEscape(r.LabID) + "/users/" + url.PathEscape(r.UserID) + "/edit"
	}
	return ""
}

// DeleteURL is the route that confirms (GET) and performs (POST) the delete.
// Empty when CanDelete is false.
func DeleteURL(r Ref) string {
	switch r := r.(type) {
	case UserRef:
		return "/users/" + url.PathEscape(r.UserID) + "/delete"
	case LabRef:
		return "/labs/" + url.PathEscape(r.LabID) + "/delete"
	case ItemRef:
		return "/labs/" + url.PathEscape(r.LabID) + "/items/" + url.PathEscape(r.ItemID) + "/delete"
	}
	return ""
}

// ListURL is where the user lands after a successful delete.
func ListURL(r Ref) string {
	switch r := r.(type) {
	case UserRef:
		return "/users"
	case LabRef:
		return "/labs"
	case ItemRef:
		return "/labs/" + url.PathEscape(r.LabID) + "/items"
	case MembershipRef:
		return "/labs/" + url.PathEscape(r.LabID) + "/users"
	}
	return "/"
}

// Menu is what the action menu template needs for one row or card.
type Menu struct {
	EditURL   string
	EditLabel string
	DeleteURL string // empty hides the delete entry
}

// MenuFor builds the action menu for r.
func MenuFor(r Ref) Menu {
	m := Menu{EditURL: EditURL(r), DeleteURL: DeleteURL(r)}
	switch r.(type) {
	case UserRef:
		m.EditLabel = "Edit User"
	case LabRef:
		m.EditLabel = "Edit Lab"
	case ItemRef:
		m.EditLabel = "Edit Item"
	case MembershipRef:
		m.EditLabel = "Edit Permissions"
	}
	return m
}
