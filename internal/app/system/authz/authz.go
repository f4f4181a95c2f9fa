// internal/app/system/authz/authz.go
package authz

import (
	"net/http"

	"github.com/dalemusser/labhub/internal/app/system/auth"
	"github.com/dalemusser/labhub/internal/domain/models"
)

// UserCtx returns the viewer's role, display name, backend user id and a
// found flag. Without a signed-in user it returns "visitor", "", "", false.
func UserCtx(r *http.Request) (role string, name string, userID string, ok bool) {
	user, ok := auth.CurrentUser(r)
	if !ok || user.ID == "" {
		return "visitor", "", "", false
	}
	name = user.Name
	if name == "" {
		name = user.Email
	}
	return user.Role(), name, user.ID, true
}

// IsSuperuser reports whether the current request's user is a superuser.
func IsSuperuser(r *http.Request) bool {
	user, ok := auth.CurrentUser(r)
	return ok && user.IsSuperuser
}

// LabAccess is what the viewer may do in one lab.
//
// Membership is the viewer's own membership in the lab, nil when they have
// none. The backend enforces all of this again; these checks only decide
// which controls are rendered.
type LabAccess struct {
	ViewerID    string
	IsSuperuser bool
	Lab         models.LabPublic
	Membership  *models.UserLabPublic
}

// NewLabAccess builds the access view for the current request's user.
func NewLabAccess(r *http.Request, lab models.LabPublic, membership *models.UserLabPublic) LabAccess {
	a := LabAccess{Lab: lab, Membership: membership}
	if u, ok := auth.CurrentUser(r); ok {
		a.ViewerID = u.ID
		a.IsSuperuser = u.IsSuperuser
	}
	return a
}

// IsOwner reports whether the viewer created the lab.
func (a LabAccess) IsOwner() bool {
	return a.ViewerID != "" && a.ViewerID == a.Lab.OwnerID
}

// Has reports whether the viewer's membership grants c.
func (a LabAccess) Has(c models.Capability) bool {
	return a.Membership != nil && a.Membership.Can(c)
}

// CanEditLab gates the lab's edit and delete actions.
func (a LabAccess) CanEditLab() bool {
	return a.IsSuperuser || a.IsOwner() || a.Has(models.CanEditLab)
}

// CanEditItems gates item create, edit and delete.
func (a LabAccess) CanEditItems() bool {
	return a.IsSuperuser || a.IsOwner() || a.Has(models.CanEditItems)
}

// CanAddMembers gates the "add user to lab" button.
func (a LabAccess) CanAddMembers() bool {
	return a.IsSuperuser || a.IsOwner() || a.Has(models.CanEditUsers)
}

// CanEditMemberCard gates the action menu on a member card. It depends on
// the viewer's own membership only: ownership and superuser status do not
// open it.
func CanEditMemberCard(viewerMembership *models.UserLabPublic) bool {
	return viewerMembership != nil && viewerMembership.CanEditUsers
}
