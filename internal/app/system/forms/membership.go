package forms

import (
	"net/url"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// MembershipDraft backs the "add user to lab" modal.
type MembershipDraft struct {
	Email        string `form:"email" validate:"required,email,max=255" label:"Email"`
	CanEditLab   bool   `form:"can_edit_lab"`
	CanEditItems bool   `form:"can_edit_items"`
	CanEditUsers bool   `form:"can_edit_users"`
}

// FromForm reads the posted fields. Unchecked boxes are absent.
func (d *MembershipDraft) FromForm(v url.Values) {
	d.Email = text(v, "email")
	d.CanEditLab = checked(v, string(models.CanEditLab))
	d.CanEditItems = checked(v, string(models.CanEditItems))
	d.CanEditUsers = checked(v, string(models.CanEditUsers))
}

// Validate checks the draft before it is sent.
func (d MembershipDraft) Validate() FieldErrors { return validateStruct(d) }

// Body builds the add-users body for labID.
func (d MembershipDraft) Body(labID string) models.AddUsersToLab {
	return models.AddUsersToLab{
		Email:        d.Email,
		LabID:        labID,
		CanEditLab:   d.CanEditLab,
		CanEditItems: d.CanEditItems,
		CanEditUsers: d.CanEditUsers,
	}
}

// PermissionsDraft backs the "edit permissions" modal.
type PermissionsDraft struct {
	CanEditLab   bool `form:"can_edit_lab"`
	CanEditItems bool `form:"can_edit_items"`
	CanEditUsers bool `form:"can_edit_users"`
}

// PermissionsDraftFrom pre-populates the modal from a membership.
func PermissionsDraftFrom(m models.UserLabPublic) PermissionsDraft {
	return PermissionsDraft{
		CanEditLab:   m.CanEditLab,
		CanEditItems: m.CanEditItems,
		CanEditUsers: m.CanEditUsers,
	}
}

// FromForm reads the posted checkboxes.
func (d *PermissionsDraft) FromForm(v url.Values) {
	d.CanEditLab = checked(v, string(models.CanEditLab))
	d.CanEditItems = checked(v, string(models.CanEditItems))
	d.CanEditUsers = checked(v, string(models.CanEditUsers))
}

// Has reports whether the draft grants c, for rendering checkboxes.
func (d PermissionsDraft) Has(c models.Capability) bool {
	switch c {
	case models.CanEditLab:
		return d.CanEditLab
	case models.CanEditItems:
		return d.CanEditItems
	case models.CanEditUsers:
		return d.CanEditUsers
	}
	return false
}

// Equal reports whether nothing changed.
func (d PermissionsDraft) Equal(o PermissionsDraft) bool { return d == o }

// Body builds the update-user-permissions body.
func (d PermissionsDraft) Body() models.UpdateUserLab {
	return models.UpdateUserLab{
		CanEditLab:   d.CanEditLab,
		CanEditItems: d.CanEditItems,
		CanEditUsers: d.CanEditUsers,
	}
}
