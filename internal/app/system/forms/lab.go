package forms

import (
	"net/url"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// LabDraft backs the add and edit lab modals.
type LabDraft struct {
	LabPlace      string `form:"lab_place" validate:"required,max=255" label:"Place"`
	LabUniversity string `form:"lab_university" validate:"omitempty,max=255" label:"University"`
	LabNum        string `form:"lab_num" validate:"omitempty,max=255" label:"Lab Number"`
}

// LabDraftFrom pre-populates the edit modal.
func LabDraftFrom(l models.LabPublic) LabDraft {
	return LabDraft{
		LabPlace:      deref(l.LabPlace),
		LabUniversity: deref(l.LabUniversity),
		LabNum:        deref(l.LabNum),
	}
}

// FromForm reads the posted fields.
func (d *LabDraft) FromForm(v url.Values) {
	d.LabPlace = text(v, "lab_place")
	d.LabUniversity = text(v, "lab_university")
	d.LabNum = text(v, "lab_num")
}

// Validate checks the draft before it is sent.
func (d LabDraft) Validate() FieldErrors { return validateStruct(d) }

// Equal reports whether nothing changed.
func (d LabDraft) Equal(o LabDraft) bool { return d == o }

// Create builds the body for a new lab.
func (d LabDraft) Create() models.LabCreate {
	return models.LabCreate{
		LabPlace:      optional(d.LabPlace),
		LabUniversity: optional(d.LabUniversity),
		LabNum:        optional(d.LabNum),
	}
}

// Update builds the PUT body, echoing the lab's identifiers.
func (d LabDraft) Update(orig models.LabPublic) models.LabUpdate {
	return models.LabUpdate{
		LabID:         orig.LabID,
		OwnerID:       orig.OwnerID,
		LabPlace:      d.LabPlace,
		LabUniversity: d.LabUniversity,
		LabNum:        d.LabNum,
	}
}
