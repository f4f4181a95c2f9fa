// internal/domain/models/lab.go
package models

// LabPublic is a lab as returned by the backend. OwnerID is the user who
// created it.
type LabPublic struct {
	LabID         string  `json:"lab_id"`
	OwnerID       string  `json:"owner_id"`
	LabPlace      *string `json:"lab_place,omitempty"`
	LabUniversity *string `json:"lab_university,omitempty"`
	LabNum        *string `json:"lab_num,omitempty"`
}

// Title is the label used for a lab in headings and menus.
func (l LabPublic) Title() string {
	if l.LabPlace != nil && *l.LabPlace != "" {
		return *l.LabPlace
	}
	return l.LabID
}

// LabsPublic is one page of labs.
type LabsPublic struct {
	Data  []LabPublic `json:"data"`
	Count int         `json:"count"`
}

// LabCreate is the "create lab" body; the backend sets the owner.
type LabCreate struct {
	LabPlace      *string `json:"lab_place,omitempty"`
	LabUniversity *string `json:"lab_university,omitempty"`
	LabNum        *string `json:"lab_num,omitempty"`
}

// LabUpdate is the PUT body for a lab. The backend requires the identifiers
// to be echoed back. Like ItemUpdate, every field is sent so a blank
// string clears it.
type LabUpdate struct {
	LabID         string `json:"lab_id"`
	OwnerID       string `json:"owner_id"`
	LabPlace      string `json:"lab_place"`
	LabUniversity string `json:"lab_university"`
	LabNum        string `json:"lab_num"`
}
