// internal/domain/models/userlab.go
package models

import (
	"bytes"
	"encoding/json"
)

// Capability is one of the three independent edit rights a membership grants.
type Capability string

const (
	CanEditLab   Capability = "can_edit_lab"
	CanEditItems Capability = "can_edit_items"
	CanEditUsers Capability = "can_edit_users"
)

// Capabilities lists every capability in display order.
var Capabilities = []Capability{CanEditLab, CanEditItems, CanEditUsers}

// Label is the human-readable form of a capability.
func (c Capability) Label() string {
	switch c {
	case CanEditLab:
		return "Can Edit Lab"
	case CanEditItems:
		return "Can Edit Items"
	case CanEditUsers:
		return "Can Edit Users"
	}
	return string(c)
}

// UserLabPublic is the membership of one user in one lab.
// There is at most one record per (user_id, lab_id).
//
// Email and FullName are only present when the record comes from the lab
// member listing, which joins in the user.
type UserLabPublic struct {
	UserLabID    string  `json:"userlab_id"`
	UserID       string  `json:"user_id"`
	LabID        string  `json:"lab_id"`
	CanEditLab   bool    `json:"can_edit_lab"`
	CanEditItems bool    `json:"can_edit_items"`
	CanEditUsers bool    `json:"can_edit_users"`
	Email        string  `json:"email,omitempty"`
	FullName     *string `json:"full_name,omitempty"`
}

// Can reports whether the membership grants c.
func (m UserLabPublic) Can(c Capability) bool {
	switch c {
	case CanEditLab:
		return m.CanEditLab
	case CanEditItems:
		return m.CanEditItems
	case CanEditUsers:
		return m.CanEditUsers
	}
	return false
}

// DisplayName returns the member's full name, email, or user id.
func (m UserLabPublic) DisplayName() string {
	if m.FullName != nil && *m.FullName != "" {
		return *m.FullName
	}
	if m.Email != "" {
		return m.Email
	}
	return m.UserID
}

// UserLabsPublic is the lab member listing.
type UserLabsPublic struct {
	Data  []UserLabPublic `json:"data"`
	Count int             `json:"count"`
}

// UnmarshalJSON accepts both the paged {"data","count"} object and a bare
// array; the member listing has shipped in both shapes.
func (p *UserLabsPublic) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '[' {
		var rows []UserLabPublic
		if err := json.Unmarshal(b, &rows); err != nil {
			return err
		}
		p.Data = rows
		p.Count = len(rows)
		return nil
	}
	type plain UserLabsPublic
	var v plain
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	*p = UserLabsPublic(v)
	return nil
}

// AddUsersToLab adds an existing user to a lab by email.
type AddUsersToLab struct {
	Email        string `json:"email"`
	LabID        string `json:"lab_id"`
	CanEditLab   bool   `json:"can_edit_lab"`
	CanEditItems bool   `json:"can_edit_items"`
	CanEditUsers bool   `json:"can_edit_users"`
}

// UpdateUserLab replaces a member's capability flags.
type UpdateUserLab struct {
	CanEditLab   bool `json:"can_edit_lab"`
	CanEditItems bool `json:"can_edit_items"`
	CanEditUsers bool `json:"can_edit_users"`
}
