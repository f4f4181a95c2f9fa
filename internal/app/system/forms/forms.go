// Package forms holds the drafts behind every create and edit modal.
//
// A draft is the trimmed text the user typed. It is parsed from the posted
// form, validated locally before anything is sent, compared against the
// original record to decide whether an edit changed anything, and finally
// converted to the backend request body.
package forms

import (
	"net/url"
	"strings"
)

// FieldErrors maps a form field name to its first error message.
type FieldErrors map[string]string

// Add records msg for field unless the field already has an error.
func (fe FieldErrors) Add(field, msg string) {
	if _, ok := fe[field]; ok {
		return
	}
	fe[field] = msg
}

// Merge adds every entry of other that fe does not already have.
// Used to fold backend 422 messages into the local result.
func (fe FieldErrors) Merge(other map[string]string) FieldErrors {
	if fe == nil {
		fe = FieldErrors{}
	}
	for k, v := range other {
		fe.Add(k, v)
	}
	return fe
}

// Get returns the message for field, or "".
func (fe FieldErrors) Get(field string) string { return fe[field] }

// Any reports whether there is at least one error.
func (fe FieldErrors) Any() bool { return len(fe) > 0 }

func text(v url.Values, name string) string {
	return strings.TrimSpace(v.Get(name))
}

func checked(v url.Values, name string) bool {
	switch strings.ToLower(v.Get(name)) {
	case "", "0", "false", "off":
		return false
	}
	return true
}

// optional returns nil for an empty string so PATCH/PUT bodies omit it.
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}
