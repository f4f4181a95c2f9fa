package forms

import (
	"net/url"

	"github.com/dalemusser/labhub/internal/domain/models"
)

// UserDraft backs the admin add and edit user modals. Password is required
// when creating and optional when editing.
type UserDraft struct {
	Email           string `form:"email" validate:"required,email,max=255" label:"Email"`
	FullName        string `form:"full_name" validate:"omitempty,max=255" label:"Full name"`
	Password        string `form:"password" validate:"omitempty,min=8,max=40" label:"Password"`
	ConfirmPassword string `form:"confirm_password" validate:"eqfield=Password" label:"Confirm Password"`
	IsSuperuser     bool   `form:"is_superuser"`
	IsActive        bool   `form:"is_active"`
}

// UserDraftFrom pre-populates the edit modal. Passwords start empty.
func UserDraftFrom(u models.UserPublic) UserDraft {
	return UserDraft{
		Email:       u.Email,
		FullName:    deref(u.FullName),
		IsSuperuser: u.IsSuperuser,
		IsActive:    u.IsActive,
	}
}

// FromForm reads the posted fields.
func (d *UserDraft) FromForm(v url.Values) {
	d.Email = text(v, "email")
	d.FullName = text(v, "full_name")
	d.Password = v.Get("password")
	d.ConfirmPassword = v.Get("confirm_password")
	d.IsSuperuser = checked(v, "is_superuser")
	d.IsActive = checked(v, "is_active")
}

// Validate checks an edit.
func (d UserDraft) Validate() FieldErrors { return validateStruct(d) }

// ValidateNew checks a create, which also needs a password.
func (d UserDraft) ValidateNew() FieldErrors {
	fe := validateStruct(d)
	if d.Password == "" {
		fe.Add("password", "Password is required.")
	}
	return fe
}

// Equal reports whether nothing changed. A typed password counts as a change.
func (d UserDraft) Equal(o UserDraft) bool { return d == o }

// Create builds the admin create body.
func (d UserDraft) Create() models.UserCreate {
	return models.UserCreate{
		Email:       d.Email,
		Password:    d.Password,
		FullName:    optional(d.FullName),
		IsActive:    d.IsActive,
		IsSuperuser: d.IsSuperuser,
	}
}

// Update builds the admin PATCH body.
func (d UserDraft) Update() models.UserUpdate {
	email, active, super := d.Email, d.IsActive, d.IsSuperuser
	full := d.FullName
	return models.UserUpdate{
		Email:       &email,
		FullName:    &full,
		Password:    optional(d.Password),
		IsActive:    &active,
		IsSuperuser: &super,
	}
}

// ProfileDraft backs the "my profile" form.
type ProfileDraft struct {
	FullName string `form:"full_name" validate:"omitempty,max=255" label:"Full name"`
	Email    string `form:"email" validate:"required,email,max=255" label:"Email"`
}

// ProfileDraftFrom pre-populates the profile form.
func ProfileDraftFrom(u models.UserPublic) ProfileDraft {
	return ProfileDraft{FullName: deref(u.FullName), Email: u.Email}
}

// FromForm reads the posted fields.
func (d *ProfileDraft) FromForm(v url.Values) {
	d.FullName = text(v, "full_name")
	d.Email = text(v, "email")
}

// Validate checks the draft before it is sent.
func (d ProfileDraft) Validate() FieldErrors { return validateStruct(d) }

// Equal reports whether nothing changed.
func (d ProfileDraft) Equal(o ProfileDraft) bool { return d == o }

// Update builds the PATCH me body.
func (d ProfileDraft) Update() models.UserUpdateMe {
	email, full := d.Email, d.FullName
	return models.UserUpdateMe{Email: &email, FullName: &full}
}

// PasswordDraft backs the change-password form.
type PasswordDraft struct {
	CurrentPassword string `form:"current_password" validate:"required,min=8,max=40" label:"Current Password"`
	NewPassword     string `form:"new_password" validate:"required,min=8,max=40" label:"New Password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword" label:"Confirm Password"`
}

// FromForm reads the posted fields. Passwords are not trimmed.
func (d *PasswordDraft) FromForm(v url.Values) {
	d.CurrentPassword = v.Get("current_password")
	d.NewPassword = v.Get("new_password")
	d.ConfirmPassword = v.Get("confirm_password")
}

// Validate checks the draft before it is sent.
func (d PasswordDraft) Validate() FieldErrors { return validateStruct(d) }

// Body builds the PATCH me/password body.
func (d PasswordDraft) Body() models.UpdatePassword {
	return models.UpdatePassword{CurrentPassword: d.CurrentPassword, NewPassword: d.NewPassword}
}

// SignupDraft backs the public signup page.
type SignupDraft struct {
	Email           string `form:"email" validate:"required,email,max=255" label:"Email"`
	FullName        string `form:"full_name" validate:"omitempty,max=255" label:"Full name"`
	Password        string `form:"password" validate:"required,min=8,max=40" label:"Password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=Password" label:"Confirm Password"`
}

// FromForm reads the posted fields.
func (d *SignupDraft) FromForm(v url.Values) {
	d.Email = text(v, "email")
	d.FullName = text(v, "full_name")
	d.Password = v.Get("password")
	d.ConfirmPassword = v.Get("confirm_password")
}

// Validate checks the draft before it is sent.
func (d SignupDraft) Validate() FieldErrors { return validateStruct(d) }

// Body builds the signup body.
func (d SignupDraft) Body() models.UserRegister {
	return models.UserRegister{Email: d.Email, Password: d.Password, FullName: optional(d.FullName)}
}

// LoginDraft backs the login page.
type LoginDraft struct {
	Username string `form:"username" validate:"required,email,max=255" label:"Email"`
	Password string `form:"password" validate:"required" label:"Password"`
}

// FromForm reads the posted fields.
func (d *LoginDraft) FromForm(v url.Values) {
	d.Username = text(v, "username")
	d.Password = v.Get("password")
}

// Validate checks the draft before it is sent.
func (d LoginDraft) Validate() FieldErrors { return validateStruct(d) }

// RecoverDraft backs the password-recovery page.
type RecoverDraft struct {
	Email string `form:"email" validate:"required,email,max=255" label:"Email"`
}

// FromForm reads the posted fields.
func (d *RecoverDraft) FromForm(v url.Values) { d.Email = text(v, "email") }

// Validate checks the draft before it is sent.
func (d RecoverDraft) Validate() FieldErrors { return validateStruct(d) }

// ResetPasswordDraft backs the reset-password page. Token comes from the
// link in the recovery email.
type ResetPasswordDraft struct {
	Token           string `form:"token" validate:"required" label:"Reset token"`
	NewPassword     string `form:"new_password" validate:"required,min=8,max=40" label:"New Password"`
	ConfirmPassword string `form:"confirm_password" validate:"required,eqfield=NewPassword" label:"Confirm Password"`
}

// FromForm reads the posted fields.
func (d *ResetPasswordDraft) FromForm(v url.Values) {
	d.Token = text(v, "token")
	d.NewPassword = v.Get("new_password")
	d.ConfirmPassword = v.Get("confirm_password")
}

// Validate checks the draft before it is sent.
func (d ResetPasswordDraft) Validate() FieldErrors { return validateStruct(d) }

// Body builds the reset-password body.
func (d ResetPasswordDraft) Body() models.NewPassword {
	return models.NewPassword{Token: d.Token, NewPassword: d.NewPassword}
}
