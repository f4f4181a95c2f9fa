// internal/domain/models/user.go
package models

// UserPublic is a user record as returned by the backend.
//
// Deleting a user cascades to the items and labs they own; that rule lives
// in the backend and is only surfaced here as a warning in the UI.
type UserPublic struct {
	UserID      string  `json:"user_id"`
	Email       string  `json:"email"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
	FullName    *string `json:"full_name,omitempty"`
}

// DisplayName returns the full name when set, otherwise the email.
func (u UserPublic) DisplayName() string {
	if u.FullName != nil && *u.FullName != "" {
		return *u.FullName
	}
	return u.Email
}

// UsersPublic is one page of users.
type UsersPublic struct {
	Data  []UserPublic `json:"data"`
	Count int          `json:"count"`
}

// UserCreate is the admin "create user" body.
type UserCreate struct {
	Email       string  `json:"email"`
	Password    string  `json:"password"`
	FullName    *string `json:"full_name,omitempty"`
	IsActive    bool    `json:"is_active"`
	IsSuperuser bool    `json:"is_superuser"`
}

// UserRegister is the public signup body.
type UserRegister struct {
	Email    string  `json:"email"`
	Password string  `json:"password"`
	FullName *string `json:"full_name,omitempty"`
}

// UserUpdate is the admin PATCH body. Nil fields are left untouched.
type UserUpdate struct {
	Email       *string `json:"email,omitempty"`
	FullName    *string `json:"full_name,omitempty"`
	Password    *string `json:"password,omitempty"`
	IsActive    *bool   `json:"is_active,omitempty"`
	IsSuperuser *bool   `json:"is_superuser,omitempty"`
}

// UserUpdateMe is the self-service profile PATCH body.
type UserUpdateMe struct {
	Email    *string `json:"email,omitempty"`
	FullName *string `json:"full_name,omitempty"`
}

// UpdatePassword changes the caller's own password.
type UpdatePassword struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// NewPassword applies a password reset token.
type NewPassword struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}
