// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User roles, in increasing order of privilege.
const (
	RoleUser      = "user"
	RoleModerator = "moderator"
	RoleAdmin     = "admin"
)

// User represents a registered account on the Inkwell platform.
type User struct {
	ID                   uint       `gorm:"primaryKey" json:"id"`
	Username             string     `gorm:"unique;not null" json:"username"`
	Email                string     `gorm:"unique;not null" json:"email"`
	Password             string     `gorm:"not null" json:"-"`
	FirstName            string     `json:"first_name"`
	LastName             string     `json:"last_name"`
	Avatar               string     `json:"avatar"`
	Role                 string     `gorm:"not null;default:user" json:"role"`
	IsActive             bool       `gorm:"not null;default:true" json:"is_active"`
	LastLogin            *time.Time `json:"last_login,omitempty"`
	ResetPasswordToken   string     `json:"-"`
	ResetPasswordExpires *time.Time `json:"-"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
	Posts                []Post     `gorm:"foreignKey:AuthorID" json:"posts,omitempty"`
}

// CanModerate reports whether the user's role grants moderation capability.
func (u *User) CanModerate() bool {
	return u.Role == RoleModerator || u.Role == RoleAdmin
}
