package accounts

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// UserRole is the user's role
type UserRole string

const (
	// RoleGuest is a guest role (ie. view)
	RoleGuest UserRole = "guest"
	// RoleMember is a member, the ordinary user role
	RoleMember UserRole = "member"
	// RoleAdmin is an admin role
	RoleAdmin UserRole = "admin"
	// RoleOwner is the owner role
	RoleOwner UserRole = "owner"
)

// User is the directory entry model. PasswordHash never leaves this package;
// every outward shape goes through Sanitize or one of the projections.
type User struct {
	bun.BaseModel     `bun:"table:users,alias:usr"`
	ID                uuid.UUID  `bun:"id,pk,nullzero,type:uuid" json:"id,omitempty"`
	Email             string     `bun:"email,notnull,unique" json:"email,omitempty"`
	Name              string     `bun:"name,notnull" json:"name,omitempty"`
	PasswordHash      string     `bun:"password_hash,notnull" json:"-"`
	Role              UserRole   `bun:"user_role,notnull" json:"user_role,omitempty"`
	Verified          bool       `bun:"verified" json:"verified"`
	Available         bool       `bun:"available" json:"available"`
	PasswordChangedAt *time.Time `bun:"password_changed_at,nullzero" json:"password_changed_at,omitempty"`
	CreatedAt         *time.Time `bun:"created_at,nullzero,default:current_timestamp" json:"created_at,omitempty"`
	UpdatedAt         *time.Time `bun:"updated_at,nullzero,default:current_timestamp" json:"updated_at,omitempty"`
	DeletedAt         *time.Time `bun:"deleted_at,soft_delete,nullzero" json:"deleted_at,omitempty"`
}

// Sanitize strips the credential hash before the record leaves the core
func (u *User) Sanitize() *PublicUser {
	if u == nil {
		return nil
	}

	return &PublicUser{
		ID:        u.ID.String(),
		Email:     u.Email,
		Name:      u.Name,
		Role:      u.Role,
		Verified:  u.Verified,
		Available: u.Available,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// PublicUser is the sanitized user record
type PublicUser struct {
	ID        string     `json:"id"`
	Email     string     `json:"email"`
	Name      string     `json:"name"`
	Role      UserRole   `json:"user_role"`
	Verified  bool       `json:"verified"`
	Available bool       `json:"available"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

// UserProfile is the narrow lookup projection
type UserProfile struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

// UserSummary is the listing projection
type UserSummary struct {
	Name      string     `json:"name"`
	Email     string     `json:"email"`
	Available bool       `json:"available"`
	CreatedAt *time.Time `json:"created_at,omitempty"`
}

// PageMeta describes a listing page
type PageMeta struct {
	Total    int `json:"total"`
	Page     int `json:"page"`
	LastPage int `json:"lastPage"`
}

// UserPage is one page of directory listings plus metadata
type UserPage struct {
	Data []UserSummary `json:"data"`
	Meta PageMeta      `json:"meta"`
}
