package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenPurpose names the single operation a purpose token is valid for.
type TokenPurpose = string

const (
	// PurposeConfirmAccount marks a token usable only by ConfirmAccount.
	PurposeConfirmAccount TokenPurpose = "confirm-account"
	// PurposeResetPassword marks a token usable only by ResetPassword.
	PurposeResetPassword TokenPurpose = "reset-password"
)

// AccountClaims is the claim set for both token flavors. Session tokens carry
// the sanitized user fields and an empty Purpose; purpose tokens carry only
// UID and Purpose.
type AccountClaims struct {
	jwt.RegisteredClaims
	UID      string       `json:"uid,omitempty"`
	Email    string       `json:"email,omitempty"`
	Name     string       `json:"name,omitempty"`
	UserRole UserRole     `json:"role,omitempty"`
	Verified bool         `json:"verified,omitempty"`
	Purpose  TokenPurpose `json:"purpose,omitempty"`
}

// UserID returns the subject user id
func (c *AccountClaims) UserID() string {
	if c.UID != "" {
		return c.UID
	}
	return c.RegisteredClaims.Subject
}

// Role returns the subject's role
func (c *AccountClaims) Role() UserRole {
	return c.UserRole
}

// HasRole checks for an exact role match
func (c *AccountClaims) HasRole(role UserRole) bool {
	return c.UserRole == role
}

// IsAtLeast checks the subject's role against a minimum level
func (c *AccountClaims) IsAtLeast(minRole UserRole) bool {
	return c.UserRole.IsAtLeast(minRole)
}

// IsPurpose checks the purpose tag against an operation name
func (c *AccountClaims) IsPurpose(purpose TokenPurpose) bool {
	return c.Purpose != "" && c.Purpose == purpose
}

// Issued returns the issued-at time, zero when absent
func (c *AccountClaims) Issued() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}

// Expires returns the expiration time, zero when absent
func (c *AccountClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// StripStandard returns a copy with sub/iat/exp/iss/aud/jti removed, ready to
// be re-signed as a fresh session. Subject claims survive untouched.
func (c *AccountClaims) StripStandard() *AccountClaims {
	return &AccountClaims{
		UID:      c.UID,
		Email:    c.Email,
		Name:     c.Name,
		UserRole: c.UserRole,
		Verified: c.Verified,
		Purpose:  c.Purpose,
	}
}

// SessionClaims builds the session claim set from a sanitized user
func SessionClaims(user *User) *AccountClaims {
	return &AccountClaims{
		UID:      user.ID.String(),
		Email:    user.Email,
		Name:     user.Name,
		UserRole: user.Role,
		Verified: user.Verified,
	}
}

// PurposeClaims builds the narrow {userId, purpose} claim set
func PurposeClaims(userID string, purpose TokenPurpose) *AccountClaims {
	return &AccountClaims{
		UID:     userID,
		Purpose: purpose,
	}
}
