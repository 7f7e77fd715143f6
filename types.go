package accounts

import (
	"context"
	"fmt"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the options shared by the token service and the mailer
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() int
	GetPurposeTokenExpiration() int
	GetIssuer() string
	GetAudience() []string
	GetFrontendURL() string
}

// Mailer delivers lifecycle notifications. Confirmation sends are awaited by
// the caller; reset sends are dispatched fire-and-forget.
type Mailer interface {
	SendConfirmationEmail(ctx context.Context, to, link string) error
	SendPasswordResetEmail(ctx context.Context, to, link string) error
}

// SimpleConfig satisfies Config with plain fields
type SimpleConfig struct {
	SigningKey             string
	TokenExpiration        int
	PurposeTokenExpiration int
	Issuer                 string
	Audience               []string
	FrontendURL            string
}

func (c SimpleConfig) GetSigningKey() string { return c.SigningKey }

func (c SimpleConfig) GetTokenExpiration() int {
	if c.TokenExpiration <= 0 {
		return SessionTokenExpirationHours
	}
	return c.TokenExpiration
}

func (c SimpleConfig) GetPurposeTokenExpiration() int {
	if c.PurposeTokenExpiration <= 0 {
		return PurposeTokenExpirationHours
	}
	return c.PurposeTokenExpiration
}

func (c SimpleConfig) GetIssuer() string { return c.Issuer }

func (c SimpleConfig) GetAudience() []string { return c.Audience }

func (c SimpleConfig) GetFrontendURL() string { return c.FrontendURL }

const (
	// SessionTokenExpirationHours is the default session token TTL.
	SessionTokenExpirationHours = 12
	// PurposeTokenExpirationHours is the default confirmation/reset token TTL.
	PurposeTokenExpirationHours = 1
)

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] ACCOUNTS "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] ACCOUNTS "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
