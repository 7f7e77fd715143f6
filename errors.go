package accounts

import (
	"strings"

	"github.com/goliatone/go-errors"
)

const (
	TextCodeEmailTaken      = "EMAIL_TAKEN"
	TextCodeAlreadyVerified = "ALREADY_VERIFIED"
	TextCodeUserNotFound    = "USER_NOT_FOUND"
	TextCodeInvalidCreds    = "INVALID_CREDENTIALS"
	TextCodeInvalidToken    = "INVALID_TOKEN"
	TextCodeTokenSuperseded = "TOKEN_SUPERSEDED"
	TextCodeUnauthorized    = "UNAUTHORIZED"
	TextCodeSamePassword    = "SAME_PASSWORD"
	TextCodeEmptyPassword   = "EMPTY_PASSWORD"
)

// ErrEmailTaken is returned when a registration hits an existing email,
// soft-deleted rows included.
var ErrEmailTaken = errors.New("user already exists", errors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(errors.CodeConflict)

// ErrAlreadyVerified is returned on repeated account confirmation.
var ErrAlreadyVerified = errors.New("account already verified", errors.CategoryConflict).
	WithTextCode(TextCodeAlreadyVerified).
	WithCode(errors.CodeConflict)

// ErrUserNotFound is returned when the referenced user does not exist.
var ErrUserNotFound = errors.New("user not found", errors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(errors.CodeNotFound)

// ErrInvalidCredentials covers both a missing account and a failed password
// check; callers must not be able to tell which factor was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidToken covers bad signature, expiry, malformed input, and purpose
// mismatch; the cause is logged, never surfaced.
var ErrInvalidToken = errors.New("invalid or expired token", errors.CategoryValidation).
	WithTextCode(TextCodeInvalidToken).
	WithCode(errors.CodeBadRequest)

// ErrTokenSuperseded is returned when a reset token predates the credential
// epoch (password_changed_at).
var ErrTokenSuperseded = errors.New("token is no longer valid, the password has already been changed", errors.CategoryConflict).
	WithTextCode(TextCodeTokenSuperseded).
	WithCode(errors.CodeConflict)

// ErrUnauthorized is returned on session-token verification failure.
var ErrUnauthorized = errors.New("invalid token", errors.CategoryAuth).
	WithTextCode(TextCodeUnauthorized).
	WithCode(errors.CodeUnauthorized)

// ErrSamePassword rejects a password change to the identical value.
var ErrSamePassword = errors.New("new password must be different", errors.CategoryValidation).
	WithTextCode(TextCodeSamePassword).
	WithCode(errors.CodeBadRequest)

// ErrNoEmptyString rejects empty plaintext passwords before hashing.
var ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(errors.CodeBadRequest)

// IsUniqueViolationError checks a repository error for a uniqueness
// constraint violation. A race between the existence pre-check and the insert
// lands here, so both the sqlite and postgres driver messages are covered.
func IsUniqueViolationError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "unique constraint") ||
		strings.Contains(msg, "duplicate key value")
}

// ErrorStatus translates any error into the {statusCode, message} pair the
// gateway returns. Unrecognized errors map to an internal failure without
// leaking the underlying message.
func ErrorStatus(err error) (int, string) {
	var richErr *errors.Error
	if errors.As(err, &richErr) {
		code := richErr.Code
		if code == 0 {
			code = errors.CodeInternal
		}
		return code, richErr.Message
	}
	return errors.CodeInternal, "internal server error"
}
