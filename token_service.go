package accounts

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// TokenService issues and verifies the two token flavors. The service itself
// is purpose-agnostic; purpose checking belongs to the consuming operation.
type TokenService interface {
	GenerateSession(user *User) (string, error)
	MintPurposeToken(userID string, purpose TokenPurpose) (string, error)
	SignClaims(claims *AccountClaims) (string, error)
	Validate(tokenString string) (*AccountClaims, error)
}

// TokenServiceImpl implements the TokenService interface
type TokenServiceImpl struct {
	signingKey        []byte
	sessionExpiration int
	purposeExpiration int
	issuer            string
	audience          jwt.ClaimStrings
	logger            Logger
}

// NewTokenService creates a new TokenService instance
func NewTokenService(cfg Config, logger Logger) TokenService {
	if logger == nil {
		logger = defLogger{}
	}
	return &TokenServiceImpl{
		signingKey:        []byte(cfg.GetSigningKey()),
		sessionExpiration: cfg.GetTokenExpiration(),
		purposeExpiration: cfg.GetPurposeTokenExpiration(),
		issuer:            cfg.GetIssuer(),
		audience:          jwt.ClaimStrings(cfg.GetAudience()),
		logger:            logger,
	}
}

// GenerateSession signs a session token carrying the sanitized user
func (ts *TokenServiceImpl) GenerateSession(user *User) (string, error) {
	if user == nil {
		return "", errors.New("user must not be nil", errors.CategoryInternal)
	}

	claims := SessionClaims(user)
	ts.stampClaims(claims, time.Duration(ts.sessionExpiration)*time.Hour)

	return ts.SignClaims(claims)
}

// MintPurposeToken signs a short-lived {userId, purpose} token
func (ts *TokenServiceImpl) MintPurposeToken(userID string, purpose TokenPurpose) (string, error) {
	claims := PurposeClaims(userID, purpose)
	ts.stampClaims(claims, time.Duration(ts.purposeExpiration)*time.Hour)

	return ts.SignClaims(claims)
}

// SignClaims signs arbitrary claims using the configured signing key. The
// claim set keeps whatever iat/exp it already carries; use GenerateSession or
// MintPurposeToken for stamped tokens.
func (ts *TokenServiceImpl) SignClaims(claims *AccountClaims) (string, error) {
	if claims == nil {
		return "", errors.New("claims must not be nil", errors.CategoryInternal)
	}

	if claims.RegisteredClaims.IssuedAt == nil {
		ts.stampClaims(claims, time.Duration(ts.sessionExpiration)*time.Hour)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign token")
	}

	return signedString, nil
}

// Validate parses and verifies a token string. Any failure, expired, bad
// signature, or malformed input, collapses into ErrInvalidToken so the error
// alone never works as an oracle. The cause is logged.
func (ts *TokenServiceImpl) Validate(tokenString string) (*AccountClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 2)
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}
	if len(ts.audience) > 0 {
		parserOptions = append(parserOptions, jwt.WithAudience(ts.audience...))
	}

	token, err := jwt.ParseWithClaims(tokenString, &AccountClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService validate encountered unexpected signing method: %v", t.Header["alg"])
			return nil, errors.New("unexpected signing method", errors.CategoryAuth)
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		ts.logger.Debug("TokenService validate failed: %v", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccountClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService validate could not decode claims")
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (ts *TokenServiceImpl) stampClaims(claims *AccountClaims, ttl time.Duration) {
	now := time.Now()

	var aud jwt.ClaimStrings
	if len(ts.audience) > 0 {
		aud = make(jwt.ClaimStrings, len(ts.audience))
		copy(aud, ts.audience)
	}

	claims.RegisteredClaims.Issuer = ts.issuer
	claims.RegisteredClaims.Audience = aud
	claims.RegisteredClaims.Subject = claims.UserID()
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.RegisteredClaims.ExpiresAt = jwt.NewNumericDate(now.Add(ttl))
}
