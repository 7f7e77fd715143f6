package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type RefreshTokenMessage struct {
	Token      string `json:"token"`
	OnResponse func(r *RefreshTokenResponse)
}

func (e RefreshTokenMessage) Type() string { return "token.refresh" }

type RefreshTokenResponse struct {
	Token string `json:"token"`
}

// RefreshTokenHandler verifies a session token and re-signs its subject
// claims with a fresh validity window. The user record is not consulted, so
// the claims are as stale as the original token.
type RefreshTokenHandler struct {
	tokens TokenService
}

func NewRefreshTokenHandler(tokens TokenService) *RefreshTokenHandler {
	return &RefreshTokenHandler{tokens: tokens}
}

func (h *RefreshTokenHandler) Execute(ctx context.Context, event RefreshTokenMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during token refresh",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RefreshTokenHandler) execute(_ context.Context, event RefreshTokenMessage) error {
	claims, err := h.tokens.Validate(event.Token)
	if err != nil {
		return ErrUnauthorized
	}

	// purpose tokens are single-operation, they never refresh
	if claims.Purpose != "" {
		return ErrUnauthorized
	}

	token, err := h.tokens.SignClaims(claims.StripStandard())
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to re-sign session token")
	}

	if event.OnResponse != nil {
		event.OnResponse(&RefreshTokenResponse{Token: token})
	}

	return nil
}
