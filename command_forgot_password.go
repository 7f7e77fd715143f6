package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// ForgotPasswordAck is the fixed acknowledgment returned for every forgot
// password request; it never reveals whether the email exists.
const ForgotPasswordAck = "if the email is registered, a password reset link has been sent"

type ForgotPasswordMessage struct {
	Email      string `json:"email"`
	OnResponse func(r *ForgotPasswordResponse)
}

func (e ForgotPasswordMessage) Type() string { return "user.password.forgot" }

type ForgotPasswordResponse struct {
	Message string `json:"message"`
}

type ForgotPasswordHandler struct {
	repo   RepositoryManager
	tokens TokenService
	config Config
	mailer Mailer
	logger Logger
}

// NewForgotPasswordHandler creates a handler with sane defaults.
func NewForgotPasswordHandler(repo RepositoryManager, tokens TokenService, config Config) *ForgotPasswordHandler {
	return &ForgotPasswordHandler{
		repo:   repo,
		tokens: tokens,
		config: config,
		mailer: noopMailer{},
		logger: defLogger{},
	}
}

// WithMailer sets the mailer used to deliver the reset link.
func (h *ForgotPasswordHandler) WithMailer(mailer Mailer) *ForgotPasswordHandler {
	h.mailer = normalizeMailer(mailer)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *ForgotPasswordHandler) WithLogger(logger Logger) *ForgotPasswordHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *ForgotPasswordHandler) Execute(ctx context.Context, event ForgotPasswordMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during password reset request",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *ForgotPasswordHandler) execute(ctx context.Context, event ForgotPasswordMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	// the acknowledgment is identical whether or not the email exists
	defer func() {
		if event.OnResponse != nil {
			event.OnResponse(&ForgotPasswordResponse{Message: ForgotPasswordAck})
		}
	}()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if !repository.IsRecordNotFound(err) {
			h.logger.Error("failed to look up user for password reset: %v", err)
		}
		return nil
	}

	if user.DeletedAt != nil {
		return nil
	}

	token, err := h.tokens.MintPurposeToken(user.ID.String(), PurposeResetPassword)
	if err != nil {
		h.logger.Error("failed to mint reset token for %s: %v", user.Email, err)
		return nil
	}

	link := PasswordResetLink(h.config.GetFrontendURL(), token)

	// delivery happens off the request path; failures are logged, never
	// surfaced to the caller
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second*30)
		defer cancel()

		if err := h.mailer.SendPasswordResetEmail(ctx, user.Email, link); err != nil {
			h.logger.Error("failed to send password reset email to %s: %v", user.Email, err)
		}
	}()

	return nil
}
