package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RegisterUserMessage struct {
	Email      string   `json:"email"`
	Name       string   `json:"name"`
	Password   string   `json:"password"`
	Role       UserRole `json:"role"`
	OnResponse func(r *RegisterUserResponse)
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// RegisterUserResponse carries the sanitized record and a fresh session
// token. Warning is set when the confirmation email could not be delivered;
// the account is still created.
type RegisterUserResponse struct {
	User    *PublicUser `json:"user"`
	Token   string      `json:"token"`
	Warning string      `json:"warning,omitempty"`
}

type RegisterUserHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	config   Config
	mailer   Mailer
	activity ActivitySink
	logger   Logger
}

// NewRegisterUserHandler creates a handler with sane defaults.
func NewRegisterUserHandler(repo RepositoryManager, tokens TokenService, config Config) *RegisterUserHandler {
	return &RegisterUserHandler{
		repo:     repo,
		tokens:   tokens,
		config:   config,
		mailer:   noopMailer{},
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit registration events.
func (h *RegisterUserHandler) WithActivitySink(sink ActivitySink) *RegisterUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithMailer sets the mailer used to deliver the confirmation link.
func (h *RegisterUserHandler) WithMailer(mailer Mailer) *RegisterUserHandler {
	h.mailer = normalizeMailer(mailer)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *RegisterUserHandler) WithLogger(logger Logger) *RegisterUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *RegisterUserHandler) Execute(ctx context.Context, event RegisterUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user registration",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RegisterUserHandler) execute(ctx context.Context, event RegisterUserMessage) error {
	user := &User{}
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	role := event.Role
	if role == "" {
		role = RoleMember
	}

	if !role.IsValid() {
		return goerrors.New("invalid role provided", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest)
	}

	err := h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		// emails stay unique across soft-deleted rows
		if _, err := h.repo.Users().GetByEmailTx(ctx, tx, event.Email); err == nil {
			return ErrEmailTaken
		} else if !repository.IsRecordNotFound(err) {
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
		}

		hash, err := HashPassword(event.Password)
		if err != nil {
			var richErr *goerrors.Error
			if goerrors.As(err, &richErr) {
				return richErr
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		user.ID = uuid.New()
		user.Email = event.Email
		user.Name = event.Name
		user.PasswordHash = hash
		user.Role = role
		user.Available = true

		if user, err = h.repo.Users().CreateTx(ctx, tx, user); err != nil {
			if IsUniqueViolationError(err) {
				return ErrEmailTaken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user registration transaction failed")
	}

	if err := h.activity.Record(ctx, selfActivity(ActivityEventUserRegistered, user.ID.String())); err != nil {
		h.logger.Warn("activity sink error during registration: %v", err)
	}

	resp := &RegisterUserResponse{User: user.Sanitize()}

	resp.Warning = h.sendConfirmation(ctx, user)

	token, err := h.tokens.GenerateSession(user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate session token")
	}
	resp.Token = token

	if event.OnResponse != nil {
		event.OnResponse(resp)
	}

	return nil
}

// sendConfirmation mints the confirmation token and delivers the link. A
// delivery failure does not undo the registration, it surfaces as a warning.
func (h *RegisterUserHandler) sendConfirmation(ctx context.Context, user *User) string {
	purposeToken, err := h.tokens.MintPurposeToken(user.ID.String(), PurposeConfirmAccount)
	if err != nil {
		h.logger.Error("failed to mint confirmation token for %s: %v", user.Email, err)
		return "confirmation email could not be sent"
	}

	link := ConfirmationLink(h.config.GetFrontendURL(), purposeToken)
	if err := h.mailer.SendConfirmationEmail(ctx, user.Email, link); err != nil {
		h.logger.Error("failed to send confirmation email to %s: %v", user.Email, err)
		return "confirmation email could not be sent"
	}

	return ""
}
