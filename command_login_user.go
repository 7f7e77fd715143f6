package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

type LoginUserMessage struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	OnResponse func(r *LoginUserResponse)
}

func (e LoginUserMessage) Type() string { return "user.login" }

type LoginUserResponse struct {
	User  *PublicUser `json:"user"`
	Token string      `json:"token"`
}

type LoginUserHandler struct {
	repo     RepositoryManager
	tokens   TokenService
	activity ActivitySink
	logger   Logger
}

func NewLoginUserHandler(repo RepositoryManager, tokens TokenService) *LoginUserHandler {
	return &LoginUserHandler{
		repo:     repo,
		tokens:   tokens,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

// WithActivitySink sets the sink used to emit login events.
func (h *LoginUserHandler) WithActivitySink(sink ActivitySink) *LoginUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

// WithLogger overrides the logger used by the handler.
func (h *LoginUserHandler) WithLogger(logger Logger) *LoginUserHandler {
	if logger != nil {
		h.logger = logger
	}
	return h
}

func (h *LoginUserHandler) Execute(ctx context.Context, event LoginUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user login",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *LoginUserHandler) execute(ctx context.Context, event LoginUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	user, err := h.repo.Users().GetByEmail(ctx, event.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			// indistinguishable from a wrong password
			h.recordFailure(ctx, event.Email)
			return ErrInvalidCredentials
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	if user.DeletedAt != nil {
		h.recordFailure(ctx, event.Email)
		return ErrInvalidCredentials
	}

	if err := ComparePasswordAndHash(event.Password, user.PasswordHash); err != nil {
		h.recordFailure(ctx, event.Email)
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to compare password")
	}

	token, err := h.tokens.GenerateSession(user)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate session token")
	}

	if err := h.activity.Record(ctx, selfActivity(ActivityEventLoginSuccess, user.ID.String())); err != nil {
		h.logger.Warn("activity sink error during login: %v", err)
	}

	if event.OnResponse != nil {
		event.OnResponse(&LoginUserResponse{
			User:  user.Sanitize(),
			Token: token,
		})
	}

	return nil
}

// recordFailure emits a failed login event. The email is kept in metadata so
// operators can spot enumeration attempts without a user id.
func (h *LoginUserHandler) recordFailure(ctx context.Context, email string) {
	event := ActivityEvent{
		EventType:  ActivityEventLoginFailure,
		Actor:      ActorRef{ID: "anonymous", Type: "client"},
		Metadata:   map[string]any{"email": email},
		OccurredAt: time.Now(),
	}

	if err := h.activity.Record(ctx, event); err != nil {
		h.logger.Warn("activity sink error during login: %v", err)
	}
}
