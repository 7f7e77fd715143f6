package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type RetireUserMessage struct {
	UserID string `json:"user_id"`
}

func (e RetireUserMessage) Type() string { return "user.retire" }

// RetireUserHandler soft deletes an account. The row stays behind so the
// email can never be registered again; the user simply drops out of logins
// and listings.
type RetireUserHandler struct {
	repo     RepositoryManager
	activity ActivitySink
	logger   Logger
}

// NewRetireUserHandler creates a handler with sane defaults.
func NewRetireUserHandler(repo RepositoryManager) *RetireUserHandler {
	return &RetireUserHandler{
		repo:     repo,
		activity: noopActivitySink{},
		logger:   defLogger{},
	}
}

func (h *RetireUserHandler) WithActivitySink(sink ActivitySink) *RetireUserHandler {
	h.activity = normalizeActivitySink(sink)
	return h
}

func (h *RetireUserHandler) WithLogger(logger Logger) *RetireUserHandler {
	h.logger = logger
	return h
}

func (h *RetireUserHandler) Execute(ctx context.Context, event RetireUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user retirement",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *RetireUserHandler) execute(ctx context.Context, event RetireUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return ErrUserNotFound
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.repo.Users().RetireTx(ctx, tx, userID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retire user")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user retirement transaction failed")
	}

	if err := h.activity.Record(ctx, selfActivity(ActivityEventUserRetired, userID.String())); err != nil {
		h.logger.Warn("activity sink error during user retirement: %v", err)
	}

	return nil
}

type PurgeUserMessage struct {
	UserID string `json:"user_id"`
}

func (e PurgeUserMessage) Type() string { return "user.purge" }

// PurgeUserHandler removes the row outright. After a purge the email becomes
// registrable again; retire is the default removal path.
type PurgeUserHandler struct {
	repo RepositoryManager
}

func NewPurgeUserHandler(repo RepositoryManager) *PurgeUserHandler {
	return &PurgeUserHandler{repo: repo}
}

func (h *PurgeUserHandler) Execute(ctx context.Context, event PurgeUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user purge",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *PurgeUserHandler) execute(ctx context.Context, event PurgeUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return ErrUserNotFound
	}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := h.repo.Users().PurgeTx(ctx, tx, userID); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to purge user")
		}
		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user purge transaction failed")
	}

	return nil
}
