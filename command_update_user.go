package accounts

import (
	"context"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

type UpdateUserMessage struct {
	UserID     string  `json:"user_id"`
	Email      *string `json:"email"`
	Name       *string `json:"name"`
	Password   *string `json:"password"`
	OnResponse func(p *UserProfile)
}

func (e UpdateUserMessage) Type() string { return "user.update" }

// UpdateUserHandler applies a partial profile update. A password update goes
// through the same epoch bump as a reset, so outstanding reset tokens die
// with it.
type UpdateUserHandler struct {
	repo RepositoryManager
}

func NewUpdateUserHandler(repo RepositoryManager) *UpdateUserHandler {
	return &UpdateUserHandler{repo: repo}
}

func (h *UpdateUserHandler) Execute(ctx context.Context, event UpdateUserMessage) error {
	select {
	case <-ctx.Done():
		return goerrors.Wrap(
			ctx.Err(),
			goerrors.CategoryOperation,
			"context cancelled during user update",
		)
	default:
		return h.execute(ctx, event)
	}
}

func (h *UpdateUserHandler) execute(ctx context.Context, event UpdateUserMessage) error {
	ctx, cancel := context.WithTimeout(ctx, time.Second*10)
	defer cancel()

	userID, err := uuid.Parse(event.UserID)
	if err != nil {
		return ErrUserNotFound
	}

	user := &User{}

	err = h.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		user, err = h.repo.Users().GetByIDTx(ctx, tx, userID.String())
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrUserNotFound
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
		}

		if event.Email != nil && *event.Email != user.Email {
			if other, err := h.repo.Users().GetByEmailTx(ctx, tx, *event.Email); err == nil {
				if other.ID != user.ID {
					return ErrEmailTaken
				}
			} else if !repository.IsRecordNotFound(err) {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check for existing user")
			}
			user.Email = *event.Email
		}

		if event.Name != nil {
			user.Name = *event.Name
		}

		if user, err = h.repo.Users().UpdateTx(ctx, tx, user); err != nil {
			if IsUniqueViolationError(err) {
				return ErrEmailTaken
			}
			return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update user")
		}

		if event.Password != nil {
			hash, err := HashPassword(*event.Password)
			if err != nil {
				var richErr *goerrors.Error
				if goerrors.As(err, &richErr) {
					return richErr
				}
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
			}

			if err := h.repo.Users().SetPasswordTx(ctx, tx, userID, hash); err != nil {
				return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
			}
		}

		return nil
	})

	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return richErr
		}
		return goerrors.Wrap(err, goerrors.CategoryInternal, "user update transaction failed")
	}

	if event.OnResponse != nil {
		event.OnResponse(&UserProfile{
			ID:    user.ID.String(),
			Email: user.Email,
			Name:  user.Name,
		})
	}

	return nil
}
