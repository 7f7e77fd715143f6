package accounts

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// DirectoryQuery answers read-only lookups over the user directory. Listings
// only ever see available accounts; retired and purged users are invisible.
type DirectoryQuery struct {
	users Users
}

func NewDirectoryQuery(users Users) *DirectoryQuery {
	return &DirectoryQuery{users: users}
}

// GetUser returns the narrow profile projection for one user
func (d *DirectoryQuery) GetUser(ctx context.Context, id string) (*UserProfile, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	user, err := d.users.GetByID(ctx, id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user")
	}

	return &UserProfile{
		ID:    user.ID.String(),
		Email: user.Email,
		Name:  user.Name,
	}, nil
}

// ListUsers returns one page of available users ordered by creation time.
// Page numbering starts at 1.
func (d *DirectoryQuery) ListUsers(ctx context.Context, page, limit int) (*UserPage, error) {
	if page < 1 {
		page = 1
	}

	total, err := d.users.CountAvailable(ctx)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to count users")
	}

	lastPage := 0
	if limit > 0 {
		lastPage = (total + limit - 1) / limit
	}

	skip := (page - 1) * limit

	records, err := d.users.ListAvailable(ctx, skip, limit)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to list users")
	}

	data := make([]UserSummary, 0, len(records))
	for _, u := range records {
		data = append(data, UserSummary{
			Name:      u.Name,
			Email:     u.Email,
			Available: u.Available,
			CreatedAt: u.CreatedAt,
		})
	}

	return &UserPage{
		Data: data,
		Meta: PageMeta{
			Total:    total,
			Page:     page,
			LastPage: lastPage,
		},
	}, nil
}
