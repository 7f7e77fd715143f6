package accounts_test

import (
	"context"
	"testing"
	"time"

	accounts "github.com/goliatone/go-accounts"
	goerrors "github.com/goliatone/go-errors"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestDirectoryGetUserProjection(t *testing.T) {
	users := &MockUsers{}

	user := testUser(t, "secret-password")

	users.On("GetByID", mock.Anything, user.ID.String()).
		Return(user, nil).Once()

	dir := accounts.NewDirectoryQuery(users)

	profile, err := dir.GetUser(context.Background(), user.ID.String())
	require.NoError(t, err)

	assert.Equal(t, user.ID.String(), profile.ID)
	assert.Equal(t, user.Email, profile.Email)
	assert.Equal(t, user.Name, profile.Name)
}

func TestDirectoryGetUserNotFound(t *testing.T) {
	users := &MockUsers{}

	missing := uuid.New()
	users.On("GetByID", mock.Anything, missing.String()).
		Return(nil, repository.NewRecordNotFound()).Once()

	dir := accounts.NewDirectoryQuery(users)

	_, err := dir.GetUser(context.Background(), missing.String())

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, accounts.TextCodeUserNotFound, richErr.TextCode)
}

func TestDirectoryGetUserBadID(t *testing.T) {
	users := &MockUsers{}
	dir := accounts.NewDirectoryQuery(users)

	_, err := dir.GetUser(context.Background(), "not-a-uuid")

	var richErr *goerrors.Error
	require.ErrorAs(t, err, &richErr)
	assert.Equal(t, accounts.TextCodeUserNotFound, richErr.TextCode)

	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestDirectoryListUsersPagination(t *testing.T) {
	users := &MockUsers{}

	now := time.Now()
	page2 := make([]accounts.User, 0, 10)
	for i := 0; i < 10; i++ {
		page2 = append(page2, accounts.User{
			ID:        uuid.New(),
			Name:      "User",
			Email:     "user@example.com",
			Available: true,
			CreatedAt: &now,
		})
	}

	users.On("CountAvailable", mock.Anything).Return(25, nil).Once()
	users.On("ListAvailable", mock.Anything, 10, 10).Return(page2, nil).Once()

	dir := accounts.NewDirectoryQuery(users)

	res, err := dir.ListUsers(context.Background(), 2, 10)
	require.NoError(t, err)

	assert.Len(t, res.Data, 10)
	assert.Equal(t, 25, res.Meta.Total)
	assert.Equal(t, 2, res.Meta.Page)
	assert.Equal(t, 3, res.Meta.LastPage)

	users.AssertExpectations(t)
}

func TestDirectoryListUsersZeroLimit(t *testing.T) {
	users := &MockUsers{}

	users.On("CountAvailable", mock.Anything).Return(25, nil).Once()
	users.On("ListAvailable", mock.Anything, 0, 0).Return([]accounts.User{}, nil).Once()

	dir := accounts.NewDirectoryQuery(users)

	res, err := dir.ListUsers(context.Background(), 1, 0)
	require.NoError(t, err)

	assert.Empty(t, res.Data)
	assert.Equal(t, 0, res.Meta.LastPage)
}

func TestDirectoryListUsersDefaultsPage(t *testing.T) {
	users := &MockUsers{}

	users.On("CountAvailable", mock.Anything).Return(0, nil).Once()
	users.On("ListAvailable", mock.Anything, 0, 10).Return([]accounts.User{}, nil).Once()

	dir := accounts.NewDirectoryQuery(users)

	res, err := dir.ListUsers(context.Background(), -3, 10)
	require.NoError(t, err)

	assert.Equal(t, 1, res.Meta.Page)
	assert.Equal(t, 0, res.Meta.Total)
	assert.Empty(t, res.Data)
}
