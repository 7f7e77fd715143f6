package accounts_test

import (
	"context"
	"testing"

	accounts "github.com/goliatone/go-accounts"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestActivitySinkFuncNilIsSafe(t *testing.T) {
	var sink accounts.ActivitySinkFunc
	err := sink.Record(context.Background(), accounts.ActivityEvent{})
	assert.NoError(t, err)
}

func TestLoginRecordsSuccessActivity(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	tokens := testTokenService()

	user := testUser(t, "password123")
	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()

	var recorded []accounts.ActivityEvent
	sink := accounts.ActivitySinkFunc(func(ctx context.Context, event accounts.ActivityEvent) error {
		recorded = append(recorded, event)
		return nil
	})

	handler := accounts.NewLoginUserHandler(repo, tokens).
		WithActivitySink(sink).
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), accounts.LoginUserMessage{
		Email:    user.Email,
		Password: "password123",
	})
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, accounts.ActivityEventLoginSuccess, recorded[0].EventType)
	assert.Equal(t, user.ID.String(), recorded[0].UserID)
	assert.Equal(t, "user", recorded[0].Actor.Type)
	assert.False(t, recorded[0].OccurredAt.IsZero())
}

func TestLoginRecordsFailureActivity(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	tokens := testTokenService()

	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, "ghost@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()

	var recorded []accounts.ActivityEvent
	sink := accounts.ActivitySinkFunc(func(ctx context.Context, event accounts.ActivityEvent) error {
		recorded = append(recorded, event)
		return nil
	})

	handler := accounts.NewLoginUserHandler(repo, tokens).
		WithActivitySink(sink).
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), accounts.LoginUserMessage{
		Email:    "ghost@example.com",
		Password: "whatever1",
	})
	require.Error(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, accounts.ActivityEventLoginFailure, recorded[0].EventType)
	assert.Equal(t, "ghost@example.com", recorded[0].Metadata["email"])
}

func TestRegistrationRecordsActivityAndDeliversResponse(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}

	repo.On("Users").Return(users)
	expectTx(repo).Once()

	users.On("GetByEmailTx", mock.Anything, mock.Anything, "jane@example.com").
		Return(nil, repository.NewRecordNotFound()).Once()
	users.On("CreateTx", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, nil).Once()

	var recorded []accounts.ActivityEvent
	sink := accounts.ActivitySinkFunc(func(ctx context.Context, event accounts.ActivityEvent) error {
		recorded = append(recorded, event)
		return nil
	})

	handler := accounts.NewRegisterUserHandler(repo, testTokenService(), testConfig()).
		WithActivitySink(sink).
		WithLogger(testLogger{})

	var res *accounts.RegisterUserResponse
	err := handler.Execute(context.Background(), accounts.RegisterUserMessage{
		Email:    "jane@example.com",
		Name:     "Jane Rone",
		Password: "secret-password",
		OnResponse: func(r *accounts.RegisterUserResponse) {
			res = r
		},
	})
	require.NoError(t, err)

	require.Len(t, recorded, 1)
	assert.Equal(t, accounts.ActivityEventUserRegistered, recorded[0].EventType)

	// the event emitted through the sink must not displace the caller's message
	require.NotNil(t, res)
	assert.Equal(t, "jane@example.com", res.User.Email)
	assert.Equal(t, res.User.ID, recorded[0].UserID)
}

func TestSinkErrorsDoNotFailTheOperation(t *testing.T) {
	repo := &MockRepositoryManager{}
	users := &MockUsers{}
	tokens := testTokenService()

	user := testUser(t, "password123")
	repo.On("Users").Return(users)
	users.On("GetByEmail", mock.Anything, user.Email).Return(user, nil).Once()

	sink := accounts.ActivitySinkFunc(func(ctx context.Context, event accounts.ActivityEvent) error {
		return assert.AnError
	})

	handler := accounts.NewLoginUserHandler(repo, tokens).
		WithActivitySink(sink).
		WithLogger(testLogger{})

	err := handler.Execute(context.Background(), accounts.LoginUserMessage{
		Email:    user.Email,
		Password: "password123",
	})
	assert.NoError(t, err)
}
