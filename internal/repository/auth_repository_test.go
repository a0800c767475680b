package repository

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/session"
	apperrors "github.com/MihaiMalos/elearning-client/pkg/errors"
)

func TestAuthRepository_Login_PersistsTokenBeforeSuccess(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewMemoryStore()
	repo := NewAuthRepository(apiMock, store)

	apiMock.On("Login", mock.Anything, "alice", "secret123").Return("tok123", "bearer", nil)
	apiMock.On("CurrentUser", mock.Anything).Return(models.User{ID: 7, Username: "alice", Role: models.RoleStudent}, nil)

	require.NoError(t, repo.Login(context.Background(), "alice", "secret123"))

	assert.Equal(t, "tok123", store.Token())
	assert.Equal(t, "bearer", store.Scheme())

	userID, ok := store.UserID()
	require.True(t, ok)
	assert.Equal(t, 7, userID)

	role, ok := store.UserRole()
	require.True(t, ok)
	assert.Equal(t, models.RoleStudent, role)

	assert.True(t, repo.IsLoggedIn())
	apiMock.AssertExpectations(t)
}

func TestAuthRepository_Login_IdentityFetchFailureStillSucceeds(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewMemoryStore()
	repo := NewAuthRepository(apiMock, store)

	apiMock.On("Login", mock.Anything, "alice", "secret123").Return("tok123", "bearer", nil)
	apiMock.On("CurrentUser", mock.Anything).Return(models.User{}, apperrors.NewTransportError(errors.New("timeout")))

	require.NoError(t, repo.Login(context.Background(), "alice", "secret123"))

	assert.Equal(t, "tok123", store.Token())
	assert.True(t, repo.IsLoggedIn())

	_, ok := store.UserID()
	assert.False(t, ok, "identity stays unset when the profile fetch fails")
}

func TestAuthRepository_Login_APIErrorLeavesSessionEmpty(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewMemoryStore()
	repo := NewAuthRepository(apiMock, store)

	apiMock.On("Login", mock.Anything, "alice", "wrong").
		Return("", "", apperrors.NewHTTPError(401, "Incorrect username or password"))

	err := repo.Login(context.Background(), "alice", "wrong")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperrors.ErrUnauthorized)

	assert.Empty(t, store.Token())
	assert.False(t, repo.IsLoggedIn())
	apiMock.AssertNotCalled(t, "CurrentUser", mock.Anything)
}

func TestAuthRepository_Login_EmptyTokenIsAnError(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewMemoryStore()
	repo := NewAuthRepository(apiMock, store)

	apiMock.On("Login", mock.Anything, "alice", "secret123").Return("", "bearer", nil)

	require.Error(t, repo.Login(context.Background(), "alice", "secret123"))
	assert.Empty(t, store.Token())
}

func TestAuthRepository_CurrentUser_RefreshesIdentity(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewMemoryStore()
	require.NoError(t, store.SaveToken("tok", "bearer"))
	repo := NewAuthRepository(apiMock, store)

	apiMock.On("CurrentUser", mock.Anything).Return(models.User{ID: 3, Role: models.RoleTeacher}, nil)

	user, err := repo.CurrentUser(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, user.ID)

	role, ok := store.UserRole()
	require.True(t, ok)
	assert.Equal(t, models.RoleTeacher, role)
}

func TestAuthRepository_Logout_ClearsSession(t *testing.T) {
	apiMock := new(mockAuthAPI)
	store := session.NewMemoryStore()
	require.NoError(t, store.SaveToken("tok", "bearer"))
	require.NoError(t, store.SaveIdentity(7, models.RoleStudent))
	repo := NewAuthRepository(apiMock, store)

	require.NoError(t, repo.Logout())

	assert.False(t, repo.IsLoggedIn())
	_, ok := store.UserID()
	assert.False(t, ok)

	// Logout twice must not fail
	require.NoError(t, repo.Logout())
}
