package state

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/repository"
	"github.com/MihaiMalos/elearning-client/internal/session"
	apperrors "github.com/MihaiMalos/elearning-client/pkg/errors"
)

func TestAuthState_LoginSuccess(t *testing.T) {
	apiStub := &stubAuthAPI{
		login: func(username, password string) (string, string, error) {
			return "tok123", "bearer", nil
		},
		currentUser: func() (models.User, error) {
			return models.User{ID: 7, Username: "alice", Role: models.RoleStudent}, nil
		},
	}
	store := session.NewMemoryStore()
	holder := NewAuthState(repository.NewAuthRepository(apiStub, store))
	defer holder.Close()

	assert.False(t, holder.IsLoggedIn())

	holder.Login("alice", "secret123")

	assert.True(t, holder.IsLoggedIn())
	assert.Empty(t, holder.Err())
	assert.False(t, holder.IsLoading())

	user, ok := holder.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestAuthState_LoginFailure(t *testing.T) {
	apiStub := &stubAuthAPI{
		login: func(username, password string) (string, string, error) {
			return "", "", apperrors.NewHTTPError(401, "Incorrect username or password")
		},
	}
	store := session.NewMemoryStore()
	holder := NewAuthState(repository.NewAuthRepository(apiStub, store))
	defer holder.Close()

	holder.Login("alice", "wrong")

	assert.False(t, holder.IsLoggedIn())
	assert.Contains(t, holder.Err(), "Incorrect username or password")
	assert.Empty(t, store.Token())
}

func TestAuthState_LoginSucceedsWhenProfileFetchFails(t *testing.T) {
	apiStub := &stubAuthAPI{
		login: func(username, password string) (string, string, error) {
			return "tok123", "bearer", nil
		},
		currentUser: func() (models.User, error) {
			return models.User{}, apperrors.NewTransportError(errors.New("timeout"))
		},
	}
	store := session.NewMemoryStore()
	holder := NewAuthState(repository.NewAuthRepository(apiStub, store))
	defer holder.Close()

	holder.Login("alice", "secret123")

	assert.True(t, holder.IsLoggedIn(), "a profile hiccup must not undo a persisted login")
	assert.NotEmpty(t, holder.Err())
	_, ok := holder.CurrentUser()
	assert.False(t, ok)
}

func TestAuthState_RehydratedSessionStartsLoggedIn(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SaveToken("tok", "bearer"))

	apiStub := &stubAuthAPI{
		currentUser: func() (models.User, error) {
			return models.User{ID: 7, Username: "alice"}, nil
		},
	}
	holder := NewAuthState(repository.NewAuthRepository(apiStub, store))
	defer holder.Close()

	assert.True(t, holder.IsLoggedIn())

	holder.CheckLoginStatus()
	user, ok := holder.CurrentUser()
	require.True(t, ok)
	assert.Equal(t, "alice", user.Username)
}

func TestAuthState_Logout(t *testing.T) {
	store := session.NewMemoryStore()
	require.NoError(t, store.SaveToken("tok", "bearer"))

	holder := NewAuthState(repository.NewAuthRepository(&stubAuthAPI{}, store))
	defer holder.Close()

	holder.Logout()

	assert.False(t, holder.IsLoggedIn())
	assert.Empty(t, store.Token())
	_, ok := holder.CurrentUser()
	assert.False(t, ok)
}

func TestAuthState_OnChangeFires(t *testing.T) {
	apiStub := &stubAuthAPI{
		login: func(username, password string) (string, string, error) {
			return "tok", "bearer", nil
		},
		currentUser: func() (models.User, error) {
			return models.User{ID: 7}, nil
		},
	}
	holder := NewAuthState(repository.NewAuthRepository(apiStub, session.NewMemoryStore()))
	defer holder.Close()

	var fired int
	holder.SetOnChange(func() { fired++ })

	holder.Login("alice", "secret123")
	assert.GreaterOrEqual(t, fired, 2, "loading and completion must both notify")
}
