package repository

import (
	"context"
	"fmt"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/session"
	"github.com/MihaiMalos/elearning-client/pkg/logger"
	"github.com/MihaiMalos/elearning-client/pkg/metrics"
	"go.uber.org/zap"
)

// AuthRepository adapts the auth endpoints into error-returning
// operations and owns all writes to the session store.
type AuthRepository struct {
	api     AuthAPI
	session *session.Store
}

// NewAuthRepository creates an auth repository backed by the given API
// client and session store.
func NewAuthRepository(apiClient AuthAPI, sessionStore *session.Store) *AuthRepository {
	return &AuthRepository{
		api:     apiClient,
		session: sessionStore,
	}
}

// Login exchanges credentials for a token and persists it. Success is
// never reported before the token is durably stored, so a caller that
// sees nil can immediately rely on authenticated calls working.
//
// The follow-up identity fetch is best-effort: when it fails the
// session stays authenticated with identity unset and the failure is
// only logged. Rolling the token back over a profile read hiccup would
// log the user out for no good reason; identity is re-fetched on the
// next boot anyway.
func (r *AuthRepository) Login(ctx context.Context, username, password string) error {
	token, scheme, err := r.api.Login(ctx, username, password)
	if err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return err
	}
	if token == "" {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return fmt.Errorf("backend returned an empty access token")
	}

	if err := r.session.SaveToken(token, scheme); err != nil {
		metrics.LoginAttempts.WithLabelValues("error").Inc()
		return fmt.Errorf("failed to persist session: %w", err)
	}

	metrics.LoginAttempts.WithLabelValues("success").Inc()

	if user, err := r.api.CurrentUser(ctx); err != nil {
		logger.Warn("Logged in but identity fetch failed; continuing with identity unset",
			zap.String("username", username), zap.Error(err))
	} else if err := r.session.SaveIdentity(user.ID, user.Role); err != nil {
		logger.Warn("Failed to persist user identity", zap.Error(err))
	}

	return nil
}

// Register creates a new account. It does not log the account in; the
// caller follows up with Login.
func (r *AuthRepository) Register(ctx context.Context, req api.RegisterRequest) (models.User, error) {
	return r.api.Register(ctx, req)
}

// CurrentUser fetches the logged-in profile and refreshes the persisted
// identity, which is how a rehydrated session re-learns id and role.
func (r *AuthRepository) CurrentUser(ctx context.Context) (models.User, error) {
	user, err := r.api.CurrentUser(ctx)
	if err != nil {
		return models.User{}, err
	}
	if err := r.session.SaveIdentity(user.ID, user.Role); err != nil {
		logger.Warn("Failed to persist user identity", zap.Error(err))
	}
	return user, nil
}

// IsLoggedIn reports whether a non-empty token is stored. No network
// call; token validity is only discovered as a 401 at call time.
func (r *AuthRepository) IsLoggedIn() bool {
	return r.session.Token() != ""
}

// Logout wipes the session. Purely local and idempotent.
func (r *AuthRepository) Logout() error {
	return r.session.Clear()
}
