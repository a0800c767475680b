package state

import (
	"context"
	"sync"

	"github.com/MihaiMalos/elearning-client/internal/api"
	"github.com/MihaiMalos/elearning-client/internal/models"
	"github.com/MihaiMalos/elearning-client/internal/repository"
)

// AuthState is the observable state behind the login/profile screens.
// Methods are synchronous; screens run them on their own goroutine and
// read snapshots through the getters. Close abandons in-flight work
// when the screen goes away.
type AuthState struct {
	repo *repository.AuthRepository

	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	gen         int
	loggedIn    bool
	loading     bool
	errMsg      string
	currentUser *models.User
	onChange    func()
}

// NewAuthState creates the holder and derives the initial logged-in
// flag from the persisted session, before any network call.
func NewAuthState(repo *repository.AuthRepository) *AuthState {
	ctx, cancel := context.WithCancel(context.Background())
	s := &AuthState{
		repo:   repo,
		ctx:    ctx,
		cancel: cancel,
	}
	s.loggedIn = repo.IsLoggedIn()
	return s
}

// SetOnChange registers a callback invoked after every state change.
func (s *AuthState) SetOnChange(fn func()) {
	s.mu.Lock()
	s.onChange = fn
	s.mu.Unlock()
}

// Close abandons any in-flight operation; results arriving afterwards
// are discarded.
func (s *AuthState) Close() {
	s.cancel()
}

// CheckLoginStatus refreshes the profile for an already-persisted
// session (the boot path). An invalid or expired token surfaces as a
// 401 here and simply leaves the user unset.
func (s *AuthState) CheckLoginStatus() {
	if !s.repo.IsLoggedIn() {
		s.publish(func() {
			s.loggedIn = false
			s.currentUser = nil
		})
		return
	}

	gen := s.begin()
	user, err := s.repo.CurrentUser(s.ctx)
	s.finish(gen, func() {
		s.loggedIn = true
		if err == nil {
			s.currentUser = &user
		}
	})
}

// Login runs the credential exchange. On success the session is
// authenticated even if the follow-up profile fetch failed; the error
// message then reflects the missing profile, not a failed login.
func (s *AuthState) Login(username, password string) {
	gen := s.begin()

	if err := s.repo.Login(s.ctx, username, password); err != nil {
		s.finish(gen, func() {
			s.errMsg = err.Error()
		})
		return
	}

	user, err := s.repo.CurrentUser(s.ctx)
	s.finish(gen, func() {
		s.loggedIn = true
		if err != nil {
			s.errMsg = "failed to retrieve user details: " + err.Error()
			return
		}
		s.currentUser = &user
	})
}

// Register creates an account and reports the outcome through the
// error message; it does not log in.
func (s *AuthState) Register(email, username, password string, role models.UserRole) {
	gen := s.begin()
	_, err := s.repo.Register(s.ctx, api.RegisterRequest{
		Email:    email,
		Username: username,
		Password: password,
		Role:     role,
	})
	s.finish(gen, func() {
		if err != nil {
			s.errMsg = err.Error()
		}
	})
}

// Logout clears the session locally; no network call.
func (s *AuthState) Logout() {
	err := s.repo.Logout()
	s.publish(func() {
		s.loggedIn = false
		s.currentUser = nil
		if err != nil {
			s.errMsg = err.Error()
		} else {
			s.errMsg = ""
		}
	})
}

// IsLoggedIn returns the observable logged-in flag.
func (s *AuthState) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loggedIn
}

// IsLoading reports whether an operation is in flight.
func (s *AuthState) IsLoading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

// Err returns the latest failure message, empty when none.
func (s *AuthState) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// CurrentUser returns the fetched profile, if any.
func (s *AuthState) CurrentUser() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.currentUser == nil {
		return models.User{}, false
	}
	return *s.currentUser, true
}

// begin marks a new operation generation and raises the loading flag.
func (s *AuthState) begin() int {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.loading = true
	s.errMsg = ""
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
	return gen
}

// finish publishes a result unless the holder was closed or a newer
// operation superseded this one.
func (s *AuthState) finish(gen int, apply func()) {
	s.mu.Lock()
	if s.ctx.Err() != nil || gen != s.gen {
		s.mu.Unlock()
		return
	}
	apply()
	s.loading = false
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// publish applies a state change outside the begin/finish cycle.
func (s *AuthState) publish(apply func()) {
	s.mu.Lock()
	if s.ctx.Err() != nil {
		s.mu.Unlock()
		return
	}
	apply()
	fn := s.onChange
	s.mu.Unlock()
	if fn != nil {
		fn()
	}
}
