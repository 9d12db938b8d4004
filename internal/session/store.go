// Package session holds client-side authentication state and keeps it in
// sync with the API.
package session

import (
	"context"
	"errors"
	"strings"
	"sync"

	"go-auth-portal/internal/client"
	"go-auth-portal/internal/model"
)

// API is the subset of the HTTP client the store drives.
type API interface {
	Login(ctx context.Context, req model.LoginRequest) (model.LoginUser, error)
	Register(ctx context.Context, req model.RegisterRequest) (model.RegisteredUser, error)
	Logout(ctx context.Context) error
	CurrentUser(ctx context.Context) (model.PublicUser, error)
}

// State is an immutable snapshot handed to readers and subscribers.
type State struct {
	User      *model.PublicUser
	IsLoading bool
	Error     *string
}

func (s State) IsAuthenticated() bool {
	return s.User != nil
}

func (s State) HasError() bool {
	return s.Error != nil
}

// DisplayName is the user's full name, else the username, else "Guest".
func (s State) DisplayName() string {
	if s.User == nil {
		return "Guest"
	}
	if name := strings.TrimSpace(s.User.FirstName + " " + s.User.LastName); name != "" {
		return name
	}
	if s.User.Username != "" {
		return s.User.Username
	}
	return "Guest"
}

// UserPatch carries the fields UpdateUser overwrites; nil leaves a field as is.
type UserPatch struct {
	Email     *string
	Username  *string
	FirstName *string
	LastName  *string
	Confirmed *bool
}

// Store is one application's session state. Concurrent actions are not
// serialised against each other; the last one to finish wins.
type Store struct {
	api API

	mu        sync.Mutex
	state     State
	listeners map[int]func(State)
	nextID    int
}

func NewStore(api API) *Store {
	return &Store{api: api, listeners: map[int]func(State){}}
}

func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshot(s.state)
}

// Subscribe registers fn for every state change and returns a func that
// removes it. fn runs on the goroutine that made the change.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.listeners, id)
			s.mu.Unlock()
		})
	}
}

func (s *Store) Login(ctx context.Context, req model.LoginRequest) error {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = nil
	})

	user, err := s.api.Login(ctx, req)
	if err != nil {
		s.fail(err)
		return err
	}

	s.update(func(st *State) {
		st.User = &model.PublicUser{ID: user.ID, Email: user.Email, Username: user.Username}
		st.Error = nil
		st.IsLoading = false
	})
	return nil
}

func (s *Store) Register(ctx context.Context, req model.RegisterRequest) error {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = nil
	})

	user, err := s.api.Register(ctx, req)
	if err != nil {
		s.fail(err)
		return err
	}

	s.update(func(st *State) {
		st.User = &model.PublicUser{
			ID:        user.ID,
			Email:     user.Email,
			Username:  user.Username,
			FirstName: strings.TrimSpace(req.FirstName),
			LastName:  strings.TrimSpace(req.LastName),
			Confirmed: user.Confirmed,
		}
		st.Error = nil
		st.IsLoading = false
	})
	return nil
}

// Logout always de-authenticates locally, whatever the API answers.
func (s *Store) Logout(ctx context.Context) {
	s.update(func(st *State) {
		st.IsLoading = true
	})

	_ = s.api.Logout(ctx)

	s.update(func(st *State) {
		st.User = nil
		st.Error = nil
		st.IsLoading = false
	})
}

// Refresh reloads the current user. An unauthenticated response clears the
// session without recording an error.
func (s *Store) Refresh(ctx context.Context) {
	s.update(func(st *State) {
		st.IsLoading = true
		st.Error = nil
	})

	user, err := s.api.CurrentUser(ctx)

	s.update(func(st *State) {
		st.IsLoading = false
		if err == nil {
			st.User = &user
			st.Error = nil
			return
		}

		st.User = nil
		if client.IsUnauthorized(err) {
			st.Error = nil
			return
		}
		msg := errorMessage(err)
		st.Error = &msg
	})
}

// SilentRefresh is Refresh for background checks: loading and error are
// never touched.
func (s *Store) SilentRefresh(ctx context.Context) {
	user, err := s.api.CurrentUser(ctx)

	s.update(func(st *State) {
		if err != nil {
			st.User = nil
			return
		}
		st.User = &user
	})
}

// UpdateUser merges patch into the current user. It is a no-op when nobody
// is signed in.
func (s *Store) UpdateUser(patch UserPatch) {
	s.update(func(st *State) {
		if st.User == nil {
			return
		}

		merged := *st.User
		if patch.Email != nil {
			merged.Email = *patch.Email
		}
		if patch.Username != nil {
			merged.Username = *patch.Username
		}
		if patch.FirstName != nil {
			merged.FirstName = *patch.FirstName
		}
		if patch.LastName != nil {
			merged.LastName = *patch.LastName
		}
		if patch.Confirmed != nil {
			merged.Confirmed = *patch.Confirmed
		}
		st.User = &merged
	})
}

func (s *Store) ClearError() {
	s.update(func(st *State) {
		st.Error = nil
	})
}

// SetInitialUser seeds the store, typically with the user the edge server
// resolved for the page.
func (s *Store) SetInitialUser(user *model.PublicUser) {
	s.update(func(st *State) {
		if user == nil {
			st.User = nil
			return
		}
		u := *user
		st.User = &u
	})
}

func (s *Store) fail(err error) {
	msg := errorMessage(err)
	s.update(func(st *State) {
		st.Error = &msg
		st.IsLoading = false
	})
}

func (s *Store) update(mutate func(st *State)) {
	s.mu.Lock()
	mutate(&s.state)
	current := snapshot(s.state)
	listeners := make([]func(State), 0, len(s.listeners))
	for _, fn := range s.listeners {
		listeners = append(listeners, fn)
	}
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(current)
	}
}

func snapshot(st State) State {
	out := State{IsLoading: st.IsLoading}
	if st.User != nil {
		u := *st.User
		out.User = &u
	}
	if st.Error != nil {
		e := *st.Error
		out.Error = &e
	}
	return out
}

func errorMessage(err error) string {
	var apiErr *client.Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return err.Error()
}
