// Package session keeps the read-only mirror of the signed-in user that requests run with.
package session

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/user"
)

var (
	// errors
	ErrCacheMiss = errors.New("session not cached")
	ErrRevoked   = errors.New("Oturum sonlandırıldı, lütfen tekrar giriş yapın.")
)

// Session is the current user as seen by the application. IsAdmin comes from the persisted role.
type Session struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"isAdmin"`
	TokenVersion int       `json:"-"`
	RefreshedAt  time.Time `json:"refreshedAt"` // UTC
}

func FromUser(usr user.User, at time.Time) Session {
	return Session{
		UserID:       usr.ID,
		Name:         usr.DisplayName(),
		Email:        usr.Email,
		IsAdmin:      usr.IsAdmin(),
		TokenVersion: usr.TokenVersion,
		RefreshedAt:  at.UTC(),
	}
}

// Person is used to attach the session to log entries.
func (s Session) Person() core.Person {
	return core.Person{ID: s.UserID, Name: s.Name, Email: s.Email}
}

// Store caches sessions by user id.
type Store interface {
	// GetSession fails with ErrCacheMiss when nothing (or something expired) is cached.
	GetSession(ctx context.Context, userID string) (Session, error)
	SetSession(ctx context.Context, s Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, userID string) error
}

// Manager refreshes the cached sessions on every user.Event and resolves the session of a request.
type Manager struct {
	store       Store
	users       user.Service
	ttl         time.Duration
	logger      core.Logger
	unsubscribe func()
	nowFunc     func() time.Time
}

func NewManager(store Store, users user.Service, ttl time.Duration, logger core.Logger) *Manager {
	m := &Manager{
		store:   store,
		users:   users,
		ttl:     ttl,
		logger:  logger,
		nowFunc: time.Now,
	}
	m.unsubscribe = users.Subscribe(m.handle)
	return m
}

// Close stops listening to user events.
func (m *Manager) Close() {
	if m.unsubscribe != nil {
		m.unsubscribe()
	}
}

func (m *Manager) handle(evt user.Event) {
	ctx := context.Background()
	var err error
	switch evt.Kind {
	case user.EventSignedIn, user.EventProfileUpdated, user.EventRoleChanged:
		err = m.store.SetSession(ctx, FromUser(evt.User, evt.At), m.ttl)
	case user.EventSignedOut:
		err = m.store.DeleteSession(ctx, evt.User.ID)
	}
	if err != nil {
		m.logger.Warn(fmt.Sprintf("refreshing session on %s: %v", evt.Kind, err), err)
	}
}

// Current returns the session of userID for a token of the given version.
// Cache misses are reloaded from the user store; stale token versions give ErrRevoked.
func (m *Manager) Current(ctx context.Context, userID string, tokenVersion int) (Session, error) {
	s, err := m.store.GetSession(ctx, userID)
	if err != nil {
		if errors.Cause(err) != ErrCacheMiss {
			m.logger.Warn(fmt.Sprintf("reading cached session: %v", err), err)
		}
		usr, err := m.users.GetByID(ctx, userID)
		if err != nil {
			if errors.Cause(err) == user.ErrNotFound {
				return Session{}, ErrRevoked
			}
			return Session{}, errors.Wrap(err, "loading session user")
		}
		s = FromUser(usr, m.nowFunc())
		if err = m.store.SetSession(ctx, s, m.ttl); err != nil {
			m.logger.Warn(fmt.Sprintf("caching session: %v", err), err)
		}
		if s, err = m.recheck(ctx, s); err != nil {
			return Session{}, err
		}
	}
	if s.TokenVersion != tokenVersion {
		return Session{}, ErrRevoked
	}
	return s, nil
}

// recheck reloads the user after a session was cached, in case a sign out bumped the
// token version between the load and the write. The stale entry is dropped in that case.
func (m *Manager) recheck(ctx context.Context, cached Session) (Session, error) {
	usr, err := m.users.GetByID(ctx, cached.UserID)
	switch {
	case errors.Cause(err) == user.ErrNotFound:
		m.drop(ctx, cached.UserID)
		return Session{}, ErrRevoked
	case err != nil:
		return Session{}, errors.Wrap(err, "reloading session user")
	case usr.TokenVersion == cached.TokenVersion:
		return cached, nil
	}
	m.drop(ctx, cached.UserID)
	return FromUser(usr, m.nowFunc()), nil
}

func (m *Manager) drop(ctx context.Context, userID string) {
	if err := m.store.DeleteSession(ctx, userID); err != nil {
		m.logger.Warn(fmt.Sprintf("dropping stale session: %v", err), err)
	}
}
