// Package inmemcache keeps the session mirror in process memory.
package inmemcache

import (
	"context"
	"sync"
	"time"

	"github.com/berkanmatematik/platform/core/session"
)

var nowFunc = time.Now // mockable

type entry struct {
	session   session.Session
	expiresAt time.Time // zero: never
}

type sessionStore struct {
	mutex sync.RWMutex
	table map[string]entry
}

var _ session.Store = (*sessionStore)(nil)

func NewSessionStore() session.Store {
	return &sessionStore{table: make(map[string]entry)}
}

func (store *sessionStore) GetSession(_ context.Context, userID string) (session.Session, error) {
	store.mutex.RLock()
	e, ok := store.table[userID]
	store.mutex.RUnlock()

	if !ok {
		return session.Session{}, session.ErrCacheMiss
	}
	if !e.expiresAt.IsZero() && !nowFunc().Before(e.expiresAt) {
		store.mutex.Lock()
		// the entry may have been refreshed meanwhile
		if cur, ok := store.table[userID]; ok && cur.expiresAt.Equal(e.expiresAt) {
			delete(store.table, userID)
		}
		store.mutex.Unlock()
		return session.Session{}, session.ErrCacheMiss
	}
	return e.session, nil
}

func (store *sessionStore) SetSession(_ context.Context, s session.Session, ttl time.Duration) error {
	e := entry{session: s}
	if ttl > 0 {
		e.expiresAt = nowFunc().Add(ttl)
	}
	store.mutex.Lock()
	store.table[s.UserID] = e
	store.mutex.Unlock()
	return nil
}

func (store *sessionStore) DeleteSession(_ context.Context, userID string) error {
	store.mutex.Lock()
	delete(store.table, userID)
	store.mutex.Unlock()
	return nil
}
