// Package rediscache keeps the session mirror in Redis, shared by every API instance.
package rediscache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/berkanmatematik/platform/core"
	"github.com/berkanmatematik/platform/core/session"
)

const keyPrefix = "session:"

// cached is the stored form; Session hides the token version from JSON answers.
type cached struct {
	UserID       string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	IsAdmin      bool      `json:"isAdmin"`
	TokenVersion int       `json:"ver"`
	RefreshedAt  time.Time `json:"refreshedAt"`
}

type sessionStore struct {
	client *redis.Client
}

var _ session.Store = (*sessionStore)(nil)

// Open connects to the configured Redis and pings it.
func Open(ctx context.Context, conf *core.Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Cache.RedisAddress,
		Password: conf.Cache.RedisPassword,
		DB:       conf.Cache.RedisDB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "pinging redis")
	}
	return client, nil
}

func NewSessionStore(client *redis.Client) session.Store {
	return &sessionStore{client: client}
}

func (store *sessionStore) GetSession(ctx context.Context, userID string) (session.Session, error) {
	data, err := store.client.Get(ctx, keyPrefix+userID).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Session{}, session.ErrCacheMiss
		}
		return session.Session{}, errors.Wrap(err, "getting session")
	}

	var c cached
	if err = json.Unmarshal(data, &c); err != nil {
		return session.Session{}, errors.Wrap(err, "decoding session")
	}
	return session.Session{
		UserID:       c.UserID,
		Name:         c.Name,
		Email:        c.Email,
		IsAdmin:      c.IsAdmin,
		TokenVersion: c.TokenVersion,
		RefreshedAt:  c.RefreshedAt,
	}, nil
}

func (store *sessionStore) SetSession(ctx context.Context, s session.Session, ttl time.Duration) error {
	data, err := json.Marshal(cached{
		UserID:       s.UserID,
		Name:         s.Name,
		Email:        s.Email,
		IsAdmin:      s.IsAdmin,
		TokenVersion: s.TokenVersion,
		RefreshedAt:  s.RefreshedAt,
	})
	if err != nil {
		return errors.Wrap(err, "encoding session")
	}
	// ttl 0 keeps the key forever
	if err = store.client.Set(ctx, keyPrefix+s.UserID, data, ttl).Err(); err != nil {
		return errors.Wrap(err, "setting session")
	}
	return nil
}

func (store *sessionStore) DeleteSession(ctx context.Context, userID string) error {
	if err := store.client.Del(ctx, keyPrefix+userID).Err(); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}
