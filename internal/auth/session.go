package auth

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/helpdesk-portal/internal/domain"
)

// ErrSessionNotFound is returned when a session id has expired or was
// destroyed server-side.
var ErrSessionNotFound = errors.New("session not found")

// SessionStore keeps session state server-side in Redis so a session can be
// destroyed mid-lifetime, individually or for a whole account at once.
type SessionStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewSessionStore builds the store.
func NewSessionStore(client *redis.Client, ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &SessionStore{client: client, ttl: ttl}
}

func sessionKey(sid string) string {
	return "session:" + sid
}

func accountIndexKey(accountID string) string {
	return "account_sessions:" + accountID
}

// Create persists a new session and indexes it under its account.
func (s *SessionStore) Create(ctx context.Context, principal domain.SessionPrincipal) (string, error) {
	payload, err := json.Marshal(principal)
	if err != nil {
		return "", err
	}

	sid := uuid.NewString()
	pipe := s.client.TxPipeline()
	pipe.Set(ctx, sessionKey(sid), payload, s.ttl)
	pipe.SAdd(ctx, accountIndexKey(principal.AccountID), sid)
	pipe.Expire(ctx, accountIndexKey(principal.AccountID), s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return "", err
	}
	return sid, nil
}

// Get loads the principal for a session id.
func (s *SessionStore) Get(ctx context.Context, sid string) (*domain.SessionPrincipal, error) {
	raw, err := s.client.Get(ctx, sessionKey(sid)).Bytes()
	if err == redis.Nil {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, err
	}

	var principal domain.SessionPrincipal
	if err := json.Unmarshal(raw, &principal); err != nil {
		return nil, err
	}
	return &principal, nil
}

// Destroy removes one session.
func (s *SessionStore) Destroy(ctx context.Context, sid string) error {
	principal, err := s.Get(ctx, sid)
	if err == ErrSessionNotFound {
		return nil
	}
	if err != nil {
		return err
	}

	pipe := s.client.TxPipeline()
	pipe.Del(ctx, sessionKey(sid))
	pipe.SRem(ctx, accountIndexKey(principal.AccountID), sid)
	_, err = pipe.Exec(ctx)
	return err
}

// DestroyAccount removes every live session belonging to an account. Used
// when an account's role changes or its password is reset.
func (s *SessionStore) DestroyAccount(ctx context.Context, accountID string) error {
	sids, err := s.client.SMembers(ctx, accountIndexKey(accountID)).Result()
	if err != nil && err != redis.Nil {
		return err
	}

	pipe := s.client.TxPipeline()
	for _, sid := range sids {
		pipe.Del(ctx, sessionKey(sid))
	}
	pipe.Del(ctx, accountIndexKey(accountID))
	_, err = pipe.Exec(ctx)
	return err
}
