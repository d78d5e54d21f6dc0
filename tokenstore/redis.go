package tokenstore

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"chat-analyzer/config"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/gorilla/sessions"
	"github.com/rs/zerolog/log"
)

const (
	sessionIDKey   = "sid"
	redisKeyPrefix = "session:token:"
)

// RedisStore keeps only an opaque session id in the cookie; the token itself
// lives in Redis and expires after the configured TTL.
type RedisStore struct {
	redis   *redis.Client
	cookies *sessions.CookieStore
	name    string
	ttl     time.Duration
	timeout time.Duration
}

// NewRedisStore creates a Redis-backed token store.
func NewRedisStore(rdb *redis.Client, cfg config.SessionConfig, opTimeout time.Duration) *RedisStore {
	return &RedisStore{
		redis:   rdb,
		cookies: newSessionCookieStore(cfg),
		name:    cfg.CookieName,
		ttl:     time.Duration(cfg.TTLSeconds) * time.Second,
		timeout: opTimeout,
	}
}

func tokenRedisKey(sid string) string {
	return redisKeyPrefix + sid
}

func (s *RedisStore) sessionID(r *http.Request) (*sessions.Session, string) {
	session, _ := s.cookies.Get(r, s.name)
	sid, _ := session.Values[sessionIDKey].(string)
	return session, sid
}

func (s *RedisStore) Get(r *http.Request) (string, bool) {
	_, sid := s.sessionID(r)
	if sid == "" {
		return "", false
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	token, err := s.redis.Get(ctx, tokenRedisKey(sid)).Result()
	if err == redis.Nil {
		return "", false
	} else if err != nil {
		log.Error().Err(err).Str("sid", sid).Msg("Failed to read token from Redis")
		return "", false
	}
	return token, token != ""
}

func (s *RedisStore) Set(w http.ResponseWriter, r *http.Request, token string) error {
	session, sid := s.sessionID(r)
	if sid == "" {
		sid = uuid.New().String()
		session.Values[sessionIDKey] = sid
		if err := session.Save(r, w); err != nil {
			return fmt.Errorf("save session cookie: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
	defer cancel()

	if err := s.redis.Set(ctx, tokenRedisKey(sid), token, s.ttl).Err(); err != nil {
		return fmt.Errorf("store token in redis: %w", err)
	}

	log.Debug().Str("sid", sid).Msg("Token stored")
	return nil
}

func (s *RedisStore) Clear(w http.ResponseWriter, r *http.Request) error {
	session, sid := s.sessionID(r)
	if sid != "" {
		ctx, cancel := context.WithTimeout(r.Context(), s.timeout)
		defer cancel()

		if err := s.redis.Del(ctx, tokenRedisKey(sid)).Err(); err != nil {
			return fmt.Errorf("delete token from redis: %w", err)
		}
	}

	delete(session.Values, sessionIDKey)
	session.Options.MaxAge = -1
	if err := session.Save(r, w); err != nil {
		return fmt.Errorf("expire session cookie: %w", err)
	}
	return nil
}
