package shared

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// SessionManager issues and resolves login sessions backed by Redis.
// Tokens travel either in the session cookie or an Authorization bearer
// header, so both the bundled terminal UI and API callers can use them.
type SessionManager struct {
	client     *redis.Client
	cookieName string
	ttl        time.Duration
	secure     bool
}

// Session holds the authenticated state attached to a request.
type Session struct {
	Token    string
	UserID   int
	Username string
	Role     string
}

type sessionPayload struct {
	UserID   int    `json:"user_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// NewSessionManager constructs a SessionManager.
func NewSessionManager(client *redis.Client, cookieName string, ttl time.Duration, secure bool) *SessionManager {
	return &SessionManager{client: client, cookieName: cookieName, ttl: ttl, secure: secure}
}

// Open creates a session for the given user and persists it in Redis.
func (sm *SessionManager) Open(ctx context.Context, userID int, username, role string) (*Session, error) {
	sess := &Session{
		Token:    uuid.NewString(),
		UserID:   userID,
		Username: username,
		Role:     role,
	}
	data, err := json.Marshal(sessionPayload{UserID: userID, Username: username, Role: role})
	if err != nil {
		return nil, err
	}
	if err := sm.client.Set(ctx, sm.redisKey(sess.Token), data, sm.ttl).Err(); err != nil {
		return nil, err
	}
	return sess, nil
}

// Resolve looks up the session referenced by the request, if any.
// A request without a token resolves to (nil, nil).
func (sm *SessionManager) Resolve(ctx context.Context, r *http.Request) (*Session, error) {
	token := sm.requestToken(r)
	if token == "" {
		return nil, nil
	}
	data, err := sm.client.Get(ctx, sm.redisKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	var stored sessionPayload
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	// Sliding expiry keeps a busy terminal logged in.
	_ = sm.client.Expire(ctx, sm.redisKey(token), sm.ttl).Err()
	return &Session{Token: token, UserID: stored.UserID, Username: stored.Username, Role: stored.Role}, nil
}

// Close deletes the session and expires its cookie.
func (sm *SessionManager) Close(ctx context.Context, w http.ResponseWriter, sess *Session) error {
	if sess == nil {
		return nil
	}
	if err := sm.client.Del(ctx, sm.redisKey(sess.Token)).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

// WriteCookie attaches the session token to the response.
func (sm *SessionManager) WriteCookie(w http.ResponseWriter, sess *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sm.cookieName,
		Value:    sess.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   sm.secure,
		SameSite: http.SameSiteStrictMode,
		Expires:  time.Now().Add(sm.ttl),
	})
}

// ActiveSessions reports how many sessions are currently live. The sync
// scheduler only arms itself while somebody is logged in. SCAN keeps the
// walk incremental instead of blocking Redis on one big KEYS call.
func (sm *SessionManager) ActiveSessions(ctx context.Context) int {
	count := 0
	iter := sm.client.Scan(ctx, 0, "session:*", 0).Iterator()
	for iter.Next(ctx) {
		count++
	}
	if err := iter.Err(); err != nil {
		return 0
	}
	return count
}

// TTL exposes the configured session lifetime.
func (sm *SessionManager) TTL() time.Duration {
	return sm.ttl
}

// CookieName returns the cookie identifier used for sessions.
func (sm *SessionManager) CookieName() string {
	return sm.cookieName
}

func (sm *SessionManager) requestToken(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := r.Cookie(sm.cookieName); err == nil {
		return cookie.Value
	}
	return ""
}

func (sm *SessionManager) redisKey(token string) string {
	return "session:" + token
}
