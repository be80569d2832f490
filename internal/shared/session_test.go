package shared

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSessionManager(t *testing.T) *SessionManager {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewSessionManager(client, "pos_session", time.Hour, false)
}

func TestSessionOpenAndResolveByBearer(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Open(ctx, 1, "admin", "admin")
	require.NoError(t, err)
	require.NotEmpty(t, sess.Token)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)

	resolved, err := sm.Resolve(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, 1, resolved.UserID)
	assert.Equal(t, "admin", resolved.Username)
	assert.Equal(t, "admin", resolved.Role)
}

func TestSessionResolveByCookie(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Open(ctx, 2, "user", "user")
	require.NoError(t, err)

	rr := httptest.NewRecorder()
	sm.WriteCookie(rr, sess)
	cookies := rr.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "pos_session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.AddCookie(cookies[0])

	resolved, err := sm.Resolve(ctx, req)
	require.NoError(t, err)
	require.NotNil(t, resolved)
	assert.Equal(t, "user", resolved.Username)
}

func TestSessionResolveWithoutTokenIsAnonymous(t *testing.T) {
	sm := newSessionManager(t)

	resolved, err := sm.Resolve(context.Background(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestSessionCloseInvalidatesToken(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	sess, err := sm.Open(ctx, 1, "admin", "admin")
	require.NoError(t, err)
	require.Equal(t, 1, sm.ActiveSessions(ctx))

	rr := httptest.NewRecorder()
	require.NoError(t, sm.Close(ctx, rr, sess))
	assert.Zero(t, sm.ActiveSessions(ctx))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+sess.Token)
	resolved, err := sm.Resolve(ctx, req)
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestActiveSessionsCountsEveryLogin(t *testing.T) {
	sm := newSessionManager(t)
	ctx := context.Background()

	_, err := sm.Open(ctx, 1, "admin", "admin")
	require.NoError(t, err)
	_, err = sm.Open(ctx, 2, "user", "user")
	require.NoError(t, err)

	assert.Equal(t, 2, sm.ActiveSessions(ctx))
}
