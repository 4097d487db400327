package crud

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestCookieFlash_ReadOnce(t *testing.T) {
	transport := NewCookieFlash(time.Minute, false)
	rec := httptest.NewRecorder()
	require.NoError(t, transport.Write(rec, httptest.NewRequest(http.MethodPost, "/", nil), Flash{Kind: "warning", Text: "hello"}))

	cookies := rec.Result().Cookies()
	require.Len(t, cookies, 1)
	require.True(t, cookies[0].HttpOnly)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(cookies[0])
	cleared := httptest.NewRecorder()
	f, err := transport.ReadAndClear(cleared, r)
	require.NoError(t, err)
	require.Equal(t, &Flash{Kind: FlashInfo, Text: "hello"}, f)

	expired := cleared.Result().Cookies()
	require.Len(t, expired, 1)
	require.Equal(t, DefaultFlashCookie, expired[0].Name)
	require.Negative(t, expired[0].MaxAge)

	f, err = transport.ReadAndClear(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Nil(t, f)
}

func TestCookieFlash_RejectsGarbage(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultFlashCookie, Value: "%%%"})
	_, err := NewCookieFlash(time.Minute, false).ReadAndClear(httptest.NewRecorder(), r)
	require.Error(t, err)
}

func TestRedisFlash_NoSessionReadsNothing(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0"})
	t.Cleanup(func() { _ = client.Close() })
	transport := NewRedisFlash(client, time.Minute, false)

	f, err := transport.ReadAndClear(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	require.Nil(t, f)

	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.AddCookie(&http.Cookie{Name: DefaultSessionCookie, Value: "not-a-uuid"})
	f, err = transport.ReadAndClear(httptest.NewRecorder(), r)
	require.NoError(t, err)
	require.Nil(t, f)
}
