package composables

import (
	"context"
	"encoding/base64"
	"net/http"
	"time"

	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/iota-uz/iota-crud/pkg/constants"
	"github.com/iota-uz/iota-crud/pkg/shared"
)

var ErrNoUser = errors.New("user not found")

// Params describes the current request for handlers that only see a context.
type Params struct {
	IP            string
	UserAgent     string
	Authenticated bool
	Request       *http.Request
	Writer        http.ResponseWriter
}

func WithParams(ctx context.Context, params *Params) context.Context {
	return context.WithValue(ctx, constants.ParamsKey, params)
}

func UseParams(ctx context.Context) (*Params, bool) {
	params, ok := ctx.Value(constants.ParamsKey).(*Params)
	return params, ok && params != nil
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, constants.LoggerKey, logger)
}

// UseLogger returns the request entry, or the standard logger outside a request.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(constants.LoggerKey).(*logrus.Entry); ok && logger != nil {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}

func WithUserID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, constants.UserIDKey, id)
}

// UseUserID returns the id of the authenticated user or ErrNoUser.
func UseUserID(ctx context.Context) (string, error) {
	if id, _ := ctx.Value(constants.UserIDKey).(string); id != "" {
		return id, nil
	}
	return "", ErrNoUser
}

func UseAuthenticated(ctx context.Context) bool {
	_, err := UseUserID(ctx)
	return err == nil
}

// SetFlash stores value in a cookie that UseFlash reads once.
func SetFlash(w http.ResponseWriter, name string, value []byte, ttl time.Duration, secure bool) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    base64.URLEncoding.EncodeToString(value),
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		Expires:  time.Now().Add(ttl),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// UseFlash returns the cookie value set by SetFlash and expires the cookie.
// A missing cookie yields nil without error.
func UseFlash(w http.ResponseWriter, r *http.Request, name string) ([]byte, error) {
	c, err := r.Cookie(name)
	if errors.Is(err, http.ErrNoCookie) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	http.SetCookie(w, &http.Cookie{Name: name, Path: "/", MaxAge: -1, Expires: time.Unix(1, 0)})
	value, err := base64.URLEncoding.DecodeString(c.Value)
	if err != nil {
		return nil, errors.Wrap(err, "decode flash")
	}
	return value, nil
}

// UseQuery decodes the URL query into v.
func UseQuery[T any](v T, r *http.Request) (T, error) {
	return v, shared.Decoder.Decode(v, r.URL.Query())
}

// UseForm decodes the request body only; query parameters are ignored.
func UseForm[T any](v T, r *http.Request) (T, error) {
	if err := r.ParseForm(); err != nil {
		return v, err
	}
	return v, shared.Decoder.Decode(v, r.PostForm)
}
