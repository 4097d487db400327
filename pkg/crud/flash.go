package crud

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/iota-uz/iota-crud/pkg/composables"
)

type FlashKind string

const (
	FlashSuccess FlashKind = "success"
	FlashError   FlashKind = "error"
	FlashInfo    FlashKind = "info"
)

const (
	DefaultFlashCookie   = "crud-message"
	DefaultSessionCookie = "crud-flash-sid"
	DefaultFlashTTL      = 24 * time.Hour
)

// Flash is a read-once status message handed from one request to the next.
type Flash struct {
	Kind FlashKind `json:"kind"`
	Text string    `json:"text"`
}

func normalizeKind(kind FlashKind) FlashKind {
	switch kind {
	case FlashSuccess, FlashError, FlashInfo:
		return kind
	default:
		return FlashInfo
	}
}

// FlashTransport hands a Flash over a redirect. Write must complete before the
// redirect response is sent; ReadAndClear returns nil once the message was consumed.
type FlashTransport interface {
	Write(w http.ResponseWriter, r *http.Request, f Flash) error
	ReadAndClear(w http.ResponseWriter, r *http.Request) (*Flash, error)
}

// CookieFlash keeps the message in a base64 encoded JSON cookie.
type CookieFlash struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

func NewCookieFlash(ttl time.Duration, secure bool) *CookieFlash {
	return &CookieFlash{Name: DefaultFlashCookie, TTL: ttl, Secure: secure}
}

func (c *CookieFlash) name() string {
	if c.Name == "" {
		return DefaultFlashCookie
	}
	return c.Name
}

func (c *CookieFlash) Write(w http.ResponseWriter, _ *http.Request, f Flash) error {
	f.Kind = normalizeKind(f.Kind)
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	ttl := c.TTL
	if ttl <= 0 {
		ttl = DefaultFlashTTL
	}
	composables.SetFlash(w, c.name(), data, ttl, c.Secure)
	return nil
}

func (c *CookieFlash) ReadAndClear(w http.ResponseWriter, r *http.Request) (*Flash, error) {
	data, err := composables.UseFlash(w, r, c.name())
	if err != nil || len(data) == 0 {
		return nil, err
	}
	return decodeFlash(data)
}

// RedisFlash stores the message server side, keyed by a random session cookie.
type RedisFlash struct {
	client redis.Cmdable
	prefix string
	cookie string
	ttl    time.Duration
	secure bool
}

func NewRedisFlash(client redis.Cmdable, ttl time.Duration, secure bool) *RedisFlash {
	if ttl <= 0 {
		ttl = DefaultFlashTTL
	}
	return &RedisFlash{
		client: client,
		prefix: "crud:flash:",
		cookie: DefaultSessionCookie,
		ttl:    ttl,
		secure: secure,
	}
}

func (s *RedisFlash) Write(w http.ResponseWriter, r *http.Request, f Flash) error {
	f.Kind = normalizeKind(f.Kind)
	data, err := json.Marshal(f)
	if err != nil {
		return err
	}
	sid := s.sessionID(r)
	if sid == "" {
		sid = uuid.NewString()
		http.SetCookie(w, &http.Cookie{
			Name:     s.cookie,
			Value:    sid,
			Path:     "/",
			HttpOnly: true,
			Secure:   s.secure,
			SameSite: http.SameSiteLaxMode,
		})
	}
	return s.client.Set(r.Context(), s.prefix+sid, data, s.ttl).Err()
}

func (s *RedisFlash) ReadAndClear(_ http.ResponseWriter, r *http.Request) (*Flash, error) {
	sid := s.sessionID(r)
	if sid == "" {
		return nil, nil
	}
	data, err := s.client.GetDel(r.Context(), s.prefix+sid).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}
	return decodeFlash(data)
}

func (s *RedisFlash) sessionID(r *http.Request) string {
	c, err := r.Cookie(s.cookie)
	if err != nil {
		return ""
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return ""
	}
	return c.Value
}

func decodeFlash(data []byte) (*Flash, error) {
	var f Flash
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, err
	}
	if f.Text == "" {
		return nil, nil
	}
	f.Kind = normalizeKind(f.Kind)
	return &f, nil
}
