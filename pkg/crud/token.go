package crud

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"strconv"
	"strings"
	"time"
)

var (
	ErrInvalidToken = errors.New("crud: invalid anti-forgery token")
	ErrTokenExpired = errors.New("crud: anti-forgery token expired")
)

const DefaultTokenTTL = 12 * time.Hour

// Scope builds the token scope for an action on an item: "<action>-<itemID>".
func Scope(action, itemID string) string {
	return sanitizeKey(action) + "-" + sanitizeKey(itemID)
}

// Tokens issues and verifies HMAC-SHA256 anti-forgery tokens bound to a scope,
// a subject (the user id) and an expiry.
type Tokens struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokens returns a token signer. An empty secret is replaced by random bytes,
// which invalidates tokens across restarts.
func NewTokens(secret []byte, ttl time.Duration) *Tokens {
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			panic(err)
		}
	}
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &Tokens{secret: secret, ttl: ttl, now: time.Now}
}

// Issue returns a token in the form "<expiry>.<signature>".
func (t *Tokens) Issue(scope, subject string) string {
	exp := strconv.FormatInt(t.now().Add(t.ttl).Unix(), 36)
	return exp + "." + base64.RawURLEncoding.EncodeToString(t.sign(exp, scope, subject))
}

func (t *Tokens) Verify(token, scope, subject string) error {
	exp, sig, ok := strings.Cut(strings.TrimSpace(token), ".")
	if !ok || exp == "" || sig == "" {
		return ErrInvalidToken
	}
	got, err := base64.RawURLEncoding.DecodeString(sig)
	if err != nil {
		return ErrInvalidToken
	}
	if !hmac.Equal(got, t.sign(exp, scope, subject)) {
		return ErrInvalidToken
	}
	unix, err := strconv.ParseInt(exp, 36, 64)
	if err != nil {
		return ErrInvalidToken
	}
	if t.now().Unix() > unix {
		return ErrTokenExpired
	}
	return nil
}

func (t *Tokens) sign(exp, scope, subject string) []byte {
	mac := hmac.New(sha256.New, t.secret)
	_, _ = mac.Write([]byte(exp))
	_, _ = mac.Write([]byte{0})
	_, _ = mac.Write([]byte(scope))
	_, _ = mac.Write([]byte{0})
	_, _ = mac.Write([]byte(subject))
	return mac.Sum(nil)
}
