package member

import (
	"html"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/go-faster/errors"
	"github.com/microcosm-cc/bluemonday"
)

var textPolicy = bluemonday.StrictPolicy()

var (
	ErrNotFound   = errors.New("member not found")
	ErrLoginTaken = errors.New("member login is already taken")
)

type Member struct {
	id          int64
	login       string
	name        string
	displayName string
	createdAt   time.Time
	updatedAt   time.Time
}

// New builds an unsaved member; the login is derived from the name.
func New(name string) Member {
	name = CleanName(name)
	return Member{
		login:       LoginFromName(name),
		name:        name,
		displayName: name,
	}
}

func Hydrate(
	id int64,
	login string,
	name string,
	displayName string,
	createdAt time.Time,
	updatedAt time.Time,
) Member {
	return Member{
		id:          id,
		login:       login,
		name:        name,
		displayName: displayName,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

func (m Member) ID() int64            { return m.id }
func (m Member) Login() string        { return m.login }
func (m Member) Name() string         { return m.name }
func (m Member) DisplayName() string  { return m.displayName }
func (m Member) CreatedAt() time.Time { return m.createdAt }
func (m Member) UpdatedAt() time.Time { return m.updatedAt }
func (m Member) IsZero() bool         { return m.id == 0 && m.login == "" }

// WithLogin returns a copy of an unsaved member carrying login.
func (m Member) WithLogin(login string) Member {
	m.login = login
	return m
}

// Rename sets the name; a display name that mirrored the old name follows it.
func (m Member) Rename(name string) Member {
	name = CleanName(name)
	if m.displayName == "" || m.displayName == m.name {
		m.displayName = name
	}
	m.name = name
	return m
}

// Snapshot is the JSON friendly view used for audit diffs.
type Snapshot struct {
	ID          int64  `json:"id"`
	Login       string `json:"login"`
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
}

func (m Member) Snapshot() Snapshot {
	return Snapshot{
		ID:          m.id,
		Login:       m.login,
		Name:        m.name,
		DisplayName: m.displayName,
	}
}

// CleanName strips markup from name, trims it and collapses inner whitespace runs.
func CleanName(name string) string {
	plain := html.UnescapeString(textPolicy.Sanitize(name))
	return strings.Join(strings.Fields(plain), " ")
}

// FallbackLogin is used when a name has no letters or digits.
const FallbackLogin = "member"

// LoginCandidate returns base for attempt 1 and base-<n> after that, so
// "Ann Lee" twice becomes ann-lee and ann-lee-2.
func LoginCandidate(base string, attempt int) string {
	if base == "" {
		base = FallbackLogin
	}
	if attempt <= 1 {
		return base
	}
	return base + "-" + strconv.Itoa(attempt)
}

// LoginFromName lowercases name and keeps letters and digits, joining words with "-".
func LoginFromName(name string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(name) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			dash = false
			b.WriteRune(r)
		default:
			dash = true
		}
	}
	return b.String()
}
