package authz

import (
	"os"
	"strings"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Mode decides what a denial does: nothing (disabled), a log line (shadow) or a 403 (enforce).
type Mode string

const (
	ModeDisabled Mode = "disabled"
	ModeShadow   Mode = "shadow"
	ModeEnforce  Mode = "enforce"
)

// ParseMode maps unknown values to shadow.
func ParseMode(s string) Mode {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeDisabled, ModeEnforce:
		return m
	default:
		return ModeShadow
	}
}

// Flags is the content of the flag file:
//
//	mode: shadow
//	objects:
//	  members.list: enforce
type Flags struct {
	Mode    string            `yaml:"mode"`
	Objects map[string]string `yaml:"objects"`
}

// ModeFor returns the override for object, else the global mode.
func (f Flags) ModeFor(object string) Mode {
	if m, ok := f.Objects[object]; ok {
		return ParseMode(m)
	}
	return ParseMode(f.Mode)
}

type FlagProvider interface {
	Flags() Flags
}

type staticFlags Flags

func (s staticFlags) Flags() Flags { return Flags(s) }

// StaticMode applies mode to every object.
func StaticMode(mode Mode) FlagProvider {
	return staticFlags{Mode: string(mode)}
}

// FileFlagProvider reloads the flag file whenever its size or modification time
// changes. A missing or broken file keeps the last good flags.
type FileFlagProvider struct {
	path string

	mu      sync.Mutex
	current Flags
	modTime time.Time
	size    int64
}

func NewFileFlagProvider(path string, fallback Mode) *FileFlagProvider {
	return &FileFlagProvider{
		path:    path,
		current: Flags{Mode: string(fallback)},
	}
}

func (p *FileFlagProvider) Flags() Flags {
	p.mu.Lock()
	defer p.mu.Unlock()

	info, err := os.Stat(p.path)
	if err != nil || (info.ModTime().Equal(p.modTime) && info.Size() == p.size) {
		return p.current
	}
	data, err := os.ReadFile(p.path)
	if err != nil {
		return p.current
	}
	var next Flags
	if err := yaml.Unmarshal(data, &next); err != nil || strings.TrimSpace(next.Mode) == "" {
		return p.current
	}
	p.current, p.modTime, p.size = next, info.ModTime(), info.Size()
	return p.current
}
