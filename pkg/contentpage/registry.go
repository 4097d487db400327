package contentpage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

var (
	ErrDuplicatePage = errors.New("content page already registered")
	ErrUnknownPage   = errors.New("content page not registered")
)

// Registry keeps registered pages and the paths they are served from.
type Registry struct {
	mu    sync.RWMutex
	pages []*Page
	byID  map[string]*Page
	slots map[string]string
}

func NewRegistry() *Registry {
	return &Registry{
		byID:  map[string]*Page{},
		slots: map[string]string{},
	}
}

func (r *Registry) Register(p *Page) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[p.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicatePage, p.ID)
	}
	r.pages = append(r.pages, p)
	r.byID[p.ID] = p
	return nil
}

// Registered returns pages in registration order.
func (r *Registry) Registered() []*Page {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Page(nil), r.pages...)
}

func (r *Registry) Get(id string) (*Page, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	return p, ok
}

// Assign serves the page id at path. Reassigning drops the cached URL.
func (r *Registry) Assign(id, path string) error {
	path = strings.TrimSpace(path)
	if path == "" || !strings.HasPrefix(path, "/") {
		return fmt.Errorf("invalid path %q for page %s", path, id)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.slots[id] = path
	if p, ok := r.byID[id]; ok {
		p.url, p.cached = "", false
	}
	return nil
}

// URL returns the path assigned to p, or "" when it has none. The result is cached on p.
func (r *Registry) URL(p *Page) string {
	r.mu.RLock()
	if p.cached {
		u := p.url
		r.mu.RUnlock()
		return u
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if !p.cached {
		p.url = r.slots[p.ID]
		p.cached = p.url != ""
	}
	return p.url
}

// Search ranks the pages visible to ctx by how well their label matches q.
// An empty query returns every visible page.
func (r *Registry) Search(ctx context.Context, q string) []*Page {
	pages := make([]*Page, 0)
	for _, p := range r.Registered() {
		if p.CanView(ctx) {
			pages = append(pages, p)
		}
	}
	q = strings.TrimSpace(q)
	if q == "" || len(pages) == 0 {
		return pages
	}
	words := make([]string, len(pages))
	for i, p := range pages {
		words[i] = p.Label
	}
	ranks := fuzzy.RankFindNormalizedFold(q, words)
	sort.Sort(ranks)

	result := make([]*Page, 0, len(ranks))
	for _, rank := range ranks {
		result = append(result, pages[rank.OriginalIndex])
	}
	return result
}
