package crud

import (
	"net/url"
	"strconv"
)

const (
	DefaultPerPage    = 50
	DefaultMaxPerPage = 500

	paginationEndSize = 5
	paginationMidSize = 5
)

// ParsePagination reads crud_page and crud_per_page, falling back to page 1 and
// perPage when values are missing or out of range.
func ParsePagination(q url.Values, perPage, maxPerPage int) (page, size int) {
	page, size = 1, perPage
	if n, err := strconv.Atoi(q.Get("crud_page")); err == nil && n >= 1 {
		page = n
	}
	if n, err := strconv.Atoi(q.Get("crud_per_page")); err == nil && n > 1 && n <= maxPerPage {
		size = n
	}
	return page, size
}

// Pagination describes the page window of a list.
type Pagination struct {
	Page       int
	PerPage    int
	MaxPerPage int
	Total      int
	BaseURL    string
}

// PageLink is a single entry of the pager. Ellipsis entries carry no URL.
type PageLink struct {
	Number   int
	URL      string
	Current  bool
	Ellipsis bool
}

func (p Pagination) TotalPages() int {
	if p.PerPage <= 0 || p.Total <= 0 {
		return 0
	}
	return (p.Total + p.PerPage - 1) / p.PerPage
}

// URL is <base>?crud_page=<n>&crud_per_page=<p>.
func (p Pagination) URL(n int) string {
	return withQuery(p.BaseURL, url.Values{
		"crud_page":     {strconv.Itoa(n)},
		"crud_per_page": {strconv.Itoa(p.PerPage)},
	})
}

// Links lists the first and last pages plus a window around the current one,
// separated by a single ellipsis per gap. Nothing is returned for a single page.
func (p Pagination) Links() []PageLink {
	total := p.TotalPages()
	if total < 2 {
		return nil
	}
	windows := [][2]int{
		{1, min(paginationEndSize, total)},
		{max(1, p.Page-paginationMidSize), min(total, p.Page+paginationMidSize)},
		{max(1, total-paginationEndSize+1), total},
	}
	var links []PageLink
	last := 0
	for _, w := range windows {
		from := max(w[0], last+1)
		if from > w[1] {
			continue
		}
		if last > 0 && from > last+1 {
			links = append(links, PageLink{Ellipsis: true})
		}
		for n := from; n <= w[1]; n++ {
			links = append(links, PageLink{Number: n, URL: p.URL(n), Current: n == p.Page})
		}
		last = w[1]
	}
	return links
}

func (p Pagination) HasPrev() bool { return p.Page > 1 }

func (p Pagination) HasNext() bool { return p.Page < p.TotalPages() }

func (p Pagination) PrevURL() string {
	if !p.HasPrev() {
		return ""
	}
	return p.URL(p.Page - 1)
}

func (p Pagination) NextURL() string {
	if !p.HasNext() {
		return ""
	}
	return p.URL(p.Page + 1)
}
