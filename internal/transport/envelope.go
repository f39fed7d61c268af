package transport

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/frahmantamala/chathub/internal"
	"github.com/frahmantamala/chathub/internal/core/query"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool               `json:"success"`
	Data    interface{}        `json:"data,omitempty"`
	Error   *internal.AppError `json:"error,omitempty"`
	Message string             `json:"message,omitempty"`
}

type PaginatedEnvelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Meta    Meta        `json:"meta"`
	Links   Links       `json:"links"`
	Message string      `json:"message,omitempty"`
}

type Meta struct {
	CurrentPage int   `json:"current_page"`
	PerPage     int   `json:"per_page"`
	Total       int64 `json:"total"`
	LastPage    int   `json:"last_page"`
	From        *int  `json:"from"`
	To          *int  `json:"to"`
}

type Links struct {
	First string  `json:"first"`
	Last  string  `json:"last"`
	Prev  *string `json:"prev"`
	Next  *string `json:"next"`
}

func NewMeta(info query.PageInfo) Meta {
	m := Meta{
		CurrentPage: info.Page,
		PerPage:     info.PerPage,
		Total:       info.Total,
		LastPage:    info.LastPage(),
	}
	if info.Count > 0 {
		from := (info.Page-1)*info.PerPage + 1
		to := from + info.Count - 1
		m.From = &from
		m.To = &to
	}
	return m
}

// NewLinks builds absolute page links from the request URL, keeping its other query parameters.
func NewLinks(r *http.Request, info query.PageInfo) Links {
	last := info.LastPage()
	links := Links{
		First: pageURL(r, 1),
		Last:  pageURL(r, last),
	}
	if info.Page > 1 {
		prev := pageURL(r, info.Page-1)
		links.Prev = &prev
	}
	if info.Page < last {
		next := pageURL(r, info.Page+1)
		links.Next = &next
	}
	return links
}

func pageURL(r *http.Request, page int) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = proto
	}

	q := r.URL.Query()
	q.Set("page", strconv.Itoa(page))

	u := url.URL{
		Scheme:   scheme,
		Host:     r.Host,
		Path:     r.URL.Path,
		RawQuery: q.Encode(),
	}
	return u.String()
}

// ParseListParams reads page, per_page and q, plus the named filter keys.
func ParseListParams(r *http.Request, filterKeys ...string) query.ListParams {
	values := r.URL.Query()

	p := query.ListParams{
		Search: values.Get("q"),
	}
	if p.Search == "" {
		p.Search = values.Get("search")
	}
	if page, err := strconv.Atoi(values.Get("page")); err == nil {
		p.Page = page
	}
	if perPage, err := strconv.Atoi(values.Get("per_page")); err == nil {
		p.PerPage = perPage
	}
	if len(filterKeys) > 0 {
		p.Filters = make(map[string]string, len(filterKeys))
		for _, key := range filterKeys {
			if v := values.Get(key); v != "" {
				p.Filters[key] = v
			}
		}
	}
	return p.Normalize()
}
