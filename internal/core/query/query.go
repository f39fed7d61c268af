// Package query holds list parameters and gorm helpers shared by repositories.
package query

import (
	"strings"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// ListParams describes a paginated, searchable listing.
type ListParams struct {
	Page    int
	PerPage int
	Search  string
	Filters map[string]string
}

// Normalize clamps page and per_page into their allowed ranges.
func (p ListParams) Normalize() ListParams {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PerPage < 1 {
		p.PerPage = DefaultPerPage
	}
	if p.PerPage > MaxPerPage {
		p.PerPage = MaxPerPage
	}
	p.Search = strings.TrimSpace(p.Search)
	return p
}

func (p ListParams) Offset() int {
	n := p.Normalize()
	return (n.Page - 1) * n.PerPage
}

func (p ListParams) Filter(key string) string {
	if p.Filters == nil {
		return ""
	}
	return strings.TrimSpace(p.Filters[key])
}

// PageInfo is the pagination state of a result set.
type PageInfo struct {
	Page    int
	PerPage int
	Total   int64
	Count   int
}

func (i PageInfo) LastPage() int {
	if i.Total == 0 || i.PerPage == 0 {
		return 1
	}
	return int((i.Total + int64(i.PerPage) - 1) / int64(i.PerPage))
}

// Page is one page of items plus its pagination state.
type Page[T any] struct {
	Items  []T
	Total  int64
	Params ListParams
}

func (p Page[T]) Info() PageInfo {
	n := p.Params.Normalize()
	return PageInfo{Page: n.Page, PerPage: n.PerPage, Total: p.Total, Count: len(p.Items)}
}

// MapPage converts the items of a page, keeping its pagination state.
func MapPage[T, U any](p Page[T], fn func(T) U) Page[U] {
	items := make([]U, 0, len(p.Items))
	for _, item := range p.Items {
		items = append(items, fn(item))
	}
	return Page[U]{Items: items, Total: p.Total, Params: p.Params}
}

// EscapeLike escapes LIKE wildcards so the term matches literally.
func EscapeLike(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(term)
}

// ApplySearch adds a case-insensitive substring match over columns. An empty term matches everything.
func ApplySearch(db *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return db
	}
	pattern := "%" + EscapeLike(strings.ToLower(term)) + "%"

	clauses := make([]string, 0, len(columns))
	args := make([]interface{}, 0, len(columns))
	for _, col := range columns {
		clauses = append(clauses, "LOWER("+col+") LIKE ? ESCAPE '\\'")
		args = append(args, pattern)
	}
	return db.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func Paginate(db *gorm.DB, p ListParams) *gorm.DB {
	n := p.Normalize()
	return db.Offset(n.Offset()).Limit(n.PerPage)
}

// FindPage counts the filtered rows, then loads the requested page in order.
func FindPage[T any](db *gorm.DB, p ListParams, order string) ([]T, int64, error) {
	q := db.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []T
	if err := Paginate(q.Order(order), p).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	return rows, total, nil
}

// ContainsFold reports whether any field contains term, ignoring case.
func ContainsFold(term string, fields ...string) bool {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return true
	}
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}
