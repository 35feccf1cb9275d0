package pagination

import (
	"net/url"
	"strconv"
	"strings"
)

const (
	DefaultLimit = 20
	MaxLimit     = 100
)

type Params struct {
	Page  int
	Limit int
}

// FromQuery lee page/limit. Valores ausentes o inválidos caen a los defaults (1, 20).
func FromQuery(q url.Values) Params {
	return Normalize(atoi(q.Get("page")), atoi(q.Get("limit")))
}

func Normalize(page, limit int) Params {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return Params{Page: page, Limit: limit}
}

func (p Params) Offset() int {
	return (p.Page - 1) * p.Limit
}

type Meta struct {
	CurrentPage  int  `json:"current_page"`
	PerPage      int  `json:"per_page"`
	TotalRecords int  `json:"total_records"`
	TotalPages   int  `json:"total_pages"`
	HasNextPage  bool `json:"has_next_page"`
	HasPrevPage  bool `json:"has_prev_page"`
}

// NewMeta: total_pages = ceil(total/limit); has_next_page = page < total_pages.
func NewMeta(p Params, total int) Meta {
	p = Normalize(p.Page, p.Limit)
	if total < 0 {
		total = 0
	}
	pages := (total + p.Limit - 1) / p.Limit
	return Meta{
		CurrentPage:  p.Page,
		PerPage:      p.Limit,
		TotalRecords: total,
		TotalPages:   pages,
		HasNextPage:  p.Page < pages,
		HasPrevPage:  p.Page > 1,
	}
}

// OutOfRange: pedir una página después de la última. La página 1 siempre es válida,
// aunque no haya registros.
func (m Meta) OutOfRange() bool {
	return m.CurrentPage > 1 && m.CurrentPage > m.TotalPages
}

func atoi(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
