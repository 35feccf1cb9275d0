package pagination

import (
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFromQuery_Defaults(t *testing.T) {
	p := FromQuery(url.Values{})
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, p)
	assert.Equal(t, 0, p.Offset())

	p = FromQuery(url.Values{"page": {"abc"}, "limit": {"-3"}})
	assert.Equal(t, Params{Page: 1, Limit: DefaultLimit}, p)

	p = FromQuery(url.Values{"page": {"3"}, "limit": {"500"}})
	assert.Equal(t, Params{Page: 3, Limit: MaxLimit}, p)
	assert.Equal(t, 200, p.Offset())
}

func TestNewMeta_TotalPagesIsCeil(t *testing.T) {
	for _, tc := range []struct {
		total, limit, wantPages int
	}{
		{0, 20, 0},
		{1, 20, 1},
		{20, 20, 1},
		{21, 20, 2},
		{99, 10, 10},
		{100, 10, 10},
	} {
		m := NewMeta(Params{Page: 1, Limit: tc.limit}, tc.total)
		assert.Equal(t, tc.wantPages, m.TotalPages, "total=%d limit=%d", tc.total, tc.limit)
	}
}

func TestNewMeta_HasNextFalseOnlyOnLastPage(t *testing.T) {
	const total, limit = 45, 10 // 5 páginas
	for page := 1; page <= 5; page++ {
		m := NewMeta(Params{Page: page, Limit: limit}, total)
		assert.Equal(t, page != m.TotalPages, m.HasNextPage, "page=%d", page)
		assert.Equal(t, page > 1, m.HasPrevPage, "page=%d", page)
	}
}

func TestMeta_OutOfRange(t *testing.T) {
	// 12 registros, 10 por página: 2 páginas.
	assert.False(t, NewMeta(Params{Page: 1, Limit: 10}, 12).OutOfRange())
	assert.False(t, NewMeta(Params{Page: 2, Limit: 10}, 12).OutOfRange())
	m := NewMeta(Params{Page: 5, Limit: 10}, 12)
	assert.True(t, m.OutOfRange())
	assert.Equal(t, 2, m.TotalPages)

	// Sin registros la página 1 es vacía pero válida.
	assert.False(t, NewMeta(Params{Page: 1, Limit: 10}, 0).OutOfRange())
	assert.True(t, NewMeta(Params{Page: 2, Limit: 10}, 0).OutOfRange())
}
